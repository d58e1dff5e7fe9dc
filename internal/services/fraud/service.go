// Package fraud scores transfer attempts against the sender's recent
// activity. Scoring is additive, capped at 100, and has no side effects:
// given the same clock and history the result is always the same.
package fraud

import (
	"fmt"
	"time"

	"paylink/internal/models"

	"github.com/shopspring/decimal"
)

type Service interface {
	Assess(senderID, receiverID uint, amount decimal.Decimal) (Assessment, error)
}

type service struct {
	history HistoryCounter
	config  Config
	now     func() time.Time
}

// NewService creates a fraud assessor. now may be nil, in which case the
// wall clock is used; tests inject a fixed clock.
func NewService(history HistoryCounter, config Config, now func() time.Time) Service {
	if history == nil {
		panic("history counter is required")
	}
	if config.MaxTxnPerHour == 0 {
		config = DefaultConfig()
	}
	if now == nil {
		now = time.Now
	}
	return &service{history: history, config: config, now: now}
}

func (s *service) Assess(senderID, receiverID uint, amount decimal.Decimal) (Assessment, error) {
	now := s.now()
	score := 0
	var reasons []string

	// Velocity: non-failed transactions in the trailing hour.
	lastHour, err := s.history.CountRecentByUser(senderID, now.Add(-time.Hour))
	if err != nil {
		return Assessment{}, fmt.Errorf("failed to count hourly velocity: %w", err)
	}
	if lastHour >= int64(s.config.MaxTxnPerHour) {
		score += 40
		reasons = append(reasons, ReasonHighVelocity)
	} else if lastHour >= int64(s.config.SuspiciousVelocityCount) {
		score += 20
		reasons = append(reasons, ReasonElevatedVelocity)
	}

	if amount.GreaterThanOrEqual(s.config.HighValueThreshold) {
		score += 25
		reasons = append(reasons, ReasonHighValue)
	}

	// The 23:00-04:59 window in local simulation time.
	hour := now.Hour()
	if hour >= 23 || hour <= 4 {
		score += 10
		reasons = append(reasons, ReasonOddHours)
	}

	lastTenMinutes, err := s.history.CountRecentByUser(senderID, now.Add(-10*time.Minute))
	if err != nil {
		return Assessment{}, fmt.Errorf("failed to count rapid repeats: %w", err)
	}
	if lastTenMinutes >= 3 {
		score += 20
		reasons = append(reasons, ReasonRapidRepeat)
	}

	if score > maxScore {
		score = maxScore
	}

	return Assessment{
		Score:       score,
		RiskLevel:   scoreToLevel(score),
		ShouldFlag:  score >= flagThreshold,
		ShouldBlock: score >= blockThreshold,
		Reasons:     reasons,
	}, nil
}

func scoreToLevel(score int) string {
	switch {
	case score >= 70:
		return models.RiskLevelCritical
	case score >= 40:
		return models.RiskLevelHigh
	case score >= 20:
		return models.RiskLevelMedium
	default:
		return models.RiskLevelLow
	}
}
