package fraud

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reason tags attached to an assessment.
const (
	ReasonHighVelocity     = "HIGH_VELOCITY"
	ReasonElevatedVelocity = "ELEVATED_VELOCITY"
	ReasonHighValue        = "HIGH_VALUE"
	ReasonOddHours         = "ODD_HOURS"
	ReasonRapidRepeat      = "RAPID_REPEAT"
)

// Score thresholds.
const (
	flagThreshold  = 40
	blockThreshold = 80
	maxScore       = 100
)

// Config holds the tunable scoring thresholds.
type Config struct {
	MaxTxnPerHour           int
	SuspiciousVelocityCount int
	HighValueThreshold      decimal.Decimal
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxTxnPerHour:           10,
		SuspiciousVelocityCount: 5,
		HighValueThreshold:      decimal.NewFromInt(10000),
	}
}

// Assessment is the outcome of scoring a single transfer attempt.
type Assessment struct {
	Score       int
	RiskLevel   string
	ShouldFlag  bool
	ShouldBlock bool
	Reasons     []string
}

// HistoryCounter supplies the sender's recent non-failed transaction counts.
type HistoryCounter interface {
	CountRecentByUser(userID uint, since time.Time) (int64, error)
}
