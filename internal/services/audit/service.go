// Package audit implements the fire-and-forget audit sink. Events are
// written on a background worker in their own database session, so a
// rolled-back money movement still leaves its audit trail and a failed
// audit write never reverses a committed one.
package audit

import (
	"log"

	"paylink/internal/models"
	"paylink/internal/repositories"
)

const defaultQueueSize = 256

// Event is one audit record to persist.
type Event struct {
	UserID     uint
	Action     string
	Details    string
	EntityType string
	EntityID   *uint
	IPAddress  string
	Success    bool
}

type Service interface {
	// Record enqueues an event. It never blocks the caller: if the queue
	// is full the event is dropped and logged.
	Record(event Event)
	// Close stops accepting events and drains the queue.
	Close()
}

type service struct {
	logs  repositories.AuditLogRepository
	queue chan Event
	done  chan struct{}
}

func NewService(logs repositories.AuditLogRepository) Service {
	if logs == nil {
		panic("audit log repository is required")
	}
	s := &service{
		logs:  logs,
		queue: make(chan Event, defaultQueueSize),
		done:  make(chan struct{}),
	}
	go s.worker()
	return s
}

func (s *service) Record(event Event) {
	select {
	case s.queue <- event:
	default:
		log.Printf("audit queue full, dropping event %s for user %d", event.Action, event.UserID)
	}
}

func (s *service) Close() {
	close(s.queue)
	<-s.done
}

func (s *service) worker() {
	defer close(s.done)
	for event := range s.queue {
		entry := &models.AuditLog{
			UserID:     event.UserID,
			Action:     event.Action,
			Details:    event.Details,
			EntityType: event.EntityType,
			EntityID:   event.EntityID,
			IPAddress:  event.IPAddress,
			Success:    event.Success,
		}
		if err := s.logs.Create(entry); err != nil {
			log.Printf("failed to save audit log for action %s: %v", event.Action, err)
		}
	}
}
