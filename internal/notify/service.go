// Package notify serves the client's notification poll and schedules
// workout reminders for users with an active plan.
package notify

import (
	"context"
	"sync"
	"time"

	"coachly/fitness-coach/internal/domain"
	"coachly/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PollResult is one poll response: any unread notifications plus the delay
// the client should wait before polling again.
type PollResult struct {
	Notifications []domain.Notification `json:"notifications"`
	NextPollIn    time.Duration         `json:"-"`
	NextPollInSec int                   `json:"nextPollInSec"`
}

// Service answers notification polls. Poll failures stretch the advertised
// interval per user so a struggling store is not hammered; a successful poll
// snaps it back.
type Service struct {
	repo     repository.NotificationRepository
	pollBase time.Duration
	pollMax  time.Duration

	mu       sync.Mutex
	backoffs map[primitive.ObjectID]*PollBackoff
}

func NewService(repo repository.NotificationRepository, pollBase, pollMax time.Duration) *Service {
	return &Service{
		repo:     repo,
		pollBase: pollBase,
		pollMax:  pollMax,
		backoffs: make(map[primitive.ObjectID]*PollBackoff),
	}
}

func (s *Service) backoffFor(userID primitive.ObjectID) *PollBackoff {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.backoffs[userID]
	if !ok {
		b = NewPollBackoff(s.pollBase, s.pollMax)
		s.backoffs[userID] = b
	}
	return b
}

// Poll returns the user's unread notifications. On a store error the
// advertised next-poll delay doubles; the error is still returned so the
// handler can carry the delay in the error response.
func (s *Service) Poll(ctx context.Context, userID primitive.ObjectID) (*PollResult, error) {
	backoff := s.backoffFor(userID)

	notifications, err := s.repo.ListUnread(ctx, userID)
	if err != nil {
		next := backoff.Fail()
		return &PollResult{NextPollIn: next, NextPollInSec: int(next.Seconds())}, err
	}

	backoff.Reset()
	next := backoff.Current()
	return &PollResult{
		Notifications: notifications,
		NextPollIn:    next,
		NextPollInSec: int(next.Seconds()),
	}, nil
}

// MarkRead acknowledges the given notifications for the user.
func (s *Service) MarkRead(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	return s.repo.MarkRead(ctx, userID, ids)
}
