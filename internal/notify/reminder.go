package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coachly/fitness-coach/internal/domain"
	"coachly/fitness-coach/internal/repository"

	"github.com/robfig/cron"
	"github.com/sirupsen/logrus"
)

// reminderRunTimeout bounds one full reminder sweep.
const reminderRunTimeout = 2 * time.Minute

// Reminder queues a daily workout reminder for every onboarded user with an
// active plan. Rest days are skipped.
type Reminder struct {
	userRepo         repository.UserRepository
	planRepo         repository.PlanRepository
	notificationRepo repository.NotificationRepository
	schedule         string
	cron             *cron.Cron
}

func NewReminder(
	userRepo repository.UserRepository,
	planRepo repository.PlanRepository,
	notificationRepo repository.NotificationRepository,
	schedule string,
) *Reminder {
	return &Reminder{
		userRepo:         userRepo,
		planRepo:         planRepo,
		notificationRepo: notificationRepo,
		schedule:         schedule,
	}
}

// Start registers the cron schedule and begins running sweeps.
func (r *Reminder) Start() error {
	c := cron.New()
	if err := c.AddFunc(r.schedule, r.runSweep); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", r.schedule, err)
	}
	c.Start()
	r.cron = c
	logrus.WithField("schedule", r.schedule).Info("workout reminder scheduler started")
	return nil
}

// Stop halts the scheduler. A sweep already in flight finishes.
func (r *Reminder) Stop() {
	if r.cron != nil {
		r.cron.Stop()
	}
}

func (r *Reminder) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), reminderRunTimeout)
	defer cancel()

	if err := r.Sweep(ctx); err != nil {
		logrus.WithError(err).Error("workout reminder sweep failed")
	}
}

// Sweep queues one reminder per user with an active plan whose current day
// is not a rest day.
func (r *Reminder) Sweep(ctx context.Context) error {
	users, err := r.userRepo.ListOnboarded(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	queued := 0
	for _, user := range users {
		plan, err := r.planRepo.GetActiveByUser(ctx, user.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue // no active plan, nothing to remind about
			}
			return fmt.Errorf("active plan for %s: %w", user.ID.Hex(), err)
		}

		day := plan.FitnessDayFor(plan.CurrentDay)
		if day == nil || day.IsRestDay {
			continue
		}

		message := fmt.Sprintf("Day %d is waiting for you", plan.CurrentDay)
		if day.WorkoutName != "" {
			message = fmt.Sprintf("Day %d: %s is waiting for you", plan.CurrentDay, day.WorkoutName)
		}
		if _, err := r.notificationRepo.Create(ctx, &domain.Notification{
			UserID:  user.ID,
			Kind:    domain.NotificationWorkoutReminder,
			Message: message,
		}); err != nil {
			logrus.WithError(err).WithField("userId", user.ID.Hex()).Warn("failed to queue workout reminder")
			continue
		}
		queued++
	}

	logrus.WithField("queued", queued).Debug("workout reminder sweep finished")
	return nil
}
