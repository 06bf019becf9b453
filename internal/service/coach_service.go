package service

import (
	"coachly/fitness-coach/internal/ai"
	"coachly/fitness-coach/internal/domain"
	"coachly/fitness-coach/internal/repository"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrEmptyMessage = errors.New("message cannot be empty")
)

// historyLimit bounds how much conversation context goes to the model.
const historyLimit = 20

// --- Service Interface ---
type CoachService interface {
	// Send persists the user's message, produces the coach's reply and
	// persists it too. A message asking for a new plan triggers plan
	// regeneration instead of a free-form reply.
	Send(ctx context.Context, userID primitive.ObjectID, message string) (*domain.CoachMessage, error)
	History(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.CoachMessage, error)
	Clear(ctx context.Context, userID primitive.ObjectID) error
}

// --- Service Implementation ---

type coachService struct {
	coachRepo   repository.CoachMessageRepository
	planService PlanService
	generator   ai.Generator
}

// NewCoachService creates a new instance of coachService.
func NewCoachService(coachRepo repository.CoachMessageRepository, planService PlanService, generator ai.Generator) CoachService {
	return &coachService{
		coachRepo:   coachRepo,
		planService: planService,
		generator:   generator,
	}
}

func (s *coachService) Send(ctx context.Context, userID primitive.ObjectID, message string) (*domain.CoachMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	history, err := s.coachRepo.ListByUser(ctx, userID, historyLimit)
	if err != nil {
		return nil, err
	}

	if _, err := s.coachRepo.Append(ctx, &domain.CoachMessage{
		UserID:    userID,
		Role:      domain.CoachRoleUser,
		Content:   message,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return nil, err
	}

	var reply string
	if wantsNewPlan(message) {
		if _, err := s.planService.GeneratePlan(ctx, userID); err != nil {
			logrus.WithError(err).WithField("userId", userID.Hex()).Warn("coach-triggered plan regeneration failed")
			reply = "I couldn't build a new plan right now. Please try again in a moment."
		} else {
			reply = "Done! I've put together a fresh plan for you. It's active now."
		}
	} else {
		reply, err = s.generator.CoachReply(ctx, history, message)
		if err != nil {
			return nil, err
		}
	}

	assistantMsg := &domain.CoachMessage{
		UserID:    userID,
		Role:      domain.CoachRoleAssistant,
		Content:   reply,
		CreatedAt: time.Now().UTC(),
	}
	msgID, err := s.coachRepo.Append(ctx, assistantMsg)
	if err != nil {
		return nil, err
	}
	assistantMsg.ID = msgID
	return assistantMsg, nil
}

func (s *coachService) History(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.CoachMessage, error) {
	if limit <= 0 {
		limit = historyLimit
	}
	return s.coachRepo.ListByUser(ctx, userID, limit)
}

func (s *coachService) Clear(ctx context.Context, userID primitive.ObjectID) error {
	return s.coachRepo.ClearByUser(ctx, userID)
}

// wantsNewPlan detects an explicit plan-regeneration request.
func wantsNewPlan(message string) bool {
	m := strings.ToLower(message)
	for _, phrase := range []string{"new plan", "regenerate my plan", "regenerate plan", "different plan", "another plan"} {
		if strings.Contains(m, phrase) {
			return true
		}
	}
	return false
}
