package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationKind classifies a notification for the client.
type NotificationKind string

const (
	NotificationWorkoutReminder NotificationKind = "workout_reminder"
	NotificationPlanReady       NotificationKind = "plan_ready"
	NotificationCoachReply      NotificationKind = "coach_reply"
)

// Notification is a message queued for delivery to a user, picked up by the
// client's notification poll.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Kind      NotificationKind   `bson:"kind" json:"kind"`
	Message   string             `bson:"message" json:"message"`
	Read      bool               `bson:"read" json:"read"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
