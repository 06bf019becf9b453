package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CoachRole distinguishes who wrote a chat message.
type CoachRole string

const (
	CoachRoleUser      CoachRole = "user"
	CoachRoleAssistant CoachRole = "assistant"
)

// CoachMessage is one message in the user's conversation with the virtual coach.
type CoachMessage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Role      CoachRole          `bson:"role" json:"role"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
