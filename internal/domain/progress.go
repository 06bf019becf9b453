package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Difficulty is the user's post-workout perceived difficulty rating.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyOK     Difficulty = "ok"
	DifficultyHard   Difficulty = "hard"
	DifficultyBrutal Difficulty = "brutal"
)

// ProgressRecord marks one completed workout day. Records are append-only:
// a retried completion may produce a second record for the same day, so
// "days complete" must be computed over distinct days, not record count.
type ProgressRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	PlanID     primitive.ObjectID `bson:"planId" json:"planId"`
	Day        int                `bson:"day" json:"day"` // 1-based plan day
	Difficulty Difficulty         `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
	RecordedAt time.Time          `bson:"recordedAt" json:"recordedAt"`
}
