// Package events defines the messages emitted after users and exercises are stored.
package events

import "time"

// Event types.
const (
	TypeUserCreated    = "user.created"
	TypeExerciseLogged = "exercise.logged"
)

// UserCreated is emitted when a new user is stored.
type UserCreated struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// ExerciseLogged is emitted when an exercise is attached to a user.
type ExerciseLogged struct {
	ExerciseID  string    `json:"exercise_id"`
	UserID      string    `json:"user_id"`
	Description string    `json:"description"`
	DurationMin int       `json:"duration_min"`
	Date        string    `json:"date"`
	LoggedAt    time.Time `json:"logged_at"`
}
