package domain

import "time"

// User is a person exercises are logged against. Usernames are not unique.
type User struct {
	ID       string
	Username string
}

// Exercise is a single logged workout. UserID is a back-reference only; stores do not
// enforce that it points at an existing user.
type Exercise struct {
	ID          string
	UserID      string
	Description string
	DurationMin int
	Date        time.Time
}

// ExerciseLogEntry is the result of adding an exercise, shaped with the owning user.
type ExerciseLogEntry struct {
	UserID      string
	Username    string
	ExerciseID  string
	Description string
	DurationMin int
	Date        time.Time
}

// LogItem is one retained exercise in a LogResult.
type LogItem struct {
	Description string
	DurationMin int
	Date        time.Time
}

// LogResult is a user's filtered exercise log.
type LogResult struct {
	UserID   string
	Username string
	Count    int
	Log      []LogItem
}
