// Package domain defines the business logic for the exercise tracker.
package domain

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/samthatcode/boilerplate-project-exercisetracker/internal/events"
	"github.com/samthatcode/boilerplate-project-exercisetracker/internal/observability"
)

// UserRepository captures user persistence. GetUser returns (nil, nil) when the id
// does not resolve.
type UserRepository interface {
	CreateUser(ctx context.Context, username string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id string) (*User, error)
}

// ExerciseRepository captures exercise persistence. ListExercisesByUser returns entries
// in insertion order.
type ExerciseRepository interface {
	CreateExercise(ctx context.Context, exercise Exercise) (Exercise, error)
	ListExercisesByUser(ctx context.Context, userID string) ([]Exercise, error)
}

// Repository is the full record store.
type Repository interface {
	UserRepository
	ExerciseRepository
}

// DefaultPublishTimeout is how long a write waits on event delivery before giving up.
const DefaultPublishTimeout = 500 * time.Millisecond

// Option configures optional behaviour for the Service.
type Option func(*Service)

// WithLogger overrides the logger used to report best-effort failures.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithPublishTimeout bounds how long a write waits on event delivery.
func WithPublishTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.publishTimeout = timeout
	}
}

// WithClock overrides the time source used to default exercise dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service orchestrates user, exercise and log workflows.
type Service struct {
	repo      Repository
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time

	publishTimeout time.Duration
}

// NewService constructs a Service. A nil publisher drops events.
func NewService(repo Repository, publisher events.Publisher, opts ...Option) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	s := &Service{
		repo:      repo,
		publisher: publisher,
		logger:    zap.NewNop(),
		now:       time.Now,

		publishTimeout: DefaultPublishTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUser stores a user with the given username. No validation is applied here.
func (s *Service) CreateUser(ctx context.Context, username string) (User, error) {
	user, err := s.repo.CreateUser(ctx, username)
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	observability.RecordUserCreated()
	s.publish(ctx, events.TypeUserCreated, user.ID, events.UserCreated{
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: s.now().UTC(),
	})
	return user, nil
}

// ListUsers returns every user in insertion order.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// AddExerciseInput carries the raw values supplied by a caller.
type AddExerciseInput struct {
	UserID      string
	Description string
	Duration    string
	Date        string
}

// AddExercise attaches an exercise to an existing user. Duration must be a positive
// whole number of minutes; an empty date defaults to today (UTC).
func (s *Service) AddExercise(ctx context.Context, input AddExerciseInput) (ExerciseLogEntry, error) {
	duration, err := ParseDuration(input.Duration)
	if err != nil {
		return ExerciseLogEntry{}, err
	}

	date := CalendarDate(s.now().UTC())
	if strings.TrimSpace(input.Date) != "" {
		date, err = ParseCalendarDate(input.Date)
		if err != nil {
			return ExerciseLogEntry{}, invalid("date", "must be a YYYY-MM-DD date")
		}
	}

	user, err := s.getUser(ctx, input.UserID)
	if err != nil {
		return ExerciseLogEntry{}, err
	}

	exercise, err := s.repo.CreateExercise(ctx, Exercise{
		UserID:      user.ID,
		Description: input.Description,
		DurationMin: duration,
		Date:        date,
	})
	if err != nil {
		return ExerciseLogEntry{}, fmt.Errorf("create exercise: %w", err)
	}

	loggedAt := s.now().UTC()
	observability.RecordExerciseLogged(loggedAt)
	s.publish(ctx, events.TypeExerciseLogged, user.ID, events.ExerciseLogged{
		ExerciseID:  exercise.ID,
		UserID:      user.ID,
		Description: exercise.Description,
		DurationMin: exercise.DurationMin,
		Date:        FormatCalendarDate(exercise.Date),
		LoggedAt:    loggedAt,
	})

	return ExerciseLogEntry{
		UserID:      user.ID,
		Username:    user.Username,
		ExerciseID:  exercise.ID,
		Description: exercise.Description,
		DurationMin: exercise.DurationMin,
		Date:        exercise.Date,
	}, nil
}

// LogQuery narrows a log. Nil fields are not applied.
type LogQuery struct {
	From  *time.Time
	To    *time.Time
	Limit *int
}

// GetLogs returns the user's exercises filtered to [From, To] and truncated to the
// first Limit entries, preserving store order.
func (s *Service) GetLogs(ctx context.Context, userID string, query LogQuery) (LogResult, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return LogResult{}, err
	}

	exercises, err := s.repo.ListExercisesByUser(ctx, user.ID)
	if err != nil {
		return LogResult{}, fmt.Errorf("list exercises: %w", err)
	}

	items := make([]LogItem, 0, len(exercises))
	for _, ex := range exercises {
		if query.From != nil && ex.Date.Before(*query.From) {
			continue
		}
		if query.To != nil && ex.Date.After(*query.To) {
			continue
		}
		items = append(items, LogItem{
			Description: ex.Description,
			DurationMin: ex.DurationMin,
			Date:        ex.Date,
		})
	}
	if query.Limit != nil && *query.Limit < len(items) {
		items = items[:*query.Limit]
	}

	observability.RecordLogQuery(len(items))
	return LogResult{
		UserID:   user.ID,
		Username: user.Username,
		Count:    len(items),
		Log:      items,
	}, nil
}

func (s *Service) getUser(ctx context.Context, id string) (*User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// publish runs detached from request cancellation but never longer than publishTimeout.
func (s *Service) publish(ctx context.Context, eventType, key string, payload any) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, eventType, key, payload); err != nil {
		s.logger.Warn("dropping event", zap.String("event_type", eventType), zap.String("key", key), zap.Error(err))
	}
}

// ParseDuration coerces a caller-supplied duration into whole minutes.
func ParseDuration(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, invalid("duration", "is required")
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalid("duration", "must be a whole number of minutes")
	}
	if minutes <= 0 {
		return 0, invalid("duration", "must be > 0")
	}
	return minutes, nil
}

// ParseLogQuery converts raw query parameters into a LogQuery. Empty values are treated
// as absent; anything unparseable is a ValidationError.
func ParseLogQuery(from, to, limit string) (LogQuery, error) {
	var q LogQuery
	if strings.TrimSpace(from) != "" {
		t, err := ParseCalendarDate(from)
		if err != nil {
			return LogQuery{}, invalid("from", "must be a YYYY-MM-DD date")
		}
		q.From = &t
	}
	if strings.TrimSpace(to) != "" {
		t, err := ParseCalendarDate(to)
		if err != nil {
			return LogQuery{}, invalid("to", "must be a YYYY-MM-DD date")
		}
		q.To = &t
	}
	if strings.TrimSpace(limit) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(limit))
		if err != nil || n < 0 {
			return LogQuery{}, invalid("limit", "must be a non-negative integer")
		}
		q.Limit = &n
	}
	return q, nil
}
