// Package postgres provides the PostgreSQL record store.
package postgres

import (
	"context"
	_ "embed"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samthatcode/boilerplate-project-exercisetracker/internal/domain"
)

//go:embed schema.sql
var schema string

// Repository provides Postgres-backed persistence for users and exercises.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Open connects to Postgres, checks the connection and creates missing tables.
func Open(ctx context.Context, connString string, maxConns int) (*Repository, error) {
	poolCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, err
	}
	if maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	repo := NewRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return repo, nil
}

// EnsureSchema creates the users and exercises tables when absent.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, schema)
	return err
}

// CreateUser implements domain.UserRepository.
func (r *Repository) CreateUser(ctx context.Context, username string) (domain.User, error) {
	user := domain.User{ID: uuid.NewString(), Username: username}
	if _, err := r.pool.Exec(ctx, `INSERT INTO users (user_id, username) VALUES ($1, $2)`, user.ID, user.Username); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// ListUsers implements domain.UserRepository.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id::text, username FROM users ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Username); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser implements domain.UserRepository. Ids that are not UUIDs cannot exist.
func (r *Repository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}

	var user domain.User
	row := r.pool.QueryRow(ctx, `SELECT user_id::text, username FROM users WHERE user_id = $1`, parsed.String())
	if err := row.Scan(&user.ID, &user.Username); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// CreateExercise implements domain.ExerciseRepository.
func (r *Repository) CreateExercise(ctx context.Context, exercise domain.Exercise) (domain.Exercise, error) {
	exercise.ID = uuid.NewString()

	const stmt = `INSERT INTO exercises (exercise_id, user_id, description, duration_min, exercise_date)
        VALUES ($1,$2,$3,$4,$5)`

	_, err := r.pool.Exec(ctx, stmt,
		exercise.ID,
		exercise.UserID,
		exercise.Description,
		exercise.DurationMin,
		exercise.Date,
	)
	if err != nil {
		return domain.Exercise{}, err
	}
	return exercise, nil
}

// ListExercisesByUser implements domain.ExerciseRepository.
func (r *Repository) ListExercisesByUser(ctx context.Context, userID string) ([]domain.Exercise, error) {
	const query = `SELECT exercise_id::text, user_id, description, duration_min, exercise_date
        FROM exercises WHERE user_id = $1 ORDER BY seq`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]domain.Exercise, 0)
	for rows.Next() {
		var ex domain.Exercise
		if err := rows.Scan(&ex.ID, &ex.UserID, &ex.Description, &ex.DurationMin, &ex.Date); err != nil {
			return nil, err
		}
		ex.Date = domain.CalendarDate(ex.Date)
		results = append(results, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Ping checks the pool can reach the server.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close releases the pool.
func (r *Repository) Close(context.Context) error {
	r.pool.Close()
	return nil
}
