// Package mongo provides the MongoDB record store. Documents live in the users and
// exercises collections with dates stored as YYYY-MM-DD strings.
package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/samthatcode/boilerplate-project-exercisetracker/internal/domain"
)

const (
	usersCollection     = "users"
	exercisesCollection = "exercises"
)

type userDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Username string             `bson:"username"`
}

type exerciseDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"userId"`
	Description string             `bson:"description"`
	Duration    int                `bson:"duration"`
	Date        string             `bson:"date"`
}

// Repository provides MongoDB-backed persistence for users and exercises.
type Repository struct {
	client    *mongo.Client
	users     *mongo.Collection
	exercises *mongo.Collection
	logger    *zap.Logger
}

// NewRepository wraps an already connected client.
func NewRepository(client *mongo.Client, database string, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	db := client.Database(database)
	return &Repository{
		client:    client,
		users:     db.Collection(usersCollection),
		exercises: db.Collection(exercisesCollection),
		logger:    logger,
	}
}

// Open connects to uri, waits up to timeout for a primary and ensures indexes.
func Open(ctx context.Context, uri, database string, timeout time.Duration, maxConns int, logger *zap.Logger) (*Repository, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(timeout)
	if maxConns > 0 {
		opts.SetMaxPoolSize(uint64(maxConns))
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	repo := NewRepository(client, database, logger)
	if err := repo.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	if err := repo.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return repo, nil
}

// EnsureIndexes creates the index used by ListExercisesByUser.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.exercises.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "_id", Value: 1}},
	})
	return err
}

// CreateUser implements domain.UserRepository.
func (r *Repository) CreateUser(ctx context.Context, username string) (domain.User, error) {
	doc := userDocument{ID: primitive.NewObjectID(), Username: username}
	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		return domain.User{}, err
	}
	return domain.User{ID: doc.ID.Hex(), Username: doc.Username}, nil
}

// ListUsers implements domain.UserRepository.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	cursor, err := r.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, domain.User{ID: doc.ID.Hex(), Username: doc.Username})
	}
	return users, nil
}

// GetUser implements domain.UserRepository. Ids that are not ObjectIDs cannot exist.
func (r *Repository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc userDocument
	if err := r.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &domain.User{ID: doc.ID.Hex(), Username: doc.Username}, nil
}

// CreateExercise implements domain.ExerciseRepository.
func (r *Repository) CreateExercise(ctx context.Context, exercise domain.Exercise) (domain.Exercise, error) {
	doc := exerciseDocument{
		ID:          primitive.NewObjectID(),
		UserID:      exercise.UserID,
		Description: exercise.Description,
		Duration:    exercise.DurationMin,
		Date:        domain.FormatCalendarDate(exercise.Date),
	}
	if _, err := r.exercises.InsertOne(ctx, doc); err != nil {
		return domain.Exercise{}, err
	}
	exercise.ID = doc.ID.Hex()
	return exercise, nil
}

// ListExercisesByUser implements domain.ExerciseRepository.
func (r *Repository) ListExercisesByUser(ctx context.Context, userID string) ([]domain.Exercise, error) {
	cursor, err := r.exercises.Find(ctx,
		bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}

	var docs []exerciseDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	results := make([]domain.Exercise, 0, len(docs))
	for _, doc := range docs {
		date, ok := parseStoredDate(doc.Date)
		if !ok {
			r.logger.Warn("skipping exercise with unreadable date",
				zap.String("exercise_id", doc.ID.Hex()),
				zap.String("date", doc.Date))
			continue
		}
		results = append(results, domain.Exercise{
			ID:          doc.ID.Hex(),
			UserID:      doc.UserID,
			Description: doc.Description,
			DurationMin: doc.Duration,
			Date:        date,
		})
	}
	return results, nil
}

// legacyDateLayouts are date forms written by older clients of the collection.
var legacyDateLayouts = []string{"2006-1-2", domain.DisplayDateLayout}

// parseStoredDate reads a stored date string, accepting unpadded and display forms.
func parseStoredDate(raw string) (time.Time, bool) {
	if t, err := domain.ParseCalendarDate(raw); err == nil {
		return t, true
	}
	for _, layout := range legacyDateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Ping checks a primary is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
