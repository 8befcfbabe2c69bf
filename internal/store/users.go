package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/chatter/backend/internal/models"
)

// UserStore handles user CRUD in MongoDB. Email uniqueness is enforced by a
// unique index, not by application-level locking.
type UserStore struct {
	col *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{col: db.Collection("users")}
}

// EnsureIndexes creates the unique email index. Idempotent.
func (s *UserStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	return nil
}

// noPassword excludes the password hash from query results.
var noPassword = options.FindOne().SetProjection(bson.M{"password": 0})

func (s *UserStore) CreateUser(ctx context.Context, email, fullName, hashedPassword string) (*models.User, error) {
	u := &models.User{
		Email:     email,
		FullName:  fullName,
		Password:  hashedPassword,
		CreatedAt: time.Now().UTC(),
	}
	res, err := s.col.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return u, nil
}

// GetUserByEmail returns the full document including the password hash, or
// (nil, nil) on a miss.
func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email}, nil)
}

// GetUserByIdentifier matches either the email or the full name exactly.
// Includes the password hash for credential checks.
func (s *UserStore) GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"email": identifier},
		bson.M{"fullName": identifier},
	}}, nil)
}

// GetUserByID returns the user without the password hash, or (nil, nil) on a
// miss or malformed id.
func (s *UserStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return s.findOne(ctx, bson.M{"_id": oid}, noPassword)
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*models.User, error) {
	var u models.User
	err := s.col.FindOne(ctx, filter, opts).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// UpdateUser applies only the set fields and returns the updated document
// without the password hash. An email collision with another user surfaces
// as ErrDuplicateEmail via the unique index.
func (s *UserStore) UpdateUser(ctx context.Context, id string, fields models.UpdateFields) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	set := bson.M{}
	if fields.ProfilePic != nil {
		set["profilePic"] = *fields.ProfilePic
	}
	if fields.FullName != nil {
		set["fullName"] = *fields.FullName
	}
	if fields.Email != nil {
		set["email"] = *fields.Email
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"password": 0})

	var u models.User
	err = s.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&u)
	if mongo.IsDuplicateKeyError(err) {
		return nil, ErrDuplicateEmail
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &u, nil
}

// ListUsersExcept returns every user except the given one, password hash
// excluded, for the chat sidebar.
func (s *UserStore) ListUsersExcept(ctx context.Context, id string) ([]models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	opts := options.Find().SetProjection(bson.M{"password": 0})
	cur, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$ne": oid}}, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
