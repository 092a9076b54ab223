package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"accounts-be/internal/entities"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when a write would violate the unique email index.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
)

// UserRepository defines the interface for user persistence. Every method is
// a single-document operation; token consumption is a conditional update so
// that matching and clearing a token happen atomically.
type UserRepository interface {
	Create(ctx context.Context, name, email, passwordHash, verificationToken string) (*entities.User, error)
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	FindByID(ctx context.Context, id string) (*entities.User, error)
	UpdateProfile(ctx context.Context, id, name, email string) (*entities.User, error)
	SetResetToken(ctx context.Context, id, token string, expiry time.Time) error
	ConsumeVerificationToken(ctx context.Context, token string) (*entities.User, error)
	ConsumeResetToken(ctx context.Context, token string, now time.Time, newPasswordHash string) (*entities.User, error)
	Delete(ctx context.Context, id string) error
}

type userRepository struct {
	c *mongo.Collection
}

// NewUserRepository creates a new user repository backed by the given collection.
func NewUserRepository(c *mongo.Collection) UserRepository {
	return &userRepository{c: c}
}

// Create inserts a new unverified user. The unique email index turns a
// concurrent duplicate registration into ErrDuplicateEmail for the loser.
func (r *userRepository) Create(ctx context.Context, name, email, passwordHash, verificationToken string) (*entities.User, error) {
	now := time.Now()
	user := &entities.User{
		ID:                uuid.NewString(),
		Name:              name,
		Email:             email,
		PasswordHash:      passwordHash,
		VerificationToken: &verificationToken,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if _, err := r.c.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// FindByEmail finds a user by email
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	var user entities.User
	err := r.c.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// FindByID finds a user by ID (UUID)
func (r *userRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	var user entities.User
	err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// UpdateProfile updates name and email and returns the updated user.
func (r *userRepository) UpdateProfile(ctx context.Context, id, name, email string) (*entities.User, error) {
	update := bson.M{"$set": bson.M{
		"name":       name,
		"email":      email,
		"updated_at": time.Now(),
	}}

	var user entities.User
	err := r.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &user, nil
}

// SetResetToken stores a reset token and its expiry on the user. A newer
// request simply overwrites the previous pair; only the latest token is valid.
func (r *userRepository) SetResetToken(ctx context.Context, id, token string, expiry time.Time) error {
	update := bson.M{"$set": bson.M{
		"reset_token":        token,
		"reset_token_expiry": expiry,
		"updated_at":         time.Now(),
	}}

	res, err := r.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ConsumeVerificationToken marks the matching user verified and clears the
// token in the same update, so a token can only ever be used once.
func (r *userRepository) ConsumeVerificationToken(ctx context.Context, token string) (*entities.User, error) {
	update := bson.M{
		"$set":   bson.M{"is_verified": true, "updated_at": time.Now()},
		"$unset": bson.M{"verification_token": ""},
	}

	var user entities.User
	err := r.c.FindOneAndUpdate(ctx, bson.M{"verification_token": token}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume verification token: %w", err)
	}
	return &user, nil
}

// ConsumeResetToken applies the new password hash and clears the reset token
// pair in one update. The filter only matches unexpired tokens, so an expired
// token behaves exactly like a nonexistent one.
func (r *userRepository) ConsumeResetToken(ctx context.Context, token string, now time.Time, newPasswordHash string) (*entities.User, error) {
	filter := bson.M{
		"reset_token":        token,
		"reset_token_expiry": bson.M{"$gt": now},
	}
	update := bson.M{
		"$set":   bson.M{"password_hash": newPasswordHash, "updated_at": time.Now()},
		"$unset": bson.M{"reset_token": "", "reset_token_expiry": ""},
	}

	var user entities.User
	err := r.c.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume reset token: %w", err)
	}
	return &user, nil
}

// Delete permanently removes a user.
func (r *userRepository) Delete(ctx context.Context, id string) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
