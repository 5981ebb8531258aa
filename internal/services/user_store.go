package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AnshRaj112/videotube-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UsersCollection is the Mongo collection holding user documents.
const UsersCollection = "users"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrDuplicateUser        = errors.New("username or email already exists")
	ErrRefreshTokenMismatch = errors.New("refresh token does not match")
)

// ProfileUpdate lists the profile fields to overwrite. Nil fields are left untouched.
type ProfileUpdate struct {
	FullName   *string
	Email      *string
	Avatar     *string
	CoverImage *string
}

// UserStore persists user records. It is the single source of truth for
// refresh-token validity.
//
// Refresh-token writes never touch the password hash; UpdatePassword is the
// only operation that replaces it.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// FindByIdentity matches username OR email; empty arguments are ignored.
	// A username match wins over an email match on a different user.
	FindByIdentity(ctx context.Context, username, email string) (*models.User, error)

	SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error
	// RotateRefreshToken replaces presented with next only if presented is still
	// the stored value. Otherwise it returns ErrRefreshTokenMismatch.
	RotateRefreshToken(ctx context.Context, id primitive.ObjectID, presented, next string) error
	ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error

	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update ProfileUpdate) (*models.User, error)
}

// MongoUserStore is the production UserStore backed by a Mongo collection.
type MongoUserStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoUserStore(coll *mongo.Collection) *MongoUserStore {
	return &MongoUserStore{coll: coll, now: time.Now}
}

// EnsureIndexes creates the unique indexes on username and email.
// Called on startup from main after Mongo has connected.
func (s *MongoUserStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName("uniq_username").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_email").SetUnique(true),
		},
	})
	return err
}

func (s *MongoUserStore) Create(ctx context.Context, user *models.User) error {
	now := s.now().UTC()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := s.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *MongoUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoUserStore) FindByIdentity(ctx context.Context, username, email string) (*models.User, error) {
	if username != "" {
		user, err := s.findOne(ctx, bson.M{"username": username})
		if err == nil || !errors.Is(err, ErrUserNotFound) || email == "" {
			return user, err
		}
	}
	if email == "" {
		return nil, ErrUserNotFound
	}
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := s.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (s *MongoUserStore) SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	return s.updateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"refreshToken": token, "updatedAt": s.now().UTC()},
	}, ErrUserNotFound)
}

func (s *MongoUserStore) RotateRefreshToken(ctx context.Context, id primitive.ObjectID, presented, next string) error {
	if presented == "" {
		return ErrRefreshTokenMismatch
	}
	// The presented token is part of the filter so the swap is a single atomic
	// compare-and-set; a concurrent rotation makes this match nothing.
	return s.updateOne(ctx, bson.M{"_id": id, "refreshToken": presented}, bson.M{
		"$set": bson.M{"refreshToken": next, "updatedAt": s.now().UTC()},
	}, ErrRefreshTokenMismatch)
}

func (s *MongoUserStore) ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error {
	return s.updateOne(ctx, bson.M{"_id": id}, bson.M{
		"$unset": bson.M{"refreshToken": ""},
		"$set":   bson.M{"updatedAt": s.now().UTC()},
	}, ErrUserNotFound)
}

func (s *MongoUserStore) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	return s.updateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"password": passwordHash, "updatedAt": s.now().UTC()},
	}, ErrUserNotFound)
}

func (s *MongoUserStore) updateOne(ctx context.Context, filter, update bson.M, noMatch error) error {
	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return noMatch
	}
	return nil
}

func (s *MongoUserStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, update ProfileUpdate) (*models.User, error) {
	set := bson.M{"updatedAt": s.now().UTC()}
	if update.FullName != nil {
		set["fullName"] = *update.FullName
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.Avatar != nil {
		set["avatar"] = *update.Avatar
	}
	if update.CoverImage != nil {
		set["coverImage"] = *update.CoverImage
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &user, nil
}
