package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/freelaz/marketplace-api/internal/core/domain"
)

const identityCollection = "identities"

// MongoIdentityRepository persists credential records. The collection must
// carry a unique index on email for duplicate detection to work.
type MongoIdentityRepository struct {
	coll *mongo.Collection
}

func NewIdentityRepository(db *mongo.Database) *MongoIdentityRepository {
	return &MongoIdentityRepository{coll: db.Collection(identityCollection)}
}

type mongoIdentity struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Email         string             `bson:"email"`
	EmailVerified bool               `bson:"email_verified"`
	PasswordHash  string             `bson:"password_hash"`
	CreatedAt     int64              `bson:"created_at"`
	UpdatedAt     int64              `bson:"updated_at"`
}

func (r *MongoIdentityRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := mongoIdentity{
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		PasswordHash:  user.PasswordHash,
		CreatedAt:     user.CreatedAt.Unix(),
		UpdatedAt:     user.UpdatedAt.Unix(),
	}

	_, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert identity: %w", err)
	}

	// fetch back to get ID
	created, err := r.FindByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *MongoIdentityRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var mi mongoIdentity
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&mi); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return mi.toDomain(), nil
}

func (r *MongoIdentityRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	var mi mongoIdentity
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mi); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return mi.toDomain(), nil
}

func (r *MongoIdentityRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now().Unix(),
	}})
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (mi *mongoIdentity) toDomain() *domain.User {
	return &domain.User{
		ID:            mi.ID.Hex(),
		Email:         mi.Email,
		EmailVerified: mi.EmailVerified,
		PasswordHash:  mi.PasswordHash,
		CreatedAt:     unixToTime(mi.CreatedAt),
		UpdatedAt:     unixToTime(mi.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
