package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mingle/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByRefreshToken(ctx context.Context, token string) (*models.User, error)
	SetPresence(ctx context.Context, id string, online bool) error
	StoreOTP(ctx context.Context, id, channel, otpHash string, sentAt, expiresAt time.Time) error
	ConfirmOTP(ctx context.Context, id, channel string) error
	SetRefreshToken(ctx context.Context, id, token string, expiresAt time.Time) error
	EnsureIndexes(ctx context.Context) error
}

type userRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{col: db.Collection("users")}
}

func (r *userRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = primitive.NewObjectID().Hex()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.LastActive = user.CreatedAt
	_, err := r.col.InsertOne(ctx, user)
	return err
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.col.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *userRepository) FindByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"refreshToken": token})
}

func (r *userRepository) SetPresence(ctx context.Context, id string, online bool) error {
	_, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"online": online, "lastActive": time.Now()},
	})
	return err
}

func otpFields(channel string) (hash, sentAt, expires, verified string, err error) {
	switch channel {
	case models.OTPChannelEmail:
		return "emailOtpHash", "emailOtpSentAt", "emailOtpExpires", "emailVerified", nil
	case models.OTPChannelMobile:
		return "mobileOtpHash", "mobileOtpSentAt", "mobileOtpExpires", "mobileVerified", nil
	}
	return "", "", "", "", fmt.Errorf("unknown otp channel %q", channel)
}

func (r *userRepository) StoreOTP(ctx context.Context, id, channel, otpHash string, sentAt, expiresAt time.Time) error {
	hashF, sentF, expF, _, err := otpFields(channel)
	if err != nil {
		return err
	}
	_, err = r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{hashF: otpHash, sentF: sentAt, expF: expiresAt},
	})
	return err
}

// ConfirmOTP clears the stored code and flips the channel's verified flag.
func (r *userRepository) ConfirmOTP(ctx context.Context, id, channel string) error {
	hashF, sentF, expF, verifF, err := otpFields(channel)
	if err != nil {
		return err
	}
	_, err = r.col.UpdateByID(ctx, id, bson.M{
		"$set":   bson.M{verifF: true},
		"$unset": bson.M{hashF: "", sentF: "", expF: ""},
	})
	return err
}

func (r *userRepository) SetRefreshToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	_, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"refreshToken": token, "refreshExpiresAt": expiresAt},
	})
	return err
}
