package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mingle/internal/models"
)

type ChatRepository interface {
	// GetOrCreate returns the chat for the unordered pair {userA, userB},
	// creating it with zeroed unread counters if absent. The unique index on
	// participantsKey makes concurrent first contacts converge on one record.
	GetOrCreate(ctx context.Context, userA, userB string) (*models.Chat, error)
	FindByID(ctx context.Context, id string) (*models.Chat, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Chat, error)
	SetLastMessage(ctx context.Context, chatID string, msg *models.ChatMessage) error
	// IncrementUnread atomically bumps the unread counter of every listed
	// participant except exceptUserID.
	IncrementUnread(ctx context.Context, chatID string, participants []string, exceptUserID string) error
	ResetUnread(ctx context.Context, chatID, userID string) error
	EnsureIndexes(ctx context.Context) error
}

type chatRepository struct {
	col *mongo.Collection
}

func NewChatRepository(db *mongo.Database) ChatRepository {
	return &chatRepository{col: db.Collection("chats")}
}

func (r *chatRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "participantsKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "participants", Value: 1}, {Key: "updatedAt", Value: -1}}},
	})
	return err
}

func (r *chatRepository) GetOrCreate(ctx context.Context, userA, userB string) (*models.Chat, error) {
	key := models.PairKey(userA, userB)
	now := time.Now()
	after := options.After

	var chat models.Chat
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"participantsKey": key},
		bson.M{"$setOnInsert": bson.M{
			"_id":          primitive.NewObjectID().Hex(),
			"participants": []string{userA, userB},
			"unreadCount":  models.UnreadCounts{userA: 0, userB: 0},
			"createdAt":    now,
			"updatedAt":    now,
		}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(after),
	).Decode(&chat)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepository) FindByID(ctx context.Context, id string) (*models.Chat, error) {
	var chat models.Chat
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&chat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepository) ListByUser(ctx context.Context, userID string) ([]*models.Chat, error) {
	cur, err := r.col.Find(ctx,
		bson.M{"participants": userID},
		options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var chats []*models.Chat
	for cur.Next(ctx) {
		chat := &models.Chat{}
		if err := cur.Decode(chat); err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	return chats, cur.Err()
}

func (r *chatRepository) SetLastMessage(ctx context.Context, chatID string, msg *models.ChatMessage) error {
	_, err := r.col.UpdateByID(ctx, chatID, bson.M{
		"$set": bson.M{"lastMessage": msg, "updatedAt": time.Now()},
	})
	return err
}

func (r *chatRepository) IncrementUnread(ctx context.Context, chatID string, participants []string, exceptUserID string) error {
	inc := bson.M{}
	for _, p := range participants {
		if p != exceptUserID {
			inc["unreadCount."+p] = 1
		}
	}
	if len(inc) == 0 {
		return nil
	}
	_, err := r.col.UpdateByID(ctx, chatID, bson.M{"$inc": inc})
	return err
}

func (r *chatRepository) ResetUnread(ctx context.Context, chatID, userID string) error {
	_, err := r.col.UpdateByID(ctx, chatID, bson.M{
		"$set": bson.M{"unreadCount." + userID: 0},
	})
	return err
}
