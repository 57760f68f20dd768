package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mingle/internal/models"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *models.ChatMessage) error
	// ListByChat returns one page of messages, newest first, plus the total
	// message count for the chat.
	ListByChat(ctx context.Context, chatID string, page, limit int) ([]*models.ChatMessage, int64, error)
	// MarkRead adds readerID to the readBy set of every message in the chat
	// not sent by readerID and not already read by them. Idempotent; returns
	// the number of messages actually modified.
	MarkRead(ctx context.Context, chatID, readerID string) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type messageRepository struct {
	col *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) MessageRepository {
	return &messageRepository{col: db.Collection("messages")}
}

func (r *messageRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "chat", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "sender.id", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	return err
}

func (r *messageRepository) Create(ctx context.Context, msg *models.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = primitive.NewObjectID().Hex()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	if msg.Attachments == nil {
		msg.Attachments = []string{}
	}
	if msg.ReadBy == nil {
		msg.ReadBy = []string{}
	}
	_, err := r.col.InsertOne(ctx, msg)
	return err
}

func (r *messageRepository) ListByChat(ctx context.Context, chatID string, page, limit int) ([]*models.ChatMessage, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	filter := bson.M{"chat": chatID}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cur, err := r.col.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64((page-1)*limit)).
		SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var messages []*models.ChatMessage
	for cur.Next(ctx) {
		msg := &models.ChatMessage{}
		if err := cur.Decode(msg); err != nil {
			return nil, 0, err
		}
		messages = append(messages, msg)
	}
	return messages, total, cur.Err()
}

func (r *messageRepository) MarkRead(ctx context.Context, chatID, readerID string) (int64, error) {
	res, err := r.col.UpdateMany(ctx,
		bson.M{
			"chat":      chatID,
			"sender.id": bson.M{"$ne": readerID},
			"readBy":    bson.M{"$ne": readerID},
		},
		bson.M{"$addToSet": bson.M{"readBy": readerID}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
