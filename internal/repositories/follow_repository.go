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

type FollowRepository interface {
	// HasAccepted reports whether an accepted edge follower -> following exists.
	HasAccepted(ctx context.Context, follower, following string) (bool, error)
	Upsert(ctx context.Context, follower, following, status string) (*models.FollowEdge, error)
	Find(ctx context.Context, follower, following string) (*models.FollowEdge, error)
	// AcceptedFollowerIDs lists users with an accepted edge toward userID.
	AcceptedFollowerIDs(ctx context.Context, userID string) ([]string, error)
	// AcceptedFollowingIDs lists users userID has an accepted edge toward.
	AcceptedFollowingIDs(ctx context.Context, userID string) ([]string, error)
	EnsureIndexes(ctx context.Context) error
}

type followRepository struct {
	col *mongo.Collection
}

func NewFollowRepository(db *mongo.Database) FollowRepository {
	return &followRepository{col: db.Collection("follows")}
}

func (r *followRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "follower", Value: 1}, {Key: "following", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "follower", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "following", Value: 1}, {Key: "status", Value: 1}}},
	})
	return err
}

func (r *followRepository) HasAccepted(ctx context.Context, follower, following string) (bool, error) {
	err := r.col.FindOne(ctx, bson.M{
		"follower":  follower,
		"following": following,
		"status":    models.FollowAccepted,
	}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *followRepository) Find(ctx context.Context, follower, following string) (*models.FollowEdge, error) {
	var edge models.FollowEdge
	err := r.col.FindOne(ctx, bson.M{"follower": follower, "following": following}).Decode(&edge)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &edge, nil
}

// Upsert creates the (follower, following) edge or updates its status. The
// unique index keeps the pair to a single edge under concurrent requests.
func (r *followRepository) Upsert(ctx context.Context, follower, following, status string) (*models.FollowEdge, error) {
	now := time.Now()
	after := options.After
	var edge models.FollowEdge
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"follower": follower, "following": following},
		bson.M{
			"$set": bson.M{"status": status, "updatedAt": now},
			// follower/following come from the filter on insert; repeating
			// them here would conflict with the query paths.
			"$setOnInsert": bson.M{
				"_id":       primitive.NewObjectID().Hex(),
				"createdAt": now,
			},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(after),
	).Decode(&edge)
	if err != nil {
		return nil, err
	}
	return &edge, nil
}

func (r *followRepository) acceptedIDs(ctx context.Context, filter bson.M, field string) ([]string, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetProjection(bson.M{field: 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []string
	for cur.Next(ctx) {
		var edge models.FollowEdge
		if err := cur.Decode(&edge); err != nil {
			return nil, err
		}
		if field == "follower" {
			ids = append(ids, edge.Follower)
		} else {
			ids = append(ids, edge.Following)
		}
	}
	return ids, cur.Err()
}

func (r *followRepository) AcceptedFollowerIDs(ctx context.Context, userID string) ([]string, error) {
	return r.acceptedIDs(ctx, bson.M{"following": userID, "status": models.FollowAccepted}, "follower")
}

func (r *followRepository) AcceptedFollowingIDs(ctx context.Context, userID string) ([]string, error) {
	return r.acceptedIDs(ctx, bson.M{"follower": userID, "status": models.FollowAccepted}, "following")
}
