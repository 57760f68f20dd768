package models

import "time"

// Follow edge statuses.
const (
	FollowPending  = "pending"
	FollowAccepted = "accepted"
	FollowRejected = "rejected"
)

// FollowEdge is a directional follow relationship. At most one edge exists
// per ordered (Follower, Following) pair, enforced by a unique index.
type FollowEdge struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Follower  string    `bson:"follower" json:"follower"`
	Following string    `bson:"following" json:"following"`
	Status    string    `bson:"status" json:"status"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
