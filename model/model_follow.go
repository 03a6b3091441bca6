package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Follow statuses. There is no stored "none": absence of the document is
// the none state.
const (
	FollowPending  = "pending"
	FollowAccepted = "accepted"
)

// Follow is one directed edge of the social graph. At most one document
// exists per (follower, following) pair, enforced by a unique index.
type Follow struct {
	ID          bson.ObjectID `json:"id"          bson:"_id,omitempty"`
	FollowerID  bson.ObjectID `json:"followerId"  bson:"follower_id"`
	FollowingID bson.ObjectID `json:"followingId" bson:"following_id"`
	Status      string        `json:"status"      bson:"status"`
	CreatedAt   time.Time     `json:"createdAt"   bson:"created_at"`
	UpdatedAt   time.Time     `json:"updatedAt"   bson:"updated_at"`
}
