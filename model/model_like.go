package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Like records one user liking one post. Uniqueness of (user_id, post_id)
// is enforced by an index; a duplicate insert is the idempotent
// already-liked case.
type Like struct {
	ID        bson.ObjectID `json:"id"        bson:"_id,omitempty"`
	UserID    bson.ObjectID `json:"userId"    bson:"user_id"`
	PostID    bson.ObjectID `json:"postId"    bson:"post_id"`
	CreatedAt time.Time     `json:"createdAt" bson:"created_at"`
}
