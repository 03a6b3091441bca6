package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Visibility values for posts.
const (
	VisibilityPublic    = "public"
	VisibilityFollowers = "followers"
	VisibilityPrivate   = "private"
)

// Engagement holds the denormalized counters kept on every post.
// The durable store is the only authority for these numbers; the mirror
// cache carries best-effort copies with a TTL.
type Engagement struct {
	Likes    int `json:"likes"    bson:"likes"`
	Comments int `json:"comments" bson:"comments"`
	Shares   int `json:"shares"   bson:"shares"`
	Views    int `json:"views"    bson:"views"`
}

type Post struct {
	ID          bson.ObjectID `json:"id"          bson:"_id,omitempty"`
	UserID      bson.ObjectID `json:"userId"      bson:"user_id"`
	ContentType string        `json:"contentType" bson:"content_type"`
	PostText    string        `json:"postText"    bson:"post_text"`
	Industries  []string      `json:"industries"  bson:"industries,omitempty"`
	Visibility  string        `json:"visibility"  bson:"visibility"`
	Engagement  Engagement    `json:"engagement"  bson:"engagement"`
	Score       float64       `json:"score"       bson:"score"`
	IsActive    bool          `json:"isActive"    bson:"is_active"`
	CreatedAt   time.Time     `json:"createdAt"   bson:"created_at"`
	UpdatedAt   time.Time     `json:"updatedAt"   bson:"updated_at"`
}
