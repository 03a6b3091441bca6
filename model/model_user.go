package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Account types.
const (
	AccountPublic  = "public"
	AccountPrivate = "private"
)

// UserStats are derived counters. They must always be reconcilable to a
// full scan of the engagement records (see services.StatsService).
type UserStats struct {
	FollowersCount int `json:"followersCount" bson:"followers_count"`
	FollowingCount int `json:"followingCount" bson:"following_count"`
	PostsCount     int `json:"postsCount"     bson:"posts_count"`
	LikesReceived  int `json:"likesReceived"  bson:"likes_received"`
}

type User struct {
	ID            bson.ObjectID `json:"id"            bson:"_id,omitempty"`
	Username      string        `json:"username"      bson:"username"`
	AccountType   string        `json:"accountType"   bson:"account_type"`
	Industries    []string      `json:"industries"    bson:"industries,omitempty"`
	IsVerified    bool          `json:"isVerified"    bson:"is_verified"`
	AllowComments bool          `json:"allowComments" bson:"allow_comments"`
	AllowShares   bool          `json:"allowShares"   bson:"allow_shares"`
	Stats         UserStats     `json:"stats"         bson:"stats"`
	CreatedAt     time.Time     `json:"createdAt"     bson:"created_at"`
	UpdatedAt     time.Time     `json:"updatedAt"     bson:"updated_at"`
}
