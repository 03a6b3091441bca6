package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Comment is stored as an adjacency list: replies point at their parent
// through ParentComment and the parent carries a denormalized
// replies_count. Top-level comments have ParentComment == nil.
// Comments are soft-deleted via IsActive.
type Comment struct {
	ID            bson.ObjectID  `json:"id"            bson:"_id,omitempty"`
	PostID        bson.ObjectID  `json:"postId"        bson:"post_id"`
	UserID        bson.ObjectID  `json:"userId"        bson:"user_id"`
	Content       string         `json:"content"       bson:"content"`
	ParentComment *bson.ObjectID `json:"parentComment" bson:"parent_comment,omitempty"`
	RepliesCount  int            `json:"repliesCount"  bson:"replies_count"`
	IsActive      bool           `json:"isActive"      bson:"is_active"`
	CreatedAt     time.Time      `json:"createdAt"     bson:"created_at"`
	UpdatedAt     time.Time      `json:"updatedAt"     bson:"updated_at"`
}
