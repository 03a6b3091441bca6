package dto

import "engage_workspace/model"

type CreateCommentReq struct {
	Content       string  `json:"content" validate:"required,min=1,max=2000"`
	ParentComment *string `json:"parentComment,omitempty" validate:"omitempty,len=24,hexadecimal"`
}

// EngagementResponse is the envelope every counter mutation returns:
// what happened plus the updated aggregate.
type EngagementResponse struct {
	Message    string           `json:"message"`
	PostID     string           `json:"postId"`
	CommentID  string           `json:"commentId,omitempty"`
	IsLiked    bool             `json:"isLiked,omitempty"`
	IsShared   bool             `json:"isShared,omitempty"`
	Engagement model.Engagement `json:"engagement"`
}

// LikeStatusResponse answers the point lookup "has the viewer liked this
// post", served mirror-first with the durable store as fallback.
type LikeStatusResponse struct {
	PostID    string `json:"postId"`
	IsLiked   bool   `json:"isLiked"`
	LikeCount int64  `json:"likeCount"`
}
