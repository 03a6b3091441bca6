package dto

import (
	"time"

	"engage_workspace/model"
)

type FeedQuery struct {
	Page          int    `query:"page"`
	Limit         int    `query:"limit"`
	Algorithm     string `query:"algorithm"`
	TimeRangeDays int    `query:"timeRangeDays"`
}

// FeedAuthor is the author block attached to every feed post, annotated
// with the viewer's relationship to them.
type FeedAuthor struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	IsVerified  bool   `json:"isVerified"`
	IsFollowing bool   `json:"isFollowing"`
}

type FeedPost struct {
	ID          string           `json:"id"`
	Author      FeedAuthor       `json:"author"`
	ContentType string           `json:"contentType"`
	PostText    string           `json:"postText"`
	Industries  []string         `json:"industries,omitempty"`
	Engagement  model.Engagement `json:"engagement"`
	Score       float64          `json:"score"`
	IsLiked     bool             `json:"isLiked"`
	CreatedAt   time.Time        `json:"createdAt"`
}

type FeedResponse struct {
	Items   []FeedPost `json:"items"`
	Page    int        `json:"page"`
	Limit   int        `json:"limit"`
	Count   int        `json:"count"`
	HasMore bool       `json:"hasMore"`
}
