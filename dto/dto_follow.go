package dto

type FollowResponse struct {
	Message        string `json:"message"`
	Status         string `json:"status,omitempty"` // pending | accepted
	FollowersCount int    `json:"followersCount"`
	FollowingCount int    `json:"followingCount"`
}
