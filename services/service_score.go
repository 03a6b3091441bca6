package services

import (
	"math"
	"time"

	"engage_workspace/model"
)

// Score weights. The blended score is recomputed and persisted after
// every counter mutation so trending/global orderings stay current
// without a recomputation pass.
const (
	engagementWeight = 0.4
	recencyWeight    = 0.4
	relevanceWeight  = 0.2
	verifiedBoost    = 1.2
)

// ScoreInput carries everything the score depends on. The function is
// pure: identical inputs always produce the same value.
type ScoreInput struct {
	Engagement       model.Engagement
	CreatedAt        time.Time
	Now              time.Time
	ViewerIndustries []string
	PostIndustries   []string
	AuthorVerified   bool
}

// ComputeScore blends engagement, recency decay, and topical relevance:
//
//	score = (0.4·ln(likes + 2·comments + 3·shares + 1)
//	       + 0.4·(1 / (ageInHours + 1))
//	       + 0.2·|viewer ∩ post| / max(|viewer|, 1)) · boost
//
// With no viewer context (trending, global ranking) relevance is 0.
func ComputeScore(in ScoreInput) float64 {
	e := in.Engagement
	engagementScore := math.Log(float64(e.Likes+2*e.Comments+3*e.Shares) + 1)

	ageHours := in.Now.Sub(in.CreatedAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	recencyScore := 1 / (ageHours + 1)

	relevanceScore := industryOverlap(in.ViewerIndustries, in.PostIndustries)

	score := engagementWeight*engagementScore +
		recencyWeight*recencyScore +
		relevanceWeight*relevanceScore
	if in.AuthorVerified {
		score *= verifiedBoost
	}
	return score
}

func industryOverlap(viewer, post []string) float64 {
	if len(viewer) == 0 {
		return 0
	}
	set := make(map[string]bool, len(viewer))
	for _, v := range viewer {
		set[v] = true
	}
	overlap := 0
	for _, p := range post {
		if set[p] {
			overlap++
			set[p] = false // count each viewer industry once
		}
	}
	return float64(overlap) / float64(len(viewer))
}
