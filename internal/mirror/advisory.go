package mirror

import (
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"

	"engage_workspace/internal/observability"
)

// Advisory is the mirror services actually hold. Every write logs and
// swallows failures, so a dead or slow cache can never fail a mutation
// that already committed to the durable store. Reads report misses and
// errors identically: "no opinion, ask the store".
type Advisory struct {
	m   *Mirror
	log *slog.Logger
}

func NewAdvisory(m *Mirror, log *slog.Logger) *Advisory {
	if log == nil {
		log = slog.Default()
	}
	return &Advisory{m: m, log: log}
}

func (a *Advisory) swallow(op string, err error) {
	if err == nil {
		return
	}
	observability.MirrorErrors.Inc()
	a.log.Warn("mirror cache failure", "op", op, "error", err)
}

func (a *Advisory) SetLiked(post, user bson.ObjectID, liked bool) {
	if a == nil || a.m == nil {
		return
	}
	a.swallow("set_liked", a.m.SetLiked(post, user, liked))
}

func (a *Advisory) HasLiked(post, user bson.ObjectID) (liked bool, found bool) {
	if a == nil || a.m == nil {
		return false, false
	}
	liked, found, err := a.m.HasLiked(post, user)
	if err != nil {
		a.swallow("has_liked", err)
		return false, false
	}
	return liked, found
}

func (a *Advisory) SetFollowing(follower, following bson.ObjectID, active bool) {
	if a == nil || a.m == nil {
		return
	}
	a.swallow("set_following", a.m.SetFollowing(follower, following, active))
}

func (a *Advisory) HasFollowing(follower, following bson.ObjectID) (active bool, found bool) {
	if a == nil || a.m == nil {
		return false, false
	}
	active, found, err := a.m.HasFollowing(follower, following)
	if err != nil {
		a.swallow("has_following", err)
		return false, false
	}
	return active, found
}

func (a *Advisory) SetLikeCount(post bson.ObjectID, n int64) {
	if a == nil || a.m == nil {
		return
	}
	a.swallow("set_like_count", a.m.SetLikeCount(post, n))
}

func (a *Advisory) IncLikeCount(post bson.ObjectID, delta int64) {
	if a == nil || a.m == nil {
		return
	}
	a.swallow("inc_like_count", a.m.IncLikeCount(post, delta))
}

func (a *Advisory) SetFollowerCount(user bson.ObjectID, n int64) {
	if a == nil || a.m == nil {
		return
	}
	a.swallow("set_follower_count", a.m.SetFollowerCount(user, n))
}

func (a *Advisory) IncFollowerCount(user bson.ObjectID, delta int64) {
	if a == nil || a.m == nil {
		return
	}
	a.swallow("inc_follower_count", a.m.IncFollowerCount(user, delta))
}

func (a *Advisory) GetLikeCount(post bson.ObjectID) (n int64, found bool) {
	if a == nil || a.m == nil {
		return 0, false
	}
	n, found, err := a.m.GetLikeCount(post)
	if err != nil {
		a.swallow("get_like_count", err)
		return 0, false
	}
	return n, found
}

func (a *Advisory) GetFollowerCount(user bson.ObjectID) (n int64, found bool) {
	if a == nil || a.m == nil {
		return 0, false
	}
	n, found, err := a.m.GetFollowerCount(user)
	if err != nil {
		a.swallow("get_follower_count", err)
		return 0, false
	}
	return n, found
}
