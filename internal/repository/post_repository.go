package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"engage_workspace/internal/apperr"
	"engage_workspace/model"
)

// Candidate sorts used by the feed composer.
const (
	SortRecent     = "recent"     // created_at desc
	SortEngagement = "engagement" // likes desc, comments desc
	SortScore      = "score"      // score desc, created_at desc
)

// CandidateOptions select the feed candidate set. The visibility rule is:
// public posts when IncludePublic is set, plus public/followers-only posts
// from FollowedAuthors. The viewer's own posts are always excluded.
type CandidateOptions struct {
	Since           time.Time
	FollowedAuthors []bson.ObjectID
	IncludePublic   bool
	ExcludeAuthor   bson.ObjectID
	Industry        string
	SortBy          string
	Limit           int64
}

type PostRepository interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*model.Post, error)
	// FindByIDs returns the active posts among ids, preserving the order
	// of ids. Unresolvable ids are silently dropped.
	FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]model.Post, error)
	FindCandidates(ctx context.Context, opts CandidateOptions) ([]model.Post, error)
	// IncEngagement applies an atomic increment to one engagement counter.
	// Returns apperr.ErrNotFound when the post is gone or deactivated, so
	// callers can compensate.
	IncEngagement(ctx context.Context, id bson.ObjectID, field string, delta int) error
	SetScore(ctx context.Context, id bson.ObjectID, score float64) error
	CountByAuthor(ctx context.Context, author bson.ObjectID) (int64, error)
}

type mongoPostRepo struct {
	col *mongo.Collection
}

func NewMongoPostRepo(db *mongo.Database) PostRepository {
	return &mongoPostRepo{col: db.Collection("posts")}
}

func (r *mongoPostRepo) FindByID(ctx context.Context, id bson.ObjectID) (*model.Post, error) {
	var p model.Post
	err := r.col.FindOne(ctx, bson.M{"_id": id, "is_active": true}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *mongoPostRepo) FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]model.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}, "is_active": true})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var found []model.Post
	if err := cur.All(ctx, &found); err != nil {
		return nil, err
	}

	byID := make(map[bson.ObjectID]model.Post, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]model.Post, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func buildCandidateFilter(opts CandidateOptions) bson.M {
	and := []bson.M{{"is_active": true}}

	if !opts.Since.IsZero() {
		and = append(and, bson.M{"created_at": bson.M{"$gte": opts.Since}})
	}
	if !opts.ExcludeAuthor.IsZero() {
		and = append(and, bson.M{"user_id": bson.M{"$ne": opts.ExcludeAuthor}})
	}

	followVis := []string{model.VisibilityPublic, model.VisibilityFollowers}
	switch {
	case len(opts.FollowedAuthors) > 0 && opts.IncludePublic:
		and = append(and, bson.M{"$or": []bson.M{
			{"visibility": model.VisibilityPublic},
			{"user_id": bson.M{"$in": opts.FollowedAuthors}, "visibility": bson.M{"$in": followVis}},
		}})
	case len(opts.FollowedAuthors) > 0:
		and = append(and, bson.M{
			"user_id":    bson.M{"$in": opts.FollowedAuthors},
			"visibility": bson.M{"$in": followVis},
		})
	default:
		and = append(and, bson.M{"visibility": model.VisibilityPublic})
	}

	if opts.Industry != "" {
		and = append(and, bson.M{"industries": opts.Industry})
	}
	if len(and) == 1 {
		return and[0]
	}
	return bson.M{"$and": and}
}

func candidateSort(sortBy string) bson.D {
	switch sortBy {
	case SortEngagement:
		return bson.D{{Key: "engagement.likes", Value: -1}, {Key: "engagement.comments", Value: -1}}
	case SortScore:
		return bson.D{{Key: "score", Value: -1}, {Key: "created_at", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

func (r *mongoPostRepo) FindCandidates(ctx context.Context, opts CandidateOptions) ([]model.Post, error) {
	lim := opts.Limit
	if lim <= 0 || lim > 100 {
		lim = 100
	}

	findOpts := options.Find().
		SetSort(candidateSort(opts.SortBy)).
		SetLimit(lim)

	cur, err := r.col.Find(ctx, buildCandidateFilter(opts), findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var items []model.Post
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

var engagementFields = map[string]bool{
	"likes": true, "comments": true, "shares": true, "views": true,
}

func (r *mongoPostRepo) IncEngagement(ctx context.Context, id bson.ObjectID, field string, delta int) error {
	if !engagementFields[field] {
		return fmt.Errorf("unknown engagement field %q", field)
	}
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "is_active": true},
		bson.M{
			"$inc": bson.M{"engagement." + field: delta},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *mongoPostRepo) SetScore(ctx context.Context, id bson.ObjectID, score float64) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"score": score}},
	)
	return err
}

func (r *mongoPostRepo) CountByAuthor(ctx context.Context, author bson.ObjectID) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"user_id": author, "is_active": true})
}
