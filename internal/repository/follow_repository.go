package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"engage_workspace/internal/apperr"
	"engage_workspace/model"
)

type FollowRepository interface {
	// Insert creates the edge; a second document for the same ordered pair
	// hits the unique index and comes back as apperr.ErrConflict.
	Insert(ctx context.Context, f model.Follow) (bson.ObjectID, error)
	FindPair(ctx context.Context, follower, following bson.ObjectID) (*model.Follow, error)
	Delete(ctx context.Context, follower, following bson.ObjectID) error
	UpdateStatus(ctx context.Context, follower, following bson.ObjectID, status string) error
	// ListFollowingIDs returns accepted targets of follower.
	ListFollowingIDs(ctx context.Context, follower bson.ObjectID) ([]bson.ObjectID, error)
	// ExistsAcceptedBatch reports, for each candidate, whether viewer has
	// an accepted follow on them. One query for the whole batch.
	ExistsAcceptedBatch(ctx context.Context, viewer bson.ObjectID, candidates []bson.ObjectID) (map[bson.ObjectID]bool, error)
	CountAcceptedFollowers(ctx context.Context, user bson.ObjectID) (int64, error)
	CountAcceptedFollowing(ctx context.Context, user bson.ObjectID) (int64, error)
}

type mongoFollowRepo struct {
	col *mongo.Collection
}

func NewMongoFollowRepo(db *mongo.Database) FollowRepository {
	return &mongoFollowRepo{col: db.Collection("follows")}
}

func (r *mongoFollowRepo) Insert(ctx context.Context, f model.Follow) (bson.ObjectID, error) {
	now := time.Now().UTC()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	f.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, f)
	if err != nil {
		return bson.NilObjectID, apperr.FromWrite(err)
	}
	id, _ := res.InsertedID.(bson.ObjectID)
	return id, nil
}

func (r *mongoFollowRepo) FindPair(ctx context.Context, follower, following bson.ObjectID) (*model.Follow, error) {
	var f model.Follow
	err := r.col.FindOne(ctx, bson.M{"follower_id": follower, "following_id": following}).Decode(&f)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *mongoFollowRepo) Delete(ctx context.Context, follower, following bson.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"follower_id": follower, "following_id": following})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *mongoFollowRepo) UpdateStatus(ctx context.Context, follower, following bson.ObjectID, status string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"follower_id": follower, "following_id": following},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *mongoFollowRepo) ListFollowingIDs(ctx context.Context, follower bson.ObjectID) ([]bson.ObjectID, error) {
	cur, err := r.col.Find(ctx, bson.M{"follower_id": follower, "status": model.FollowAccepted})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var edges []model.Follow
	if err := cur.All(ctx, &edges); err != nil {
		return nil, err
	}
	ids := make([]bson.ObjectID, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.FollowingID)
	}
	return ids, nil
}

func (r *mongoFollowRepo) ExistsAcceptedBatch(ctx context.Context, viewer bson.ObjectID, candidates []bson.ObjectID) (map[bson.ObjectID]bool, error) {
	out := make(map[bson.ObjectID]bool, len(candidates))
	if len(candidates) == 0 {
		return out, nil
	}
	cur, err := r.col.Find(ctx, bson.M{
		"follower_id":  viewer,
		"following_id": bson.M{"$in": candidates},
		"status":       model.FollowAccepted,
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var edges []model.Follow
	if err := cur.All(ctx, &edges); err != nil {
		return nil, err
	}
	for _, e := range edges {
		out[e.FollowingID] = true
	}
	return out, nil
}

func (r *mongoFollowRepo) CountAcceptedFollowers(ctx context.Context, user bson.ObjectID) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"following_id": user, "status": model.FollowAccepted})
}

func (r *mongoFollowRepo) CountAcceptedFollowing(ctx context.Context, user bson.ObjectID) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"follower_id": user, "status": model.FollowAccepted})
}
