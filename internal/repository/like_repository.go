package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"engage_workspace/internal/apperr"
	"engage_workspace/model"
)

type LikeRepository interface {
	// Insert records the like; an already-liked pair surfaces as
	// apperr.ErrConflict through the unique index.
	Insert(ctx context.Context, user, post bson.ObjectID) error
	Delete(ctx context.Context, user, post bson.ObjectID) error
	Exists(ctx context.Context, user, post bson.ObjectID) (bool, error)
	// ExistsBatch resolves "has viewer liked each of posts" in one query.
	ExistsBatch(ctx context.Context, viewer bson.ObjectID, posts []bson.ObjectID) (map[bson.ObjectID]bool, error)
	// CountForAuthor counts likes on posts authored by author, from the
	// records themselves. Used by stats reconciliation.
	CountForAuthor(ctx context.Context, author bson.ObjectID) (int64, error)
}

type mongoLikeRepo struct {
	col *mongo.Collection
}

func NewMongoLikeRepo(db *mongo.Database) LikeRepository {
	return &mongoLikeRepo{col: db.Collection("likes")}
}

func (r *mongoLikeRepo) Insert(ctx context.Context, user, post bson.ObjectID) error {
	_, err := r.col.InsertOne(ctx, model.Like{
		UserID:    user,
		PostID:    post,
		CreatedAt: time.Now().UTC(),
	})
	return apperr.FromWrite(err)
}

func (r *mongoLikeRepo) Delete(ctx context.Context, user, post bson.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"user_id": user, "post_id": post})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *mongoLikeRepo) Exists(ctx context.Context, user, post bson.ObjectID) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"user_id": user, "post_id": post})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *mongoLikeRepo) ExistsBatch(ctx context.Context, viewer bson.ObjectID, posts []bson.ObjectID) (map[bson.ObjectID]bool, error) {
	out := make(map[bson.ObjectID]bool, len(posts))
	if len(posts) == 0 {
		return out, nil
	}
	cur, err := r.col.Find(ctx, bson.M{"user_id": viewer, "post_id": bson.M{"$in": posts}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var likes []model.Like
	if err := cur.All(ctx, &likes); err != nil {
		return nil, err
	}
	for _, l := range likes {
		out[l.PostID] = true
	}
	return out, nil
}

func (r *mongoLikeRepo) CountForAuthor(ctx context.Context, author bson.ObjectID) (int64, error) {
	pipe := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         "posts",
			"localField":   "post_id",
			"foreignField": "_id",
			"as":           "p",
		}}},
		{{Key: "$unwind", Value: "$p"}},
		{{Key: "$match", Value: bson.M{"p.user_id": author}}},
		{{Key: "$count", Value: "n"}},
	}
	cur, err := r.col.Aggregate(ctx, pipe)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var res []struct {
		N int64 `bson:"n"`
	}
	if err := cur.All(ctx, &res); err != nil {
		return 0, err
	}
	if len(res) == 0 {
		return 0, nil
	}
	return res[0].N, nil
}
