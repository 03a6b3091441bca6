package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"engage_workspace/internal/apperr"
	"engage_workspace/model"
)

type CommentRepository interface {
	Insert(ctx context.Context, c model.Comment) (bson.ObjectID, error)
	// FindByID returns active comments only; soft-deleted ones read as
	// missing.
	FindByID(ctx context.Context, id bson.ObjectID) (*model.Comment, error)
	SoftDelete(ctx context.Context, id bson.ObjectID) error
	// Delete removes the document outright. Only used as compensation when
	// a freshly inserted comment cannot be counted on its post.
	Delete(ctx context.Context, id bson.ObjectID) error
	IncReplies(ctx context.Context, id bson.ObjectID, delta int) error
	ListByPost(ctx context.Context, post bson.ObjectID, parent *bson.ObjectID, limit int64) ([]model.Comment, error)
}

type mongoCommentRepo struct {
	col *mongo.Collection
}

func NewMongoCommentRepo(db *mongo.Database) CommentRepository {
	return &mongoCommentRepo{col: db.Collection("comments")}
}

func (r *mongoCommentRepo) Insert(ctx context.Context, c model.Comment) (bson.ObjectID, error) {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	c.IsActive = true
	res, err := r.col.InsertOne(ctx, c)
	if err != nil {
		return bson.NilObjectID, err
	}
	id, _ := res.InsertedID.(bson.ObjectID)
	return id, nil
}

func (r *mongoCommentRepo) FindByID(ctx context.Context, id bson.ObjectID) (*model.Comment, error) {
	var c model.Comment
	err := r.col.FindOne(ctx, bson.M{"_id": id, "is_active": true}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *mongoCommentRepo) SoftDelete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "is_active": true},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *mongoCommentRepo) Delete(ctx context.Context, id bson.ObjectID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *mongoCommentRepo) IncReplies(ctx context.Context, id bson.ObjectID, delta int) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"replies_count": delta}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *mongoCommentRepo) ListByPost(ctx context.Context, post bson.ObjectID, parent *bson.ObjectID, limit int64) ([]model.Comment, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	filter := bson.M{"post_id": post, "is_active": true}
	if parent == nil {
		filter["parent_comment"] = bson.M{"$exists": false}
	} else {
		filter["parent_comment"] = *parent
	}

	findOpts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(limit)

	cur, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var items []model.Comment
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}
