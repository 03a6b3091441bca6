package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"engage_workspace/internal/apperr"
	"engage_workspace/model"
)

type ShareRepository interface {
	Insert(ctx context.Context, user, post bson.ObjectID) error
	Delete(ctx context.Context, user, post bson.ObjectID) error
	Exists(ctx context.Context, user, post bson.ObjectID) (bool, error)
}

type mongoShareRepo struct {
	col *mongo.Collection
}

func NewMongoShareRepo(db *mongo.Database) ShareRepository {
	return &mongoShareRepo{col: db.Collection("shares")}
}

func (r *mongoShareRepo) Insert(ctx context.Context, user, post bson.ObjectID) error {
	_, err := r.col.InsertOne(ctx, model.Share{
		UserID:    user,
		PostID:    post,
		CreatedAt: time.Now().UTC(),
	})
	return apperr.FromWrite(err)
}

func (r *mongoShareRepo) Delete(ctx context.Context, user, post bson.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"user_id": user, "post_id": post})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *mongoShareRepo) Exists(ctx context.Context, user, post bson.ObjectID) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"user_id": user, "post_id": post})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
