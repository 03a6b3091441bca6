package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"engage_workspace/model"
)

// JobRepository is the durable queue behind the broker-backed dispatcher.
// Claiming uses an atomic pending→running transition with a lease, so a
// job is held by at most one worker at a time; a worker that dies keeps
// the lease until it expires and the job is then reclaimable
// (at-least-once delivery).
type JobRepository interface {
	Enqueue(ctx context.Context, job model.Job) error
	// ClaimNext returns the highest-priority due pending job, or nil when
	// the queue is empty.
	ClaimNext(ctx context.Context, now time.Time, lease time.Duration) (*model.Job, error)
	Complete(ctx context.Context, id string) error
	// Fail reschedules the job at retryAt, or marks it dead when its
	// attempts are exhausted.
	Fail(ctx context.Context, id string, cause string, retryAt time.Time, dead bool) error
	// ReapExpired returns running jobs with lapsed leases to pending.
	ReapExpired(ctx context.Context, now time.Time) (int64, error)
}

type mongoJobRepo struct {
	col *mongo.Collection
}

func NewMongoJobRepo(db *mongo.Database) JobRepository {
	return &mongoJobRepo{col: db.Collection("jobs")}
}

func (r *mongoJobRepo) Enqueue(ctx context.Context, job model.Job) error {
	_, err := r.col.InsertOne(ctx, job)
	return err
}

func (r *mongoJobRepo) ClaimNext(ctx context.Context, now time.Time, lease time.Duration) (*model.Job, error) {
	filter := bson.M{
		"status": model.JobPending,
		"run_at": bson.M{"$lte": now},
	}
	update := bson.M{
		"$set": bson.M{
			"status":       model.JobRunning,
			"leased_until": now.Add(lease),
			"updated_at":   now,
		},
		"$inc": bson.M{"attempts": 1},
	}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "priority", Value: -1}, {Key: "run_at", Value: 1}}).
		SetReturnDocument(options.After)

	var job model.Job
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&job)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *mongoJobRepo) Complete(ctx context.Context, id string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": model.JobDone, "updated_at": time.Now().UTC()}},
	)
	return err
}

func (r *mongoJobRepo) Fail(ctx context.Context, id string, cause string, retryAt time.Time, dead bool) error {
	status := model.JobPending
	if dead {
		status = model.JobDead
	}
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"status":     status,
			"run_at":     retryAt,
			"last_error": cause,
			"updated_at": time.Now().UTC(),
		}},
	)
	return err
}

func (r *mongoJobRepo) ReapExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.col.UpdateMany(ctx,
		bson.M{"status": model.JobRunning, "leased_until": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{"status": model.JobPending, "updated_at": now}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
