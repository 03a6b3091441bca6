// Package bootstrap creates the indexes the engine relies on. The unique
// indexes are load-bearing: duplicate like/share/follow detection is done
// through index violations, not read-then-write checks.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// EnsureIndexes creates every index the engagement engine depends on.
func EnsureIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	unique := options.Index().SetUnique(true)

	pairs := []struct {
		col  string
		keys bson.D
		opts *options.IndexOptionsBuilder
	}{
		{"likes", bson.D{{Key: "user_id", Value: 1}, {Key: "post_id", Value: 1}}, unique},
		{"shares", bson.D{{Key: "user_id", Value: 1}, {Key: "post_id", Value: 1}}, unique},
		{"follows", bson.D{{Key: "follower_id", Value: 1}, {Key: "following_id", Value: 1}}, unique},
		{"follows", bson.D{{Key: "following_id", Value: 1}, {Key: "status", Value: 1}}, nil},
		{"posts", bson.D{{Key: "created_at", Value: -1}, {Key: "visibility", Value: 1}}, nil},
		{"posts", bson.D{{Key: "score", Value: -1}}, nil},
		{"posts", bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}, nil},
		{"comments", bson.D{{Key: "post_id", Value: 1}, {Key: "created_at", Value: -1}}, nil},
		{"comments", bson.D{{Key: "parent_comment", Value: 1}}, nil},
		{"jobs", bson.D{{Key: "queue", Value: 1}, {Key: "status", Value: 1}, {Key: "run_at", Value: 1}}, nil},
		{"jobs", bson.D{{Key: "status", Value: 1}, {Key: "leased_until", Value: 1}}, nil},
	}

	for _, p := range pairs {
		im := mongo.IndexModel{Keys: p.keys}
		if p.opts != nil {
			im.Options = p.opts
		}
		if _, err := db.Collection(p.col).Indexes().CreateOne(ctx, im); err != nil {
			return fmt.Errorf("ensure index on %s: %w", p.col, err)
		}
	}
	return nil
}
