// Package mirror is the fast, TTL-bound secondary index of engagement
// counters and set memberships. It is never authoritative: every entry
// expires, writes are best-effort, and readers fall back to the durable
// store on a miss.
package mirror

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Key layout. Membership keys are present-or-absent; counter keys hold a
// decimal int64.
func likedKey(post, user bson.ObjectID) []byte {
	return []byte("liked:" + post.Hex() + ":" + user.Hex())
}

func followKey(follower, following bson.ObjectID) []byte {
	return []byte("follows:" + follower.Hex() + ":" + following.Hex())
}

func counterKey(kind string, id bson.ObjectID) []byte {
	return []byte(kind + ":" + id.Hex())
}

// Mirror wraps one badger instance. All methods return errors; services
// use Advisory, which logs and swallows them.
type Mirror struct {
	db  *badger.DB
	ttl time.Duration
}

// Open creates a badger-backed mirror. An empty path opens the store in
// memory (test and single-node dev setups).
func Open(path string, ttl time.Duration) (*Mirror, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open mirror cache: %w", err)
	}
	return &Mirror{db: db, ttl: ttl}, nil
}

func (m *Mirror) Close() error { return m.db.Close() }

func (m *Mirror) setMember(key []byte, member bool) error {
	return m.db.Update(func(txn *badger.Txn) error {
		if !member {
			err := txn.Delete(key)
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		e := badger.NewEntry(key, []byte{1}).WithTTL(m.ttl)
		return txn.SetEntry(e)
	})
}

func (m *Mirror) hasMember(key []byte) (member bool, found bool, err error) {
	err = m.db.View(func(txn *badger.Txn) error {
		_, getErr := txn.Get(key)
		if getErr == badger.ErrKeyNotFound {
			return nil
		}
		if getErr != nil {
			return getErr
		}
		member, found = true, true
		return nil
	})
	return member, found, err
}

func (m *Mirror) setCounter(key []byte, n int64) error {
	return m.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(key, []byte(strconv.FormatInt(n, 10))).WithTTL(m.ttl)
		return txn.SetEntry(e)
	})
}

func (m *Mirror) incCounter(key []byte, delta int64) error {
	return m.db.Update(func(txn *badger.Txn) error {
		var cur int64
		item, err := txn.Get(key)
		switch {
		case err == badger.ErrKeyNotFound:
			// No mirrored value: leave it absent rather than invent one.
			// The next authoritative write seeds it via setCounter.
			return nil
		case err != nil:
			return err
		}
		if err := item.Value(func(v []byte) error {
			cur, _ = strconv.ParseInt(string(v), 10, 64)
			return nil
		}); err != nil {
			return err
		}
		next := cur + delta
		if next < 0 {
			next = 0
		}
		e := badger.NewEntry(key, []byte(strconv.FormatInt(next, 10))).WithTTL(m.ttl)
		return txn.SetEntry(e)
	})
}

func (m *Mirror) getCounter(key []byte) (n int64, found bool, err error) {
	err = m.db.View(func(txn *badger.Txn) error {
		item, getErr := txn.Get(key)
		if getErr == badger.ErrKeyNotFound {
			return nil
		}
		if getErr != nil {
			return getErr
		}
		return item.Value(func(v []byte) error {
			parsed, parseErr := strconv.ParseInt(string(v), 10, 64)
			if parseErr != nil {
				return parseErr
			}
			n, found = parsed, true
			return nil
		})
	})
	return n, found, err
}

// SetLiked records or clears "user has liked post".
func (m *Mirror) SetLiked(post, user bson.ObjectID, liked bool) error {
	return m.setMember(likedKey(post, user), liked)
}

// HasLiked answers the point lookup. found=false means the mirror has no
// opinion and the caller must ask the durable store.
func (m *Mirror) HasLiked(post, user bson.ObjectID) (liked bool, found bool, err error) {
	return m.hasMember(likedKey(post, user))
}

func (m *Mirror) SetFollowing(follower, following bson.ObjectID, active bool) error {
	return m.setMember(followKey(follower, following), active)
}

func (m *Mirror) HasFollowing(follower, following bson.ObjectID) (following_ bool, found bool, err error) {
	return m.hasMember(followKey(follower, following))
}

// SetLikeCount seeds the mirrored like counter with an authoritative value.
func (m *Mirror) SetLikeCount(post bson.ObjectID, n int64) error {
	return m.setCounter(counterKey("likes", post), n)
}

// IncLikeCount nudges an already-mirrored counter; a missing entry stays
// missing (see incCounter).
func (m *Mirror) IncLikeCount(post bson.ObjectID, delta int64) error {
	return m.incCounter(counterKey("likes", post), delta)
}

func (m *Mirror) GetLikeCount(post bson.ObjectID) (int64, bool, error) {
	return m.getCounter(counterKey("likes", post))
}

func (m *Mirror) SetFollowerCount(user bson.ObjectID, n int64) error {
	return m.setCounter(counterKey("followers", user), n)
}

func (m *Mirror) IncFollowerCount(user bson.ObjectID, delta int64) error {
	return m.incCounter(counterKey("followers", user), delta)
}

func (m *Mirror) GetFollowerCount(user bson.ObjectID) (int64, bool, error) {
	return m.getCounter(counterKey("followers", user))
}
