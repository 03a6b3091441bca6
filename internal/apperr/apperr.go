// Package apperr defines the error taxonomy shared by services and
// handlers. Repositories translate driver errors into these sentinels so
// nothing above them inspects mongo error codes.
package apperr

import (
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

var (
	// ErrNotFound: referenced post/user/comment/follow is missing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict: duplicate like/share/follow or an invalid transition.
	ErrConflict = errors.New("record already exists")
	// ErrForbidden: privacy settings disallow the action.
	ErrForbidden = errors.New("action not allowed")
)

const mongoDupKeyCode = 11000

// FromWrite maps a mongo write error to the taxonomy. Duplicate-key
// violations (code 11000) become ErrConflict; everything else passes
// through unchanged.
func FromWrite(err error) error {
	if err == nil {
		return nil
	}
	if IsDuplicateKey(err) {
		return ErrConflict
	}
	return err
}

// IsDuplicateKey reports whether err is a unique-index violation.
func IsDuplicateKey(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == mongoDupKeyCode {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == mongoDupKeyCode {
		return true
	}
	return false
}
