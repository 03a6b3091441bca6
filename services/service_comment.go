package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"engage_workspace/dto"
	"engage_workspace/internal/apperr"
	"engage_workspace/internal/dispatch"
	"engage_workspace/internal/repository"
	"engage_workspace/model"
)

// CommentService creates and deletes comments and keeps the post's
// comment counter in step with them. Deleting a parent soft-deletes it
// and subtracts the whole thread (1 + replies) from the post counter,
// since the thread becomes unreachable.
type CommentService struct {
	posts    repository.PostRepository
	users    repository.UserRepository
	comments repository.CommentRepository
	jobs     dispatch.Dispatcher
	log      *slog.Logger
	clock    func() time.Time
}

func NewCommentService(
	posts repository.PostRepository,
	users repository.UserRepository,
	comments repository.CommentRepository,
	jobs dispatch.Dispatcher,
	log *slog.Logger,
) *CommentService {
	if log == nil {
		log = slog.Default()
	}
	return &CommentService{posts: posts, users: users, comments: comments, jobs: jobs, log: log, clock: time.Now}
}

func (s *CommentService) Create(ctx context.Context, actor, postID bson.ObjectID, req dto.CreateCommentReq) (*dto.EngagementResponse, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	author, err := s.users.FindByID(ctx, post.UserID)
	if err != nil {
		return nil, err
	}
	if !author.AllowComments {
		return nil, apperr.ErrForbidden
	}

	var parent *model.Comment
	var parentID *bson.ObjectID
	if req.ParentComment != nil && *req.ParentComment != "" {
		pid, err := bson.ObjectIDFromHex(*req.ParentComment)
		if err != nil {
			return nil, apperr.ErrNotFound
		}
		parent, err = s.comments.FindByID(ctx, pid)
		if err != nil {
			return nil, err
		}
		if parent.PostID != postID {
			// reply targets a comment on a different post
			return nil, apperr.ErrConflict
		}
		parentID = &pid
	}

	now := s.clock().UTC()
	commentID, err := s.comments.Insert(ctx, model.Comment{
		PostID:        postID,
		UserID:        actor,
		Content:       req.Content,
		ParentComment: parentID,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return nil, err
	}

	if err := s.posts.IncEngagement(ctx, postID, "comments", 1); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			if delErr := s.comments.Delete(ctx, commentID); delErr != nil {
				s.log.Error("compensate comment insert", "comment", commentID.Hex(), "error", delErr)
			}
		}
		return nil, err
	}
	post.Engagement.Comments++

	if parent != nil {
		if err := s.comments.IncReplies(ctx, parent.ID, 1); err != nil {
			s.log.Warn("increment replies counter", "comment", parent.ID.Hex(), "error", err)
		}
	}

	persistPostScore(ctx, s.posts, s.users, s.clock, s.log, post)

	enqueueNotification(ctx, s.jobs, s.log, "post_commented", post.UserID, actor, postID, commentID)

	return &dto.EngagementResponse{
		Message:    "comment created",
		PostID:     postID.Hex(),
		CommentID:  commentID.Hex(),
		Engagement: post.Engagement,
	}, nil
}

func (s *CommentService) Delete(ctx context.Context, actor, commentID bson.ObjectID) (*dto.EngagementResponse, error) {
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != actor {
		return nil, apperr.ErrForbidden
	}

	if err := s.comments.SoftDelete(ctx, commentID); err != nil {
		return nil, err
	}

	// The whole subtree disappears with its root.
	dec := 1 + comment.RepliesCount

	post, err := s.posts.FindByID(ctx, comment.PostID)
	if err != nil {
		s.log.Warn("load post for comment delete", "post", comment.PostID.Hex(), "error", err)
		return &dto.EngagementResponse{Message: "comment deleted", CommentID: commentID.Hex()}, nil
	}

	if err := s.posts.IncEngagement(ctx, comment.PostID, "comments", -dec); err != nil {
		s.log.Warn("decrement comment counter", "post", comment.PostID.Hex(), "error", err)
	} else {
		post.Engagement.Comments -= dec
	}

	if comment.ParentComment != nil {
		if err := s.comments.IncReplies(ctx, *comment.ParentComment, -1); err != nil {
			s.log.Warn("decrement replies counter", "comment", comment.ParentComment.Hex(), "error", err)
		}
	}

	persistPostScore(ctx, s.posts, s.users, s.clock, s.log, post)

	return &dto.EngagementResponse{
		Message:    "comment deleted",
		PostID:     comment.PostID.Hex(),
		CommentID:  commentID.Hex(),
		Engagement: post.Engagement,
	}, nil
}

// List returns a page of active comments for a post. Pass a parent id
// to list replies of one thread, nil for top-level comments.
func (s *CommentService) List(ctx context.Context, postID bson.ObjectID, parent *bson.ObjectID, limit int64) ([]model.Comment, error) {
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.comments.ListByPost(ctx, postID, parent, limit)
}
