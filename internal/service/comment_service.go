package service

import (
	"context"
	"strings"

	"linkup/internal/models"
	"linkup/internal/repository"
)

const maxCommentTextLen = 2000

// CommentService provides comment creation and removal logic.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
}

// AddCommentInput carries a new comment's fields.
type AddCommentInput struct {
	UserID uint
	PostID uint
	Text   string
}

// NewCommentService returns a new CommentService.
func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository, userRepo repository.UserRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
	}
}

// AddComment appends a comment to a post and returns only the new comment,
// not the whole post. Both the post and the author must exist.
func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, models.NewInvalidArgumentError("Comment text is required")
	}
	if len(in.Text) > maxCommentTextLen {
		return nil, models.NewInvalidArgumentError("Comment text too long (max 2000 characters)")
	}

	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:     in.PostID,
		UserID:     user.ID,
		AuthorName: user.Name,
		Text:       in.Text,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment identified by its own id within a post.
// The comment's author and the post's owner may delete; anyone else is
// forbidden. Returns the refreshed post.
func (s *CommentService) DeleteComment(ctx context.Context, userID, postID, commentID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, postID, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID && post.UserID != userID {
		return nil, models.NewForbiddenError("You can only delete your own comments")
	}

	if err := s.commentRepo.Delete(ctx, postID, commentID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID)
}
