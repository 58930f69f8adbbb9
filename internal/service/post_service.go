// Package service holds the business logic between HTTP handlers and
// repositories. Ownership and existence checks happen here, before any
// mutation is attempted.
package service

import (
	"context"
	"log/slog"

	"linkup/internal/blob"
	"linkup/internal/middleware"
	"linkup/internal/models"
	"linkup/internal/repository"
)

const maxPostTextLen = 10000

// PostService provides post lifecycle and like-toggle business logic.
type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	blobs    blob.Store
}

// CreatePostInput carries a new post's fields. Image is the raw upload;
// empty means no image.
type CreatePostInput struct {
	UserID uint
	Text   string
	Image  []byte
}

// EditPostInput carries a post edit. A nil Text leaves the text unchanged;
// a pointer to the empty string replaces it with the empty string.
type EditPostInput struct {
	UserID      uint
	PostID      uint
	Text        *string
	Image       []byte
	RemoveImage bool
}

// NewPostService returns a new PostService.
func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository, blobs blob.Store) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		blobs:    blobs,
	}
}

// CreatePost stores the image (if any) and then the post. An upload failure
// aborts creation: no post row is ever written with a dangling blob id.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if len(in.Text) > maxPostTextLen {
		return nil, models.NewInvalidArgumentError("Post text too long (max 10000 characters)")
	}

	imageID := ""
	if len(in.Image) > 0 {
		imageID, err = s.blobs.PutImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
	}

	post := &models.Post{
		UserID:     user.ID,
		AuthorName: user.Name,
		Text:       in.Text,
		ImageID:    imageID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// ListPosts returns posts newest first. limit <= 0 returns everything.
func (s *PostService) ListPosts(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.List(ctx, limit, offset)
}

// GetPost returns a single post.
func (s *PostService) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID)
}

// ToggleLike flips the caller's membership in the post's like set and
// returns the updated post. Toggling twice restores the original set.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	liked, err := s.postRepo.IsLiked(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if liked {
		err = s.postRepo.Unlike(ctx, userID, postID)
	} else {
		err = s.postRepo.Like(ctx, userID, postID)
	}
	if err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, postID)
}

// EditPost applies an owner-only edit, replacing text and image per the
// input semantics. Blob cleanup failures are logged and swallowed so blob
// store flakiness never blocks the post save.
func (s *PostService) EditPost(ctx context.Context, in EditPostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}

	if in.Text != nil {
		if len(*in.Text) > maxPostTextLen {
			return nil, models.NewInvalidArgumentError("Post text too long (max 10000 characters)")
		}
		post.Text = *in.Text
	}

	if in.RemoveImage && post.ImageID != "" {
		s.discardBlob(ctx, post.ImageID)
		post.ImageID = ""
	}

	if len(in.Image) > 0 {
		if post.ImageID != "" {
			s.discardBlob(ctx, post.ImageID)
			post.ImageID = ""
		}
		imageID, err := s.blobs.PutImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		post.ImageID = imageID
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, in.PostID)
}

// DeletePost removes an owner's post, best-effort deleting its image blob first.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	if post.ImageID != "" {
		s.discardBlob(ctx, post.ImageID)
	}

	return s.postRepo.Delete(ctx, postID)
}

// discardBlob deletes a blob best-effort. An already-absent blob is not an
// error; anything else is logged and swallowed because the primary record's
// consistency outranks blob cleanup.
func (s *PostService) discardBlob(ctx context.Context, blobID string) {
	if err := s.blobs.Delete(ctx, blobID); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to delete blob, continuing",
			slog.String("blob_id", blobID),
			slog.String("error", err.Error()),
		)
	}
}
