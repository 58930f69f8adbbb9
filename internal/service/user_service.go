package service

import (
	"context"
	"log/slog"

	"linkup/internal/blob"
	"linkup/internal/middleware"
	"linkup/internal/models"
	"linkup/internal/repository"
)

// UserService provides profile management and the account-delete cascade.
type UserService struct {
	userRepo repository.UserRepository
	postRepo repository.PostRepository
	connRepo repository.ConnectionRepository
	blobs    blob.Store
}

// UpdateProfileInput carries a profile edit. Empty Name or Bio leaves the
// field unchanged; Avatar is a raw image upload, empty means keep.
type UpdateProfileInput struct {
	UserID   uint
	TargetID uint
	Name     string
	Bio      string
	Avatar   []byte
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository, postRepo repository.PostRepository, connRepo repository.ConnectionRepository, blobs blob.Store) *UserService {
	return &UserService{
		userRepo: userRepo,
		postRepo: postRepo,
		connRepo: connRepo,
		blobs:    blobs,
	}
}

// GetProfile returns a user along with their posts, newest first.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, []*models.Post, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	posts, err := s.postRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return user, posts, nil
}

// UpdateProfile applies a self-only profile edit. A new avatar replaces the
// old blob; stale avatar cleanup is best-effort. Posts keep the author name
// they were created with, a rename does not rewrite them.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	if in.UserID != in.TargetID {
		return nil, models.NewForbiddenError("You can only update your own profile")
	}
	user, err := s.userRepo.GetByID(ctx, in.TargetID)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		user.Name = in.Name
	}
	if in.Bio != "" {
		user.Bio = in.Bio
	}

	if len(in.Avatar) > 0 {
		avatarID, err := s.blobs.PutImage(ctx, in.Avatar)
		if err != nil {
			return nil, err
		}
		if user.Avatar != "" {
			s.discardBlob(ctx, user.Avatar)
		}
		user.Avatar = avatarID
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, in.TargetID)
}

// DeleteAccount removes a user and everything they own: posts (with their
// image blobs), both directions of every connection, the avatar blob, and
// the user record itself last. Deleting the user record last means a crash
// mid-cascade leaves a user that still resolves, never dangling content
// pointing at a missing author.
func (s *UserService) DeleteAccount(ctx context.Context, userID, targetID uint) error {
	if userID != targetID {
		return models.NewForbiddenError("You can only delete your own account")
	}
	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	posts, err := s.postRepo.ListByUser(ctx, targetID)
	if err != nil {
		return err
	}
	for _, post := range posts {
		if post.ImageID != "" {
			s.discardBlob(ctx, post.ImageID)
		}
	}
	if err := s.postRepo.DeleteAllByUser(ctx, targetID); err != nil {
		return err
	}

	if err := s.connRepo.RemoveAllFor(ctx, targetID); err != nil {
		return err
	}

	if user.Avatar != "" {
		s.discardBlob(ctx, user.Avatar)
	}

	return s.userRepo.Delete(ctx, targetID)
}

func (s *UserService) discardBlob(ctx context.Context, blobID string) {
	if err := s.blobs.Delete(ctx, blobID); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to delete blob, continuing",
			slog.String("blob_id", blobID),
			slog.String("error", err.Error()),
		)
	}
}
