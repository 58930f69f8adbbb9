package repository

import (
	"context"

	"linkup/internal/cache"
	"linkup/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConnectionRepository manages the per-user halves of symmetric connections.
// Each method touches exactly one direction; callers compose the two writes.
type ConnectionRepository interface {
	// Add inserts the userID -> connectionID edge. Inserting an existing
	// edge is a no-op.
	Add(ctx context.Context, userID, connectionID uint) error
	// Remove deletes the userID -> connectionID edge. Removing an absent
	// edge is a no-op.
	Remove(ctx context.Context, userID, connectionID uint) error
	// IDsForUser returns the user's connection set, ordered ascending for
	// deterministic output.
	IDsForUser(ctx context.Context, userID uint) ([]uint, error)
	// RemoveAllFor deletes every edge referencing userID in either
	// direction. Used by the account-deletion cascade.
	RemoveAllFor(ctx context.Context, userID uint) error
}

type connectionRepository struct {
	db *gorm.DB
}

// NewConnectionRepository returns a new ConnectionRepository implementation.
func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

func (r *connectionRepository) Add(ctx context.Context, userID, connectionID uint) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Connection{UserID: userID, ConnectionID: connectionID}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, userID)
	return nil
}

func (r *connectionRepository) Remove(ctx context.Context, userID, connectionID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND connection_id = ?", userID, connectionID).
		Delete(&models.Connection{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, userID)
	return nil
}

func (r *connectionRepository) IDsForUser(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	err := r.db.WithContext(ctx).
		Model(&models.Connection{}).
		Where("user_id = ?", userID).
		Order("connection_id ASC").
		Pluck("connection_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *connectionRepository) RemoveAllFor(ctx context.Context, userID uint) error {
	var affected []uint
	if err := r.db.WithContext(ctx).
		Model(&models.Connection{}).
		Where("connection_id = ?", userID).
		Pluck("user_id", &affected).Error; err != nil {
		return models.NewInternalError(err)
	}

	err := r.db.WithContext(ctx).
		Where("user_id = ? OR connection_id = ?", userID, userID).
		Delete(&models.Connection{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}

	cache.InvalidateUser(ctx, userID)
	for _, id := range affected {
		cache.InvalidateUser(ctx, id)
	}
	return nil
}
