package service

import (
	"context"
	"sort"

	"linkup/internal/models"
	"linkup/internal/repository"
)

// ConnectionService manages the symmetric connection graph and suggestions.
type ConnectionService struct {
	connRepo repository.ConnectionRepository
	userRepo repository.UserRepository
}

// NewConnectionService returns a new ConnectionService.
func NewConnectionService(connRepo repository.ConnectionRepository, userRepo repository.UserRepository) *ConnectionService {
	return &ConnectionService{
		connRepo: connRepo,
		userRepo: userRepo,
	}
}

// Connect links two users symmetrically. Each direction is its own write,
// so a crash between them can leave a transient one-sided edge; re-running
// the operation repairs it because both writes are idempotent.
func (s *ConnectionService) Connect(ctx context.Context, userID, targetID uint) (*models.User, error) {
	if userID == targetID {
		return nil, models.NewInvalidArgumentError("You cannot connect with yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	if err := s.connRepo.Add(ctx, userID, targetID); err != nil {
		return nil, err
	}
	if err := s.connRepo.Add(ctx, targetID, userID); err != nil {
		return nil, err
	}

	return s.userRepo.GetByID(ctx, targetID)
}

// Disconnect removes both directions of a connection. Removing an edge that
// does not exist is a no-op.
func (s *ConnectionService) Disconnect(ctx context.Context, userID, targetID uint) (*models.User, error) {
	if userID == targetID {
		return nil, models.NewInvalidArgumentError("You cannot disconnect from yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	if err := s.connRepo.Remove(ctx, userID, targetID); err != nil {
		return nil, err
	}
	if err := s.connRepo.Remove(ctx, targetID, userID); err != nil {
		return nil, err
	}

	return s.userRepo.GetByID(ctx, targetID)
}

// Suggestions returns every user the caller is not yet connected with,
// annotated with the number of mutual connections, ordered by mutual count
// descending then id ascending.
func (s *ConnectionService) Suggestions(ctx context.Context, userID uint) ([]*models.UserSuggestion, error) {
	me, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	mine := make(map[uint]bool, len(me.ConnectionIDs))
	for _, id := range me.ConnectionIDs {
		mine[id] = true
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	suggestions := make([]*models.UserSuggestion, 0, len(users))
	for _, u := range users {
		if u.ID == userID || mine[u.ID] {
			continue
		}
		mutual := 0
		for _, id := range u.ConnectionIDs {
			if mine[id] {
				mutual++
			}
		}
		suggestions = append(suggestions, &models.UserSuggestion{
			ID:            u.ID,
			Name:          u.Name,
			Email:         u.Email,
			Bio:           u.Bio,
			Avatar:        u.Avatar,
			ConnectionIDs: u.ConnectionIDs,
			MutualCount:   mutual,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].MutualCount != suggestions[j].MutualCount {
			return suggestions[i].MutualCount > suggestions[j].MutualCount
		}
		return suggestions[i].ID < suggestions[j].ID
	})
	return suggestions, nil
}
