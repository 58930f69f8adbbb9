package service

import (
	"context"
	"testing"

	"linkup/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// connRepoStub is a stub for repository.ConnectionRepository.
type connRepoStub struct {
	addFn          func(context.Context, uint, uint) error
	removeFn       func(context.Context, uint, uint) error
	idsForUserFn   func(context.Context, uint) ([]uint, error)
	removeAllForFn func(context.Context, uint) error
}

func (s *connRepoStub) Add(ctx context.Context, userID, connectionID uint) error {
	return s.addFn(ctx, userID, connectionID)
}
func (s *connRepoStub) Remove(ctx context.Context, userID, connectionID uint) error {
	return s.removeFn(ctx, userID, connectionID)
}
func (s *connRepoStub) IDsForUser(ctx context.Context, userID uint) ([]uint, error) {
	return s.idsForUserFn(ctx, userID)
}
func (s *connRepoStub) RemoveAllFor(ctx context.Context, userID uint) error {
	return s.removeAllForFn(ctx, userID)
}

func noopConnRepo() *connRepoStub {
	return &connRepoStub{
		addFn:          func(_ context.Context, _, _ uint) error { return nil },
		removeFn:       func(_ context.Context, _, _ uint) error { return nil },
		idsForUserFn:   func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
		removeAllForFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// edgeRecorder tracks Add/Remove writes so tests can assert both
// directions of a connection were written.
type edge struct {
	from, to uint
}

func TestConnectionService_Connect(t *testing.T) {
	t.Parallel()

	t.Run("self-connect is rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewConnectionService(noopConnRepo(), noopUserRepo())
		_, err := svc.Connect(context.Background(), 3, 3)
		assertErrorCode(t, err, models.CodeInvalidArgument)
	})

	t.Run("absent target is not found", func(t *testing.T) {
		t.Parallel()
		ur := noopUserRepo()
		ur.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			if id == 99 {
				return nil, models.NewNotFoundError("User", id)
			}
			return &models.User{ID: id}, nil
		}
		svc := NewConnectionService(noopConnRepo(), ur)
		_, err := svc.Connect(context.Background(), 1, 99)
		assertErrorCode(t, err, models.CodeNotFound)
	})

	t.Run("writes both directions", func(t *testing.T) {
		t.Parallel()
		var writes []edge
		cr := noopConnRepo()
		cr.addFn = func(_ context.Context, userID, connectionID uint) error {
			writes = append(writes, edge{userID, connectionID})
			return nil
		}
		svc := NewConnectionService(cr, noopUserRepo())
		_, err := svc.Connect(context.Background(), 1, 2)
		require.NoError(t, err)
		assert.Equal(t, []edge{{1, 2}, {2, 1}}, writes)
	})

	t.Run("reconnecting is idempotent", func(t *testing.T) {
		t.Parallel()
		edges := map[edge]bool{}
		cr := noopConnRepo()
		cr.addFn = func(_ context.Context, userID, connectionID uint) error {
			edges[edge{userID, connectionID}] = true
			return nil
		}
		svc := NewConnectionService(cr, noopUserRepo())
		for i := 0; i < 2; i++ {
			_, err := svc.Connect(context.Background(), 1, 2)
			require.NoError(t, err)
		}
		assert.Len(t, edges, 2)
	})
}

func TestConnectionService_Disconnect(t *testing.T) {
	t.Parallel()

	t.Run("self-disconnect is rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewConnectionService(noopConnRepo(), noopUserRepo())
		_, err := svc.Disconnect(context.Background(), 3, 3)
		assertErrorCode(t, err, models.CodeInvalidArgument)
	})

	t.Run("removes both directions", func(t *testing.T) {
		t.Parallel()
		var removals []edge
		cr := noopConnRepo()
		cr.removeFn = func(_ context.Context, userID, connectionID uint) error {
			removals = append(removals, edge{userID, connectionID})
			return nil
		}
		svc := NewConnectionService(cr, noopUserRepo())
		_, err := svc.Disconnect(context.Background(), 1, 2)
		require.NoError(t, err)
		assert.Equal(t, []edge{{1, 2}, {2, 1}}, removals)
	})

	t.Run("disconnecting an absent edge is a no-op", func(t *testing.T) {
		t.Parallel()
		svc := NewConnectionService(noopConnRepo(), noopUserRepo())
		_, err := svc.Disconnect(context.Background(), 1, 2)
		assert.NoError(t, err)
	})
}

func TestConnectionService_Suggestions(t *testing.T) {
	t.Parallel()

	// Caller 1 is connected to 2. Candidates: 3 shares {2} with the
	// caller, 4 shares nothing, 5 also shares {2}. Expect mutual count
	// descending, ties broken by ascending id.
	ur := noopUserRepo()
	ur.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, ConnectionIDs: []uint{2}}, nil
	}
	ur.listFn = func(_ context.Context) ([]models.User, error) {
		return []models.User{
			{ID: 1, ConnectionIDs: []uint{2}},
			{ID: 2, ConnectionIDs: []uint{1, 3, 5}},
			{ID: 3, Name: "Three", ConnectionIDs: []uint{2}},
			{ID: 4, Name: "Four", ConnectionIDs: []uint{}},
			{ID: 5, Name: "Five", ConnectionIDs: []uint{2}},
		}, nil
	}
	svc := NewConnectionService(noopConnRepo(), ur)

	got, err := svc.Suggestions(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 3, "self and existing connections are excluded")

	assert.Equal(t, uint(3), got[0].ID)
	assert.Equal(t, 1, got[0].MutualCount)
	assert.Equal(t, uint(5), got[1].ID)
	assert.Equal(t, 1, got[1].MutualCount)
	assert.Equal(t, uint(4), got[2].ID)
	assert.Equal(t, 0, got[2].MutualCount)
}
