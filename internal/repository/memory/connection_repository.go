package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/letsconnect/connect-backend/internal/domain"
	"github.com/letsconnect/connect-backend/internal/repository"
)

type ConnectionRepository struct {
	s *Store
}

var _ repository.ConnectionRepository = (*ConnectionRepository)(nil)

func copyConnection(c *domain.Connection) *domain.Connection {
	out := *c
	out.ConnectionData = copyProfile(c.ConnectionData)
	return &out
}

func (r *ConnectionRepository) Upsert(_ context.Context, conn *domain.Connection) error {
	if err := conn.Validate(); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.profiles[conn.UserID]; !ok {
		return domain.ErrProfileNotFound
	}
	if _, ok := r.s.profiles[conn.ConnectedUserID]; !ok {
		return domain.ErrProfileNotFound
	}

	now := r.s.now()
	key := pair{conn.UserID, conn.ConnectedUserID}
	if existing, ok := r.s.connections[key]; ok {
		conn.ID = existing.ID
		conn.CreatedAt = existing.CreatedAt
		conn.ConnectionType = existing.ConnectionType
		if conn.Notes == "" {
			conn.Notes = existing.Notes
		}
		if conn.ConnectionData == nil {
			conn.ConnectionData = existing.ConnectionData
		}
	} else {
		if conn.ID == "" {
			conn.ID = uuid.NewString()
		}
		conn.CreatedAt = now
	}
	conn.UpdatedAt = now
	r.s.connections[key] = copyConnection(conn)
	return nil
}

func (r *ConnectionRepository) Get(_ context.Context, userID, connectedUserID string) (*domain.Connection, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.connections[pair{userID, connectedUserID}]
	if !ok {
		return nil, domain.ErrConnectionNotFound
	}
	return copyConnection(c), nil
}

func (r *ConnectionRepository) ListByUser(_ context.Context, userID string, limit, offset int) ([]*domain.Connection, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*domain.Connection
	for key, c := range r.s.connections {
		if key.a == userID {
			out = append(out, copyConnection(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ConnectedUserID < out[j].ConnectedUserID
	})
	return page(out, limit, offset), nil
}

func (r *ConnectionRepository) UpdateNotes(_ context.Context, userID, connectedUserID, notes string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.connections[pair{userID, connectedUserID}]
	if !ok {
		return domain.ErrConnectionNotFound
	}
	c.Notes = notes
	c.UpdatedAt = r.s.now()
	return nil
}

func (r *ConnectionRepository) Delete(_ context.Context, userID, connectedUserID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := pair{userID, connectedUserID}
	if _, ok := r.s.connections[key]; !ok {
		return domain.ErrConnectionNotFound
	}
	delete(r.s.connections, key)
	return nil
}
