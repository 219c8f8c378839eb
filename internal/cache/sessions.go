package cache

import (
	"context"
	"time"

	"github.com/sandevgo/carebot/internal/core"
)

// Sessions is the in-process core.SessionCache.
type Sessions struct {
	ttl *TTL[[]core.ActivityTime]
}

func NewSessions(ttl time.Duration, capacity int, clock func() time.Time) *Sessions {
	return &Sessions{ttl: NewTTL[[]core.ActivityTime](ttl, capacity, clock)}
}

func (s *Sessions) Put(_ context.Context, key string, value []core.ActivityTime) error {
	s.ttl.Put(key, append([]core.ActivityTime(nil), value...))
	return nil
}

func (s *Sessions) Get(_ context.Context, key string) ([]core.ActivityTime, bool, error) {
	v, ok := s.ttl.Get(key)
	if !ok {
		return nil, false, nil
	}
	return append([]core.ActivityTime(nil), v...), true, nil
}
