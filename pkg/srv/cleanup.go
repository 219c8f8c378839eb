package srv

import (
	"context"
	"fmt"
)

// cleanupService releases a resource (database, cache client, embedder) on
// shutdown. It has nothing to start.
type cleanupService struct {
	name    string
	cleanup func() error
}

func (c *cleanupService) Start(context.Context) error {
	return nil
}

func (c *cleanupService) Shutdown(context.Context) error {
	if c.cleanup == nil {
		return nil
	}
	if err := c.cleanup(); err != nil {
		return fmt.Errorf("close %s: %w", c.name, err)
	}
	return nil
}

func NewCleanup(name string, fn func() error) Service {
	return &cleanupService{name: name, cleanup: fn}
}
