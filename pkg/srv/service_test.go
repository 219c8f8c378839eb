package srv

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStopServices_ReverseOrder(t *testing.T) {
	var order []int
	services := []Service{
		NewCleanup("one", func() error { order = append(order, 1); return nil }),
		NewCleanup("two", func() error { order = append(order, 2); return errors.New("boom") }),
		NewCleanup("three", func() error { order = append(order, 3); return nil }),
	}

	StopServices(context.Background(), services)

	assert.Equal(t, []int{3, 2, 1}, order)
}

func TestCleanup_NilFunc(t *testing.T) {
	svc := NewCleanup("noop", nil)
	assert.NoError(t, svc.Start(context.Background()))
	assert.NoError(t, svc.Shutdown(context.Background()))
}

func TestCleanup_NamesFailure(t *testing.T) {
	closed := errors.New("connection reset")
	svc := NewCleanup("session cache", func() error { return closed })

	err := svc.Shutdown(context.Background())
	require.ErrorIs(t, err, closed)
	assert.Equal(t, "close session cache: connection reset", err.Error())
}
