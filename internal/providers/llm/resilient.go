package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/carebot/internal/core"
	"github.com/sandevgo/carebot/pkg/log"
	"github.com/sandevgo/carebot/pkg/retry"
)

// Resilient bounds every attempt with a timeout and retries transient failures.
// Client errors other than 429 are not retried.
type Resilient struct {
	inner   core.AIProvider
	retrier *retry.Retrier
	timeout time.Duration
}

func NewResilient(inner core.AIProvider, retrier *retry.Retrier, timeout time.Duration) *Resilient {
	if retrier == nil {
		retrier = retry.NewDefaultRetrier()
	}
	return &Resilient{inner: inner, retrier: retrier, timeout: timeout}
}

func (r *Resilient) Chat(ctx context.Context, history []core.Message) (core.Message, error) {
	var out core.Message
	attempt := 0

	err := r.retrier.Do(ctx, func(ctx context.Context) error {
		attempt++
		callCtx := ctx
		if r.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}

		msg, err := r.inner.Chat(callCtx, history)
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Int("attempt", attempt).Msg("llm call failed")
			var httpErr *HTTPError
			if errors.As(err, &httpErr) && !httpErr.Retryable() {
				return retry.Permanent(err)
			}
			return err
		}
		if strings.TrimSpace(msg.Content) == "" {
			return errors.New("empty completion")
		}
		out = msg
		return nil
	})
	if err != nil {
		return core.Message{}, fmt.Errorf("%w: %w", core.ErrGeneration, err)
	}
	return out, nil
}

// Models delegates when the wrapped provider can list models.
func (r *Resilient) Models(ctx context.Context) ([]core.Model, error) {
	if l, ok := r.inner.(core.ModelLister); ok {
		return l.Models(ctx)
	}
	return nil, errors.New("provider does not list models")
}
