// Package memory decides how each chat turn is answered and assembles the
// context handed to the generator.
package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/carebot/internal/config"
	"github.com/sandevgo/carebot/internal/core"
	"github.com/sandevgo/carebot/internal/observability"
	"github.com/sandevgo/carebot/internal/service/timeparse"
	"github.com/sandevgo/carebot/pkg/log"
	"golang.org/x/sync/errgroup"
)

const (
	ReplyEmpty           = "I'm here to listen! What's on your mind? 😊"
	ReplyGreeting        = "Hi there! 😊 How is your day going?"
	ReplyFallback        = "I'm having trouble generating a response right now. Try again later."
	ReplyEmotionalNoPast = "I'm here for you. Do you want to talk about why you feel this way? 💙"

	replySeriousFormat  = "It sounds like something serious happened (you mentioned %q). Do you want to talk about it? ❤️"
	replyFollowUpFormat = "Last time, you mentioned %q. How are you feeling now? ❤️"
)

const (
	defaultSimilarLimit = 3
	defaultHistoryLimit = 5
)

type Deps struct {
	Vectors  core.VectorStore
	Store    core.StructuredStore
	Cache    core.SessionCache
	Embedder core.Embedder
	Greeter  core.GreetingDetector
	Severity core.SeverityClassifier
	AI       core.AIProvider
	Prompter *SysPrompt
	// Metrics and Clock are optional.
	Metrics *observability.Metrics
	Clock   core.Clock
}

type Coordinator struct {
	vectors  core.VectorStore
	store    core.StructuredStore
	cache    core.SessionCache
	embedder core.Embedder
	greeter  core.GreetingDetector
	severity core.SeverityClassifier
	ai       core.AIProvider
	prompter *SysPrompt
	metrics  *observability.Metrics
	clock    core.Clock

	similarLimit int
	historyLimit int
	maxTokens    int
	flagTTL      time.Duration
	countTokens  func(string) int

	locks *keyedMutex
}

func NewCoordinator(cfg *config.AppConfig, deps Deps) *Coordinator {
	c := &Coordinator{
		vectors:      deps.Vectors,
		store:        deps.Store,
		cache:        deps.Cache,
		embedder:     deps.Embedder,
		greeter:      deps.Greeter,
		severity:     deps.Severity,
		ai:           deps.AI,
		prompter:     deps.Prompter,
		metrics:      deps.Metrics,
		clock:        deps.Clock,
		similarLimit: cfg.SimilarLimit,
		historyLimit: cfg.HistoryLimit,
		maxTokens:    cfg.MaxContextTokens,
		flagTTL:      cfg.FlagTTL,
		countTokens:  countTokens,
		locks:        newKeyedMutex(),
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	if c.prompter == nil {
		c.prompter = NewSysPrompt("")
	}
	if c.similarLimit <= 0 {
		c.similarLimit = defaultSimilarLimit
	}
	if c.historyLimit <= 0 {
		c.historyLimit = defaultHistoryLimit
	}
	return c
}

// Handle answers one inbound turn. Only storage and embedding failures are
// returned as errors; generator failures fall back to a fixed reply.
func (c *Coordinator) Handle(ctx context.Context, req core.Request) (core.Reply, error) {
	start := time.Now()

	owner := strings.TrimSpace(req.OwnerID)
	if owner == "" {
		owner = core.DefaultOwnerID
	}
	message := strings.TrimSpace(req.Message)

	logger := log.FromCtx(ctx).With().Str("owner", owner).Logger()
	ctx = logger.WithContext(ctx)

	out, err := c.handle(ctx, owner, message)
	if err != nil {
		logger.Error().Err(err).Msg("turn failed")
		return core.Reply{}, err
	}

	logger.Debug().
		Str("intent", out.Intent.String()).
		Dur("took", time.Since(start)).
		Msg("turn answered")

	if c.metrics != nil {
		c.metrics.ObserveTurn(out.Intent.String(), time.Since(start))
	}
	return out, nil
}

func (c *Coordinator) handle(ctx context.Context, owner, message string) (core.Reply, error) {
	if message == "" {
		return reply(owner, core.IntentEmpty, ReplyEmpty), nil
	}

	unlock := c.locks.Lock(owner)
	defer unlock()

	// A serious keyword outranks a greeting: "hi, I feel hopeless" must be flagged.
	tag := c.severity.Classify(message)
	if !tag.Serious() && c.isGreeting(ctx, message) {
		return reply(owner, core.IntentGreeting, c.greet(ctx, owner, message)), nil
	}

	flag, acknowledged, err := c.activeFlag(ctx, owner, message)
	if err != nil {
		return core.Reply{}, err
	}
	if flag != nil {
		return reply(owner, core.IntentFlaggedFollowUp, fmt.Sprintf(replyFollowUpFormat, flag.Topic())), nil
	}

	if !acknowledged && tag.Serious() {
		return c.raiseFlag(ctx, owner, message, tag)
	}

	return c.converse(ctx, owner, message, classifyIntent(message))
}

func (c *Coordinator) isGreeting(ctx context.Context, message string) bool {
	if c.greeter == nil {
		return false
	}
	sim, err := c.greeter.Similarity(ctx, message)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("greeting check failed")
		return false
	}
	return sim > c.greeter.Threshold()
}

func (c *Coordinator) greet(ctx context.Context, owner, message string) string {
	bundle := core.ContextBundle{OwnerID: owner, Message: message, Intent: core.IntentGreeting}
	return c.generate(ctx, bundle, ReplyGreeting)
}

// activeFlag returns the flag that should short-circuit this turn. Expired flags
// and flags the owner acknowledges are cleared on the way; the bool reports an
// acknowledgment so the same message is not flagged again.
func (c *Coordinator) activeFlag(ctx context.Context, owner, message string) (*core.FlaggedIssue, bool, error) {
	logger := log.FromCtx(ctx)

	flag, err := c.store.GetLastFlaggedIssue(ctx, owner)
	if err != nil {
		return nil, false, storageErr("get flagged issue", err)
	}
	if flag == nil {
		return nil, false, nil
	}

	acked := false
	switch {
	case c.flagTTL > 0 && c.clock().Sub(flag.FlaggedAt) > c.flagTTL:
		logger.Info().Time("flagged_at", flag.FlaggedAt).Msg("flagged issue expired")
	case isAcknowledgment(message):
		logger.Info().Msg("flagged issue acknowledged")
		acked = true
	default:
		return flag, false, nil
	}

	if err := c.store.ClearFlaggedIssue(ctx, owner); err != nil {
		return nil, false, storageErr("clear flagged issue", err)
	}
	return nil, acked, nil
}

func (c *Coordinator) raiseFlag(ctx context.Context, owner, message string, tag core.SeverityTag) (core.Reply, error) {
	if _, _, _, err := c.remember(ctx, owner, message); err != nil {
		return core.Reply{}, err
	}

	issue := core.FlaggedIssue{
		OwnerID:   owner,
		Message:   message,
		Category:  tag.Category,
		Keyword:   tag.Keyword,
		FlaggedAt: c.clock(),
	}
	if err := c.store.SetFlaggedIssue(ctx, issue); err != nil {
		return core.Reply{}, storageErr("set flagged issue", err)
	}

	log.FromCtx(ctx).Info().
		Str("category", tag.Category).
		Str("keyword", tag.Keyword).
		Msg("serious issue flagged")
	if c.metrics != nil {
		c.metrics.FlagsRaised.WithLabelValues(tag.Category).Inc()
	}

	return reply(owner, core.IntentSeriousIssue, fmt.Sprintf(replySeriousFormat, tag.Keyword)), nil
}

// remember embeds the message, appends it to the history and indexes it.
func (c *Coordinator) remember(ctx context.Context, owner, message string) ([]float32, core.RecordHandle, core.HistoryEntry, error) {
	vec, err := c.embedder.Embed(ctx, message)
	if err != nil {
		return nil, core.RecordHandle{}, core.HistoryEntry{}, fmt.Errorf("embed message: %w", err)
	}

	// History goes first: a failed append must not leave a searchable record
	// behind for a turn that reported an error.
	entry, err := c.store.AppendHistory(ctx, owner, message)
	if err != nil {
		return nil, core.RecordHandle{}, core.HistoryEntry{}, storageErr("append history", err)
	}

	handle, err := c.vectors.Add(ctx, owner, message, vec)
	if err != nil {
		if errors.Is(err, core.ErrDimensionMismatch) {
			return nil, core.RecordHandle{}, core.HistoryEntry{}, err
		}
		return nil, core.RecordHandle{}, core.HistoryEntry{}, storageErr("add memory record", err)
	}
	return vec, handle, entry, nil
}

func (c *Coordinator) converse(ctx context.Context, owner, message string, intent core.Intent) (core.Reply, error) {
	vec, handle, entry, err := c.remember(ctx, owner, message)
	if err != nil {
		return core.Reply{}, err
	}

	if intent == core.IntentRoutineRequest {
		if err := c.storeActivities(ctx, owner, message); err != nil {
			return core.Reply{}, err
		}
	}

	bundle, err := c.buildContext(ctx, owner, message, intent, vec, handle, entry)
	if err != nil {
		return core.Reply{}, err
	}

	if intent == core.IntentEmotionalQuery && len(bundle.PastMessages) == 0 {
		return reply(owner, intent, ReplyEmotionalNoPast), nil
	}

	return reply(owner, intent, c.generate(ctx, bundle, ReplyFallback)), nil
}

func (c *Coordinator) storeActivities(ctx context.Context, owner, message string) error {
	pairs := timeparse.ExtractActivities(message)
	if len(pairs) == 0 {
		return nil
	}

	for _, p := range pairs {
		entry := core.RoutineEntry{OwnerID: owner, Activity: p.Activity, TimeOfDay: p.Time}
		if err := c.store.UpsertRoutine(ctx, entry); err != nil {
			return storageErr("upsert routine", err)
		}
	}

	if c.cache != nil {
		if err := c.cache.Put(ctx, owner, pairs); err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("failed to cache activities")
		}
	}
	return nil
}

// buildContext runs the lookups of a normal turn concurrently. The record and
// history entry stored for this very message are excluded.
func (c *Coordinator) buildContext(
	ctx context.Context,
	owner, message string,
	intent core.Intent,
	vec []float32,
	self core.RecordHandle,
	current core.HistoryEntry,
) (core.ContextBundle, error) {
	bundle := core.ContextBundle{OwnerID: owner, Message: message, Intent: intent}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		matches, err := c.vectors.Query(gctx, owner, vec, c.similarLimit+1)
		if err != nil {
			return storageErr("query similar messages", err)
		}
		past := make([]core.Match, 0, len(matches))
		for _, m := range matches {
			if m.Record.ID == self.ID {
				continue
			}
			past = append(past, m)
		}
		if len(past) > c.similarLimit {
			past = past[:c.similarLimit]
		}
		bundle.PastMessages = past
		return nil
	})

	g.Go(func() error {
		routine, err := c.store.GetRoutine(gctx, owner)
		if err != nil {
			return storageErr("get routine", err)
		}
		bundle.Routine = routine
		return nil
	})

	g.Go(func() error {
		history, err := c.store.GetRecentHistory(gctx, owner, c.historyLimit+1)
		if err != nil {
			return storageErr("get recent history", err)
		}
		recent := make([]core.HistoryEntry, 0, len(history))
		for _, h := range history {
			if h.ID == current.ID {
				continue
			}
			recent = append(recent, h)
		}
		if len(recent) > c.historyLimit {
			recent = recent[:c.historyLimit]
		}
		bundle.RecentHistory = recent
		return nil
	})

	if c.cache != nil {
		g.Go(func() error {
			acts, ok, err := c.cache.Get(gctx, owner)
			if err != nil {
				log.FromCtx(ctx).Warn().Err(err).Msg("session cache lookup failed")
				return nil
			}
			if ok {
				bundle.CachedActivities = acts
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return core.ContextBundle{}, err
	}

	if c.metrics != nil {
		c.metrics.RetrievedMatches.Observe(float64(len(bundle.PastMessages)))
	}
	return bundle, nil
}

func (c *Coordinator) generate(ctx context.Context, bundle core.ContextBundle, fallback string) string {
	msgs := fitBudget(bundle, c.maxTokens, c.countTokens, c.prompter.Build)

	resp, err := c.ai.Chat(ctx, msgs)
	if err == nil && strings.TrimSpace(resp.Content) == "" {
		err = fmt.Errorf("%w: empty completion", core.ErrGeneration)
	}
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("intent", bundle.Intent.String()).Msg("generation failed, using fallback")
		if c.metrics != nil {
			c.metrics.GenerationErrors.Inc()
		}
		return fallback
	}
	return strings.TrimSpace(resp.Content)
}

func reply(owner string, intent core.Intent, text string) core.Reply {
	return core.Reply{OwnerID: owner, Intent: intent, Text: text}
}

func storageErr(op string, err error) error {
	if errors.Is(err, core.ErrStorage) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", core.ErrStorage, op, err)
}
