// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/minispace-dev/minispace/internal/metrics"
	"github.com/minispace-dev/minispace/internal/model"
)

// BreakerSettings configures the backend circuit breaker.
type BreakerSettings struct {
	// MaxFailures is the number of consecutive failures that opens the breaker.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

// Breaker guards a Repository with a circuit breaker. Every read is
// attempted at most once. A nil repository is permanently unavailable.
type Breaker struct {
	repo   Repository
	cb     *gobreaker.CircuitBreaker[any]
	logger *slog.Logger
}

// NewBreaker wraps repo. repo may be nil when no backend is configured.
func NewBreaker(repo Repository, s BreakerSettings, logger *slog.Logger) *Breaker {
	if s.MaxFailures == 0 {
		s.MaxFailures = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 30 * time.Second
	}

	b := &Breaker{repo: repo, logger: logger}

	metrics.BackendBreakerState.Set(0)

	b.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "content-backend",
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			// a client going away says nothing about backend health
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("content backend breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
			metrics.BackendBreakerState.Set(stateToFloat(to))
			metrics.BackendBreakerTransitions.WithLabelValues(from.String(), to.String()).Inc()
		},
	})

	return b
}

// Available reports whether reads may reach the backend.
func (b *Breaker) Available() bool {
	return b.repo != nil && b.cb.State() != gobreaker.StateOpen
}

// State returns the breaker state name, or "unconfigured" without a backend.
func (b *Breaker) State() string {
	if b.repo == nil {
		return "unconfigured"
	}
	return b.cb.State().String()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// guarded runs one repository read through the breaker.
func guarded[T any](b *Breaker, op string, fn func(Repository) (T, error)) (T, error) {
	var zero T
	if b.repo == nil {
		return zero, ErrUnavailable
	}

	result, err := b.cb.Execute(func() (any, error) {
		return fn(b.repo)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, ErrUnavailable
		}
		return zero, fmt.Errorf("%s: %w", op, err)
	}

	typed, ok := result.(T)
	if !ok && result != nil {
		return zero, fmt.Errorf("%s: unexpected result type %T", op, result)
	}
	return typed, nil
}

func (b *Breaker) GetUserData(ctx context.Context, username string) (*model.UserProfile, error) {
	return guarded(b, "getting user", func(r Repository) (*model.UserProfile, error) {
		return r.GetUserData(ctx, username)
	})
}

func (b *Breaker) GetUserTheme(ctx context.Context, username string) (string, error) {
	return guarded(b, "getting user theme", func(r Repository) (string, error) {
		return r.GetUserTheme(ctx, username)
	})
}

func (b *Breaker) GetUserPageData(ctx context.Context, username, slug string) (*model.Page, error) {
	return guarded(b, "getting page", func(r Repository) (*model.Page, error) {
		return r.GetUserPageData(ctx, username, slug)
	})
}

func (b *Breaker) GetUserCustomPages(ctx context.Context, username string) ([]model.CustomPage, error) {
	return guarded(b, "listing custom pages", func(r Repository) ([]model.CustomPage, error) {
		return r.GetUserCustomPages(ctx, username)
	})
}

func (b *Breaker) GetPosts(ctx context.Context, username string) ([]model.Post, error) {
	return guarded(b, "listing posts", func(r Repository) ([]model.Post, error) {
		return r.GetPosts(ctx, username)
	})
}

func (b *Breaker) GetPost(ctx context.Context, username, slug string) (*model.Post, error) {
	return guarded(b, "getting post", func(r Repository) (*model.Post, error) {
		return r.GetPost(ctx, username, slug)
	})
}

var _ Source = (*Breaker)(nil)
