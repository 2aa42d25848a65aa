/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

// Package relation keeps the references between tasks, projects and users consistent.
//
// The store has no foreign keys and no transactions. Every dependency edge is written on both of
// its tasks, every project lists its member tasks while each task points back at its project, and
// deletes must scrub the deleted id from every row that mentions it. The Engine performs those
// writes in a fixed order through a Sequence. A write that fails after earlier writes committed is
// reported as store.KindPartialFailure together with the committed steps; nothing is rolled back.
package relation

import (
	"context"
	"errors"

	"github.com/botobag/taskgraph/internal/logging"
	"github.com/botobag/taskgraph/loader"
	"github.com/botobag/taskgraph/model"
	"github.com/botobag/taskgraph/store"

	"go.uber.org/zap"
)

// CyclePolicy decides whether dependency edges may close a cycle.
type CyclePolicy int

// Enumeration of CyclePolicy
const (
	// AllowCycles accepts any edge except a self-loop.
	AllowCycles CyclePolicy = iota

	// RejectCycles refuses an edge child→parent when parent already depends on child, directly or
	// transitively.
	RejectCycles
)

// String implements fmt.Stringer.
func (policy CyclePolicy) String() string {
	switch policy {
	case AllowCycles:
		return "allow"
	case RejectCycles:
		return "reject"
	}
	return "unknown"
}

// Config specifies the collaborators of an Engine.
type Config struct {
	// (Required) Store is the client of the backing store.
	Store *store.Client

	// (Optional) Logger receives the engine's structured events. Loggers attached to the request
	// context with logging.NewContext take precedence. A no-op logger is used if neither is set.
	Logger *zap.Logger

	// (Optional) CyclePolicy applied by AddDependency and CreateTask. Default is AllowCycles.
	CyclePolicy CyclePolicy

	// (Optional) LoaderOptions configures the loaders created when a request context doesn't carry
	// any.
	LoaderOptions loader.Options
}

// Engine performs mutations that touch shared references.
type Engine struct {
	store         *store.Client
	logger        *zap.Logger
	cyclePolicy   CyclePolicy
	loaderOptions loader.Options
}

var errMissingStore = errors.New("relation: must specify a store client")

// New creates an Engine from config.
func New(config Config) (*Engine, error) {
	if config.Store == nil {
		return nil, errMissingStore
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		store:         config.Store,
		logger:        logger,
		cyclePolicy:   config.CyclePolicy,
		loaderOptions: config.LoaderOptions,
	}, nil
}

// CyclePolicy returns the policy applied to new dependency edges.
func (e *Engine) CyclePolicy() CyclePolicy {
	return e.cyclePolicy
}

// loaders returns the request loaders from ctx or a fresh set for this call.
func (e *Engine) loaders(ctx context.Context) (*loader.Loaders, error) {
	if l, ok := loader.FromContext(ctx); ok {
		return l, nil
	}
	return loader.New(e.store, e.loaderOptions)
}

// log returns the logger for ctx.
func (e *Engine) log(ctx context.Context) *zap.Logger {
	if logger, ok := logging.FromContextOK(ctx); ok {
		return logger
	}
	return e.logger
}

func zapID(key string, id model.ID) zap.Field {
	return zap.String(key, id.String())
}

func zapIDs(key string, ids model.IDs) zap.Field {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	return zap.Strings(key, strs)
}
