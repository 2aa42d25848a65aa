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

package handler

import (
	"context"

	"github.com/botobag/taskgraph/internal/logging"
	"github.com/botobag/taskgraph/loader"
	"github.com/botobag/taskgraph/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader is the response header that carries the id of the request.
const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// RequestIDFromContext returns the request id attached by RequestScope.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}

// RequestScope is a RequestMiddleware that gives every request a fresh set of loaders, a random
// request id and a logger tagged with that id.
type RequestScope struct {
	// (Required) Store is read by the loaders.
	Store *store.Client

	// LoaderOptions configures the loaders.
	LoaderOptions loader.Options

	// (Optional) Logger is the parent of the request loggers. No-op if nil.
	Logger *zap.Logger
}

var _ RequestMiddleware = (*RequestScope)(nil)

// Apply implements RequestMiddleware.
func (scope *RequestScope) Apply(request *Request, next *RequestMiddlewareNext) {
	loaders, err := loader.New(scope.Store, scope.LoaderOptions)
	if err != nil {
		next.NextError(err)
		return
	}

	id := uuid.New().String()

	logger := scope.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("request_id", id))

	ctx := request.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, requestIDKey{}, id)
	ctx = logging.NewContext(ctx, logger)
	ctx = loader.NewContext(ctx, loaders)
	request.Ctx = ctx

	next.Next(request)
}
