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

// Package server assembles the store client, the relationship engine, the schema and the HTTP
// handler from the settings and serves them.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/botobag/taskgraph/handler"
	"github.com/botobag/taskgraph/internal/config"
	"github.com/botobag/taskgraph/loader"
	"github.com/botobag/taskgraph/model"
	"github.com/botobag/taskgraph/relation"
	"github.com/botobag/taskgraph/schema"
	"github.com/botobag/taskgraph/store"

	"go.uber.org/zap"
)

// shutdownTimeout bounds the wait for in-flight requests on shutdown.
const shutdownTimeout = 15 * time.Second

// Server serves the GraphQL endpoint and the health check.
type Server struct {
	settings *config.Settings
	logger   *zap.Logger
	handler  http.Handler
}

// New wires a Server from settings.
func New(settings *config.Settings, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := store.NewClient(store.Config{
		BaseURL: settings.Store.URL,
		Timeout: settings.Store.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create store client: %w", err)
	}

	cyclePolicy := relation.AllowCycles
	if settings.Relation.RejectCycles {
		cyclePolicy = relation.RejectCycles
	}
	loaderOptions := loader.Options{
		MaxBatchSize: settings.Loader.MaxBatchSize,
	}

	engine, err := relation.New(relation.Config{
		Store:         client,
		Logger:        logger.Named("relation"),
		CyclePolicy:   cyclePolicy,
		LoaderOptions: loaderOptions,
	})
	if err != nil {
		return nil, fmt.Errorf("create relation engine: %w", err)
	}

	statuses := make([]model.Status, len(settings.Schema.Statuses))
	for i, status := range settings.Schema.Statuses {
		statuses[i] = model.Status(status)
	}

	graphqlSchema, err := schema.New(schema.Config{
		Engine:        engine,
		Store:         client,
		Statuses:      statuses,
		DefaultStatus: model.Status(settings.Schema.DefaultStatus),
		Logger:        logger.Named("schema"),
	})
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}

	var cache handler.OperationCache = handler.NopOperationCache{}
	if settings.Server.OperationCacheSize > 0 {
		cache, err = handler.NewLRUOperationCache(settings.Server.OperationCacheSize)
		if err != nil {
			return nil, err
		}
	}

	graphqlHandler, err := handler.New(&graphqlSchema,
		handler.MaxBodySize(settings.Server.MaxBodySize),
		handler.OverrideOperationCache(cache),
		handler.Middlewares(&handler.RequestScope{
			Store:         client,
			LoaderOptions: loaderOptions,
			Logger:        logger.Named("request"),
		}))
	if err != nil {
		return nil, fmt.Errorf("create handler: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", handler.CORS(settings.Server.CORSOrigins, graphqlHandler))
	mux.HandleFunc("/healthz", healthz)

	return &Server{
		settings: settings,
		logger:   logger,
		handler:  mux,
	}, nil
}

// Handler returns the root handler of the server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address and serves until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.settings.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.settings.Server.Addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is canceled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server listening",
			zap.String("addr", listener.Addr().String()),
			zap.String("store", s.settings.Store.URL))
		errc <- httpServer.Serve(listener)
	}()

	select {
	case err := <-errc:
		return err

	case <-ctx.Done():
		s.logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}
