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
	"net/http"
	"time"

	"github.com/botobag/taskgraph/internal/logging"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/source"
	"go.uber.org/zap"
)

// httpHandler implements a http.Handler which is based on LLHandler to serve GraphQL queries from
// HTTP requests.
type httpHandler struct {
	*LLHandler

	// The handler for presenting errors occurred before execution; errors occurred during
	// execution are part of the result.
	errorPresenter ErrorPresenter

	requestBuilder  RequestBuilder
	resultPresenter ResultPresenter
}

// httpHandlerConfig contains configuration for a httpHandler.
type httpHandlerConfig struct {
	LLConfig

	// Configuration given to DefaultRequestBuilder; It is not applicable if custom
	// RequestBuilder is used.
	defaultRequestBuilderConfig DefaultRequestBuilderConfig

	errorPresenter  ErrorPresenter
	requestBuilder  RequestBuilder
	resultPresenter ResultPresenter
}

// Option configures httpHandler
type Option func(h *httpHandlerConfig)

// MaxBodySize sets the maximum number of bytes to be read from request body for ParseHTTPRequest
// called by DefaultRequestBuilder.
func MaxBodySize(size uint) Option {
	return func(h *httpHandlerConfig) {
		h.defaultRequestBuilderConfig.HTTPRequestParserOptions.MaxBodySize = size
	}
}

// Middlewares appends middlewares to the chain applied before execution.
func Middlewares(middlewares ...RequestMiddleware) Option {
	return func(h *httpHandlerConfig) {
		h.Middlewares = append(h.Middlewares, middlewares...)
	}
}

// OverrideErrorPresenter overrides default ErrorPresenter.
func OverrideErrorPresenter(errorPresenter ErrorPresenter) Option {
	return func(h *httpHandlerConfig) {
		h.errorPresenter = errorPresenter
	}
}

// OverrideRequestBuilder overrides default RequestBuilder.
func OverrideRequestBuilder(requestBuilder RequestBuilder) Option {
	return func(h *httpHandlerConfig) {
		h.requestBuilder = requestBuilder
	}
}

// OverrideResultPresenter overrides default ResultPresenter.
func OverrideResultPresenter(resultPresenter ResultPresenter) Option {
	return func(h *httpHandlerConfig) {
		h.resultPresenter = resultPresenter
	}
}

// OverrideOperationCache that overrides default OperationCache.
func OverrideOperationCache(cache OperationCache) Option {
	return func(h *httpHandlerConfig) {
		h.OperationCache = cache
	}
}

// New creates a net/http.Handler and builds a GraphQL web service to serve queries against the
// schema.
func New(schema *graphql.Schema, opts ...Option) (http.Handler, error) {
	config := httpHandlerConfig{
		LLConfig: LLConfig{
			Schema: schema,
		},

		defaultRequestBuilderConfig: DefaultRequestBuilderConfig{
			HTTPRequestParserOptions: ParseHTTPRequestOptions{
				MaxBodySize: DefaultMaxBodySize,
			},
		},
	}
	for _, opt := range opts {
		opt(&config)
	}

	baseHandler, err := NewLLHandler(&config.LLConfig)
	if err != nil {
		return nil, err
	}

	requestBuilder := config.requestBuilder
	if requestBuilder == nil {
		requestBuilder = DefaultRequestBuilder{
			Config: &config.defaultRequestBuilderConfig,
		}
	}

	resultPresenter := config.resultPresenter
	if resultPresenter == nil {
		resultPresenter = DefaultResultPresenter{}
	}

	errorPresenter := config.errorPresenter
	if errorPresenter == nil {
		errorPresenter = DefaultErrorPresenter{
			ResultPresenter: resultPresenter,
		}
	}

	return &httpHandler{
		LLHandler:       baseHandler,
		errorPresenter:  errorPresenter,
		requestBuilder:  requestBuilder,
		resultPresenter: resultPresenter,
	}, nil
}

func (h *httpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, err := h.requestBuilder.Build(r, h)
	if err != nil {
		logging.FromContext(r.Context()).Debug("graphql request rejected", zap.Error(err))
		h.errorPresenter.Write(w, err)
		return
	}

	result := h.Serve(req)

	if id, ok := RequestIDFromContext(req.Ctx); ok {
		w.Header().Set(RequestIDHeader, id)
	}
	logging.FromContext(req.Ctx).Info("graphql request served",
		zap.String("operation", req.OperationName),
		zap.Int("errors", len(result.Errors)),
		zap.Duration("duration", time.Since(start)))

	h.resultPresenter.Write(w, r, req, result)
}

// RequestBuilder generates a Request to be served by LLHandler from an HTTP request.
type RequestBuilder interface {
	// Build turns a http.Request r into a Request for h.
	Build(r *http.Request, h HTTPHandler) (*Request, error)
}

// DefaultRequestBuilderConfig specifies settings to configure DefaultRequestBuilder.
type DefaultRequestBuilderConfig struct {
	HTTPRequestParserOptions ParseHTTPRequestOptions
}

// DefaultRequestBuilder implements the default request builder used by HTTP handler to obtain
// a Request object from a http.Request.
type DefaultRequestBuilder struct {
	Config *DefaultRequestBuilderConfig
}

// HTTPHandler provides interfaces to access settings in httpHandler from RequestBuilder.
type HTTPHandler interface {
	// Schema served by this handler
	Schema() *graphql.Schema

	// OperationCache for the validated documents
	OperationCache() OperationCache
}

// Build implements RequestBuilder.
func (builder DefaultRequestBuilder) Build(r *http.Request, h HTTPHandler) (*Request, error) {
	parsedReq, err := ParseHTTPRequest(r, &builder.Config.HTTPRequestParserOptions)
	if err != nil {
		return nil, err
	}

	if len(parsedReq.Query) == 0 {
		return nil, ErrEmptyQuery{
			Request: r,
		}
	}

	cache := h.OperationCache()
	document, ok := cache.Get(parsedReq.Query)
	if !ok {
		document, err = parser.Parse(parser.ParseParams{
			Source: source.NewSource(&source.Source{
				Body: []byte(parsedReq.Query),
				Name: "GraphQL request",
			}),
		})
		if err != nil {
			return nil, &ErrParseQuery{
				Request:       r,
				ParsedRequest: parsedReq,
				Err:           err,
			}
		}

		validation := graphql.ValidateDocument(h.Schema(), document, nil)
		if !validation.IsValid {
			return nil, &ErrValidate{
				Request:       r,
				ParsedRequest: parsedReq,
				Errs:          validation.Errors,
			}
		}

		cache.Add(parsedReq.Query, document)
	}

	return &Request{
		Ctx:           r.Context(),
		Document:      document,
		OperationName: parsedReq.OperationName,
		Variables:     parsedReq.Variables,
	}, nil
}

// ResultPresenter presents an execution result to a http.ResponseWriter.
type ResultPresenter interface {
	// Write writes a result to w.
	Write(
		w http.ResponseWriter,
		httpRequest *http.Request,
		graphqlRequest *Request,
		result *graphql.Result)
}

// DefaultResultPresenter implements a ResultPresenter used by HTTP handler to present a result. It
// always answers 200; errors are carried in the body.
type DefaultResultPresenter struct{}

// Write implements ResultPresenter.
func (DefaultResultPresenter) Write(
	w http.ResponseWriter,
	httpRequest *http.Request,
	graphqlRequest *Request,
	result *graphql.Result) {

	writeJSON(w, http.StatusOK, result)
}
