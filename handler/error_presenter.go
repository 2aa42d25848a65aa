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
	"errors"
	"net/http"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
)

// ErrorPresenter presents an error to a http.ResponseWriter.
type ErrorPresenter interface {
	// Write sends the given error to w.
	Write(w http.ResponseWriter, err error)
}

// Errors by DefaultRequestBuilder.Build

// ErrEmptyQuery describes an error when an empty query is not allowed.
type ErrEmptyQuery struct {
	Request *http.Request
}

// Error implements Go's error interface.
func (err ErrEmptyQuery) Error() string {
	return "empty query"
}

// ErrParseQuery describes an invalid GraphQL query document that failed parsing.
type ErrParseQuery struct {
	Request       *http.Request
	ParsedRequest *HTTPRequest
	Err           error
}

// Error implements Go's error interface.
func (err *ErrParseQuery) Error() string {
	return "invalid query: " + err.Err.Error()
}

// ErrValidate indicates that a parsed document doesn't validate against the schema.
type ErrValidate struct {
	Request       *http.Request
	ParsedRequest *HTTPRequest
	Errs          []gqlerrors.FormattedError
}

// Error implements Go's error interface.
func (err *ErrValidate) Error() string {
	var buf strings.Builder
	buf.WriteString("query failed validation because of following error(s):")
	for _, e := range err.Errs {
		buf.WriteString("\n\t")
		buf.WriteString(e.Message)
	}
	return buf.String()
}

// DefaultErrorPresenter implements an ErrorPresenter which is default used by HTTP handler when no
// error presenter is provided.
type DefaultErrorPresenter struct {
	// ResultPresenter is used to present ErrValidate.Errs in a result.
	ResultPresenter ResultPresenter
}

// Write implements ErrorPresenter. Malformed requests are answered with 400 and a list of errors.
// Documents that fail validation are answered like an execution result without data.
func (presenter DefaultErrorPresenter) Write(w http.ResponseWriter, err error) {
	var (
		parseRequestErr *HTTPRequestParseError
		parseQueryErr   *ErrParseQuery
		validateErr     *ErrValidate
	)

	switch {
	case errors.As(err, &validateErr):
		presenter.ResultPresenter.Write(w, validateErr.Request, nil, &graphql.Result{
			Errors: validateErr.Errs,
		})

	case errors.As(err, &parseQueryErr):
		writeErrors(w, http.StatusBadRequest, gqlerrors.FormatError(parseQueryErr.Err))

	case errors.As(err, &parseRequestErr):
		status := http.StatusBadRequest
		if errors.Is(parseRequestErr.Err, errRequestBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeErrors(w, status, gqlerrors.FormatError(parseRequestErr.Err))

	default:
		var emptyQuery ErrEmptyQuery
		if errors.As(err, &emptyQuery) {
			writeErrors(w, http.StatusBadRequest, gqlerrors.FormatError(emptyQuery))
			return
		}
		writeErrors(w, http.StatusInternalServerError, gqlerrors.FormatError(err))
	}
}

func writeErrors(w http.ResponseWriter, status int, errs ...gqlerrors.FormattedError) {
	writeJSON(w, status, &graphql.Result{
		Errors: errs,
	})
}

func writeJSON(w http.ResponseWriter, status int, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(value)
}
