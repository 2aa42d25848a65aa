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

package store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/botobag/taskgraph/model"

	"github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Resource names a collection in the store.
type Resource string

// Enumeration of Resource
const (
	ResourceTasks    Resource = "tasks"
	ResourceUsers    Resource = "users"
	ResourceProjects Resource = "projects"
)

// Config specifies the store to talk to.
type Config struct {
	// (Required) BaseURL is the root URL of the store, such as "http://localhost:3000".
	BaseURL string

	// (Optional) HTTPClient sends the requests. http.DefaultClient with Timeout applied is used if
	// not set.
	HTTPClient *http.Client

	// (Optional) Timeout bounds each round-trip when HTTPClient is not given. Zero means no timeout.
	Timeout time.Duration
}

// Client provides typed access to the resources in a REST store. Every method issues exactly one
// round-trip. A response with an unexpected status is returned as an *Error carrying the status;
// nothing is retried.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

var errMissingBaseURL = errors.New("store: must specify a base URL")

// NewClient creates a Client from config.
func NewClient(config Config) (*Client, error) {
	if len(config.BaseURL) == 0 {
		return nil, errMissingBaseURL
	}

	baseURL, err := url.Parse(strings.TrimRight(config.BaseURL, "/"))
	if err != nil {
		return nil, NewError("invalid base URL", KindInvalid, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: config.Timeout,
		}
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}, nil
}

// BaseURL returns the root URL of the store.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Get reads the row identified by id into out.
func (c *Client) Get(ctx context.Context, resource Resource, id model.ID, out interface{}) error {
	return c.do(ctx, http.MethodGet, rowPath(resource, id), nil, nil, out, http.StatusOK)
}

// GetEmbedded reads the row identified by id into out with the rows of the embed resource that
// reference it inlined.
func (c *Client) GetEmbedded(ctx context.Context, resource Resource, id model.ID, embed Resource, out interface{}) error {
	query := url.Values{
		"_embed": []string{string(embed)},
	}
	return c.do(ctx, http.MethodGet, rowPath(resource, id), query, nil, out, http.StatusOK)
}

// List reads every row of the resource into out which is usually a pointer to a slice.
func (c *Client) List(ctx context.Context, resource Resource, out interface{}) error {
	return c.do(ctx, http.MethodGet, "/"+string(resource), nil, nil, out, http.StatusOK)
}

// Create inserts a row built from fields and reads the created row into out.
func (c *Client) Create(ctx context.Context, resource Resource, fields interface{}, out interface{}) error {
	return c.do(ctx, http.MethodPost, "/"+string(resource), nil, fields, out, http.StatusCreated, http.StatusOK)
}

// Patch merges partial into the row identified by id and reads the updated row into out.
func (c *Client) Patch(ctx context.Context, resource Resource, id model.ID, partial interface{}, out interface{}) error {
	return c.do(ctx, http.MethodPatch, rowPath(resource, id), nil, partial, out, http.StatusOK)
}

// Delete removes the row identified by id.
func (c *Client) Delete(ctx context.Context, resource Resource, id model.ID) error {
	return c.do(ctx, http.MethodDelete, rowPath(resource, id), nil, nil, nil, http.StatusOK, http.StatusNoContent)
}

func rowPath(resource Resource, id model.ID) string {
	return "/" + string(resource) + "/" + url.PathEscape(id.String())
}

// do performs one round-trip. The response body is decoded into out (if non-nil) when the status is
// one of accepted.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	query url.Values,
	body interface{},
	out interface{},
	accepted ...int) error {

	op := Op(method + " " + path)

	// path is already escaped; keep RawPath so that an escaped "/" in an id stays one segment.
	unescaped, err := url.PathUnescape(path)
	if err != nil {
		return NewError("invalid request path", op, KindInvalid, err)
	}
	u := *c.baseURL
	u.RawPath = c.baseURL.EscapedPath() + path
	u.Path += unescaped
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return NewError("cannot encode request body", op, KindInvalid, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, u.String(), reader)
	if err != nil {
		return NewError("cannot build request", op, KindInvalid, err)
	}
	req = req.WithContext(ctx)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return NewError("store is unreachable", op, KindTransport, err)
	}
	defer resp.Body.Close()

	if !statusIn(resp.StatusCode, accepted) {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, resp.Body)

		kind := KindRejected
		if resp.StatusCode == http.StatusNotFound {
			kind = KindNotFound
		}
		return NewError(statusMessage(resp.StatusCode), op, kind, Status(resp.StatusCode))
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewError("cannot decode response body", op, KindTransport, Status(resp.StatusCode), err)
	}

	return nil
}

func statusIn(status int, accepted []int) bool {
	for _, s := range accepted {
		if s == status {
			return true
		}
	}
	return false
}
