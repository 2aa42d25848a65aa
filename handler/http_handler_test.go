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

package handler_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/botobag/taskgraph/handler"
	"github.com/botobag/taskgraph/internal/storetest"
	"github.com/botobag/taskgraph/loader"
	"github.com/botobag/taskgraph/model"
	"github.com/botobag/taskgraph/relation"
	"github.com/botobag/taskgraph/schema"

	"github.com/graphql-go/graphql"
	"github.com/json-iterator/go"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("HTTP handler", func() {
	var (
		server *storetest.Server
		s      graphql.Schema
		h      http.Handler
		cache  *handler.LRUOperationCache
	)

	BeforeEach(func() {
		server = storetest.NewServer()
		client := server.NewClient()

		engine, err := relation.New(relation.Config{Store: client})
		Expect(err).ShouldNot(HaveOccurred())

		s, err = schema.New(schema.Config{Engine: engine, Store: client})
		Expect(err).ShouldNot(HaveOccurred())

		cache, err = handler.NewLRUOperationCache(4)
		Expect(err).ShouldNot(HaveOccurred())

		h, err = handler.New(&s,
			handler.MaxBodySize(1024),
			handler.OverrideOperationCache(cache),
			handler.Middlewares(&handler.RequestScope{
				Store:         client,
				LoaderOptions: loader.Options{MaxBatchSize: 10},
			}))
		Expect(err).ShouldNot(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	serve := func(r *http.Request) (*httptest.ResponseRecorder, map[string]interface{}) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		var body map[string]interface{}
		Expect(jsoniter.Unmarshal(w.Body.Bytes(), &body)).Should(Succeed())
		return w, body
	}

	post := func(body string) *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		return r
	}

	It("requires a schema", func() {
		_, err := handler.New(nil)
		Expect(err).Should(HaveOccurred())
	})

	It("serves a query", func() {
		id := server.PutUser(&model.User{Name: "Ada", Email: "ada@example.com"})

		w, body := serve(post(`{"query":"query Q($id: ID!) { user(id: $id) { name } }","variables":{"id":"` + id.String() + `"}}`))
		Expect(w.Code).Should(Equal(http.StatusOK))
		Expect(w.Header().Get(handler.RequestIDHeader)).ShouldNot(BeEmpty())
		Expect(body).Should(Equal(map[string]interface{}{
			"data": map[string]interface{}{
				"user": map[string]interface{}{"name": "Ada"},
			},
		}))
	})

	It("serves a query from the query string", func() {
		server.PutUser(&model.User{Name: "Ada"})

		r := httptest.NewRequest(http.MethodGet, "/graphql?query="+url.QueryEscape("{ users { name } }"), nil)
		w, body := serve(r)
		Expect(w.Code).Should(Equal(http.StatusOK))
		Expect(body["data"]).Should(Equal(map[string]interface{}{
			"users": []interface{}{map[string]interface{}{"name": "Ada"}},
		}))
	})

	It("gives every request its own id", func() {
		w1, _ := serve(post(`{"query":"{ users { id } }"}`))
		w2, _ := serve(post(`{"query":"{ users { id } }"}`))
		Expect(w1.Header().Get(handler.RequestIDHeader)).ShouldNot(Equal(w2.Header().Get(handler.RequestIDHeader)))
	})

	It("caches validated documents", func() {
		serve(post(`{"query":"{ users { id } }"}`))
		serve(post(`{"query":"{ users { id } }"}`))
		serve(post(`{"query":"{ tasks { id } }"}`))
		Expect(cache.Len()).Should(Equal(2))
	})

	It("reports the error kind of a failed field", func() {
		w, body := serve(post(`{"query":"{ task(id: \"42\") { id } }"}`))
		Expect(w.Code).Should(Equal(http.StatusOK))
		Expect(body["data"]).Should(Equal(map[string]interface{}{"task": nil}))

		errs := body["errors"].([]interface{})
		Expect(errs).Should(HaveLen(1))
		Expect(errs[0]).Should(HaveKeyWithValue("extensions", HaveKeyWithValue("code", "NOT_FOUND")))
	})

	It("answers 400 to an empty query", func() {
		w, body := serve(post(`{}`))
		Expect(w.Code).Should(Equal(http.StatusBadRequest))
		Expect(body["errors"]).Should(HaveLen(1))
	})

	It("answers 400 to a query that doesn't parse", func() {
		w, body := serve(post(`{"query":"{ tasks { id "}`))
		Expect(w.Code).Should(Equal(http.StatusBadRequest))
		Expect(body["errors"]).Should(HaveLen(1))
		Expect(cache.Len()).Should(Equal(0))
	})

	It("answers 400 to a malformed body", func() {
		w, _ := serve(post(`{"query":`))
		Expect(w.Code).Should(Equal(http.StatusBadRequest))
	})

	It("answers 413 to a body over the limit", func() {
		w, _ := serve(post(`{"query":"{ tasks { id } }` + strings.Repeat(" ", 2048) + `"}`))
		Expect(w.Code).Should(Equal(http.StatusRequestEntityTooLarge))
	})

	It("answers validation errors like a result without data", func() {
		w, body := serve(post(`{"query":"{ tasks { nope } }"}`))
		Expect(w.Code).Should(Equal(http.StatusOK))
		Expect(body["data"]).Should(BeNil())
		Expect(body["errors"]).ShouldNot(BeEmpty())
		Expect(cache.Len()).Should(Equal(0))
	})

	It("lets a middleware answer the request", func() {
		var err error
		h, err = handler.New(&s, handler.Middlewares(handler.RequestMiddlewareFunc(
			func(request *handler.Request, next *handler.RequestMiddlewareNext) {
				next.NextResult(&graphql.Result{Data: map[string]interface{}{"cached": true}})
			})))
		Expect(err).ShouldNot(HaveOccurred())

		w, body := serve(post(`{"query":"{ users { id } }"}`))
		Expect(w.Code).Should(Equal(http.StatusOK))
		Expect(body["data"]).Should(Equal(map[string]interface{}{"cached": true}))
	})
})

var _ = Describe("DefaultResultPresenter", func() {
	It("writes nested result maps", func() {
		w := httptest.NewRecorder()
		handler.DefaultResultPresenter{}.Write(w, nil, nil, &graphql.Result{
			Data: map[string]interface{}{
				"task": map[string]interface{}{
					"id":      "1",
					"parents": []interface{}{map[string]interface{}{"id": "2"}, nil},
				},
			},
		})

		Expect(w.Code).Should(Equal(http.StatusOK))
		Expect(w.Body.String()).Should(MatchJSON(`{"data":{"task":{"id":"1","parents":[{"id":"2"},null]}}}`))
	})
})
