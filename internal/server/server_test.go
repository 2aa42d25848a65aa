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

package server_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/botobag/taskgraph/internal/config"
	"github.com/botobag/taskgraph/internal/server"
	"github.com/botobag/taskgraph/internal/storetest"
	"github.com/botobag/taskgraph/model"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Server", func() {
	var (
		store    *storetest.Server
		settings *config.Settings
	)

	BeforeEach(func() {
		store = storetest.NewServer()

		var err error
		settings, err = config.Load("")
		Expect(err).ShouldNot(HaveOccurred())
		settings.Store.URL = store.URL()
		settings.Server.Addr = "127.0.0.1:0"
	})

	AfterEach(func() {
		store.Close()
	})

	It("answers the health check", func() {
		s, err := server.New(settings, nil)
		Expect(err).ShouldNot(HaveOccurred())

		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		Expect(w.Code).Should(Equal(http.StatusOK))
		Expect(w.Body.String()).Should(Equal("ok\n"))
	})

	It("serves GraphQL against the store", func() {
		store.PutUser(&model.User{Name: "Ada"})

		s, err := server.New(settings, nil)
		Expect(err).ShouldNot(HaveOccurred())

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ users { name } }"}`))
		r.Header.Set("Content-Type", "application/json")
		s.Handler().ServeHTTP(w, r)

		Expect(w.Code).Should(Equal(http.StatusOK))
		Expect(w.Body.String()).Should(MatchJSON(`{"data":{"users":[{"name":"Ada"}]}}`))
	})

	It("lets a browser on localhost call the GraphQL endpoint", func() {
		s, err := server.New(settings, nil)
		Expect(err).ShouldNot(HaveOccurred())

		req := httptest.NewRequest(http.MethodOptions, "/graphql", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		Expect(w.Header().Get("Access-Control-Allow-Origin")).Should(Equal("http://localhost:3000"))
	})

	It("rejects an invalid default status", func() {
		settings.Schema.DefaultStatus = "DONE"
		_, err := server.New(settings, nil)
		Expect(err).Should(MatchError(ContainSubstring("build schema")))
	})

	It("works without an operation cache", func() {
		settings.Server.OperationCacheSize = 0
		_, err := server.New(settings, nil)
		Expect(err).ShouldNot(HaveOccurred())
	})

	It("shuts down when the context is canceled", func() {
		s, err := server.New(settings, nil)
		Expect(err).ShouldNot(HaveOccurred())

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).ShouldNot(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- s.Serve(ctx, listener)
		}()

		resp, err := http.Get("http://" + listener.Addr().String() + "/healthz")
		Expect(err).ShouldNot(HaveOccurred())
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		Expect(err).ShouldNot(HaveOccurred())
		Expect(string(body)).Should(Equal("ok\n"))

		cancel()
		Eventually(done).Should(Receive(BeNil()))
	})
})
