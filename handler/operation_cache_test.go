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
	"sync"

	"github.com/botobag/taskgraph/handler"

	"github.com/graphql-go/graphql/language/ast"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("LRUOperationCache", func() {
	It("requires a non-zero size", func() {
		_, err := handler.NewLRUOperationCache(0)
		Expect(err).Should(HaveOccurred())
	})

	It("returns the cached document", func() {
		cache, err := handler.NewLRUOperationCache(2)
		Expect(err).ShouldNot(HaveOccurred())

		document := &ast.Document{}
		cache.Add("{ tasks { id } }", document)

		cached, ok := cache.Get("{ tasks { id } }")
		Expect(ok).Should(BeTrue())
		Expect(cached).Should(BeIdenticalTo(document))

		_, ok = cache.Get("{ users { id } }")
		Expect(ok).Should(BeFalse())
	})

	It("evicts the least recently used document", func() {
		cache, err := handler.NewLRUOperationCache(2)
		Expect(err).ShouldNot(HaveOccurred())

		a, b, c := &ast.Document{}, &ast.Document{}, &ast.Document{}
		cache.Add("a", a)
		cache.Add("b", b)

		// Touch a so that b becomes the oldest.
		_, ok := cache.Get("a")
		Expect(ok).Should(BeTrue())

		cache.Add("c", c)
		Expect(cache.Len()).Should(Equal(2))

		_, ok = cache.Get("b")
		Expect(ok).Should(BeFalse())

		cached, ok := cache.Get("a")
		Expect(ok).Should(BeTrue())
		Expect(cached).Should(BeIdenticalTo(a))

		cached, ok = cache.Get("c")
		Expect(ok).Should(BeTrue())
		Expect(cached).Should(BeIdenticalTo(c))
	})

	It("replaces the document of a cached query", func() {
		cache, err := handler.NewLRUOperationCache(1)
		Expect(err).ShouldNot(HaveOccurred())

		first, second := &ast.Document{}, &ast.Document{}
		cache.Add("q", first)
		cache.Add("q", second)
		Expect(cache.Len()).Should(Equal(1))

		cached, ok := cache.Get("q")
		Expect(ok).Should(BeTrue())
		Expect(cached).Should(BeIdenticalTo(second))
	})

	It("reuses freed slots", func() {
		cache, err := handler.NewLRUOperationCache(3)
		Expect(err).ShouldNot(HaveOccurred())

		queries := []string{"a", "b", "c", "d", "e", "f", "g"}
		for _, query := range queries {
			cache.Add(query, &ast.Document{})
		}
		Expect(cache.Len()).Should(Equal(3))
		for _, query := range queries[4:] {
			_, ok := cache.Get(query)
			Expect(ok).Should(BeTrue(), query)
		}
	})

	It("is safe for concurrent use", func() {
		cache, err := handler.NewLRUOperationCache(8)
		Expect(err).ShouldNot(HaveOccurred())

		queries := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				for j := 0; j < 100; j++ {
					query := queries[j%len(queries)]
					if _, ok := cache.Get(query); !ok {
						cache.Add(query, &ast.Document{})
					}
				}
			}()
		}
		wg.Wait()

		Expect(cache.Len()).Should(Equal(8))
	})
})

var _ = Describe("NopOperationCache", func() {
	It("never hits", func() {
		var cache handler.NopOperationCache
		cache.Add("q", &ast.Document{})
		_, ok := cache.Get("q")
		Expect(ok).Should(BeFalse())
	})
})
