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

package relation_test

import (
	"net/http"

	. "github.com/botobag/taskgraph/internal/testutil"
	"github.com/botobag/taskgraph/model"
	"github.com/botobag/taskgraph/relation"
	"github.com/botobag/taskgraph/store"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("AddDependency", func() {
	var f *fixture

	BeforeEach(func() {
		f = newFixture(relation.AllowCycles)
	})

	AfterEach(func() {
		f.close()
	})

	It("writes the edge on both tasks", func() {
		_, ids := f.project("child", "parent")

		child, err := f.engine.AddDependency(f.ctx, ids[0], ids[1])
		Expect(err).ShouldNot(HaveOccurred())
		Expect(child.ID).Should(Equal(ids[0]))
		Expect(child.Parents).Should(Equal(model.IDs{ids[1]}))
		Expect(f.server.Task(ids[1]).Children).Should(Equal(model.IDs{ids[0]}))

		// Both ends were read in one window before writing.
		requests := f.server.Requests()
		Expect(requests[0].Method).Should(Equal(http.MethodGet))
		Expect(requests[1].Method).Should(Equal(http.MethodGet))
		Expect(requests[2].Path).Should(Equal("/tasks/" + ids[0].String()))
		Expect(requests[3].Path).Should(Equal("/tasks/" + ids[1].String()))
	})

	It("is idempotent", func() {
		_, ids := f.project("child", "parent")

		_, err := f.engine.AddDependency(f.ctx, ids[0], ids[1])
		Expect(err).ShouldNot(HaveOccurred())
		child, err := f.engine.AddDependency(f.ctx, ids[0], ids[1])
		Expect(err).ShouldNot(HaveOccurred())

		Expect(child.Parents).Should(Equal(model.IDs{ids[1]}))
		Expect(f.server.Task(ids[1]).Children).Should(Equal(model.IDs{ids[0]}))
	})

	It("rejects a self-loop", func() {
		_, ids := f.project("A")

		_, err := f.engine.AddDependency(f.ctx, ids[0], ids[0])
		Expect(err).Should(MatchStoreError(KindIs(store.KindInvalid)))
		Expect(f.server.Requests()).Should(BeEmpty())
	})

	It("yields an empty result when an end is missing", func() {
		_, ids := f.project("A")

		_, err := f.engine.AddDependency(f.ctx, ids[0], "404")
		Expect(err).Should(MatchStoreError(KindIs(store.KindEmptyResult)))
		Expect(f.server.Count(http.MethodPatch, "/")).Should(Equal(0))
		Expect(f.logs.FilterMessage("dependency endpoint not found").Len()).Should(Equal(1))

		_, err = f.engine.AddDependency(f.ctx, "", ids[0])
		Expect(err).Should(MatchStoreError(KindIs(store.KindEmptyResult)))
	})

	It("accepts an edge that closes a cycle by default", func() {
		_, ids := f.project("A", "B")
		f.link(ids[0], ids[1])

		task, err := f.engine.AddDependency(f.ctx, ids[1], ids[0])
		Expect(err).ShouldNot(HaveOccurred())
		Expect(task.Parents).Should(Equal(model.IDs{ids[0]}))
	})

	It("reports the child edge when the parent cannot be updated", func() {
		_, ids := f.project("child", "parent")
		f.server.FailOn(http.MethodPatch, "/tasks/"+ids[1].String(), http.StatusServiceUnavailable)

		_, err := f.engine.AddDependency(f.ctx, ids[0], ids[1])
		Expect(err).Should(MatchStoreError(
			KindIs(store.KindPartialFailure),
			StatusIs(http.StatusServiceUnavailable),
			CommittedConsistOf("add parent to child"),
		))
		Expect(f.server.Task(ids[0]).Parents).Should(Equal(model.IDs{ids[1]}))
		Expect(f.server.Task(ids[1]).Children).Should(BeEmpty())
	})

	Context("under RejectCycles", func() {
		var strict *fixture

		BeforeEach(func() {
			strict = newFixture(relation.RejectCycles)
		})

		AfterEach(func() {
			strict.close()
		})

		It("rejects a direct cycle", func() {
			_, ids := strict.project("A", "B")
			strict.link(ids[0], ids[1])

			_, err := strict.engine.AddDependency(strict.ctx, ids[1], ids[0])
			Expect(err).Should(MatchStoreError(KindIs(store.KindCycle)))
			Expect(strict.server.Count(http.MethodPatch, "/")).Should(Equal(0))
		})

		It("rejects a transitive cycle", func() {
			_, ids := strict.project("A", "B", "C")
			strict.link(ids[0], ids[1])
			strict.link(ids[1], ids[2])

			_, err := strict.engine.AddDependency(strict.ctx, ids[2], ids[0])
			Expect(err).Should(MatchStoreError(KindIs(store.KindCycle)))
		})

		It("accepts edges that keep the graph acyclic", func() {
			_, ids := strict.project("A", "B", "C")
			strict.link(ids[0], ids[1])
			strict.link(ids[1], ids[2])

			task, err := strict.engine.AddDependency(strict.ctx, ids[0], ids[2])
			Expect(err).ShouldNot(HaveOccurred())
			Expect(task.Parents).Should(Equal(model.IDs{ids[1], ids[2]}))
		})
	})
})
