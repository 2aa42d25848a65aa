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

var _ = Describe("Users", func() {
	var f *fixture

	BeforeEach(func() {
		f = newFixture(relation.AllowCycles)
	})

	AfterEach(func() {
		f.close()
	})

	It("creates and updates a user", func() {
		user, err := f.engine.CreateUser(f.ctx, "Ada", "ada@example.com")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(user.Name).Should(Equal("Ada"))

		email := "ada@lovelace.org"
		user, err = f.engine.UpdateUser(f.ctx, user.ID, nil, &email)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(user.Name).Should(Equal("Ada"))
		Expect(user.Email).Should(Equal("ada@lovelace.org"))
	})

	It("deletes a user and clears the owner of its tasks", func() {
		userID := f.server.PutUser(&model.User{Name: "Ada"})
		mine := f.server.PutTask(&model.Task{Title: "mine", OwnerID: userID})
		theirs := f.server.PutTask(&model.Task{Title: "theirs", OwnerID: "999"})
		f.server.PutProject(&model.Project{Title: "P", OwnerID: userID, Tasks: model.IDs{}})

		deleted, err := f.engine.DeleteUser(f.ctx, userID)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(deleted).Should(Equal(userID))

		Expect(f.server.User(userID)).Should(BeNil())
		Expect(f.server.Task(mine).OwnerID.IsZero()).Should(BeTrue())
		Expect(f.server.Task(theirs).OwnerID).Should(Equal(model.ID("999")))
		Expect(f.logs.FilterMessage("project still owned by deleted user").Len()).Should(Equal(1))
	})

	It("fails with not found for a missing user", func() {
		_, err := f.engine.DeleteUser(f.ctx, "99")
		Expect(err).Should(MatchStoreError(
			KindIs(store.KindNotFound),
			StatusIs(http.StatusNotFound),
			OpIs("relation.DeleteUser"),
		))
	})
})
