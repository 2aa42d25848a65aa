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

package model_test

import (
	. "github.com/botobag/taskgraph/internal/testutil"
	"github.com/botobag/taskgraph/model"

	"github.com/json-iterator/go"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var _ = Describe("ID", func() {
	DescribeTable("encodes",
		func(id model.ID, expected string) {
			data, err := json.Marshal(id)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(string(data)).Should(Equal(expected))
		},
		Entry("integer as number", model.ID("7"), `7`),
		Entry("negative integer as number", model.ID("-3"), `-3`),
		Entry("non-canonical integer as string", model.ID("007"), `"007"`),
		Entry("non-integer as string", model.ID("abc"), `"abc"`),
		Entry("zero as null", model.ID(""), `null`),
	)

	DescribeTable("decodes",
		func(data string, expected model.ID) {
			var id model.ID
			Expect(json.Unmarshal([]byte(data), &id)).Should(Succeed())
			Expect(id).Should(Equal(expected))
		},
		Entry("number", `7`, model.ID("7")),
		Entry("string", `"7"`, model.ID("7")),
		Entry("non-numeric string", `"x-1"`, model.ID("x-1")),
		Entry("null", `null`, model.ID("")),
	)

	It("rejects other JSON values", func() {
		var id model.ID
		Expect(json.Unmarshal([]byte(`{"a":1}`), &id)).ShouldNot(Succeed())
		Expect(json.Unmarshal([]byte(`true`), &id)).ShouldNot(Succeed())
	})

	It("treats number and string forms as the same id", func() {
		var task struct {
			Parents model.IDs `json:"parents"`
		}
		Expect(json.Unmarshal([]byte(`{"parents":[1,"2"]}`), &task)).Should(Succeed())
		Expect(task.Parents.Contains("1")).Should(BeTrue())
		Expect(task.Parents.Contains("2")).Should(BeTrue())

		data, err := json.Marshal(task)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(string(data)).Should(Equal(`{"parents":[1,2]}`))
	})
})

var _ = Describe("IDs", func() {
	ids := model.IDs{"1", "2", "3"}

	It("adds a member once", func() {
		Expect(ids.With("4")).Should(Equal(model.IDs{"1", "2", "3", "4"}))
		Expect(ids.With("2")).Should(Equal(model.IDs{"1", "2", "3"}))
		Expect(model.IDs(nil).With("1")).Should(Equal(model.IDs{"1"}))
	})

	It("removes members", func() {
		Expect(ids.Without("2")).Should(Equal(model.IDs{"1", "3"}))
		Expect(ids.Without("1", "3", "9")).Should(Equal(model.IDs{"2"}))
		Expect(ids.Without("1", "2", "3")).ShouldNot(BeNil())
		Expect(ids.Without("1", "2", "3")).Should(BeEmpty())
	})

	It("never modifies the receiver", func() {
		original := model.IDs{"1", "2"}
		_ = original.With("3")
		_ = original.Without("1")
		Expect(original).Should(Equal(model.IDs{"1", "2"}))
	})

	It("clones into a non-nil slice", func() {
		clone := model.IDs(nil).Clone()
		Expect(clone).ShouldNot(BeNil())
		Expect(clone).Should(SerializeToJSONAs(`[]`))
	})
})

var _ = Describe("Task", func() {
	It("uses the store's field names", func() {
		task := model.Task{
			ID:        "1",
			Title:     "Write",
			Status:    model.StatusPending,
			OwnerID:   "2",
			ProjectID: "3",
			Parents:   model.IDs{"4"},
			Children:  model.IDs{},
		}
		Expect(&task).Should(SerializeToJSONAs(`{
			"id": 1,
			"title": "Write",
			"status": "PENDING",
			"userId": 2,
			"projectId": 3,
			"parents": [4],
			"children": []
		}`))
	})

	It("decodes a store row with numeric ids", func() {
		var task model.Task
		Expect(json.Unmarshal([]byte(
			`{"id":7,"title":"a","projectId":1,"userId":2,"parents":[],"children":[3]}`,
		), &task)).Should(Succeed())
		Expect(task).Should(Equal(model.Task{
			ID:        "7",
			Title:     "a",
			ProjectID: "1",
			OwnerID:   "2",
			Parents:   model.IDs{},
			Children:  model.IDs{"3"},
		}))
	})

	It("decodes a list of rows", func() {
		var tasks []*model.Task
		Expect(json.Unmarshal([]byte(
			`[{"id":1,"title":"a","parents":[2],"children":[]},{"id":"2","title":"b","userId":null,"parents":[],"children":[1]}]`,
		), &tasks)).Should(Succeed())
		Expect(tasks).Should(HaveLen(2))
		Expect(tasks[0].ID).Should(Equal(model.ID("1")))
		Expect(tasks[0].Parents).Should(Equal(model.IDs{"2"}))
		Expect(tasks[1].ID).Should(Equal(model.ID("2")))
		Expect(tasks[1].OwnerID.IsZero()).Should(BeTrue())
		Expect(tasks[1].Children).Should(Equal(model.IDs{"1"}))
	})

	It("lists every linked task once", func() {
		task := model.Task{
			Parents:  model.IDs{"1", "2"},
			Children: model.IDs{"2", "3"},
		}
		Expect(task.References()).Should(Equal(model.IDs{"1", "2", "3"}))
	})
})

var _ = Describe("TaskPatch", func() {
	It("encodes only the fields that are set", func() {
		var noOwner model.ID
		patch := (&model.TaskPatch{OwnerID: &noOwner}).SetParents(nil)
		Expect(patch).Should(SerializeToJSONAs(`{"userId": null, "parents": []}`))
		Expect(patch.Empty()).Should(BeFalse())
		Expect((&model.TaskPatch{}).Empty()).Should(BeTrue())
	})
})
