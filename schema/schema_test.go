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

package schema_test

import (
	"context"
	"net/http"

	"github.com/botobag/taskgraph/internal/storetest"
	. "github.com/botobag/taskgraph/internal/testutil"
	"github.com/botobag/taskgraph/loader"
	"github.com/botobag/taskgraph/model"
	"github.com/botobag/taskgraph/relation"
	"github.com/botobag/taskgraph/schema"

	"github.com/graphql-go/graphql"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Schema", func() {
	var (
		server *storetest.Server
		s      graphql.Schema
	)

	BeforeEach(func() {
		server = storetest.NewServer()
		client := server.NewClient()

		engine, err := relation.New(relation.Config{Store: client})
		Expect(err).ShouldNot(HaveOccurred())

		s, err = schema.New(schema.Config{
			Engine: engine,
			Store:  client,
		})
		Expect(err).ShouldNot(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	// execute runs request with fresh loaders, the way the HTTP handler does.
	execute := func(request string) *graphql.Result {
		l, err := loader.New(server.NewClient(), loader.Options{})
		Expect(err).ShouldNot(HaveOccurred())

		result := graphql.Do(graphql.Params{
			Schema:        s,
			RequestString: request,
			Context:       loader.NewContext(context.Background(), l),
		})
		schema.DecorateErrors(result)
		return result
	}

	Describe("New", func() {
		It("requires an engine and a store", func() {
			_, err := schema.New(schema.Config{})
			Expect(err).Should(HaveOccurred())
		})

		It("requires the default status to be a member", func() {
			client := server.NewClient()
			engine, err := relation.New(relation.Config{Store: client})
			Expect(err).ShouldNot(HaveOccurred())

			_, err = schema.New(schema.Config{
				Engine:        engine,
				Store:         client,
				Statuses:      []model.Status{model.StatusPending, model.StatusCompleted},
				DefaultStatus: model.StatusAssigned,
			})
			Expect(err).Should(MatchError(ContainSubstring("ASSIGNED")))
		})
	})

	Describe("queries", func() {
		var (
			userID    model.ID
			projectID model.ID
			a, b, c   model.ID
		)

		BeforeEach(func() {
			userID = server.PutUser(&model.User{Name: "Ada", Email: "ada@example.com"})
			projectID = server.PutProject(&model.Project{Title: "P", OwnerID: userID, Tasks: model.IDs{}})
			a = server.PutTask(&model.Task{Title: "A", ProjectID: projectID, OwnerID: userID, Status: model.StatusPending})
			b = server.PutTask(&model.Task{Title: "B", ProjectID: projectID, Parents: model.IDs{a}})
			c = server.PutTask(&model.Task{Title: "C", ProjectID: projectID, Parents: model.IDs{a}})
			server.Put("tasks", map[string]interface{}{
				"id":       100,
				"title":    "Dangling",
				"parents":  []interface{}{404, a.String()},
				"children": []interface{}{},
			})
			_, err := server.NewClient().Projects().Patch(context.Background(), projectID,
				(&model.ProjectPatch{}).SetTasks(model.IDs{a, b, c}))
			Expect(err).ShouldNot(HaveOccurred())
			server.ResetRequests()
		})

		It("resolves references of a task", func() {
			result := execute(`{
				task(id: "` + b.String() + `") {
					id
					title
					owner { name }
					project { title owner { email } }
					parents { id title status }
				}
			}`)
			Expect(result.Errors).Should(BeEmpty())
			Expect(result.Data).Should(Equal(map[string]interface{}{
				"task": map[string]interface{}{
					"id":      b.String(),
					"title":   "B",
					"owner":   nil,
					"project": map[string]interface{}{"title": "P", "owner": map[string]interface{}{"email": "ada@example.com"}},
					"parents": []interface{}{
						map[string]interface{}{"id": a.String(), "title": "A", "status": "PENDING"},
					},
				},
			}))
		})

		It("fetches a task referenced by many tasks once", func() {
			result := execute(`{ tasks { title parents { title } } }`)
			// Only the dangling parent of task 100 fails.
			Expect(result.Errors).Should(HaveLen(1))
			Expect(server.Count(http.MethodGet, "/tasks/"+a.String())).Should(Equal(1))
		})

		It("yields null with an error at the index of a dangling reference", func() {
			result := execute(`{ task(id: "100") { parents { title } } }`)

			Expect(result.Data).Should(SerializeToJSONAs(`{
				"task": {"parents": [null, {"title": "A"}]}
			}`))
			Expect(result.Errors).Should(HaveLen(1))
			Expect(result.Errors[0].Path).Should(SerializeToJSONAs(`["task", "parents", 0]`))
			Expect(result.Errors[0].Extensions).Should(HaveKeyWithValue("code", "NOT_FOUND"))
			Expect(result.Errors[0].Extensions).Should(HaveKeyWithValue("status", 404))
		})

		It("lists the project's tasks in order", func() {
			result := execute(`{ project(id: "` + projectID.String() + `") { tasks { title } } }`)
			Expect(result.Errors).Should(BeEmpty())
			Expect(result.Data).Should(Equal(map[string]interface{}{
				"project": map[string]interface{}{
					"tasks": []interface{}{
						map[string]interface{}{"title": "A"},
						map[string]interface{}{"title": "B"},
						map[string]interface{}{"title": "C"},
					},
				},
			}))
		})

		It("derives the tasks and projects of a user", func() {
			result := execute(`{ user(id: "` + userID.String() + `") { tasks { title } projects { title } } }`)
			Expect(result.Errors).Should(BeEmpty())
			Expect(result.Data).Should(Equal(map[string]interface{}{
				"user": map[string]interface{}{
					"tasks":    []interface{}{map[string]interface{}{"title": "A"}},
					"projects": []interface{}{map[string]interface{}{"title": "P"}},
				},
			}))
		})

		It("reports a missing task", func() {
			result := execute(`{ task(id: "999") { title } }`)
			Expect(result.Data).Should(Equal(map[string]interface{}{"task": nil}))
			Expect(result.Errors).Should(HaveLen(1))
			Expect(result.Errors[0].Message).Should(ContainSubstring("The command could not be completed. Status: 404"))
			Expect(result.Errors[0].Extensions).Should(HaveKeyWithValue("code", "NOT_FOUND"))
		})
	})

	Describe("mutations", func() {
		var projectID model.ID

		BeforeEach(func() {
			projectID = server.PutProject(&model.Project{Title: "P", Tasks: model.IDs{}})
		})

		It("creates a task with the default status", func() {
			result := execute(`mutation {
				createTask(projectId: "` + projectID.String() + `", title: "A") {
					title
					status
					project { tasks { title } }
				}
			}`)
			Expect(result.Errors).Should(BeEmpty())
			Expect(result.Data).Should(Equal(map[string]interface{}{
				"createTask": map[string]interface{}{
					"title":   "A",
					"status":  "ASSIGNED",
					"project": map[string]interface{}{"tasks": []interface{}{map[string]interface{}{"title": "A"}}},
				},
			}))
		})

		It("returns the id of a deleted task", func() {
			id := server.PutTask(&model.Task{Title: "A", ProjectID: projectID})

			result := execute(`mutation { deleteTask(id: "` + id.String() + `") }`)
			Expect(result.Errors).Should(BeEmpty())
			Expect(result.Data).Should(Equal(map[string]interface{}{"deleteTask": id.String()}))
			Expect(server.Task(id)).Should(BeNil())
		})

		It("attaches the error kind to failed mutations", func() {
			result := execute(`mutation { deleteTask(id: "999") }`)
			Expect(result.Data).Should(Equal(map[string]interface{}{"deleteTask": nil}))
			Expect(result.Errors).Should(HaveLen(1))
			Expect(result.Errors[0].Extensions).Should(HaveKeyWithValue("code", "NOT_FOUND"))
			Expect(result.Errors[0].Extensions).Should(HaveKeyWithValue("op", "relation.DeleteTask"))
		})

		It("yields null without an error when a dependency end is missing", func() {
			id := server.PutTask(&model.Task{Title: "A", ProjectID: projectID})

			result := execute(`mutation { addDependencyToTask(childId: "` + id.String() + `", parentId: "999") { id } }`)
			Expect(result.Errors).Should(BeEmpty())
			Expect(result.Data).Should(Equal(map[string]interface{}{"addDependencyToTask": nil}))
		})

		It("adds a dependency", func() {
			child := server.PutTask(&model.Task{Title: "child", ProjectID: projectID})
			parent := server.PutTask(&model.Task{Title: "parent", ProjectID: projectID})

			result := execute(`mutation {
				addDependencyToTask(childId: "` + child.String() + `", parentId: "` + parent.String() + `") {
					parents { title children { title } }
				}
			}`)
			Expect(result.Errors).Should(BeEmpty())
			Expect(result.Data).Should(Equal(map[string]interface{}{
				"addDependencyToTask": map[string]interface{}{
					"parents": []interface{}{
						map[string]interface{}{
							"title":    "parent",
							"children": []interface{}{map[string]interface{}{"title": "child"}},
						},
					},
				},
			}))
		})

		It("updates task fields", func() {
			id := server.PutTask(&model.Task{Title: "A", ProjectID: projectID})

			result := execute(`mutation {
				updateTaskStatus(id: "` + id.String() + `", status: COMPLETED) { status }
				updateTaskTitle(id: "` + id.String() + `", newTitle: "B") { title status }
			}`)
			Expect(result.Errors).Should(BeEmpty())
			Expect(result.Data).Should(Equal(map[string]interface{}{
				"updateTaskStatus": map[string]interface{}{"status": "COMPLETED"},
				"updateTaskTitle":  map[string]interface{}{"title": "B", "status": "COMPLETED"},
			}))
		})

		It("creates, updates and deletes users", func() {
			result := execute(`mutation { createUser(name: "Ada", email: "ada@example.com") { id name } }`)
			Expect(result.Errors).Should(BeEmpty())
			id := result.Data.(map[string]interface{})["createUser"].(map[string]interface{})["id"].(string)

			result = execute(`mutation { updateUser(id: "` + id + `", name: "Grace") { name email } }`)
			Expect(result.Errors).Should(BeEmpty())
			Expect(result.Data).Should(Equal(map[string]interface{}{
				"updateUser": map[string]interface{}{"name": "Grace", "email": "ada@example.com"},
			}))

			result = execute(`mutation { deleteUser(id: "` + id + `") }`)
			Expect(result.Errors).Should(BeEmpty())
			Expect(server.User(model.ID(id))).Should(BeNil())
		})

		It("creates and deletes projects", func() {
			owner := server.PutUser(&model.User{Name: "Ada"})

			result := execute(`mutation { createProject(owner: "` + owner.String() + `", title: "Q") { id status owner { name } } }`)
			Expect(result.Errors).Should(BeEmpty())
			created := result.Data.(map[string]interface{})["createProject"].(map[string]interface{})
			Expect(created["status"]).Should(Equal("ASSIGNED"))
			Expect(created["owner"]).Should(Equal(map[string]interface{}{"name": "Ada"}))

			id := created["id"].(string)
			result = execute(`mutation { deleteProject(id: "` + id + `") }`)
			Expect(result.Errors).Should(BeEmpty())
			Expect(result.Data).Should(Equal(map[string]interface{}{"deleteProject": id}))
		})
	})
})
