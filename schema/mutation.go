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

package schema

import (
	"github.com/botobag/taskgraph/model"
	"github.com/botobag/taskgraph/relation"
	"github.com/botobag/taskgraph/store"

	"github.com/graphql-go/graphql"
	"go.uber.org/zap"
)

func (b *builder) newMutationObject() *graphql.Object {
	engine := b.config.Engine

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "RootMutation",
		Fields: graphql.Fields{
			"createTask": &graphql.Field{
				Type:        b.task,
				Description: "Create Task",
				Args: graphql.FieldConfigArgument{
					"projectId":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"userId":      &graphql.ArgumentConfig{Type: graphql.ID},
					"title":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"description": &graphql.ArgumentConfig{Type: graphql.String},
					"status":      &graphql.ArgumentConfig{Type: b.status, DefaultValue: b.config.DefaultStatus},
					"endDate":     &graphql.ArgumentConfig{Type: graphql.String},
					"child": &graphql.ArgumentConfig{
						Type:        graphql.ID,
						Description: "An existing task that will depend on the new task",
					},
					"parent": &graphql.ArgumentConfig{
						Type:        graphql.ID,
						Description: "An existing task the new task will depend on",
					},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					input := relation.CreateTaskInput{
						ProjectID: idArg(p.Args, "projectId"),
						OwnerID:   idArg(p.Args, "userId"),
						Status:    b.config.DefaultStatus,
						Child:     idArg(p.Args, "child"),
						Parent:    idArg(p.Args, "parent"),
					}
					if title := stringArg(p.Args, "title"); title != nil {
						input.Title = *title
					}
					if description := stringArg(p.Args, "description"); description != nil {
						input.Description = *description
					}
					if endDate := stringArg(p.Args, "endDate"); endDate != nil {
						input.EndDate = *endDate
					}
					if status := statusArg(p.Args, "status"); status != nil {
						input.Status = *status
					}
					return entity(engine.CreateTask(p.Context, input))
				},
			},

			"deleteTask": &graphql.Field{
				Type:        graphql.ID,
				Description: "Delete Task",
				Args:        requiredID("id"),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deletedID(engine.DeleteTask(p.Context, idArg(p.Args, "id")))
				},
			},

			"updateTask": &graphql.Field{
				Type:        b.task,
				Description: "Update the plain fields of a Task",
				Args: graphql.FieldConfigArgument{
					"id":          &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"title":       &graphql.ArgumentConfig{Type: graphql.String},
					"description": &graphql.ArgumentConfig{Type: graphql.String},
					"status":      &graphql.ArgumentConfig{Type: b.status},
					"endDate":     &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return entity(engine.UpdateTask(p.Context, idArg(p.Args, "id"), relation.UpdateTaskInput{
						Title:       stringArg(p.Args, "title"),
						Description: stringArg(p.Args, "description"),
						Status:      statusArg(p.Args, "status"),
						EndDate:     stringArg(p.Args, "endDate"),
					}))
				},
			},

			"updateTaskTitle": &graphql.Field{
				Type:        b.task,
				Description: "Update Task title",
				Args: graphql.FieldConfigArgument{
					"id":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"newTitle": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return entity(engine.UpdateTaskTitle(p.Context, idArg(p.Args, "id"), *stringArg(p.Args, "newTitle")))
				},
			},

			"updateTaskEndDate": &graphql.Field{
				Type:        b.task,
				Description: "Update Task date",
				Args: graphql.FieldConfigArgument{
					"id":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"date": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return entity(engine.UpdateTaskEndDate(p.Context, idArg(p.Args, "id"), *stringArg(p.Args, "date")))
				},
			},

			"updateTaskOwner": &graphql.Field{
				Type:        b.task,
				Description: "Update Task user",
				Args: graphql.FieldConfigArgument{
					"id":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"user": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return entity(engine.UpdateTaskOwner(p.Context, idArg(p.Args, "id"), idArg(p.Args, "user")))
				},
			},

			"updateTaskStatus": &graphql.Field{
				Type:        b.task,
				Description: "Update Task status",
				Args: graphql.FieldConfigArgument{
					"id":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"status": &graphql.ArgumentConfig{Type: graphql.NewNonNull(b.status)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return entity(engine.UpdateTaskStatus(p.Context, idArg(p.Args, "id"), *statusArg(p.Args, "status")))
				},
			},

			"addDependencyToTask": &graphql.Field{
				Type:        b.task,
				Description: "Make the child task depend on the parent task",
				Args: graphql.FieldConfigArgument{
					"childId":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"parentId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					childID, parentID := idArg(p.Args, "childId"), idArg(p.Args, "parentId")
					task, err := engine.AddDependency(p.Context, childID, parentID)
					if store.IsKind(err, store.KindEmptyResult) {
						b.log(p.Context).Warn("dependency not added",
							zap.String("child", childID.String()),
							zap.String("parent", parentID.String()),
							zap.Error(err))
						return nil, nil
					}
					return entity(task, err)
				},
			},

			"createProject": &graphql.Field{
				Type:        b.project,
				Description: "Create Project",
				Args: graphql.FieldConfigArgument{
					"owner":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"title":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"description": &graphql.ArgumentConfig{Type: graphql.String},
					"status":      &graphql.ArgumentConfig{Type: b.status, DefaultValue: b.config.DefaultStatus},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					input := relation.CreateProjectInput{
						OwnerID: idArg(p.Args, "owner"),
						Title:   *stringArg(p.Args, "title"),
						Status:  b.config.DefaultStatus,
					}
					if description := stringArg(p.Args, "description"); description != nil {
						input.Description = *description
					}
					if status := statusArg(p.Args, "status"); status != nil {
						input.Status = *status
					}
					return entity(engine.CreateProject(p.Context, input))
				},
			},

			"deleteProject": &graphql.Field{
				Type:        graphql.ID,
				Description: "Delete Project and its tasks",
				Args:        requiredID("id"),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deletedID(engine.DeleteProject(p.Context, idArg(p.Args, "id")))
				},
			},

			"createUser": &graphql.Field{
				Type:        b.user,
				Description: "Create User",
				Args: graphql.FieldConfigArgument{
					"name":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"email": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return entity(engine.CreateUser(p.Context, *stringArg(p.Args, "name"), *stringArg(p.Args, "email")))
				},
			},

			"updateUser": &graphql.Field{
				Type:        b.user,
				Description: "Update User",
				Args: graphql.FieldConfigArgument{
					"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"name":  &graphql.ArgumentConfig{Type: graphql.String},
					"email": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return entity(engine.UpdateUser(p.Context, idArg(p.Args, "id"),
						stringArg(p.Args, "name"), stringArg(p.Args, "email")))
				},
			},

			"deleteUser": &graphql.Field{
				Type:        graphql.ID,
				Description: "Delete User",
				Args:        requiredID("id"),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deletedID(engine.DeleteUser(p.Context, idArg(p.Args, "id")))
				},
			},
		},
	})
}

func requiredID(name string) graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		name: &graphql.ArgumentConfig{
			Type: graphql.NewNonNull(graphql.ID),
		},
	}
}

// entity converts a typed nil result into an untyped nil so the executor writes null.
func entity[T any](value *T, err error) (interface{}, error) {
	if err != nil || value == nil {
		return nil, err
	}
	return value, nil
}

func deletedID(id model.ID, err error) (interface{}, error) {
	if err != nil {
		return nil, err
	}
	return id.String(), nil
}
