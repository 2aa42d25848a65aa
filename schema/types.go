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

	"github.com/graphql-go/graphql"
)

func (b *builder) newTaskObject() *graphql.Object {
	taskOwner := resolveReference(loadUser, func(source interface{}) (model.ID, error) {
		task, err := sourceTask(source)
		if err != nil {
			return "", err
		}
		return task.OwnerID, nil
	})

	return graphql.NewObject(graphql.ObjectConfig{
		Name:        "Task",
		Description: "A unit of work that may depend on other tasks.",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id": &graphql.Field{
					Type: graphql.NewNonNull(graphql.ID),
					Resolve: resolveTaskField(func(task *model.Task) interface{} {
						return task.ID.String()
					}),
				},
				"title": &graphql.Field{
					Type: graphql.NewNonNull(graphql.String),
					Resolve: resolveTaskField(func(task *model.Task) interface{} {
						return task.Title
					}),
				},
				"description": &graphql.Field{
					Type:        graphql.String,
					Description: "Details about the task",
					Resolve: resolveTaskField(func(task *model.Task) interface{} {
						return task.Description
					}),
				},
				"endDate": &graphql.Field{
					Type: graphql.String,
					Resolve: resolveTaskField(func(task *model.Task) interface{} {
						if len(task.EndDate) == 0 {
							return nil
						}
						return task.EndDate
					}),
				},
				"status": &graphql.Field{
					Type: b.status,
					Resolve: resolveTaskField(func(task *model.Task) interface{} {
						if len(task.Status) == 0 {
							return nil
						}
						return task.Status
					}),
				},
				"owner": &graphql.Field{
					Type:    b.user,
					Resolve: taskOwner,
				},
				"user": &graphql.Field{
					Type:              b.user,
					DeprecationReason: "Use owner.",
					Resolve:           taskOwner,
				},
				"project": &graphql.Field{
					Type: b.project,
					Resolve: resolveReference(loadProject, func(source interface{}) (model.ID, error) {
						task, err := sourceTask(source)
						if err != nil {
							return "", err
						}
						return task.ProjectID, nil
					}),
				},
				"parents": &graphql.Field{
					Type:        graphql.NewList(b.task),
					Description: "The tasks this task depends on",
					Resolve: resolveReferences(loadTask, func(source interface{}) (model.IDs, error) {
						task, err := sourceTask(source)
						if err != nil {
							return nil, err
						}
						return task.Parents, nil
					}),
				},
				"children": &graphql.Field{
					Type:        graphql.NewList(b.task),
					Description: "The tasks that depend on this task",
					Resolve: resolveReferences(loadTask, func(source interface{}) (model.IDs, error) {
						task, err := sourceTask(source)
						if err != nil {
							return nil, err
						}
						return task.Children, nil
					}),
				},
			}
		}),
	})
}

func (b *builder) newUserObject() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id": &graphql.Field{
					Type: graphql.NewNonNull(graphql.ID),
					Resolve: resolveUserField(func(user *model.User) interface{} {
						return user.ID.String()
					}),
				},
				"name": &graphql.Field{
					Type: graphql.NewNonNull(graphql.String),
					Resolve: resolveUserField(func(user *model.User) interface{} {
						return user.Name
					}),
				},
				"email": &graphql.Field{
					Type: graphql.NewNonNull(graphql.String),
					Resolve: resolveUserField(func(user *model.User) interface{} {
						return user.Email
					}),
				},
				"tasks": &graphql.Field{
					Type:        graphql.NewList(b.task),
					Description: "Tasks assigned to the user",
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						user, err := sourceUser(p.Source)
						if err != nil {
							return nil, err
						}
						tasks, err := b.config.Store.Tasks().List(p.Context)
						if err != nil {
							return nil, err
						}
						owned := []*model.Task{}
						for _, task := range tasks {
							if task.OwnerID == user.ID {
								owned = append(owned, task)
							}
						}
						return owned, nil
					},
				},
				"projects": &graphql.Field{
					Type:        graphql.NewList(b.project),
					Description: "Projects owned by the user",
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						user, err := sourceUser(p.Source)
						if err != nil {
							return nil, err
						}
						projects, err := b.config.Store.Projects().List(p.Context)
						if err != nil {
							return nil, err
						}
						owned := []*model.Project{}
						for _, project := range projects {
							if project.OwnerID == user.ID {
								owned = append(owned, project)
							}
						}
						return owned, nil
					},
				},
			}
		}),
	})
}

func (b *builder) newProjectObject() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Project",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id": &graphql.Field{
					Type: graphql.NewNonNull(graphql.ID),
					Resolve: resolveProjectField(func(project *model.Project) interface{} {
						return project.ID.String()
					}),
				},
				"title": &graphql.Field{
					Type: graphql.NewNonNull(graphql.String),
					Resolve: resolveProjectField(func(project *model.Project) interface{} {
						return project.Title
					}),
				},
				"description": &graphql.Field{
					Type: graphql.String,
					Resolve: resolveProjectField(func(project *model.Project) interface{} {
						return project.Description
					}),
				},
				"status": &graphql.Field{
					Type: b.status,
					Resolve: resolveProjectField(func(project *model.Project) interface{} {
						if len(project.Status) == 0 {
							return nil
						}
						return project.Status
					}),
				},
				"owner": &graphql.Field{
					Type: b.user,
					Resolve: resolveReference(loadUser, func(source interface{}) (model.ID, error) {
						project, err := sourceProject(source)
						if err != nil {
							return "", err
						}
						return project.OwnerID, nil
					}),
				},
				"tasks": &graphql.Field{
					Type: graphql.NewList(b.task),
					Resolve: resolveReferences(loadTask, func(source interface{}) (model.IDs, error) {
						project, err := sourceProject(source)
						if err != nil {
							return nil, err
						}
						return project.Tasks, nil
					}),
				},
			}
		}),
	})
}

func resolveTaskField(get func(*model.Task) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		task, err := sourceTask(p.Source)
		if err != nil {
			return nil, err
		}
		return get(task), nil
	}
}

func resolveUserField(get func(*model.User) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		user, err := sourceUser(p.Source)
		if err != nil {
			return nil, err
		}
		return get(user), nil
	}
}

func resolveProjectField(get func(*model.Project) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		project, err := sourceProject(p.Source)
		if err != nil {
			return nil, err
		}
		return get(project), nil
	}
}
