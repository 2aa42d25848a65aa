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
	"context"

	"github.com/botobag/taskgraph/model"
)

// Tasks returns the accessor for task rows.
func (c *Client) Tasks() Tasks {
	return Tasks{c}
}

// Users returns the accessor for user rows.
func (c *Client) Users() Users {
	return Users{c}
}

// Projects returns the accessor for project rows.
func (c *Client) Projects() Projects {
	return Projects{c}
}

// Tasks reads and writes task rows.
type Tasks struct {
	client *Client
}

// Get reads the task identified by id.
func (r Tasks) Get(ctx context.Context, id model.ID) (*model.Task, error) {
	var task model.Task
	if err := r.client.Get(ctx, ResourceTasks, id, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// List reads every task.
func (r Tasks) List(ctx context.Context) ([]*model.Task, error) {
	var tasks []*model.Task
	if err := r.client.List(ctx, ResourceTasks, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Create inserts task and returns the created row.
func (r Tasks) Create(ctx context.Context, task *model.Task) (*model.Task, error) {
	var created model.Task
	if err := r.client.Create(ctx, ResourceTasks, task, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Patch applies patch to the task identified by id and returns the updated row.
func (r Tasks) Patch(ctx context.Context, id model.ID, patch *model.TaskPatch) (*model.Task, error) {
	var updated model.Task
	if err := r.client.Patch(ctx, ResourceTasks, id, patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the task identified by id.
func (r Tasks) Delete(ctx context.Context, id model.ID) error {
	return r.client.Delete(ctx, ResourceTasks, id)
}

// Users reads and writes user rows.
type Users struct {
	client *Client
}

// Get reads the user identified by id.
func (r Users) Get(ctx context.Context, id model.ID) (*model.User, error) {
	var user model.User
	if err := r.client.Get(ctx, ResourceUsers, id, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// List reads every user.
func (r Users) List(ctx context.Context) ([]*model.User, error) {
	var users []*model.User
	if err := r.client.List(ctx, ResourceUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Create inserts user and returns the created row.
func (r Users) Create(ctx context.Context, user *model.User) (*model.User, error) {
	var created model.User
	if err := r.client.Create(ctx, ResourceUsers, user, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Patch applies patch to the user identified by id and returns the updated row.
func (r Users) Patch(ctx context.Context, id model.ID, patch *model.UserPatch) (*model.User, error) {
	var updated model.User
	if err := r.client.Patch(ctx, ResourceUsers, id, patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the user identified by id.
func (r Users) Delete(ctx context.Context, id model.ID) error {
	return r.client.Delete(ctx, ResourceUsers, id)
}

// Projects reads and writes project rows.
type Projects struct {
	client *Client
}

// Get reads the project identified by id.
func (r Projects) Get(ctx context.Context, id model.ID) (*model.Project, error) {
	var project model.Project
	if err := r.client.Get(ctx, ResourceProjects, id, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// GetMembers reads the project identified by id together with its member task rows in one
// round-trip.
func (r Projects) GetMembers(ctx context.Context, id model.ID) (*model.ProjectMembers, error) {
	var members model.ProjectMembers
	if err := r.client.GetEmbedded(ctx, ResourceProjects, id, ResourceTasks, &members); err != nil {
		return nil, err
	}
	return &members, nil
}

// List reads every project.
func (r Projects) List(ctx context.Context) ([]*model.Project, error) {
	var projects []*model.Project
	if err := r.client.List(ctx, ResourceProjects, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Create inserts project and returns the created row.
func (r Projects) Create(ctx context.Context, project *model.Project) (*model.Project, error) {
	var created model.Project
	if err := r.client.Create(ctx, ResourceProjects, project, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Patch applies patch to the project identified by id and returns the updated row.
func (r Projects) Patch(ctx context.Context, id model.ID, patch *model.ProjectPatch) (*model.Project, error) {
	var updated model.Project
	if err := r.client.Patch(ctx, ResourceProjects, id, patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the project identified by id.
func (r Projects) Delete(ctx context.Context, id model.ID) error {
	return r.client.Delete(ctx, ResourceProjects, id)
}
