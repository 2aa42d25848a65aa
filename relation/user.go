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

package relation

import (
	"context"

	"github.com/botobag/taskgraph/model"
	"github.com/botobag/taskgraph/store"
)

// CreateUser inserts a user.
func (e *Engine) CreateUser(ctx context.Context, name string, email string) (*model.User, error) {
	const op store.Op = "relation.CreateUser"

	l, err := e.loaders(ctx)
	if err != nil {
		return nil, err
	}

	created, err := e.store.Users().Create(ctx, &model.User{
		Name:  name,
		Email: email,
	})
	if err != nil {
		return nil, store.NewError("cannot insert user", op, err)
	}

	return l.User(ctx, created.ID)
}

// UpdateUser changes the name and/or the email of a user. Nil arguments are left untouched.
func (e *Engine) UpdateUser(ctx context.Context, id model.ID, name *string, email *string) (*model.User, error) {
	const op store.Op = "relation.UpdateUser"

	l, err := e.loaders(ctx)
	if err != nil {
		return nil, err
	}

	if name != nil || email != nil {
		if _, err := e.store.Users().Patch(ctx, id, &model.UserPatch{
			Name:  name,
			Email: email,
		}); err != nil {
			return nil, store.NewError("cannot update user", op, err)
		}
	}

	return l.User(ctx, id)
}

// DeleteUser deletes a user and clears the owner of every task assigned to it. Projects owned by
// the user are kept and reported in the log.
func (e *Engine) DeleteUser(ctx context.Context, id model.ID) (model.ID, error) {
	const op store.Op = "relation.DeleteUser"

	tasks, err := e.store.Tasks().List(ctx)
	if err != nil {
		return "", store.NewError("cannot list tasks", op, err)
	}
	var owned model.IDs
	for _, task := range tasks {
		if task.OwnerID == id {
			owned = append(owned, task.ID)
		}
	}

	e.log(ctx).Debug("delete user", zapID("user", id), zapIDs("tasks", owned))

	seq := e.sequence(ctx, op)

	if err := seq.Step("delete user", func() error {
		return e.store.Users().Delete(ctx, id)
	}); err != nil {
		return "", err
	}

	if len(owned) > 0 {
		var (
			noOwner model.ID
			writes  = make([]func() error, len(owned))
		)
		for i, taskID := range owned {
			taskID := taskID
			writes[i] = func() error {
				_, err := e.store.Tasks().Patch(ctx, taskID, &model.TaskPatch{OwnerID: &noOwner})
				return err
			}
		}
		if err := seq.Parallel("clear task owners", writes...); err != nil {
			return "", err
		}
	}

	projects, err := e.store.Projects().List(ctx)
	if err != nil {
		e.log(ctx).Warn("cannot check projects owned by deleted user", zapID("user", id))
		return id, nil
	}
	for _, project := range projects {
		if project.OwnerID == id {
			e.log(ctx).Warn("project still owned by deleted user",
				zapID("project", project.ID), zapID("user", id))
		}
	}

	return id, nil
}
