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

	"go.uber.org/zap"
)

// CreateProjectInput describes a project to create.
type CreateProjectInput struct {
	OwnerID     model.ID
	Title       string
	Description string
	Status      model.Status
}

// CreateProject inserts a project with no tasks.
func (e *Engine) CreateProject(ctx context.Context, input CreateProjectInput) (*model.Project, error) {
	const op store.Op = "relation.CreateProject"

	l, err := e.loaders(ctx)
	if err != nil {
		return nil, err
	}

	e.log(ctx).Debug("create project", zapID("owner", input.OwnerID))

	created, err := e.store.Projects().Create(ctx, &model.Project{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		OwnerID:     input.OwnerID,
		Tasks:       model.IDs{},
	})
	if err != nil {
		return nil, store.NewError("cannot insert project", op, err)
	}

	return l.Project(ctx, created.ID)
}

// DeleteProject deletes a project and every task that belongs to it. Members are the tasks whose
// projectId references the project plus the ids the project lists itself, so a listed task whose
// projectId went stale is not left behind. Edges from surviving tasks to the deleted tasks are
// removed.
func (e *Engine) DeleteProject(ctx context.Context, id model.ID) (model.ID, error) {
	const op store.Op = "relation.DeleteProject"

	l, err := e.loaders(ctx)
	if err != nil {
		return "", err
	}

	// The embedded read replaces the stored task list, so the row itself is read too.
	stored, err := l.Project(ctx, id)
	if err != nil {
		return "", store.NewError("cannot read project", op, err)
	}

	project, err := e.store.Projects().GetMembers(ctx, id)
	if err != nil {
		return "", store.NewError("cannot read project members", op, err)
	}

	victims := project.Tasks
	memberIDs := project.IDs()

	var listed model.IDs
	for _, taskID := range stored.Tasks {
		if !memberIDs.Contains(taskID) {
			listed = listed.With(taskID)
		}
	}

	if len(listed) > 0 {
		tasks, errs := l.Tasks(ctx, listed)
		for i, err := range errs {
			switch {
			case err == nil:
				e.log(ctx).Warn("project lists a task that points elsewhere",
					zapID("task", listed[i]), zapID("project", id), zapID("taskProject", tasks[i].ProjectID))
				victims = append(victims, tasks[i])
			case store.IsKind(err, store.KindNotFound):
				e.log(ctx).Warn("project lists a missing task",
					zapID("task", listed[i]), zapID("project", id))
			default:
				return "", store.NewError("cannot read listed task", op, err)
			}
		}
	}

	e.log(ctx).Debug("delete project", zapID("project", id), zap.Int("tasks", len(victims)))

	seq := e.sequence(ctx, op)

	if err := seq.Step("delete project", func() error {
		return e.store.Projects().Delete(ctx, id)
	}); err != nil {
		return "", err
	}

	if len(victims) > 0 {
		if err := e.removeTasks(ctx, seq, l, victims, nil, ""); err != nil {
			return "", err
		}
	}

	return id, nil
}
