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
	"sort"

	"github.com/botobag/taskgraph/loader"
	"github.com/botobag/taskgraph/model"
	"github.com/botobag/taskgraph/store"

	"go.uber.org/zap"
)

// CreateTaskInput describes a task to create. Child and Parent optionally link the new task to an
// existing one: Child depends on the new task, and the new task depends on Parent.
type CreateTaskInput struct {
	ProjectID   model.ID
	OwnerID     model.ID
	Title       string
	Description string
	Status      model.Status
	EndDate     string
	Child       model.ID
	Parent      model.ID
}

// CreateTask inserts a task and links it into its project and to the optional child and parent.
// The steps run in this order: insert the task, append it to the project's tasks, append it to the
// child's parents, append it to the parent's children. The task returned is read back after all
// steps committed.
func (e *Engine) CreateTask(ctx context.Context, input CreateTaskInput) (*model.Task, error) {
	const op store.Op = "relation.CreateTask"

	if input.ProjectID.IsZero() {
		return nil, store.NewError("projectId is required", op, store.KindInvalid)
	}
	if !input.Child.IsZero() && input.Child == input.Parent && e.cyclePolicy == RejectCycles {
		return nil, store.NewError("a task cannot be both child and parent of the new task", op, store.KindCycle)
	}

	l, err := e.loaders(ctx)
	if err != nil {
		return nil, err
	}

	task := &model.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		EndDate:     input.EndDate,
		OwnerID:     input.OwnerID,
		ProjectID:   input.ProjectID,
		Parents:     model.IDs{},
		Children:    model.IDs{},
	}
	if !input.Child.IsZero() {
		task.Children = model.IDs{input.Child}
	}
	if !input.Parent.IsZero() {
		task.Parents = model.IDs{input.Parent}
	}

	e.log(ctx).Debug("create task",
		zapID("project", input.ProjectID),
		zapID("child", input.Child),
		zapID("parent", input.Parent))

	var (
		seq     = e.sequence(ctx, op)
		created *model.Task
	)

	if err := seq.Step("insert task", func() (err error) {
		created, err = e.store.Tasks().Create(ctx, task)
		return
	}); err != nil {
		return nil, err
	}

	if err := seq.Step("add task to project", func() error {
		project, err := l.Project(ctx, input.ProjectID)
		if err != nil {
			return err
		}
		_, err = e.store.Projects().Patch(ctx, project.ID,
			(&model.ProjectPatch{}).SetTasks(project.Tasks.With(created.ID)))
		return err
	}); err != nil {
		return nil, err
	}

	if !input.Child.IsZero() {
		if err := seq.Step("add task to child's parents", func() error {
			child, err := l.Task(ctx, input.Child)
			if err != nil {
				return err
			}
			_, err = e.store.Tasks().Patch(ctx, child.ID,
				(&model.TaskPatch{}).SetParents(child.Parents.With(created.ID)))
			return err
		}); err != nil {
			return nil, err
		}
	}

	if !input.Parent.IsZero() {
		if err := seq.Step("add task to parent's children", func() error {
			parent, err := l.Task(ctx, input.Parent)
			if err != nil {
				return err
			}
			_, err = e.store.Tasks().Patch(ctx, parent.ID,
				(&model.TaskPatch{}).SetChildren(parent.Children.With(created.ID)))
			return err
		}); err != nil {
			return nil, err
		}
	}

	return l.Task(ctx, created.ID)
}

// DeleteTask deletes a task and scrubs its id from every row that references it: the tasks of
// its project, the tasks on the other end of its dependency edges (which may belong to other
// projects) and the project's tasks list. All of these writes and the delete itself are issued
// concurrently; if one fails, the others that succeeded stay committed.
func (e *Engine) DeleteTask(ctx context.Context, id model.ID) (model.ID, error) {
	const op store.Op = "relation.DeleteTask"

	l, err := e.loaders(ctx)
	if err != nil {
		return "", err
	}

	task, err := e.store.Tasks().Get(ctx, id)
	if err != nil {
		return "", store.NewError("cannot read task", op, err)
	}

	var members []*model.Task
	projectID := task.ProjectID
	if !projectID.IsZero() {
		project, err := e.store.Projects().GetMembers(ctx, projectID)
		switch {
		case err == nil:
			members = project.Tasks
		case store.IsKind(err, store.KindNotFound):
			e.log(ctx).Warn("task references a missing project",
				zapID("task", id), zapID("project", projectID))
			projectID = ""
		default:
			return "", store.NewError("cannot read project members", op, err)
		}
	}

	seq := e.sequence(ctx, op)
	if err := e.removeTasks(ctx, seq, l, []*model.Task{task}, members, projectID); err != nil {
		return "", err
	}

	return id, nil
}

// removeTasks deletes victims and patches every surviving row that references them. members are
// the current rows of the project identified by projectID; if projectID is zero, no project is
// patched.
func (e *Engine) removeTasks(
	ctx context.Context,
	seq *Sequence,
	l *loader.Loaders,
	victims []*model.Task,
	members []*model.Task,
	projectID model.ID) error {

	victimIDs := make(model.IDs, 0, len(victims))
	for _, victim := range victims {
		victimIDs = append(victimIDs, victim.ID)
	}

	// Collect referrers: surviving members of the project plus the other ends of the victims' edges.
	referrers := map[model.ID]*model.Task{}
	for _, member := range members {
		if !victimIDs.Contains(member.ID) {
			referrers[member.ID] = member
		}
	}

	var outside model.IDs
	for _, victim := range victims {
		for _, ref := range victim.References() {
			if _, known := referrers[ref]; !known && !victimIDs.Contains(ref) {
				outside = outside.With(ref)
			}
		}
	}

	if len(outside) > 0 {
		tasks, errs := l.Tasks(ctx, outside)
		for i, err := range errs {
			switch {
			case err == nil:
				referrers[outside[i]] = tasks[i]
			case store.IsKind(err, store.KindNotFound):
				e.log(ctx).Warn("dangling dependency reference skipped",
					zapID("task", outside[i]), zapIDs("deleting", victimIDs))
			default:
				return store.NewError("cannot read dependent task", seq.op, err)
			}
		}
	}

	referrerIDs := make(model.IDs, 0, len(referrers))
	for id := range referrers {
		referrerIDs = append(referrerIDs, id)
	}
	sort.Slice(referrerIDs, func(i, j int) bool {
		return referrerIDs[i] < referrerIDs[j]
	})

	var writes []func() error
	for _, id := range referrerIDs {
		referrer := referrers[id]
		patch := (&model.TaskPatch{}).
			SetChildren(referrer.Children.Without(victimIDs...)).
			SetParents(referrer.Parents.Without(victimIDs...))
		writes = append(writes, func() error {
			_, err := e.store.Tasks().Patch(ctx, referrer.ID, patch)
			return err
		})
	}

	if !projectID.IsZero() {
		remaining := make(model.IDs, 0, len(members))
		for _, member := range members {
			if !victimIDs.Contains(member.ID) {
				remaining = append(remaining, member.ID)
			}
		}
		writes = append(writes, func() error {
			_, err := e.store.Projects().Patch(ctx, projectID, (&model.ProjectPatch{}).SetTasks(remaining))
			return err
		})
	}

	for _, victim := range victims {
		victimID := victim.ID
		writes = append(writes, func() error {
			err := e.store.Tasks().Delete(ctx, victimID)
			if store.IsKind(err, store.KindNotFound) {
				// Already gone; the store may cascade deletes on its own.
				return nil
			}
			return err
		})
	}

	e.log(ctx).Debug("delete tasks",
		zapIDs("tasks", victimIDs),
		zapIDs("referrers", referrerIDs),
		zapID("project", projectID))

	return seq.Parallel("scrub references and delete", writes...)
}

// UpdateTaskInput lists the plain fields of a task that UpdateTask may change. Reference sets are
// maintained by the relationship operations only.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *model.Status
	EndDate     *string
}

// UpdateTask applies the non-nil fields of input to the task identified by id.
func (e *Engine) UpdateTask(ctx context.Context, id model.ID, input UpdateTaskInput) (*model.Task, error) {
	return e.patchTask(ctx, "relation.UpdateTask", id, &model.TaskPatch{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		EndDate:     input.EndDate,
	})
}

// UpdateTaskTitle sets the title of a task.
func (e *Engine) UpdateTaskTitle(ctx context.Context, id model.ID, title string) (*model.Task, error) {
	return e.patchTask(ctx, "relation.UpdateTaskTitle", id, &model.TaskPatch{
		Title: &title,
	})
}

// UpdateTaskEndDate sets the end date of a task.
func (e *Engine) UpdateTaskEndDate(ctx context.Context, id model.ID, endDate string) (*model.Task, error) {
	return e.patchTask(ctx, "relation.UpdateTaskEndDate", id, &model.TaskPatch{
		EndDate: &endDate,
	})
}

// UpdateTaskOwner assigns a task to a user. A zero owner clears the assignment.
func (e *Engine) UpdateTaskOwner(ctx context.Context, id model.ID, owner model.ID) (*model.Task, error) {
	return e.patchTask(ctx, "relation.UpdateTaskOwner", id, &model.TaskPatch{
		OwnerID: &owner,
	})
}

// UpdateTaskStatus sets the status of a task.
func (e *Engine) UpdateTaskStatus(ctx context.Context, id model.ID, status model.Status) (*model.Task, error) {
	return e.patchTask(ctx, "relation.UpdateTaskStatus", id, &model.TaskPatch{
		Status: &status,
	})
}

func (e *Engine) patchTask(ctx context.Context, op store.Op, id model.ID, patch *model.TaskPatch) (*model.Task, error) {
	l, err := e.loaders(ctx)
	if err != nil {
		return nil, err
	}

	e.log(ctx).Debug("update task", zap.String("op", string(op)), zapID("task", id))

	if !patch.Empty() {
		if _, err := e.store.Tasks().Patch(ctx, id, patch); err != nil {
			return nil, store.NewError("cannot update task", op, err)
		}
	}

	return l.Task(ctx, id)
}
