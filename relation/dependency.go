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

	"github.com/botobag/taskgraph/loader"
	"github.com/botobag/taskgraph/model"
	"github.com/botobag/taskgraph/store"
)

// AddDependency makes child depend on parent. The edge is written on the child first and then on
// the parent. Adding an edge that already exists writes the same lists again and changes nothing.
//
// If either task cannot be loaded, AddDependency returns a store.KindEmptyResult error without
// writing anything.
func (e *Engine) AddDependency(ctx context.Context, childID model.ID, parentID model.ID) (*model.Task, error) {
	const op store.Op = "relation.AddDependency"

	if !childID.IsZero() && childID == parentID {
		return nil, store.NewError("a task cannot depend on itself", op, store.KindInvalid)
	}

	l, err := e.loaders(ctx)
	if err != nil {
		return nil, err
	}

	// Load both ends in the same batch.
	childLoad, err := l.LoadTask(childID)
	if err != nil {
		return nil, store.NewError("cannot load child task", op, store.KindEmptyResult, err)
	}
	parentLoad, err := l.LoadTask(parentID)
	if err != nil {
		return nil, store.NewError("cannot load parent task", op, store.KindEmptyResult, err)
	}

	child, err := awaitTask(ctx, childLoad)
	if err != nil {
		e.log(ctx).Warn("dependency endpoint not found", zapID("child", childID), zapID("parent", parentID))
		return nil, store.NewError("cannot load child task", op, store.KindEmptyResult, err)
	}
	parent, err := awaitTask(ctx, parentLoad)
	if err != nil {
		e.log(ctx).Warn("dependency endpoint not found", zapID("child", childID), zapID("parent", parentID))
		return nil, store.NewError("cannot load parent task", op, store.KindEmptyResult, err)
	}

	if e.cyclePolicy == RejectCycles {
		cycle, err := e.dependsOn(ctx, l, parent, child.ID)
		if err != nil {
			return nil, store.NewError("cannot check for dependency cycles", op, err)
		}
		if cycle {
			return nil, store.NewError("dependency would close a cycle", op, store.KindCycle)
		}
	}

	e.log(ctx).Debug("add dependency", zapID("child", child.ID), zapID("parent", parent.ID))

	seq := e.sequence(ctx, op)

	if err := seq.Step("add parent to child", func() error {
		_, err := e.store.Tasks().Patch(ctx, child.ID,
			(&model.TaskPatch{}).SetParents(child.Parents.With(parent.ID)))
		return err
	}); err != nil {
		return nil, err
	}

	if err := seq.Step("add child to parent", func() error {
		_, err := e.store.Tasks().Patch(ctx, parent.ID,
			(&model.TaskPatch{}).SetChildren(parent.Children.With(child.ID)))
		return err
	}); err != nil {
		return nil, err
	}

	return l.Task(ctx, child.ID)
}

func awaitTask(ctx context.Context, pending loader.Pending) (*model.Task, error) {
	value, err := pending.Await(ctx)
	if err != nil {
		return nil, err
	}
	return loader.AsTask(value)
}

// dependsOn reports whether task depends on target through parents edges, directly or
// transitively. The walk goes level by level so that every level is fetched in one batch. Tasks
// that no longer exist end their branch.
func (e *Engine) dependsOn(ctx context.Context, l *loader.Loaders, task *model.Task, target model.ID) (bool, error) {
	visited := map[model.ID]bool{task.ID: true}
	frontier := task.Parents

	for len(frontier) > 0 {
		var next model.IDs
		for _, id := range frontier {
			if id == target {
				return true, nil
			}
			if !visited[id] {
				visited[id] = true
				next = append(next, id)
			}
		}
		if len(next) == 0 {
			break
		}

		tasks, errs := l.Tasks(ctx, next)
		frontier = nil
		for i, err := range errs {
			switch {
			case err == nil:
				frontier = append(frontier, tasks[i].Parents...)
			case store.IsKind(err, store.KindNotFound):
				e.log(ctx).Warn("dangling dependency reference skipped", zapID("task", next[i]))
			default:
				return false, err
			}
		}
	}

	return false, nil
}
