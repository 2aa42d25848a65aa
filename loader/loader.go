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

// Package loader provides the per-request batched loaders for tasks, users and projects.
//
// A Loaders value is created for one incoming request and discarded afterward. Concurrent lookups
// of the same kind issued before anyone waits for a result are coalesced: each distinct id is
// fetched once and every caller receives the row (or the error) for its id. Nothing is cached
// across dispatch windows, so a read that follows a write always observes the write.
package loader

import (
	"context"
	"fmt"

	"github.com/botobag/taskgraph/dataloader"
	"github.com/botobag/taskgraph/model"
	"github.com/botobag/taskgraph/store"

	"golang.org/x/sync/errgroup"
)

// Keys of the DataLoaders registered in the request Manager.
const (
	taskLoaderKey    = "Task"
	userLoaderKey    = "User"
	projectLoaderKey = "Project"
)

// Options configures Loaders.
type Options struct {
	// MaxBatchSize caps the number of ids handed to one batch; 0 means unlimited.
	MaxBatchSize uint
}

// Loaders holds one DataLoader per resource kind for one request.
type Loaders struct {
	manager  dataloader.Manager
	tasks    *dataloader.DataLoader
	users    *dataloader.DataLoader
	projects *dataloader.DataLoader
}

// New creates the loaders for a request served by client.
func New(client *store.Client, options Options) (*Loaders, error) {
	l := &Loaders{}

	register := func(key string, get getFunc) (*dataloader.DataLoader, error) {
		return l.manager.GetOrCreate(&dataloader.RegisterInfo{
			Key: key,
			Factory: dataloader.FactoryFunc(func() (*dataloader.DataLoader, error) {
				return dataloader.New(dataloader.Config{
					BatchLoader:  fetchEach(get),
					MaxBatchSize: options.MaxBatchSize,
				})
			}),
		})
	}

	var err error
	l.tasks, err = register(taskLoaderKey, func(ctx context.Context, id model.ID) (interface{}, error) {
		return client.Tasks().Get(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	l.users, err = register(userLoaderKey, func(ctx context.Context, id model.ID) (interface{}, error) {
		return client.Users().Get(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	l.projects, err = register(projectLoaderKey, func(ctx context.Context, id model.ID) (interface{}, error) {
		return client.Projects().Get(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	return l, nil
}

type getFunc func(ctx context.Context, id model.ID) (interface{}, error)

// fetchEach builds a BatchLoader for a store without a batch endpoint: every distinct id in the
// batch is fetched with its own request, all in parallel. A failed fetch fails only its own task.
func fetchEach(get getFunc) dataloader.BatchLoader {
	return dataloader.BatchLoadFunc(func(ctx context.Context, tasks *dataloader.TaskList) {
		var g errgroup.Group
		for taskIter, taskEnd := tasks.Begin(), tasks.End(); taskIter != taskEnd; taskIter = taskIter.Next() {
			task := taskIter.Task
			g.Go(func() error {
				value, err := get(ctx, task.Key().(model.ID))
				if err != nil {
					task.SetError(err)
				} else {
					task.Complete(value)
				}
				return nil
			})
		}
		g.Wait()
	})
}

// Dispatch sends every pending lookup of every kind to the store and waits for the batches.
func (l *Loaders) Dispatch(ctx context.Context) {
	l.manager.DispatchAll(ctx)
}

// Pending is a lookup that has been queued but not necessarily sent.
type Pending struct {
	loaders *Loaders
	task    *dataloader.Task
}

// Await dispatches pending lookups of every kind (if the lookup has not been sent yet) and returns
// the result.
func (p Pending) Await(ctx context.Context) (interface{}, error) {
	select {
	case <-p.task.Done():
	default:
		p.loaders.Dispatch(ctx)
	}
	return p.task.Await(ctx)
}

func (l *Loaders) enqueue(loader *dataloader.DataLoader, id model.ID) (Pending, error) {
	if id.IsZero() {
		return Pending{}, store.NewError("missing id", store.KindInvalid)
	}
	task, err := loader.Load(id)
	if err != nil {
		return Pending{}, err
	}
	return Pending{l, task}, nil
}

// LoadTask queues a lookup of the task identified by id.
func (l *Loaders) LoadTask(id model.ID) (Pending, error) {
	return l.enqueue(l.tasks, id)
}

// LoadUser queues a lookup of the user identified by id.
func (l *Loaders) LoadUser(id model.ID) (Pending, error) {
	return l.enqueue(l.users, id)
}

// LoadProject queues a lookup of the project identified by id.
func (l *Loaders) LoadProject(id model.ID) (Pending, error) {
	return l.enqueue(l.projects, id)
}

// Task loads the task identified by id.
func (l *Loaders) Task(ctx context.Context, id model.ID) (*model.Task, error) {
	value, err := l.await(ctx, l.LoadTask, id)
	if err != nil {
		return nil, err
	}
	return AsTask(value)
}

// User loads the user identified by id.
func (l *Loaders) User(ctx context.Context, id model.ID) (*model.User, error) {
	value, err := l.await(ctx, l.LoadUser, id)
	if err != nil {
		return nil, err
	}
	return AsUser(value)
}

// Project loads the project identified by id.
func (l *Loaders) Project(ctx context.Context, id model.ID) (*model.Project, error) {
	value, err := l.await(ctx, l.LoadProject, id)
	if err != nil {
		return nil, err
	}
	return AsProject(value)
}

func (l *Loaders) await(ctx context.Context, load func(model.ID) (Pending, error), id model.ID) (interface{}, error) {
	pending, err := load(id)
	if err != nil {
		return nil, err
	}
	return pending.Await(ctx)
}

// Tasks loads the tasks identified by ids in one window. The i-th result is either the task or the
// error for ids[i]; a failed id never fails its siblings.
func (l *Loaders) Tasks(ctx context.Context, ids model.IDs) ([]*model.Task, []error) {
	var (
		tasks = make([]*model.Task, len(ids))
		errs  = make([]error, len(ids))
		keys  = make([]dataloader.Key, 0, len(ids))
		slots = make([]int, 0, len(ids))
	)

	for i, id := range ids {
		if id.IsZero() {
			errs[i] = store.NewError("missing id", store.KindInvalid)
			continue
		}
		keys = append(keys, id)
		slots = append(slots, i)
	}

	queued, err := l.tasks.LoadMany(keys...)
	if err != nil {
		for _, i := range slots {
			errs[i] = err
		}
		return tasks, errs
	}

	l.Dispatch(ctx)

	for j, task := range queued {
		i := slots[j]
		value, err := task.Await(ctx)
		if err == nil {
			tasks[i], err = AsTask(value)
		}
		errs[i] = err
	}

	return tasks, errs
}

// AsTask converts the value of a Pending task lookup.
func AsTask(value interface{}) (*model.Task, error) {
	task, ok := value.(*model.Task)
	if !ok {
		return nil, fmt.Errorf("task loader produced %T", value)
	}
	return task, nil
}

// AsUser converts the value of a Pending user lookup.
func AsUser(value interface{}) (*model.User, error) {
	user, ok := value.(*model.User)
	if !ok {
		return nil, fmt.Errorf("user loader produced %T", value)
	}
	return user, nil
}

// AsProject converts the value of a Pending project lookup.
func AsProject(value interface{}) (*model.Project, error) {
	project, ok := value.(*model.Project)
	if !ok {
		return nil, fmt.Errorf("project loader produced %T", value)
	}
	return project, nil
}
