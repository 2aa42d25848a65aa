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

package dataloader

import (
	"context"
	"errors"
	"sync"
)

// Key is an unique identifier of a value loaded by a DataLoader. It must be comparable.
type Key interface{}

// taskQueue collects the tasks of one dispatch window.
type taskQueue struct {
	// DataLoader that creates and executes the tasks in the queue.
	loader *DataLoader

	// tasks stored in a linked list
	tasks TaskList

	// index maps a key to its task so that a key is loaded at most once per window.
	index map[Key]*Task
}

func newTaskQueue(loader *DataLoader) *taskQueue {
	return &taskQueue{
		loader: loader,
		index:  map[Key]*Task{},
	}
}

func (queue *taskQueue) Enqueue(key Key) *Task {
	if task, exists := queue.index[key]; exists {
		return task
	}

	task := newTask(queue, key)
	queue.index[key] = task
	queue.tasks.push(task)

	return task
}

func (queue *taskQueue) Empty() bool {
	return queue.tasks.Empty()
}

// A DataLoader loads data from a data backend with unique keys such as the id of a REST resource.
// Loads issued before the queue is dispatched form one window: their distinct keys are sent to the
// BatchLoader together and duplicate keys share one task.
type DataLoader struct {
	config *Config

	// Lock that guard accesses to queue
	queueMutex sync.Mutex

	// Queue containing the pending tasks for data loading
	queue *taskQueue
}

var (
	errMissingBatchLoader = errors.New("batch loader is required to construct a DataLoader")
	errMissingKey         = errors.New("must specify key to identify data to be loaded")
)

// New creates a DataLoader instance from given config.
func New(config Config) (*DataLoader, error) {
	// Check config.
	if config.BatchLoader == nil {
		return nil, errMissingBatchLoader
	}

	loader := &DataLoader{
		config: &config,
	}
	loader.queue = newTaskQueue(loader)

	return loader, nil
}

// BatchLoader returns loader.config.BatchLoader.
func (loader *DataLoader) BatchLoader() BatchLoader {
	return loader.config.BatchLoader
}

// Load enqueues a load of the data identified by the key and returns the task that will hold it.
// Call Await on the task to obtain the value.
func (loader *DataLoader) Load(key Key) (*Task, error) {
	if key == nil {
		return nil, errMissingKey
	}

	queueMutex := &loader.queueMutex
	queueMutex.Lock()
	task := loader.queue.Enqueue(key)
	queueMutex.Unlock()

	return task, nil
}

// LoadMany enqueues loads for multiple keys in the same window. The returned tasks are in the same
// order as the keys; a key given twice yields the same task twice.
func (loader *DataLoader) LoadMany(keys ...Key) ([]*Task, error) {
	for _, key := range keys {
		if key == nil {
			return nil, errMissingKey
		}
	}

	tasks := make([]*Task, len(keys))

	loader.queueMutex.Lock()
	for i, key := range keys {
		tasks[i] = loader.queue.Enqueue(key)
	}
	loader.queueMutex.Unlock()

	return tasks, nil
}

// Dispatch dispatches jobs to load data specified by tasks in current queue as of the time this
// function is called. The jobs run on the calling goroutine.
func (loader *DataLoader) Dispatch(ctx context.Context) {
	loader.queueMutex.Lock()
	queue := loader.queue
	loader.queueMutex.Unlock()

	loader.dispatchQueue(ctx, queue)
}

// dispatchQueue tries to dispatch jobs to perform batch load for given queue. Note that the work
// can be performed by the one who successfully "detaches" the queue from the loader.
func (loader *DataLoader) dispatchQueue(ctx context.Context, queue *taskQueue) {
	// Acquire the lock to detach the queue from the loader.
	queueMutex := &loader.queueMutex
	queueMutex.Lock()

	// Return quickly if someone has dispatched the given queue or the queue is empty.
	if queue != loader.queue || queue.Empty() {
		queueMutex.Unlock()
		return
	}

	// Replace with an empty queue.
	loader.queue = newTaskQueue(loader)
	queueMutex.Unlock()

	maxBatchSize := loader.config.MaxBatchSize
	if maxBatchSize == 0 {
		loader.runBatch(ctx, queue.tasks)
		return
	}

	var (
		tasks = queue.tasks
		// tasks will be split into some small sub-lists each of which has at most maxBatchSize tasks.
		// firstTask marks the first task of the sub-list in current batch.
		firstTask = tasks.first
		task      = firstTask
		counter   = maxBatchSize
	)

	for task != nil {
		nextTask := task.next

		counter--
		if counter == 0 {
			loader.runBatch(ctx, TaskList{
				first: firstTask,
				last:  task,
			})

			// Reset counter.
			counter = maxBatchSize
			// Next batch starts from nextTask.
			firstTask = nextTask
		}

		task = nextTask
	}

	// Dispatch the last batch.
	if firstTask != nil {
		loader.runBatch(ctx, TaskList{
			first: firstTask,
		})
	}
}

func (loader *DataLoader) runBatch(ctx context.Context, tasks TaskList) {
	job := &batchLoadJob{
		ctx:         ctx,
		tasks:       tasks,
		batchLoader: loader.config.BatchLoader,
	}
	job.run()
}
