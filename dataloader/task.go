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
	"fmt"
	"sync"
)

type taskResultKind int

const (
	// Indicate that the task is waiting for processing.
	taskNotCompleted taskResultKind = iota

	// Indicate that an error has occurred during processing the task.
	taskResultErr

	// Indicate the task successfully loads the requested data.
	taskResultValue
)

// String implements fmt.Stringer to pretty-print taskResultKind.
func (kind taskResultKind) String() string {
	switch kind {
	case taskNotCompleted:
		return "an incompleted"
	case taskResultErr:
		return "an error"
	case taskResultValue:
		return "a value"
	}
	return "unknown"
}

// Task specifies key for BatchLoader to load data and provides storage to write result on
// completion. A task can be completed only once with either Complete or SetError. Every caller
// that loads the same key within one dispatch window shares the same Task.
type Task struct {
	key Key

	// Queue that contains this task
	parent *taskQueue

	// mutex guards kind and value.
	mutex sync.Mutex
	kind  taskResultKind
	// value is the loaded value for taskResultValue or the error for taskResultErr.
	value interface{}

	// done is closed on completion.
	done chan struct{}

	// The next task in the list
	next *Task
}

func newTask(parent *taskQueue, key Key) *Task {
	return &Task{
		key:    key,
		parent: parent,
		done:   make(chan struct{}),
	}
}

// Key returns t.key.
func (t *Task) Key() Key {
	return t.key
}

func (t *Task) complete(kind taskResultKind, value interface{}) error {
	t.mutex.Lock()
	if t.kind != taskNotCompleted {
		oldKind, oldValue := t.kind, t.value
		t.mutex.Unlock()
		return fmt.Errorf("task was already completed with %s (%+v) but want to accept %s (%+v)",
			oldKind, oldValue, kind, value)
	}
	t.kind = kind
	t.value = value
	t.mutex.Unlock()

	close(t.done)
	return nil
}

// Complete the task with the given value.
func (t *Task) Complete(value interface{}) error {
	return t.complete(taskResultValue, value)
}

// SetError completes the task with an error value.
func (t *Task) SetError(err error) error {
	return t.complete(taskResultErr, err)
}

// Completed returns true if the task has been completed (with either a value or an error.)
func (t *Task) Completed() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.kind != taskNotCompleted
}

// result returns the outcome of a completed task.
func (t *Task) result() (interface{}, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if t.kind == taskResultErr {
		return nil, t.value.(error)
	}
	return t.value, nil
}

// Await returns the value loaded by the task. If the task is still queued, the window it belongs
// to is dispatched by the calling goroutine first. Await blocks until the task completes or ctx is
// done.
func (t *Task) Await(ctx context.Context) (interface{}, error) {
	select {
	case <-t.done:
		return t.result()
	default:
	}

	if queue := t.parent; queue != nil {
		queue.loader.dispatchQueue(ctx, queue)
	}

	select {
	case <-t.done:
		return t.result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done returns a channel that is closed when the task completes.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// TaskList represents a list of Task's stored in a linked list from begin (included) to the end
// (excluded). It provides an iterator to access the TaskList in the list.
type TaskList struct {
	first *Task
	last  *Task
}

// Begin returns an iterator pointing to the first task in the list.
func (tasks *TaskList) Begin() TaskIterator {
	return TaskIterator{tasks.first}
}

// End returns an iterator refers to the pass-to-the-end task in the list.
func (tasks *TaskList) End() TaskIterator {
	if tasks.last != nil {
		return TaskIterator{tasks.last.next}
	}
	return TaskIterator{nil}
}

// Empty returns true if the TaskList doesn't contain any tasks.
func (tasks *TaskList) Empty() bool {
	return tasks.first == nil
}

// Len returns the number of tasks in the list.
func (tasks *TaskList) Len() int {
	n := 0
	for taskIter, taskEnd := tasks.Begin(), tasks.End(); taskIter != taskEnd; taskIter = taskIter.Next() {
		n++
	}
	return n
}

// Keys returns the keys of the tasks in the list in order.
func (tasks *TaskList) Keys() []Key {
	var keys []Key
	for taskIter, taskEnd := tasks.Begin(), tasks.End(); taskIter != taskEnd; taskIter = taskIter.Next() {
		keys = append(keys, taskIter.Task.Key())
	}
	return keys
}

// push appends a task at the end of the list. This is an internal method make a task list
// externally immutable.
func (tasks *TaskList) push(task *Task) {
	last := tasks.last
	if last == nil {
		tasks.first = task
	} else {
		last.next = task
	}
	tasks.last = task
}

// TaskIterator is used to access Task in a TaskList.
//
// Example:
//
//	for taskIter, taskEnd := tasks.Begin(), tasks.End(); taskIter != taskEnd; taskIter = taskIter.Next() {
//		task := taskIter.Task
//		...
//	}
type TaskIterator struct {
	// The referring task by this iterator
	*Task
}

// Next returns a TaskIterator that refers to the Task next to the one referred by iter in the list.
// Note that it is an undefined behavior if iter doesn't refer to one of the task in the corresponding
// TaskList.
func (iter TaskIterator) Next() TaskIterator {
	return TaskIterator{iter.Task.next}
}
