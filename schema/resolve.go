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
	"context"
	"fmt"

	"github.com/botobag/taskgraph/internal/logging"
	"github.com/botobag/taskgraph/loader"
	"github.com/botobag/taskgraph/model"
	"github.com/botobag/taskgraph/store"

	"github.com/graphql-go/graphql"
	"go.uber.org/zap"
)

// Thunk is the deferred result understood by the executor. Fields returning a thunk are completed
// after their siblings have queued their own lookups, so every lookup of a level goes out in one
// batch. The executor only recognizes the unnamed function type.
type thunk = func() (interface{}, error)

func contextLoaders(ctx context.Context) (*loader.Loaders, error) {
	l, ok := loader.FromContext(ctx)
	if !ok {
		return nil, store.NewError("request context carries no loaders", store.Op("schema"))
	}
	return l, nil
}

func (b *builder) log(ctx context.Context) *zap.Logger {
	if logger, ok := logging.FromContextOK(ctx); ok {
		return logger
	}
	return b.config.Logger
}

// deferLoad queues a lookup of id with load and returns a thunk that awaits it.
func deferLoad(
	ctx context.Context,
	load func(*loader.Loaders, model.ID) (loader.Pending, error),
	id model.ID) thunk {

	l, err := contextLoaders(ctx)
	if err != nil {
		return failed(err)
	}
	pending, err := load(l, id)
	if err != nil {
		return failed(err)
	}
	return func() (interface{}, error) {
		return pending.Await(ctx)
	}
}

func failed(err error) thunk {
	return func() (interface{}, error) {
		return nil, err
	}
}

func loadTask(l *loader.Loaders, id model.ID) (loader.Pending, error) {
	return l.LoadTask(id)
}

func loadUser(l *loader.Loaders, id model.ID) (loader.Pending, error) {
	return l.LoadUser(id)
}

func loadProject(l *loader.Loaders, id model.ID) (loader.Pending, error) {
	return l.LoadProject(id)
}

// resolveReference resolves a single optional reference. A zero id resolves to null.
func resolveReference(
	load func(*loader.Loaders, model.ID) (loader.Pending, error),
	idOf func(source interface{}) (model.ID, error)) graphql.FieldResolveFn {

	return func(p graphql.ResolveParams) (interface{}, error) {
		id, err := idOf(p.Source)
		if err != nil {
			return nil, err
		}
		if id.IsZero() {
			return nil, nil
		}
		return deferLoad(p.Context, load, id), nil
	}
}

// resolveReferences resolves a list of references into one thunk per item. An item that fails to
// load becomes null with an error at its index while the rest of the list resolves normally.
func resolveReferences(
	load func(*loader.Loaders, model.ID) (loader.Pending, error),
	idsOf func(source interface{}) (model.IDs, error)) graphql.FieldResolveFn {

	return func(p graphql.ResolveParams) (interface{}, error) {
		ids, err := idsOf(p.Source)
		if err != nil {
			return nil, err
		}
		items := make([]interface{}, len(ids))
		for i, id := range ids {
			items[i] = deferLoad(p.Context, load, id)
		}
		return items, nil
	}
}

func sourceTask(source interface{}) (*model.Task, error) {
	task, ok := source.(*model.Task)
	if !ok || task == nil {
		return nil, fmt.Errorf("expected *model.Task as source, got %T", source)
	}
	return task, nil
}

func sourceUser(source interface{}) (*model.User, error) {
	user, ok := source.(*model.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("expected *model.User as source, got %T", source)
	}
	return user, nil
}

func sourceProject(source interface{}) (*model.Project, error) {
	project, ok := source.(*model.Project)
	if !ok || project == nil {
		return nil, fmt.Errorf("expected *model.Project as source, got %T", source)
	}
	return project, nil
}

// idArg reads an ID argument. Absent arguments yield the zero ID.
func idArg(args map[string]interface{}, name string) model.ID {
	switch value := args[name].(type) {
	case nil:
		return ""
	case string:
		return model.ID(value)
	default:
		return model.ID(fmt.Sprint(value))
	}
}

// stringArg returns the String argument called name or nil if it was not given.
func stringArg(args map[string]interface{}, name string) *string {
	value, ok := args[name].(string)
	if !ok {
		return nil
	}
	return &value
}

func statusArg(args map[string]interface{}, name string) *model.Status {
	value, ok := args[name].(model.Status)
	if !ok {
		return nil
	}
	return &value
}
