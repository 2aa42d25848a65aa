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

// Package schema defines the GraphQL schema of the task graph. Reads resolve references through
// the request loaders found in the resolver context; mutations go through the relation.Engine.
package schema

import (
	"errors"
	"fmt"

	"github.com/botobag/taskgraph/model"
	"github.com/botobag/taskgraph/relation"
	"github.com/botobag/taskgraph/store"

	"github.com/graphql-go/graphql"
	"go.uber.org/zap"
)

// Config specifies the dependencies and options of the schema.
type Config struct {
	// (Required) Engine performs the mutations.
	Engine *relation.Engine

	// (Required) Store serves the root lists and the derived collections of a user.
	Store *store.Client

	// (Optional) Statuses are the members of the CompletionStatus enum. Default is
	// model.DefaultStatuses.
	Statuses []model.Status

	// (Optional) DefaultStatus is given to tasks and projects created without a status. It must be
	// one of Statuses. Default is ASSIGNED.
	DefaultStatus model.Status

	// (Optional) Logger is used when the request context doesn't carry a logger.
	Logger *zap.Logger
}

var (
	errMissingEngine = errors.New("schema: must specify a relation engine")
	errMissingStore  = errors.New("schema: must specify a store client")
)

// builder holds the types while the schema is being built. Object fields are thunks so the types
// can refer to each other.
type builder struct {
	config Config

	status  *graphql.Enum
	task    *graphql.Object
	user    *graphql.Object
	project *graphql.Object
}

// New builds the schema described by config.
func New(config Config) (graphql.Schema, error) {
	if config.Engine == nil {
		return graphql.Schema{}, errMissingEngine
	}
	if config.Store == nil {
		return graphql.Schema{}, errMissingStore
	}

	if len(config.Statuses) == 0 {
		config.Statuses = model.DefaultStatuses
	}
	if len(config.DefaultStatus) == 0 {
		config.DefaultStatus = model.StatusAssigned
	}

	found := false
	for _, status := range config.Statuses {
		if status == config.DefaultStatus {
			found = true
			break
		}
	}
	if !found {
		return graphql.Schema{}, fmt.Errorf("schema: default status %q is not one of %v", config.DefaultStatus, config.Statuses)
	}

	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	b := &builder{config: config}
	b.status = b.newStatusEnum()
	b.task = b.newTaskObject()
	b.user = b.newUserObject()
	b.project = b.newProjectObject()

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    b.newQueryObject(),
		Mutation: b.newMutationObject(),
	})
}

func (b *builder) newStatusEnum() *graphql.Enum {
	values := graphql.EnumValueConfigMap{}
	for _, status := range b.config.Statuses {
		values[string(status)] = &graphql.EnumValueConfig{
			Value: status,
		}
	}
	return graphql.NewEnum(graphql.EnumConfig{
		Name:        "CompletionStatus",
		Description: "Lifecycle state of a task or a project.",
		Values:      values,
	})
}
