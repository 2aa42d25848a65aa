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
	"github.com/graphql-go/graphql"
)

func (b *builder) newQueryObject() *graphql.Object {
	idArgs := graphql.FieldConfigArgument{
		"id": &graphql.ArgumentConfig{
			Type: graphql.NewNonNull(graphql.ID),
		},
	}

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "RootQuery",
		Fields: graphql.Fields{
			"tasks": &graphql.Field{
				Type:        graphql.NewList(b.task),
				Description: "Retrieve all Tasks",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return b.config.Store.Tasks().List(p.Context)
				},
			},
			"task": &graphql.Field{
				Type:        b.task,
				Description: "Retrieve a specific Task",
				Args:        idArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deferLoad(p.Context, loadTask, idArg(p.Args, "id")), nil
				},
			},
			"users": &graphql.Field{
				Type:        graphql.NewList(b.user),
				Description: "Retrieve all Users",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return b.config.Store.Users().List(p.Context)
				},
			},
			"user": &graphql.Field{
				Type:        b.user,
				Description: "Retrieve a specific User",
				Args:        idArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deferLoad(p.Context, loadUser, idArg(p.Args, "id")), nil
				},
			},
			"projects": &graphql.Field{
				Type:        graphql.NewList(b.project),
				Description: "Retrieve all Projects",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return b.config.Store.Projects().List(p.Context)
				},
			},
			"project": &graphql.Field{
				Type:        b.project,
				Description: "Retrieve a specific Project",
				Args:        idArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deferLoad(p.Context, loadProject, idArg(p.Args, "id")), nil
				},
			},
		},
	})
}
