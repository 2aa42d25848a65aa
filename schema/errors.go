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
	"errors"

	"github.com/botobag/taskgraph/store"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
)

// maxErrorDepth bounds the walk through wrapped executor errors.
const maxErrorDepth = 8

// DecorateErrors fills the extensions of every error in result that was caused by a *store.Error.
// The executor loses the extensions of errors raised by deferred resolvers, so they are recovered
// from the chain of original errors.
func DecorateErrors(result *graphql.Result) {
	if result == nil {
		return
	}
	for i := range result.Errors {
		if result.Errors[i].Extensions != nil {
			continue
		}
		if extensions := extensionsOf(result.Errors[i].OriginalError()); extensions != nil {
			result.Errors[i].Extensions = extensions
		}
	}
}

func extensionsOf(err error) map[string]interface{} {
	for depth := 0; err != nil && depth < maxErrorDepth; depth++ {
		var storeErr *store.Error
		if errors.As(err, &storeErr) {
			return storeErr.Extensions()
		}

		switch e := err.(type) {
		case *gqlerrors.Error:
			err = e.OriginalError
		case interface{ OriginalError() error }:
			err = e.OriginalError()
		default:
			return nil
		}
	}
	return nil
}
