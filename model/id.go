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

package model

import (
	"io"
	"strconv"

	"github.com/json-iterator/go"
)

// ID identifies a row in the store. The store hands out numeric ids while GraphQL clients send
// them back as strings, so an ID keeps its canonical string form and converts at the JSON boundary:
// integer ids are written as JSON numbers and every other id as a JSON string. The zero ID is
// written as null.
type ID string

// IsZero returns true if id is empty.
func (id ID) IsZero() bool {
	return len(id) == 0
}

// String implements fmt.Stringer.
func (id ID) String() string {
	return string(id)
}

// integer returns the integer value of id and true if id is the canonical decimal form of an
// integer.
func (id ID) integer() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil || strconv.FormatInt(n, 10) != string(id) {
		return 0, false
	}
	return n, true
}

// MarshalJSON implements json.Marshaler.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	if n, ok := id.integer(); ok {
		return strconv.AppendInt(nil, n, 10), nil
	}
	return jsoniter.Marshal(string(id))
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	iter := jsoniter.ConfigCompatibleWithStandardLibrary.BorrowIterator(data)
	defer jsoniter.ConfigCompatibleWithStandardLibrary.ReturnIterator(iter)

	switch iter.WhatIsNext() {
	case jsoniter.NilValue:
		iter.ReadNil()
		*id = ""
	case jsoniter.StringValue:
		*id = ID(iter.ReadString())
	case jsoniter.NumberValue:
		*id = ID(iter.ReadNumber().String())
	default:
		iter.Skip()
		iter.ReportError("ID.UnmarshalJSON", "id must be a number or a string")
	}

	// A number at the end of the buffer leaves io.EOF behind.
	if iter.Error != nil && iter.Error != io.EOF {
		return iter.Error
	}
	return nil
}

// IDs is a set of ids stored as a list. The order of insertion is kept so that the store sees a
// stable list, but membership is all that matters.
type IDs []ID

// Contains returns true if ids includes id.
func (ids IDs) Contains(id ID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// With returns a copy of ids that includes id. The id is appended only if it is not yet a member.
func (ids IDs) With(id ID) IDs {
	result := make(IDs, 0, len(ids)+1)
	result = append(result, ids...)
	if !ids.Contains(id) {
		result = append(result, id)
	}
	return result
}

// Without returns a copy of ids with every given id removed. The result is never nil so it
// encodes as an empty JSON array.
func (ids IDs) Without(remove ...ID) IDs {
	result := make(IDs, 0, len(ids))
	for _, x := range ids {
		if !IDs(remove).Contains(x) {
			result = append(result, x)
		}
	}
	return result
}

// Clone returns a non-nil copy of ids.
func (ids IDs) Clone() IDs {
	result := make(IDs, len(ids))
	copy(result, ids)
	return result
}
