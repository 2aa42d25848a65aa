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

package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Op describes an operation, usually the request line sent to the store (such as
// "PATCH /tasks/3") or the name of a relationship operation (such as "relation.DeleteTask").
type Op string

// ErrKind defines the kind of error this is.
type ErrKind uint8

// Enumeration of ErrKind
const (
	KindOther          ErrKind = iota // Unclassified error. This value is not printed in the error message.
	KindNotFound                      // The store has no row for a referenced id.
	KindRejected                      // The store answered a request with a non-success status.
	KindTransport                     // The request never produced a usable response.
	KindPartialFailure                // A step of a multi-step write failed after earlier steps committed.
	KindEmptyResult                   // A lookup failed and the operation deliberately yields no result.
	KindInvalid                       // The request was rejected before reaching the store.
	KindCycle                         // A dependency edge would close a cycle.
)

func (k ErrKind) String() string {
	switch k {
	case KindOther:
		return "other error"
	case KindNotFound:
		return "not found"
	case KindRejected:
		return "rejected by store"
	case KindTransport:
		return "transport error"
	case KindPartialFailure:
		return "partial failure"
	case KindEmptyResult:
		return "empty result"
	case KindInvalid:
		return "invalid request"
	case KindCycle:
		return "dependency cycle"
	}
	return "unknown error kind"
}

// Code returns the machine-readable name of the kind reported to GraphQL clients.
func (k ErrKind) Code() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindRejected:
		return "STORE_REJECTED"
	case KindTransport:
		return "STORE_UNAVAILABLE"
	case KindPartialFailure:
		return "PARTIAL_FAILURE"
	case KindEmptyResult:
		return "EMPTY_RESULT"
	case KindInvalid:
		return "INVALID_REQUEST"
	case KindCycle:
		return "DEPENDENCY_CYCLE"
	}
	return "INTERNAL"
}

// Status is the HTTP status code answered by the store.
type Status int

// Committed lists the steps of a multi-step write that completed before it failed.
type Committed []string

// An Error describes a failed interaction with the store or a failed relationship operation built
// on top of it. Errors nest: a relationship operation wraps the store error that stopped it, and
// NewError propagates the status and kind of the inner error when they are not given.
type Error struct {
	// Message describes the error.
	Message string

	// Op is the operation being performed.
	Op Op

	// Kind is the class of error.
	Kind ErrKind

	// Status is the HTTP status answered by the store; 0 if the store never answered.
	Status Status

	// Committed names the steps that are durable despite the failure. Only set for
	// KindPartialFailure.
	Committed Committed

	// The underlying error that triggered this one
	Err error
}

var _ error = (*Error)(nil)

// NewError builds an error value from arguments in the manner of upspin.io/errors. Each argument
// sets the Error field of the matching type.
func NewError(message string, args ...interface{}) error {
	e := &Error{
		Message: message,
	}

	for _, arg := range args {
		switch arg := arg.(type) {
		case Op:
			e.Op = arg
		case ErrKind:
			e.Kind = arg
		case Status:
			e.Status = arg
		case Committed:
			e.Committed = arg
		case error:
			e.Err = arg
		default:
			return fmt.Errorf("unknown type %T, value %v in error call", arg, arg)
		}
	}

	// Pull status and kind from the underlying error.
	var prev *Error
	if e.Err != nil && errors.As(e.Err, &prev) {
		if e.Status == 0 {
			e.Status = prev.Status
		}
		if e.Kind == KindOther {
			e.Kind = prev.Kind
		}
	}

	return e
}

// statusMessage is the message of an Error caused by an unexpected status.
func statusMessage(status int) string {
	return "The command could not be completed. Status: " + strconv.Itoa(status)
}

// Error implements Go's error interface.
func (e *Error) Error() string {
	var b strings.Builder
	e.printError(&b, nil)
	return b.String()
}

func (e *Error) printError(b *strings.Builder, next *Error) {
	initialLen := b.Len()
	pad := func(str string) {
		if b.Len() == initialLen {
			return
		}
		b.WriteString(str)
	}

	if len(e.Op) > 0 && (next == nil || next.Op != e.Op) {
		b.WriteString(string(e.Op))
	}

	if len(e.Message) > 0 {
		pad(": ")
		b.WriteString(e.Message)
	}

	if e.Kind != KindOther && (next == nil || next.Kind != e.Kind) {
		pad(": ")
		b.WriteString(e.Kind.String())
	}

	if len(e.Committed) > 0 {
		pad(" ")
		b.WriteString("(committed: ")
		b.WriteString(strings.Join(e.Committed, ", "))
		b.WriteString(")")
	}

	if e.Err != nil {
		if prev, ok := e.Err.(*Error); ok {
			pad(":\n  ")
			prev.printError(b, e)
		} else {
			pad(": ")
			b.WriteString(e.Err.Error())
		}
	}
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Extensions returns the data attached to the error when it is reported in a GraphQL response.
func (e *Error) Extensions() map[string]interface{} {
	extensions := map[string]interface{}{
		"code": e.Kind.Code(),
	}
	if e.Status != 0 {
		extensions["status"] = int(e.Status)
	}
	if len(e.Op) > 0 {
		extensions["op"] = string(e.Op)
	}
	if len(e.Committed) > 0 {
		extensions["committed"] = []string(e.Committed)
	}
	return extensions
}

// KindOf returns the kind of the outermost *Error in err's chain that has a kind. It returns
// KindOther when there is none.
func KindOf(err error) ErrKind {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind != KindOther {
			return e.Kind
		}
		err = errors.Unwrap(err)
	}
	return KindOther
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind ErrKind) bool {
	return KindOf(err) == kind
}

// StatusOf returns the store status carried by err or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return int(e.Status)
	}
	return 0
}
