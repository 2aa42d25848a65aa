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
	"errors"
	"fmt"

	"github.com/botobag/taskgraph/store"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Sequence runs the steps of a multi-step write in order. Each step commits on its own. The first
// failing step stops the sequence; if anything had committed by then, the failure is returned as a
// store.KindPartialFailure naming the committed steps and the inconsistency is logged.
type Sequence struct {
	op        store.Op
	logger    *zap.Logger
	committed store.Committed
}

func (e *Engine) sequence(ctx context.Context, op store.Op) *Sequence {
	return &Sequence{
		op:     op,
		logger: e.log(ctx).With(zap.String("op", string(op))),
	}
}

// Committed returns the names of the steps that have completed.
func (s *Sequence) Committed() []string {
	return s.committed
}

// Step runs fn as the step called name.
func (s *Sequence) Step(name string, fn func() error) error {
	if err := fn(); err != nil {
		return s.fail(name, err)
	}
	s.committed = append(s.committed, name)
	s.logger.Debug("step committed", zap.String("step", name))
	return nil
}

// Parallel runs every fn concurrently as parts of the step called name and waits for all of them.
// A part that fails doesn't stop its siblings. The step fails if any part failed; parts that
// succeeded stay committed.
func (s *Sequence) Parallel(name string, fns ...func() error) error {
	var (
		g    errgroup.Group
		errs = make([]error, len(fns))
	)
	for i, fn := range fns {
		i, fn := i, fn
		g.Go(func() error {
			errs[i] = fn()
			return nil
		})
	}
	g.Wait()

	var failed []error
	for _, err := range errs {
		if err != nil {
			failed = append(failed, err)
		}
	}

	if len(failed) == 0 {
		s.committed = append(s.committed, name)
		s.logger.Debug("step committed", zap.String("step", name), zap.Int("parts", len(fns)))
		return nil
	}

	succeeded := len(fns) - len(failed)
	if succeeded > 0 {
		s.committed = append(s.committed, fmt.Sprintf("%s (%d of %d parts)", name, succeeded, len(fns)))
	}

	var err error
	if len(failed) == 1 {
		err = failed[0]
	} else {
		err = errors.Join(failed...)
	}
	return s.fail(name, err)
}

func (s *Sequence) fail(step string, err error) error {
	if len(s.committed) == 0 {
		s.logger.Debug("step failed", zap.String("step", step), zap.Error(err))
		return store.NewError(fmt.Sprintf("%s failed", step), s.op, err)
	}

	committed := make(store.Committed, len(s.committed))
	copy(committed, s.committed)

	s.logger.Error("write left references inconsistent",
		zap.String("step", step),
		zap.Strings("committed", committed),
		zap.Error(err))

	return store.NewError(
		fmt.Sprintf("%s failed after %d committed step(s)", step, len(committed)),
		s.op,
		store.KindPartialFailure,
		committed,
		err)
}
