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

package dataloader_test

import (
	"context"
	"errors"

	"github.com/botobag/taskgraph/dataloader"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Manager", func() {
	var idLoaderFactory = dataloader.FactoryFunc(func() (*dataloader.DataLoader, error) {
		return dataloader.New(dataloader.Config{
			BatchLoader: &recordingBatchLoader{},
		})
	})

	It("memoizes DataLoader instances", func() {
		info := &dataloader.RegisterInfo{
			Key:     "Test",
			Factory: idLoaderFactory,
		}

		manager := &dataloader.Manager{}

		loader, err := manager.GetOrCreate(info)
		Expect(err).ShouldNot(HaveOccurred())

		// Register the 2nd time. It should return the loader instance that was created before.
		loader2, err := manager.GetOrCreate(info)
		Expect(err).ShouldNot(HaveOccurred())

		Expect(loader2).Should(BeIdenticalTo(loader))
	})

	It("rejects invalid DataLoader factory", func() {
		manager := &dataloader.Manager{}
		_, err := manager.GetOrCreate(&dataloader.RegisterInfo{
			Key:     "NilFactory",
			Factory: nil,
		})
		Expect(err).Should(MatchError(`DataLoader factory for "NilFactory" is not provided`))

		_, err = manager.GetOrCreate(&dataloader.RegisterInfo{
			Key: "FactoryReturnsNil",
			Factory: dataloader.FactoryFunc(func() (*dataloader.DataLoader, error) {
				return nil, nil
			}),
		})
		Expect(err).Should(MatchError(ContainSubstring(`DataLoader factory for "FactoryReturnsNil" returns a nil instance`)))

		factoryErr := errors.New("factory error")
		_, err = manager.GetOrCreate(&dataloader.RegisterInfo{
			Key: "ErrorFactory",
			Factory: dataloader.FactoryFunc(func() (*dataloader.DataLoader, error) {
				return nil, factoryErr
			}),
		})
		Expect(err).Should(MatchError(factoryErr))
	})

	It("can dispatch all managed DataLoader instances", func() {
		manager := &dataloader.Manager{}

		aLoader, err := manager.GetOrCreate(&dataloader.RegisterInfo{
			Key:     "LoaderA",
			Factory: idLoaderFactory,
		})
		Expect(err).ShouldNot(HaveOccurred())

		bLoader, err := manager.GetOrCreate(&dataloader.RegisterInfo{
			Key:     "LoaderB",
			Factory: idLoaderFactory,
		})
		Expect(err).ShouldNot(HaveOccurred())

		a, err := aLoader.Load("A")
		Expect(err).ShouldNot(HaveOccurred())

		b, err := bLoader.Load("B")
		Expect(err).ShouldNot(HaveOccurred())

		manager.DispatchAll(context.Background())
		Expect(a.Completed()).Should(BeTrue())
		Expect(b.Completed()).Should(BeTrue())
		Expect(a.Await(context.Background())).Should(Equal("A"))
		Expect(b.Await(context.Background())).Should(Equal("B"))
	})
})
