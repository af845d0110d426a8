// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package fory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPoolAcquireReleaseReusesInstances(t *testing.T) {
	p := NewPool(1, 2, func() *Fory { return NewFory(true) })

	f1 := p.Acquire()
	require.NotNil(t, f1)
	p.Release(f1)

	f2 := p.Acquire()
	require.Same(t, f1, f2)
	p.Release(f2)
}

func TestPoolGrowsUpToMaxSize(t *testing.T) {
	p := NewPool(0, 2, func() *Fory { return NewFory(true) })

	a := p.Acquire()
	b := p.Acquire()
	require.NotSame(t, a, b)
	p.Release(a)
	p.Release(b)
}

// Concurrent acquire/release pairs on a pool smaller than the concurrency
// level must never hand the same *Fory to two goroutines at once, and must
// never block forever once every borrower releases.
func TestPoolSafeUnderConcurrentUse(t *testing.T) {
	const poolSize = 3
	const workers = 16
	const roundsPerWorker = 20

	p := NewPool(1, poolSize, func() *Fory { return NewFory(true) })

	var mu sync.Mutex
	inUse := map[*Fory]bool{}

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for r := 0; r < roundsPerWorker; r++ {
				f := p.Acquire()

				mu.Lock()
				require.False(t, inUse[f], "pool handed out an instance already in use")
				inUse[f] = true
				mu.Unlock()

				data, err := f.Marshal(int32(r))
				require.NoError(t, err)
				var out int32
				require.NoError(t, f.Unmarshal(data, &out))
				require.Equal(t, int32(r), out)

				mu.Lock()
				inUse[f] = false
				mu.Unlock()

				p.Release(f)
			}
		}()
	}
	wg.Wait()
}
