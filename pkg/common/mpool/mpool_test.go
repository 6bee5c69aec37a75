// Copyright 2021 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mpool

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/dynarray/pkg/common/moerr"
)

func BenchmarkMakeSlice(b *testing.B) {
	mp := NewMPool("bench")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s := MakeSlice[int64](mp, 64)
		FreeSlice(mp, s)
	}
}

func TestMPool(t *testing.T) {
	m := NewMPool("test-mpool-small")

	nb0 := m.CurrNB()
	require.Equal(t, int64(0), nb0)
	require.Equal(t, int64(0), m.Stats().NumAlloc.Load())
	require.Equal(t, "", m.Stats().Report(""))

	for i := 1; i <= 100; i++ {
		a := MakeSlice[int32](m, i*10)
		require.Equal(t, i*10, len(a))
		require.Equal(t, i*10, cap(a))
		require.Equal(t, int32(0), a[i*10-1], "allocation result not zeroed")
		require.Equal(t, int64(i*10*4), m.CurrNB())
		FreeSlice(m, a)
	}

	require.True(t, nb0 == m.CurrNB(), "leak")
	require.Equal(t, int64(1000*4), m.Stats().HighWaterMark.Load())
	require.Equal(t, int64(100), m.Stats().NumAlloc.Load())
	require.Equal(t, int64(100), m.Stats().NumFree.Load())
	require.Contains(t, m.Report(), "test-mpool-small")
}

func TestMakeSliceEmpty(t *testing.T) {
	m := MustNewZero()
	s := MakeSlice[string](m, 0)
	require.Nil(t, s)
	FreeSlice(m, s)
	require.Zero(t, m.CurrNB())
	require.Zero(t, m.Stats().NumAlloc.Load())

	// nil pool just allocates
	s = MakeSlice[string](nil, 3)
	require.Len(t, s, 3)
	FreeSlice(nil, s)
}

func TestFreeTooMuch(t *testing.T) {
	m := MustNewZero()
	defer func() {
		r := recover()
		require.NotNil(t, r)
		require.True(t, moerr.IsMoErrCode(r.(*moerr.Error), moerr.ErrInternal))
	}()
	m.Free(8)
}

func TestMPoolForRace(t *testing.T) {
	m := NewMPool("race")
	var wg sync.WaitGroup
	run := func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			v := MakeSlice[int64](m, 4)
			FreeSlice(m, v)
		}
	}
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go run()
	}
	wg.Wait()
	require.Zero(t, m.CurrNB())
	require.Equal(t, m.Stats().NumAlloc.Load(), m.Stats().NumFree.Load())
}

func TestCollectors(t *testing.T) {
	m := NewMPool("metrics")
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))

	s := MakeSlice[int64](m, 16)
	cs := m.Collectors()
	require.Len(t, cs, 4)
	require.Equal(t, float64(128), promtestutil.ToFloat64(cs[0]))
	require.Equal(t, float64(1), promtestutil.ToFloat64(cs[2]))

	FreeSlice(m, s)
	require.Equal(t, float64(0), promtestutil.ToFloat64(cs[0]))
	require.Equal(t, float64(128), promtestutil.ToFloat64(cs[1]))
	require.Equal(t, float64(1), promtestutil.ToFloat64(cs[3]))

	// registering the same pool twice collides
	require.Error(t, m.Register(reg))
}

func TestRegisterAllOrNothing(t *testing.T) {
	m := NewMPool("partial")
	reg := prometheus.NewRegistry()
	clash := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   "dynarray",
		Subsystem:   "mpool",
		Name:        "alloc_total",
		Help:        "Backing store allocations.",
		ConstLabels: prometheus.Labels{"pool": "partial"},
	})
	reg.MustRegister(clash)

	require.Error(t, m.Register(reg))
	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, mfs, 1)
	require.Equal(t, "dynarray_mpool_alloc_total", mfs[0].GetName())

	require.True(t, reg.Unregister(clash))
	require.NoError(t, m.Register(reg))
}
