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

// Package mpool accounts for the memory held by container backing stores.
// Go owns the actual allocation; an MPool only tracks how many bytes each
// owner currently holds so leaks show up in tests and metrics.
package mpool

import (
	"fmt"
	"unsafe"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"

	"github.com/matrixorigin/dynarray/pkg/common/moerr"
)

type MPoolStats struct {
	NumAlloc      atomic.Int64 // number of allocations
	NumFree       atomic.Int64 // number of frees
	NumCurrBytes  atomic.Int64 // current number of bytes
	HighWaterMark atomic.Int64 // high water mark
}

func (s *MPoolStats) Report(tab string) string {
	if s.HighWaterMark.Load() == 0 {
		return ""
	}
	ret := ""
	ret += fmt.Sprintf("%s allocations : %d\n", tab, s.NumAlloc.Load())
	ret += fmt.Sprintf("%s frees : %d\n", tab, s.NumFree.Load())
	ret += fmt.Sprintf("%s current bytes : %d\n", tab, s.NumCurrBytes.Load())
	ret += fmt.Sprintf("%s high water mark : %d\n", tab, s.HighWaterMark.Load())
	return ret
}

func (s *MPoolStats) recordAlloc(sz int64) {
	s.NumAlloc.Inc()
	curr := s.NumCurrBytes.Add(sz)
	for {
		hw := s.HighWaterMark.Load()
		if curr <= hw || s.HighWaterMark.CAS(hw, curr) {
			return
		}
	}
}

func (s *MPoolStats) recordFree(sz int64) int64 {
	s.NumFree.Inc()
	return s.NumCurrBytes.Sub(sz)
}

// MPool is safe to share between goroutines; the containers using it are not.
type MPool struct {
	name  string
	stats MPoolStats
}

func NewMPool(name string) *MPool {
	return &MPool{name: name}
}

// MustNewZero returns a fresh pool, mostly for tests that assert CurrNB
// drops back to zero.
func MustNewZero() *MPool {
	return NewMPool("zero")
}

func (mp *MPool) Name() string {
	return mp.name
}

func (mp *MPool) CurrNB() int64 {
	return mp.stats.NumCurrBytes.Load()
}

func (mp *MPool) Stats() *MPoolStats {
	return &mp.stats
}

func (mp *MPool) Report() string {
	ret := fmt.Sprintf("    mpool stats: %s\n", mp.name)
	ret += mp.stats.Report("        ")
	return ret
}

// Alloc records sz bytes taken from the pool.
func (mp *MPool) Alloc(sz int) {
	if sz <= 0 {
		return
	}
	mp.stats.recordAlloc(int64(sz))
}

// Free records sz bytes given back. Freeing more than the pool holds is a
// bookkeeping bug and panics.
func (mp *MPool) Free(sz int) {
	if sz <= 0 {
		return
	}
	if curr := mp.stats.recordFree(int64(sz)); curr < 0 {
		panic(moerr.NewInternalErrorNoCtx("mpool %s: free %d bytes leaves %d", mp.name, sz, curr))
	}
}

// Collectors exposes the pool counters to prometheus.
func (mp *MPool) Collectors() []prometheus.Collector {
	labels := prometheus.Labels{"pool": mp.name}
	return []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   "dynarray",
			Subsystem:   "mpool",
			Name:        "inuse_bytes",
			Help:        "Bytes currently held by backing stores.",
			ConstLabels: labels,
		}, func() float64 { return float64(mp.stats.NumCurrBytes.Load()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   "dynarray",
			Subsystem:   "mpool",
			Name:        "high_water_bytes",
			Help:        "Largest number of bytes held at once.",
			ConstLabels: labels,
		}, func() float64 { return float64(mp.stats.HighWaterMark.Load()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   "dynarray",
			Subsystem:   "mpool",
			Name:        "alloc_total",
			Help:        "Backing store allocations.",
			ConstLabels: labels,
		}, func() float64 { return float64(mp.stats.NumAlloc.Load()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   "dynarray",
			Subsystem:   "mpool",
			Name:        "free_total",
			Help:        "Backing store releases.",
			ConstLabels: labels,
		}, func() float64 { return float64(mp.stats.NumFree.Load()) }),
	}
}

// Register adds all collectors of the pool or, on error, none of them.
func (mp *MPool) Register(reg prometheus.Registerer) error {
	cs := mp.Collectors()
	for i, c := range cs {
		if err := reg.Register(c); err != nil {
			for _, done := range cs[:i] {
				reg.Unregister(done)
			}
			return err
		}
	}
	return nil
}

func Sizeof[T any]() int {
	var v T
	return int(unsafe.Sizeof(v))
}

// MakeSlice returns a zeroed slice with len == cap == n. A nil pool skips
// accounting. n == 0 returns nil so empty containers hold no storage.
func MakeSlice[T any](mp *MPool, n int) []T {
	if n <= 0 {
		return nil
	}
	if mp != nil {
		mp.Alloc(n * Sizeof[T]())
	}
	return make([]T, n)
}

// FreeSlice gives back the accounting for a slice obtained from MakeSlice.
func FreeSlice[T any](mp *MPool, s []T) {
	if mp == nil || cap(s) == 0 {
		return
	}
	mp.Free(cap(s) * Sizeof[T]())
}
