// Copyright 2022 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dynarray

import (
	"github.com/matrixorigin/dynarray/pkg/common/mpool"
)

const defaultCapacity = 4

type Options[T any] struct {
	// Capacity preallocates backing storage. Non-positive means none.
	Capacity int
	// Allocator accounts for the bytes of backing storage. Optional.
	Allocator *mpool.MPool
	// Comparer replaces the default element equality. Absent (nil) values
	// are still matched only against absent values.
	Comparer func(a, b T) bool
}

// ItOp is called for every row walked by Foreach. A non-nil error stops
// the walk and is returned to the caller.
type ItOp[T any] func(v T, row int) error

// Enumerable is a finite, ordered source of elements.
type Enumerable[T any] interface {
	Foreach(op ItOp[T]) error
}

// Collection is an Enumerable whose size is known up front, so a copy can
// be allocated exactly once.
type Collection[T any] interface {
	Enumerable[T]
	Len() int
	CopyTo(dst []T, offset int) error
}

// UntypedList is the type-erased list protocol. Values cross it as any and
// are narrowed to the element type at the boundary.
type UntypedList interface {
	Count() int
	Get(index int) (any, error)
	Set(index int, val any) error
	// Add returns the index the value was stored at.
	Add(val any) (int, error)
	Insert(index int, val any) error
	Remove(val any) error
	RemoveAt(index int) error
	Contains(val any) (bool, error)
	IndexOf(val any) (int, error)
	// CopyTo accepts a slice or a pointer to an array.
	CopyTo(dst any, offset int) error
	Clear()
	IsReadOnly() bool
	IsFixedSize() bool
	IsSynchronized() bool
}
