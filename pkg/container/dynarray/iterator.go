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
	"iter"

	"github.com/matrixorigin/dynarray/pkg/common/moerr"
)

const modifiedMsg = "collection was modified during iteration"

func errModified() error {
	return moerr.NewInvalidStateNoCtx(modifiedMsg)
}

// Iterator walks the live rows front to back. It stops with an error as
// soon as the array is structurally changed behind its back.
//
//	it := a.Iter()
//	for it.Next() {
//		use(it.Value())
//	}
//	if err := it.Err(); err != nil {
//		...
//	}
type Iterator[T any] struct {
	arr     *DynamicArray[T]
	pos     int
	version uint64
	cur     T
	err     error
}

func (a *DynamicArray[T]) Iter() *Iterator[T] {
	it := &Iterator[T]{arr: a}
	it.Reset()
	return it
}

// Reset rewinds to before the first row and takes a fresh version snapshot.
func (it *Iterator[T]) Reset() {
	var zero T
	it.pos = -1
	it.version = it.arr.version
	it.cur = zero
	it.err = nil
}

func (it *Iterator[T]) Next() bool {
	if it.err != nil {
		return false
	}
	if it.version != it.arr.version {
		it.err = errModified()
		return false
	}
	if it.pos+1 >= it.arr.length {
		it.pos = it.arr.length
		var zero T
		it.cur = zero
		return false
	}
	it.pos++
	it.cur = it.arr.buf[it.pos]
	return true
}

// Value returns the row read by the last successful Next.
func (it *Iterator[T]) Value() T { return it.cur }

// Index returns the position of the row read by the last successful Next.
func (it *Iterator[T]) Index() int { return it.pos }

func (it *Iterator[T]) Err() error { return it.err }

// Foreach calls op for every live row in order. op may not change the
// array structurally. A panic in op is recovered and returned as an error.
func (a *DynamicArray[T]) Foreach(op ItOp[T]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = convertPanic(r)
		}
	}()
	version := a.version
	for i := 0; i < a.length; i++ {
		if err = op(a.buf[i], i); err != nil {
			return
		}
		if version != a.version {
			return errModified()
		}
	}
	return
}

// All yields (row, value) pairs. A structural change during the walk
// panics with an ErrInvalidState *moerr.Error.
func (a *DynamicArray[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		version := a.version
		for i := 0; i < a.length; i++ {
			if !yield(i, a.buf[i]) {
				return
			}
			if version != a.version {
				panic(errModified())
			}
		}
	}
}

// Values is All without the row numbers.
func (a *DynamicArray[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range a.All() {
			if !yield(v) {
				return
			}
		}
	}
}
