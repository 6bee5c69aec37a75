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
	"fmt"
	"iter"
	"math"

	"github.com/RoaringBitmap/roaring"
	"go.uber.org/zap"

	"github.com/matrixorigin/dynarray/pkg/common/moerr"
	"github.com/matrixorigin/dynarray/pkg/common/mpool"
	"github.com/matrixorigin/dynarray/pkg/logutil"
)

var getLogger = logutil.GetGlobalLogger

// DynamicArray is a growable, index addressable sequence.
//
// buf always has len(buf) == cap(buf) == Capacity(). Rows [0, length) are
// live, rows [length, Capacity()) hold the zero value of T. An empty array
// keeps buf nil and allocates nothing until the first growth.
//
// A DynamicArray is not safe for concurrent use.
type DynamicArray[T any] struct {
	buf    []T
	length int
	// version counts structural changes, iterators use it to fail fast.
	version uint64
	alloc   *mpool.MPool
	eq      func(a, b T) bool
}

func New[T any](opts ...Options[T]) *DynamicArray[T] {
	a := &DynamicArray[T]{}
	var capacity int
	var comparer func(a, b T) bool
	if len(opts) > 0 {
		opt := opts[0]
		capacity = opt.Capacity
		a.alloc = opt.Allocator
		comparer = opt.Comparer
	}
	a.eq = newComparer(comparer)
	if capacity > 0 {
		a.buf = mpool.MakeSlice[T](a.alloc, capacity)
	}
	return a
}

// NewWithCapacity preallocates exactly capacity rows. A zero capacity
// behaves like New.
func NewWithCapacity[T any](capacity int, opts ...Options[T]) (*DynamicArray[T], error) {
	if capacity < 0 {
		return nil, moerr.NewInvalidArgNoCtx("capacity", capacity)
	}
	if limit := maxRows[T](); capacity > limit {
		return nil, moerr.NewOutOfRangeNoCtx("capacity", "%d rows exceeds the limit of %d", capacity, limit)
	}
	var opt Options[T]
	if len(opts) > 0 {
		opt = opts[0]
	}
	opt.Capacity = capacity
	return New[T](opt), nil
}

// NewFrom copies every element of src in order. A Collection source is
// copied in bulk into storage of exactly src.Len() rows; any other source is
// appended row by row following the normal growth rule.
//
// Errors and panics raised by src come back as *moerr.Error, and nothing
// stays charged to the allocator.
func NewFrom[T any](src Enumerable[T], opts ...Options[T]) (arr *DynamicArray[T], err error) {
	if src == nil {
		return nil, moerr.NewNullArgumentNoCtx("src")
	}
	var opt Options[T]
	if len(opts) > 0 {
		opt = opts[0]
	}
	opt.Capacity = 0
	a := New[T](opt)
	defer func() {
		if r := recover(); r != nil {
			err = convertPanic(r)
		}
		if err != nil {
			a.Close()
			arr = nil
		}
	}()

	if coll, ok := src.(Collection[T]); ok {
		n := coll.Len()
		if n <= 0 {
			return a, nil
		}
		a.buf = mpool.MakeSlice[T](a.alloc, n)
		if err = coll.CopyTo(a.buf, 0); err != nil {
			return nil, moerr.ConvertGoError(moerr.Context(), err)
		}
		a.length = n
		return a, nil
	}

	if err = src.Foreach(func(v T, _ int) error {
		a.Add(v)
		return nil
	}); err != nil {
		return nil, moerr.ConvertGoError(moerr.Context(), err)
	}
	return a, nil
}

// convertPanic turns a panic raised by caller supplied code into an error
// and logs it together with the stack.
func convertPanic(r any) *moerr.Error {
	e := moerr.ConvertPanicError(moerr.Context(), r)
	getLogger().Error("dynarray callback panicked", zap.String("error", e.Display()))
	return e
}

// NewFromSeq drains seq, which must be finite.
func NewFromSeq[T any](seq iter.Seq[T], opts ...Options[T]) (*DynamicArray[T], error) {
	if seq == nil {
		return nil, moerr.NewNullArgumentNoCtx("seq")
	}
	var opt Options[T]
	if len(opts) > 0 {
		opt = opts[0]
	}
	opt.Capacity = 0
	a := New[T](opt)
	for v := range seq {
		a.Add(v)
	}
	return a, nil
}

// NewFromSlice copies s. A nil slice is an empty sequence.
func NewFromSlice[T any](s []T, opts ...Options[T]) *DynamicArray[T] {
	var opt Options[T]
	if len(opts) > 0 {
		opt = opts[0]
	}
	opt.Capacity = len(s)
	a := New[T](opt)
	a.length = copy(a.buf, s)
	return a
}

func (a *DynamicArray[T]) Len() int      { return a.length }
func (a *DynamicArray[T]) Capacity() int { return len(a.buf) }

// Allocated returns the bytes held by the backing storage.
func (a *DynamicArray[T]) Allocated() int { return len(a.buf) * mpool.Sizeof[T]() }

func (a *DynamicArray[T]) GetAllocator() *mpool.MPool { return a.alloc }

// maxRows is the largest capacity whose size in bytes still fits in an int.
func maxRows[T any]() int {
	sz := mpool.Sizeof[T]()
	if sz == 0 {
		return math.MaxInt
	}
	return math.MaxInt / sz
}

// SetCapacity reallocates the backing storage to exactly capacity rows.
// Shrinking is rejected, setting the current capacity is a no-op.
func (a *DynamicArray[T]) SetCapacity(capacity int) error {
	if capacity < len(a.buf) {
		return moerr.NewInvalidArgNoCtx("capacity", capacity)
	}
	if limit := maxRows[T](); capacity > limit {
		return moerr.NewOutOfRangeNoCtx("capacity", "%d rows exceeds the limit of %d", capacity, limit)
	}
	if capacity == len(a.buf) {
		return nil
	}
	a.realloc(capacity)
	return nil
}

// Grow makes room for n more rows, doubling the capacity as often as needed.
func (a *DynamicArray[T]) Grow(n int) error {
	if n < 0 {
		return moerr.NewInvalidArgNoCtx("n", n)
	}
	if limit := maxRows[T](); n > limit-a.length {
		return moerr.NewOutOfRangeNoCtx("capacity", "%d more rows on top of %d exceeds the limit of %d", n, a.length, limit)
	}
	a.ensure(n)
	return nil
}

func (a *DynamicArray[T]) ensure(extra int) {
	need := a.length + extra
	if need <= len(a.buf) {
		return
	}
	newCap := len(a.buf) * 2
	if newCap < defaultCapacity {
		newCap = defaultCapacity
	}
	limit := maxRows[T]()
	for newCap < need {
		if newCap > limit/2 {
			newCap = limit
			break
		}
		newCap *= 2
	}
	a.realloc(newCap)
}

func (a *DynamicArray[T]) realloc(capacity int) {
	buf := mpool.MakeSlice[T](a.alloc, capacity)
	copy(buf, a.buf[:a.length])
	mpool.FreeSlice(a.alloc, a.buf)
	getLogger().Debug("dynarray realloc",
		zap.Int("from", len(a.buf)),
		zap.Int("to", capacity),
		zap.Int("length", a.length))
	a.buf = buf
}

func (a *DynamicArray[T]) checkIndex(i int) error {
	if i < 0 || i >= a.length {
		return moerr.NewIndexOutOfRangeNoCtx(i, a.length)
	}
	return nil
}

func (a *DynamicArray[T]) Get(i int) (v T, err error) {
	if err = a.checkIndex(i); err != nil {
		return
	}
	return a.buf[i], nil
}

func (a *DynamicArray[T]) Set(i int, v T) error {
	if err := a.checkIndex(i); err != nil {
		return err
	}
	a.buf[i] = v
	return nil
}

func (a *DynamicArray[T]) Add(v T) {
	if a.length == len(a.buf) {
		a.ensure(1)
	}
	a.buf[a.length] = v
	a.length++
	a.version++
}

func (a *DynamicArray[T]) AppendMany(vs ...T) {
	if len(vs) == 0 {
		return
	}
	a.ensure(len(vs))
	a.length += copy(a.buf[a.length:], vs)
	a.version++
}

// Insert places v at row i, shifting [i, Len()) one row to the right.
// i == Len() appends.
func (a *DynamicArray[T]) Insert(i int, v T) error {
	if i < 0 || i > a.length {
		return moerr.NewIndexOutOfRangeNoCtx(i, a.length)
	}
	if a.length == len(a.buf) {
		a.ensure(1)
	}
	copy(a.buf[i+1:a.length+1], a.buf[i:a.length])
	a.buf[i] = v
	a.length++
	a.version++
	return nil
}

// RemoveAt drops row i, shifting (i, Len()) one row to the left. The
// vacated last row is zeroed.
func (a *DynamicArray[T]) RemoveAt(i int) error {
	if err := a.checkIndex(i); err != nil {
		return err
	}
	copy(a.buf[i:], a.buf[i+1:a.length])
	a.length--
	var zero T
	a.buf[a.length] = zero
	a.version++
	return nil
}

// Remove drops the first row equal to v and reports whether one was found.
func (a *DynamicArray[T]) Remove(v T) bool {
	idx := a.IndexOf(v)
	if idx < 0 {
		return false
	}
	_ = a.RemoveAt(idx)
	return true
}

// Clear zeroes the live rows and keeps the capacity.
func (a *DynamicArray[T]) Clear() {
	clear(a.buf[:a.length])
	a.length = 0
	a.version++
}

// Close drops the backing storage and gives its bytes back to the
// allocator. The array stays usable and starts over empty.
func (a *DynamicArray[T]) Close() {
	mpool.FreeSlice(a.alloc, a.buf)
	a.buf = nil
	a.length = 0
	a.version++
}

// RemoveAll drops every row matching match in one pass and returns how
// many rows were removed.
func (a *DynamicArray[T]) RemoveAll(match func(T) bool) (int, error) {
	if match == nil {
		return 0, moerr.NewNullArgumentNoCtx("match")
	}
	return a.compact(func(_ int, v T) bool { return match(v) }), nil
}

// DeleteBatch drops the rows whose indexes are set in rows. Every index is
// validated before anything moves.
func (a *DynamicArray[T]) DeleteBatch(rows *roaring.Bitmap) (int, error) {
	if rows == nil || rows.IsEmpty() {
		return 0, nil
	}
	if last := int(rows.Maximum()); last >= a.length {
		return 0, moerr.NewIndexOutOfRangeNoCtx(last, a.length)
	}
	return a.compact(func(row int, _ T) bool { return rows.Contains(uint32(row)) }), nil
}

func (a *DynamicArray[T]) compact(drop func(row int, v T) bool) int {
	w := 0
	for r := 0; r < a.length; r++ {
		if drop(r, a.buf[r]) {
			continue
		}
		if w != r {
			a.buf[w] = a.buf[r]
		}
		w++
	}
	removed := a.length - w
	if removed > 0 {
		clear(a.buf[w:a.length])
		a.length = w
		a.version++
	}
	return removed
}

// ToSlice returns a copy of the live rows.
func (a *DynamicArray[T]) ToSlice() []T {
	s := make([]T, a.length)
	copy(s, a.buf[:a.length])
	return s
}

// Clone copies the live rows into storage of exactly Len() rows that shares
// the allocator and comparer.
func (a *DynamicArray[T]) Clone() *DynamicArray[T] {
	cloned := &DynamicArray[T]{
		alloc: a.alloc,
		eq:    a.eq,
	}
	cloned.buf = mpool.MakeSlice[T](a.alloc, a.length)
	cloned.length = copy(cloned.buf, a.buf[:a.length])
	return cloned
}

func (a *DynamicArray[T]) Desc() string {
	return fmt.Sprintf("DynamicArray:Len=%d[Rows];Cap=%d[Rows];Allocated:%d[Bytes]",
		a.Len(),
		a.Capacity(),
		a.Allocated())
}

func (a *DynamicArray[T]) String() string {
	s := a.Desc()
	end := 100
	if a.length < end {
		end = a.length
	}
	if end == 0 {
		return s
	}
	data := ""
	for i := 0; i < end; i++ {
		data = fmt.Sprintf("%s %v", data, a.buf[i])
	}
	return fmt.Sprintf("%s%s", s, data)
}
