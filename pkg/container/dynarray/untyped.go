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
	"reflect"

	"github.com/matrixorigin/dynarray/pkg/common/moerr"
)

var _ UntypedList = (*Untyped[int])(nil)

// Untyped exposes a DynamicArray through the type-erased UntypedList
// protocol. Every call narrows its arguments to T and delegates to the typed
// array, so both views always agree.
type Untyped[T any] struct {
	arr *DynamicArray[T]
}

func AsUntyped[T any](a *DynamicArray[T]) *Untyped[T] {
	return &Untyped[T]{arr: a}
}

// Typed returns the array behind the adapter.
func (u *Untyped[T]) Typed() *DynamicArray[T] { return u.arr }

func narrow[T any](arg string, val any) (T, error) {
	var zero T
	if val == nil {
		if nillable(reflect.TypeFor[T]()) {
			return zero, nil
		}
		return zero, moerr.NewInvalidArgNoCtx(arg, "nil")
	}
	v, ok := val.(T)
	if !ok {
		return zero, moerr.NewTypeMismatchNoCtx(arg, reflect.TypeFor[T](), reflect.TypeOf(val))
	}
	return v, nil
}

func (u *Untyped[T]) Count() int { return u.arr.Len() }

func (u *Untyped[T]) Get(index int) (any, error) {
	v, err := u.arr.Get(index)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (u *Untyped[T]) Set(index int, val any) error {
	v, err := narrow[T]("val", val)
	if err != nil {
		return err
	}
	return u.arr.Set(index, v)
}

func (u *Untyped[T]) Add(val any) (int, error) {
	v, err := narrow[T]("val", val)
	if err != nil {
		return -1, err
	}
	u.arr.Add(v)
	return u.arr.Len() - 1, nil
}

func (u *Untyped[T]) Insert(index int, val any) error {
	v, err := narrow[T]("val", val)
	if err != nil {
		return err
	}
	return u.arr.Insert(index, v)
}

// Remove drops the first matching row. A missing value is not an error.
func (u *Untyped[T]) Remove(val any) error {
	v, err := narrow[T]("val", val)
	if err != nil {
		return err
	}
	u.arr.Remove(v)
	return nil
}

func (u *Untyped[T]) RemoveAt(index int) error { return u.arr.RemoveAt(index) }

func (u *Untyped[T]) Contains(val any) (bool, error) {
	v, err := narrow[T]("val", val)
	if err != nil {
		return false, err
	}
	return u.arr.Contains(v), nil
}

func (u *Untyped[T]) IndexOf(val any) (int, error) {
	v, err := narrow[T]("val", val)
	if err != nil {
		return -1, err
	}
	return u.arr.IndexOf(v), nil
}

// CopyTo copies the live rows into dst, which must be a slice or a pointer
// to an array whose element type T is assignable to.
func (u *Untyped[T]) CopyTo(dst any, offset int) error {
	if dst == nil {
		return moerr.NewNullArgumentNoCtx("dst")
	}
	if s, ok := dst.([]T); ok {
		return u.arr.CopyTo(s, offset)
	}

	rv := reflect.ValueOf(dst)
	switch {
	case rv.Kind() == reflect.Slice:
	case rv.Kind() == reflect.Pointer && rv.Type().Elem().Kind() == reflect.Array:
		if rv.IsNil() {
			return moerr.NewNullArgumentNoCtx("dst")
		}
		rv = rv.Elem()
	default:
		return moerr.NewInvalidArgNoCtx("dst rank", rv.Type())
	}

	elem := reflect.TypeFor[T]()
	if !elem.AssignableTo(rv.Type().Elem()) {
		return moerr.NewTypeMismatchNoCtx("dst", rv.Type().Elem(), elem)
	}
	if offset < 0 {
		return moerr.NewInvalidArgNoCtx("offset", offset)
	}
	n := u.arr.Len()
	if rv.Len()-offset < n {
		return moerr.NewInvalidArgNoCtx("dst", rv.Len())
	}
	for i := 0; i < n; i++ {
		rv.Index(offset + i).Set(reflect.ValueOf(&u.arr.buf[i]).Elem())
	}
	return nil
}

func (u *Untyped[T]) Clear() { u.arr.Clear() }

func (u *Untyped[T]) IsReadOnly() bool     { return false }
func (u *Untyped[T]) IsFixedSize() bool    { return false }
func (u *Untyped[T]) IsSynchronized() bool { return false }
