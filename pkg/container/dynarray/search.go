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
	"math"
	"reflect"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matrixorigin/dynarray/pkg/common/moerr"
)

var cmpOpts = []cmp.Option{
	cmp.Exporter(func(reflect.Type) bool { return true }),
	cmpopts.EquateNaNs(),
}

// newComparer returns the equality used by searches. It is always called as
// eq(stored, query).
//
// An absent query (nil pointer, interface, map, slice, func or chan) only
// matches an absent stored value, whatever comparer is in charge. For an
// interface element type only the nil interface is absent: a typed nil such
// as any((*int)(nil)) is a present value.
//
// NaN equals NaN, so any value that was added can be found again.
func newComparer[T any](custom func(a, b T) bool) func(stored, query T) bool {
	eq := custom
	if eq == nil {
		eq = defaultEqual[T]()
	}
	typ := reflect.TypeFor[T]()
	if !nillable(typ) {
		return eq
	}
	absent := isNil[T]
	if typ.Kind() == reflect.Interface {
		absent = func(v T) bool { return any(v) == nil }
	}
	return func(stored, query T) bool {
		qNil, sNil := absent(query), absent(stored)
		if qNil || sNil {
			return qNil && sNil
		}
		return eq(stored, query)
	}
}

type equaler[T any] interface {
	Equal(T) bool
}

func defaultEqual[T any]() func(stored, query T) bool {
	typ := reflect.TypeFor[T]()
	if typ.Implements(reflect.TypeFor[equaler[T]]()) {
		return func(stored, query T) bool {
			return any(stored).(equaler[T]).Equal(query)
		}
	}
	if typ.Kind() != reflect.Interface && strictlyComparable(typ) {
		switch {
		case isFloatKind(typ.Kind()):
			return func(stored, query T) bool {
				return sameFloat(stored, query)
			}
		case !hasFloat(typ):
			return func(stored, query T) bool {
				return any(stored) == any(query)
			}
		}
	}
	// interface element types decide per value
	return func(stored, query T) bool {
		if e, ok := any(stored).(equaler[T]); ok {
			return e.Equal(query)
		}
		return cmp.Equal(stored, query, cmpOpts...)
	}
}

// strictlyComparable reports whether == on typ can never panic.
func strictlyComparable(typ reflect.Type) bool {
	if !typ.Comparable() {
		return false
	}
	switch typ.Kind() {
	case reflect.Interface:
		return false
	case reflect.Array:
		return strictlyComparable(typ.Elem())
	case reflect.Struct:
		for i := 0; i < typ.NumField(); i++ {
			if !strictlyComparable(typ.Field(i).Type) {
				return false
			}
		}
	}
	return true
}

func isFloatKind(k reflect.Kind) bool {
	switch k {
	case reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

// hasFloat reports whether a comparable typ holds a float or complex
// somewhere, where == would never match NaN.
func hasFloat(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Array:
		return hasFloat(typ.Elem())
	case reflect.Struct:
		for i := 0; i < typ.NumField(); i++ {
			if hasFloat(typ.Field(i).Type) {
				return true
			}
		}
		return false
	}
	return isFloatKind(typ.Kind())
}

// sameFloat is == on float and complex values except that NaN equals NaN.
func sameFloat(x, y any) bool {
	vx, vy := reflect.ValueOf(x), reflect.ValueOf(y)
	switch vx.Kind() {
	case reflect.Float32, reflect.Float64:
		return sameFloat64(vx.Float(), vy.Float())
	case reflect.Complex64, reflect.Complex128:
		cx, cy := vx.Complex(), vy.Complex()
		return sameFloat64(real(cx), real(cy)) && sameFloat64(imag(cx), imag(cy))
	}
	return false
}

func sameFloat64(x, y float64) bool {
	return x == y || (math.IsNaN(x) && math.IsNaN(y))
}

func nillable(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice,
		reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	}
	return false
}

func isNil[T any](v T) bool {
	rv := reflect.ValueOf(any(v))
	if !rv.IsValid() {
		return true
	}
	if nillable(rv.Type()) {
		return rv.IsNil()
	}
	return false
}

// IndexOf returns the first row equal to v, or -1.
func (a *DynamicArray[T]) IndexOf(v T) int {
	for i := 0; i < a.length; i++ {
		if a.eq(a.buf[i], v) {
			return i
		}
	}
	return -1
}

// LastIndexOf returns the last row equal to v, or -1.
func (a *DynamicArray[T]) LastIndexOf(v T) int {
	for i := a.length - 1; i >= 0; i-- {
		if a.eq(a.buf[i], v) {
			return i
		}
	}
	return -1
}

func (a *DynamicArray[T]) Contains(v T) bool {
	return a.IndexOf(v) >= 0
}

// CopyTo copies the live rows into dst starting at offset.
func (a *DynamicArray[T]) CopyTo(dst []T, offset int) error {
	if offset < 0 {
		return moerr.NewInvalidArgNoCtx("offset", offset)
	}
	if len(dst)-offset < a.length {
		return moerr.NewInvalidArgNoCtx("dst", len(dst))
	}
	copy(dst[offset:], a.buf[:a.length])
	return nil
}

// Equals reports whether o holds the same rows in the same order, using
// the receiver's comparer.
func (a *DynamicArray[T]) Equals(o *DynamicArray[T]) bool {
	if o == nil {
		return false
	}
	if a == o {
		return true
	}
	if a.length != o.length {
		return false
	}
	for i := 0; i < a.length; i++ {
		if !a.eq(a.buf[i], o.buf[i]) {
			return false
		}
	}
	return true
}
