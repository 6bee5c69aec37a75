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
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// Sort orders the live rows ascending.
func Sort[T constraints.Ordered](a *DynamicArray[T]) {
	slices.Sort(a.buf[:a.length])
	a.version++
}

// SortFunc orders the live rows by cmp, which returns a negative number
// when x < y, a positive number when x > y and zero otherwise.
func SortFunc[T any](a *DynamicArray[T], cmp func(x, y T) int) {
	slices.SortFunc(a.buf[:a.length], cmp)
	a.version++
}

func IsSorted[T constraints.Ordered](a *DynamicArray[T]) bool {
	return slices.IsSorted(a.buf[:a.length])
}

// BinarySearch looks for v in a sorted array. It returns the row where v is
// or would be inserted, and whether it was found.
func BinarySearch[T constraints.Ordered](a *DynamicArray[T], v T) (int, bool) {
	return slices.BinarySearch(a.buf[:a.length], v)
}
