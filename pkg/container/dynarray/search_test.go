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
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type testObject struct {
	id   int
	name string
}

func (o testObject) Equal(x testObject) bool { return o.id == x.id }

type blob struct {
	tags []string
	meta map[string]int
}

func TestEqualMethod(t *testing.T) {
	a := NewFromSlice([]testObject{{1, "a"}, {2, "b"}, {3, "c"}})
	assert.Equal(t, 1, a.IndexOf(testObject{2, "renamed"}))
	assert.True(t, a.Remove(testObject{id: 3}))
	assert.False(t, a.Contains(testObject{id: 3}))

	now := time.Now()
	ts := NewFromSlice([]time.Time{now.Add(-time.Hour), now})
	assert.Equal(t, 1, ts.IndexOf(now.UTC()))
}

func TestPointerElements(t *testing.T) {
	x, y := &testObject{1, "x"}, &testObject{1, "x"}
	a := NewFromSlice([]*testObject{x, nil})
	assert.Equal(t, 0, a.IndexOf(x))
	// pointers compare by identity
	assert.Equal(t, -1, a.IndexOf(y))
	assert.Equal(t, 1, a.IndexOf(nil))

	b := NewFromSlice([]*testObject{x})
	assert.False(t, b.Contains(nil))
}

func TestStructuralEqual(t *testing.T) {
	a := NewFromSlice([][]int{{1, 2}, nil, {}})
	assert.Equal(t, 0, a.IndexOf([]int{1, 2}))
	assert.Equal(t, 1, a.IndexOf(nil))
	assert.Equal(t, 2, a.IndexOf([]int{}))
	assert.Equal(t, -1, a.IndexOf([]int{2, 1}))

	b := NewFromSlice([]blob{{tags: []string{"x"}, meta: map[string]int{"k": 1}}})
	assert.True(t, b.Contains(blob{tags: []string{"x"}, meta: map[string]int{"k": 1}}))
	assert.False(t, b.Contains(blob{tags: []string{"x"}}))
}

func TestInterfaceElements(t *testing.T) {
	a := NewFromSlice([]any{1, "two", []int{3}, testObject{4, "four"}, nil})
	assert.Equal(t, 0, a.IndexOf(1))
	assert.Equal(t, -1, a.IndexOf(int64(1)))
	assert.Equal(t, 1, a.IndexOf("two"))
	assert.Equal(t, 2, a.IndexOf([]int{3}))
	assert.Equal(t, 3, a.IndexOf(testObject{4, "four"}))
	assert.Equal(t, 4, a.IndexOf(nil))
}

func TestCustomComparer(t *testing.T) {
	a := New(Options[string]{Comparer: strings.EqualFold})
	a.AppendMany("Alpha", "Beta")
	assert.Equal(t, 1, a.IndexOf("BETA"))
	assert.True(t, a.Remove("alpha"))
	assert.Equal(t, []string{"Beta"}, a.ToSlice())

	// absent values never reach the comparer
	calls := 0
	p := New(Options[*int]{Comparer: func(x, y *int) bool {
		calls++
		return *x == *y
	}})
	one, other := 1, 1
	p.AppendMany(nil, &one)
	assert.Equal(t, 0, p.IndexOf(nil))
	assert.Equal(t, 1, p.IndexOf(&other))
	assert.Equal(t, 1, calls)

	c := a.Clone()
	assert.True(t, c.Contains("BETA"))
}

func TestNaNEquality(t *testing.T) {
	nan := math.NaN()
	f := New[float64]()
	f.AppendMany(1, nan)
	assert.True(t, f.Contains(nan))
	assert.Equal(t, 1, f.IndexOf(nan))
	assert.Equal(t, 1, f.LastIndexOf(nan))
	assert.True(t, f.Remove(nan))
	assert.Equal(t, []float64{1}, f.ToSlice())

	f32 := NewFromSlice([]float32{float32(nan)})
	assert.True(t, f32.Contains(float32(nan)))

	c := NewFromSlice([]complex128{complex(nan, 1)})
	assert.True(t, c.Contains(complex(nan, 1)))
	assert.False(t, c.Contains(complex(nan, 2)))

	anys := New[any]()
	anys.AppendMany("x", nan)
	assert.Equal(t, 1, anys.IndexOf(nan))

	type point struct{ X, Y float64 }
	p := NewFromSlice([]point{{1, 2}, {nan, 3}})
	assert.Equal(t, 1, p.IndexOf(point{nan, 3}))
	assert.Equal(t, -1, p.IndexOf(point{nan, 4}))
	assert.True(t, p.Remove(point{nan, 3}))

	arr := NewFromSlice([][2]float32{{float32(nan), 0}})
	assert.True(t, arr.Contains([2]float32{float32(nan), 0}))
}

func TestTypedNilInInterface(t *testing.T) {
	var p *int
	a := NewFromSlice([]any{nil, p})
	assert.Equal(t, 0, a.IndexOf(nil))
	assert.Equal(t, 1, a.IndexOf(p))

	b := NewFromSlice([]any{nil})
	assert.False(t, b.Contains(p))
	c := NewFromSlice([]any{p})
	assert.False(t, c.Contains(nil))
}
