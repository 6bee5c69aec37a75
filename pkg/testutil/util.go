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

package testutil

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/lni/goutils/leaktest"
)

// AfterTest checks that the test did not leave goroutines behind. Use as
// defer testutil.AfterTest(t)().
func AfterTest(t testing.TB) func() {
	return leaktest.AfterTest(t)
}

// NewInt64s returns 0..n-1, or n random values.
func NewInt64s(n int, random bool) []int64 {
	vs := make([]int64, n)
	for i := range vs {
		v := i
		if random {
			v = rand.Int()
		}
		vs[i] = int64(v)
	}
	return vs
}

func NewInts(n int, random bool) []int {
	vs := make([]int, n)
	for i := range vs {
		v := i
		if random {
			v = rand.Int()
		}
		vs[i] = v
	}
	return vs
}

// NewStrings returns the decimal renderings of NewInt64s.
func NewStrings(n int, random bool) []string {
	vs := make([]string, n)
	for i, v := range NewInt64s(n, random) {
		vs[i] = strconv.FormatInt(v, 10)
	}
	return vs
}
