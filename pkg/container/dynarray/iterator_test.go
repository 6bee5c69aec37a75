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
	"testing"

	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/matrixorigin/dynarray/pkg/common/moerr"
)

func TestIterator(t *testing.T) {
	a := withInts(5)
	it := a.Iter()
	var got []int
	for it.Next() {
		assert.Equal(t, len(got), it.Index())
		got = append(got, it.Value())
	}
	require.NoError(t, it.Err())
	assert.Equal(t, a.ToSlice(), got)
	assert.False(t, it.Next())

	// restartable
	it.Reset()
	require.True(t, it.Next())
	assert.Equal(t, 0, it.Value())

	empty := New[int]().Iter()
	assert.False(t, empty.Next())
	assert.NoError(t, empty.Err())
}

func TestIteratorFailFast(t *testing.T) {
	a := withInts(5)
	it := a.Iter()
	require.True(t, it.Next())

	// overwriting a row is not a structural change
	require.NoError(t, a.Set(3, 30))
	require.True(t, it.Next())

	a.Add(5)
	assert.False(t, it.Next())
	assert.True(t, moerr.IsMoErrCode(it.Err(), moerr.ErrInvalidState))
	assert.False(t, it.Next())

	it.Reset()
	n := 0
	for it.Next() {
		n++
	}
	require.NoError(t, it.Err())
	assert.Equal(t, 6, n)

	for _, mutate := range []func(){
		func() { _ = a.Insert(0, 1) },
		func() { _ = a.RemoveAt(0) },
		func() { a.Remove(30) },
		func() { a.AppendMany(1, 2) },
		func() { a.Clear() },
		func() { a.Close() },
	} {
		a.AppendMany(0, 1, 2, 30)
		it = a.Iter()
		require.True(t, it.Next())
		mutate()
		assert.False(t, it.Next())
		assert.Error(t, it.Err())
	}
}

func TestForeach(t *testing.T) {
	a := withInts(5)
	sum := 0
	require.NoError(t, a.Foreach(func(v int, row int) error {
		assert.Equal(t, row, v)
		sum += v
		return nil
	}))
	assert.Equal(t, 10, sum)

	stop := moerr.NewInternalErrorNoCtx("stop")
	rows := 0
	err := a.Foreach(func(v int, _ int) error {
		rows++
		if v == 2 {
			return stop
		}
		return nil
	})
	assert.Equal(t, stop, err)
	assert.Equal(t, 3, rows)

	err = a.Foreach(func(v int, _ int) error {
		a.Add(v)
		return nil
	})
	assert.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidState))
	assert.Equal(t, 6, a.Len())
}

func TestForeachPanic(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	stubs := gostub.Stub(&getLogger, func() *zap.Logger { return zap.New(core) })
	defer stubs.Reset()

	a := withInts(3)
	err := a.Foreach(func(v int, _ int) error {
		if v == 1 {
			panic("bad row")
		}
		return nil
	})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInternal))
	me := err.(*moerr.Error)
	assert.Equal(t, "internal error: panic bad row", me.Error())
	assert.Contains(t, me.Detail(), "goroutine")
	assert.Equal(t, 1, logs.Len())

	state := moerr.NewInvalidStateNoCtx("stopped")
	err = a.Foreach(func(int, int) error { panic(state) })
	assert.Equal(t, state, err)
	assert.Equal(t, 3, a.Len())
}

func TestAll(t *testing.T) {
	a := withInts(4)
	var rows, vals []int
	for i, v := range a.All() {
		rows = append(rows, i)
		vals = append(vals, v)
	}
	assert.Equal(t, []int{0, 1, 2, 3}, rows)
	assert.Equal(t, a.ToSlice(), vals)

	n := 0
	for v := range a.Values() {
		if v == 1 {
			break
		}
		n++
	}
	assert.Equal(t, 1, n)

	defer func() {
		err, ok := recover().(*moerr.Error)
		require.True(t, ok)
		assert.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidState))
	}()
	for _, v := range a.All() {
		_ = a.Insert(0, v)
	}
	t.Fatal("expected panic")
}
