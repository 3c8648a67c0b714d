/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package hll_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wlauer/datasketches-go/hll"
)

func newFilledSketch(t *testing.T, lgK int, start, end int64) *hll.Sketch {
	t.Helper()
	sk, err := hll.NewSketch(lgK)
	require.NoError(t, err)
	for i := start; i < end; i++ {
		require.NoError(t, sk.UpdateInt64(i))
	}
	return sk
}

func TestUnionOfOverlappingSketches(t *testing.T) {
	a := newFilledSketch(t, 10, 0, 5000)
	b := newFilledSketch(t, 10, 3000, 8000)

	u, err := hll.NewUnion(10)
	require.NoError(t, err)
	require.NoError(t, u.Update(a))
	require.NoError(t, u.Update(b))

	res := u.Result()
	assert.InDelta(t, 8000, res.Estimate(), 0.4*8000)
	assert.True(t, res.IsOutOfOrder())
}

func TestUnionIsCommutative(t *testing.T) {
	a := newFilledSketch(t, 10, 0, 3000)
	b := newFilledSketch(t, 10, 1500, 4500)

	u1, err := hll.NewUnion(10)
	require.NoError(t, err)
	require.NoError(t, u1.Update(a))
	require.NoError(t, u1.Update(b))

	u2, err := hll.NewUnion(10)
	require.NoError(t, err)
	require.NoError(t, u2.Update(b))
	require.NoError(t, u2.Update(a))

	assert.Equal(t, u1.Result().Estimate(), u2.Result().Estimate())
}

func TestUnionIdempotentOnSameSketchTwice(t *testing.T) {
	a := newFilledSketch(t, 10, 0, 3000)

	u, err := hll.NewUnion(10)
	require.NoError(t, err)
	require.NoError(t, u.Update(a))
	require.NoError(t, u.Update(a))

	assert.InDelta(t, 3000, u.Result().Estimate(), 0.4*3000)
}

func TestUnionOfEmptySketchIsNoOp(t *testing.T) {
	a := newFilledSketch(t, 10, 0, 100)
	empty, err := hll.NewSketch(10)
	require.NoError(t, err)

	u, err := hll.NewUnion(10)
	require.NoError(t, err)
	require.NoError(t, u.Update(a))
	require.NoError(t, u.Update(empty))

	assert.Equal(t, a.Estimate(), u.Result().Estimate())
}

func TestUnionLgKMismatchErrors(t *testing.T) {
	a := newFilledSketch(t, 8, 0, 10)
	u, err := hll.NewUnion(10)
	require.NoError(t, err)
	assert.Error(t, u.Update(a))
}

func TestUnionResultIsIndependentSnapshot(t *testing.T) {
	a := newFilledSketch(t, 10, 0, 100)
	u, err := hll.NewUnion(10)
	require.NoError(t, err)
	require.NoError(t, u.Update(a))

	snap := u.Result()
	b := newFilledSketch(t, 10, 100, 200)
	require.NoError(t, u.Update(b))

	assert.NotEqual(t, snap.Estimate(), u.Result().Estimate())
}
