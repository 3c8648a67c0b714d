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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wlauer/datasketches-go/hll"
)

func TestNewSketchStartsEmptyInListMode(t *testing.T) {
	sk, err := hll.NewSketch(8)
	require.NoError(t, err)
	assert.True(t, sk.IsEmpty())
	assert.Equal(t, float64(0), sk.Estimate())
}

func TestNewSketchRejectsInvalidLgK(t *testing.T) {
	_, err := hll.NewSketch(hll.MinLgK - 1)
	assert.Error(t, err)
	_, err = hll.NewSketch(hll.MaxLgK + 1)
	assert.Error(t, err)
}

func TestSketchPromotesListToSetToHLL(t *testing.T) {
	sk, err := hll.NewSketch(8) // k=256, set promotes at count > 64
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		require.NoError(t, sk.UpdateString(fmt.Sprintf("v-%d", i)))
	}
	assert.LessOrEqual(t, sk.Estimate(), float64(6))

	for i := 6; i < 40; i++ {
		require.NoError(t, sk.UpdateString(fmt.Sprintf("v-%d", i)))
	}
	assert.InDelta(t, 40, sk.Estimate(), 1)

	for i := 40; i < 5000; i++ {
		require.NoError(t, sk.UpdateString(fmt.Sprintf("v-%d", i)))
	}
	assert.InDelta(t, 5000, sk.Estimate(), 0.4*5000)
}

func TestSketchDeduplicatesRepeatedUpdates(t *testing.T) {
	sk, err := hll.NewSketch(8)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, sk.UpdateString("same"))
	}
	assert.Equal(t, float64(1), sk.Estimate())
}

func TestSketchBoundsBracketEstimateInHLLMode(t *testing.T) {
	sk, err := hll.NewSketch(10)
	require.NoError(t, err)
	for i := 0; i < 20000; i++ {
		require.NoError(t, sk.UpdateInt64(int64(i)))
	}
	est := sk.Estimate()
	lb, err := sk.LowerBound(2)
	require.NoError(t, err)
	ub, err := sk.UpperBound(2)
	require.NoError(t, err)
	assert.LessOrEqual(t, lb, est)
	assert.GreaterOrEqual(t, ub, est)
}

func TestSketchCloneIsIndependent(t *testing.T) {
	sk, err := hll.NewSketch(8)
	require.NoError(t, err)
	require.NoError(t, sk.UpdateString("a"))

	clone := sk.Clone()
	require.NoError(t, sk.UpdateString("b"))

	assert.NotEqual(t, sk.Estimate(), clone.Estimate())
}

func TestSketchTgtTypeAffectsEncodingNotEstimate(t *testing.T) {
	sk4, err := hll.NewSketch(10, hll.WithTgtType(hll.TgtHLL4))
	require.NoError(t, err)
	sk8, err := hll.NewSketch(10, hll.WithTgtType(hll.TgtHLL8))
	require.NoError(t, err)

	for i := 0; i < 5000; i++ {
		require.NoError(t, sk4.UpdateInt64(int64(i)))
		require.NoError(t, sk8.UpdateInt64(int64(i)))
	}
	assert.Equal(t, sk4.Estimate(), sk8.Estimate())
	assert.Equal(t, hll.TgtHLL4, sk4.TgtHllType())
	assert.Equal(t, hll.TgtHLL8, sk8.TgtHllType())
}
