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

package binomialproportionsbounds_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wlauer/datasketches-go/internal/binomialproportionsbounds"
)

func TestLowerBoundRejectsKGreaterThanN(t *testing.T) {
	_, err := binomialproportionsbounds.ApproximateLowerBoundOnP(10, 11, 2.0)
	assert.Error(t, err)
}

func TestLowerBoundZeroTrialsIsZero(t *testing.T) {
	got, err := binomialproportionsbounds.ApproximateLowerBoundOnP(0, 0, 2.0)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestUpperBoundZeroTrialsIsOne(t *testing.T) {
	got, err := binomialproportionsbounds.ApproximateUpperBoundOnP(0, 0, 2.0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestLowerBoundZeroSuccessesIsZero(t *testing.T) {
	got, err := binomialproportionsbounds.ApproximateLowerBoundOnP(100, 0, 2.0)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestUpperBoundAllSuccessesIsOne(t *testing.T) {
	got, err := binomialproportionsbounds.ApproximateUpperBoundOnP(100, 100, 2.0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestBoundsBracketObservedProportion(t *testing.T) {
	lb, err := binomialproportionsbounds.ApproximateLowerBoundOnP(100, 50, 2.0)
	require.NoError(t, err)
	ub, err := binomialproportionsbounds.ApproximateUpperBoundOnP(100, 50, 2.0)
	require.NoError(t, err)
	assert.Less(t, lb, 0.5)
	assert.Greater(t, ub, 0.5)
}

func TestBoundsAtSingleSuccessAndAllButOneUseExactFormulas(t *testing.T) {
	lb, err := binomialproportionsbounds.ApproximateLowerBoundOnP(50, 1, 2.0)
	require.NoError(t, err)
	assert.Greater(t, lb, 0.0)
	assert.Less(t, lb, 1.0/50.0)

	ub, err := binomialproportionsbounds.ApproximateUpperBoundOnP(50, 49, 2.0)
	require.NoError(t, err)
	assert.Less(t, ub, 1.0)
	assert.Greater(t, ub, 49.0/50.0)
}

func TestBoundsAtAllSuccessesAndZeroSuccessesUseExactFormulas(t *testing.T) {
	lb, err := binomialproportionsbounds.ApproximateLowerBoundOnP(50, 50, 2.0)
	require.NoError(t, err)
	assert.Less(t, lb, 1.0)
	assert.Greater(t, lb, 0.9)

	ub, err := binomialproportionsbounds.ApproximateUpperBoundOnP(50, 0, 2.0)
	require.NoError(t, err)
	assert.Greater(t, ub, 0.0)
	assert.Less(t, ub, 0.1)
}

func TestWiderIntervalAtMoreStdDevs(t *testing.T) {
	lb1, err := binomialproportionsbounds.ApproximateLowerBoundOnP(100, 50, 1.0)
	require.NoError(t, err)
	lb3, err := binomialproportionsbounds.ApproximateLowerBoundOnP(100, 50, 3.0)
	require.NoError(t, err)
	assert.Less(t, lb3, lb1)
}
