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

package theta

import (
	"github.com/wlauer/datasketches-go/dserr"
	"github.com/wlauer/datasketches-go/internal"
)

// JaccardResult holds the estimate and a two-sided confidence bound on the
// Jaccard index (|A∩B| / |A∪B|) of two sketches (C11).
type JaccardResult struct {
	LowerBound float64
	Estimate   float64
	UpperBound float64
}

// JaccardSimilarity computes the Jaccard index of a and b: it builds their
// union, then intersects a, b, and that union together so the result is
// guaranteed a subset of the union, and bounds the ratio of the two
// sketches' retained counts as a binomial proportion. seed must match the
// seed both a and b were built with.
func JaccardSimilarity(a, b Sketch, seed uint64, numStdDev uint) (JaccardResult, error) {
	const op = "theta.JaccardSimilarity"

	if a == b {
		return JaccardResult{1, 1, 1}, nil
	}
	if a.IsEmpty() && b.IsEmpty() {
		return JaccardResult{1, 1, 1}, nil
	}
	if a.IsEmpty() || b.IsEmpty() {
		return JaccardResult{0, 0, 0}, nil
	}
	if a.SeedHash() != b.SeedHash() {
		return JaccardResult{}, dserr.InvalidArg(op, "seed hash mismatch")
	}

	unionAB, err := unionOfSketches(a, b, seed)
	if err != nil {
		return JaccardResult{}, err
	}

	if setsAreIdentical(a, b, unionAB) {
		return JaccardResult{1, 1, 1}, nil
	}

	commonWithUnion := NewIntersection(WithIntersectionSeed(seed))
	if err := commonWithUnion.Update(a); err != nil {
		return JaccardResult{}, err
	}
	if err := commonWithUnion.Update(b); err != nil {
		return JaccardResult{}, err
	}
	// folds in unionAB's theta too, so the running result never exceeds it
	if err := commonWithUnion.Update(unionAB); err != nil {
		return JaccardResult{}, err
	}

	interABU, err := commonWithUnion.Result(false)
	if err != nil {
		return JaccardResult{}, err
	}

	lower, estimate, upper, err := subsetRatioBounds(unionAB, interABU, numStdDev)
	if err != nil {
		return JaccardResult{}, err
	}
	return JaccardResult{LowerBound: lower, Estimate: estimate, UpperBound: upper}, nil
}

// unionOfSketches builds a fresh union sized to comfortably hold both
// inputs' retained entries without triggering a rebuild mid-merge.
func unionOfSketches(a, b Sketch, seed uint64) (*CompactSketch, error) {
	lgK := internal.LgSizeFromCount(int(a.NumRetained()+b.NumRetained()), rebuildThreshold)
	if lgK < MinLgK {
		lgK = MinLgK
	}
	if lgK > MaxLgK {
		lgK = MaxLgK
	}
	u, err := NewUnion(WithUnionLgK(lgK), WithUnionSeed(seed))
	if err != nil {
		return nil, err
	}
	if err := u.Update(a); err != nil {
		return nil, err
	}
	if err := u.Update(b); err != nil {
		return nil, err
	}
	return u.Result(false)
}

// setsAreIdentical reports whether a and b retain exactly the same entries,
// detected without a full entry-by-entry comparison: their union must then
// have the same retained count and theta as each of them individually.
func setsAreIdentical(a, b, unionAB Sketch) bool {
	return unionAB.NumRetained() == a.NumRetained() &&
		unionAB.NumRetained() == b.NumRetained() &&
		unionAB.Theta64() == a.Theta64() &&
		unionAB.Theta64() == b.Theta64()
}
