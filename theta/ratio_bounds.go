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
	"math"

	"github.com/wlauer/datasketches-go/dserr"
	"github.com/wlauer/datasketches-go/internal/binomialproportionsbounds"
)

// subsetRatioBounds bounds |subset|/|universe| where subset's retained
// entries are known to be a subset of universe's. universe was sampled at
// theta_u and subset at theta_s <= theta_u; treating subset's members as
// Bernoulli-sampled successes out of universe's population re-counted at
// subset's theta turns the ratio into a binomial proportion, which
// binomialproportionsbounds bounds directly. This is what backs
// JaccardSimilarity, with universe = union(A,B) and subset =
// intersect(A,B,union(A,B)).
func subsetRatioBounds(universe, subset Sketch, numStdDev uint) (lower, estimate, upper float64, err error) {
	const op = "theta.subsetRatioBounds"
	thetaUniverse := universe.Theta64()
	thetaSubset := subset.Theta64()
	if thetaSubset > thetaUniverse {
		return 0, 0, 0, dserr.InvalidArg(op, "subset theta must not exceed universe theta")
	}

	trials := uint64(universe.NumRetained())
	if thetaSubset != thetaUniverse {
		trials = countRetainedBelow(universe, thetaSubset)
	}
	successes := uint64(subset.NumRetained())

	if trials == 0 {
		// no comparable population survives at subset's theta: the ratio is
		// undefined, so report maximal uncertainty rather than a spurious 0.
		return 0, 0.5, 1, nil
	}

	inclusionProb := subset.Theta()
	if inclusionProb >= 1.0 {
		exact := float64(successes) / float64(trials)
		return exact, exact, exact, nil
	}

	width := float64(numStdDev) * bernoulliWidthFactor(inclusionProb)
	lower, err = binomialproportionsbounds.ApproximateLowerBoundOnP(trials, successes, width)
	if err != nil {
		return 0, 0, 0, err
	}
	upper, err = binomialproportionsbounds.ApproximateUpperBoundOnP(trials, successes, width)
	if err != nil {
		return 0, 0, 0, err
	}
	estimate = float64(successes) / float64(trials)
	return lower, estimate, upper, nil
}

// bernoulliWidthFactor scales the number of standard deviations by
// sqrt(1-f), accounting for universe itself being a Bernoulli sample at
// inclusion probability f: the larger f, the narrower the interval. Past
// f = 0.5 a small term 0.01*(f-0.5) is added back to that factor.
func bernoulliWidthFactor(f float64) float64 {
	base := math.Sqrt(1.0 - f)
	if f <= 0.5 {
		return base
	}
	return base + 0.01*(f-0.5)
}

// countRetainedBelow counts sketch's retained entries strictly below theta,
// used to re-count universe's population at a tighter theta than its own.
func countRetainedBelow(sketch Sketch, theta uint64) uint64 {
	var count uint64
	for h := range sketch.All() {
		if h < theta {
			count++
		}
	}
	return count
}
