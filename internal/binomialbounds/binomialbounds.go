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

// Package binomialbounds computes confidence bounds on the cardinality
// estimate of a theta sketch (the LowerBound/UpperBound methods of the C3
// update sketch and C4 compact sketch), treating the
// numSamples retained entries as a binomial sample taken at rate theta and
// applying the normal approximation to the sampling distribution of the
// resulting estimator.
package binomialbounds

import (
	"math"

	"github.com/wlauer/datasketches-go/dserr"
)

// LowerBound returns the numStdDev-sigma lower confidence bound on the
// true population size, given numSamples retained entries observed at
// sampling probability theta.
func LowerBound(numSamples uint64, theta float64, numStdDev uint) (float64, error) {
	bound, err := bound(numSamples, theta, numStdDev, -1)
	return bound, err
}

// UpperBound returns the numStdDev-sigma upper confidence bound on the
// true population size.
func UpperBound(numSamples uint64, theta float64, numStdDev uint) (float64, error) {
	return bound(numSamples, theta, numStdDev, 1)
}

func bound(numSamples uint64, theta float64, numStdDev uint, sign float64) (float64, error) {
	const op = "binomialbounds.bound"
	if theta < 0 || theta > 1 {
		return 0, dserr.InvalidArg(op, "theta must be in [0, 1], got %f", theta)
	}
	if numStdDev < 1 || numStdDev > 3 {
		return 0, dserr.InvalidArg(op, "numStdDevs must be 1, 2 or 3, got %d", numStdDev)
	}
	if numSamples == 0 {
		return 0, nil
	}
	if theta == 1.0 {
		return float64(numSamples), nil
	}

	n := float64(numSamples)
	estimate := n / theta
	variance := n * (1 - theta) / (theta * theta)
	adjusted := estimate + sign*float64(numStdDev)*math.Sqrt(variance)

	if sign < 0 && adjusted < n {
		// The population can never be smaller than the sample drawn from it.
		adjusted = n
	}
	if adjusted < 0 {
		adjusted = 0
	}
	return adjusted, nil
}
