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

// Package binomialproportionsbounds approximates a Clopper-Pearson
// confidence interval for a binomial proportion: given n independent
// trials of which k succeeded, bound the unknown success probability p at
// a chosen number of standard deviations. It backs theta.JaccardSimilarity's
// bound on the ratio |intersection|/|union| whenever the intersection was
// sampled at a theta below 1.
package binomialproportionsbounds

import (
	"math"

	"github.com/wlauer/datasketches-go/dserr"
)

// side selects which tail of the binomial distribution a bound solves.
type side int

const (
	lowerTail side = iota
	upperTail
)

// lowerBound and upperBound each compute one side of an approximate
// confidence interval for a binomial proportion p, given n trials and k
// observed successes, using the Abramowitz & Stegun approximation to the
// inverse incomplete beta function. numStdDevs sets the interval width
// (2.0 corresponds to roughly a 95% confidence level).
func lowerBound(n, k uint64, numStdDevs float64) (float64, error) {
	return boundOnP(n, k, numStdDevs, lowerTail)
}

func upperBound(n, k uint64, numStdDevs float64) (float64, error) {
	return boundOnP(n, k, numStdDevs, upperTail)
}

func boundOnP(n, k uint64, numStdDevs float64, tail side) (float64, error) {
	const op = "binomialproportionsbounds.Bound"
	if k > n {
		return 0, dserr.InvalidArg(op, "k cannot exceed n")
	}
	if n == 0 {
		// no trials were observed, so nothing constrains p
		if tail == lowerTail {
			return 0.0, nil
		}
		return 1.0, nil
	}

	delta := rightTailProbability(numStdDevs)
	switch {
	case tail == lowerTail && k == 0:
		return 0.0, nil
	case tail == lowerTail && k == 1:
		return exactBoundAtOneSuccess(n, delta), nil
	case tail == lowerTail && k == n:
		return exactBoundAtAllSuccesses(n, delta), nil
	case tail == upperTail && k == n:
		return 1.0, nil
	case tail == upperTail && k == n-1:
		return exactBoundAtAllButOneSuccess(n, delta), nil
	case tail == upperTail && k == 0:
		return exactBoundAtNoSuccesses(n, delta), nil
	}

	if tail == lowerTail {
		x := inverseIncompleteBeta(float64(n-k)+1, float64(k), -numStdDevs)
		return 1.0 - x, nil
	}
	x := inverseIncompleteBeta(float64(n-k), float64(k)+1, numStdDevs)
	return 1.0 - x, nil
}

// ApproximateLowerBoundOnP is the lower-tail form of boundOnP.
func ApproximateLowerBoundOnP(n, k uint64, numStdDevs float64) (float64, error) {
	return lowerBound(n, k, numStdDevs)
}

// ApproximateUpperBoundOnP is the upper-tail form of boundOnP.
func ApproximateUpperBoundOnP(n, k uint64, numStdDevs float64) (float64, error) {
	return upperBound(n, k, numStdDevs)
}

// rightTailProbability converts a standard-deviation count into the
// right-tail probability of the standard normal distribution.
func rightTailProbability(numStdDevs float64) float64 {
	return standardNormalCDF(-numStdDevs)
}

// standardNormalCDF approximates the standard normal CDF via Erf.
func standardNormalCDF(x float64) float64 {
	return 0.5 * (1.0 + errorFunction(x/math.Sqrt2))
}

// errorFunction approximates erf(x) to about 7 decimal digits using
// Abramowitz & Stegun formula 7.1.28.
func errorFunction(x float64) float64 {
	if x < 0.0 {
		return -errorFunctionNonNegative(-x)
	}
	return errorFunctionNonNegative(x)
}

func errorFunctionNonNegative(x float64) float64 {
	const (
		a1 = 0.0705230784
		a2 = 0.0422820123
		a3 = 0.0092705272
		a4 = 0.0001520143
		a5 = 0.0002765672
		a6 = 0.0000430638
	)
	poly := 1.0 + x*(a1+x*(a2+x*(a3+x*(a4+x*(a5+x*a6)))))
	poly16 := poly * poly // ^2
	poly16 *= poly16      // ^4
	poly16 *= poly16      // ^8
	poly16 *= poly16      // ^16
	return 1.0 - 1.0/poly16
}

// inverseIncompleteBeta implements Abramowitz & Stegun formula 26.5.22, an
// approximation of the inverse of the regularized incomplete beta function
// I_x(a,b) treated as a function of x, given the shape parameters a, b and
// yp (the number of standard deviations marking off the desired right-tail
// probability). Variable names follow the source formula so the arithmetic
// can be checked term-by-term against the reference.
func inverseIncompleteBeta(a, b, yp float64) float64 {
	b2m1 := 2.0*b - 1.0
	a2m1 := 2.0*a - 1.0
	lambda := (yp*yp - 3.0) / 6.0
	h := 2.0 / (1.0/a2m1 + 1.0/b2m1)
	term1 := yp * math.Sqrt(h+lambda) / h
	term2 := 1.0/b2m1 - 1.0/a2m1
	term3 := lambda + 5.0/6.0 - 2.0/(3.0*h)
	w := term1 - term2*term3
	return a / (a + b*math.Exp(2.0*w))
}

// exactBoundAtOneSuccess is the lower bound when exactly one of n trials
// succeeded, where the general approximation is unstable.
func exactBoundAtOneSuccess(n uint64, delta float64) float64 {
	return 1.0 - math.Pow(1.0-delta, 1.0/float64(n))
}

// exactBoundAtAllSuccesses is the lower bound when all n trials succeeded.
func exactBoundAtAllSuccesses(n uint64, delta float64) float64 {
	return math.Pow(delta, 1.0/float64(n))
}

// exactBoundAtNoSuccesses is the upper bound when none of n trials succeeded.
func exactBoundAtNoSuccesses(n uint64, delta float64) float64 {
	return 1.0 - math.Pow(delta, 1.0/float64(n))
}

// exactBoundAtAllButOneSuccess is the upper bound when exactly n-1 of n
// trials succeeded.
func exactBoundAtAllButOneSuccess(n uint64, delta float64) float64 {
	return math.Pow(1.0-delta, 1.0/float64(n))
}
