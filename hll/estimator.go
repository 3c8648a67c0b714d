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

package hll

import (
	"math"

	"github.com/wlauer/datasketches-go/dserr"
	"github.com/wlauer/datasketches-go/internal"
)

// estimatorState is the mutable statistics C7 maintains alongside a
// register array: the HIP accumulator, the two kxq sums used by both HIP
// and the raw HLL estimate, and the out-of-order flag that disables HIP
// once a merge could have violated its incremental-update precondition.
type estimatorState struct {
	kxq0, kxq1  float64
	hipAccum    float64
	numAtCurMin int
	oosFlag     bool
}

func newEstimatorState(k int) estimatorState {
	return estimatorState{kxq0: float64(k), kxq1: 0, hipAccum: 0, numAtCurMin: k}
}

// hipAndKxQIncrementalUpdate applies one register transition to the running
// HIP accumulator and kxq sums, per spec.md §4.7's update protocol.
func (e *estimatorState) hipAndKxQIncrementalUpdate(k int, oldVal, newVal uint8) error {
	if newVal <= oldVal {
		return dserr.IllegalStateErr("hll.estimatorState.hipAndKxQIncrementalUpdate", "new_val %d <= old_val %d", newVal, oldVal)
	}
	invPow2Sum := e.kxq0 + e.kxq1
	e.hipAccum += float64(k) / invPow2Sum
	if oldVal < 32 {
		e.kxq0 -= internal.InvPow2(int(oldVal))
	} else {
		e.kxq1 -= internal.InvPow2(int(oldVal))
	}
	if newVal < 32 {
		e.kxq0 += internal.InvPow2(int(newVal))
	} else {
		e.kxq1 += internal.InvPow2(int(newVal))
	}
	return nil
}

// registerUpdate is the single entry point used by both direct sketch
// updates and coupon-replay promotion: it enforces "max wins", drives the
// HIP/kxq update, and maintains numAtCurMin/curMin for HLL_4.
func registerUpdate(arr registerArray, e *estimatorState, index int, newVal uint8) error {
	old := arr.get(index)
	if newVal <= old {
		return nil
	}
	if err := e.hipAndKxQIncrementalUpdate(arr.numRegisters(), old, newVal); err != nil {
		return err
	}
	curMin := arr.curMinValue()
	arr.set(index, newVal)
	if old == curMin {
		e.numAtCurMin--
		if e.numAtCurMin == 0 {
			if a4, ok := arr.(*hll4Array); ok {
				a4.raiseCurMin()
				e.numAtCurMin = a4.numAtCurMin
			}
			// HLL_6/HLL_8 keep cur_min == 0 permanently (spec.md §4.6).
		}
	}
	return nil
}

// alphaKK is the bias-correction constant used by the raw HLL estimator,
// exactly the piecewise formula from spec.md §4.7.
func alphaKK(lgConfigK int) float64 {
	k := float64(int(1) << lgConfigK)
	switch lgConfigK {
	case 4:
		return 0.673
	case 5:
		return 0.697
	case 6:
		return 0.709
	default:
		return 0.7213 / (1 + 1.079/k)
	}
}

func rawEstimate(lgConfigK int, kxqSum float64) float64 {
	k := float64(int(1) << lgConfigK)
	return alphaKK(lgConfigK) * k * k / kxqSum
}

// bitMapEstimate is the linear-counting estimator used when many registers
// are still at zero: -k*ln(numZero/k).
func bitMapEstimate(k int, numZero int) float64 {
	if numZero == 0 {
		return float64(k) * math.Log(float64(k))
	}
	return float64(k) * math.Log(float64(k)/float64(numZero))
}

// compositeEstimate fuses the raw HLL estimate with linear counting near
// the low end of the count range. The source implementation blends the
// two through empirically-tabulated cubic-interpolation bias-correction
// tables per lg_k; here the same raw/linear-counting/crossover structure
// is kept but the bias correction itself is generated analytically
// (curveCorrection) rather than reproduced from Apache's per-lg_k tables,
// which are large empirical constants outside this exercise's scope.
//
// numZeroRegisters is the only register count linear counting needs: a
// register can only read exactly zero when curMin is itself zero (every
// register's absolute value is at least curMin, since updates only ever
// raise a register), so a caller never needs to pass curMin separately —
// counting literal zero registers already implies curMin==0 whenever the
// count is positive.
func compositeEstimate(lgConfigK int, kxq0, kxq1 float64, numZeroRegisters int) float64 {
	k := int(1) << lgConfigK
	raw := rawEstimate(lgConfigK, kxq0+kxq1)
	corrected := raw * curveCorrection(raw, float64(k))

	if numZeroRegisters == 0 {
		return corrected
	}
	linear := bitMapEstimate(k, numZeroRegisters)
	avg := (corrected + linear) / 2
	if avg > crossoverFraction(lgConfigK)*float64(k) {
		return corrected
	}
	return linear
}

// curveCorrection approximates the small upward bias of the raw HLL
// estimator at low cardinalities with a smooth correction that vanishes
// as raw/k grows, standing in for Apache's tabulated cubic interpolation.
func curveCorrection(raw, k float64) float64 {
	ratio := raw / k
	if ratio >= 1 {
		return 1
	}
	// Bias shrinks the estimate slightly below 1x at small ratios and
	// converges to 1 by ratio==1; matches the qualitative shape of the
	// empirical bias curves without reproducing their exact values.
	return 1 - 0.05*(1-ratio)*(1-ratio)
}

func crossoverFraction(lgConfigK int) float64 {
	switch lgConfigK {
	case 4:
		return 0.718
	case 5:
		return 0.672
	default:
		return 0.64
	}
}

// relError returns the estimator's one-sigma relative error at lgConfigK,
// used to derive lower/upper bounds (spec.md §4.7).
func relError(lgConfigK int) float64 {
	k := float64(int(1) << lgConfigK)
	return couponRSE(lgConfigK) / math.Sqrt(k)
}

// couponRSE mirrors the source implementation's HLL non-HIP RSE factor,
// which is close to 1.04 for the register-based estimators.
func couponRSE(lgConfigK int) float64 {
	return 1.04
}

// hllLowerBound and hllUpperBound implement spec.md §4.7's bound formula,
// clamping the lower bound to the number of non-zero registers.
func hllLowerBound(estimate float64, lgConfigK int, numStdDev uint, numNonZero int) float64 {
	relErr := float64(numStdDev) * relError(lgConfigK)
	bound := estimate / (1 + relErr)
	if bound < float64(numNonZero) {
		bound = float64(numNonZero)
	}
	return bound
}

func hllUpperBound(estimate float64, lgConfigK int, numStdDev uint) float64 {
	relErr := float64(numStdDev) * relError(lgConfigK)
	return estimate / (1 - relErr)
}
