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
	"fmt"

	"github.com/wlauer/datasketches-go/dserr"
	"github.com/wlauer/datasketches-go/internal"
)

// DefaultSeed is the builder default hash seed.
const DefaultSeed = internal.DefaultUpdateSeed

// Sketch is the mutable HyperLogLog sketch (C6-C9): LIST and SET coupon
// modes for small cardinalities, promoting to a register array in the
// configured TgtHllType once the count grows.
type Sketch struct {
	lgConfigK int
	tgtType   TgtHllType
	seed      uint64

	mode curMode
	list *couponList
	set  *couponSet
	arr  registerArray
	est  estimatorState
}

type sketchOptions struct {
	lgK     int
	tgtType TgtHllType
	seed    uint64
}

// SketchOptionFunc configures NewSketch.
type SketchOptionFunc func(*sketchOptions)

// WithTgtType selects the register encoding used once the sketch is
// promoted out of coupon mode.
func WithTgtType(t TgtHllType) SketchOptionFunc { return func(o *sketchOptions) { o.tgtType = t } }

// WithSeed sets the MurmurHash3 seed.
func WithSeed(seed uint64) SketchOptionFunc { return func(o *sketchOptions) { o.seed = seed } }

// NewSketch builds an empty sketch in LIST mode at the given lg_k, per the
// builder described in spec.md §6.3.
func NewSketch(lgK int, opts ...SketchOptionFunc) (*Sketch, error) {
	if err := checkLgK(lgK); err != nil {
		return nil, err
	}
	o := sketchOptions{lgK: lgK, tgtType: TgtHLL4, seed: DefaultSeed}
	for _, opt := range opts {
		opt(&o)
	}
	return &Sketch{
		lgConfigK: lgK,
		tgtType:   o.tgtType,
		seed:      o.seed,
		mode:      modeList,
		list:      newCouponList(lgK),
	}, nil
}

func (s *Sketch) LgConfigK() int         { return s.lgConfigK }
func (s *Sketch) TgtHllType() TgtHllType { return s.tgtType }
func (s *Sketch) SeedHash() uint16       { return internal.ComputeSeedHash(s.seed) }

func (s *Sketch) IsEmpty() bool {
	switch s.mode {
	case modeList:
		return len(s.list.coupons) == 0
	case modeSet:
		return s.set.count == 0
	default:
		return false
	}
}

func (s *Sketch) k() int { return 1 << s.lgConfigK }

// hashAndCoupon derives the register index and value for one input, per
// spec.md §4.4/§4.7: h1 selects the register, h2's leading-zero count is
// the value.
func (s *Sketch) hashAndCoupon(h1, h2 uint64) (int, uint8) {
	index := int(h1 % uint64(s.k()))
	lz := internal.CountLeadingZerosInU64(h2)
	value := uint8(lz) + 1
	if value > maxValue {
		value = maxValue
	}
	return index, value
}

func (s *Sketch) UpdateBytes(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	h1, h2 := internal.HashByteArrMurmur3(data, 0, len(data), s.seed)
	return s.applyRaw(h1, h2)
}

func (s *Sketch) UpdateString(v string) error { return s.UpdateBytes([]byte(v)) }

func (s *Sketch) UpdateInt64(v int64) error {
	h1, h2 := internal.HashInt64SliceMurmur3([]int64{v}, 0, 1, s.seed)
	return s.applyRaw(h1, h2)
}

func (s *Sketch) UpdateUint64(v uint64) error { return s.UpdateInt64(int64(v)) }

func (s *Sketch) UpdateInt32(v int32) error {
	h1, h2 := internal.HashInt32SliceMurmur3([]int32{v}, 0, 1, s.seed)
	return s.applyRaw(h1, h2)
}

func (s *Sketch) UpdateUint32(v uint32) error { return s.UpdateInt32(int32(v)) }

func (s *Sketch) applyRaw(h1, h2 uint64) error {
	index, value := s.hashAndCoupon(h1, h2)
	return s.applyCoupon(index, value)
}

// applyCoupon dispatches one (index, value) pair through whichever mode
// the sketch is currently in, promoting LIST->SET->HLL on overflow
// (spec.md §4.9).
func (s *Sketch) applyCoupon(index int, value uint8) error {
	switch s.mode {
	case modeList:
		s.list.add(makeCoupon(index, value))
		if s.list.full() {
			s.set = newCouponSetFromList(s.list)
			s.list = nil
			s.mode = modeSet
			if s.set.full() {
				return s.promoteToHLL(s.set.all)
			}
		}
		return nil
	case modeSet:
		s.set.add(makeCoupon(index, value))
		if s.set.full() {
			return s.promoteToHLL(s.set.all)
		}
		return nil
	default:
		return registerUpdate(s.arr, &s.est, index, value)
	}
}

// promoteToHLL replays every coupon collected so far through C7's update
// path, exactly as spec.md §4.9 describes.
func (s *Sketch) promoteToHLL(coupons func(yield func(uint32) bool)) error {
	var arr registerArray
	switch s.tgtType {
	case TgtHLL4:
		arr = newHll4Array(s.lgConfigK)
	case TgtHLL6:
		arr = newHll6Array(s.lgConfigK)
	default:
		arr = newHll8Array(s.lgConfigK)
	}
	est := newEstimatorState(s.k())
	var updateErr error
	coupons(func(c uint32) bool {
		if err := registerUpdate(arr, &est, couponIndex(c), couponValue(c)); err != nil {
			updateErr = err
			return false
		}
		return true
	})
	if updateErr != nil {
		return updateErr
	}
	s.arr = arr
	s.est = est
	s.mode = modeHLL
	s.list = nil
	s.set = nil
	return nil
}

// Estimate returns the current cardinality estimate: exact-ish coupon
// counts in LIST/SET mode, HIP if updates have been strictly in-order, or
// the composite estimator once a union may have gone out of order.
func (s *Sketch) Estimate() float64 {
	switch s.mode {
	case modeList:
		return float64(len(s.list.coupons))
	case modeSet:
		return float64(s.set.count)
	default:
		if s.est.oosFlag {
			return compositeEstimate(s.lgConfigK, s.est.kxq0, s.est.kxq1, s.numZeroRegisters())
		}
		return s.est.hipAccum
	}
}

func (s *Sketch) numZeroRegisters() int {
	if s.mode != modeHLL {
		return 0
	}
	count := 0
	s.arr.all(func(_ int, v uint8) bool {
		if v == 0 {
			count++
		}
		return true
	})
	return count
}

func (s *Sketch) numNonZeroRegisters() int {
	if s.mode != modeHLL {
		return int(s.Estimate())
	}
	return s.k() - s.numZeroRegisters()
}

func (s *Sketch) LowerBound(numStdDev uint) (float64, error) {
	if s.mode != modeHLL {
		return s.Estimate(), nil
	}
	return hllLowerBound(s.Estimate(), s.lgConfigK, numStdDev, s.numNonZeroRegisters()), nil
}

func (s *Sketch) UpperBound(numStdDev uint) (float64, error) {
	if s.mode != modeHLL {
		return s.Estimate(), nil
	}
	return hllUpperBound(s.Estimate(), s.lgConfigK, numStdDev), nil
}

// IsOutOfOrder reports whether a union/merge may have violated HIP's
// incremental-update precondition, forcing the composite estimator.
func (s *Sketch) IsOutOfOrder() bool { return s.est.oosFlag }

func (s *Sketch) String() string {
	return fmt.Sprintf("hll.Sketch{lgK=%d, tgtType=%s, mode=%d, estimate=%f}",
		s.lgConfigK, s.tgtType, s.mode, s.Estimate())
}

// forEachCoupon iterates every (index, value) pair the sketch currently
// represents, regardless of mode, so Union can fold two sketches together
// by uniform replay (a supplemental simplification documented in
// DESIGN.md in place of the source implementation's mode-cross-product
// dispatch).
func (s *Sketch) forEachCoupon(yield func(index int, value uint8) bool) {
	switch s.mode {
	case modeList:
		s.list.all(func(c uint32) bool { return yield(couponIndex(c), couponValue(c)) })
	case modeSet:
		s.set.all(func(c uint32) bool { return yield(couponIndex(c), couponValue(c)) })
	default:
		s.arr.all(yield)
	}
}

// Clone returns an independent deep copy of the sketch.
func (s *Sketch) Clone() *Sketch {
	c := *s
	if s.list != nil {
		lc := *s.list
		lc.coupons = append([]uint32(nil), s.list.coupons...)
		c.list = &lc
	}
	if s.set != nil {
		sc := *s.set
		sc.entries = append([]uint32(nil), s.set.entries...)
		c.set = &sc
	}
	if s.arr != nil {
		c.arr = s.arr.clone()
	}
	return &c
}

func checkSeedHash(a, b *Sketch) error {
	if a.SeedHash() != b.SeedHash() {
		return dserr.InvalidArg("hll", "seed hash mismatch")
	}
	return nil
}
