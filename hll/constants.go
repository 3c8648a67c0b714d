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

// Package hll implements the HyperLogLog-family cardinality sketch: three
// register encodings (4/6/8 bits), LIST/SET/HLL mode promotion via
// coupons, an HIP incremental estimator, and a composite estimator that
// blends raw HLL with linear counting at the low end of the count range.
package hll

import "github.com/wlauer/datasketches-go/dserr"

// TgtHllType selects the register encoding used once a sketch is promoted
// to HLL mode.
type TgtHllType int

const (
	TgtHLL4 TgtHllType = iota
	TgtHLL6
	TgtHLL8
)

func (t TgtHllType) String() string {
	switch t {
	case TgtHLL4:
		return "HLL_4"
	case TgtHLL6:
		return "HLL_6"
	case TgtHLL8:
		return "HLL_8"
	default:
		return "UNKNOWN"
	}
}

// curMode is the sketch's current representation.
type curMode int

const (
	modeList curMode = iota
	modeSet
	modeHLL
)

const (
	// MinLgK and MaxLgK bound lg_k per spec.md §6.3.
	MinLgK = 4
	MaxLgK = 21

	// DefaultLgK is the builder default.
	DefaultLgK = 12

	// listCapacity is the fixed number of coupons the LIST mode holds
	// before promoting to SET.
	listCapacity = 8

	// keyBits/valBits split a 32-bit coupon into a register index and a
	// leading-zero-count value.
	keyBits  = 26
	valBits  = 6
	keyMask  = (1 << keyBits) - 1
	valMask  = (1 << valBits) - 1
	maxValue = 62 // spec.md §4.7: new_val = min(leading_zeros(h2)+1, 62)
)

func checkLgK(lgK int) error {
	if lgK < MinLgK || lgK > MaxLgK {
		return dserr.InvalidArg("hll", "lg_k %d out of range [%d,%d]", lgK, MinLgK, MaxLgK)
	}
	return nil
}

// coupon packs a register index and a value into a single 32-bit word so
// LIST/SET mode can store both in one hash-table slot (C9).
func makeCoupon(index int, value uint8) uint32 {
	return (uint32(index) << valBits) | uint32(value&valMask)
}

func couponIndex(c uint32) int    { return int((c >> valBits) & keyMask) }
func couponValue(c uint32) uint8  { return uint8(c & valMask) }
