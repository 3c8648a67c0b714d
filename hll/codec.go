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
	"encoding/binary"
	"math"

	"github.com/wlauer/datasketches-go/dserr"
	"github.com/wlauer/datasketches-go/internal"
)

const (
	hllSerVer    = 1
	preambleInts = 1 // one 8-byte preamble word, per spec.md §6.2
)

// MarshalBinary encodes the sketch per spec.md §6.2: an 8-byte preamble,
// 32 bytes of estimator state (only meaningful in HLL mode), the register
// bytes, then the HLL_4 aux map as compact packed pairs.
func (s *Sketch) MarshalBinary() ([]byte, error) {
	var flags byte
	if s.IsEmpty() {
		flags |= 1
	}
	if s.mode == modeHLL && s.est.oosFlag {
		flags |= 2
	}

	if s.mode != modeHLL {
		coupons := make([]uint32, 0)
		s.forEachCoupon(func(index int, value uint8) bool {
			coupons = append(coupons, makeCoupon(index, value))
			return true
		})
		buf := make([]byte, 8+4*len(coupons))
		s.writePreamble(buf, flags, 0, 0)
		buf[7] = byte(int(s.tgtType)) | (byte(s.mode) << 2)
		for i, c := range coupons {
			binary.LittleEndian.PutUint32(buf[8+i*4:], c)
		}
		return buf, nil
	}

	var lgArrInts uint8
	var auxCount int
	var a4 *hll4Array
	if arr4, ok := s.arr.(*hll4Array); ok {
		a4 = arr4
		if a4.aux != nil {
			lgArrInts = a4.aux.lgArrInts
			auxCount = a4.aux.numEntries
		}
	}

	registerBytes := registerByteLen(s.arr)
	auxBytes := auxCount * 4
	// spec.md §4.8: hip, kxq0, kxq1 (f64 LE, 24 bytes) then num_at_cur_min
	// and aux_count (i32 each, 8 bytes) — 32 bytes of estimator state
	// total, which supersedes §6.2's rounder "24 bytes" summary.
	buf := make([]byte, 8+32+registerBytes+auxBytes)
	s.writePreamble(buf, flags, lgArrInts, auxCount)
	// mode byte: cur_mode (HLL=2) in bits [3:2], tgt_hll_type in bits [1:0].
	buf[7] = byte(int(s.tgtType)) | (byte(modeHLL) << 2)

	var curMin uint8
	if a4 != nil {
		curMin = a4.curMin
	}
	buf[6] = curMin

	off := 8
	binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(s.est.hipAccum))
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(s.est.kxq0))
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(s.est.kxq1))
	off += 8
	binary.LittleEndian.PutUint32(buf[off:], uint32(s.est.numAtCurMin))
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], uint32(auxCount))
	off += 4

	writeRegisters(buf[off:off+registerBytes], s.arr)
	off += registerBytes

	if a4 != nil && a4.aux != nil {
		i := 0
		a4.aux.All(func(index int, value uint8) bool {
			binary.LittleEndian.PutUint32(buf[off+i*4:], makeCoupon(index, value))
			i++
			return true
		})
	}

	return buf, nil
}

func (s *Sketch) writePreamble(buf []byte, flags byte, lgArrInts uint8, auxCount int) {
	buf[0] = preambleInts
	buf[1] = hllSerVer
	buf[2] = internal.FamilyIDHLL
	buf[3] = byte(s.lgConfigK)
	buf[4] = lgArrInts
	buf[5] = flags
	_ = auxCount
}

func registerByteLen(arr registerArray) int {
	switch a := arr.(type) {
	case *hll8Array:
		return len(a.registers)
	case *hll6Array:
		return len(a.registers)
	case *hll4Array:
		return len(a.nibbles)
	default:
		return 0
	}
}

func writeRegisters(dst []byte, arr registerArray) {
	switch a := arr.(type) {
	case *hll8Array:
		copy(dst, a.registers)
	case *hll6Array:
		copy(dst, a.registers)
	case *hll4Array:
		copy(dst, a.nibbles)
	}
}

// UnmarshalBinary decodes a buffer produced by MarshalBinary.
func (s *Sketch) UnmarshalBinary(data []byte) error {
	const op = "hll.Sketch.UnmarshalBinary"
	if len(data) < 8 {
		return dserr.InvalidArg(op, "buffer too short: %d bytes", len(data))
	}
	if data[1] != hllSerVer {
		return dserr.InvalidArg(op, "unsupported serial version %d", data[1])
	}
	if data[2] != internal.FamilyIDHLL {
		return dserr.InvalidArg(op, "unsupported family id %d", data[2])
	}
	lgK := int(data[3])
	if err := checkLgK(lgK); err != nil {
		return err
	}
	lgArrInts := data[4]
	flags := data[5]
	curMin := data[6]
	modeByte := data[7]

	cm := curMode((modeByte >> 2) & 0x3)
	tgt := TgtHllType(modeByte & 0x3)

	sk := &Sketch{lgConfigK: lgK, tgtType: tgt, seed: DefaultSeed, mode: cm}

	if cm != modeHLL {
		n := (len(data) - 8) / 4
		switch cm {
		case modeList:
			sk.list = newCouponList(lgK)
			for i := 0; i < n; i++ {
				sk.list.add(binary.LittleEndian.Uint32(data[8+i*4:]))
			}
		default:
			sk.set = newCouponSetFromList(&couponList{lgConfigK: lgK})
			for i := 0; i < n; i++ {
				sk.set.add(binary.LittleEndian.Uint32(data[8+i*4:]))
			}
		}
		*s = *sk
		return nil
	}

	if len(data) < 40 {
		return dserr.InvalidArg(op, "buffer too short for HLL mode: %d bytes", len(data))
	}
	off := 8
	hip := math.Float64frombits(binary.LittleEndian.Uint64(data[off:]))
	off += 8
	kxq0 := math.Float64frombits(binary.LittleEndian.Uint64(data[off:]))
	off += 8
	kxq1 := math.Float64frombits(binary.LittleEndian.Uint64(data[off:]))
	off += 8
	off += 4 // num_at_cur_min recomputed below rather than trusted
	declaredAuxCount := binary.LittleEndian.Uint32(data[off:])
	off += 4
	_ = declaredAuxCount

	var arr registerArray
	switch tgt {
	case TgtHLL4:
		a4 := newHll4Array(lgK)
		a4.curMin = curMin
		arr = a4
	case TgtHLL6:
		arr = newHll6Array(lgK)
	default:
		arr = newHll8Array(lgK)
	}
	regBytes := registerByteLen(arr)
	if len(data) < off+regBytes {
		return dserr.InvalidArg(op, "buffer too short for registers: need %d more bytes", off+regBytes-len(data))
	}
	switch a := arr.(type) {
	case *hll8Array:
		copy(a.registers, data[off:off+regBytes])
	case *hll6Array:
		copy(a.registers, data[off:off+regBytes])
	case *hll4Array:
		copy(a.nibbles, data[off:off+regBytes])
	}
	off += regBytes

	if a4, ok := arr.(*hll4Array); ok && lgArrInts > 0 {
		a4.aux = newAuxHashMap(lgArrInts)
		remaining := (len(data) - off) / 4
		for i := 0; i < remaining; i++ {
			c := binary.LittleEndian.Uint32(data[off+i*4:])
			a4.aux.Put(couponIndex(c), couponValue(c))
		}
	}

	numAtCurMin := 0
	arr.all(func(_ int, v uint8) bool {
		if v == curMin {
			numAtCurMin++
		}
		return true
	})

	sk.arr = arr
	sk.est = estimatorState{kxq0: kxq0, kxq1: kxq1, hipAccum: hip, numAtCurMin: numAtCurMin, oosFlag: flags&2 != 0}
	*s = *sk
	return nil
}
