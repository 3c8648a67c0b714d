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

// Package internal holds hashing and bit-manipulation helpers shared by the
// theta and hll packages. Nothing here is part of the public API.
package internal

import (
	"encoding/binary"

	"github.com/twmb/murmur3"
)

// DefaultUpdateSeed is the seed used when a caller does not supply one.
const DefaultUpdateSeed = uint64(9001)

// HashByteArrMurmur3 hashes data[offsetBytes:offsetBytes+lengthBytes] and
// returns the 128-bit MurmurHash3 result as (h1, h2).
func HashByteArrMurmur3(data []byte, offsetBytes, lengthBytes int, seed uint64) (uint64, uint64) {
	return murmur3.SeedSum128(seed, seed, data[offsetBytes:offsetBytes+lengthBytes])
}

// HashCharSliceMurmur3 hashes a string's bytes; kept distinct from
// HashByteArrMurmur3 to mirror the two call sites the wire format
// distinguishes (raw bytes vs. string content), even though the
// implementation is identical.
func HashCharSliceMurmur3(data []byte, offsetBytes, lengthBytes int, seed uint64) (uint64, uint64) {
	return HashByteArrMurmur3(data, offsetBytes, lengthBytes, seed)
}

// HashInt64SliceMurmur3 hashes lengthLongs little-endian int64 values
// starting at offsetLongs.
func HashInt64SliceMurmur3(key []int64, offsetLongs, lengthLongs int, seed uint64) (uint64, uint64) {
	buf := make([]byte, lengthLongs*8)
	for i := 0; i < lengthLongs; i++ {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(key[offsetLongs+i]))
	}
	return murmur3.SeedSum128(seed, seed, buf)
}

// HashInt32SliceMurmur3 hashes lengthInts little-endian int32 values
// starting at offsetInts.
func HashInt32SliceMurmur3(key []int32, offsetInts, lengthInts int, seed uint64) (uint64, uint64) {
	buf := make([]byte, lengthInts*4)
	for i := 0; i < lengthInts; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(key[offsetInts+i]))
	}
	return murmur3.SeedSum128(seed, seed, buf)
}

// HashUint64 hashes a single little-endian uint64 value, the common case
// for update(uint64) on both theta and HLL sketches.
func HashUint64(value uint64, seed uint64) (uint64, uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], value)
	return murmur3.SeedSum128(seed, seed, buf[:])
}

// ComputeSeedHash derives the 16-bit seed hash written into wire-format
// headers so peers can detect an incompatible seed without exchanging it.
// It hashes the seed's own little-endian bytes under seed 0 and takes the
// low 16 bits of h1; a result of exactly 0 is remapped to 1 so that a
// valid seed hash can never collide with an all-zero/uninitialized field.
func ComputeSeedHash(seed uint64) uint16 {
	h1, _ := HashUint64(seed, 0)
	seedHash := uint16(h1 & 0xffff)
	if seedHash == 0 {
		seedHash = 1
	}
	return seedHash
}

// LgSizeFromCount returns the smallest lg such that
// count/(1<<lg) <= rebuildThreshold.
func LgSizeFromCount(count int, rebuildThreshold float64) uint8 {
	if count <= 0 {
		return 0
	}
	var lg uint8
	for float64(count)/float64(uint64(1)<<lg) > rebuildThreshold {
		lg++
	}
	return lg
}

// Log2Floor returns floor(log2(n)) for n > 0.
func Log2Floor(n uint64) uint8 {
	return uint8(63 - CountLeadingZerosInU64(n))
}
