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
	"encoding/binary"
	"fmt"
	"iter"
	"sort"

	"github.com/wlauer/datasketches-go/dserr"
	"github.com/wlauer/datasketches-go/internal/binomialbounds"
)

const (
	serialVersion  = 3
	compactType    = 3
	preambleLongs1 = 1
	preambleLongs2 = 2
	preambleLongs3 = 3

	flagBigEndian = 1 // unused, always little-endian; reserved bit position
	flagOrdered   = 2
	flagEmpty     = 4
	flagCompact   = 16
)

// CompactSketch is the immutable, serializable snapshot of a theta sketch
// (C4): the result of Compact, Union.Result, or Intersection.Result.
type CompactSketch struct {
	entries   []uint64
	theta     uint64
	seedHash  uint16
	isEmpty   bool
	isOrdered bool
}

// newCompactSketchFromEntries builds a CompactSketch from an unsorted
// entries slice, taking ownership of it, sorting in place if ordered.
func newCompactSketchFromEntries(entries []uint64, theta uint64, isEmpty bool, seedHash uint16, ordered bool) *CompactSketch {
	if ordered {
		sort.Slice(entries, func(i, j int) bool { return entries[i] < entries[j] })
	}
	return &CompactSketch{entries: entries, theta: theta, seedHash: seedHash, isEmpty: isEmpty, isOrdered: ordered}
}

// NewEmptyCompactSketch is the canonical empty compact sketch.
func NewEmptyCompactSketch(seedHash uint16) *CompactSketch {
	return &CompactSketch{theta: MaxTheta, seedHash: seedHash, isEmpty: true, isOrdered: true}
}

func (s *CompactSketch) IsEmpty() bool   { return s.isEmpty }
func (s *CompactSketch) IsOrdered() bool { return s.isOrdered }
func (s *CompactSketch) Theta64() uint64 { return s.theta }
func (s *CompactSketch) Theta() float64  { return float64(s.theta) / float64(MaxTheta) }
func (s *CompactSketch) NumRetained() uint32 { return uint32(len(s.entries)) }
func (s *CompactSketch) SeedHash() uint16 { return s.seedHash }

func (s *CompactSketch) Estimate() float64 {
	if !s.IsEstimationMode() {
		return float64(len(s.entries))
	}
	return float64(len(s.entries)) / s.Theta()
}

func (s *CompactSketch) LowerBound(numStdDev uint) (float64, error) {
	if !s.IsEstimationMode() {
		return float64(len(s.entries)), nil
	}
	return binomialbounds.LowerBound(uint64(len(s.entries)), s.Theta(), numStdDev)
}

func (s *CompactSketch) UpperBound(numStdDev uint) (float64, error) {
	if !s.IsEstimationMode() {
		return float64(len(s.entries)), nil
	}
	return binomialbounds.UpperBound(uint64(len(s.entries)), s.Theta(), numStdDev)
}

func (s *CompactSketch) IsEstimationMode() bool { return s.theta < MaxTheta }

func (s *CompactSketch) String() string {
	return fmt.Sprintf("CompactSketch{retained=%d, theta=%f, empty=%v, ordered=%v}",
		len(s.entries), s.Theta(), s.isEmpty, s.isOrdered)
}

// All iterates the retained hash values, in ascending order if IsOrdered.
func (s *CompactSketch) All() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for _, e := range s.entries {
			if !yield(e) {
				return
			}
		}
	}
}

func (s *CompactSketch) preambleLongs() uint8 {
	switch {
	case s.isEmpty || len(s.entries) <= 1 && !s.IsEstimationMode():
		return preambleLongs1
	case !s.IsEstimationMode():
		return preambleLongs2
	default:
		return preambleLongs3
	}
}

// SerializedSizeBytes returns the exact size MarshalBinary will produce.
func (s *CompactSketch) SerializedSizeBytes() int {
	pre := int(s.preambleLongs())
	if pre == preambleLongs1 {
		if len(s.entries) == 1 {
			return 16
		}
		return 8
	}
	return pre*8 + len(s.entries)*8
}

// MarshalBinary encodes the sketch per spec.md §6.1: little-endian, an
// 8/16/24-byte header selected by preambleLongs, followed by the retained
// hashes.
func (s *CompactSketch) MarshalBinary() ([]byte, error) {
	pre := s.preambleLongs()
	n := len(s.entries)

	var flags byte = flagCompact
	if s.isEmpty {
		flags |= flagEmpty
	}
	if s.isOrdered {
		flags |= flagOrdered
	}

	if pre == preambleLongs1 {
		size := 8
		if n == 1 {
			size = 16
		}
		buf := make([]byte, size)
		buf[0] = pre
		buf[1] = serialVersion
		buf[2] = compactType
		binary.LittleEndian.PutUint16(buf[3:5], s.seedHash)
		buf[5] = flags
		if n == 1 {
			binary.LittleEndian.PutUint64(buf[8:16], s.entries[0])
		}
		return buf, nil
	}

	headerLen := int(pre) * 8
	buf := make([]byte, headerLen+n*8)
	buf[0] = pre
	buf[1] = serialVersion
	buf[2] = compactType
	binary.LittleEndian.PutUint16(buf[3:5], s.seedHash)
	buf[5] = flags
	binary.LittleEndian.PutUint32(buf[8:12], uint32(n))
	if pre == preambleLongs3 {
		binary.LittleEndian.PutUint64(buf[16:24], s.theta)
	}
	for i, e := range s.entries {
		binary.LittleEndian.PutUint64(buf[headerLen+i*8:headerLen+i*8+8], e)
	}
	return buf, nil
}

// UnmarshalBinary decodes a buffer produced by MarshalBinary, validating
// the serial version, sketch type, and declared entry count.
func (s *CompactSketch) UnmarshalBinary(data []byte) error {
	const op = "theta.CompactSketch.UnmarshalBinary"
	if len(data) < 8 {
		return dserr.InvalidArg(op, "buffer too short: %d bytes", len(data))
	}
	pre := data[0]
	serVer := data[1]
	typ := data[2]
	if serVer != serialVersion {
		return dserr.InvalidArg(op, "unsupported serial version %d", serVer)
	}
	if typ != compactType {
		return dserr.InvalidArg(op, "unsupported sketch type %d", typ)
	}
	seedHash := binary.LittleEndian.Uint16(data[3:5])
	flags := data[5]
	isEmpty := flags&flagEmpty != 0
	isOrdered := flags&flagOrdered != 0

	switch pre {
	case preambleLongs1:
		if len(data) == 8 {
			*s = CompactSketch{theta: MaxTheta, seedHash: seedHash, isEmpty: isEmpty, isOrdered: true}
			return nil
		}
		if len(data) < 16 {
			return dserr.InvalidArg(op, "buffer too short for single-entry sketch: %d bytes", len(data))
		}
		entry := binary.LittleEndian.Uint64(data[8:16])
		*s = CompactSketch{entries: []uint64{entry}, theta: MaxTheta, seedHash: seedHash, isEmpty: false, isOrdered: true}
		return nil
	case preambleLongs2, preambleLongs3:
		if len(data) < int(pre)*8 {
			return dserr.InvalidArg(op, "buffer too short for header: %d bytes", len(data))
		}
		numEntries := binary.LittleEndian.Uint32(data[8:12])
		theta := uint64(MaxTheta)
		headerLen := int(pre) * 8
		if pre == preambleLongs3 {
			theta = binary.LittleEndian.Uint64(data[16:24])
		}
		want := headerLen + int(numEntries)*8
		if len(data) < want {
			return dserr.InvalidArg(op, "declared %d entries but buffer holds %d bytes", numEntries, len(data)-headerLen)
		}
		entries := make([]uint64, numEntries)
		for i := range entries {
			entries[i] = binary.LittleEndian.Uint64(data[headerLen+i*8 : headerLen+i*8+8])
		}
		*s = CompactSketch{entries: entries, theta: theta, seedHash: seedHash, isEmpty: isEmpty, isOrdered: isOrdered}
		return nil
	default:
		return dserr.InvalidArg(op, "unsupported preamble longs %d", pre)
	}
}
