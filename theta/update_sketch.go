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
	"errors"
	"fmt"
	"iter"
	"math"
	"sort"

	"github.com/wlauer/datasketches-go/dserr"
	"github.com/wlauer/datasketches-go/internal"
	"github.com/wlauer/datasketches-go/internal/binomialbounds"
)

// ErrDuplicateKey names the "hashed value is already present" outcome. The
// Update*, Merge and MergeCompact methods do not return it: inserting a hash
// that is already retained is a no-op that returns nil.
var ErrDuplicateKey = errors.New("duplicate key")

// ErrUpdateEmptyString is returned when UpdateString/UpdateBytes is called
// with zero-length input.
var ErrUpdateEmptyString = errors.New("cannot update with empty string")

// QuickSelectUpdateSketch is the mutable, streaming theta sketch (C3): the
// primary entry point for building a sketch one update at a time.
type QuickSelectUpdateSketch struct {
	table *Hashtable
}

type updateSketchOptions struct {
	lgK          uint8
	rf           ResizeFactor
	p            float32
	seed         uint64
}

// UpdateSketchOptionFunc configures NewQuickSelectUpdateSketch.
type UpdateSketchOptionFunc func(*updateSketchOptions)

func defaultUpdateSketchOptions() updateSketchOptions {
	return updateSketchOptions{lgK: DefaultLgK, rf: DefaultResizeFactor, p: 1.0, seed: DefaultSeed}
}

// WithUpdateSketchLgK sets log2 of the nominal number of entries.
func WithUpdateSketchLgK(lgK uint8) UpdateSketchOptionFunc {
	return func(o *updateSketchOptions) { o.lgK = lgK }
}

// WithUpdateSketchResizeFactor sets the hash table growth factor.
func WithUpdateSketchResizeFactor(rf ResizeFactor) UpdateSketchOptionFunc {
	return func(o *updateSketchOptions) { o.rf = rf }
}

// WithUpdateSketchP sets the initial sampling probability.
func WithUpdateSketchP(p float32) UpdateSketchOptionFunc {
	return func(o *updateSketchOptions) { o.p = p }
}

// WithUpdateSketchSeed sets the MurmurHash3 seed.
func WithUpdateSketchSeed(seed uint64) UpdateSketchOptionFunc {
	return func(o *updateSketchOptions) { o.seed = seed }
}

// NewQuickSelectUpdateSketch builds an empty update sketch per the given
// options, applying the defaults from the builder described in spec.md §6.3.
func NewQuickSelectUpdateSketch(opts ...UpdateSketchOptionFunc) (*QuickSelectUpdateSketch, error) {
	o := defaultUpdateSketchOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.lgK < MinLgK || o.lgK > MaxLgK {
		return nil, dserr.InvalidArg("theta.NewQuickSelectUpdateSketch", "lg_k %d out of range [%d,%d]", o.lgK, MinLgK, MaxLgK)
	}
	if o.p <= 0 || o.p > 1 {
		return nil, dserr.InvalidArg("theta.NewQuickSelectUpdateSketch", "p %f out of range (0,1]", o.p)
	}
	lgCurSize := startingSubMultiple(o.lgK+1, MinLgK, uint8(o.rf))
	theta := startingThetaFromP(o.p)
	table := NewHashtable(lgCurSize, o.lgK, o.rf, o.p, theta, o.seed, true)
	return &QuickSelectUpdateSketch{table: table}, nil
}

func (s *QuickSelectUpdateSketch) IsEmpty() bool { return s.table.isEmpty }

// IsOrdered is always false for a mutable sketch's raw entry order, but a
// sketch retaining 0 or 1 entries is trivially ordered.
func (s *QuickSelectUpdateSketch) IsOrdered() bool { return s.table.numEntries <= 1 }

func (s *QuickSelectUpdateSketch) Theta64() uint64 { return s.table.theta }

func (s *QuickSelectUpdateSketch) Theta() float64 {
	return float64(s.table.theta) / float64(MaxTheta)
}

func (s *QuickSelectUpdateSketch) NumRetained() uint32 { return s.table.numEntries }

func (s *QuickSelectUpdateSketch) SeedHash() uint16 {
	return internal.ComputeSeedHash(s.table.seed)
}

func (s *QuickSelectUpdateSketch) Estimate() float64 {
	return float64(s.table.numEntries) / s.Theta()
}

func (s *QuickSelectUpdateSketch) LowerBound(numStdDev uint) (float64, error) {
	return binomialbounds.LowerBound(uint64(s.table.numEntries), s.Theta(), numStdDev)
}

func (s *QuickSelectUpdateSketch) UpperBound(numStdDev uint) (float64, error) {
	return binomialbounds.UpperBound(uint64(s.table.numEntries), s.Theta(), numStdDev)
}

func (s *QuickSelectUpdateSketch) IsEstimationMode() bool { return s.table.theta < MaxTheta }

func (s *QuickSelectUpdateSketch) LgK() uint8 { return s.table.lgNomSize }

func (s *QuickSelectUpdateSketch) ResizeFactor() ResizeFactor { return s.table.rf }

func (s *QuickSelectUpdateSketch) String() string {
	return fmt.Sprintf("QuickSelectUpdateSketch{lgK=%d, retained=%d, theta=%f, empty=%v}",
		s.table.lgNomSize, s.table.numEntries, s.Theta(), s.table.isEmpty)
}

// All iterates every retained hash value in table order (unsorted).
func (s *QuickSelectUpdateSketch) All() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for _, e := range s.table.entries {
			if e != 0 {
				if !yield(e) {
					return
				}
			}
		}
	}
}

func (s *QuickSelectUpdateSketch) insert(hash uint64) error {
	index, err := s.table.Find(hash)
	if err == nil {
		return nil // already retained: ignored
	}
	if err == ErrKeyNotFoundAndNoEmptySlots {
		return err
	}
	s.table.Insert(index, hash)
	return nil
}

// UpdateString hashes s and inserts it. An empty string is rejected: it
// hashes identically across sketches with the same seed but carries no
// information, matching the source implementation's guard.
func (s *QuickSelectUpdateSketch) UpdateString(v string) error {
	if len(v) == 0 {
		return ErrUpdateEmptyString
	}
	hash, err := s.table.HashStringAndScreen(v)
	if err != nil {
		return acceptScreenErr(err)
	}
	return s.insert(hash)
}

func (s *QuickSelectUpdateSketch) UpdateBytes(v []byte) error {
	if len(v) == 0 {
		return ErrUpdateEmptyString
	}
	hash, err := s.table.HashBytesAndScreen(v)
	if err != nil {
		return acceptScreenErr(err)
	}
	return s.insert(hash)
}

func (s *QuickSelectUpdateSketch) UpdateInt64(v int64) error  { return s.updateInt64(v) }
func (s *QuickSelectUpdateSketch) UpdateUint64(v uint64) error { return s.updateInt64(int64(v)) }
func (s *QuickSelectUpdateSketch) UpdateInt32(v int32) error  { return s.updateInt32(v) }
func (s *QuickSelectUpdateSketch) UpdateUint32(v uint32) error { return s.updateInt32(int32(v)) }
func (s *QuickSelectUpdateSketch) UpdateInt16(v int16) error  { return s.updateInt64(int64(v)) }
func (s *QuickSelectUpdateSketch) UpdateUint16(v uint16) error { return s.updateInt64(int64(v)) }
func (s *QuickSelectUpdateSketch) UpdateInt8(v int8) error    { return s.updateInt64(int64(v)) }
func (s *QuickSelectUpdateSketch) UpdateUint8(v uint8) error  { return s.updateInt64(int64(v)) }

func (s *QuickSelectUpdateSketch) updateInt64(v int64) error {
	hash, err := s.table.HashInt64AndScreen(v)
	if err != nil {
		return acceptScreenErr(err)
	}
	return s.insert(hash)
}

func (s *QuickSelectUpdateSketch) updateInt32(v int32) error {
	hash, err := s.table.HashInt32AndScreen(v)
	if err != nil {
		return acceptScreenErr(err)
	}
	return s.insert(hash)
}

// UpdateFloat64 canonicalizes NaN and -0.0 before hashing so bit patterns
// that compare equal under IEEE 754 also hash identically.
func (s *QuickSelectUpdateSketch) UpdateFloat64(v float64) error {
	return s.updateInt64(int64(math.Float64bits(canonicalDouble(v))))
}

func (s *QuickSelectUpdateSketch) UpdateFloat32(v float32) error {
	return s.UpdateFloat64(float64(v))
}

func canonicalDouble(v float64) float64 {
	if math.IsNaN(v) {
		return math.Float64frombits(0x7ff8000000000000)
	}
	if v == 0 {
		return 0
	}
	return v
}

// acceptScreenErr turns the two benign screening outcomes (hash landed
// above theta, or hashed to the reserved zero value) into a silent no-op,
// matching update()'s "reject below theta, otherwise absorb" contract.
func acceptScreenErr(err error) error {
	if err == ErrHashExceedsTheta || err == ErrZeroHashValue {
		return nil
	}
	return err
}

// Trim discards excess retained entries above the nominal size.
func (s *QuickSelectUpdateSketch) Trim() { s.table.Trim() }

// Reset returns the sketch to its just-constructed empty state.
func (s *QuickSelectUpdateSketch) Reset() { s.table.Reset() }

// Compact returns an immutable snapshot of the currently retained entries.
func (s *QuickSelectUpdateSketch) Compact(ordered bool) *CompactSketch {
	return newCompactSketchFromEntries(s.entriesSlice(), s.table.theta, s.table.isEmpty, s.SeedHash(), ordered)
}

// CompactOrdered is shorthand for Compact(true).
func (s *QuickSelectUpdateSketch) CompactOrdered() *CompactSketch { return s.Compact(true) }

func (s *QuickSelectUpdateSketch) entriesSlice() []uint64 {
	out := make([]uint64, 0, s.table.numEntries)
	for _, e := range s.table.entries {
		if e != 0 {
			out = append(out, e)
		}
	}
	return out
}

// Merge absorbs every retained entry of other into this sketch in place,
// applying the same theta-min / screen / insert steps as Update, without
// requiring the caller to materialize a Union.
func (s *QuickSelectUpdateSketch) Merge(other Sketch) error {
	if other.IsEmpty() {
		return nil
	}
	if other.SeedHash() != s.SeedHash() {
		return dserr.InvalidArg("theta.QuickSelectUpdateSketch.Merge", "seed hash mismatch")
	}
	s.table.isEmpty = false
	if other.Theta64() < s.table.theta {
		s.table.theta = other.Theta64()
		s.table.pruneToTheta()
	}
	for hash := range other.All() {
		h := hash
		if h >= s.table.theta {
			continue
		}
		if err := s.insert(h); err != nil && err != ErrDuplicateKey {
			return err
		}
	}
	s.table.Trim()
	return nil
}

// MergeCompact is Merge specialized for an ordered CompactSketch source: it
// can stop walking as soon as an entry exceeds the running theta.
func (s *QuickSelectUpdateSketch) MergeCompact(other *CompactSketch) error {
	if other.IsEmpty() {
		return nil
	}
	if other.SeedHash() != s.SeedHash() {
		return dserr.InvalidArg("theta.QuickSelectUpdateSketch.MergeCompact", "seed hash mismatch")
	}
	s.table.isEmpty = false
	if other.theta < s.table.theta {
		s.table.theta = other.theta
		s.table.pruneToTheta()
	}
	entries := other.entries
	if other.isOrdered {
		entries = append([]uint64(nil), other.entries...)
		sort.Slice(entries, func(i, j int) bool { return entries[i] < entries[j] })
	}
	for _, h := range entries {
		if h >= s.table.theta {
			if other.isOrdered {
				break
			}
			continue
		}
		if err := s.insert(h); err != nil && err != ErrDuplicateKey {
			return err
		}
	}
	s.table.Trim()
	return nil
}
