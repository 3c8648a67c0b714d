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
	"github.com/wlauer/datasketches-go/dserr"
	"github.com/wlauer/datasketches-go/internal"
)

// Union is the mutable accumulator behind the union set operation (C10):
// repeated Update calls fold each input sketch's retained entries in, and
// Result trims the retained set to the nominal size.
type Union struct {
	table  *Hashtable
	policy Policy
	seed   uint64
}

type unionOptions struct {
	lgK  uint8
	rf   ResizeFactor
	p    float32
	seed uint64
}

// UnionOptionFunc configures NewUnion.
type UnionOptionFunc func(*unionOptions)

// WithUnionLgK sets log2 of the nominal number of entries retained by the
// union's internal accumulator.
func WithUnionLgK(lgK uint8) UnionOptionFunc { return func(o *unionOptions) { o.lgK = lgK } }

// WithUnionResizeFactor sets the accumulator's hash table growth factor.
func WithUnionResizeFactor(rf ResizeFactor) UnionOptionFunc {
	return func(o *unionOptions) { o.rf = rf }
}

// WithUnionSketchP sets the accumulator's initial sampling probability.
func WithUnionSketchP(p float32) UnionOptionFunc { return func(o *unionOptions) { o.p = p } }

// WithUnionSeed sets the MurmurHash3 seed all inputs must share.
func WithUnionSeed(seed uint64) UnionOptionFunc { return func(o *unionOptions) { o.seed = seed } }

// NewUnion creates an empty union accumulator.
func NewUnion(opts ...UnionOptionFunc) (*Union, error) {
	o := unionOptions{lgK: DefaultLgK, rf: DefaultResizeFactor, p: 1.0, seed: DefaultSeed}
	for _, opt := range opts {
		opt(&o)
	}
	if o.lgK < MinLgK || o.lgK > MaxLgK {
		return nil, dserr.InvalidArg("theta.NewUnion", "lg_k %d out of range [%d,%d]", o.lgK, MinLgK, MaxLgK)
	}
	lgCurSize := startingSubMultiple(o.lgK+1, MinLgK, uint8(o.rf))
	theta := startingThetaFromP(o.p)
	table := NewHashtable(lgCurSize, o.lgK, o.rf, o.p, theta, o.seed, true)
	return &Union{table: table, policy: PolicyUnion, seed: o.seed}, nil
}

func (u *Union) Policy() Policy { return u.policy }

// Reset returns the accumulator to its just-constructed empty state.
func (u *Union) Reset() { u.table.Reset() }

// Update folds sketch's retained entries into the running union.
func (u *Union) Update(sketch Sketch) error {
	if sketch.IsEmpty() {
		return nil
	}
	seedHash := internal.ComputeSeedHash(u.seed)
	if sketch.SeedHash() != seedHash {
		return dserr.InvalidArg("theta.Union.Update", "seed hash mismatch")
	}
	u.table.isEmpty = false
	if sketch.Theta64() < u.table.theta {
		u.table.theta = sketch.Theta64()
		u.table.pruneToTheta()
	}
	for hash := range sketch.All() {
		if hash >= u.table.theta {
			if sketch.IsOrdered() {
				break
			}
			continue
		}
		index, err := u.table.Find(hash)
		if err == ErrKeyNotFound {
			u.table.Insert(index, hash)
		}
	}
	return nil
}

// Result materializes the running union as a CompactSketch, quickselecting
// down to the nominal size first if the accumulator has grown past it.
func (u *Union) Result(ordered bool) (*CompactSketch, error) {
	seedHash := internal.ComputeSeedHash(u.seed)
	if u.table.isEmpty && u.table.numEntries == 0 {
		return NewEmptyCompactSketch(seedHash), nil
	}

	nominalNum := uint32(1) << u.table.lgNomSize
	theta := u.table.theta

	entries := u.table.liveEntries()

	if uint32(len(entries)) > nominalNum {
		theta = selectRankedHash(entries, 0, len(entries)-1, int(nominalNum))
		entries = entries[:nominalNum]
	}

	return newCompactSketchFromEntries(entries, theta, u.table.isEmpty, seedHash, ordered), nil
}

// OrderedResult is shorthand for Result(true).
func (u *Union) OrderedResult() (*CompactSketch, error) { return u.Result(true) }
