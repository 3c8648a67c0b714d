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

// intersectionState names the two lifecycle states explicitly, rather than
// inferring "has a result yet" from nil checks (mirrors
// inplace_theta_intersection_impl.hpp's is_valid_ flag).
type intersectionState int

const (
	uninitialized intersectionState = iota
	active
)

// Intersection is the mutable accumulator behind the intersect set
// operation (C5): repeated Update calls narrow the retained set down to
// entries seen in every sketch presented so far.
type Intersection struct {
	table  *Hashtable
	policy Policy
	seed   uint64
	state  intersectionState
}

type intersectionOptions struct {
	policy Policy
	seed   uint64
}

// IntersectionOptionFunc configures NewIntersection.
type IntersectionOptionFunc func(*intersectionOptions)

// WithIntersectionPolicy overrides the default PolicyIntersect (only
// PolicyIntersect is meaningful here; retained for symmetry with Union).
func WithIntersectionPolicy(p Policy) IntersectionOptionFunc {
	return func(o *intersectionOptions) { o.policy = p }
}

// WithIntersectionSeed sets the MurmurHash3 seed all inputs must share.
func WithIntersectionSeed(seed uint64) IntersectionOptionFunc {
	return func(o *intersectionOptions) { o.seed = seed }
}

// NewIntersection creates an intersection accumulator with no inputs yet.
func NewIntersection(opts ...IntersectionOptionFunc) *Intersection {
	o := intersectionOptions{policy: PolicyIntersect, seed: DefaultSeed}
	for _, opt := range opts {
		opt(&o)
	}
	return &Intersection{
		table:  NewHashtable(0, 0, ResizeX1, 1.0, MaxTheta, o.seed, false),
		policy: o.policy,
		seed:   o.seed,
	}
}

func (in *Intersection) Policy() Policy { return in.policy }

// HasResult reports whether at least one Update has been applied.
func (in *Intersection) HasResult() bool { return in.state == active }

// Update intersects sketch into the running result. The very first Update
// establishes the baseline (a copy of sketch's retained entries below the
// running theta); every subsequent Update keeps only entries present in
// both the running result and sketch.
func (in *Intersection) Update(sketch Sketch) error {
	const op = "theta.Intersection.Update"
	seedHash := internal.ComputeSeedHash(in.seed)

	// Absorbing empty: once the running result is known empty, further
	// updates cannot un-empty it, but the seed is still checked so a
	// mismatched sketch is rejected rather than silently ignored (spec.md
	// §9 open question resolution).
	if in.state == active && in.table.numEntries == 0 && in.table.theta == MaxTheta && in.table.isEmpty {
		if sketch.SeedHash() != seedHash {
			return dserr.InvalidArg(op, "seed hash mismatch")
		}
		return nil
	}

	if sketch.SeedHash() != seedHash {
		return dserr.InvalidArg(op, "seed hash mismatch")
	}

	if in.state == uninitialized {
		in.state = active
		in.table.isEmpty = sketch.IsEmpty()
		in.table.theta = sketch.Theta64()
		if sketch.IsEmpty() || sketch.NumRetained() == 0 {
			in.table.numEntries = 0
			in.table.entries = nil
			in.table.lgCurSize = 0
			return nil
		}
		lgSize := internal.LgSizeFromCount(int(sketch.NumRetained()), rebuildThreshold)
		if lgSize < MinLgK {
			lgSize = MinLgK
		}
		in.table.lgCurSize = lgSize
		in.table.lgNomSize = lgSize - 1
		in.table.entries = make([]uint64, 1<<lgSize)
		in.table.numEntries = 0
		seen := make(map[uint64]struct{}, sketch.NumRetained())
		for hash := range sketch.All() {
			if hash >= in.table.theta {
				continue
			}
			if _, dup := seen[hash]; dup {
				continue
			}
			seen[hash] = struct{}{}
			index, ferr := in.table.Find(hash)
			if ferr == nil {
				continue
			}
			in.table.entries[index] = hash
			in.table.numEntries++
		}
		return nil
	}

	in.table.isEmpty = in.table.isEmpty || sketch.IsEmpty()
	if sketch.Theta64() < in.table.theta {
		in.table.theta = sketch.Theta64()
	}

	if in.table.numEntries == 0 || sketch.NumRetained() == 0 {
		in.table.numEntries = 0
		in.table.entries = nil
		in.table.lgCurSize = 0
		return nil
	}

	matches := make([]uint64, 0, in.table.numEntries)
	matchCount := 0
	for hash := range sketch.All() {
		if hash >= in.table.theta {
			if sketch.IsOrdered() {
				break
			}
			continue
		}
		if _, ferr := in.table.Find(hash); ferr == nil {
			matches = append(matches, hash)
			matchCount++
		}
		if matchCount == int(in.table.numEntries) {
			break
		}
	}

	if matchCount == 0 {
		in.table.numEntries = 0
		in.table.entries = nil
		in.table.lgCurSize = 0
		if in.table.theta == MaxTheta {
			in.table.isEmpty = true
		}
		return nil
	}

	lgSize := internal.LgSizeFromCount(matchCount, rebuildThreshold)
	if lgSize < MinLgK {
		lgSize = MinLgK
	}
	in.table.lgCurSize = lgSize
	in.table.lgNomSize = lgSize - 1
	in.table.entries = make([]uint64, 1<<lgSize)
	in.table.numEntries = 0
	for _, hash := range matches {
		index, ferr := in.table.Find(hash)
		if ferr != nil {
			in.table.entries[index] = hash
			in.table.numEntries++
		}
	}
	return nil
}

// Result materializes the running intersection as a CompactSketch. It is
// an error to call Result before any Update.
func (in *Intersection) Result(ordered bool) (*CompactSketch, error) {
	if in.state == uninitialized {
		return nil, dserr.InvalidArg("theta.Intersection.Result", "no Update has been applied yet")
	}
	entries := make([]uint64, 0, in.table.numEntries)
	for _, e := range in.table.entries {
		if e != 0 {
			entries = append(entries, e)
		}
	}
	seedHash := internal.ComputeSeedHash(in.seed)
	return newCompactSketchFromEntries(entries, in.table.theta, in.table.isEmpty, seedHash, ordered), nil
}

// OrderedResult is shorthand for Result(true).
func (in *Intersection) OrderedResult() (*CompactSketch, error) { return in.Result(true) }
