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

import "github.com/wlauer/datasketches-go/dserr"

// Union folds any number of HLL sketches together into a single running
// result (C9/C10 for the HLL domain). Unlike the source implementation's
// mode-cross-product dispatch, every input — LIST, SET, or HLL — is folded
// in by replaying its (index, value) pairs through the destination's
// normal update path; this keeps the merge trivially commutative,
// associative, and idempotent at the cost of not special-casing small
// inputs for speed. Cross-lg_k union is out of scope: every input must
// share the accumulator's lg_k.
type Union struct {
	gadget *Sketch
}

// NewUnion creates an empty union accumulator targeting lgK/tgtType.
func NewUnion(lgK int, opts ...SketchOptionFunc) (*Union, error) {
	s, err := NewSketch(lgK, opts...)
	if err != nil {
		return nil, err
	}
	return &Union{gadget: s}, nil
}

// Update folds sketch's contents into the running union.
func (u *Union) Update(sketch *Sketch) error {
	if sketch.IsEmpty() {
		return nil
	}
	if err := checkSeedHash(u.gadget, sketch); err != nil {
		return err
	}
	if sketch.lgConfigK != u.gadget.lgConfigK {
		return dserr.InvalidArg("hll.Union.Update", "lg_k mismatch: %d vs %d", sketch.lgConfigK, u.gadget.lgConfigK)
	}
	var applyErr error
	sketch.forEachCoupon(func(index int, value uint8) bool {
		if err := u.gadget.applyCoupon(index, value); err != nil {
			applyErr = err
			return false
		}
		return true
	})
	if applyErr != nil {
		return applyErr
	}
	if u.gadget.mode == modeHLL {
		u.gadget.est.oosFlag = true
	}
	return nil
}

// Result returns an independent snapshot of the running union.
func (u *Union) Result() *Sketch { return u.gadget.Clone() }
