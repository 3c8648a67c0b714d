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

import "iter"

// Sketch is the read side shared by QuickSelectUpdateSketch and
// CompactSketch: everything needed to estimate cardinality, bound the
// estimate, and walk the retained hash values.
type Sketch interface {
	IsEmpty() bool
	IsOrdered() bool
	Theta64() uint64
	Theta() float64
	NumRetained() uint32
	SeedHash() uint16
	Estimate() float64
	LowerBound(numStdDev uint) (float64, error)
	UpperBound(numStdDev uint) (float64, error)
	IsEstimationMode() bool
	All() iter.Seq[uint64]
	String() string
}

// Policy is the set operation applied to matched or unmatched entries
// during a Union or Intersection walk (C10, C5).
type Policy int

const (
	// PolicyUnion keeps every entry seen from either side.
	PolicyUnion Policy = iota
	// PolicyIntersect keeps only entries seen from both sides.
	PolicyIntersect
	// PolicyAMinusB keeps entries seen from A that never appear in B.
	PolicyAMinusB
)
