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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCouponListFullAtCapacity(t *testing.T) {
	l := newCouponList(8)
	for i := 0; i < listCapacity-1; i++ {
		l.add(makeCoupon(i, 1))
		assert.False(t, l.full())
	}
	l.add(makeCoupon(listCapacity-1, 1))
	assert.True(t, l.full())
}

func TestCouponListDeduplicatesExactRepeats(t *testing.T) {
	l := newCouponList(8)
	c := makeCoupon(3, 5)
	l.add(c)
	l.add(c)
	assert.Equal(t, 1, len(l.coupons))
}

func TestCouponSetPromotionFromList(t *testing.T) {
	l := newCouponList(8) // k=256
	for i := 0; i < listCapacity; i++ {
		l.add(makeCoupon(i, uint8(i+1)))
	}
	s := newCouponSetFromList(l)
	assert.Equal(t, listCapacity, s.count)
	assert.False(t, s.full()) // capacityThreshold = 256/4 = 64
}

func TestCouponSetPromotesToFullPastThreshold(t *testing.T) {
	s := &couponSet{lgConfigK: 4, lgArrInts: 5, entries: make([]uint32, 1<<5)} // k=16, threshold=4
	for i := 0; i < 5; i++ {
		s.add(makeCoupon(i, 1))
	}
	assert.True(t, s.full())
}

func TestCouponSetGrowsUnderLoad(t *testing.T) {
	s := &couponSet{lgConfigK: 12, lgArrInts: 5, entries: make([]uint32, 1<<5)}
	for i := 0; i < 40; i++ {
		s.add(makeCoupon(i, uint8(i%60+1)))
	}
	assert.Equal(t, 40, s.count)
	for i := 0; i < 40; i++ {
		_, found := s.find(makeCoupon(i, uint8(i%60+1)))
		assert.True(t, found, "index %d", i)
	}
}

func TestCouponSetAddIgnoresDuplicate(t *testing.T) {
	s := &couponSet{lgConfigK: 12, lgArrInts: 5, entries: make([]uint32, 1<<5)}
	c := makeCoupon(7, 9)
	s.add(c)
	s.add(c)
	assert.Equal(t, 1, s.count)
}
