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
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectRankedHashMatchesSortedOrder(t *testing.T) {
	data := []uint64{9, 3, 7, 1, 8, 2, 6, 4, 5, 10}
	sorted := append([]uint64(nil), data...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	for rank := 0; rank < len(data); rank++ {
		arr := append([]uint64(nil), data...)
		got := selectRankedHash(arr, 0, len(arr)-1, rank)
		assert.Equal(t, sorted[rank], got)
		assert.Equal(t, sorted[rank], arr[rank])
		for _, v := range arr[:rank] {
			assert.LessOrEqual(t, v, arr[rank])
		}
		for _, v := range arr[rank+1:] {
			assert.GreaterOrEqual(t, v, arr[rank])
		}
	}
}

func TestSelectRankedHashSingleElement(t *testing.T) {
	arr := []uint64{42}
	assert.Equal(t, uint64(42), selectRankedHash(arr, 0, 0, 0))
}

func TestSelectRankedHashWithDuplicates(t *testing.T) {
	arr := []uint64{5, 5, 5, 1, 5, 9, 5}
	got := selectRankedHash(arr, 0, len(arr)-1, 3)
	assert.Equal(t, uint64(5), got)
}
