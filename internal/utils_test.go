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

package internal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wlauer/datasketches-go/internal"
)

func TestShortLERoundTrips(t *testing.T) {
	buf := make([]byte, 4)
	internal.PutShortLE(buf, 1, 0xBEEF&0xFFFF)
	assert.Equal(t, 0xBEEF&0xFFFF, internal.GetShortLE(buf, 1))
}

func TestInvPow2KnownValues(t *testing.T) {
	assert.Equal(t, 1.0, internal.InvPow2(0))
	assert.Equal(t, 0.5, internal.InvPow2(1))
	assert.Equal(t, 0.25, internal.InvPow2(2))
}

func TestBoolToInt(t *testing.T) {
	assert.Equal(t, 1, internal.BoolToInt(true))
	assert.Equal(t, 0, internal.BoolToInt(false))
}
