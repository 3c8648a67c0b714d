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

package dserr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wlauer/datasketches-go/dserr"
)

func TestInvalidArg(t *testing.T) {
	err := dserr.InvalidArg("theta.Foo", "bad value %d", 42)
	assert.True(t, dserr.IsInvalidArgument(err))
	assert.False(t, dserr.IsIllegalState(err))
	assert.Contains(t, err.Error(), "theta.Foo")
	assert.Contains(t, err.Error(), "bad value 42")
}

func TestIllegalStateErr(t *testing.T) {
	err := dserr.IllegalStateErr("hll.Bar", "invariant broken")
	assert.True(t, dserr.IsIllegalState(err))
	assert.False(t, dserr.IsInvalidArgument(err))
}

func TestIsMatchesByKindNotIdentity(t *testing.T) {
	a := dserr.InvalidArg("op1", "msg1")
	b := dserr.InvalidArg("op2", "msg2")
	assert.True(t, errors.Is(a, b))

	c := dserr.IllegalStateErr("op3", "msg3")
	assert.False(t, errors.Is(a, c))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "invalid argument", dserr.InvalidArgument.String())
	assert.Equal(t, "illegal state", dserr.IllegalState.String())
}
