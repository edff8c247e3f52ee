// Copyright 2026 feedbench Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParams_GetInt(t *testing.T) {
	p := Params{NEpochs: 10}
	assert.Equal(t, 10, p.GetInt(NEpochs, 100))
	assert.Equal(t, 100, p.GetInt(NFactors, 100))
	// type mismatch falls back to the default
	p[NEpochs] = "10"
	assert.Equal(t, 100, p.GetInt(NEpochs, 100))
}

func TestParams_GetInt64(t *testing.T) {
	p := Params{RandomState: int64(42)}
	assert.Equal(t, int64(42), p.GetInt64(RandomState, 0))
	p[RandomState] = 42
	assert.Equal(t, int64(42), p.GetInt64(RandomState, 0))
	assert.Equal(t, int64(0), p.GetInt64(NEpochs, 0))
}

func TestParams_GetFloat32(t *testing.T) {
	p := Params{Lr: float32(0.05)}
	assert.Equal(t, float32(0.05), p.GetFloat32(Lr, 0.1))
	p[Lr] = 0.05
	assert.Equal(t, float32(0.05), p.GetFloat32(Lr, 0.1))
	p[Lr] = 1
	assert.Equal(t, float32(1), p.GetFloat32(Lr, 0.1))
	assert.Equal(t, float32(0.1), p.GetFloat32(Reg, 0.1))
}

func TestParams_Copy(t *testing.T) {
	p := Params{Lr: 0.05, NEpochs: 10}
	q := p.Copy()
	q[NEpochs] = 20
	assert.Equal(t, 10, p.GetInt(NEpochs, 0))
	assert.Equal(t, 20, q.GetInt(NEpochs, 0))
}
