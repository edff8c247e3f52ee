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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/feedbench/feedbench/dataset"
)

// newExplicitBlocks builds a two-block rating matrix: users 0-5 rate items
// 0-5 with 5 and items 6-11 with 1, users 6-11 the other way around.
func newExplicitBlocks() *dataset.Dataset {
	data := dataset.NewDataset()
	for u := 0; u < 12; u++ {
		for i := 0; i < 12; i++ {
			rating := float32(1)
			if (u < 6) == (i < 6) {
				rating = 5
			}
			data.AddFeedback(fmt.Sprintf("u%d", u), fmt.Sprintf("i%d", i), rating, 0)
		}
	}
	return data
}

// newImplicitBlocks builds two disjoint communities: users 0-5 interact with
// items 0-5 and users 6-11 with items 6-11. One same-community item per user
// is held out into the test set.
func newImplicitBlocks() (trainSet, testSet *dataset.Dataset) {
	parent := dataset.NewDataset()
	for u := 0; u < 12; u++ {
		for i := 0; i < 12; i++ {
			parent.AddFeedback(fmt.Sprintf("u%d", u), fmt.Sprintf("i%d", i), 1, 0)
		}
	}
	trainSet = newSide(parent)
	testSet = newSide(parent)
	for u := 0; u < 12; u++ {
		group := u / 6
		held := group*6 + u%6
		for i := group * 6; i < group*6+6; i++ {
			if i == held {
				testSet.AddFeedback(fmt.Sprintf("u%d", u), fmt.Sprintf("i%d", i), 1, 0)
			} else {
				trainSet.AddFeedback(fmt.Sprintf("u%d", u), fmt.Sprintf("i%d", i), 1, 0)
			}
		}
	}
	return
}

// communityScores returns the mean predicted score of a user over the items
// inside and outside the user's community.
func communityScores(m MatrixFactorization, userIndex int32) (inside, outside float32) {
	group := userIndex / 6
	for i := int32(0); i < 12; i++ {
		if i/6 == group {
			inside += m.InternalPredict(userIndex, i)
		} else {
			outside += m.InternalPredict(userIndex, i)
		}
	}
	return inside / 6, outside / 6
}

func TestNewFitConfig(t *testing.T) {
	config := NewFitConfig()
	assert.Equal(t, 1, config.Jobs)
	assert.Equal(t, 10, config.Verbose)
	assert.Equal(t, 100, config.Candidates)
	assert.Equal(t, 10, config.TopK)
	config = config.SetJobs(4).SetVerbose(5)
	assert.Equal(t, 4, config.Jobs)
	assert.Equal(t, 5, config.Verbose)
}

func TestFitConfig_LoadDefaultIfNil(t *testing.T) {
	var config *FitConfig
	assert.Equal(t, NewFitConfig(), config.LoadDefaultIfNil())
	config = NewFitConfig().SetJobs(8)
	assert.Same(t, config, config.LoadDefaultIfNil())
}

func TestBaseModel_SetParams(t *testing.T) {
	model := new(BaseModel)
	model.SetParams(Params{RandomState: int64(42)})
	assert.Equal(t, Params{RandomState: int64(42)}, model.GetParams())
	a := model.GetRandomGenerator().Int63()
	model.SetParams(Params{RandomState: int64(42)})
	b := model.GetRandomGenerator().Int63()
	assert.Equal(t, a, b)
}
