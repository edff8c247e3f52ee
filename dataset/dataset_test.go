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

package dataset

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type interaction struct {
	userIndex int32
	itemIndex int32
	rating    float32
}

func interactions(dataset *Dataset) map[interaction]int {
	set := make(map[interaction]int)
	for i := 0; i < dataset.Count(); i++ {
		userIndex, itemIndex, rating := dataset.Get(i)
		set[interaction{userIndex, itemIndex, rating}]++
	}
	return set
}

// newTestDataset creates a dataset with numUsers users rating numItems items
// each.
func newTestDataset(numUsers, numItems int) *Dataset {
	dataset := NewDataset()
	for u := 0; u < numUsers; u++ {
		for i := 0; i < numItems; i++ {
			rating := float32((u+i)%5 + 1)
			dataset.AddFeedback(fmt.Sprintf("user%d", u), fmt.Sprintf("item%d", i), rating, int64(u*numItems+i))
		}
	}
	return dataset
}

func TestDataset_AddFeedback(t *testing.T) {
	dataset := newTestDataset(10, 20)
	assert.Equal(t, 200, dataset.Count())
	assert.Equal(t, 10, dataset.UserCount())
	assert.Equal(t, 20, dataset.ItemCount())
	for u := 0; u < 10; u++ {
		assert.Len(t, dataset.UserFeedback[u], 20)
	}
	for i := 0; i < 20; i++ {
		assert.Len(t, dataset.ItemFeedback[i], 10)
	}
	userIndex, itemIndex, rating := dataset.Get(0)
	assert.Equal(t, int32(0), userIndex)
	assert.Equal(t, int32(0), itemIndex)
	assert.Equal(t, float32(1), rating)
}

func TestDataset_GlobalMean(t *testing.T) {
	dataset := NewDataset()
	assert.Zero(t, dataset.GlobalMean())
	dataset.AddFeedback("1", "1", 1, 0)
	dataset.AddFeedback("1", "2", 5, 0)
	assert.Equal(t, float32(3), dataset.GlobalMean())
}

func TestDataset_Split(t *testing.T) {
	dataset := newTestDataset(10, 20)
	trainSet, testSet, err := dataset.Split(0.2, 42)
	assert.NoError(t, err)
	// sizes
	assert.Equal(t, 40, testSet.Count())
	assert.Equal(t, 160, trainSet.Count())
	// shared indices
	assert.Same(t, dataset.UserIndex, trainSet.UserIndex)
	assert.Same(t, dataset.ItemIndex, testSet.ItemIndex)
	// train and test are disjoint and their union is the original dataset
	trainInteractions := interactions(trainSet)
	testInteractions := interactions(testSet)
	union := make(map[interaction]int)
	for k, v := range trainInteractions {
		union[k] += v
	}
	for k, v := range testInteractions {
		union[k] += v
	}
	assert.Equal(t, interactions(dataset), union)
}

func TestDataset_SplitDeterminism(t *testing.T) {
	dataset := newTestDataset(10, 20)
	for _, seed := range []int64{0, 1, 42, 108} {
		train1, test1, err := dataset.Split(0.2, seed)
		assert.NoError(t, err)
		train2, test2, err := dataset.Split(0.2, seed)
		assert.NoError(t, err)
		assert.Equal(t, train1.FeedbackUsers, train2.FeedbackUsers)
		assert.Equal(t, train1.FeedbackItems, train2.FeedbackItems)
		assert.Equal(t, test1.FeedbackUsers, test2.FeedbackUsers)
		assert.Equal(t, test1.FeedbackItems, test2.FeedbackItems)
	}
	// different seeds produce different partitions
	_, test1, err := dataset.Split(0.2, 0)
	assert.NoError(t, err)
	_, test2, err := dataset.Split(0.2, 1)
	assert.NoError(t, err)
	assert.NotEqual(t, test1.FeedbackItems, test2.FeedbackItems)
}

func TestDataset_SplitRatio(t *testing.T) {
	dataset := newTestDataset(25, 40)
	for _, ratio := range []float64{0.1, 0.25, 0.5, 0.8} {
		_, testSet, err := dataset.Split(ratio, 0)
		assert.NoError(t, err)
		actual := float64(testSet.Count()) / float64(dataset.Count())
		assert.Less(t, math.Abs(actual-ratio), 1e-3)
	}
}

func TestDataset_SplitInvalidRatio(t *testing.T) {
	dataset := newTestDataset(10, 20)
	for _, ratio := range []float64{-1, 0, 1, 2} {
		_, _, err := dataset.Split(ratio, 0)
		assert.ErrorIs(t, err, ErrInvalidRatio)
	}
}
