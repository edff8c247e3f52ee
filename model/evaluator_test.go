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

	"github.com/scylladb/go-set/i32set"
	"github.com/stretchr/testify/assert"

	"github.com/feedbench/feedbench/dataset"
)

// mockEstimator scores pairs through a plain function.
type mockEstimator struct {
	BaseModel
	score func(userIndex, itemIndex int32) float32
}

func (m *mockEstimator) Fit(trainSet, valSet *dataset.Dataset, config *FitConfig) Score {
	return Score{}
}

func (m *mockEstimator) Predict(userId, itemId string) float32 { return 0 }

func (m *mockEstimator) InternalPredict(userIndex, itemIndex int32) float32 {
	return m.score(userIndex, itemIndex)
}

func (m *mockEstimator) Clear() {}

// newSide creates an empty dataset sharing the indices of parent, sized so
// that every indexed user and item has a feedback slot.
func newSide(parent *dataset.Dataset) *dataset.Dataset {
	side := new(dataset.Dataset)
	side.UserIndex = parent.UserIndex
	side.ItemIndex = parent.ItemIndex
	side.UserFeedback = make([][]int32, parent.UserCount())
	side.ItemFeedback = make([][]int32, parent.ItemCount())
	return side
}

// newRankSplit builds a train/test pair over numUsers users and 10 items:
// items 0-4 are train interactions, items 5 and 6 are held out, items 7-9
// appear in the catalog only.
func newRankSplit(numUsers int) (trainSet, testSet *dataset.Dataset) {
	parent := dataset.NewDataset()
	for u := 0; u < numUsers; u++ {
		for i := 0; i < 10; i++ {
			parent.AddFeedback(fmt.Sprintf("u%d", u), fmt.Sprintf("i%d", i), 1, 0)
		}
	}
	trainSet = newSide(parent)
	testSet = newSide(parent)
	for u := 0; u < numUsers; u++ {
		for i := 0; i < 5; i++ {
			trainSet.AddFeedback(fmt.Sprintf("u%d", u), fmt.Sprintf("i%d", i), 1, 0)
		}
		testSet.AddFeedback(fmt.Sprintf("u%d", u), "i5", 1, 0)
		testSet.AddFeedback(fmt.Sprintf("u%d", u), "i6", 1, 0)
	}
	return
}

func TestRMSE(t *testing.T) {
	testSet := dataset.NewDataset()
	testSet.AddFeedback("1", "1", 3, 0)
	testSet.AddFeedback("1", "2", 4, 0)
	testSet.AddFeedback("2", "1", 5, 0)
	ratings := make(map[[2]int32]float32)
	for i := 0; i < testSet.Count(); i++ {
		userIndex, itemIndex, rating := testSet.Get(i)
		ratings[[2]int32{userIndex, itemIndex}] = rating
	}
	perfect := &mockEstimator{score: func(userIndex, itemIndex int32) float32 {
		return ratings[[2]int32{userIndex, itemIndex}]
	}}
	rmse, err := RMSE(perfect, testSet)
	assert.NoError(t, err)
	assert.Zero(t, rmse)
	// constant offset of 1 gives RMSE 1
	offByOne := &mockEstimator{score: func(userIndex, itemIndex int32) float32 {
		return perfect.InternalPredict(userIndex, itemIndex) + 1
	}}
	rmse, err = RMSE(offByOne, testSet)
	assert.NoError(t, err)
	assert.InDelta(t, 1, rmse, 1e-6)
}

func TestRMSE_Empty(t *testing.T) {
	_, err := RMSE(&mockEstimator{}, dataset.NewDataset())
	assert.ErrorIs(t, err, ErrEmptyTestSet)
	_, err = RMSE(&mockEstimator{}, nil)
	assert.ErrorIs(t, err, ErrEmptyTestSet)
}

func TestEvaluateRank_Perfect(t *testing.T) {
	trainSet, testSet := newRankSplit(3)
	estimator := &mockEstimator{score: func(userIndex, itemIndex int32) float32 {
		if itemIndex == 5 || itemIndex == 6 {
			return 1
		}
		return 0
	}}
	// full catalog minus train items leaves candidates 5-9
	results, err := EvaluateRank(estimator, testSet, trainSet, 0, 0, 1, MRR, Recall, Precision, HR, NDCG)
	assert.NoError(t, err)
	assert.Equal(t, float32(1), results[0])
	assert.Equal(t, float32(1), results[1])
	assert.InDelta(t, float32(2)/5, results[2], 1e-6)
	assert.Equal(t, float32(1), results[3])
	assert.Equal(t, float32(1), results[4])
}

func TestEvaluateRank_Worst(t *testing.T) {
	trainSet, testSet := newRankSplit(3)
	estimator := &mockEstimator{score: func(userIndex, itemIndex int32) float32 {
		if itemIndex == 5 || itemIndex == 6 {
			return -1
		}
		return 0
	}}
	// targets sort behind items 7-9, the first hit lands at rank 4
	results, err := EvaluateRank(estimator, testSet, trainSet, 0, 0, 1, MRR, HR)
	assert.NoError(t, err)
	assert.InDelta(t, float32(1)/4, results[0], 1e-6)
	assert.Equal(t, float32(1), results[1])
}

func TestEvaluateRank_TopK(t *testing.T) {
	trainSet, testSet := newRankSplit(3)
	estimator := &mockEstimator{score: func(userIndex, itemIndex int32) float32 {
		if itemIndex == 5 || itemIndex == 6 {
			return 1
		}
		return 0
	}}
	results, err := EvaluateRank(estimator, testSet, trainSet, 2, 0, 1, Precision, Recall)
	assert.NoError(t, err)
	assert.Equal(t, float32(1), results[0])
	assert.Equal(t, float32(1), results[1])
}

func TestEvaluateRank_SkipUserWithoutTrainFeedback(t *testing.T) {
	// the last user has no train interactions and must not be counted
	trainSet, testSet := newRankSplit(4)
	trainSet.UserFeedback[3] = nil
	estimator := &mockEstimator{score: func(userIndex, itemIndex int32) float32 {
		if userIndex == 3 {
			return float32(itemIndex) // ranks item 9 first for the skipped user
		}
		if itemIndex == 5 || itemIndex == 6 {
			return 1
		}
		return 0
	}}
	results, err := EvaluateRank(estimator, testSet, trainSet, 0, 0, 1, MRR)
	assert.NoError(t, err)
	assert.Equal(t, float32(1), results[0])
}

func TestEvaluateRank_Parallel(t *testing.T) {
	trainSet, testSet := newRankSplit(16)
	estimator := &mockEstimator{score: func(userIndex, itemIndex int32) float32 {
		return float32((userIndex*7+itemIndex*13)%17) / 17
	}}
	single, err := EvaluateRank(estimator, testSet, trainSet, 0, 0, 1, MRR, NDCG)
	assert.NoError(t, err)
	parallel, err := EvaluateRank(estimator, testSet, trainSet, 0, 0, 4, MRR, NDCG)
	assert.NoError(t, err)
	assert.Equal(t, single, parallel)
}

func TestEvaluateRank_Candidates(t *testing.T) {
	trainSet, testSet := newRankSplit(3)
	estimator := &mockEstimator{score: func(userIndex, itemIndex int32) float32 {
		if itemIndex == 5 || itemIndex == 6 {
			return 1
		}
		return 0
	}}
	results, err := EvaluateRank(estimator, testSet, trainSet, 10, 3, 1, MRR)
	assert.NoError(t, err)
	assert.Equal(t, float32(1), results[0])
	// sampling is seeded per user, repeated runs agree
	again, err := EvaluateRank(estimator, testSet, trainSet, 10, 3, 1, MRR)
	assert.NoError(t, err)
	assert.Equal(t, results, again)
}

func TestEvaluateRank_Empty(t *testing.T) {
	trainSet, _ := newRankSplit(3)
	_, err := EvaluateRank(&mockEstimator{}, dataset.NewDataset(), trainSet, 0, 0, 1, MRR)
	assert.ErrorIs(t, err, ErrEmptyTestSet)
	_, err = EvaluateRank(&mockEstimator{}, nil, trainSet, 0, 0, 1, MRR)
	assert.ErrorIs(t, err, ErrEmptyTestSet)
}

func TestMRR(t *testing.T) {
	target := i32set.New(3)
	assert.Equal(t, float32(1), MRR(target, []int32{3, 1, 2}))
	assert.InDelta(t, float32(1)/3, MRR(target, []int32{1, 2, 3}), 1e-6)
	assert.Zero(t, MRR(target, []int32{1, 2, 4}))
}

func TestNDCG(t *testing.T) {
	target := i32set.New(1, 2, 3)
	assert.Equal(t, float32(1), NDCG(target, []int32{1, 2, 3}))
	assert.InDelta(t, 0.6654, NDCG(target, []int32{4, 1, 5, 2, 6, 3}), 1e-3)
}

func TestPrecisionRecall(t *testing.T) {
	target := i32set.New(1, 2, 3, 4)
	rankList := []int32{1, 2, 8, 9}
	assert.Equal(t, float32(0.5), Precision(target, rankList))
	assert.Equal(t, float32(0.5), Recall(target, rankList))
}

func TestHR(t *testing.T) {
	target := i32set.New(3)
	assert.Equal(t, float32(1), HR(target, []int32{1, 3}))
	assert.Zero(t, HR(target, []int32{1, 2}))
}
