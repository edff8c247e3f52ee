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
	"github.com/juju/errors"

	"github.com/feedbench/feedbench/base"
)

// ErrInvalidRatio is returned by Split when the test ratio is outside (0, 1).
var ErrInvalidRatio = errors.New("split ratio must be in (0, 1)")

// Dataset contains preprocessed rating data for recommendation models. Once
// loaded, a dataset is treated as immutable: splits share the user and item
// indices of their parent so that dense indices stay comparable across
// train, test and the original dataset.
type Dataset struct {
	UserIndex     *base.Index
	ItemIndex     *base.Index
	FeedbackUsers []int32
	FeedbackItems []int32
	Ratings       []float32
	Timestamps    []int64
	UserFeedback  [][]int32 // item indices rated by each user
	ItemFeedback  [][]int32 // user indices who rated each item
}

// NewDataset creates an empty dataset.
func NewDataset() *Dataset {
	s := new(Dataset)
	s.UserIndex = base.NewMapIndex()
	s.ItemIndex = base.NewMapIndex()
	s.UserFeedback = make([][]int32, 0)
	s.ItemFeedback = make([][]int32, 0)
	return s
}

// AddFeedback inserts a rating given by a user to an item.
func (dataset *Dataset) AddFeedback(userId, itemId string, rating float32, timestamp int64) {
	dataset.UserIndex.Add(userId)
	dataset.ItemIndex.Add(itemId)
	userIndex := dataset.UserIndex.ToNumber(userId)
	itemIndex := dataset.ItemIndex.ToNumber(itemId)
	dataset.FeedbackUsers = append(dataset.FeedbackUsers, userIndex)
	dataset.FeedbackItems = append(dataset.FeedbackItems, itemIndex)
	dataset.Ratings = append(dataset.Ratings, rating)
	dataset.Timestamps = append(dataset.Timestamps, timestamp)
	for int(userIndex) >= len(dataset.UserFeedback) {
		dataset.UserFeedback = append(dataset.UserFeedback, make([]int32, 0))
	}
	dataset.UserFeedback[userIndex] = append(dataset.UserFeedback[userIndex], itemIndex)
	for int(itemIndex) >= len(dataset.ItemFeedback) {
		dataset.ItemFeedback = append(dataset.ItemFeedback, make([]int32, 0))
	}
	dataset.ItemFeedback[itemIndex] = append(dataset.ItemFeedback[itemIndex], userIndex)
}

// Count returns the number of interactions.
func (dataset *Dataset) Count() int {
	if len(dataset.FeedbackUsers) != len(dataset.FeedbackItems) {
		panic("dataset: corrupted feedback arrays")
	}
	return len(dataset.FeedbackUsers)
}

// UserCount returns the number of users.
func (dataset *Dataset) UserCount() int {
	return int(dataset.UserIndex.Len())
}

// ItemCount returns the number of items.
func (dataset *Dataset) ItemCount() int {
	return int(dataset.ItemIndex.Len())
}

// Get returns the i-th interaction by <user index, item index, rating>.
func (dataset *Dataset) Get(i int) (int32, int32, float32) {
	return dataset.FeedbackUsers[i], dataset.FeedbackItems[i], dataset.Ratings[i]
}

// GlobalMean computes the mean of all ratings.
func (dataset *Dataset) GlobalMean() float32 {
	if dataset.Count() == 0 {
		return 0
	}
	var sum float32
	for _, rating := range dataset.Ratings {
		sum += rating
	}
	return sum / float32(dataset.Count())
}

func createSliceOfSlice(n int) [][]int32 {
	x := make([][]int32, n)
	for i := range x {
		x[i] = make([]int32, 0)
	}
	return x
}

// newSplitSide creates an empty dataset sharing the indices of the parent.
func (dataset *Dataset) newSplitSide() *Dataset {
	side := new(Dataset)
	side.UserIndex = dataset.UserIndex
	side.ItemIndex = dataset.ItemIndex
	side.UserFeedback = createSliceOfSlice(dataset.UserCount())
	side.ItemFeedback = createSliceOfSlice(dataset.ItemCount())
	return side
}

func (dataset *Dataset) appendTo(side *Dataset, i int) {
	userIndex, itemIndex, rating := dataset.Get(i)
	side.FeedbackUsers = append(side.FeedbackUsers, userIndex)
	side.FeedbackItems = append(side.FeedbackItems, itemIndex)
	side.Ratings = append(side.Ratings, rating)
	side.Timestamps = append(side.Timestamps, dataset.Timestamps[i])
	side.UserFeedback[userIndex] = append(side.UserFeedback[userIndex], itemIndex)
	side.ItemFeedback[itemIndex] = append(side.ItemFeedback[itemIndex], userIndex)
}

// Split partitions interactions into a train set and a test set. Every
// interaction lands on exactly one side and the partition is a pure function
// of the seed. testRatio is the fraction of interactions assigned to the
// test set and must be in (0, 1).
func (dataset *Dataset) Split(testRatio float64, seed int64) (*Dataset, *Dataset, error) {
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, errors.Annotatef(ErrInvalidRatio, "ratio %v", testRatio)
	}
	trainSet := dataset.newSplitSide()
	testSet := dataset.newSplitSide()
	rng := base.NewRandomGenerator(seed)
	perm := rng.Perm(dataset.Count())
	testSize := int(float64(dataset.Count()) * testRatio)
	for _, i := range perm[:testSize] {
		dataset.appendTo(testSet, i)
	}
	for _, i := range perm[testSize:] {
		dataset.appendTo(trainSet, i)
	}
	return trainSet, testSet, nil
}
