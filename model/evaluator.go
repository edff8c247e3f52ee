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
	"sort"

	"github.com/chewxy/math32"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/scylladb/go-set/i32set"
	"gonum.org/v1/gonum/stat"

	"github.com/feedbench/feedbench/base"
	"github.com/feedbench/feedbench/dataset"
)

// ErrEmptyTestSet is returned when evaluation is requested on a test set
// without interactions.
var ErrEmptyTestSet = errors.New("empty test set")

// RMSE computes the root mean square error between predicted and observed
// ratings over all test interactions. Only meaningful for explicit models.
func RMSE(estimator MatrixFactorization, testSet *dataset.Dataset) (float32, error) {
	if testSet == nil || testSet.Count() == 0 {
		return 0, errors.Trace(ErrEmptyTestSet)
	}
	squaredErrors := make([]float64, testSet.Count())
	for i := 0; i < testSet.Count(); i++ {
		userIndex, itemIndex, rating := testSet.Get(i)
		diff := float64(estimator.InternalPredict(userIndex, itemIndex) - rating)
		squaredErrors[i] = diff * diff
	}
	return math32.Sqrt(float32(stat.Mean(squaredErrors, nil))), nil
}

// Scorer is used by EvaluateRank in personalized ranking tasks. targetSet
// holds the held-out item indices of a user, rankList the recommended item
// indices ordered by predicted score.
type Scorer func(targetSet *i32set.Set, rankList []int32) float32

// EvaluateRank evaluates a model in ranking tasks. For every user present in
// the test set, items are ranked by predicted score with the user's train
// items excluded. If topK > 0, the rank list is cut off after topK items; if
// numCandidates > 0, ranking is restricted to the target items plus sampled
// negatives (cheap intra-fit validation), otherwise the full catalog is
// ranked. Users without train interactions carry no usable embedding and
// are skipped. Scores are averaged over counted users.
func EvaluateRank(estimator MatrixFactorization, testSet, excludeSet *dataset.Dataset,
	topK, numCandidates, nJobs int, scorers ...Scorer) ([]float32, error) {
	if testSet == nil || testSet.Count() == 0 {
		return nil, errors.Trace(ErrEmptyTestSet)
	}
	if nJobs < 1 {
		nJobs = 1
	}
	sums := make([][]float32, nJobs)
	for i := range sums {
		sums[i] = make([]float32, len(scorers))
	}
	counts := make([]float32, nJobs)
	numItems := int32(testSet.ItemCount())
	_ = base.Parallel(testSet.UserCount(), nJobs, func(workerId, userIndex int) error {
		target := testSet.UserFeedback[userIndex]
		if len(target) == 0 {
			return nil
		}
		exclude := excludeSet.UserFeedback[userIndex]
		if len(exclude) == 0 {
			// degenerate training input for this user
			return nil
		}
		targetSet := i32set.New(target...)
		excludeItems := i32set.New(exclude...)
		// Collect candidate items
		var candidates []int32
		if numCandidates > 0 {
			seen := mapset.NewSet[int32](target...)
			seen.Append(exclude...)
			rng := base.NewRandomGenerator(int64(userIndex))
			candidates = append(candidates, target...)
			candidates = append(candidates, rng.SampleInt32(0, numItems, numCandidates, seen)...)
		} else {
			for itemIndex := int32(0); itemIndex < numItems; itemIndex++ {
				if !excludeItems.Has(itemIndex) {
					candidates = append(candidates, itemIndex)
				}
			}
		}
		// Rank candidates by predicted score
		scores := make([]float32, len(candidates))
		for i, itemIndex := range candidates {
			scores[i] = estimator.InternalPredict(int32(userIndex), itemIndex)
		}
		order := make([]int, len(candidates))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(i, j int) bool {
			return scores[order[i]] > scores[order[j]]
		})
		rankList := make([]int32, len(order))
		for i, o := range order {
			rankList[i] = candidates[o]
		}
		if topK > 0 && len(rankList) > topK {
			rankList = rankList[:topK]
		}
		counts[workerId]++
		for i, scorer := range scorers {
			sums[workerId][i] += scorer(targetSet, rankList)
		}
		return nil
	})
	count := lo.Sum(counts)
	if count == 0 {
		return nil, errors.Trace(ErrEmptyTestSet)
	}
	results := make([]float32, len(scorers))
	for i := range results {
		for workerId := 0; workerId < nJobs; workerId++ {
			results[i] += sums[workerId][i]
		}
		results[i] /= count
	}
	return results, nil
}

// MRR means Mean Reciprocal Rank.
//
// The mean reciprocal rank is a statistic measure for evaluating any process
// that produces a list of possible responses to a sample of queries, ordered
// by probability of correctness. The reciprocal rank of a query response is
// the multiplicative inverse of the rank of the first correct answer: 1 for
// first place, 1/2 for second place, 1/3 for third place and so on.
func MRR(targetSet *i32set.Set, rankList []int32) float32 {
	for i, itemIndex := range rankList {
		if targetSet.Has(itemIndex) {
			return 1 / float32(i+1)
		}
	}
	return 0
}

// NDCG means Normalized Discounted Cumulative Gain.
func NDCG(targetSet *i32set.Set, rankList []int32) float32 {
	// IDCG = \sum^{|REL|}_{i=1} \frac {1} {\log_2(i+1)}
	idcg := float32(0)
	for i := 0; i < targetSet.Size() && i < len(rankList); i++ {
		idcg += 1 / math32.Log2(float32(i)+2)
	}
	// DCG = \sum^{N}_{i=1} \frac {2^{rel_i}-1} {\log_2(i+1)}
	dcg := float32(0)
	for i, itemIndex := range rankList {
		if targetSet.Has(itemIndex) {
			dcg += 1 / math32.Log2(float32(i)+2)
		}
	}
	return dcg / idcg
}

// Precision is the fraction of relevant items among the recommended items.
func Precision(targetSet *i32set.Set, rankList []int32) float32 {
	hit := float32(0)
	for _, itemIndex := range rankList {
		if targetSet.Has(itemIndex) {
			hit++
		}
	}
	return hit / float32(len(rankList))
}

// Recall is the fraction of relevant items that have been recommended over
// the total amount of relevant items.
func Recall(targetSet *i32set.Set, rankList []int32) float32 {
	hit := float32(0)
	for _, itemIndex := range rankList {
		if targetSet.Has(itemIndex) {
			hit++
		}
	}
	return hit / float32(targetSet.Size())
}

// HR means Hit Ratio.
func HR(targetSet *i32set.Set, rankList []int32) float32 {
	for _, itemIndex := range rankList {
		if targetSet.Has(itemIndex) {
			return 1
		}
	}
	return 0
}
