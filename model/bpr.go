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
	"time"

	"github.com/chewxy/math32"
	"github.com/scylladb/go-set/i32set"
	"go.uber.org/zap"

	"github.com/feedbench/feedbench/base"
	"github.com/feedbench/feedbench/base/floats"
	"github.com/feedbench/feedbench/base/log"
	"github.com/feedbench/feedbench/dataset"
)

// BPR means Bayesian Personalized Ranking, a pairwise learning algorithm for
// matrix factorization models with implicit feedback. Rating values are
// ignored: the training signal is the presence of an interaction. The
// pairwise ranking between item i and j for user u is estimated by:
//
//	p(i >_u j) = \sigma( p_u^T (q_i - q_j) )
//
// Hyper-parameters:
//
//	Reg        - The regularization parameter of the cost function that is
//	             optimized. Default is 0.01.
//	Lr         - The learning rate of SGD. Default is 0.05.
//	NFactors   - The number of latent factors. Default is 10.
//	NEpochs    - The number of iterations of the SGD procedure. Default is 100.
//	InitMean   - The mean of initial random latent factors. Default is 0.
//	InitStdDev - The standard deviation of initial random latent factors. Default is 0.001.
type BPR struct {
	BaseMatrixFactorization
	// Model parameters
	UserFactor [][]float32 // p_u
	ItemFactor [][]float32 // q_i
	// Hyper parameters
	nFactors   int
	nEpochs    int
	lr         float32
	reg        float32
	initMean   float32
	initStdDev float32
}

// NewBPR creates a BPR model.
func NewBPR(params Params) *BPR {
	bpr := new(BPR)
	bpr.SetParams(params)
	return bpr
}

// SetParams sets hyper-parameters of the BPR model.
func (bpr *BPR) SetParams(params Params) {
	bpr.BaseModel.SetParams(params)
	bpr.nFactors = bpr.Params.GetInt(NFactors, 10)
	bpr.nEpochs = bpr.Params.GetInt(NEpochs, 100)
	bpr.lr = bpr.Params.GetFloat32(Lr, 0.05)
	bpr.reg = bpr.Params.GetFloat32(Reg, 0.01)
	bpr.initMean = bpr.Params.GetFloat32(InitMean, 0)
	bpr.initStdDev = bpr.Params.GetFloat32(InitStdDev, 0.001)
}

// Predict by the BPR model.
func (bpr *BPR) Predict(userId, itemId string) float32 {
	userIndex := bpr.UserIndex.ToNumber(userId)
	itemIndex := bpr.ItemIndex.ToNumber(itemId)
	if userIndex == base.NotId {
		log.Logger().Warn("unknown user", zap.String("user_id", userId))
	}
	if itemIndex == base.NotId {
		log.Logger().Warn("unknown item", zap.String("item_id", itemId))
	}
	return bpr.InternalPredict(userIndex, itemIndex)
}

func (bpr *BPR) InternalPredict(userIndex, itemIndex int32) float32 {
	if userIndex == base.NotId || itemIndex == base.NotId {
		return 0
	}
	// q_i^T p_u
	return floats.Dot(bpr.UserFactor[userIndex], bpr.ItemFactor[itemIndex])
}

// Fit the BPR model. Each epoch draws trainSet.Count() triples (u, i, j)
// where i is a positive item of user u and j a sampled unobserved item.
func (bpr *BPR) Fit(trainSet, valSet *dataset.Dataset, config *FitConfig) Score {
	config = config.LoadDefaultIfNil()
	log.Logger().Info("fit bpr",
		zap.Int("train_set_size", trainSet.Count()),
		zap.Any("params", bpr.GetParams()),
		zap.Any("config", config))
	bpr.Init(trainSet)
	bpr.UserFactor = bpr.GetRandomGenerator().NormalMatrix(trainSet.UserCount(), bpr.nFactors, bpr.initMean, bpr.initStdDev)
	bpr.ItemFactor = bpr.GetRandomGenerator().NormalMatrix(trainSet.ItemCount(), bpr.nFactors, bpr.initMean, bpr.initStdDev)
	// Create buffers
	temp := floats.NewMatrix32(config.Jobs, bpr.nFactors)
	userFactor := floats.NewMatrix32(config.Jobs, bpr.nFactors)
	positiveItemFactor := floats.NewMatrix32(config.Jobs, bpr.nFactors)
	negativeItemFactor := floats.NewMatrix32(config.Jobs, bpr.nFactors)
	cost := make([]float32, config.Jobs)
	rng := make([]base.RandomGenerator, config.Jobs)
	for i := 0; i < config.Jobs; i++ {
		rng[i] = base.NewRandomGenerator(bpr.GetRandomGenerator().Int63())
	}
	// Convert slices to sets
	userFeedback := make([]*i32set.Set, trainSet.UserCount())
	for u := range userFeedback {
		userFeedback[u] = i32set.New(trainSet.UserFeedback[u]...)
	}
	score := Score{}
	for epoch := 1; epoch <= bpr.nEpochs; epoch++ {
		fitStart := time.Now()
		for i := range cost {
			cost[i] = 0
		}
		_ = base.Parallel(trainSet.Count(), config.Jobs, func(workerId, _ int) error {
			// Select a user
			var userIndex int32
			var ratingCount int
			for {
				userIndex = rng[workerId].Int31n(int32(trainSet.UserCount()))
				ratingCount = len(trainSet.UserFeedback[userIndex])
				if ratingCount > 0 {
					break
				}
			}
			posIndex := trainSet.UserFeedback[userIndex][rng[workerId].Intn(ratingCount)]
			// Select a negative sample
			negIndex := int32(-1)
			for {
				temp := rng[workerId].Int31n(int32(trainSet.ItemCount()))
				if !userFeedback[userIndex].Has(temp) {
					negIndex = temp
					break
				}
			}
			diff := bpr.InternalPredict(userIndex, posIndex) - bpr.InternalPredict(userIndex, negIndex)
			cost[workerId] += math32.Log(1 + math32.Exp(-diff))
			grad := math32.Exp(-diff) / (1.0 + math32.Exp(-diff))
			// Pairwise update
			copy(userFactor[workerId], bpr.UserFactor[userIndex])
			copy(positiveItemFactor[workerId], bpr.ItemFactor[posIndex])
			copy(negativeItemFactor[workerId], bpr.ItemFactor[negIndex])
			// Update positive item latent factor: +w_u
			floats.MulConstTo(userFactor[workerId], grad, temp[workerId])
			floats.MulConstAddTo(positiveItemFactor[workerId], -bpr.reg, temp[workerId])
			floats.MulConstAddTo(temp[workerId], bpr.lr, bpr.ItemFactor[posIndex])
			// Update negative item latent factor: -w_u
			floats.MulConstTo(userFactor[workerId], -grad, temp[workerId])
			floats.MulConstAddTo(negativeItemFactor[workerId], -bpr.reg, temp[workerId])
			floats.MulConstAddTo(temp[workerId], bpr.lr, bpr.ItemFactor[negIndex])
			// Update user latent factor: h_i - h_j
			floats.SubTo(positiveItemFactor[workerId], negativeItemFactor[workerId], temp[workerId])
			floats.MulConst(temp[workerId], grad)
			floats.MulConstAddTo(userFactor[workerId], -bpr.reg, temp[workerId])
			floats.MulConstAddTo(temp[workerId], bpr.lr, bpr.UserFactor[userIndex])
			return nil
		})
		fitTime := time.Since(fitStart)
		// Validation
		if valSet != nil && valSet.Count() > 0 && (epoch%config.Verbose == 0 || epoch == bpr.nEpochs) {
			evalStart := time.Now()
			scores, err := EvaluateRank(bpr, valSet, trainSet, config.TopK, config.Candidates, config.Jobs,
				NDCG, Precision, Recall)
			evalTime := time.Since(evalStart)
			if err == nil {
				score = Score{NDCG: scores[0], Precision: scores[1], Recall: scores[2]}
				log.Logger().Debug(fmt.Sprintf("fit bpr %v/%v", epoch, bpr.nEpochs),
					zap.String("fit_time", fitTime.String()),
					zap.String("eval_time", evalTime.String()),
					zap.Float32(fmt.Sprintf("NDCG@%v", config.TopK), scores[0]),
					zap.Float32(fmt.Sprintf("Precision@%v", config.TopK), scores[1]),
					zap.Float32(fmt.Sprintf("Recall@%v", config.TopK), scores[2]))
			}
		}
	}
	log.Logger().Info("fit bpr complete",
		zap.Float32("NDCG", score.NDCG),
		zap.Float32("Precision", score.Precision),
		zap.Float32("Recall", score.Recall))
	return score
}

// Clear model weights.
func (bpr *BPR) Clear() {
	bpr.UserIndex = nil
	bpr.ItemIndex = nil
	bpr.UserFactor = nil
	bpr.ItemFactor = nil
}
