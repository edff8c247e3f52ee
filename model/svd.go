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

	"go.uber.org/zap"

	"github.com/feedbench/feedbench/base"
	"github.com/feedbench/feedbench/base/floats"
	"github.com/feedbench/feedbench/base/log"
	"github.com/feedbench/feedbench/dataset"
)

// SVD is the matrix factorization algorithm for explicit feedback, as
// popularized by Simon Funk during the Netflix Prize. The prediction
// \hat{r}_{ui} is set as:
//
//	\hat{r}_{ui} = \mu + b_u + b_i + q_i^T p_u
//
// If user u is unknown, the bias b_u and the factors p_u are assumed to be
// zero. The same applies for item i with b_i and q_i. Parameters are
// optimized by SGD on the squared error between predicted and observed
// ratings, iterating shuffled mini-batches.
//
// Hyper-parameters:
//
//	Reg        - The regularization parameter of the cost function that is
//	             optimized. Default is 0.02.
//	Lr         - The learning rate of SGD. Default is 0.005.
//	NFactors   - The number of latent factors. Default is 100.
//	NEpochs    - The number of iterations of the SGD procedure. Default is 20.
//	BatchSize  - The size of mini-batches. Default is 128.
//	InitMean   - The mean of initial random latent factors. Default is 0.
//	InitStdDev - The standard deviation of initial random latent factors. Default is 0.1.
type SVD struct {
	BaseMatrixFactorization
	// Model parameters
	UserFactor [][]float32 // p_u
	ItemFactor [][]float32 // q_i
	UserBias   []float32   // b_u
	ItemBias   []float32   // b_i
	GlobalBias float32     // mu
	// Hyper parameters
	nFactors   int
	nEpochs    int
	batchSize  int
	lr         float32
	reg        float32
	initMean   float32
	initStdDev float32
}

// NewSVD creates an SVD model.
func NewSVD(params Params) *SVD {
	svd := new(SVD)
	svd.SetParams(params)
	return svd
}

// SetParams sets hyper-parameters of the SVD model.
func (svd *SVD) SetParams(params Params) {
	svd.BaseModel.SetParams(params)
	svd.nFactors = svd.Params.GetInt(NFactors, 100)
	svd.nEpochs = svd.Params.GetInt(NEpochs, 20)
	svd.batchSize = svd.Params.GetInt(BatchSize, 128)
	svd.lr = svd.Params.GetFloat32(Lr, 0.005)
	svd.reg = svd.Params.GetFloat32(Reg, 0.02)
	svd.initMean = svd.Params.GetFloat32(InitMean, 0)
	svd.initStdDev = svd.Params.GetFloat32(InitStdDev, 0.1)
}

// Predict by the SVD model.
func (svd *SVD) Predict(userId, itemId string) float32 {
	userIndex := svd.UserIndex.ToNumber(userId)
	itemIndex := svd.ItemIndex.ToNumber(itemId)
	if userIndex == base.NotId {
		log.Logger().Warn("unknown user", zap.String("user_id", userId))
	}
	if itemIndex == base.NotId {
		log.Logger().Warn("unknown item", zap.String("item_id", itemId))
	}
	return svd.InternalPredict(userIndex, itemIndex)
}

func (svd *SVD) InternalPredict(userIndex, itemIndex int32) float32 {
	ret := svd.GlobalBias
	// + b_u
	if userIndex != base.NotId {
		ret += svd.UserBias[userIndex]
	}
	// + b_i
	if itemIndex != base.NotId {
		ret += svd.ItemBias[itemIndex]
	}
	// + q_i^T p_u
	if userIndex != base.NotId && itemIndex != base.NotId {
		ret += floats.Dot(svd.UserFactor[userIndex], svd.ItemFactor[itemIndex])
	}
	return ret
}

// Fit the SVD model.
func (svd *SVD) Fit(trainSet, valSet *dataset.Dataset, config *FitConfig) Score {
	config = config.LoadDefaultIfNil()
	log.Logger().Info("fit svd",
		zap.Int("train_set_size", trainSet.Count()),
		zap.Any("params", svd.GetParams()),
		zap.Any("config", config))
	svd.Init(trainSet)
	// Initialize parameters
	svd.GlobalBias = trainSet.GlobalMean()
	svd.UserBias = make([]float32, trainSet.UserCount())
	svd.ItemBias = make([]float32, trainSet.ItemCount())
	svd.UserFactor = svd.GetRandomGenerator().NormalMatrix(trainSet.UserCount(), svd.nFactors, svd.initMean, svd.initStdDev)
	svd.ItemFactor = svd.GetRandomGenerator().NormalMatrix(trainSet.ItemCount(), svd.nFactors, svd.initMean, svd.initStdDev)
	// Create buffers
	a := make([]float32, svd.nFactors)
	b := make([]float32, svd.nFactors)
	score := Score{}
	for epoch := 1; epoch <= svd.nEpochs; epoch++ {
		fitStart := time.Now()
		cost := float32(0)
		perm := svd.GetRandomGenerator().Perm(trainSet.Count())
		for begin := 0; begin < len(perm); begin += svd.batchSize {
			end := begin + svd.batchSize
			if end > len(perm) {
				end = len(perm)
			}
			for _, i := range perm[begin:end] {
				userIndex, itemIndex, rating := trainSet.Get(i)
				// Compute error: e_{ui} = r_{ui} - \hat{r}_{ui}
				diff := rating - svd.InternalPredict(userIndex, itemIndex)
				cost += diff * diff
				// Update global bias
				svd.GlobalBias += svd.lr * diff
				// Update user bias: b_u <- b_u + \gamma (e_{ui} - \lambda b_u)
				svd.UserBias[userIndex] += svd.lr * (diff - svd.reg*svd.UserBias[userIndex])
				// Update item bias: b_i <- b_i + \gamma (e_{ui} - \lambda b_i)
				svd.ItemBias[itemIndex] += svd.lr * (diff - svd.reg*svd.ItemBias[itemIndex])
				userFactor := svd.UserFactor[userIndex]
				itemFactor := svd.ItemFactor[itemIndex]
				// Update user latent factor
				floats.MulConstTo(itemFactor, diff, a)
				floats.MulConstAddTo(userFactor, -svd.reg, a)
				floats.MulConst(a, svd.lr)
				floats.Add(svd.UserFactor[userIndex], a)
				// Update item latent factor
				floats.MulConstTo(userFactor, diff, b)
				floats.MulConstAddTo(itemFactor, -svd.reg, b)
				floats.MulConst(b, svd.lr)
				floats.Add(svd.ItemFactor[itemIndex], b)
			}
		}
		fitTime := time.Since(fitStart)
		// Validation
		if valSet != nil && valSet.Count() > 0 && (epoch%config.Verbose == 0 || epoch == svd.nEpochs) {
			evalStart := time.Now()
			rmse, _ := RMSE(svd, valSet)
			evalTime := time.Since(evalStart)
			score.RMSE = rmse
			log.Logger().Debug(fmt.Sprintf("fit svd %v/%v", epoch, svd.nEpochs),
				zap.String("fit_time", fitTime.String()),
				zap.String("eval_time", evalTime.String()),
				zap.Float32("loss", cost/float32(trainSet.Count())),
				zap.Float32("RMSE", rmse))
		}
	}
	log.Logger().Info("fit svd complete", zap.Float32("RMSE", score.RMSE))
	return score
}

// Clear model weights.
func (svd *SVD) Clear() {
	svd.UserIndex = nil
	svd.ItemIndex = nil
	svd.UserFactor = nil
	svd.ItemFactor = nil
	svd.UserBias = nil
	svd.ItemBias = nil
	svd.GlobalBias = 0
}
