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

	"github.com/juju/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/feedbench/feedbench/base"
	"github.com/feedbench/feedbench/base/log"
	"github.com/feedbench/feedbench/dataset"
)

// ALS is the weighted regularized matrix factorization for implicit
// feedback. It treats the data as indication of positive and negative
// preference associated with vastly varying confidence levels, which leads
// to a factor model especially tailored for implicit feedback recommenders.
// The optimization procedure alternates between recomputing user factors
// and item factors in closed form and scales linearly with the data size.
//
// Hyper-parameters:
//
//	NFactors   - The number of latent factors. Default is 15.
//	NEpochs    - The number of training epochs. Default is 50.
//	Reg        - The strength of regularization. Default is 0.06.
//	Alpha      - The weight for negative samples. Default is 0.001.
//	InitMean   - The mean of initial latent factors. Default is 0.
//	InitStdDev - The standard deviation of initial latent factors. Default is 0.1.
type ALS struct {
	BaseMatrixFactorization
	// Model parameters
	UserFactor *mat.Dense // p_u
	ItemFactor *mat.Dense // q_i
	// Hyper parameters
	nFactors   int
	nEpochs    int
	reg        float64
	initMean   float64
	initStdDev float64
	weight     float64
}

// NewALS creates an ALS model.
func NewALS(params Params) *ALS {
	als := new(ALS)
	als.SetParams(params)
	return als
}

// SetParams sets hyper-parameters for the ALS model.
func (als *ALS) SetParams(params Params) {
	als.BaseModel.SetParams(params)
	als.nFactors = als.Params.GetInt(NFactors, 15)
	als.nEpochs = als.Params.GetInt(NEpochs, 50)
	als.initMean = float64(als.Params.GetFloat32(InitMean, 0))
	als.initStdDev = float64(als.Params.GetFloat32(InitStdDev, 0.1))
	als.reg = float64(als.Params.GetFloat32(Reg, 0.06))
	als.weight = float64(als.Params.GetFloat32(Alpha, 0.001))
}

// Predict by the ALS model.
func (als *ALS) Predict(userId, itemId string) float32 {
	userIndex := als.UserIndex.ToNumber(userId)
	itemIndex := als.ItemIndex.ToNumber(itemId)
	if userIndex == base.NotId {
		log.Logger().Warn("unknown user", zap.String("user_id", userId))
	}
	if itemIndex == base.NotId {
		log.Logger().Warn("unknown item", zap.String("item_id", itemId))
	}
	return als.InternalPredict(userIndex, itemIndex)
}

func (als *ALS) InternalPredict(userIndex, itemIndex int32) float32 {
	if userIndex == base.NotId || itemIndex == base.NotId {
		return 0
	}
	return float32(mat.Dot(als.UserFactor.RowView(int(userIndex)),
		als.ItemFactor.RowView(int(itemIndex))))
}

// Fit the ALS model.
func (als *ALS) Fit(trainSet, valSet *dataset.Dataset, config *FitConfig) Score {
	config = config.LoadDefaultIfNil()
	log.Logger().Info("fit als",
		zap.Int("train_set_size", trainSet.Count()),
		zap.Any("params", als.GetParams()),
		zap.Any("config", config))
	als.Init(trainSet)
	als.UserFactor = mat.NewDense(trainSet.UserCount(), als.nFactors,
		als.GetRandomGenerator().NormalVector64(trainSet.UserCount()*als.nFactors, als.initMean, als.initStdDev))
	als.ItemFactor = mat.NewDense(trainSet.ItemCount(), als.nFactors,
		als.GetRandomGenerator().NormalVector64(trainSet.ItemCount()*als.nFactors, als.initMean, als.initStdDev))
	// Create temporary matrices
	temp1 := make([]*mat.Dense, config.Jobs)
	temp2 := make([]*mat.VecDense, config.Jobs)
	a := make([]*mat.Dense, config.Jobs)
	for i := 0; i < config.Jobs; i++ {
		temp1[i] = mat.NewDense(als.nFactors, als.nFactors, nil)
		temp2[i] = mat.NewVecDense(als.nFactors, nil)
		a[i] = mat.NewDense(als.nFactors, als.nFactors, nil)
	}
	c := mat.NewDense(als.nFactors, als.nFactors, nil)
	// Create regularization matrix
	regs := make([]float64, als.nFactors)
	for i := range regs {
		regs[i] = als.reg
	}
	regI := mat.NewDiagDense(als.nFactors, regs)
	score := Score{}
	for epoch := 1; epoch <= als.nEpochs; epoch++ {
		fitStart := time.Now()
		// Recompute all user factors: x_u = (Y^T C^u Y + \lambda I)^{-1} Y^T C^u p(u)
		c.Mul(als.ItemFactor.T(), als.ItemFactor)
		c.Scale(als.weight, c)
		err := base.Parallel(trainSet.UserCount(), config.Jobs, func(workerId, userIndex int) error {
			a[workerId].Copy(c)
			b := mat.NewVecDense(als.nFactors, nil)
			for _, itemIndex := range trainSet.UserFeedback[userIndex] {
				// Y^T (C^u - I) Y
				temp1[workerId].Outer(1, als.ItemFactor.RowView(int(itemIndex)), als.ItemFactor.RowView(int(itemIndex)))
				a[workerId].Add(a[workerId], temp1[workerId])
				// Y^T C^u p(u)
				temp2[workerId].ScaleVec(1+als.weight, als.ItemFactor.RowView(int(itemIndex)))
				b.AddVec(b, temp2[workerId])
			}
			a[workerId].Add(a[workerId], regI)
			if err := temp1[workerId].Inverse(a[workerId]); err != nil {
				return errors.Trace(err)
			}
			temp2[workerId].MulVec(temp1[workerId], b)
			als.UserFactor.SetRow(userIndex, temp2[workerId].RawVector().Data)
			return nil
		})
		if err != nil {
			log.Logger().Error("failed to inverse matrix", zap.Error(err))
		}
		// Recompute all item factors: y_i = (X^T C^i X + \lambda I)^{-1} X^T C^i p(i)
		c.Mul(als.UserFactor.T(), als.UserFactor)
		c.Scale(als.weight, c)
		err = base.Parallel(trainSet.ItemCount(), config.Jobs, func(workerId, itemIndex int) error {
			a[workerId].Copy(c)
			b := mat.NewVecDense(als.nFactors, nil)
			for _, userIndex := range trainSet.ItemFeedback[itemIndex] {
				// X^T (C^i - I) X
				temp1[workerId].Outer(1, als.UserFactor.RowView(int(userIndex)), als.UserFactor.RowView(int(userIndex)))
				a[workerId].Add(a[workerId], temp1[workerId])
				// X^T C^i p(i)
				temp2[workerId].ScaleVec(1+als.weight, als.UserFactor.RowView(int(userIndex)))
				b.AddVec(b, temp2[workerId])
			}
			a[workerId].Add(a[workerId], regI)
			if err := temp1[workerId].Inverse(a[workerId]); err != nil {
				return errors.Trace(err)
			}
			temp2[workerId].MulVec(temp1[workerId], b)
			als.ItemFactor.SetRow(itemIndex, temp2[workerId].RawVector().Data)
			return nil
		})
		if err != nil {
			log.Logger().Error("failed to inverse matrix", zap.Error(err))
		}
		fitTime := time.Since(fitStart)
		// Validation
		if valSet != nil && valSet.Count() > 0 && (epoch%config.Verbose == 0 || epoch == als.nEpochs) {
			evalStart := time.Now()
			scores, err := EvaluateRank(als, valSet, trainSet, config.TopK, config.Candidates, config.Jobs,
				NDCG, Precision, Recall)
			evalTime := time.Since(evalStart)
			if err == nil {
				score = Score{NDCG: scores[0], Precision: scores[1], Recall: scores[2]}
				log.Logger().Debug(fmt.Sprintf("fit als %v/%v", epoch, als.nEpochs),
					zap.String("fit_time", fitTime.String()),
					zap.String("eval_time", evalTime.String()),
					zap.Float32(fmt.Sprintf("NDCG@%v", config.TopK), scores[0]),
					zap.Float32(fmt.Sprintf("Precision@%v", config.TopK), scores[1]),
					zap.Float32(fmt.Sprintf("Recall@%v", config.TopK), scores[2]))
			}
		}
	}
	log.Logger().Info("fit als complete",
		zap.Float32("NDCG", score.NDCG),
		zap.Float32("Precision", score.Precision),
		zap.Float32("Recall", score.Recall))
	return score
}

// Clear model weights.
func (als *ALS) Clear() {
	als.UserIndex = nil
	als.ItemIndex = nil
	als.UserFactor = nil
	als.ItemFactor = nil
}
