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
	"github.com/feedbench/feedbench/base"
	"github.com/feedbench/feedbench/dataset"
)

// Score records the metrics of a fitted model on its validation set. Only
// the fields relevant to the model's task are filled: RMSE for explicit
// rating models, the ranking metrics for implicit models.
type Score struct {
	RMSE      float32
	NDCG      float32
	Precision float32
	Recall    float32
}

// FitConfig controls the fitting procedure shared by all models.
type FitConfig struct {
	Jobs       int // number of concurrent workers
	Verbose    int // validate every N epochs
	Candidates int // sampled negative candidates for intra-fit validation
	TopK       int // cutoff for intra-fit ranking validation
}

// NewFitConfig creates a default fit configuration.
func NewFitConfig() *FitConfig {
	return &FitConfig{
		Jobs:       1,
		Verbose:    10,
		Candidates: 100,
		TopK:       10,
	}
}

// SetJobs sets the number of concurrent workers.
func (config *FitConfig) SetJobs(nJobs int) *FitConfig {
	config.Jobs = nJobs
	return config
}

// SetVerbose sets the validation period.
func (config *FitConfig) SetVerbose(verbose int) *FitConfig {
	config.Verbose = verbose
	return config
}

func (config *FitConfig) LoadDefaultIfNil() *FitConfig {
	if config == nil {
		return NewFitConfig()
	}
	return config
}

// MatrixFactorization is the interface of all matrix factorization models in
// this package: a fitted function mapping a (user, item) pair to a score.
// For explicit models the score approximates the rating, for implicit
// models it is only meaningful for relative ranking.
type MatrixFactorization interface {
	// SetParams sets hyper-parameters.
	SetParams(params Params)
	// GetParams returns hyper-parameters.
	GetParams() Params
	// Fit the model on a train set. If valSet is not nil, validation
	// metrics are computed while fitting and the final score is returned.
	Fit(trainSet, valSet *dataset.Dataset, config *FitConfig) Score
	// Predict the score given by a user (userId) to an item (itemId).
	Predict(userId, itemId string) float32
	// InternalPredict predicts the score by a user index and an item index.
	InternalPredict(userIndex, itemIndex int32) float32
	// Clear model weights.
	Clear()
}

// BaseModel is included by every model. Hyper-parameters and the seeded
// random generator are managed by BaseModel.
type BaseModel struct {
	Params    Params               // Hyper-parameters
	rng       base.RandomGenerator // Random generator
	randState int64                // Random seed
}

// SetParams sets hyper-parameters for the BaseModel.
func (model *BaseModel) SetParams(params Params) {
	model.Params = params
	model.randState = model.Params.GetInt64(RandomState, 0)
	model.rng = base.NewRandomGenerator(model.randState)
}

// GetParams returns all hyper-parameters.
func (model *BaseModel) GetParams() Params {
	return model.Params
}

// GetRandomGenerator returns the seeded random generator.
func (model *BaseModel) GetRandomGenerator() base.RandomGenerator {
	return model.rng
}

// BaseMatrixFactorization is included by every matrix factorization model.
type BaseMatrixFactorization struct {
	BaseModel
	UserIndex *base.Index
	ItemIndex *base.Index
}

// Init binds the train set indices to the model. The method must be called
// at the beginning of Fit.
func (baseModel *BaseMatrixFactorization) Init(trainSet *dataset.Dataset) {
	baseModel.UserIndex = trainSet.UserIndex
	baseModel.ItemIndex = trainSet.ItemIndex
}

// GetUserIndex returns the user index.
func (baseModel *BaseMatrixFactorization) GetUserIndex() *base.Index {
	return baseModel.UserIndex
}

// GetItemIndex returns the item index.
func (baseModel *BaseMatrixFactorization) GetItemIndex() *base.Index {
	return baseModel.ItemIndex
}
