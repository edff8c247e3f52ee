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

package config

import (
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

// Config is the configuration of a benchmark run. The defaults reproduce
// the reference experiment on MovieLens 100K.
type Config struct {
	Dataset   string  `mapstructure:"dataset"`
	Seed      int64   `mapstructure:"seed"`
	TestRatio float64 `mapstructure:"test_ratio"`
	NFactors  int     `mapstructure:"n_factors"`
	NEpochs   int     `mapstructure:"n_epochs"`
	BatchSize int     `mapstructure:"batch_size"`
	Lr        float64 `mapstructure:"lr"`
	Reg       float64 `mapstructure:"reg"`
	Jobs      int     `mapstructure:"jobs"`
}

func setDefault(v *viper.Viper) {
	v.SetDefault("dataset", "ml-100k")
	v.SetDefault("seed", 42)
	v.SetDefault("test_ratio", 0.2)
	v.SetDefault("n_factors", 32)
	v.SetDefault("n_epochs", 10)
	v.SetDefault("batch_size", 256)
	v.SetDefault("lr", 1e-3)
	v.SetDefault("reg", 1e-6)
	v.SetDefault("jobs", 1)
}

// LoadConfig loads the benchmark configuration from a TOML file. An empty
// path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefault(v)
	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Trace(err)
		}
	}
	conf := new(Config)
	if err := v.Unmarshal(conf); err != nil {
		return nil, errors.Trace(err)
	}
	return conf, nil
}
