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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ratings.csv")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDataFromCSV(t *testing.T) {
	path := writeTempCSV(t, "196\t242\t3\t881250949\n"+
		"186\t302\t3\t891717742\n"+
		"22\t377\t1\t878887116\n")
	data, err := LoadDataFromCSV(path, "\t", false)
	assert.NoError(t, err)
	assert.Equal(t, 3, data.Count())
	assert.Equal(t, 3, data.UserCount())
	assert.Equal(t, 3, data.ItemCount())
	userIndex, itemIndex, rating := data.Get(0)
	assert.Equal(t, "196", data.UserIndex.ToName(userIndex))
	assert.Equal(t, "242", data.ItemIndex.ToName(itemIndex))
	assert.Equal(t, float32(3), rating)
	assert.Equal(t, int64(881250949), data.Timestamps[0])
}

func TestLoadDataFromCSV_Header(t *testing.T) {
	path := writeTempCSV(t, "userId,movieId,rating,timestamp\n"+
		"1,1,4.0,964982703\n"+
		"1,3,4.0,964981247\n")
	data, err := LoadDataFromCSV(path, ",", true)
	assert.NoError(t, err)
	assert.Equal(t, 2, data.Count())
	assert.Equal(t, 1, data.UserCount())
	assert.Equal(t, 2, data.ItemCount())
}

func TestLoadDataFromCSV_ImplicitColumns(t *testing.T) {
	path := writeTempCSV(t, "1 10\n2 20\n")
	data, err := LoadDataFromCSV(path, " ", false)
	assert.NoError(t, err)
	assert.Equal(t, 2, data.Count())
	_, _, rating := data.Get(0)
	assert.Equal(t, float32(1), rating)
	assert.Equal(t, int64(0), data.Timestamps[0])
}

func TestLoadDataFromCSV_Missing(t *testing.T) {
	_, err := LoadDataFromCSV(filepath.Join(t.TempDir(), "no_such_file"), "\t", false)
	assert.ErrorIs(t, err, ErrDataUnavailable)
}
