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
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"go.uber.org/zap"

	"github.com/feedbench/feedbench/base/log"
)

// LoadDataFromCSV loads a dataset from a CSV file. The file should be:
//
//	[optional header]
//	<userId 1> <sep> <itemId 1> <sep> <rating 1> <sep> <timestamp 1>
//	<userId 2> <sep> <itemId 2> <sep> <rating 2> <sep> <timestamp 2>
//	...
//
// For example, `u.data` from MovieLens 100K is:
//
//	196\t242\t3\t881250949
//	186\t302\t3\t891717742
//	22\t377\t1\t878887116
//
// Rating and timestamp columns are optional. Missing ratings default to 1
// (pure implicit feedback), missing timestamps to 0.
func LoadDataFromCSV(fileName, sep string, hasHeader bool) (*Dataset, error) {
	dataset := NewDataset()
	file, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Annotatef(ErrDataUnavailable, "open %s: %v", fileName, err)
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		// Ignore header
		if hasHeader {
			hasHeader = false
			continue
		}
		fields := strings.Split(line, sep)
		// Ignore empty line
		if len(fields) < 2 {
			continue
		}
		rating := float32(1)
		if len(fields) > 2 {
			value, err := strconv.ParseFloat(fields[2], 32)
			if err != nil {
				log.Logger().Warn("failed to parse rating",
					zap.String("csv_file", fileName), zap.String("value", fields[2]))
				continue
			}
			rating = float32(value)
		}
		timestamp := int64(0)
		if len(fields) > 3 {
			timestamp, _ = strconv.ParseInt(fields[3], 10, 64)
		}
		dataset.AddFeedback(fields[0], fields[1], rating, timestamp)
	}
	if err = scanner.Err(); err != nil {
		return nil, errors.Annotatef(ErrDataUnavailable, "read %s: %v", fileName, err)
	}
	return dataset, nil
}
