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
	"archive/zip"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/feedbench/feedbench/base/log"
)

// ErrDataUnavailable is returned when a dataset is unknown or its backing
// resource cannot be fetched or read.
var ErrDataUnavailable = errors.New("dataset unavailable")

type builtInDataset struct {
	url    string
	path   string
	sep    string
	header bool
}

// Built-in datasets: https://grouplens.org/datasets/movielens/
var builtInDatasets = map[string]builtInDataset{
	"ml-100k": {
		url:    "https://files.grouplens.org/datasets/movielens/ml-100k.zip",
		path:   "ml-100k/u.data",
		sep:    "\t",
		header: false,
	},
	"ml-1m": {
		url:    "https://files.grouplens.org/datasets/movielens/ml-1m.zip",
		path:   "ml-1m/ratings.dat",
		sep:    "::",
		header: false,
	},
	"ml-20m": {
		url:    "https://files.grouplens.org/datasets/movielens/ml-20m.zip",
		path:   "ml-20m/ratings.csv",
		sep:    ",",
		header: true,
	},
}

var (
	tempDir    string
	datasetDir string
)

func init() {
	usr, err := user.Current()
	if err != nil {
		log.Logger().Fatal("failed to get user directory", zap.Error(err))
	}
	datasetDir = filepath.Join(usr.HomeDir, ".feedbench", "dataset")
	tempDir = filepath.Join(usr.HomeDir, ".feedbench", "temp")
}

// LoadDataFromBuiltIn loads a built-in dataset, downloading and caching the
// raw resource on first use. Content is deterministic for a given name.
func LoadDataFromBuiltIn(name string) (*Dataset, error) {
	source, exist := builtInDatasets[name]
	if !exist {
		return nil, errors.Annotatef(ErrDataUnavailable, "unknown dataset %s", name)
	}
	dataFile := filepath.Join(datasetDir, source.path)
	if _, err := os.Stat(dataFile); os.IsNotExist(err) {
		zipFile, err := downloadFromUrl(source.url, tempDir)
		if err != nil {
			return nil, errors.Annotatef(ErrDataUnavailable, "download %s: %v", name, err)
		}
		if _, err = unzip(zipFile, datasetDir); err != nil {
			return nil, errors.Annotatef(ErrDataUnavailable, "unzip %s: %v", name, err)
		}
	}
	return LoadDataFromCSV(dataFile, source.sep, source.header)
}

// downloadFromUrl downloads a file from URL into dst.
func downloadFromUrl(src, dst string) (string, error) {
	log.Logger().Info("download dataset", zap.String("source", src), zap.String("destination", dst))
	tokens := strings.Split(src, "/")
	fileName := filepath.Join(dst, tokens[len(tokens)-1])
	if err := os.MkdirAll(filepath.Dir(fileName), os.ModePerm); err != nil {
		return fileName, errors.Trace(err)
	}
	output, err := os.Create(fileName)
	if err != nil {
		return fileName, errors.Trace(err)
	}
	defer output.Close()
	response, err := http.Get(src)
	if err != nil {
		return fileName, errors.Trace(err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return fileName, errors.Errorf("unexpected status %s", response.Status)
	}
	bar := progressbar.DefaultBytes(response.ContentLength, "downloading")
	if _, err = io.Copy(io.MultiWriter(output, bar), response.Body); err != nil {
		return fileName, errors.Trace(err)
	}
	return fileName, nil
}

// unzip extracts a zip archive into dst.
func unzip(src, dst string) ([]string, error) {
	var fileNames []string
	r, err := zip.OpenReader(src)
	if err != nil {
		return fileNames, errors.Trace(err)
	}
	defer r.Close()
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			return fileNames, errors.Trace(err)
		}
		filePath := filepath.Join(dst, f.Name)
		// Check for ZipSlip. More Info: http://bit.ly/2MsjAWE
		if !strings.HasPrefix(filePath, filepath.Clean(dst)+string(os.PathSeparator)) {
			_ = rc.Close()
			return fileNames, fmt.Errorf("%s: illegal file path", filePath)
		}
		fileNames = append(fileNames, filePath)
		if f.FileInfo().IsDir() {
			if err = os.MkdirAll(filePath, os.ModePerm); err != nil {
				_ = rc.Close()
				return fileNames, errors.Trace(err)
			}
		} else {
			if err = os.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
				_ = rc.Close()
				return fileNames, errors.Trace(err)
			}
			outFile, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
			if err != nil {
				_ = rc.Close()
				return fileNames, errors.Trace(err)
			}
			if _, err = io.Copy(outFile, rc); err != nil {
				_ = outFile.Close()
				_ = rc.Close()
				return fileNames, errors.Trace(err)
			}
			_ = outFile.Close()
		}
		_ = rc.Close()
	}
	return fileNames, nil
}
