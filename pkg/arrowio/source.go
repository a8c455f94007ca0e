/*
Copyright 2024 The KNIME Python Gateway Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package arrowio

import (
	"os"
	"sync"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/ipc"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
)

// Source reads record batches from an Arrow IPC file written by the other
// side of the process boundary. Batches are randomly accessible through the
// file footer's record index
type Source struct {
	logger logger.Logger
	path   string
	file   *os.File
	reader *ipc.FileReader

	closeOnce sync.Once
	closeErr  error
}

// OpenSource opens the Arrow IPC file at path
func OpenSource(parentLogger logger.Logger, path string) (*Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't open Arrow file at %q", path)
	}

	reader, err := ipc.NewFileReader(file, ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		file.Close() // nolint: errcheck
		return nil, errors.Wrapf(err, "Can't read Arrow file at %q", path)
	}

	return &Source{
		logger: parentLogger.GetChild("arrowsource"),
		path:   path,
		file:   file,
		reader: reader,
	}, nil
}

// Path returns the file path
func (s *Source) Path() string {
	return s.path
}

// Schema returns the file's schema
func (s *Source) Schema() *arrow.Schema {
	return s.reader.Schema()
}

// NumRecords returns the number of record batches in the file
func (s *Source) NumRecords() int {
	return s.reader.NumRecords()
}

// Record returns record batch i. The record is retained; the caller must
// Release it
func (s *Source) Record(i int) (arrow.Record, error) {
	if i < 0 || i >= s.reader.NumRecords() {
		return nil, errors.Errorf("Record index %d out of range [0, %d)", i, s.reader.NumRecords())
	}

	record, err := s.reader.RecordAt(i)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't read record batch %d from %q", i, s.path)
	}

	record.Retain()

	return record, nil
}

// Close releases the reader and the file. Double close is a no-op
func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		if err := s.reader.Close(); err != nil {
			s.closeErr = errors.Wrapf(err, "Can't close Arrow reader for %q", s.path)
		}

		if err := s.file.Close(); err != nil && s.closeErr == nil {
			s.closeErr = errors.Wrapf(err, "Can't close Arrow file at %q", s.path)
		}
	})

	return s.closeErr
}
