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

// Sink writes record batches into an Arrow IPC file whose path is handed to
// the Python side. Close finalizes the file footer; double close is a no-op
type Sink struct {
	logger  logger.Logger
	path    string
	schema  *arrow.Schema
	file    *os.File
	writer  *ipc.FileWriter
	numRows int64

	closeOnce sync.Once
	closeErr  error
}

// NewSink creates a sink writing batches of the given schema to path
func NewSink(parentLogger logger.Logger, path string, schema *arrow.Schema) (*Sink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't create Arrow file at %q", path)
	}

	writer, err := ipc.NewFileWriter(file,
		ipc.WithSchema(schema),
		ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		file.Close() // nolint: errcheck
		return nil, errors.Wrap(err, "Can't create Arrow file writer")
	}

	return &Sink{
		logger: parentLogger.GetChild("arrowsink"),
		path:   path,
		schema: schema,
		file:   file,
		writer: writer,
	}, nil
}

// Write appends one record batch
func (s *Sink) Write(record arrow.Record) error {
	if !record.Schema().Equal(s.schema) {
		return errors.Errorf("Record schema doesn't match sink schema at %q", s.path)
	}

	if err := s.writer.Write(record); err != nil {
		return errors.Wrapf(err, "Can't write record batch to %q", s.path)
	}

	s.numRows += record.NumRows()

	return nil
}

// Path returns the file path handed across the process boundary
func (s *Sink) Path() string {
	return s.path
}

// Schema returns the sink's schema
func (s *Sink) Schema() *arrow.Schema {
	return s.schema
}

// NumRows returns the number of rows written so far
func (s *Sink) NumRows() int64 {
	return s.numRows
}

// Close writes the file footer and releases the file
func (s *Sink) Close() error {
	s.closeOnce.Do(func() {
		if err := s.writer.Close(); err != nil {
			s.closeErr = errors.Wrapf(err, "Can't finalize Arrow file at %q", s.path)
		}

		if err := s.file.Close(); err != nil && s.closeErr == nil {
			s.closeErr = errors.Wrapf(err, "Can't close Arrow file at %q", s.path)
		}

		s.logger.DebugWith("Closed Arrow sink", "path", s.path, "rows", s.numRows)
	})

	return s.closeErr
}
