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

package encoder

import (
	"encoding/json"
	"io"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
)

// CallJSONEncoder encodes calls as newline-terminated JSON records
type CallJSONEncoder struct {
	logger logger.Logger
	writer io.Writer
}

// NewCallJSONEncoder returns a new JSON call encoder
func NewCallJSONEncoder(parentLogger logger.Logger, writer io.Writer) *CallJSONEncoder {
	return &CallJSONEncoder{logger: parentLogger, writer: writer}
}

// Encode writes the JSON encoding of call to the stream, followed by a
// newline character
func (e *CallJSONEncoder) Encode(call *Call) error {
	if err := json.NewEncoder(e.writer).Encode(call); err != nil {
		return errors.Wrap(err, "Failed to encode call")
	}

	return nil
}
