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
	"bytes"
	"encoding/binary"
	"io"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	"github.com/vmihailenco/msgpack/v4"
)

// CallMsgPackEncoder encodes calls as length-prefixed msgpack records
type CallMsgPackEncoder struct {
	logger  logger.Logger
	writer  io.Writer
	buf     bytes.Buffer
	encoder *msgpack.Encoder
}

// NewCallMsgPackEncoder returns a new msgpack call encoder
func NewCallMsgPackEncoder(parentLogger logger.Logger, writer io.Writer) *CallMsgPackEncoder {
	callMsgPackEncoder := CallMsgPackEncoder{logger: parentLogger, writer: writer}
	callMsgPackEncoder.encoder = msgpack.NewEncoder(&callMsgPackEncoder.buf)
	return &callMsgPackEncoder
}

// Encode writes the msgpack encoding of call to the stream, prefixed by its
// size as a big endian int32
func (e *CallMsgPackEncoder) Encode(call *Call) error {
	e.buf.Reset()
	if err := e.encoder.Encode(call); err != nil {
		return errors.Wrap(err, "Failed to encode call")
	}

	if err := binary.Write(e.writer, binary.BigEndian, int32(e.buf.Len())); err != nil {
		return errors.Wrap(err, "Failed to write call size to socket")
	}

	if _, err := e.writer.Write(e.buf.Bytes()); err != nil {
		return errors.Wrap(err, "Failed to write call to socket")
	}

	return nil
}
