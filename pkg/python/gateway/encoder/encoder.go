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

import "io"

// Call is a single method invocation sent to the interpreter
type Call struct {
	ID     uint64        `json:"id" msgpack:"id"`
	Method string        `json:"method" msgpack:"method"`
	Args   []interface{} `json:"args" msgpack:"args"`
}

// CallEncoder writes framed call records to the wire
type CallEncoder interface {

	// Encode writes one framed call record
	Encode(call *Call) error
}

// Kind selects a wire encoding for calls
type Kind string

// Supported encodings
const (
	JSONKind    Kind = "json"
	MsgPackKind Kind = "msgpack"
)

// NewCallEncoderFunc creates a call encoder over a writer
type NewCallEncoderFunc func(writer io.Writer) CallEncoder
