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
	"strconv"

	"github.com/apache/arrow/go/v12/arrow"
)

// Schema metadata keys shared with the Python side
const (
	// ChunkSizeMetadataKey holds the row count per record batch
	ChunkSizeMetadataKey = "knime:chunk_size"

	// FactoryMetadataKey holds the value-factory identifier of a field
	FactoryMetadataKey = "knime:factory"
)

// WithKNIMEMetadata returns a schema carrying the chunk size and, per field
// named in factories, the value-factory identifier used to interpret it on
// the other side of the process boundary
func WithKNIMEMetadata(schema *arrow.Schema, chunkSize int64, factories map[string]string) *arrow.Schema {
	fields := make([]arrow.Field, len(schema.Fields()))
	for i, field := range schema.Fields() {
		if factory, mapped := factories[field.Name]; mapped {
			keys := append(field.Metadata.Keys(), FactoryMetadataKey)
			values := append(field.Metadata.Values(), factory)
			field.Metadata = arrow.NewMetadata(keys, values)
		}

		fields[i] = field
	}

	keys := append(schema.Metadata().Keys(), ChunkSizeMetadataKey)
	values := append(schema.Metadata().Values(), strconv.FormatInt(chunkSize, 10))
	metadata := arrow.NewMetadata(keys, values)

	return arrow.NewSchema(fields, &metadata)
}

// ChunkSize reads the chunk-size metadata of a schema
func ChunkSize(schema *arrow.Schema) (int64, bool) {
	metadata := schema.Metadata()

	index := metadata.FindKey(ChunkSizeMetadataKey)
	if index < 0 {
		return 0, false
	}

	chunkSize, err := strconv.ParseInt(metadata.Values()[index], 10, 64)
	if err != nil {
		return 0, false
	}

	return chunkSize, true
}

// FactoryForField reads the value-factory identifier of a field
func FactoryForField(field arrow.Field) (string, bool) {
	index := field.Metadata.FindKey(FactoryMetadataKey)
	if index < 0 {
		return "", false
	}

	return field.Metadata.Values()[index], true
}
