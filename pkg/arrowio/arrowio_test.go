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
	"path/filepath"
	"testing"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/nuclio/logger"
	nucliozap "github.com/nuclio/zap"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) logger.Logger {
	loggerInstance, err := nucliozap.NewNuclioZapTest("test")
	require.NoError(t, err)
	return loggerInstance
}

func testSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "key", Type: arrow.BinaryTypes.String},
		{Name: "value", Type: arrow.PrimitiveTypes.Int64},
	}, nil)
}

func testRecord(t *testing.T, schema *arrow.Schema, offset int64, numRows int) arrow.Record {
	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	for i := 0; i < numRows; i++ {
		builder.Field(0).(*array.StringBuilder).Append("row")
		builder.Field(1).(*array.Int64Builder).Append(offset + int64(i))
	}

	return builder.NewRecord()
}

func TestSinkSourceRoundTrip(t *testing.T) {
	loggerInstance := testLogger(t)
	path := filepath.Join(t.TempDir(), "table.arrow")

	schema := WithKNIMEMetadata(testSchema(), 4, map[string]string{
		"value": "org.knime.core.data.v2.value.LongValueFactory",
	})

	sink, err := NewSink(loggerInstance, path, schema)
	require.NoError(t, err)

	for batch := 0; batch < 3; batch++ {
		record := testRecord(t, schema, int64(batch*4), 4)
		require.NoError(t, sink.Write(record))
		record.Release()
	}

	require.Equal(t, int64(12), sink.NumRows())
	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close(), "double close must be a no-op")

	source, err := OpenSource(loggerInstance, path)
	require.NoError(t, err)
	defer source.Close() // nolint: errcheck

	require.Equal(t, 3, source.NumRecords())

	chunkSize, found := ChunkSize(source.Schema())
	require.True(t, found)
	require.Equal(t, int64(4), chunkSize)

	// random access out of order
	record, err := source.Record(2)
	require.NoError(t, err)
	require.Equal(t, int64(4), record.NumRows())
	require.Equal(t, int64(8), record.Column(1).(*array.Int64).Value(0))
	record.Release()

	record, err = source.Record(0)
	require.NoError(t, err)
	require.Equal(t, int64(0), record.Column(1).(*array.Int64).Value(0))
	record.Release()

	_, err = source.Record(3)
	require.Error(t, err)

	valueField, ok := source.Schema().FieldsByName("value")
	require.True(t, ok)
	factory, found := FactoryForField(valueField[0])
	require.True(t, found)
	require.Equal(t, "org.knime.core.data.v2.value.LongValueFactory", factory)

	_, found = FactoryForField(source.Schema().Field(0))
	require.False(t, found)

	require.NoError(t, source.Close())
}

func TestSinkRejectsMismatchedSchema(t *testing.T) {
	loggerInstance := testLogger(t)
	path := filepath.Join(t.TempDir(), "table.arrow")

	sink, err := NewSink(loggerInstance, path, testSchema())
	require.NoError(t, err)
	defer sink.Close() // nolint: errcheck

	otherSchema := arrow.NewSchema([]arrow.Field{
		{Name: "other", Type: arrow.PrimitiveTypes.Float64},
	}, nil)

	record := func() arrow.Record {
		builder := array.NewRecordBuilder(memory.DefaultAllocator, otherSchema)
		defer builder.Release()
		builder.Field(0).(*array.Float64Builder).Append(1.5)
		return builder.NewRecord()
	}()
	defer record.Release()

	require.Error(t, sink.Write(record))
}

func TestOpenSourceMissingFile(t *testing.T) {
	loggerInstance := testLogger(t)

	_, err := OpenSource(loggerInstance, filepath.Join(t.TempDir(), "missing.arrow"))
	require.Error(t, err)
}
