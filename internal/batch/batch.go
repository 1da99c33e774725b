// Package batch converts Arrow record batches of decimal literals into
// fully rendered encodings: one input utf8 column in, a column per
// rendering out. Rows never drop; a row that fails to parse keeps its
// position with the error column set.
package batch

import (
	"errors"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/23skdu/floatlab/internal/cache"
	"github.com/23skdu/floatlab/internal/ieee754"
	"github.com/23skdu/floatlab/internal/literal"
)

// ErrNoValueColumn is returned when the input record carries no usable
// string column.
var ErrNoValueColumn = errors.New("no value column")

var (
	// InputSchema is the batch surface's contract: one utf8 column of
	// decimal literals named value.
	InputSchema = arrow.NewSchema([]arrow.Field{
		{Name: "value", Type: arrow.BinaryTypes.String},
	}, nil)

	// OutputSchema carries every rendering of each converted value plus
	// a per-row error column, empty on success.
	OutputSchema = arrow.NewSchema([]arrow.Field{
		{Name: "value", Type: arrow.BinaryTypes.String},
		{Name: "bits", Type: arrow.BinaryTypes.String},
		{Name: "hex", Type: arrow.BinaryTypes.String},
		{Name: "decimal", Type: arrow.BinaryTypes.String},
		{Name: "class", Type: arrow.BinaryTypes.String},
		{Name: "sign", Type: arrow.PrimitiveTypes.Uint8},
		{Name: "exponent", Type: arrow.PrimitiveTypes.Uint64},
		{Name: "mantissa", Type: arrow.PrimitiveTypes.Uint64},
		{Name: "word", Type: arrow.PrimitiveTypes.Uint64},
		{Name: "error", Type: arrow.BinaryTypes.String},
	}, nil)
)

// Converter encodes record batches, memoizing per-value results
// across batches. Safe for concurrent use.
type Converter struct {
	alloc memory.Allocator
	rows  cache.RowCache
}

// NewConverter returns a converter; a nil allocator gets the Go
// allocator.
func NewConverter(alloc memory.Allocator) *Converter {
	if alloc == nil {
		alloc = memory.NewGoAllocator()
	}
	return &Converter{
		alloc: alloc,
		rows:  cache.NewMapCache(),
	}
}

// ConvertRecord encodes every literal in the record's value column. The
// caller owns the returned batch and must release it.
func (c *Converter) ConvertRecord(rec arrow.RecordBatch, p ieee754.Precision) (arrow.RecordBatch, error) {
	values, err := valueStrings(rec)
	if err != nil {
		return nil, err
	}

	b := array.NewRecordBuilder(c.alloc, OutputSchema)
	defer b.Release()

	valueB := b.Field(0).(*array.StringBuilder)
	bitsB := b.Field(1).(*array.StringBuilder)
	hexB := b.Field(2).(*array.StringBuilder)
	decimalB := b.Field(3).(*array.StringBuilder)
	classB := b.Field(4).(*array.StringBuilder)
	signB := b.Field(5).(*array.Uint8Builder)
	expB := b.Field(6).(*array.Uint64Builder)
	manB := b.Field(7).(*array.Uint64Builder)
	wordB := b.Field(8).(*array.Uint64Builder)
	errB := b.Field(9).(*array.StringBuilder)

	for _, raw := range values {
		valueB.Append(raw)
		key := string(p) + "\x00" + raw
		row, ok := c.rows.Get(key)
		if !ok {
			var cerr error
			row, cerr = convertOne(raw, p)
			if cerr != nil {
				return nil, cerr
			}
			c.rows.Put(key, row)
		}
		if row.Err != "" {
			rowErrors.Inc()
		}
		bitsB.Append(row.Bits)
		hexB.Append(row.Hex)
		decimalB.Append(row.Decimal)
		classB.Append(row.Class)
		signB.Append(row.Sign)
		expB.Append(row.Exponent)
		manB.Append(row.Mantissa)
		wordB.Append(row.Word)
		errB.Append(row.Err)
	}

	rowsConverted.Add(float64(len(values)))
	return b.NewRecord(), nil
}

// convertOne encodes a single literal into a cacheable row. Parse
// failures come back as a row with Err set; only an unpackable result
// is an error.
func convertOne(raw string, p ieee754.Precision) (cache.Row, error) {
	d, perr := literal.Parse(raw)
	if perr != nil {
		return cache.Row{Err: perr.Error()}, nil
	}
	t, _ := ieee754.Encode(d, p)
	word, packErr := ieee754.Pack(t, p)
	if packErr != nil {
		return cache.Row{}, fmt.Errorf("pack %q: %w", raw, packErr)
	}
	back, _ := ieee754.Decode(t, p)
	return cache.Row{
		Bits:     ieee754.FormatBits(word, p),
		Hex:      ieee754.FormatHex(word, p),
		Decimal:  literal.Format(back, p),
		Class:    ieee754.Classify(t, p).String(),
		Sign:     t.Sign,
		Exponent: t.Exponent,
		Mantissa: t.Mantissa,
		Word:     word,
	}, nil
}

// ConvertValues is ConvertRecord for a plain string slice, the shape the
// shells hold values in before any Arrow plumbing.
func (c *Converter) ConvertValues(values []string, p ieee754.Precision) (arrow.RecordBatch, error) {
	sb := array.NewStringBuilder(c.alloc)
	defer sb.Release()
	sb.AppendValues(values, nil)
	col := sb.NewArray()
	defer col.Release()

	rec := array.NewRecordBatch(InputSchema, []arrow.Array{col}, int64(len(values)))
	defer rec.Release()
	return c.ConvertRecord(rec, p)
}

// ConvertStream reads an IPC stream of input batches from r and writes
// the converted batches to w, returning the number of rows processed.
func (c *Converter) ConvertStream(r io.Reader, w io.Writer, p ieee754.Precision) (int64, error) {
	reader, err := ipc.NewReader(r, ipc.WithAllocator(c.alloc))
	if err != nil {
		return 0, fmt.Errorf("open input stream: %w", err)
	}
	defer reader.Release()

	writer := ipc.NewWriter(w, ipc.WithSchema(OutputSchema), ipc.WithAllocator(c.alloc))
	defer func() { _ = writer.Close() }()

	var rows int64
	for reader.Next() {
		out, err := c.ConvertRecord(reader.Record(), p)
		if err != nil {
			return rows, err
		}
		werr := writer.Write(out)
		rows += out.NumRows()
		out.Release()
		if werr != nil {
			return rows, fmt.Errorf("write output stream: %w", werr)
		}
	}
	if err := reader.Err(); err != nil {
		return rows, fmt.Errorf("read input stream: %w", err)
	}
	return rows, nil
}

// valueStrings pulls the literal column out of an input record: the
// column named value when present, the first column otherwise. String
// and binary columns are both accepted.
func valueStrings(rec arrow.RecordBatch) ([]string, error) {
	if rec.NumCols() == 0 {
		return nil, ErrNoValueColumn
	}
	col := rec.Column(0)
	if indices := rec.Schema().FieldIndices("value"); len(indices) > 0 {
		col = rec.Column(indices[0])
	}

	switch arr := col.(type) {
	case *array.String:
		out := make([]string, arr.Len())
		for i := range out {
			if !arr.IsNull(i) {
				out[i] = arr.Value(i)
			}
		}
		return out, nil
	case *array.Binary:
		out := make([]string, arr.Len())
		for i := range out {
			if !arr.IsNull(i) {
				out[i] = string(arr.Value(i))
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: column type %s", ErrNoValueColumn, col.DataType())
	}
}
