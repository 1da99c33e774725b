// Package client reaches a remote conversion service over Arrow
// Flight, with a circuit breaker guarding the connection.
package client

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/fxamacker/cbor/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/23skdu/floatlab/internal/batch"
	"github.com/23skdu/floatlab/internal/ieee754"
)

// Converted is one row of a remote conversion result.
type Converted struct {
	Value   string
	Bits    string
	Hex     string
	Decimal string
	Class   string
	Word    uint64
	Err     string
}

// FlightClient converts values through a remote Flight endpoint.
type FlightClient struct {
	client  flight.Client
	conn    *grpc.ClientConn
	alloc   memory.Allocator
	breaker *Breaker
}

// NewFlightClient connects to the Flight endpoint at addr. Transport
// security is left to the surrounding network.
func NewFlightClient(addr string) (*FlightClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	return &FlightClient{
		client:  flight.NewClientFromConn(conn, nil),
		conn:    conn,
		alloc:   memory.NewGoAllocator(),
		breaker: NewBreaker(3, 10*time.Second),
	}, nil
}

// Close tears down the underlying connection.
func (c *FlightClient) Close() error {
	return c.conn.Close()
}

// Breaker exposes the client's circuit breaker state.
func (c *FlightClient) Breaker() BreakerState {
	return c.breaker.State()
}

// Convert sends values through the remote DoExchange converter and
// returns one row per input, failed rows carried in Err.
func (c *FlightClient) Convert(ctx context.Context, values []string, p ieee754.Precision) ([]Converted, error) {
	if !c.breaker.Allow() {
		return nil, ErrUnavailable
	}
	rows, err := c.exchange(ctx, values, p)
	if err != nil {
		c.breaker.RecordFailure()
		return nil, err
	}
	c.breaker.RecordSuccess()
	return rows, nil
}

func (c *FlightClient) exchange(ctx context.Context, values []string, p ieee754.Precision) ([]Converted, error) {
	cmd, err := cbor.Marshal(batch.Command{Op: "convert", Precision: string(p)})
	if err != nil {
		return nil, err
	}

	stream, err := c.client.DoExchange(ctx)
	if err != nil {
		return nil, err
	}

	sb := array.NewStringBuilder(c.alloc)
	defer sb.Release()
	sb.AppendValues(values, nil)
	col := sb.NewStringArray()
	defer col.Release()
	rec := array.NewRecordBatch(batch.InputSchema, []arrow.Array{col}, int64(len(values)))
	defer rec.Release()

	writer := flight.NewRecordWriter(stream, ipc.WithSchema(batch.InputSchema), ipc.WithAllocator(c.alloc))
	writer.SetFlightDescriptor(&flight.FlightDescriptor{
		Type: flight.DescriptorCMD,
		Cmd:  cmd,
	})
	if err := writer.Write(rec); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}

	reader, err := flight.NewRecordReader(stream, ipc.WithAllocator(c.alloc))
	if err != nil {
		return nil, err
	}
	defer reader.Release()

	var rows []Converted
	for reader.Next() {
		rows = append(rows, extractRows(reader.Record())...)
	}
	if err := reader.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return rows, nil
}

func extractRows(rec arrow.RecordBatch) []Converted {
	str := func(name string) *array.String {
		if idx := rec.Schema().FieldIndices(name); len(idx) > 0 {
			if col, ok := rec.Column(idx[0]).(*array.String); ok {
				return col
			}
		}
		return nil
	}
	var word *array.Uint64
	if idx := rec.Schema().FieldIndices("word"); len(idx) > 0 {
		word, _ = rec.Column(idx[0]).(*array.Uint64)
	}

	value := str("value")
	bits := str("bits")
	hex := str("hex")
	decimal := str("decimal")
	class := str("class")
	rowErr := str("error")

	rows := make([]Converted, rec.NumRows())
	for i := range rows {
		if value != nil {
			rows[i].Value = value.Value(i)
		}
		if bits != nil {
			rows[i].Bits = bits.Value(i)
		}
		if hex != nil {
			rows[i].Hex = hex.Value(i)
		}
		if decimal != nil {
			rows[i].Decimal = decimal.Value(i)
		}
		if class != nil {
			rows[i].Class = class.Value(i)
		}
		if word != nil {
			rows[i].Word = word.Value(i)
		}
		if rowErr != nil {
			rows[i].Err = rowErr.Value(i)
		}
	}
	return rows
}
