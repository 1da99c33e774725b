package client

import (
	"context"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/23skdu/floatlab/internal/batch"
	"github.com/23skdu/floatlab/internal/ieee754"
)

type mockExchangeServer struct {
	flight.BaseFlightServer
}

func (s *mockExchangeServer) DoExchange(stream flight.FlightService_DoExchangeServer) error {
	reader, err := flight.NewRecordReader(stream)
	if err != nil {
		return err
	}
	defer reader.Release()

	var cmd batch.Command
	if desc := reader.LatestFlightDescriptor(); desc != nil {
		if err := cbor.Unmarshal(desc.Cmd, &cmd); err != nil {
			return err
		}
	}
	p, err := ieee754.ParsePrecision(cmd.Precision)
	if err != nil {
		return err
	}

	conv := batch.NewConverter(nil)
	writer := flight.NewRecordWriter(stream, ipc.WithSchema(batch.OutputSchema))
	defer writer.Close()

	for reader.Next() {
		out, err := conv.ConvertRecord(reader.Record(), p)
		if err != nil {
			return err
		}
		err = writer.Write(out)
		out.Release()
		if err != nil {
			return err
		}
	}
	return reader.Err()
}

func startMockServer(t *testing.T) string {
	t.Helper()
	server := flight.NewServerWithMiddleware(nil)
	server.RegisterFlightService(&mockExchangeServer{})

	require.NoError(t, server.Init("localhost:0"))
	go func() {
		_ = server.Serve()
	}()
	t.Cleanup(server.Shutdown)
	return server.Addr().String()
}

func TestFlightClientConvert(t *testing.T) {
	addr := startMockServer(t)

	client, err := NewFlightClient(addr)
	require.NoError(t, err)
	defer client.Close()

	rows, err := client.Convert(context.Background(), []string{"1.0", "-2.5", "0.1"}, ieee754.Single)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "1.0", rows[0].Value)
	assert.Equal(t, "0x3F800000", rows[0].Hex)
	assert.Equal(t, uint64(0x3F800000), rows[0].Word)
	assert.Equal(t, "normal", rows[0].Class)
	assert.Empty(t, rows[0].Err)

	assert.Equal(t, "0xC0200000", rows[1].Hex)
	assert.Equal(t, "0x3DCCCCCD", rows[2].Hex)

	assert.Equal(t, BreakerClosed, client.Breaker())
}

func TestFlightClientConvertDouble(t *testing.T) {
	addr := startMockServer(t)

	client, err := NewFlightClient(addr)
	require.NoError(t, err)
	defer client.Close()

	rows, err := client.Convert(context.Background(), []string{"0.1"}, ieee754.Double)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "0x3FB999999999999A", rows[0].Hex)
}

func TestFlightClientRowError(t *testing.T) {
	addr := startMockServer(t)

	client, err := NewFlightClient(addr)
	require.NoError(t, err)
	defer client.Close()

	rows, err := client.Convert(context.Background(), []string{"1.0", "bogus"}, ieee754.Single)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Empty(t, rows[0].Err)
	assert.NotEmpty(t, rows[1].Err)
	assert.Equal(t, "bogus", rows[1].Value)
}

func TestFlightClientBreakerTrips(t *testing.T) {
	// Bind a port, then shut the server down so calls get refused.
	server := flight.NewServerWithMiddleware(nil)
	server.RegisterFlightService(&mockExchangeServer{})
	require.NoError(t, server.Init("localhost:0"))
	addr := server.Addr().String()
	server.Shutdown()

	client, err := NewFlightClient(addr)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for i := 0; i < 3; i++ {
		_, err := client.Convert(ctx, []string{"1.0"}, ieee754.Single)
		require.Error(t, err)
	}
	assert.Equal(t, BreakerOpen, client.Breaker())

	_, err = client.Convert(ctx, []string{"1.0"}, ieee754.Single)
	assert.ErrorIs(t, err, ErrUnavailable)
}
