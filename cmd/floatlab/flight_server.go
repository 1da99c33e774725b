package main

import (
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog/log"

	"github.com/23skdu/floatlab/internal/batch"
	"github.com/23skdu/floatlab/internal/ieee754"
)

type FloatlabFlightServer struct {
	flight.BaseFlightServer
	conv  *batch.Converter
	alloc memory.Allocator
}

func NewFloatlabFlightServer() *FloatlabFlightServer {
	alloc := memory.NewGoAllocator()
	return &FloatlabFlightServer{
		conv:  batch.NewConverter(alloc),
		alloc: alloc,
	}
}

// commandPrecision reads the precision out of the descriptor's CBOR
// command, defaulting to single when the client sent none.
func commandPrecision(desc *flight.FlightDescriptor) (ieee754.Precision, error) {
	if desc == nil || len(desc.Cmd) == 0 {
		return ieee754.Single, nil
	}
	var cmd batch.Command
	if err := cbor.Unmarshal(desc.Cmd, &cmd); err != nil {
		return "", err
	}
	if cmd.Precision == "" {
		return ieee754.Single, nil
	}
	return ieee754.ParsePrecision(cmd.Precision)
}

// DoExchange converts each uploaded batch of values and streams the
// converted batches back.
func (s *FloatlabFlightServer) DoExchange(stream flight.FlightService_DoExchangeServer) error {
	reader, err := flight.NewRecordReader(stream, ipc.WithAllocator(s.alloc))
	if err != nil {
		return err
	}
	defer reader.Release()

	p, err := commandPrecision(reader.LatestFlightDescriptor())
	if err != nil {
		return err
	}

	writer := flight.NewRecordWriter(stream, ipc.WithSchema(batch.OutputSchema), ipc.WithAllocator(s.alloc))
	defer writer.Close()

	var rows int64
	for reader.Next() {
		out, err := s.conv.ConvertRecord(reader.Record(), p)
		if err != nil {
			return err
		}
		rows += out.NumRows()
		err = writer.Write(out)
		out.Release()
		if err != nil {
			return err
		}
	}
	log.Info().Int64("rows", rows).Str("precision", string(p)).Msg("DoExchange converted batches")
	return reader.Err()
}

// DoPut accepts batches of values and converts them for the side
// effects: row metrics and logs. Results are not streamed back.
func (s *FloatlabFlightServer) DoPut(stream flight.FlightService_DoPutServer) error {
	reader, err := flight.NewRecordReader(stream, ipc.WithAllocator(s.alloc))
	if err != nil {
		return err
	}
	defer reader.Release()

	p, err := commandPrecision(reader.LatestFlightDescriptor())
	if err != nil {
		return err
	}

	var rows int64
	for reader.Next() {
		out, err := s.conv.ConvertRecord(reader.Record(), p)
		if err != nil {
			return err
		}
		rows += out.NumRows()
		out.Release()
	}
	log.Info().Int64("rows", rows).Str("precision", string(p)).Msg("DoPut converted batches")
	return reader.Err()
}

func StartFlightServer(addr string) {
	server := flight.NewFlightServer()
	server.RegisterFlightService(NewFloatlabFlightServer())

	if err := server.Init(addr); err != nil {
		log.Fatal().Err(err).Msg("Failed to init Flight server")
	}

	log.Info().Str("addr", addr).Msg("Starting floatlab Flight server")
	if err := server.Serve(); err != nil {
		log.Fatal().Err(err).Msg("Flight server failed")
	}
}
