//go:build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/23skdu/floatlab/internal/client"
	"github.com/23skdu/floatlab/internal/ieee754"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	addr := "localhost:9090"
	if len(os.Args) > 1 {
		addr = os.Args[1]
	}

	log.Info().Str("addr", addr).Msg("Connecting to floatlab Flight server")

	// Retry connection loop
	var c *client.FlightClient
	var err error

	for i := 0; i < 10; i++ {
		c, err = client.NewFlightClient(addr)
		if err == nil {
			break
		}
		log.Warn().Err(err).Msg("Connection failed, retrying...")
		time.Sleep(1 * time.Second)
	}

	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect after retries")
	}
	defer c.Close()

	values := []string{"1.0", "0.1", "-2.5", "1e-45", "100"}
	want := []string{"0x3F800000", "0x3DCCCCCD", "0xC0200000", "0x00000001", "0x42C80000"}

	log.Info().Int("count", len(values)).Msg("Sending values")

	start := time.Now()
	rows, err := c.Convert(context.Background(), values, ieee754.Single)
	if err != nil {
		log.Fatal().Err(err).Msg("Convert failed")
	}
	elapsed := time.Since(start)

	log.Info().Dur("elapsed", elapsed).Msg("Received converted rows")

	if len(rows) != len(values) {
		log.Fatal().Int("expected", len(values)).Int("got", len(rows)).Msg("Row count mismatch")
	}

	for i, row := range rows {
		if row.Err != "" {
			log.Fatal().Int("index", i).Str("value", row.Value).Str("err", row.Err).Msg("Row failed")
		}
		if row.Hex != want[i] {
			log.Fatal().Int("index", i).Str("got", row.Hex).Str("want", want[i]).Msg("Word mismatch")
		}
		log.Info().Str("value", row.Value).Str("hex", row.Hex).Str("class", row.Class).Msg("Row valid")
	}

	fmt.Println("VERIFICATION PASSED")
}
