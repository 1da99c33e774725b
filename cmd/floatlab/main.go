package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/23skdu/floatlab/internal/batch"
	"github.com/23skdu/floatlab/internal/calc"
	"github.com/23skdu/floatlab/internal/client"
	"github.com/23skdu/floatlab/internal/ieee754"
)

var (
	listenAddr    = flag.String("listen", "", "Address to listen on for HTTP server (e.g. :8080)")
	flightAddr    = flag.String("flight", "", "Address to listen on for Flight server (e.g. :9090)")
	serverAddr    = flag.String("server", "", "Remote Flight converter address (e.g. localhost:9090)")
	flagPrecision = flag.String("precision", "single", "Precision (single, double)")
	flagOp        = flag.String("op", "convert", "Operation for command line arguments (convert, decode, add, mul)")
	interactive   = flag.Bool("interactive", false, "Interactive shell")
	flagExplain   = flag.Bool("explain", false, "Print the step trace with each result")
	flagGroup     = flag.Int("group", 4, "Group printed bits every N digits (0 disables)")
	flagVerify    = flag.Bool("verify", true, "Cross-check results against the host FPU")
	inputPath     = flag.String("input", "", "Convert an Arrow IPC stream file ('-' for stdin), IPC output on stdout")
	maxConcurrent = flag.Int("max-concurrent", 1024, "Maximum number of concurrent requests")
	enableOTel    = flag.Bool("otel", false, "Enable OpenTelemetry tracing (stdout)")
	cpuProfile    = flag.String("cpuprofile", "", "Write cpu profile to file")
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Caller().Logger()

	flag.Parse()

	if *enableOTel {
		shutdown, err := initTracer()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize tracer")
		}
		defer shutdown(context.Background())
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create CPU profile file")
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("Could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
	}

	p, err := ieee754.ParsePrecision(*flagPrecision)
	if err != nil {
		log.Fatal().Err(err).Msg("Bad precision flag")
	}

	engine := calc.NewEngine(*flagVerify)

	// Server mode
	if *listenAddr != "" {
		go startServer(*listenAddr, engine, *maxConcurrent)
		if *flightAddr == "" {
			select {}
		}
	}

	if *flightAddr != "" {
		StartFlightServer(*flightAddr)
		return
	}

	// Stream mode: Arrow IPC in, Arrow IPC out
	if *inputPath != "" {
		runStream(*inputPath, p)
		return
	}

	if *interactive {
		runREPL(engine, p, *flagExplain, *flagGroup, *flagVerify)
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	// Remote mode: push the values through a Flight converter
	if *serverAddr != "" {
		runRemote(*serverAddr, args, p)
		return
	}

	runArgs(engine, args, p)
}

func runStream(path string, p ieee754.Precision) {
	in := os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open input")
		}
		defer f.Close()
		in = f
	}

	rows, err := batch.NewConverter(nil).ConvertStream(in, os.Stdout, p)
	if err != nil {
		log.Fatal().Err(err).Msg("Stream conversion failed")
	}
	log.Info().Int64("rows", rows).Str("precision", string(p)).Msg("Converted stream")
}

func runRemote(addr string, values []string, p ieee754.Precision) {
	fc, err := client.NewFlightClient(addr)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Flight converter")
	}
	defer func() {
		if err := fc.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close flight client")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	rows, err := fc.Convert(ctx, values, p)
	if err != nil {
		log.Fatal().Err(err).Msg("Remote conversion failed")
	}
	for _, row := range rows {
		if row.Err != "" {
			fmt.Printf("%-20s error: %s\n", row.Value, row.Err)
			continue
		}
		fmt.Printf("%-20s %s  %s  %s  = %s\n", row.Value, row.Hex, row.Bits, row.Class, row.Decimal)
	}
}

func runArgs(engine *calc.Engine, args []string, p ieee754.Precision) {
	switch *flagOp {
	case "add", "mul", "multiply":
		if len(args) != 2 {
			log.Fatal().Str("op", *flagOp).Msg("Need exactly two operands")
		}
		var (
			res *calc.Result
			err error
		)
		if *flagOp == "add" {
			res, err = engine.Add(args[0], args[1], p)
		} else {
			res, err = engine.Multiply(args[0], args[1], p)
		}
		if err != nil {
			log.Fatal().Err(err).Msg("Operation failed")
		}
		printResult(res, *flagExplain, *flagGroup, colorEnabled())
	case "decode":
		for _, arg := range args {
			res, err := engine.Decode(arg, p)
			if err != nil {
				log.Fatal().Err(err).Str("input", arg).Msg("Decode failed")
			}
			printResult(res, *flagExplain, *flagGroup, colorEnabled())
		}
	case "convert":
		for _, arg := range args {
			res, err := engine.Convert(arg, p)
			if err != nil {
				log.Fatal().Err(err).Str("input", arg).Msg("Convert failed")
			}
			printResult(res, *flagExplain, *flagGroup, colorEnabled())
		}
	default:
		log.Fatal().Str("op", *flagOp).Msg("Unknown operation")
	}
}

func initTracer() (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("floatlab"),
		)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp.Shutdown, nil
}
