package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/fxamacker/cbor/v2"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/semaphore"

	"github.com/23skdu/floatlab/internal/batch"
	"github.com/23skdu/floatlab/internal/calc"
	"github.com/23skdu/floatlab/internal/ieee754"
	"github.com/23skdu/floatlab/internal/literal"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "floatlab_http_requests_total",
		Help: "HTTP requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "floatlab_http_request_duration_seconds",
		Help:    "Time spent serving conversion requests",
		Buckets: prometheus.DefBuckets,
	})
)

// Calculator is what the HTTP handlers need from the engine.
type Calculator interface {
	Convert(text string, p ieee754.Precision) (*calc.Result, error)
	Decode(input string, p ieee754.Precision) (*calc.Result, error)
	Add(a, b string, p ieee754.Precision) (*calc.Result, error)
	Multiply(a, b string, p ieee754.Precision) (*calc.Result, error)
}

type Server struct {
	engine Calculator
	conv   *batch.Converter
	alloc  memory.Allocator
	sem    *semaphore.Weighted
}

func NewServer(engine Calculator, maxConcurrent int) *Server {
	alloc := memory.NewGoAllocator()
	return &Server{
		engine: engine,
		conv:   batch.NewConverter(alloc),
		alloc:  alloc,
		sem:    semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

func startServer(addr string, engine Calculator, maxConcurrent int) {
	srv := NewServer(engine, maxConcurrent)

	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/v1/convert", srv.handleConvert)
	http.HandleFunc("/v1/decode", srv.handleDecode)
	http.HandleFunc("/v1/add", srv.handleAdd)
	http.HandleFunc("/v1/multiply", srv.handleMultiply)
	http.HandleFunc("/v1/convert/arrow", srv.handleConvertArrow)
	http.HandleFunc("/health", srv.handleHealth)

	log.Info().Str("addr", addr).Msg("Starting floatlab server")
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

var tracer = otel.Tracer("floatlab-server")

type convertRequest struct {
	Value     string `json:"value" cbor:"value"`
	Precision string `json:"precision" cbor:"precision"`
	Explain   bool   `json:"explain" cbor:"explain"`
}

type arithRequest struct {
	Left      string `json:"left" cbor:"left"`
	Right     string `json:"right" cbor:"right"`
	Precision string `json:"precision" cbor:"precision"`
	Explain   bool   `json:"explain" cbor:"explain"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	s.handleUnary(w, r, "convert", s.engine.Convert)
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	s.handleUnary(w, r, "decode", s.engine.Decode)
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	s.handleBinary(w, r, "add", s.engine.Add)
}

func (s *Server) handleMultiply(w http.ResponseWriter, r *http.Request) {
	s.handleBinary(w, r, "multiply", s.engine.Multiply)
}

func (s *Server) handleUnary(w http.ResponseWriter, r *http.Request, name string, op func(string, ieee754.Precision) (*calc.Result, error)) {
	ctx, span := tracer.Start(r.Context(), "handle"+name)
	defer span.End()

	start := time.Now()
	defer func() {
		requestDuration.Observe(time.Since(start).Seconds())
	}()

	if r.Method != http.MethodPost {
		requestsTotal.WithLabelValues(name, "405").Inc()
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req convertRequest
	if err := decodeBody(r, &req); err != nil {
		span.RecordError(err)
		requestsTotal.WithLabelValues(name, "400").Inc()
		http.Error(w, fmt.Sprintf("Bad request: %v", err), http.StatusBadRequest)
		return
	}

	p, err := ieee754.ParsePrecision(req.Precision)
	if err != nil {
		requestsTotal.WithLabelValues(name, "400").Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("precision", string(p)))

	if err := s.sem.Acquire(ctx, 1); err != nil {
		log.Error().Err(err).Msg("Failed to acquire semaphore")
		requestsTotal.WithLabelValues(name, "503").Inc()
		http.Error(w, "Server busy", http.StatusServiceUnavailable)
		return
	}
	defer s.sem.Release(1)

	res, err := op(req.Value, p)
	if err != nil {
		span.RecordError(err)
		status := statusFor(err)
		requestsTotal.WithLabelValues(name, fmt.Sprint(status)).Inc()
		http.Error(w, err.Error(), status)
		return
	}
	if !req.Explain && !wantsExplain(r) {
		res.Trace = nil
	}

	requestsTotal.WithLabelValues(name, "200").Inc()
	writeResult(w, r, res)
}

func (s *Server) handleBinary(w http.ResponseWriter, r *http.Request, name string, op func(string, string, ieee754.Precision) (*calc.Result, error)) {
	ctx, span := tracer.Start(r.Context(), "handle"+name)
	defer span.End()

	start := time.Now()
	defer func() {
		requestDuration.Observe(time.Since(start).Seconds())
	}()

	if r.Method != http.MethodPost {
		requestsTotal.WithLabelValues(name, "405").Inc()
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req arithRequest
	if err := decodeBody(r, &req); err != nil {
		span.RecordError(err)
		requestsTotal.WithLabelValues(name, "400").Inc()
		http.Error(w, fmt.Sprintf("Bad request: %v", err), http.StatusBadRequest)
		return
	}

	p, err := ieee754.ParsePrecision(req.Precision)
	if err != nil {
		requestsTotal.WithLabelValues(name, "400").Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("precision", string(p)))

	if err := s.sem.Acquire(ctx, 1); err != nil {
		log.Error().Err(err).Msg("Failed to acquire semaphore")
		requestsTotal.WithLabelValues(name, "503").Inc()
		http.Error(w, "Server busy", http.StatusServiceUnavailable)
		return
	}
	defer s.sem.Release(1)

	res, err := op(req.Left, req.Right, p)
	if err != nil {
		span.RecordError(err)
		status := statusFor(err)
		requestsTotal.WithLabelValues(name, fmt.Sprint(status)).Inc()
		http.Error(w, err.Error(), status)
		return
	}
	if !req.Explain && !wantsExplain(r) {
		res.Trace = nil
	}

	requestsTotal.WithLabelValues(name, "200").Inc()
	writeResult(w, r, res)
}

// handleConvertArrow streams an Arrow IPC batch of values through the
// converter and writes the converted batches back as IPC.
func (s *Server) handleConvertArrow(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "handleConvertArrow")
	defer span.End()

	start := time.Now()
	defer func() {
		requestDuration.Observe(time.Since(start).Seconds())
	}()

	if r.Method != http.MethodPost {
		requestsTotal.WithLabelValues("convert_arrow", "405").Inc()
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	p, err := ieee754.ParsePrecision(r.URL.Query().Get("precision"))
	if err != nil {
		requestsTotal.WithLabelValues("convert_arrow", "400").Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		log.Error().Err(err).Msg("Failed to acquire semaphore")
		requestsTotal.WithLabelValues("convert_arrow", "503").Inc()
		http.Error(w, "Server busy", http.StatusServiceUnavailable)
		return
	}
	defer s.sem.Release(1)

	w.Header().Set("Content-Type", "application/vnd.apache.arrow.stream")
	rows, err := s.conv.ConvertStream(r.Body, w, p)
	if err != nil {
		span.RecordError(err)
		log.Error().Err(err).Msg("Error converting Arrow stream")
		requestsTotal.WithLabelValues("convert_arrow", "400").Inc()
		// Headers are already out once rows flowed, best effort here.
		http.Error(w, fmt.Sprintf("Stream error: %v", err), http.StatusBadRequest)
		return
	}

	span.SetAttributes(attribute.Int64("rows", rows))
	requestsTotal.WithLabelValues("convert_arrow", "200").Inc()
	log.Info().Int64("rows", rows).Str("precision", string(p)).Msg("Converted Arrow stream")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// decodeBody decodes JSON by default and CBOR when the Content-Type
// says so.
func decodeBody(r *http.Request, v any) error {
	if isCBOR(r) {
		return cbor.NewDecoder(r.Body).Decode(v)
	}
	return json.NewDecoder(r.Body).Decode(v)
}

// writeResult mirrors the request codec on the way out.
func writeResult(w http.ResponseWriter, r *http.Request, res *calc.Result) {
	if isCBOR(r) {
		w.Header().Set("Content-Type", "application/cbor")
		data, err := cbor.Marshal(res)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_, _ = w.Write(data)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func isCBOR(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/cbor")
}

func wantsExplain(r *http.Request) bool {
	return r.URL.Query().Get("explain") == "1"
}

// statusFor maps input errors to 400 and everything else to 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, literal.ErrInvalidLiteral),
		errors.Is(err, ieee754.ErrInvalidBitString),
		errors.Is(err, ieee754.ErrInvalidPrecision):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
