// Package calc is the operation facade the shells call. Each method
// parses its inputs, runs the field-level engine, and returns a Result
// carrying the packed word in every rendering plus the step trace and an
// optional host FPU cross-check.
package calc

import (
	"fmt"
	"strings"

	"github.com/23skdu/floatlab/internal/ieee754"
	"github.com/23skdu/floatlab/internal/literal"
)

// Result is everything a shell needs to render one operation.
type Result struct {
	Input     string            `json:"input,omitempty"`
	Precision ieee754.Precision `json:"precision"`
	Word      uint64            `json:"word"`
	Bits      string            `json:"bits"`
	Hex       string            `json:"hex"`
	Fields    ieee754.Triple    `json:"fields"`
	Class     string            `json:"class"`
	Decimal   string            `json:"decimal"`
	Exact     string            `json:"exact,omitempty"`
	Trace     []ieee754.Step    `json:"trace,omitempty"`
	Check     *Check            `json:"check,omitempty"`
}

// Engine runs operations at a fixed verification setting. It holds no
// per-operation state and is safe for concurrent use.
type Engine struct {
	verify bool
}

// NewEngine returns an engine. With verify set, every result carries a
// host FPU cross-check.
func NewEngine(verify bool) *Engine {
	return &Engine{verify: verify}
}

// Convert parses a decimal literal and encodes it.
func (e *Engine) Convert(text string, p ieee754.Precision) (*Result, error) {
	defer observe("convert", string(p))()

	d, err := literal.Parse(text)
	if err != nil {
		inputFailures.WithLabelValues("literal").Inc()
		return nil, err
	}
	t, trace := ieee754.Encode(d, p)
	res, err := e.finish("convert", text, t, trace, p)
	if err != nil {
		return nil, err
	}
	if e.verify {
		res.Check = checkEncode(d, res.Word, p)
	}
	return res, nil
}

// Decode parses a bit string or hex word and decodes it. Spaces and
// underscores inside the input are dropped before parsing, so grouped
// output pastes back in; the width itself is still exact.
func (e *Engine) Decode(input string, p ieee754.Precision) (*Result, error) {
	defer observe("decode", string(p))()

	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '_' {
			return -1
		}
		return r
	}, strings.TrimSpace(input))
	word, err := ieee754.ParseWord(cleaned, p)
	if err != nil {
		inputFailures.WithLabelValues("bits").Inc()
		return nil, err
	}
	t := ieee754.Unpack(word, p)
	d, trace := ieee754.Decode(t, p)

	res := &Result{
		Input:     input,
		Precision: p,
		Word:      word,
		Bits:      ieee754.FormatBits(word, p),
		Hex:       ieee754.FormatHex(word, p),
		Fields:    t,
		Class:     ieee754.Classify(t, p).String(),
		Decimal:   literal.Format(d, p),
		Trace:     trace.Steps(),
	}
	if d.Kind == ieee754.KindFinite {
		res.Exact = d.Signed().RatString()
	}
	if e.verify {
		res.Check = checkDecode(res.Decimal, word, p)
	}
	return res, nil
}

// Add parses two operands and adds them on the stored fields.
func (e *Engine) Add(a, b string, p ieee754.Precision) (*Result, error) {
	defer observe("add", string(p))()
	return e.arith(a, b, p, "+")
}

// Multiply parses two operands and multiplies them on the stored fields.
func (e *Engine) Multiply(a, b string, p ieee754.Precision) (*Result, error) {
	defer observe("multiply", string(p))()
	return e.arith(a, b, p, "*")
}

func (e *Engine) arith(a, b string, p ieee754.Precision, op string) (*Result, error) {
	ta, err := e.operand(a, p)
	if err != nil {
		return nil, fmt.Errorf("left operand: %w", err)
	}
	tb, err := e.operand(b, p)
	if err != nil {
		return nil, fmt.Errorf("right operand: %w", err)
	}

	var t ieee754.Triple
	var trace *ieee754.Trace
	name := "add"
	if op == "*" {
		t, trace = ieee754.Mul(ta, tb, p)
		name = "multiply"
	} else {
		t, trace = ieee754.Add(ta, tb, p)
	}

	res, err := e.finish(name, fmt.Sprintf("%s %s %s", a, op, b), t, trace, p)
	if err != nil {
		return nil, err
	}
	if e.verify {
		res.Check = checkArith(op, ta, tb, res.Word, p)
	}
	return res, nil
}

// operand accepts either a packed word (hex, or a bare full-width bit
// string) or a decimal literal, and yields the stored fields.
func (e *Engine) operand(s string, p ieee754.Precision) (ieee754.Triple, error) {
	in := strings.TrimSpace(s)
	if strings.HasPrefix(in, "0x") || strings.HasPrefix(in, "0X") || isBitString(in, p) {
		word, err := ieee754.ParseWord(in, p)
		if err != nil {
			inputFailures.WithLabelValues("bits").Inc()
			return ieee754.Triple{}, err
		}
		return ieee754.Unpack(word, p), nil
	}
	d, err := literal.Parse(in)
	if err != nil {
		inputFailures.WithLabelValues("literal").Inc()
		return ieee754.Triple{}, err
	}
	t, _ := ieee754.Encode(d, p)
	return t, nil
}

func isBitString(s string, p ieee754.Precision) bool {
	if len(s) != p.TotalBits() {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '0' && s[i] != '1' {
			return false
		}
	}
	return true
}

// finish packs the triple and fills the shared Result fields, decoding
// once for the decimal renderings.
func (e *Engine) finish(op, input string, t ieee754.Triple, trace *ieee754.Trace, p ieee754.Precision) (*Result, error) {
	word, err := ieee754.Pack(t, p)
	if err != nil {
		// Unreachable for engine-produced triples.
		return nil, fmt.Errorf("pack %s result: %w", op, err)
	}
	d, _ := ieee754.Decode(t, p)

	res := &Result{
		Input:     input,
		Precision: p,
		Word:      word,
		Bits:      ieee754.FormatBits(word, p),
		Hex:       ieee754.FormatHex(word, p),
		Fields:    t,
		Class:     ieee754.Classify(t, p).String(),
		Decimal:   literal.Format(d, p),
		Trace:     trace.Steps(),
	}
	if d.Kind == ieee754.KindFinite {
		res.Exact = d.Signed().RatString()
	}
	for _, s := range res.Trace {
		if s.Label == "round" && strings.HasPrefix(s.Value, "guard") {
			roundedResults.WithLabelValues(op).Inc()
			break
		}
	}
	return res, nil
}
