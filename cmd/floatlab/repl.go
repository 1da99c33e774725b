package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/23skdu/floatlab/internal/calc"
	"github.com/23skdu/floatlab/internal/ieee754"
	"github.com/23skdu/floatlab/internal/render"
)

func colorEnabled() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// runREPL is the interactive shell. Bare lines are evaluated: a hex or
// full-width bit string decodes, "a + b" and "a * b" compute, anything
// else is treated as a decimal literal to convert.
func runREPL(engine *calc.Engine, p ieee754.Precision, explain bool, group int, verify bool) {
	color := colorEnabled()
	sc := bufio.NewScanner(os.Stdin)

	show := func(res *calc.Result, err error) {
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		printResult(res, explain, group, color)
	}

	fmt.Println("floatlab interactive shell. \"help\" lists commands, \"quit\" leaves.")
	for {
		fmt.Printf("%s> ", p)
		if !sc.Scan() {
			fmt.Println()
			return
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		rest := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))

		switch fields[0] {
		case "quit", "exit":
			return
		case "help":
			printHelp()
		case "precision":
			if rest == "" {
				fmt.Println(p)
				continue
			}
			np, err := ieee754.ParsePrecision(rest)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			p = np
		case "explain":
			explain = parseToggle(rest, explain)
			fmt.Printf("explain %s\n", onOff(explain))
		case "group":
			n, err := strconv.Atoi(rest)
			if err != nil {
				fmt.Println("usage: group <n>  (0 disables)")
				continue
			}
			group = n
		case "verify":
			verify = parseToggle(rest, verify)
			engine = calc.NewEngine(verify)
			fmt.Printf("verify %s\n", onOff(verify))
		case "convert":
			show(engine.Convert(rest, p))
		case "decode":
			show(engine.Decode(rest, p))
		case "add":
			if len(fields) != 3 {
				fmt.Println("usage: add <a> <b>")
				continue
			}
			show(engine.Add(fields[1], fields[2], p))
		case "mul", "multiply":
			if len(fields) != 3 {
				fmt.Println("usage: mul <a> <b>")
				continue
			}
			show(engine.Multiply(fields[1], fields[2], p))
		default:
			if len(fields) == 3 && (fields[1] == "+" || fields[1] == "*") {
				if fields[1] == "+" {
					show(engine.Add(fields[0], fields[2], p))
				} else {
					show(engine.Multiply(fields[0], fields[2], p))
				}
				continue
			}
			if looksLikeWord(line, p) {
				show(engine.Decode(line, p))
				continue
			}
			show(engine.Convert(line, p))
		}
	}
}

// looksLikeWord reports whether the line reads as a packed word: a hex
// word or a bit string of exactly the precision's width, grouping
// spaces and underscores allowed.
func looksLikeWord(line string, p ieee754.Precision) bool {
	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '_' {
			return -1
		}
		return r
	}, line)
	if strings.HasPrefix(cleaned, "0x") || strings.HasPrefix(cleaned, "0X") {
		return true
	}
	if len(cleaned) != p.TotalBits() {
		return false
	}
	for i := 0; i < len(cleaned); i++ {
		if cleaned[i] != '0' && cleaned[i] != '1' {
			return false
		}
	}
	return true
}

func parseToggle(s string, current bool) bool {
	switch s {
	case "on":
		return true
	case "off":
		return false
	case "":
		return !current
	default:
		fmt.Println("usage: on | off")
		return current
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func printResult(res *calc.Result, explain bool, group int, color bool) {
	bits := render.Group(res.Bits, group)
	if color {
		if spans, err := render.Segment(res.Bits, res.Precision); err == nil {
			bits = render.ColorizeSpaced(spans)
		}
	}

	fmt.Printf("%s  %s  %s\n", res.Hex, bits, res.Class)
	fmt.Printf("  sign=%d exponent=%#x mantissa=%#x\n", res.Fields.Sign, res.Fields.Exponent, res.Fields.Mantissa)
	fmt.Printf("  = %s", res.Decimal)
	if res.Exact != "" {
		fmt.Printf("  (exact %s)", res.Exact)
	}
	fmt.Println()

	if res.Check != nil && !res.Check.Match {
		fmt.Printf("  host FPU differs: %s (%d ulp)\n", res.Check.Host, res.Check.ULP)
	}
	if explain && len(res.Trace) > 0 {
		fmt.Print(render.TraceText(res.Trace))
	}
}

func printHelp() {
	fmt.Print(`commands:
  <literal>            convert a decimal literal (e.g. 0.1, -2.5e3, inf)
  <word>               decode a hex word or full-width bit string
  <a> + <b>            add two operands (literals or words)
  <a> * <b>            multiply two operands
  convert <literal>    explicit convert
  decode <word>        explicit decode
  add <a> <b>          explicit add
  mul <a> <b>          explicit multiply
  precision [single|double]
  explain [on|off]     show the step trace
  group <n>            group printed bits every n digits (0 disables)
  verify [on|off]      cross-check against the host FPU
  quit
`)
}
