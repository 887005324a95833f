/*
Fasteval starts an interactive shell for evaluating single-line algebraic
expressions, or evaluates one expression given on the command line and
exits.

Usage:

	fasteval [flags] [expression]

The flags are:

	-v, --version
		Print the current version and exit.

	-c, --command EXPR
		Evaluate EXPR immediately and exit, instead of starting a shell.

	-e, --env
		Resolve free variable names from the process environment,
		parsing each value as a float64.

Once a shell has started, each line read is parsed, compiled, and
evaluated; the result or any error is printed, and print() built-ins write
to stderr as they run. Ctrl-D, Ctrl-C, or "quit" exits.
*/
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/pflag"

	fasteval "github.com/likebike/fasteval-sub000"
	"github.com/likebike/fasteval-sub000/internal/diag"
	"github.com/likebike/fasteval-sub000/internal/version"
)

const (
	exitSuccess = iota
	exitEvalError
	exitInitError
)

var (
	returnCode  = exitSuccess
	flagVersion = pflag.BoolP("version", "v", false, "Print the current version and exit")
	flagCommand = pflag.StringP("command", "c", "", "Evaluate the given expression and exit")
	flagEnv     = pflag.BoolP("env", "e", false, "Resolve free variable names from the process environment")
)

func main() {
	defer func() {
		if p := recover(); p != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", p))
		}
		os.Exit(returnCode)
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Println(version.Current)
		return
	}

	ns := namespaceFromFlags()

	if *flagCommand != "" {
		runOne(*flagCommand, ns)
		return
	}
	if args := pflag.Args(); len(args) > 0 {
		runOne(strings.Join(args, " "), ns)
		return
	}
	runShell(ns)
}

// namespaceFromFlags builds the Namespace the shell and -c both evaluate
// against: either one that resolves nothing, or one backed by the
// process environment when -e is given.
func namespaceFromFlags() fasteval.Namespace {
	if !*flagEnv {
		return fasteval.EmptyNamespace{}
	}
	return fasteval.FlatCallbackNamespace{Callback: func(name string, args []float64) (float64, bool) {
		raw, ok := os.LookupEnv(name)
		if !ok {
			return 0, false
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}}
}

func runOne(text string, ns fasteval.Namespace) {
	v, err := fasteval.EzEval(text, ns)
	if err != nil {
		printErr(err)
		returnCode = exitEvalError
		return
	}
	fmt.Println(strconv.FormatFloat(v, 'g', -1, 64))
}

func runShell(ns fasteval.Namespace) {
	rl, err := readline.NewEx(&readline.Config{Prompt: "fasteval> "})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: initializing shell: %s\n", err)
		returnCode = exitInitError
		return
	}
	defer rl.Close()

	fmt.Println("fasteval " + version.Current + " - type an expression, or \"quit\" to exit")

	// One Slab, Clear()d between lines: this is the whole point of the
	// arena design, reused across an entire shell session instead of
	// allocating fresh per line.
	s := fasteval.NewSlab()
	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
				break
			}
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
			returnCode = exitInitError
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		s.Clear()
		ei, err := fasteval.Parse(&s.PS, line)
		if err != nil {
			printErr(err)
			continue
		}
		ii := fasteval.Compile(&s.PS, &s.CS, ei)
		v, err := fasteval.EvalCompiled(s, ii, ns)
		if err != nil {
			printErr(err)
			continue
		}
		fmt.Println(strconv.FormatFloat(v, 'g', -1, 64))
	}
}

func printErr(err error) {
	var friendly string
	switch e := err.(type) {
	case *fasteval.ParseError:
		friendly = fmt.Sprintf("couldn't parse that expression: %s", e.Detail())
	case *fasteval.EvalError:
		friendly = fmt.Sprintf("couldn't evaluate that expression: %s", e.Detail())
	default:
		friendly = err.Error()
	}
	fmt.Fprintln(os.Stderr, diag.Friendly(diag.Wrap(err, friendly, err.Error())))
}
