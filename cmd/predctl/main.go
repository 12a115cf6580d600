/*
Predctl evaluates boolean predicates written in this module's DSL
against a JSON document, either once from the command line or
interactively in a REPL.

Usage:

	predctl [flags]
	predctl [flags] -e PREDICATE

Once started with no -e flag, predctl reads predicate source one line at
a time from stdin (using GNU-readline-style editing when attached to a
tty) and evaluates each against the document currently held in memory,
printing the boolean result followed by the analyze() failure trail and
literal captures. Special lines beginning with ":" control the session:

	:doc JSON
		Replace the in-memory document with the object decoded from JSON.

	:show
		Print the current in-memory document.

	:quit
		Exit the REPL.

The flags are:

	-v, --version
		Print the current version of predctl and exit.

	-e, --expr PREDICATE
		Evaluate PREDICATE once against the document given by --doc (or
		"{}" if not given) and exit, instead of starting the REPL.

	-d, --doc JSON
		The JSON document to evaluate against. Defaults to "{}".

	-a, --analyze
		In one-shot mode, also print the failure trail and literal
		captures, not just the boolean result.
*/
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dekarrin/rosed"
	"github.com/spf13/pflag"

	"github.com/dekarrin/boolpred"
	"github.com/dekarrin/boolpred/internal/resolver"
	"github.com/dekarrin/boolpred/internal/version"
)

const (
	ExitSuccess = iota
	ExitPredicateError
	ExitInitError
)

const consoleOutputWidth = 80

var (
	flagVersion = pflag.BoolP("version", "v", false, "Print the current version of predctl and exit.")
	flagExpr    = pflag.StringP("expr", "e", "", "Evaluate the given predicate once and exit instead of starting the REPL.")
	flagDoc     = pflag.StringP("doc", "d", "{}", "The JSON document to evaluate against.")
	flagAnalyze = pflag.BoolP("analyze", "a", false, "In one-shot mode, also print the failure trail and literal captures.")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	doc, err := decodeDoc(*flagDoc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(ExitInitError)
	}

	if *flagExpr != "" {
		os.Exit(runOnce(*flagExpr, doc, *flagAnalyze))
	}

	os.Exit(runREPL(doc))
}

func decodeDoc(s string) (resolver.MapDocument, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("malformed JSON document: %w", err)
	}
	return resolver.MapDocument(m), nil
}

func runOnce(source string, doc resolver.MapDocument, analyze bool) int {
	pred := boolpred.New(source)
	if !pred.IsValid() {
		for _, e := range pred.Errors() {
			fmt.Fprintf(os.Stderr, "%s error at line %d, col %d: %s\n", e.Kind, e.Line, e.Col, e.Message)
		}
		return ExitPredicateError
	}

	if !analyze {
		fmt.Println(pred.Evaluate(doc))
		return ExitSuccess
	}

	matched, result := pred.Analyze(doc)
	printAnalysis(matched, result)
	return ExitSuccess
}

func runREPL(doc resolver.MapDocument) int {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: "predicate> ",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: could not start readline: %s\n", err)
		return ExitInitError
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if _, interrupted := err.(*readline.InterruptError); interrupted || err == io.EOF {
				return ExitSuccess
			}
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
			return ExitInitError
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case line == ":quit" || line == ":q":
			return ExitSuccess
		case line == ":show":
			printed, _ := json.MarshalIndent(map[string]any(doc), "", "  ")
			fmt.Println(string(printed))
			continue
		case strings.HasPrefix(line, ":doc "):
			newDoc, err := decodeDoc(strings.TrimPrefix(line, ":doc "))
			if err != nil {
				fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
				continue
			}
			doc = newDoc
			continue
		}

		pred := boolpred.New(line)
		if !pred.IsValid() {
			for _, e := range pred.Errors() {
				fmt.Fprintf(os.Stderr, "%s error at line %d, col %d: %s\n", e.Kind, e.Line, e.Col, e.Message)
			}
			continue
		}

		matched, result := pred.Analyze(doc)
		printAnalysis(matched, result)
	}
}

func printAnalysis(matched bool, result boolpred.AnalysisResult) {
	fmt.Printf("-> %v\n", matched)
	if len(result.Failed) > 0 {
		fmt.Println("failures:")
		for _, f := range result.Failed {
			wrapped := rosed.Edit(f).Wrap(consoleOutputWidth).String()
			fmt.Printf("  %s\n", strings.ReplaceAll(wrapped, "\n", "\n  "))
		}
	}
	if len(result.Literals) > 0 {
		fmt.Println("literals:")
		for expr, v := range result.Literals {
			fmt.Printf("  %s = %s\n", expr, v.String())
		}
	}
}
