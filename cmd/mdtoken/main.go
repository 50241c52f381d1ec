// Copyright 2024 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// mdtoken prints the block-level tokens of Markdown documents.
//
// Usage:
//
//	mdtoken [flags] [inputs...]
//
// If no input is provided, Markdown is read from stdin.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"
	"golang.org/x/term"
	"zombiezen.com/go/mdtoken"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type config struct {
	html           bool
	keepIndented   bool
	strictHeadings bool
	outPath        string
	inputs         []string
}

func parseFlags(args []string, stderr io.Writer) (*config, error) {
	cfg := new(config)
	flags := pflag.NewFlagSet("mdtoken", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.BoolVar(&cfg.html, "html", false, "Render tokens as HTML instead of listing them")
	flags.BoolVarP(&cfg.keepIndented, "keep-indented", "k", false, "Emit indented lines as code instead of dropping them")
	flags.BoolVarP(&cfg.strictHeadings, "strict-headings", "s", false, "Count only the leading # run of a heading")
	flags.StringVarP(&cfg.outPath, "output", "o", "", "Output file instead of stdout")
	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: mdtoken [flags] [inputs...]\n")
		fmt.Fprintln(stderr, "\nIf no input is provided, Markdown is read from stdin.")
		fmt.Fprintln(stderr, "\nFlags:")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	cfg.inputs = flags.Args()
	return cfg, nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseFlags(args, stderr)
	if err == pflag.ErrHelp {
		return 0
	}
	if err != nil {
		return 2
	}

	out := stdout
	var outFile *os.File
	if cfg.outPath != "" {
		outFile, err = os.Create(cfg.outPath)
		if err != nil {
			fmt.Fprintf(stderr, "open output: %v\n", err)
			return 1
		}
		out = outFile
	}
	code := writeOutput(cfg, stdin, out, stderr)
	if outFile != nil {
		if closeCode := closeOutput(outFile, stderr); code == 0 {
			code = closeCode
		}
	}
	return code
}

// closeOutput closes the output file,
// reporting a failure since it may mean the output was not written.
func closeOutput(c io.Closer, stderr io.Writer) int {
	if err := c.Close(); err != nil {
		fmt.Fprintf(stderr, "close output: %v\n", err)
		return 1
	}
	return 0
}

// writeOutput tokenizes every input named in cfg and writes the result to out.
// It returns the process exit status.
func writeOutput(cfg *config, stdin io.Reader, out io.Writer, stderr io.Writer) int {
	bw := bufio.NewWriter(out)

	opts := &mdtoken.Options{
		KeepIndented:   cfg.keepIndented,
		StrictHeadings: cfg.strictHeadings,
	}
	names := cfg.inputs
	if len(names) == 0 {
		names = []string{"-"}
	}
	for _, name := range names {
		tokens, err := tokenizeInput(name, stdin, opts)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", name, err)
			return 1
		}
		if cfg.html {
			err = mdtoken.RenderHTML(bw, tokens)
		} else {
			err = printTokens(bw, tokens, len(names) > 1, name, isTerminal(out))
		}
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", name, err)
			return 1
		}
	}
	if err := bw.Flush(); err != nil {
		fmt.Fprintf(stderr, "write output: %v\n", err)
		return 1
	}
	return 0
}

func tokenizeInput(name string, stdin io.Reader, opts *mdtoken.Options) ([]mdtoken.Token, error) {
	if name == "-" {
		return mdtoken.TokenizeReader(stdin, opts)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return mdtoken.TokenizeReader(f, opts)
}

// printTokens writes one token per line as tab-separated
// line number, type, and quoted text,
// prefixed with the input name if withName is true.
// Columns are aligned if aligned is true.
func printTokens(w io.Writer, tokens []mdtoken.Token, withName bool, name string, aligned bool) error {
	if aligned {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		if err := writeTokenRows(tw, tokens, withName, name); err != nil {
			return err
		}
		return tw.Flush()
	}
	return writeTokenRows(w, tokens, withName, name)
}

func writeTokenRows(w io.Writer, tokens []mdtoken.Token, withName bool, name string) error {
	for _, tok := range tokens {
		if withName {
			if _, err := fmt.Fprintf(w, "%s\t", name); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%d\t%v\t%q\n", tok.Line, tok.Type, tok.Text); err != nil {
			return err
		}
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
