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

// Package mdtoken classifies the lines of a Markdown document
// into block-level tokens.
//
// Each line is classified in a single pass,
// looking back at no more than the previous token.
// Inline syntax (emphasis, links, code spans) is not interpreted.
package mdtoken

import (
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// codeBlockIndentLimit is the column width of an indent
// at which a line no longer starts a block.
const codeBlockIndentLimit = 4

// maxHeadingLevel is the largest valid ATX heading level.
const maxHeadingLevel = 6

// thematicBreakMinRun is the number of repeated characters
// needed to form a thematic break.
const thematicBreakMinRun = 3

// Options is the set of parameters to [NewTokenizer].
// A nil *Options is equivalent to the zero value.
type Options struct {
	// If KeepIndented is true, lines indented by four or more columns
	// (or starting with a tab) produce an IndentCodeBlockKind token
	// holding the raw line, or a BlankLineKind token if they are all whitespace.
	// Otherwise such lines produce no token at all.
	KeepIndented bool

	// If StrictHeadings is true, a heading's level is the length
	// of the leading run of '#' characters
	// and the run must be followed by whitespace or the end of the line.
	// Otherwise every '#' on the line counts toward the level.
	StrictHeadings bool
}

// Tokenize classifies every line in lines.
// The returned tokens are in line order.
// Lines skipped because of their indentation do not produce a token.
func Tokenize(lines []string, opts *Options) []Token {
	tz := NewTokenizer(lines, opts)
	var tokens []Token
	for {
		tok, err := tz.Next()
		if err != nil {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

// TokenizeReader reads lines from r with a [LineReader] and classifies them.
// Any error is from reading r: no tokens are returned in that case.
func TokenizeReader(r io.Reader, opts *Options) ([]Token, error) {
	lines, err := ReadLines(r)
	if err != nil {
		return nil, err
	}
	return Tokenize(lines, opts), nil
}

// A Tokenizer classifies a sequence of lines one token at a time.
type Tokenizer struct {
	lines []string
	pos   int
	opts  Options

	// prev is the last token returned by Next.
	// It is only valid if hasPrev is true.
	prev    Token
	hasPrev bool
}

// NewTokenizer returns a new [Tokenizer] that classifies the given lines.
// The lines must not contain line terminators.
func NewTokenizer(lines []string, opts *Options) *Tokenizer {
	tz := &Tokenizer{lines: lines}
	if opts != nil {
		tz.opts = *opts
	}
	return tz
}

// Next returns the next token.
// It returns [io.EOF] once all lines have been consumed.
func (tz *Tokenizer) Next() (Token, error) {
	for tz.pos < len(tz.lines) {
		line := tz.lines[tz.pos]
		tz.pos++
		tok, ok := tz.classify(line)
		if !ok {
			continue
		}
		tok.Line = tz.pos
		tz.prev = tok
		tz.hasPrev = true
		return tok, nil
	}
	return Token{}, io.EOF
}

// classify returns the token for a single line.
// ok is false if the line does not produce a token.
func (tz *Tokenizer) classify(line string) (tok Token, ok bool) {
	text := strings.TrimLeftFunc(line, unicode.IsSpace)
	if isIndented(line) {
		switch {
		case !tz.opts.KeepIndented:
			return Token{}, false
		case text == "":
			return Token{Type: TokenType{Kind: BlankLineKind}}, true
		default:
			return Token{Type: TokenType{Kind: IndentCodeBlockKind}, Text: line}, true
		}
	}
	if text == "" {
		return Token{Type: TokenType{Kind: BlankLineKind}}, true
	}

	tok = openToken(text)
	if tok.open {
		switch tok.Type.Kind {
		case HeaderKind:
			tz.resolveHeader(&tok)
		case UndeterminedKind:
			tz.resolveRun(&tok)
		}
		tok.open = false
	}
	return tok, true
}

// openToken classifies text by its first character.
// text must have its leading whitespace removed.
func openToken(text string) Token {
	c, _ := utf8.DecodeRuneInString(text)
	switch c {
	case '#':
		return Token{Type: Header(1), Text: text, open: true}
	case '-', '=', '_', '*', '+':
		return Token{Type: Undetermined(c, 1), Text: text, open: true}
	default:
		return Token{Type: TokenType{Kind: ParagraphKind}, Text: text}
	}
}

// resolveHeader determines the level of an open HeaderKind token,
// demoting it to a paragraph if the level is out of range.
func (tz *Tokenizer) resolveHeader(tok *Token) {
	var level int
	if tz.opts.StrictHeadings {
		level = atxHeadingLevel(tok.Text)
	} else {
		for _, c := range tok.Text {
			if c != '#' {
				continue
			}
			level++
			if level > maxHeadingLevel {
				break
			}
		}
	}
	if level < 1 || level > maxHeadingLevel {
		tok.Type = TokenType{Kind: ParagraphKind}
		return
	}
	tok.Type = Header(level)
}

// atxHeadingLevel returns the length of the run of '#' characters
// at the beginning of text
// or zero if the run is not followed by whitespace or the end of text.
func atxHeadingLevel(text string) int {
	n := 0
	for n < len(text) && text[n] == '#' {
		n++
	}
	if n == len(text) {
		return n
	}
	if c, _ := utf8.DecodeRuneInString(text[n:]); !unicode.IsSpace(c) {
		return 0
	}
	return n
}

// resolveRun classifies an open UndeterminedKind token
// using the token that came before it.
// A token that fits no rule becomes a paragraph.
//
// Lines led by '-' or '=' count the '-' characters after the lead.
// Lines led by '_' or '*' only form a thematic break
// if they contain nothing but the lead character, spaces, and tabs.
// Lines led by '+' are always paragraphs.
func (tz *Tokenizer) resolveRun(tok *Token) {
	lead := tok.Type.Char
	afterParagraph := tz.hasPrev && tz.prev.Type.Kind == ParagraphKind
	isBreak := false
	switch lead {
	case '-', '=':
		tok.Type.Count += strings.Count(tok.Text[1:], "-")
		if afterParagraph {
			tok.Type = TokenType{Kind: SetextHeadingKind}
			return
		}
		isBreak = tok.Type.Count >= thematicBreakMinRun
	case '_', '*':
		n, ok := markerRun(tok.Text, lead)
		tok.Type.Count = n
		isBreak = ok && !afterParagraph && n >= thematicBreakMinRun
	}
	if isBreak {
		tok.Type = TokenType{Kind: ThematicBreakKind}
		return
	}
	tok.Type = TokenType{Kind: ParagraphKind}
}

// markerRun counts the occurrences of marker in text.
// ok is false if text contains anything
// other than marker, spaces, and tabs.
func markerRun(text string, marker rune) (n int, ok bool) {
	for _, c := range text {
		switch c {
		case marker:
			n++
		case ' ', '\t':
		default:
			return n, false
		}
	}
	return n, true
}

// isIndented reports whether line has too much leading whitespace
// to start a block: a leading tab or four columns of whitespace.
// Tabs are not expanded.
// A line with fewer than four whitespace characters and nothing else
// is not indented.
func isIndented(line string) bool {
	width := 0
	for _, c := range line {
		switch {
		case c == '\t':
			return true
		case unicode.IsSpace(c):
			width++
			if width >= codeBlockIndentLimit {
				return true
			}
		default:
			return false
		}
	}
	return false
}
