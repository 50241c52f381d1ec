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

package mdtoken

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go4.org/bytereplacer"
	"golang.org/x/net/html/atom"
)

var (
	// ErrOpenToken is returned (wrapped) when rendering a token
	// whose classification is unfinished.
	ErrOpenToken = errors.New("open token")
	// ErrUnsupportedKind is returned (wrapped) when rendering a token
	// of a kind the renderer does not handle.
	ErrUnsupportedKind = errors.New("unsupported token kind")
)

var htmlEscaper = bytereplacer.New(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

var headingTags = [...]atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}

// RenderHTML writes the given tokens to w as HTML.
// Inline syntax is escaped, not interpreted.
// RenderHTML returns an error without writing anything
// if a token is open or has a reserved kind.
func RenderHTML(w io.Writer, tokens []Token) error {
	buf, err := AppendHTML(nil, tokens)
	if err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("render tokens to html: %w", err)
	}
	return nil
}

// AppendHTML appends the HTML rendering of tokens to dst
// and returns the resulting byte slice.
// On error, dst is returned unmodified.
func AppendHTML(dst []byte, tokens []Token) ([]byte, error) {
	r := &renderState{dst: dst}
	for _, tok := range tokens {
		if tok.Open() {
			return dst, fmt.Errorf("render tokens to html: line %d: %w", tok.Line, ErrOpenToken)
		}
		switch tok.Type.Kind {
		case ParagraphKind:
			r.flushCode()
			r.para = append(r.para, tok.Text)
		case SetextHeadingKind:
			r.flushCode()
			if len(r.para) == 0 {
				r.para = append(r.para, tok.Text)
				continue
			}
			level := 2
			if strings.HasPrefix(tok.Text, "=") {
				level = 1
			}
			r.element(headingTags[level-1], strings.Join(r.para, "\n"))
			r.para = r.para[:0]
		case HeaderKind:
			level := tok.Type.Count
			if level < 1 || level > len(headingTags) {
				return dst, fmt.Errorf("render tokens to html: line %d: heading level %d", tok.Line, level)
			}
			r.flush()
			r.element(headingTags[level-1], headingContent(tok.Text))
		case ThematicBreakKind:
			r.flush()
			r.dst = append(r.dst, "<hr />\n"...)
		case BlankLineKind:
			r.flushParagraph()
			if len(r.code) > 0 {
				r.code = append(r.code, "")
			}
		case IndentCodeBlockKind:
			r.flushParagraph()
			r.code = append(r.code, trimCodeIndent(tok.Text))
		default:
			return dst, fmt.Errorf("render tokens to html: line %d: %w %v", tok.Line, ErrUnsupportedKind, tok.Type.Kind)
		}
	}
	r.flush()
	return r.dst, nil
}

type renderState struct {
	dst  []byte
	para []string // lines of the paragraph being collected
	code []string // lines of the code block being collected
}

func (r *renderState) openTag(name atom.Atom) {
	r.dst = append(r.dst, '<')
	r.dst = append(r.dst, name.String()...)
	r.dst = append(r.dst, '>')
}

func (r *renderState) closeTag(name atom.Atom) {
	r.dst = append(r.dst, "</"...)
	r.dst = append(r.dst, name.String()...)
	r.dst = append(r.dst, '>')
}

func (r *renderState) text(s string) {
	r.dst = append(r.dst, htmlEscaper.Replace([]byte(s))...)
}

func (r *renderState) element(name atom.Atom, content string) {
	r.openTag(name)
	r.text(content)
	r.closeTag(name)
	r.dst = append(r.dst, '\n')
}

func (r *renderState) flush() {
	r.flushParagraph()
	r.flushCode()
}

func (r *renderState) flushParagraph() {
	if len(r.para) == 0 {
		return
	}
	r.element(atom.P, strings.Join(r.para, "\n"))
	r.para = r.para[:0]
}

func (r *renderState) flushCode() {
	// Trailing blank lines are not part of the code block.
	n := len(r.code)
	for n > 0 && r.code[n-1] == "" {
		n--
	}
	if n == 0 {
		r.code = r.code[:0]
		return
	}
	r.openTag(atom.Pre)
	r.openTag(atom.Code)
	for _, line := range r.code[:n] {
		r.text(line)
		r.dst = append(r.dst, '\n')
	}
	r.closeTag(atom.Code)
	r.closeTag(atom.Pre)
	r.dst = append(r.dst, '\n')
	r.code = r.code[:0]
}

// headingContent returns the text of a heading line
// without its opening '#' run, its optional closing '#' run,
// and surrounding whitespace.
func headingContent(text string) string {
	s := strings.TrimSpace(strings.TrimLeft(text, "#"))
	trimmed := strings.TrimRight(s, "#")
	switch {
	case trimmed == "":
		return ""
	case len(trimmed) < len(s) && (strings.HasSuffix(trimmed, " ") || strings.HasSuffix(trimmed, "\t")):
		return strings.TrimRight(trimmed, " \t")
	default:
		return s
	}
}

// trimCodeIndent removes up to four columns of indentation from line.
// A tab advances to the next multiple of four columns.
func trimCodeIndent(line string) string {
	col := 0
	i := 0
	for ; i < len(line) && col < codeBlockIndentLimit; i++ {
		switch line[i] {
		case ' ':
			col++
		case '\t':
			col += codeBlockIndentLimit - col%codeBlockIndentLimit
		default:
			return line[i:]
		}
	}
	return line[i:]
}
