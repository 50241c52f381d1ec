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

// Package normhtml normalizes rendered HTML
// so that tests can ignore insignificant whitespace and escaping differences.
package normhtml

import (
	"bytes"
	"regexp"
	"unicode"

	"go4.org/bytereplacer"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

var htmlEscaper = bytereplacer.New(
	"&", "&amp;",
	`'`, "&apos;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
)

// NormalizeHTML strips insignificant output differences from HTML.
// Whitespace runs outside of <pre> collapse to a single space,
// whitespace next to block tags is removed,
// character references are written in a canonical form,
// and attributes are dropped.
func NormalizeHTML(b []byte) []byte {
	tok := html.NewTokenizerFragment(bytes.NewReader(b), "div")
	var output []byte
	inPre := false
	for {
		tt := tok.Next()
		switch tt {
		case html.ErrorToken:
			return bytes.TrimSpace(output)
		case html.TextToken:
			data := tok.Text()
			if !inPre {
				data = whitespaceRE.ReplaceAll(data, []byte(" "))
				if len(output) == 0 || output[len(output)-1] == '>' && endsWithBlockTag(output) {
					data = bytes.TrimLeftFunc(data, unicode.IsSpace)
				}
			}
			output = append(output, htmlEscaper.Replace(bytes.Clone(data))...)
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			name, _ := tok.TagName()
			a := atom.Lookup(name)
			if a == atom.Pre {
				inPre = tt == html.StartTagToken
			}
			if isBlockTag(a) && !inPre || a == atom.Pre {
				output = bytes.TrimRightFunc(output, unicode.IsSpace)
			}
			if tt == html.EndTagToken {
				output = append(output, "</"...)
			} else {
				output = append(output, '<')
			}
			output = append(output, name...)
			output = append(output, '>')
		}
	}
}

// endsWithBlockTag reports whether output ends with a start or end tag
// of a block element.
func endsWithBlockTag(output []byte) bool {
	i := bytes.LastIndexByte(output, '<')
	if i < 0 {
		return false
	}
	name := bytes.TrimPrefix(output[i+1:len(output)-1], []byte("/"))
	return isBlockTag(atom.Lookup(name))
}

func isBlockTag(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Pre, atom.Hr, atom.Div, atom.Blockquote,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	default:
		return false
	}
}
