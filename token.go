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
	"fmt"
	"strconv"
)

// Kind is the variant of a [TokenType].
type Kind uint8

// Token kinds. Only the kinds for which [Kind.Reserved] reports false
// are produced by a [Tokenizer].
const (
	// UndeterminedKind marks a line that began with an ambiguous character.
	// It exists only while a line is being classified.
	UndeterminedKind Kind = 1 + iota

	// Inline kinds.
	CodeSpanKind
	EmphasisKind
	HardLineBreakKind
	SoftLineBreakKind
	LinkKind
	AutolinkKind

	// Leaf block kinds.
	HeaderKind
	SetextHeadingKind
	LinkReferenceDefKind
	BlankLineKind
	IndentCodeBlockKind
	FencedCodeBlockKind
	ThematicBreakKind
	ParagraphKind

	// Container block kinds.
	BlockQuoteKind
	BulletListKind
	OrderedListKind

	maxKind
)

var kindNames = [...]string{
	UndeterminedKind:     "Undetermined",
	CodeSpanKind:         "CodeSpan",
	EmphasisKind:         "Emphasis",
	HardLineBreakKind:    "HardLineBreak",
	SoftLineBreakKind:    "SoftLineBreak",
	LinkKind:             "Link",
	AutolinkKind:         "Autolink",
	HeaderKind:           "Header",
	SetextHeadingKind:    "SetextHeading",
	LinkReferenceDefKind: "LinkReferenceDef",
	BlankLineKind:        "BlankLine",
	IndentCodeBlockKind:  "IndentCodeBlock",
	FencedCodeBlockKind:  "FencedCodeBlock",
	ThematicBreakKind:    "ThematicBreak",
	ParagraphKind:        "Paragraph",
	BlockQuoteKind:       "BlockQuote",
	BulletListKind:       "BulletList",
	OrderedListKind:      "OrderedList",
}

func (k Kind) String() string {
	if k == 0 || k >= maxKind {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// IsInline reports whether k classifies text within a line.
func (k Kind) IsInline() bool {
	return CodeSpanKind <= k && k <= AutolinkKind
}

// IsContainer reports whether k is a container block kind,
// i.e. one whose [TokenType] holds an inner type.
func (k Kind) IsContainer() bool {
	return BlockQuoteKind <= k && k <= OrderedListKind
}

// Reserved reports whether k is declared but never emitted by a [Tokenizer].
// IndentCodeBlockKind is not reserved:
// it is emitted when [Options.KeepIndented] is set.
func (k Kind) Reserved() bool {
	switch k {
	case HeaderKind,
		SetextHeadingKind,
		BlankLineKind,
		IndentCodeBlockKind,
		ThematicBreakKind,
		ParagraphKind:
		return false
	default:
		return true
	}
}

// TokenType is the classification of a line.
// Which fields are meaningful depends on Kind:
//
//   - UndeterminedKind: Char is the leading character, Count its repetitions.
//   - CodeSpanKind: Count is the number of backticks.
//   - EmphasisKind: Char is '_' or '*', Count the run length.
//   - HeaderKind: Count is the heading level (1-6).
//   - FencedCodeBlockKind: Char is '`' or '~', Count the fence length.
//   - BlockQuoteKind: Inner is the quoted block's type.
//   - BulletListKind: Char is '-', '+' or '*'; Inner is the item's type.
//   - OrderedListKind: Char is '.' or ')'; Inner is the item's type.
type TokenType struct {
	Kind  Kind
	Char  rune
	Count int
	Inner *TokenType
}

// Undetermined returns the type of a line
// whose leading character ch has been seen n times
// but has not been classified yet.
func Undetermined(ch rune, n int) TokenType {
	return TokenType{Kind: UndeterminedKind, Char: ch, Count: n}
}

// CodeSpan returns a code span type delimited by n backticks.
func CodeSpan(n int) TokenType {
	return TokenType{Kind: CodeSpanKind, Char: '`', Count: n}
}

// Emphasis returns an emphasis type delimited by n marker characters.
func Emphasis(marker rune, n int) TokenType {
	return TokenType{Kind: EmphasisKind, Char: marker, Count: n}
}

// Header returns an ATX heading type of the given level.
func Header(level int) TokenType {
	return TokenType{Kind: HeaderKind, Count: level}
}

// FencedCodeBlock returns a fenced code block type
// whose fence is n fence characters.
func FencedCodeBlock(fence rune, n int) TokenType {
	return TokenType{Kind: FencedCodeBlockKind, Char: fence, Count: n}
}

// BlockQuote returns a block quote type containing inner.
func BlockQuote(inner TokenType) TokenType {
	return TokenType{Kind: BlockQuoteKind, Inner: &inner}
}

// BulletList returns a bullet list item type containing inner.
func BulletList(marker rune, inner TokenType) TokenType {
	return TokenType{Kind: BulletListKind, Char: marker, Inner: &inner}
}

// OrderedList returns an ordered list item type containing inner.
func OrderedList(marker rune, inner TokenType) TokenType {
	return TokenType{Kind: OrderedListKind, Char: marker, Inner: &inner}
}

// Equal reports whether t and u are the same type,
// comparing inner types by value.
func (t TokenType) Equal(u TokenType) bool {
	if t.Kind != u.Kind || t.Char != u.Char || t.Count != u.Count {
		return false
	}
	if t.Inner == nil || u.Inner == nil {
		return t.Inner == u.Inner
	}
	return t.Inner.Equal(*u.Inner)
}

// String formats the type like "Header(2)" or "BulletList('-', Paragraph)".
func (t TokenType) String() string {
	switch t.Kind {
	case UndeterminedKind, EmphasisKind, FencedCodeBlockKind:
		return fmt.Sprintf("%v(%q, %d)", t.Kind, t.Char, t.Count)
	case CodeSpanKind, HeaderKind:
		return fmt.Sprintf("%v(%d)", t.Kind, t.Count)
	case BlockQuoteKind:
		return fmt.Sprintf("%v(%v)", t.Kind, t.inner())
	case BulletListKind, OrderedListKind:
		return fmt.Sprintf("%v(%q, %v)", t.Kind, t.Char, t.inner())
	default:
		return t.Kind.String()
	}
}

func (t TokenType) inner() TokenType {
	if t.Inner == nil {
		return TokenType{}
	}
	return *t.Inner
}

// Token is the classification of a single source line.
type Token struct {
	Type TokenType
	// Text is the line with leading whitespace removed.
	// It is empty for blank lines.
	// IndentCodeBlockKind tokens hold the line unmodified.
	Text string
	// Line is the 1-based line number of the source line.
	Line int

	// open is set while the line's classification may still be rewritten.
	open bool
}

// Open reports whether the token's classification was left unfinished.
// Tokens returned by a [Tokenizer] are never open;
// consumers should reject any token that is.
func (tok Token) Open() bool {
	return tok.open
}

func (tok Token) String() string {
	return fmt.Sprintf("%d: %v %q", tok.Line, tok.Type, tok.Text)
}
