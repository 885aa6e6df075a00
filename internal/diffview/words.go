package diffview

import (
	"strings"
	"unicode"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// MaxWordDiffLength skips intra-line highlighting for longer lines.
const MaxWordDiffLength = 500

// Segment is a run of text inside a changed line. Changed marks text that
// differs from the paired line.
type Segment struct {
	Text    string
	Changed bool
}

// WordDiff compares a deleted line with the added line that replaced it and
// returns the segments of each. Both results are nil when either line is
// too long to compare.
func WordDiff(oldLine, newLine string) (oldSegs, newSegs []Segment) {
	if len(oldLine) > MaxWordDiffLength || len(newLine) > MaxWordDiffLength {
		return nil, nil
	}
	if oldLine == "" || newLine == "" {
		if oldLine != "" {
			oldSegs = []Segment{{Text: oldLine, Changed: true}}
		}
		if newLine != "" {
			newSegs = []Segment{{Text: newLine, Changed: true}}
		}
		return oldSegs, newSegs
	}

	var vocab tokenTable
	a, b := vocab.encode(tokenize(oldLine)), vocab.encode(tokenize(newLine))

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMainRunes(a, b, false))

	for _, d := range diffs {
		text := vocab.decode(d.Text)
		if text == "" {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			oldSegs = appendSegment(oldSegs, text, false)
			newSegs = appendSegment(newSegs, text, false)
		case diffmatchpatch.DiffDelete:
			oldSegs = appendSegment(oldSegs, text, true)
		case diffmatchpatch.DiffInsert:
			newSegs = appendSegment(newSegs, text, true)
		}
	}
	return oldSegs, newSegs
}

// tokenBase is the first private-use code point; each distinct token is
// diffed as a single rune from here on.
const tokenBase = 0xE000

type tokenTable struct {
	ids    map[string]rune
	tokens []string
}

func (v *tokenTable) encode(tokens []string) []rune {
	if v.ids == nil {
		v.ids = make(map[string]rune)
	}
	out := make([]rune, len(tokens))
	for i, tok := range tokens {
		id, ok := v.ids[tok]
		if !ok {
			id = rune(tokenBase + len(v.tokens))
			v.ids[tok] = id
			v.tokens = append(v.tokens, tok)
		}
		out[i] = id
	}
	return out
}

func (v *tokenTable) decode(s string) string {
	var b strings.Builder
	for _, r := range s {
		if i := int(r - tokenBase); i >= 0 && i < len(v.tokens) {
			b.WriteString(v.tokens[i])
		}
	}
	return b.String()
}

func appendSegment(segs []Segment, text string, changed bool) []Segment {
	if n := len(segs); n > 0 && segs[n-1].Changed == changed {
		segs[n-1].Text += text
		return segs
	}
	return append(segs, Segment{Text: text, Changed: changed})
}

// tokenize splits a line into words, with every space, punctuation and
// symbol rune as its own token.
func tokenize(line string) []string {
	var (
		tokens []string
		word   strings.Builder
	)
	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, word.String())
			word.Reset()
		}
	}
	for _, r := range line {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			flush()
			tokens = append(tokens, string(r))
			continue
		}
		word.WriteRune(r)
	}
	flush()
	return tokens
}
