package arabic

import (
	"strings"

	"golang.org/x/text/unicode/bidi"
)

const (
	lrm = '\u200E'
	rlm = '\u200F'
	alm = '\u061C'
)

var mirrored = map[rune]rune{
	'(': ')', ')': '(',
	'[': ']', ']': '[',
	'{': '}', '}': '{',
	'<': '>', '>': '<',
	'«': '»', '»': '«',
}

// Shape converts logical-order text into the glyph sequence a left-to-right
// renderer must draw: letters are joined, then every line is reordered for
// display. Latin and numeric runs keep their internal order.
func Shape(s string) string {
	return Reorder(Reshape(s))
}

// KeepLTR marks s as a left-to-right run so that numbers, dates and currency
// codes embedded in Arabic sentences are not split by neutral punctuation.
// The marks are removed by Reorder.
func KeepLTR(s string) string {
	return string(lrm) + s + string(lrm)
}

// ContainsRTL reports whether s has any right-to-left character.
func ContainsRTL(s string) bool {
	for _, r := range s {
		switch classOf(r) {
		case bidi.R, bidi.AL:
			return true
		}
	}
	return false
}

// Reorder applies the implicit part of the Unicode bidirectional algorithm
// to each line of s and returns the characters in visual order.
func Reorder(s string) string {
	if s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = reorderLine([]rune(line))
	}
	return strings.Join(lines, "\n")
}

func classOf(r rune) bidi.Class {
	p, _ := bidi.LookupRune(r)
	return p.Class()
}

func reorderLine(runes []rune) string {
	if len(runes) == 0 {
		return ""
	}

	classes := make([]bidi.Class, len(runes))
	for i, r := range runes {
		classes[i] = classOf(r)
	}

	base := paragraphLevel(classes)
	types := make([]bidi.Class, len(classes))
	copy(types, classes)

	resolveWeak(types, base)
	resolveNeutral(types, base)
	levels := resolveImplicit(types, base)
	resetWhitespace(classes, levels, base)

	out := make([]rune, len(runes))
	copy(out, runes)
	for i, r := range out {
		if levels[i]%2 == 1 {
			if m, ok := mirrored[r]; ok {
				out[i] = m
			}
		}
	}

	reverseLevels(out, levels)

	var b strings.Builder
	b.Grow(len(out))
	for _, r := range out {
		if isBidiMark(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isBidiMark(r rune) bool {
	switch {
	case r == lrm, r == rlm, r == alm:
		return true
	case r >= '\u202A' && r <= '\u202E':
		return true
	case r >= '\u2066' && r <= '\u2069':
		return true
	}
	return false
}

// paragraphLevel is 1 when the first strong character is right-to-left.
func paragraphLevel(classes []bidi.Class) int {
	for _, c := range classes {
		switch c {
		case bidi.L:
			return 0
		case bidi.R, bidi.AL:
			return 1
		}
	}
	return 0
}

func embeddingDirection(level int) bidi.Class {
	if level%2 == 1 {
		return bidi.R
	}
	return bidi.L
}

// resolveWeak runs rules W1-W7 over a single level run.
func resolveWeak(t []bidi.Class, base int) {
	sos := embeddingDirection(base)
	n := len(t)

	for i := range t {
		switch t[i] {
		case bidi.L, bidi.R, bidi.AL, bidi.EN, bidi.ES, bidi.ET, bidi.AN,
			bidi.CS, bidi.B, bidi.S, bidi.WS, bidi.ON, bidi.NSM:
		default:
			// Explicit embeddings and isolates are not supported; treat
			// them as plain neutrals.
			t[i] = bidi.ON
		}
	}

	// W1
	for i := range t {
		if t[i] == bidi.NSM {
			if i == 0 {
				t[i] = sos
			} else {
				t[i] = t[i-1]
			}
		}
	}

	// W2
	last := sos
	for i := range t {
		switch t[i] {
		case bidi.L, bidi.R, bidi.AL:
			last = t[i]
		case bidi.EN:
			if last == bidi.AL {
				t[i] = bidi.AN
			}
		}
	}

	// W3
	for i := range t {
		if t[i] == bidi.AL {
			t[i] = bidi.R
		}
	}

	// W4
	for i := 1; i+1 < n; i++ {
		prev, next := t[i-1], t[i+1]
		switch t[i] {
		case bidi.ES:
			if prev == bidi.EN && next == bidi.EN {
				t[i] = bidi.EN
			}
		case bidi.CS:
			if prev == bidi.EN && next == bidi.EN {
				t[i] = bidi.EN
			} else if prev == bidi.AN && next == bidi.AN {
				t[i] = bidi.AN
			}
		}
	}

	// W5
	for i := 0; i < n; {
		if t[i] != bidi.ET {
			i++
			continue
		}
		j := i
		for j < n && t[j] == bidi.ET {
			j++
		}
		if (i > 0 && t[i-1] == bidi.EN) || (j < n && t[j] == bidi.EN) {
			for k := i; k < j; k++ {
				t[k] = bidi.EN
			}
		}
		i = j
	}

	// W6
	for i := range t {
		switch t[i] {
		case bidi.ES, bidi.ET, bidi.CS:
			t[i] = bidi.ON
		}
	}

	// W7
	last = sos
	for i := range t {
		switch t[i] {
		case bidi.L, bidi.R:
			last = t[i]
		case bidi.EN:
			if last == bidi.L {
				t[i] = bidi.L
			}
		}
	}
}

func isNeutral(c bidi.Class) bool {
	switch c {
	case bidi.B, bidi.S, bidi.WS, bidi.ON:
		return true
	}
	return false
}

// strongFor treats numbers as right-to-left for neutral resolution (N1).
func strongFor(c bidi.Class) bidi.Class {
	if c == bidi.L {
		return bidi.L
	}
	return bidi.R
}

// resolveNeutral runs rules N1 and N2.
func resolveNeutral(t []bidi.Class, base int) {
	e := embeddingDirection(base)
	n := len(t)

	for i := 0; i < n; {
		if !isNeutral(t[i]) {
			i++
			continue
		}
		j := i
		for j < n && isNeutral(t[j]) {
			j++
		}

		leading := e
		if i > 0 {
			leading = strongFor(t[i-1])
		}
		trailing := e
		if j < n {
			trailing = strongFor(t[j])
		}

		dir := e
		if leading == trailing {
			dir = leading
		}
		for k := i; k < j; k++ {
			t[k] = dir
		}
		i = j
	}
}

// resolveImplicit runs rules I1 and I2.
func resolveImplicit(t []bidi.Class, base int) []int {
	levels := make([]int, len(t))
	for i, c := range t {
		level := base
		if base%2 == 0 {
			switch c {
			case bidi.R:
				level++
			case bidi.AN, bidi.EN:
				level += 2
			}
		} else {
			switch c {
			case bidi.L, bidi.EN, bidi.AN:
				level++
			}
		}
		levels[i] = level
	}
	return levels
}

// resetWhitespace applies rule L1 using the original character classes.
func resetWhitespace(classes []bidi.Class, levels []int, base int) {
	trailing := true
	for i := len(classes) - 1; i >= 0; i-- {
		switch classes[i] {
		case bidi.S, bidi.B:
			levels[i] = base
			trailing = true
		case bidi.WS, bidi.BN, bidi.LRI, bidi.RLI, bidi.FSI, bidi.PDI:
			if trailing {
				levels[i] = base
			}
		default:
			trailing = false
		}
	}
}

// reverseLevels applies rule L2 in place.
func reverseLevels(runes []rune, levels []int) {
	highest, lowestOdd := levels[0], levels[0]
	for _, l := range levels {
		if l > highest {
			highest = l
		}
		if l < lowestOdd {
			lowestOdd = l
		}
	}
	if lowestOdd%2 == 0 {
		lowestOdd++
	}

	for level := highest; level >= lowestOdd; level-- {
		for i := 0; i < len(runes); {
			if levels[i] < level {
				i++
				continue
			}
			j := i
			for j < len(runes) && levels[j] >= level {
				j++
			}
			reverseRange(runes, levels, i, j)
			i = j
		}
	}
}

func reverseRange(runes []rune, levels []int, from, to int) {
	for i, j := from, to-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
		levels[i], levels[j] = levels[j], levels[i]
	}
}
