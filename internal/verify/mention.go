package verify

import (
	"strconv"
	"strings"
)

// mentionsValue reports whether text contains v rendered in at least one
// reasonable precision. This is a literal-citation check, not NLU: it
// tries the shortest exact rendering plus 0..4 fixed decimal places. A
// rendering only counts when it appears as a standalone number, so "4"
// does not match inside "2024".
func mentionsValue(text string, v float64) bool {
	seen := map[string]struct{}{}
	renderings := []string{strconv.FormatFloat(v, 'f', -1, 64)}
	for prec := 0; prec <= 4; prec++ {
		renderings = append(renderings, strconv.FormatFloat(v, 'f', prec, 64))
	}
	for _, r := range renderings {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		if containsNumberToken(text, r) {
			return true
		}
		if trimmed := strings.TrimPrefix(r, "-"); trimmed != r && containsNumberToken(text, trimmed) {
			return true
		}
	}
	return false
}

// containsNumberToken finds needle in text as a standalone number: no
// adjacent digit on either side, and no adjacent decimal point that
// continues the number. A sentence-ending period after the match is fine.
func containsNumberToken(text, needle string) bool {
	for from := 0; ; {
		i := strings.Index(text[from:], needle)
		if i < 0 {
			return false
		}
		i += from
		end := i + len(needle)
		if !leftBlocked(text, i) && !rightBlocked(text, end) {
			return true
		}
		from = i + 1
	}
}

func leftBlocked(text string, i int) bool {
	if i == 0 {
		return false
	}
	c := text[i-1]
	if digit(c) {
		return true
	}
	return c == '.' && i > 1 && digit(text[i-2])
}

func rightBlocked(text string, end int) bool {
	if end == len(text) {
		return false
	}
	c := text[end]
	if digit(c) {
		return true
	}
	return c == '.' && end+1 < len(text) && digit(text[end+1])
}

func digit(b byte) bool {
	return b >= '0' && b <= '9'
}
