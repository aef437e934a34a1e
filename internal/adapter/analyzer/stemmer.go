package analyzer

import "bytes"

// PorterStemmer implements the Porter stemming algorithm over lowercase
// ASCII words. The builder and the query evaluator share one instance so
// both sides agree byte-for-byte on every stem.
type PorterStemmer struct{}

// NewPorterStemmer creates a new Porter stemmer.
func NewPorterStemmer() *PorterStemmer {
	return &PorterStemmer{}
}

// Stem rewrites word in place and returns the stemmed prefix. The result is
// never longer than the input, so the backing array is reused. Words of two
// bytes or fewer, and words with no lowercase letter (pure digit runs), pass
// through unchanged.
func (p *PorterStemmer) Stem(word []byte) []byte {
	n := len(word)
	if n <= 2 {
		return word
	}
	hasLetter := false
	for _, c := range word {
		if c >= 'a' && c <= 'z' {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return word
	}

	n = step1(word, n)
	n = step2(word, n)
	n = step3(word, n)
	n = step4(word, n)
	n = step5(word, n)
	return word[:n]
}

// StemString is a convenience wrapper for callers holding a string.
func (p *PorterStemmer) StemString(word string) string {
	b := []byte(word)
	return string(p.Stem(b))
}

func isConsonant(b []byte, i int) bool {
	switch b[i] {
	case 'a', 'e', 'i', 'o', 'u':
		return false
	case 'y':
		if i == 0 {
			return true
		}
		return !isConsonant(b, i-1)
	}
	return true
}

// measure counts Porter's m over the prefix b[:n]: the number of
// vowel-sequence/consonant-sequence pairs after the initial consonants.
func measure(b []byte, n int) int {
	m := 0
	i := 0
	for i < n && isConsonant(b, i) {
		i++
	}
	for i < n {
		for i < n && !isConsonant(b, i) {
			i++
		}
		if i >= n {
			break
		}
		m++
		for i < n && isConsonant(b, i) {
			i++
		}
	}
	return m
}

func hasVowel(b []byte, n int) bool {
	for i := 0; i < n; i++ {
		if !isConsonant(b, i) {
			return true
		}
	}
	return false
}

// doubleC reports whether b[:n] ends in a doubled consonant.
func doubleC(b []byte, n int) bool {
	if n < 2 {
		return false
	}
	return b[n-1] == b[n-2] && isConsonant(b, n-1)
}

// cvc reports Porter's *o condition on b[:n]: consonant-vowel-consonant
// ending where the final consonant is not w, x or y.
func cvc(b []byte, n int) bool {
	if n < 3 {
		return false
	}
	if !isConsonant(b, n-3) || isConsonant(b, n-2) || !isConsonant(b, n-1) {
		return false
	}
	c := b[n-1]
	return c != 'w' && c != 'x' && c != 'y'
}

func hasSuffix(b []byte, n int, suf string) bool {
	if n < len(suf) {
		return false
	}
	return bytes.Equal(b[n-len(suf):n], []byte(suf))
}

// setTo replaces the last cut bytes of b[:n] with repl. The replacement is
// never longer than what a prior strip removed, so it fits the backing array.
func setTo(b []byte, n, cut int, repl string) int {
	copy(b[n-cut:], repl)
	return n - cut + len(repl)
}

// step1 handles plurals, -ed, -ing and the trailing-y rewrite.
func step1(b []byte, n int) int {
	switch {
	case hasSuffix(b, n, "sses"):
		n -= 2
	case hasSuffix(b, n, "ies"):
		n -= 2
	case hasSuffix(b, n, "ss"):
	case hasSuffix(b, n, "s"):
		n--
	}

	stripped := false
	switch {
	case hasSuffix(b, n, "eed"):
		if measure(b, n-3) > 0 {
			n--
		}
	case hasSuffix(b, n, "ed") && hasVowel(b, n-2):
		n -= 2
		stripped = true
	case hasSuffix(b, n, "ing") && hasVowel(b, n-3):
		n -= 3
		stripped = true
	}

	if stripped {
		switch {
		case hasSuffix(b, n, "at"):
			n = setTo(b, n, 2, "ate")
		case hasSuffix(b, n, "bl"):
			n = setTo(b, n, 2, "ble")
		case hasSuffix(b, n, "iz"):
			n = setTo(b, n, 2, "ize")
		case doubleC(b, n):
			if c := b[n-1]; c != 'l' && c != 's' && c != 'z' {
				n--
			}
		case measure(b, n) == 1 && cvc(b, n):
			n = setTo(b, n, 0, "e")
		}
	}

	if hasSuffix(b, n, "y") && hasVowel(b, n-1) {
		b[n-1] = 'i'
	}
	return n
}

type suffixRule struct {
	suf string
	rep string
}

// Rule order matters: the first matching suffix wins, applied or not.
var step2Rules = []suffixRule{
	{"ational", "ate"}, {"tional", "tion"}, {"enci", "ence"}, {"anci", "ance"},
	{"izer", "ize"}, {"abli", "able"}, {"alli", "al"}, {"entli", "ent"},
	{"eli", "e"}, {"ousli", "ous"}, {"ization", "ize"}, {"ation", "ate"},
	{"ator", "ate"}, {"alism", "al"}, {"iveness", "ive"}, {"fulness", "ful"},
	{"ousness", "ous"}, {"aliti", "al"}, {"iviti", "ive"}, {"biliti", "ble"},
	{"logi", "log"},
}

var step3Rules = []suffixRule{
	{"icate", "ic"}, {"ative", ""}, {"alize", "al"}, {"iciti", "ic"},
	{"ical", "ic"}, {"ful", ""}, {"ness", ""},
}

func applyRules(b []byte, n int, rules []suffixRule) int {
	for _, r := range rules {
		if hasSuffix(b, n, r.suf) {
			if measure(b, n-len(r.suf)) > 0 {
				n = setTo(b, n, len(r.suf), r.rep)
			}
			return n
		}
	}
	return n
}

func step2(b []byte, n int) int { return applyRules(b, n, step2Rules) }

func step3(b []byte, n int) int { return applyRules(b, n, step3Rules) }

var step4Suffixes = []string{
	"al", "ance", "ence", "er", "ic", "able", "ible", "ant", "ement",
	"ment", "ent", "ion", "ou", "ism", "ate", "iti", "ous", "ive", "ize",
}

func step4(b []byte, n int) int {
	for _, suf := range step4Suffixes {
		if !hasSuffix(b, n, suf) {
			continue
		}
		stem := n - len(suf)
		if suf == "ion" {
			if stem < 1 || (b[stem-1] != 's' && b[stem-1] != 't') {
				return n
			}
		}
		if measure(b, stem) > 1 {
			n = stem
		}
		return n
	}
	return n
}

func step5(b []byte, n int) int {
	if hasSuffix(b, n, "e") {
		m := measure(b, n-1)
		if m > 1 || (m == 1 && !cvc(b, n-1)) {
			n--
		}
	}
	if measure(b, n) > 1 && doubleC(b, n) && b[n-1] == 'l' {
		n--
	}
	return n
}
