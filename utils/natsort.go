package utils

import "strings"

// NaturalLess reports whether a sorts before b in natural alphanumeric
// order: embedded digit runs compare as numbers, so "T-2" sorts before
// "T-10". At equal positions a digit run sorts before a non-digit run,
// and when all shared runs are equal the name with fewer runs sorts first.
func NaturalLess(a, b string) bool {
	return NaturalCompare(a, b) < 0
}

// NaturalCompare returns -1, 0 or 1 ordering a against b naturally.
func NaturalCompare(a, b string) int {
	ar := splitRuns(a)
	br := splitRuns(b)

	for i := 0; i < len(ar) && i < len(br); i++ {
		aDigit := isDigitRun(ar[i])
		bDigit := isDigitRun(br[i])

		switch {
		case aDigit && bDigit:
			if cmp := compareDigitRuns(ar[i], br[i]); cmp != 0 {
				return cmp
			}
		case aDigit:
			return -1
		case bDigit:
			return 1
		default:
			if cmp := strings.Compare(ar[i], br[i]); cmp != 0 {
				return cmp
			}
		}
	}

	switch {
	case len(ar) < len(br):
		return -1
	case len(ar) > len(br):
		return 1
	default:
		return 0
	}
}

// splitRuns breaks s into alternating runs of digits and non-digits.
func splitRuns(s string) []string {
	var runs []string
	start := 0
	for i := 1; i <= len(s); i++ {
		if i == len(s) || isDigit(s[i]) != isDigit(s[start]) {
			runs = append(runs, s[start:i])
			start = i
		}
	}
	return runs
}

// compareDigitRuns compares two digit runs numerically without parsing,
// so arbitrarily long runs cannot overflow.
func compareDigitRuns(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func isDigitRun(s string) bool {
	return s != "" && isDigit(s[0])
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
