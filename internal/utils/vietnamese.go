package utils

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
	"golang.org/x/text/unicode/norm"
)

var viPrinter = message.NewPrinter(language.Vietnamese)

// NormalizeVietnamese folds text for pattern matching: NFD decomposition,
// combining marks U+0300–U+036F removed, đ/Đ mapped to d/D, lowercased, trimmed.
func NormalizeVietnamese(text string) string {
	decomposed := norm.NFD.String(text)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		switch {
		case r >= 0x0300 && r <= 0x036F:
			continue
		case r == 'đ':
			b.WriteRune('d')
		case r == 'Đ':
			b.WriteRune('D')
		default:
			b.WriteRune(r)
		}
	}

	return strings.TrimSpace(strings.ToLower(b.String()))
}

// FormatVND renders an amount with Vietnamese digit grouping, e.g. 85000 -> "85.000".
// Fractions keep at most three digits.
func FormatVND(amount float64) string {
	if amount == math.Trunc(amount) && math.Abs(amount) < 1e15 {
		return viPrinter.Sprintf("%d", int64(amount))
	}
	return viPrinter.Sprint(number.Decimal(amount, number.MaxFractionDigits(3)))
}

// ProductSearchFragments returns the catalog lookup fragments for a synthetic
// material name: its pre-parenthesis prefix and its first word.
//
//	"Xi măng (bao 50kg)" -> ["Xi măng", "Xi"]
//	"Cát xây dựng"       -> ["Cát xây dựng", "Cát"]
func ProductSearchFragments(name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	var fragments []string
	prefix := name
	if idx := strings.Index(name, "("); idx >= 0 {
		prefix = strings.TrimSpace(name[:idx])
	}
	if prefix != "" {
		fragments = append(fragments, prefix)
	}

	if fields := strings.FieldsFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || r == '('
	}); len(fields) > 0 && fields[0] != prefix {
		fragments = append(fragments, fields[0])
	}

	return fragments
}
