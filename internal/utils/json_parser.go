package utils

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// ParseOutcome reports which stage of the parse pipeline produced the value
type ParseOutcome int

const (
	// ParseDirect means the (fence-stripped) text was valid JSON as-is
	ParseDirect ParseOutcome = iota
	// ParseSalvaged means the JSON had to be cut out of surrounding text or repaired
	ParseSalvaged
	// ParseFailed means no stage produced valid JSON
	ParseFailed
)

func (o ParseOutcome) String() string {
	switch o {
	case ParseDirect:
		return "direct"
	case ParseSalvaged:
		return "salvaged"
	default:
		return "failed"
	}
}

var (
	fenceJSONRe   = regexp.MustCompile("(?s)```json\\s*(.+?)\\s*```")
	fenceAnyRe    = regexp.MustCompile("(?s)```\\s*(.+?)\\s*```")
	fenceMarkerRe = regexp.MustCompile("```(?:json)?")
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
	bareKeyRe     = regexp.MustCompile(`([{,]\s*)(\w+)(\s*:)`)
	controlRe     = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// ParseModelJSON runs AI output through the staged parser and decodes it into target:
//  1. strip markdown fences, parse directly
//  2. cut the first balanced {...} (or [...]) out of the text, parse
//  3. repair common mistakes (trailing commas, bare keys, single quotes), parse
//
// The returned outcome tells the caller how much to trust the value.
func ParseModelJSON(input string, target interface{}) ParseOutcome {
	input = strings.TrimSpace(input)
	if input == "" {
		return ParseFailed
	}

	stripped := StripCodeFence(input)
	if err := json.Unmarshal([]byte(stripped), target); err == nil {
		return ParseDirect
	}

	if extracted := extractJSONFromText(stripped); extracted != "" {
		if err := json.Unmarshal([]byte(extracted), target); err == nil {
			return ParseSalvaged
		}
		if cleaned := cleanAndFixJSON(extracted); cleaned != "" {
			if err := json.Unmarshal([]byte(cleaned), target); err == nil {
				return ParseSalvaged
			}
		}
	}

	if cleaned := cleanAndFixJSON(stripped); cleaned != "" {
		if err := json.Unmarshal([]byte(cleaned), target); err == nil {
			return ParseSalvaged
		}
	}

	return ParseFailed
}

// StripCodeFence removes markdown code fencing around a JSON payload.
// Text without fences is returned trimmed.
func StripCodeFence(input string) string {
	if extracted := extractFromMarkdown(input); extracted != "" {
		return extracted
	}
	return strings.TrimSpace(fenceMarkerRe.ReplaceAllString(input, ""))
}

// FindNumberField pulls `"key": <number>` out of text that is not valid JSON
func FindNumberField(input, key string) (float64, bool) {
	re := regexp.MustCompile(`"` + regexp.QuoteMeta(key) + `"\s*:\s*(-?\d+(?:\.\d+)?)`)
	m := re.FindStringSubmatch(input)
	if len(m) < 2 {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// extractFromMarkdown extracts JSON from markdown code blocks
// Supports: ```json {...} ```, ```{...}```, or ```\n{...}\n```
func extractFromMarkdown(input string) string {
	if matches := fenceJSONRe.FindStringSubmatch(input); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	if matches := fenceAnyRe.FindStringSubmatch(input); len(matches) > 1 {
		content := strings.TrimSpace(matches[1])
		if strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[") {
			return content
		}
	}

	return ""
}

// extractJSONFromText finds JSON object or array in surrounding text
func extractJSONFromText(input string) string {
	if start := strings.Index(input, "{"); start >= 0 {
		if extracted := extractBalancedBraces(input[start:], '{', '}'); extracted != "" {
			return extracted
		}
	}

	if start := strings.Index(input, "["); start >= 0 {
		if extracted := extractBalancedBraces(input[start:], '[', ']'); extracted != "" {
			return extracted
		}
	}

	return ""
}

// extractBalancedBraces extracts content with balanced braces
func extractBalancedBraces(input string, open, close rune) string {
	if len(input) == 0 {
		return ""
	}

	depth := 0
	inString := false
	escape := false
	start := 0

	for i, ch := range input {
		if escape {
			escape = false
			continue
		}

		if ch == '\\' {
			escape = true
			continue
		}

		if ch == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		if ch == open {
			if depth == 0 {
				start = i
			}
			depth++
		} else if ch == close {
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}

	return ""
}

// cleanAndFixJSON attempts to fix common JSON formatting issues
func cleanAndFixJSON(input string) string {
	s := strings.TrimSpace(input)

	s = strings.TrimPrefix(s, "\ufeff")

	s = trailingComma.ReplaceAllString(s, "$1")

	// {word: "value"} -> {"word": "value"}
	s = bareKeyRe.ReplaceAllString(s, `$1"$2"$3`)

	s = fixSingleQuotes(s)

	return controlRe.ReplaceAllString(s, "")
}

// fixSingleQuotes converts single quotes to double quotes for JSON compatibility
func fixSingleQuotes(input string) string {
	var result strings.Builder
	inDoubleQuote := false
	escape := false
	prev := rune(0)

	for i, ch := range input {
		if escape {
			result.WriteRune(ch)
			escape = false
			prev = ch
			continue
		}

		if ch == '\\' {
			result.WriteRune(ch)
			escape = true
			prev = ch
			continue
		}

		if ch == '"' {
			inDoubleQuote = !inDoubleQuote
			result.WriteRune(ch)
			prev = ch
			continue
		}

		// Only quote-like single quotes outside of double-quoted strings, not apostrophes
		if ch == '\'' && !inDoubleQuote {
			if i == 0 || prev == ':' || prev == ',' || prev == '[' || prev == '{' || prev == ' ' {
				result.WriteRune('"')
				prev = ch
				continue
			}
		}

		result.WriteRune(ch)
		prev = ch
	}

	return result.String()
}
