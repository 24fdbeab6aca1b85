package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fencedJSONRe    = regexp.MustCompile("(?s)```(?:json)?\\s*(.+?)\\s*```")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)([A-Za-z_]\w*)(\s*:)`)
	controlCharsRe  = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// ParseModelJSON decodes a JSON object out of language-model output. It
// accepts bare JSON, fenced blocks, JSON embedded in prose and a few common
// slips (trailing commas, unquoted keys, a BOM).
func ParseModelJSON(input string, target any) error {
	input = strings.TrimSpace(strings.TrimPrefix(input, "\ufeff"))
	if input == "" {
		return fmt.Errorf("empty input")
	}

	candidates := []string{input}
	if m := fencedJSONRe.FindStringSubmatch(input); m != nil {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	if obj := firstBalancedObject(input); obj != "" {
		candidates = append(candidates, obj, repairJSON(obj))
	}

	for _, c := range candidates {
		if err := json.Unmarshal([]byte(c), target); err == nil {
			return nil
		}
	}
	return fmt.Errorf("failed to parse JSON from input: %s", truncate(input, 100))
}

// firstBalancedObject returns the first {...} block whose braces balance,
// ignoring braces inside string literals.
func firstBalancedObject(input string) string {
	start := strings.IndexByte(input, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(input); i++ {
		ch := input[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}
	return ""
}

func repairJSON(s string) string {
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	s = bareKeyRe.ReplaceAllString(s, `$1"$2"$3`)
	return controlCharsRe.ReplaceAllString(s, "")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
