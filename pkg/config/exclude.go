package config

import (
	"path"
	"strings"
)

// Normalize trims config patterns and removes empty values.
func (c *Config) Normalize() {
	if c == nil {
		return
	}
	c.ExcludeFunctions = normalizePatterns(c.ExcludeFunctions)
}

// IsFunctionExcluded reports whether a function ARN matches the exclude
// patterns. Patterns match against both the full ARN and the bare function
// name so operators can exclude by either form.
func (c *Config) IsFunctionExcluded(arn string) bool {
	if c == nil || len(c.ExcludeFunctions) == 0 {
		return false
	}

	normalized := normalizePattern(arn)
	if normalized == "" {
		return false
	}

	name := functionNameFromARN(normalized)
	for _, pattern := range c.ExcludeFunctions {
		if patternMatches(pattern, normalized) {
			return true
		}
		if name != "" && patternMatches(pattern, name) {
			return true
		}
	}

	return false
}

// functionNameFromARN extracts the trailing function name from a Lambda ARN
// (arn:aws:lambda:region:account:function:name). Inputs that are not ARNs
// are returned unchanged.
func functionNameFromARN(arn string) string {
	if !strings.HasPrefix(arn, "arn:") {
		return strings.TrimSpace(arn)
	}
	parts := strings.Split(arn, ":")
	if len(parts) < 7 || parts[5] != "function" {
		return ""
	}
	return strings.TrimSpace(parts[6])
}

func normalizePatterns(values []string) []string {
	if len(values) == 0 {
		return []string{}
	}

	normalized := make([]string, 0, len(values))
	for _, pattern := range values {
		p := normalizePattern(pattern)
		if p == "" {
			continue
		}
		normalized = append(normalized, p)
	}
	return normalized
}

func normalizePattern(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func patternMatches(pattern, value string) bool {
	normalizedPattern := normalizePattern(pattern)
	normalizedValue := normalizePattern(value)
	if normalizedPattern == "" || normalizedValue == "" {
		return false
	}

	// Invalid glob patterns are treated as exact matches.
	matched, err := path.Match(normalizedPattern, normalizedValue)
	if err == nil {
		return matched
	}
	return normalizedPattern == normalizedValue
}
