package logger

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Sanitizer masks credentials before they reach a log line.
//
// SanitizeArgs only masks the values of sensitive keys
// ("secret_key", "token", ...). Credentials embedded in the value of
// a non-sensitive key are caught by the message patterns instead, so
// keep credentials out of free-form values where possible.
type Sanitizer struct {
	mu       sync.RWMutex
	patterns []SanitizeRule
}

// SanitizeRule is a single masking rule.
type SanitizeRule struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// NewSanitizer returns a sanitizer with the default rules.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		patterns: defaultSanitizeRules(),
	}
}

func defaultSanitizeRules() []SanitizeRule {
	return []SanitizeRule{
		// AWS access key IDs have a fixed 20-character shape
		{regexp.MustCompile(`\b(AKIA|ASIA)[0-9A-Z]{16}\b`), "$1****************"},

		// credential query/env style pairs
		{regexp.MustCompile(`(?i)(aws_secret_access_key|secret_access_key|secret[_-]?key)=\S+`), "$1=***"},
		{regexp.MustCompile(`(?i)(aws_session_token|session[_-]?token|token)=\S+`), "$1=***"},
		{regexp.MustCompile(`(?i)password=\S+`), "password=***"},

		// presigned URL signatures
		{regexp.MustCompile(`(?i)(X-Amz-Signature)=[0-9a-f]+`), "$1=***"},
		{regexp.MustCompile(`(?i)(X-Amz-Credential)=[^&\s]+`), "$1=***"},

		// home directories leak usernames
		{regexp.MustCompile(`/home/[^/\s]+`), "/home/***"},
		{regexp.MustCompile(`/Users/[^/\s]+`), "/Users/***"},
	}
}

// Sanitize applies every rule to a string.
func (s *Sanitizer) Sanitize(input string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := input
	for _, rule := range s.patterns {
		result = rule.Pattern.ReplaceAllString(result, rule.Replacement)
	}
	return result
}

// SanitizeArgs masks values of sensitive keys in key-value pairs.
func (s *Sanitizer) SanitizeArgs(args []any) []any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(args) == 0 {
		return args
	}

	result := make([]any, len(args))
	copy(result, args)

	for i := 0; i < len(result)-1; i += 2 {
		key, ok := result[i].(string)
		if !ok {
			continue
		}

		if s.isSensitiveKey(key) {
			switch v := result[i+1].(type) {
			case string:
				result[i+1] = s.maskValue(v)
			case error:
				result[i+1] = s.maskValue(v.Error())
			}
		}
	}

	return result
}

func (s *Sanitizer) isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	sensitiveKeys := []string{
		"password", "secret", "token",
		"access_key", "credential", "auth",
	}

	for _, sk := range sensitiveKeys {
		if strings.Contains(lowerKey, sk) {
			return true
		}
	}
	return false
}

// maskValue keeps at most the first and last character.
func (s *Sanitizer) maskValue(value string) string {
	if len(value) <= 2 {
		return "***"
	}
	if len(value) <= 8 {
		return fmt.Sprintf("%s***", string(value[0]))
	}
	return fmt.Sprintf("%s***%s", string(value[0]), string(value[len(value)-1]))
}

// AddRule registers an extra masking rule.
func (s *Sanitizer) AddRule(pattern string, replacement string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}

	s.patterns = append(s.patterns, SanitizeRule{
		Pattern:     re,
		Replacement: replacement,
	})
	return nil
}
