// Package normalization maps loosely-typed config strings onto enum values.
package normalization

import (
	"fmt"
	"sort"
	"strings"
)

// Normalizer provides type-safe string-to-enum normalization with error handling.
type Normalizer[T comparable] struct {
	name         string
	validValues  map[string]T
	defaultValue T
	validKeys    []string // Cached for error messages
}

// NewNormalizer creates a normalizer with a map of valid string->value pairs.
// name is used in error messages.
func NewNormalizer[T comparable](name string, values map[string]T, defaultValue T) *Normalizer[T] {
	normalized := make(map[string]T, len(values))
	validKeys := make([]string, 0, len(values))

	for k, v := range values {
		key := defaultNormalization(k)
		normalized[key] = v
		validKeys = append(validKeys, key)
	}

	sort.Strings(validKeys)

	return &Normalizer[T]{
		name:         name,
		validValues:  normalized,
		defaultValue: defaultValue,
		validKeys:    validKeys,
	}
}

// Normalize converts a string to the enum type.
// Empty or unknown input yields the default value.
func (n *Normalizer[T]) Normalize(raw string) T {
	if value, exists := n.validValues[defaultNormalization(raw)]; exists {
		return value
	}
	return n.defaultValue
}

// NormalizeWithError converts a string to the enum type. Empty input yields the
// default; unknown input is an error.
func (n *Normalizer[T]) NormalizeWithError(raw string) (T, error) {
	cleaned := defaultNormalization(raw)
	if cleaned == "" {
		return n.defaultValue, nil
	}
	if value, exists := n.validValues[cleaned]; exists {
		return value, nil
	}

	var zero T
	return zero, fmt.Errorf("invalid %s %q, valid options: %v", n.name, raw, n.validKeys)
}

// ValidKeys returns all valid normalized keys.
func (n *Normalizer[T]) ValidKeys() []string {
	result := make([]string, len(n.validKeys))
	copy(result, n.validKeys)
	return result
}

func defaultNormalization(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
