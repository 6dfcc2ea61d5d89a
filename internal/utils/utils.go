// Package utils provides a collection of reusable utility functions and helpers
// for use across the project.
//
// Functional Programming Utilities:
//   - Map, Filter: Generic implementations for slice processing.
//
// Date Handling:
//   - ISODate / DisplayDate formats and the conversions between them.
//
// List Fields:
//   - JoinList, SplitList: semicolon-joined flattening of multi-valued fields.
//
// Miscellaneous:
//   - Contains, TrimBlank, GenerateRandomString.
//
// This package is intended to centralize commonly used logic and promote code reuse
// throughout the project.
package utils

import (
	"crypto/rand"
	"strings"
	"time"
)

/* some Functional Programming in Go */
// map
type mapFunc[E any, R any] func(E) R

// Map function definition of a functional programming "function"
func Map[S ~[]E, E any, R any](s S, f mapFunc[E, R]) []R {
	result := make([]R, len(s))
	for i, e := range s {
		result[i] = f(e)
	}

	return result
}

// filter
type keepFunc[E any] func(E) bool

// Filter function definition of a functional programming "function"
func Filter[S ~[]E, E any](s S, f keepFunc[E]) S {
	result := S{}
	for _, v := range s {
		if f(v) {
			result = append(result, v)
		}
	}

	return result
}

// Contains function iterates over a slice of strings and checks if the given string is there
// if you want to avoid the slices.Contains package function
func Contains(slice []string, val string) bool {
	for _, s := range slice {
		if s == val {
			return true
		}
	}

	return false
}

// date formats used across the system: ISODate is the canonical stored form,
// DisplayDate is what CSV files and the UI show.
const (
	ISODateFormat     = "2006-01-02"
	DisplayDateFormat = "02-01-2006"
)

// ToDisplayDate formats a canonical YYYY-MM-DD string as DD-MM-YYYY.
// Unparseable input is returned unchanged.
func ToDisplayDate(iso string) string {
	t, err := time.Parse(ISODateFormat, strings.TrimSpace(iso))
	if err != nil {
		return iso
	}

	return t.Format(DisplayDateFormat)
}

// ToISODate parses a DD-MM-YYYY display string back to YYYY-MM-DD.
// Already-canonical input passes through.
func ToISODate(display string) (string, error) {
	s := strings.TrimSpace(display)
	if s == "" {
		return "", nil
	}
	if t, err := time.Parse(ISODateFormat, s); err == nil {
		return t.Format(ISODateFormat), nil
	}
	t, err := time.Parse(DisplayDateFormat, s)
	if err != nil {
		return "", err
	}

	return t.Format(ISODateFormat), nil
}

// ListSeparator joins multi-valued fields when they are flattened to a single
// CSV cell.
const ListSeparator = ";"

// JoinList flattens a list field for export.
func JoinList(values []string) string {
	return strings.Join(values, ListSeparator)
}

// SplitList reconstructs a list field from its flattened form, dropping empty
// segments.
func SplitList(joined string) []string {
	parts := strings.Split(joined, ListSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}

	return out
}

// TrimBlank returns the trimmed string, or "" if it was only whitespace.
func TrimBlank(s string) string {
	return strings.TrimSpace(s)
}

// GenerateRandomString returns an alphanumeric string of the given length,
// suitable for store-assigned document ids.
func GenerateRandomString(length int) (string, error) {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	bytes := make([]byte, length)
	random := make([]byte, length)
	_, err := rand.Read(random)
	if err != nil {
		return "", err
	}
	for i := 0; i < length; i++ {
		bytes[i] = chars[int(random[i])%len(chars)]
	}
	return string(bytes), nil
}
