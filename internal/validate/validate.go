// Package validate gatekeeps every untrusted string or number before it
// reaches storage or a query. Inputs are allow-list matched, HTML-escaped,
// and additionally screened against SQL-injection heuristics.
package validate

import (
	"errors"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/feteer-counter/api/internal/enum"
	"github.com/shopspring/decimal"
)

const (
	maxCustomerNameLen = 100
	maxSearchLen       = 100
	maxMenuItemLen     = 50
	maxNotesLen        = 500

	// MaxExtraMeats caps the count-based extra-meat modifier before it
	// reaches the pricing rule.
	MaxExtraMeats = 5
)

// maxPrice is the upper bound for any menu or order price.
var maxPrice = decimal.RequireFromString("999.99")

// ValidationError reports a rejected input with a human-readable reason.
// The reason is safe to surface to the user.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Allowed character sets per input type. The Arabic ranges mirror the
// bilingual menu: staff type customer names and notes in either script.
const arabicRanges = `\x{0600}-\x{06FF}\x{0750}-\x{077F}\x{08A0}-\x{08FF}\x{FB50}-\x{FDFF}\x{FE70}-\x{FEFF}`

var (
	customerNamePattern = regexp.MustCompile(`^[a-zA-Z0-9` + arabicRanges + `\s\-\.\'\,]{1,100}$`)
	searchPattern       = regexp.MustCompile(`^[a-zA-Z0-9` + arabicRanges + `\s\-\.\'\,]{0,100}$`)
	menuItemPattern     = regexp.MustCompile(`^[a-zA-Z0-9` + arabicRanges + `\s\-\.\'\,\&\(\)]{1,50}$`)
	notesPattern        = regexp.MustCompile(`^[a-zA-Z0-9` + arabicRanges + `\s\-\.\'\,\!\?\&\(\)]{0,500}$`)

	controlChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
)

// sqlInjectionPatterns is a defense-in-depth heuristic only. The primary
// defenses are the allow-list patterns above plus parameterized queries;
// this scan must never be the sole barrier.
var sqlInjectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE|DROP|CREATE|ALTER|EXEC|UNION|SCRIPT)\b`),
	regexp.MustCompile(`(?i)(--|#|/\*|\*/)`),
	regexp.MustCompile(`(?i)'\s*(OR|AND)\s*'\s*=\s*'`),
	regexp.MustCompile(`(?i)\bUNION\b.*?\bSELECT\b`),
	regexp.MustCompile(`(?i)\bOR\b\s*'\d+'\s*=\s*'\d+'`),
	regexp.MustCompile(`(?i)\bAND\b\s*'\d+'\s*=\s*'\d+'`),
	regexp.MustCompile(`(?i)'\s*OR\s*1\s*=\s*1`),
	regexp.MustCompile(`(?i)'\s*AND\s*1\s*=\s*1`),
}

// Sanitize trims, strips control characters, and caps the length of an
// untrusted string. Allow-list matching runs on this form; the value is
// HTML-escaped afterwards so the stored string is also safe for direct
// inclusion in rendered markup.
func Sanitize(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	s = controlChars.ReplaceAllString(s, "")
	// Length caps count characters, not bytes: Arabic names are
	// multibyte and must never be cut mid-rune.
	if r := []rune(s); maxLen > 0 && len(r) > maxLen {
		s = string(r[:maxLen])
	}
	return s
}

// CustomerName validates and sanitizes a customer name. Empty names are
// rejected; the sanitized name is returned on success.
func CustomerName(name string) (string, error) {
	if name == "" {
		return "", &ValidationError{Field: "customer_name", Reason: "customer name is required"}
	}
	sanitized := Sanitize(name, maxCustomerNameLen)
	if !customerNamePattern.MatchString(sanitized) {
		return "", &ValidationError{Field: "customer_name", Reason: "customer name contains invalid characters"}
	}
	if ContainsSQLInjection(sanitized) {
		return "", &ValidationError{Field: "customer_name", Reason: "invalid customer name format"}
	}
	return html.EscapeString(sanitized), nil
}

// SearchQuery validates a search term. An empty term is valid and means
// "no filter".
func SearchQuery(query string) (string, error) {
	if query == "" {
		return "", nil
	}
	sanitized := Sanitize(query, maxSearchLen)
	if !searchPattern.MatchString(sanitized) {
		return "", &ValidationError{Field: "search", Reason: "search query contains invalid characters"}
	}
	if ContainsSQLInjection(sanitized) {
		return "", &ValidationError{Field: "search", Reason: "invalid search query format"}
	}
	return html.EscapeString(sanitized), nil
}

// MenuItemName validates a menu item display name (max 50 chars, allows &).
func MenuItemName(name string) (string, error) {
	if name == "" {
		return "", &ValidationError{Field: "item_name", Reason: "item name is required"}
	}
	sanitized := Sanitize(name, maxMenuItemLen)
	if !menuItemPattern.MatchString(sanitized) {
		return "", &ValidationError{Field: "item_name", Reason: "item name contains invalid characters"}
	}
	if ContainsSQLInjection(sanitized) {
		return "", &ValidationError{Field: "item_name", Reason: "invalid item name format"}
	}
	return html.EscapeString(sanitized), nil
}

// Notes validates optional free-text order notes (max 500 chars, allows
// !?&() punctuation). Empty notes are valid.
func Notes(notes string) (string, error) {
	if notes == "" {
		return "", nil
	}
	sanitized := Sanitize(notes, maxNotesLen)
	if !notesPattern.MatchString(sanitized) {
		return "", &ValidationError{Field: "notes", Reason: "notes contain invalid characters"}
	}
	if ContainsSQLInjection(sanitized) {
		return "", &ValidationError{Field: "notes", Reason: "invalid notes format"}
	}
	return html.EscapeString(sanitized), nil
}

// Price parses a price string into a decimal in [0, 999.99]. An empty
// string is valid and returns (nil, nil), meaning "no price".
func Price(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, &ValidationError{Field: "price", Reason: "invalid price format"}
	}
	if d.IsNegative() || d.GreaterThan(maxPrice) {
		return nil, &ValidationError{Field: "price", Reason: "price must be between 0 and 999.99"}
	}
	return &d, nil
}

// Status validates an order status against the pipeline values.
func Status(s string) (string, error) {
	for _, valid := range enum.OrderStatuses {
		if s == valid {
			return s, nil
		}
	}
	return "", &ValidationError{
		Field:  "status",
		Reason: "status must be one of: " + strings.Join(enum.OrderStatuses, ", "),
	}
}

// ItemType validates a menu category name.
func ItemType(s string) (string, error) {
	for _, valid := range enum.ItemTypes {
		if s == valid {
			return s, nil
		}
	}
	return "", &ValidationError{
		Field:  "item_type",
		Reason: "item type must be one of: " + strings.Join(enum.ItemTypes, ", "),
	}
}

// IntegerID parses a strictly positive integer id.
func IntegerID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &ValidationError{Field: "id", Reason: "invalid ID format"}
	}
	if id <= 0 {
		return 0, &ValidationError{Field: "id", Reason: "ID must be a positive integer"}
	}
	return id, nil
}

// ContainsSQLInjection reports whether the input matches any of the
// SQL-injection heuristics (keywords, comment markers, tautologies).
func ContainsSQLInjection(s string) bool {
	if s == "" {
		return false
	}
	for _, p := range sqlInjectionPatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// EscapeLikePattern escapes LIKE metacharacters so a user-supplied term
// matches literally. Backslashes are escaped first.
func EscapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	s = strings.ReplaceAll(s, `[`, `\[`)
	return s
}
