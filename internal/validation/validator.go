package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/event-qa-api/internal/models"
)

const (
	MinQuestionLength = 5
	MaxQuestionLength = 1000
	MaxAuthorLength   = 100

	// SpamRunLength is the number of identical consecutive characters treated as spam
	SpamRunLength = 11
)

// tagPattern matches simple, non-nested tag-like fragments
var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Error codes reported by the validators
const (
	CodeInvalidInput = "INVALID_INPUT"
	CodeTooShort     = "TOO_SHORT"
	CodeTooLong      = "TOO_LONG"
	CodeSpamPattern  = "SPAM_PATTERN"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is matches validation errors by code so callers can use errors.Is with the sentinels below
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidInput = &ValidationError{Code: CodeInvalidInput}
	ErrTooShort     = &ValidationError{Code: CodeTooShort}
	ErrTooLong      = &ValidationError{Code: CodeTooLong}
	ErrSpamPattern  = &ValidationError{Code: CodeSpamPattern}
)

// SanitizeText strips tag-like fragments and NUL bytes, trims surrounding whitespace and
// truncates the result to maxLength UTF-16 code units. Anything that is not a non-empty
// string sanitizes to "".
func SanitizeText(input interface{}, maxLength int) string {
	s, ok := input.(string)
	if !ok || s == "" {
		return ""
	}

	for tagPattern.MatchString(s) {
		s = tagPattern.ReplaceAllString(s, "")
	}
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.TrimFunc(s, isTrimSpace)

	return truncate(s, maxLength)
}

// ValidateQuestion checks a submitted question and returns its sanitized form
func ValidateQuestion(input interface{}) (string, error) {
	raw, ok := input.(string)
	if !ok || raw == "" {
		return "", &ValidationError{Field: "question", Code: CodeInvalidInput, Message: "Question is required"}
	}

	question := SanitizeText(raw, MaxQuestionLength)
	length := TextLength(question)

	if length < MinQuestionLength {
		return "", &ValidationError{
			Field:   "question",
			Code:    CodeTooShort,
			Message: fmt.Sprintf("Question must be at least %d characters", MinQuestionLength),
		}
	}

	// Unreachable after truncation; kept so the upper bound is stated next to the lower one.
	if length > MaxQuestionLength {
		return "", &ValidationError{
			Field:   "question",
			Code:    CodeTooLong,
			Message: fmt.Sprintf("Question must be less than %d characters", MaxQuestionLength),
		}
	}

	if hasRepeatedRun(question, SpamRunLength) {
		return "", &ValidationError{
			Field:   "question",
			Code:    CodeSpamPattern,
			Message: "Question contains invalid patterns",
		}
	}

	return question, nil
}

// ValidateAuthor never fails: unusable input becomes models.DefaultAuthor
func ValidateAuthor(input interface{}) string {
	author := SanitizeText(input, MaxAuthorLength)
	if author == "" {
		return models.DefaultAuthor
	}
	return author
}

// TextLength returns the length of s in UTF-16 code units, the unit browsers count in
func TextLength(s string) int {
	n := 0
	for _, r := range s {
		n += utf16Len(r)
	}
	return n
}

// truncate cuts s to at most max UTF-16 code units without splitting a surrogate pair
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	n := 0
	for i, r := range s {
		w := utf16Len(r)
		if n+w > max {
			return s[:i]
		}
		n += w
	}
	return s
}

func utf16Len(r rune) int {
	if r >= 0x10000 && r <= unicode.MaxRune {
		return 2
	}
	return 1
}

// hasRepeatedRun reports whether any UTF-16 code unit other than a line terminator
// repeats at least n times in a row. A repeated astral character alternates between
// its two surrogates and so never forms a run.
func hasRepeatedRun(s string, n int) bool {
	var prev uint16
	run := 0
	for _, u := range utf16.Encode([]rune(s)) {
		if isLineTerminator(rune(u)) {
			run = 0
			continue
		}
		if run > 0 && u == prev {
			run++
		} else {
			prev = u
			run = 1
		}
		if run >= n {
			return true
		}
	}
	return false
}

func isLineTerminator(r rune) bool {
	return r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029'
}

func isTrimSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\ufeff'
}
