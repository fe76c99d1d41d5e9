// Package mailparse decodes inbound result-notification mails into a
// structured result. It is pure: no storage, no logging, garbage in never
// panics out.
package mailparse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jaytaylor/html2text"

	"github.com/RubachokBoss/mx-portal/internal/models"
)

// templateSentinel is what the work-id slot looks like when the sending side
// failed to expand its mail template. Such mails are test traffic, not
// results.
const templateSentinel = "%work_id%"

const (
	dateTimePrefix = "Date/Time:"
	answeredPrefix = "Answered:"
	incorrectMark  = "Incorrect"
)

var (
	scoreRe    = regexp.MustCompile(`(\d+)/(\d+)`)
	questionRe = regexp.MustCompile(`(?i)Question\s*(\d+)`)
)

// Parse extracts a ParsedResult from a notification subject and body. The
// body may be HTML. A malformed subject or an unexpanded template yields
// {ID: INVALID} — a recognized non-result, not an error.
func Parse(subject, body string) models.ParsedResult {
	result := models.ParsedResult{ID: models.InvalidResultID}

	// Сегменты темы: "Result for "1234" by "alice" ...". Чётные индексы —
	// текст между кавычками, нечётные — содержимое кавычек.
	parts := strings.Split(subject, `"`)
	if len(parts) < 4 {
		return result
	}

	id := strings.TrimSpace(parts[1])
	user := strings.TrimSpace(parts[3])
	if id == "" || id == templateSentinel {
		return result
	}

	result.ID = id
	result.User = user

	misses := scanBody(body, &result)

	if len(misses) == 0 {
		result.Incorrect = "All correct!"
	} else {
		result.Incorrect = "Q: " + strings.Join(misses, ", ")
	}

	return result
}

func scanBody(body string, result *models.ParsedResult) []string {
	text := body
	if looksLikeHTML(body) {
		// HTML-тело прогоняем через конвертер, plain text трогать нельзя:
		// конвертер схлопывает переводы строк.
		if converted, err := html2text.FromString(body, html2text.Options{TextOnly: true}); err == nil {
			text = converted
		}
	}

	var misses []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, dateTimePrefix):
			result.Time = strings.TrimSpace(strings.TrimPrefix(line, dateTimePrefix))

		case strings.HasPrefix(line, answeredPrefix):
			raw := strings.TrimSpace(strings.TrimPrefix(line, answeredPrefix))
			result.Score = normalizeScore(raw)

		case strings.Contains(line, incorrectMark):
			if m := questionRe.FindStringSubmatch(line); m != nil {
				misses = append(misses, m[1])
			}
		}
	}

	return misses
}

var htmlMarkers = []string{"<html", "<body", "<div", "<br", "<p>", "<td", "</"}

// looksLikeHTML checks for actual tags. A bare "<" does not count: plain
// bodies legitimately carry it in quoted addresses ("alice <a@b>").
func looksLikeHTML(body string) bool {
	lower := strings.ToLower(body)
	for _, marker := range htmlMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// normalizeScore turns markup-wrapped scores ("**7**|**10**") into
// "7 out of 10". When no <digits>/<digits> shape survives the cleanup, the
// cleaned text itself is the score (e.g. "Complete").
func normalizeScore(raw string) string {
	cleaned := strings.NewReplacer("*", "", "_", "", " ", "", "\t", "", "|", "/").Replace(raw)

	if m := scoreRe.FindStringSubmatch(cleaned); m != nil {
		return fmt.Sprintf("%s out of %s", m[1], m[2])
	}

	return cleaned
}
