package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"

	appErrors "github.com/noah-isme/devevent-api/pkg/errors"
)

const canonicalDateLayout = "2006-01-02"

var timePattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*(AM|PM)?$`)

// GenerateSlug lowercases and trims the title, drops every rune other than
// ASCII letters, digits, underscore, whitespace and hyphen, then turns each
// run of whitespace and hyphens into a single hyphen. The result may be empty.
func GenerateSlug(title string) string {
	title = strings.TrimSpace(strings.ToLower(title))

	var b strings.Builder
	b.Grow(len(title))
	lastHyphen := false
	for _, r := range title {
		switch {
		case unicode.IsSpace(r) || r == '-':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		case isSlugRune(r):
			b.WriteRune(r)
			lastHyphen = false
		}
	}
	return b.String()
}

func isSlugRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_'
}

// NormalizeDate parses a free-form date and returns it as YYYY-MM-DD.
// Inputs without a zone are read as UTC; zoned inputs are converted to UTC
// before the calendar date is taken.
func NormalizeDate(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.ContainsAny(trimmed, "0123456789") {
		return "", invalidDate(raw)
	}
	parsed, err := dateparse.ParseIn(trimmed, time.UTC)
	if err != nil {
		return "", appErrors.WrapAs(appErrors.ErrInvalidDateFormat, err, fmt.Sprintf("invalid date format: %s", raw))
	}
	return parsed.UTC().Format(canonicalDateLayout), nil
}

// NormalizeTime converts "H:MM", "HH:MM" or either with an AM/PM suffix into
// 24-hour HH:MM. Suffixed hours must be 1-12, bare hours 0-23.
func NormalizeTime(raw string) (string, error) {
	match := timePattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(raw)))
	if match == nil {
		return "", invalidTime(raw)
	}

	hours, err := strconv.Atoi(match[1])
	if err != nil {
		return "", invalidTime(raw)
	}
	minutes, err := strconv.Atoi(match[2])
	if err != nil || minutes > 59 {
		return "", invalidTime(raw)
	}

	switch period := match[3]; period {
	case "AM", "PM":
		if hours < 1 || hours > 12 {
			return "", invalidTime(raw)
		}
		if period == "PM" && hours < 12 {
			hours += 12
		}
		if period == "AM" && hours == 12 {
			hours = 0
		}
	default:
		if hours > 23 {
			return "", invalidTime(raw)
		}
	}

	return fmt.Sprintf("%02d:%02d", hours, minutes), nil
}

func invalidDate(raw string) error {
	return appErrors.Clone(appErrors.ErrInvalidDateFormat, fmt.Sprintf("invalid date format: %s", raw))
}

func invalidTime(raw string) error {
	return appErrors.Clone(appErrors.ErrInvalidTimeFormat, fmt.Sprintf("invalid time format: %s", raw))
}
