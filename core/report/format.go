package report

import (
	"strconv"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
)

// htmlEscaper escapes the five HTML special characters with their named
// entities. A single-pass replacer never re-escapes the ampersands it
// introduces itself.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML must be applied to every piece of report-originating text before
// it is interpolated into document markup. It is the sole injection defense;
// no field is trusted.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// FormatLevel replaces the vocabulary's internal word separator with a space:
// "CON_AYUDA_ORAL" -> "CON AYUDA ORAL". No case transformation.
func FormatLevel(level string) string {
	return strings.ReplaceAll(level, "_", " ")
}

// Age returns the whole elapsed years between birth and now following the
// anniversary rule. Age display is non-critical: a missing or invalid birth
// date yields "" rather than an error.
func Age(birth null.Time, now time.Time) string {
	if !birth.Valid || birth.Time.IsZero() {
		return ""
	}
	b := birth.Time
	years := now.Year() - b.Year()
	if now.Month() < b.Month() || (now.Month() == b.Month() && now.Day() < b.Day()) {
		years--
	}
	if years < 0 {
		return ""
	}
	return strconv.Itoa(years)
}

// FormatDate renders a date the way guardians expect to read it on a filed
// document (day-first).
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}
