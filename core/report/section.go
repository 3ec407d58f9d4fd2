package report

import (
	"sort"
	"strings"
)

const (
	activityHeader = "Descripción de la actividad desarrollada"
	gradeHeader    = "Grado de adquisición"
)

// RenderSection turns one template section, its items and the resolved answer
// map into an HTML fragment. A section renders as a two-column grade table
// iff at least one of its items is a level item; otherwise it renders as a
// sequence of labeled free-text blocks.
func RenderSection(sec Section, answers map[int]string) string {
	items := sortedItems(sec.Items)

	hasLevelItems := false
	for _, it := range items {
		if it.Type == ItemTypeLevel {
			hasLevelItems = true
			break
		}
	}

	var b strings.Builder
	b.WriteString(`<div class="section">`)
	b.WriteString(`<h2 class="section-title">` + EscapeHTML(strings.ToUpper(sec.Title)) + `</h2>`)
	if hasLevelItems {
		renderGradeTable(&b, items, answers)
	} else {
		renderTextBlocks(&b, sec, items, answers)
	}
	b.WriteString(`</div>`)
	return b.String()
}

func renderGradeTable(b *strings.Builder, items []Item, answers map[int]string) {
	b.WriteString(`<table class="grade-table"><thead><tr>`)
	b.WriteString(`<th>` + activityHeader + `</th>`)
	b.WriteString(`<th>` + gradeHeader + `</th>`)
	b.WriteString(`</tr></thead><tbody>`)
	for _, it := range items {
		answer := answers[it.ID] // absent -> ""
		if it.Type == ItemTypeLevel {
			answer = FormatLevel(answer)
		}
		cell := EscapeHTML(answer)
		if cell == "" {
			cell = "&nbsp;" // keep the cell from collapsing
		}
		b.WriteString(`<tr><td>` + EscapeHTML(it.Label) + `</td><td>` + cell + `</td></tr>`)
	}
	b.WriteString(`</tbody></table>`)
}

func renderTextBlocks(b *strings.Builder, sec Section, items []Item, answers map[int]string) {
	if sec.Description.Valid && sec.Description.String != "" {
		b.WriteString(`<p class="section-description">` + EscapeHTML(sec.Description.String) + `</p>`)
	}
	for _, it := range items {
		answer := answers[it.ID]
		if answer == "" {
			// unanswered free-text items produce no output at all
			continue
		}
		b.WriteString(`<div class="text-block">`)
		b.WriteString(`<h3>` + EscapeHTML(it.Label) + `</h3>`)
		b.WriteString(`<p class="text-answer">` + EscapeHTML(answer) + `</p>`)
		b.WriteString(`</div>`)
	}
}

func sortedItems(items []Item) []Item {
	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	return sorted
}
