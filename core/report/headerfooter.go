package report

import "strings"

// Header/footer fragments are consumed by the print engine as repeating
// templates outside the main document flow. The engine substitutes the
// pageNumber/totalPages spans at rasterization time; styles must be inline
// since the templates do not see the document stylesheet.

// BuildHeaderTemplate produces the repeating page header: a small logo when
// supplied, the document title and the student's full name.
func BuildHeaderTemplate(title, studentName, logoDataURL string) string {
	var b strings.Builder
	b.WriteString(`<div style="width: 100%; font-size: 9px; padding: 0 0.5in; display: flex; align-items: center; justify-content: space-between; border-bottom: 1px solid #999;">`)
	if logoDataURL != "" {
		b.WriteString(`<img src="` + EscapeHTML(logoDataURL) + `" style="height: 28px;"/>`)
	}
	b.WriteString(`<span>` + EscapeHTML(title) + `</span>`)
	b.WriteString(`<span>` + EscapeHTML(studentName) + `</span>`)
	b.WriteString(`</div>`)
	return b.String()
}

// BuildFooterTemplate produces the repeating page footer: the institution
// name and a running "Page X of Y" counter computed by the engine.
func BuildFooterTemplate(institutionName string) string {
	var b strings.Builder
	b.WriteString(`<div style="width: 100%; font-size: 9px; padding: 0 0.5in; display: flex; justify-content: space-between;">`)
	b.WriteString(`<span>` + EscapeHTML(institutionName) + `</span>`)
	b.WriteString(`<span>Página <span class="pageNumber"></span> de <span class="totalPages"></span></span>`)
	b.WriteString(`</div>`)
	return b.String()
}
