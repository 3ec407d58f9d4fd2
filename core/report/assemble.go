package report

import (
	"sort"
	"strings"
	"time"
)

// RenderOptions are the caller-facing knobs of a render request.
type RenderOptions struct {
	// Size selects one of the two supported physical formats.
	Size PaperSize `json:"size"`
	// Title overrides the template's title when set.
	Title string `json:"title"`
	// LogoDataURL is an optional inline image reference (data: URL) shown in
	// the header band and the repeating page header.
	LogoDataURL string `json:"logo_data_url"`
	// InstitutionName defaults to the configured institution when empty.
	InstitutionName string `json:"institution_name"`
}

// DocumentTitle resolves the title to print: the override when given, the
// template's title otherwise.
func (o RenderOptions) DocumentTitle(rep Report) string {
	if o.Title != "" {
		return o.Title
	}
	return rep.Template.Title
}

const documentStyles = `
  body { font-family: Arial, Helvetica, sans-serif; font-size: 11px; color: #222; margin: 0; }
  .header-band { display: flex; align-items: center; justify-content: space-between; margin-bottom: 12px; }
  .header-band img { height: 48px; }
  .header-meta { font-size: 10px; text-align: right; }
  .title-box { border: 2px solid #222; text-align: center; padding: 8px; margin: 14px 0; }
  .title-box h1 { font-size: 15px; margin: 0 0 4px 0; }
  .title-box .institution { font-size: 11px; }
  .section { margin-bottom: 14px; }
  .section-title { background: #e8e8e8; border: 1px solid #222; padding: 4px 8px; font-size: 12px; }
  .section-description { font-style: italic; }
  .grade-table, .data-table { width: 100%; border-collapse: collapse; }
  .grade-table th, .grade-table td, .data-table th, .data-table td { border: 1px solid #222; padding: 4px 8px; text-align: left; vertical-align: top; }
  .grade-table th { background: #e8e8e8; }
  .data-table th { width: 38%; background: #f4f4f4; font-weight: normal; }
  .text-block h3 { font-size: 11px; margin: 8px 0 2px 0; }
  .text-answer { white-space: pre-wrap; margin: 0; }
  .legend dt { font-weight: bold; margin-top: 4px; }
  .legend dd { margin: 0 0 2px 0; }
  .signatures { display: flex; justify-content: space-around; margin-top: 48px; }
  .signature { width: 40%; border-top: 1px solid #222; text-align: center; padding-top: 6px; font-size: 10px; }
`

// acquisitionLegend is the static explanation of the controlled vocabulary.
// Hard-coded constant, never report data, hence not escaped.
const acquisitionLegend = `<dl class="legend">
<dt>CONSEGUIDO</dt><dd>Realiza la actividad de forma autónoma, sin ningún tipo de ayuda.</dd>
<dt>NO CONSEGUIDO</dt><dd>No realiza la actividad a pesar de las ayudas ofrecidas.</dd>
<dt>EN PROCESO</dt><dd>Comienza a realizar la actividad, aunque todavía de forma inconsistente.</dd>
<dt>CON AYUDA FÍSICA</dt><dd>Realiza la actividad con apoyo físico del terapeuta.</dd>
<dt>CON AYUDA ORAL</dt><dd>Realiza la actividad con indicaciones verbales.</dd>
<dt>CON AYUDA GESTUAL</dt><dd>Realiza la actividad con señalización o modelado gestual.</dd>
</dl>`

// AssembleDocument composes the complete HTML document for a report: head and
// styles, header band, title box, general data, the acquisition legend, every
// template section in ascending order and the signature blocks. All
// report-originating text goes through EscapeHTML; only the fixed legend and
// stamp labels are exempt.
func AssembleDocument(rep Report, opts RenderOptions, layout PageLayout, now time.Time) string {
	answers := ResolveAnswers(rep)
	title := opts.DocumentTitle(rep)

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html lang="es"><head><meta charset="utf-8"><title>` + EscapeHTML(title) + `</title>`)
	b.WriteString(`<style>` + layout.PageRuleCSS() + documentStyles + `</style>`)
	b.WriteString(`</head><body>`)

	writeHeaderBand(&b, rep, opts, title)
	writeTitleBox(&b, opts, title)
	writeGeneralData(&b, rep, now)

	b.WriteString(`<div class="section"><h2 class="section-title">OBSERVACIONES GENERALES</h2>`)
	b.WriteString(acquisitionLegend)
	b.WriteString(`</div>`)

	for _, sec := range sortedSections(rep.Template.Sections) {
		b.WriteString(RenderSection(sec, answers))
	}

	writeSignatures(&b)

	b.WriteString(`</body></html>`)
	return b.String()
}

func writeHeaderBand(b *strings.Builder, rep Report, opts RenderOptions, title string) {
	b.WriteString(`<div class="header-band">`)
	if opts.LogoDataURL != "" {
		b.WriteString(`<img src="` + EscapeHTML(opts.LogoDataURL) + `" alt="logo"/>`)
	}
	b.WriteString(`<strong>` + EscapeHTML(title) + `</strong>`)
	b.WriteString(`<div class="header-meta">`)
	b.WriteString(EscapeHTML(rep.Student.FullName()) + `<br/>`)
	b.WriteString(EscapeHTML(rep.TherapistName()) + `<br/>`)
	b.WriteString(EscapeHTML(FormatDate(rep.ReportDate)))
	b.WriteString(`</div></div>`)
}

func writeTitleBox(b *strings.Builder, opts RenderOptions, title string) {
	b.WriteString(`<div class="title-box">`)
	b.WriteString(`<h1>` + EscapeHTML(title) + `</h1>`)
	b.WriteString(`<div class="institution">` + EscapeHTML(opts.InstitutionName) + `</div>`)
	b.WriteString(`</div>`)
}

func writeGeneralData(b *strings.Builder, rep Report, now time.Time) {
	var birth string
	if rep.Student.BirthDate.Valid {
		birth = FormatDate(rep.Student.BirthDate.Time)
	}
	var therapist string
	if rep.Student.Therapist != nil {
		therapist = rep.Student.Therapist.FullName()
	}

	rows := []struct{ label, value string }{
		{"Nombre del niño/a", rep.Student.FullName()},
		{"Fecha de nacimiento", birth},
		{"Edad", Age(rep.Student.BirthDate, now)},
		{"Padres / tutores", rep.GuardianNames()},
		{"Fecha de entrega del informe", FormatDate(rep.ReportDate)},
		{"Asistencia", ""}, // filled out by hand
		{"Terapeuta", therapist},
	}

	b.WriteString(`<div class="section"><h2 class="section-title">DATOS GENERALES</h2>`)
	b.WriteString(`<table class="data-table"><tbody>`)
	for _, row := range rows {
		value := EscapeHTML(row.value)
		if value == "" {
			value = "&nbsp;"
		}
		b.WriteString(`<tr><th>` + row.label + `</th><td>` + value + `</td></tr>`)
	}
	b.WriteString(`</tbody></table></div>`)
}

func writeSignatures(b *strings.Builder) {
	b.WriteString(`<div class="signatures">`)
	b.WriteString(`<div class="signature">Firma del terapeuta</div>`)
	b.WriteString(`<div class="signature">Sello del centro</div>`)
	b.WriteString(`</div>`)
}

func sortedSections(sections []Section) []Section {
	sorted := make([]Section, len(sections))
	copy(sorted, sections)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	return sorted
}
