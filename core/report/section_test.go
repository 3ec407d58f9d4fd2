package report

import (
	"strings"
	"testing"

	"github.com/volatiletech/null/v8"
)

func TestRenderSection_gradeTable(t *testing.T) {
	sec := Section{
		ID:    1,
		Title: "Motricidad fina",
		Items: []Item{
			{ID: 11, Label: "Recorta con tijeras", Order: 2, Type: ItemTypeLevel},
			{ID: 10, Label: "Ensarta cuentas", Order: 1, Type: ItemTypeLevel},
			{ID: 12, Label: "Notas", Order: 3, Type: ItemTypeText},
		},
	}
	answers := map[int]string{
		10: LevelConAyudaOral,
		12: "progresa",
		// 11 unanswered
	}

	got := RenderSection(sec, answers)

	for _, want := range []string{
		`<h2 class="section-title">MOTRICIDAD FINA</h2>`,
		`<table class="grade-table">`,
		"<th>Descripción de la actividad desarrollada</th>",
		"<th>Grado de adquisición</th>",
		"<td>CON AYUDA ORAL</td>",
		"<td>progresa</td>", // text item inside a mixed section keeps its raw answer
		"<td>&nbsp;</td>",   // unanswered level cell kept open
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderSection() missing %q in:\n%s", want, got)
		}
	}

	// items come out in ascending order
	first := strings.Index(got, "Ensarta cuentas")
	second := strings.Index(got, "Recorta con tijeras")
	if first == -1 || second == -1 || first > second {
		t.Errorf("RenderSection() items out of order:\n%s", got)
	}
}

func TestRenderSection_textBlocks(t *testing.T) {
	sec := Section{
		ID:          2,
		Title:       "Conclusiones",
		Description: null.StringFrom("Valoración global del trimestre"),
		Items: []Item{
			{ID: 20, Label: "Valoración", Order: 1, Type: ItemTypeText},
			{ID: 21, Label: "Recomendaciones", Order: 2, Type: ItemTypeText},
			{ID: 22, Label: "Otros", Order: 3, Type: ItemTypeText},
		},
	}
	answers := map[int]string{
		20: "Ha progresado en todas las áreas.",
		21: "", // answered empty: suppressed like unanswered
	}

	got := RenderSection(sec, answers)

	if strings.Contains(got, "grade-table") {
		t.Errorf("RenderSection() rendered a grade table for a text-only section:\n%s", got)
	}
	for _, want := range []string{
		`<p class="section-description">Valoración global del trimestre</p>`,
		"<h3>Valoración</h3>",
		`<p class="text-answer">Ha progresado en todas las áreas.</p>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderSection() missing %q in:\n%s", want, got)
		}
	}
	for _, notWant := range []string{"Recomendaciones", "Otros"} {
		if strings.Contains(got, notWant) {
			t.Errorf("RenderSection() rendered empty text block %q:\n%s", notWant, got)
		}
	}
}

func TestRenderSection_escapesReportText(t *testing.T) {
	sec := Section{
		Title: `<b>falso título</b>`,
		Items: []Item{
			{ID: 1, Label: "Usa <tijeras> & pegamento", Order: 1, Type: ItemTypeLevel},
		},
	}
	got := RenderSection(sec, map[int]string{1: LevelConseguido})

	for _, want := range []string{
		"&lt;B&gt;FALSO TÍTULO&lt;/B&gt;",
		"Usa &lt;tijeras&gt; &amp; pegamento",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderSection() missing escaped %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "<b>") {
		t.Errorf("RenderSection() leaked raw markup:\n%s", got)
	}
}

func TestRenderSection_noItems(t *testing.T) {
	got := RenderSection(Section{Title: "Vacía"}, map[int]string{})
	if !strings.Contains(got, "VACÍA") {
		t.Errorf("RenderSection() missing title:\n%s", got)
	}
	if strings.Contains(got, "grade-table") {
		t.Errorf("RenderSection() rendered a table with no level items:\n%s", got)
	}
}
