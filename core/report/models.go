package report

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// Acquisition grades: the controlled vocabulary a therapist can grade a
// level item with. Stored as-is; FormatLevel prettifies them for display.
const (
	LevelConseguido      = "CONSEGUIDO"
	LevelNoConseguido    = "NO_CONSEGUIDO"
	LevelEnProceso       = "EN_PROCESO"
	LevelConAyudaFisica  = "CON_AYUDA_FISICA"
	LevelConAyudaOral    = "CON_AYUDA_ORAL"
	LevelConAyudaGestual = "CON_AYUDA_GESTUAL"
)

type ItemType string

const (
	// ItemTypeLevel items are graded with the controlled acquisition vocabulary.
	ItemTypeLevel ItemType = "level"
	// ItemTypeText items hold free narrative text.
	ItemTypeText ItemType = "text"
)

type (
	Guardian struct {
		ID        int         `db:"id" json:"id"`
		FirstName string      `db:"first_name" json:"first_name"`
		LastName  string      `db:"last_name" json:"last_name"`
		Email     null.String `db:"email" json:"email"`
	}

	Therapist struct {
		ID        int    `db:"id" json:"id"`
		FirstName string `db:"first_name" json:"first_name"`
		LastName  string `db:"last_name" json:"last_name"`
	}

	// RecordingUser is the account that filled the report in. It may differ
	// from the student's assigned therapist.
	RecordingUser struct {
		ID    int    `db:"id" json:"id"`
		Name  string `db:"name" json:"name"`
		Email string `db:"email" json:"email"`
	}

	Student struct {
		ID        int       `db:"id" json:"id"`
		FirstName string    `db:"first_name" json:"first_name"`
		LastName  string    `db:"last_name" json:"last_name"`
		BirthDate null.Time `db:"birth_date" json:"birth_date"`
		Guardians []Guardian
		// Therapist is the student's assigned therapist, if any.
		Therapist *Therapist
	}

	Template struct {
		ID       int    `db:"id" json:"id"`
		Title    string `db:"title" json:"title"`
		Sections []Section
	}

	Section struct {
		ID          int         `db:"id" json:"id"`
		TemplateID  int         `db:"template_id" json:"template_id"`
		Title       string      `db:"title" json:"title"`
		Order       int         `db:"ord" json:"order"`
		Description null.String `db:"description" json:"description"`
		Items       []Item
	}

	Item struct {
		ID        int      `db:"id" json:"id"`
		SectionID int      `db:"section_id" json:"section_id"`
		Label     string   `db:"label" json:"label"`
		Order     int      `db:"ord" json:"order"`
		Type      ItemType `db:"item_type" json:"type"`
	}

	// ItemAnswer holds either a controlled-vocabulary level, an arbitrary
	// JSON value, or neither (answered empty). Presence is carried by the
	// null wrappers so a valid-but-falsy level is never mistaken for
	// "unanswered".
	ItemAnswer struct {
		ID       int         `db:"id" json:"id"`
		ReportID int         `db:"report_id" json:"report_id"`
		ItemID   int         `db:"item_id" json:"item_id"`
		Level    null.String `db:"level" json:"level"`
		Value    null.JSON   `db:"value" json:"value"`
	}

	// Report is one filled clinical assessment. It is immutable at render
	// time: rendering never writes back.
	Report struct {
		ID         int       `db:"id" json:"id"`
		UID        uuid.UUID `db:"uid" json:"uid"`
		ReportDate time.Time `db:"report_date" json:"report_date"`
		Student    Student
		RecordedBy RecordingUser
		Template   Template
		Answers    []ItemAnswer
	}
)

func (g Guardian) FullName() string {
	return strings.TrimSpace(g.FirstName + " " + g.LastName)
}

func (t Therapist) FullName() string {
	return strings.TrimSpace(t.FirstName + " " + t.LastName)
}

func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// TherapistName prefers the assigned therapist's own name over the recording
// account's name, falling back to that account's email.
func (r Report) TherapistName() string {
	if r.Student.Therapist != nil {
		return r.Student.Therapist.FullName()
	}
	if r.RecordedBy.Name != "" {
		return r.RecordedBy.Name
	}
	return r.RecordedBy.Email
}

// GuardianNames concatenates all guardian full names for the general-data table.
func (r Report) GuardianNames() string {
	names := make([]string, 0, len(r.Student.Guardians))
	for _, g := range r.Student.Guardians {
		names = append(names, g.FullName())
	}
	return strings.Join(names, " y ")
}
