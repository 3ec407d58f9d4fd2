package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/matibabu/core/report"
)

// ReportRepository hydrates the full report aggregate from postgres. It is
// read-only: rendering never writes back.
type ReportRepository struct {
	db *sqlx.DB
}

var _ report.Repository = (*ReportRepository)(nil)

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: sqlx.NewDb(db, "postgres")}
}

type reportRow struct {
	ID         int       `db:"id"`
	UID        uuid.UUID `db:"uid"`
	ReportDate time.Time `db:"report_date"`
	StudentID  int       `db:"student_id"`
	RecordedBy int       `db:"recorded_by"`
	TemplateID int       `db:"template_id"`
}

type studentRow struct {
	ID                 int         `db:"id"`
	FirstName          string      `db:"first_name"`
	LastName           string      `db:"last_name"`
	BirthDate          null.Time   `db:"birth_date"`
	TherapistID        null.Int    `db:"therapist_id"`
	TherapistFirstName null.String `db:"therapist_first_name"`
	TherapistLastName  null.String `db:"therapist_last_name"`
}

func (repo *ReportRepository) GetReportByID(ctx context.Context, id int) (report.Report, error) {
	var row reportRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT id, uid, report_date, student_id, recorded_by, template_id FROM report WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return report.Report{}, report.ErrNotFound
	} else if err != nil {
		return report.Report{}, errors.Wrap(err, "getting report")
	}

	rep := report.Report{
		ID:         row.ID,
		UID:        row.UID,
		ReportDate: row.ReportDate,
	}

	if rep.Student, err = repo.getStudent(ctx, row.StudentID); err != nil {
		return report.Report{}, err
	}
	if rep.RecordedBy, err = repo.getRecordingUser(ctx, row.RecordedBy); err != nil {
		return report.Report{}, err
	}
	if rep.Template, err = repo.getTemplate(ctx, row.TemplateID); err != nil {
		return report.Report{}, err
	}
	if err = repo.db.SelectContext(ctx, &rep.Answers,
		`SELECT id, report_id, item_id, level, value FROM report_item_answer WHERE report_id = $1`, rep.ID,
	); err != nil {
		return report.Report{}, errors.Wrap(err, "getting answers")
	}
	return rep, nil
}

func (repo *ReportRepository) getStudent(ctx context.Context, id int) (report.Student, error) {
	var row studentRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT s.id, s.first_name, s.last_name, s.birth_date,
		        s.therapist_id, t.first_name AS therapist_first_name, t.last_name AS therapist_last_name
		 FROM student s
		 LEFT JOIN therapist t ON t.id = s.therapist_id
		 WHERE s.id = $1`, id)
	if err != nil {
		return report.Student{}, errors.Wrap(err, "getting student")
	}

	student := report.Student{
		ID:        row.ID,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		BirthDate: row.BirthDate,
	}
	if row.TherapistID.Valid {
		student.Therapist = &report.Therapist{
			ID:        int(row.TherapistID.Int),
			FirstName: row.TherapistFirstName.String,
			LastName:  row.TherapistLastName.String,
		}
	}

	if err = repo.db.SelectContext(ctx, &student.Guardians,
		`SELECT id, first_name, last_name, email FROM guardian WHERE student_id = $1 ORDER BY id`, id,
	); err != nil {
		return report.Student{}, errors.Wrap(err, "getting guardians")
	}
	return student, nil
}

func (repo *ReportRepository) getRecordingUser(ctx context.Context, id int) (report.RecordingUser, error) {
	var usr report.RecordingUser
	err := repo.db.GetContext(ctx, &usr, `SELECT id, name, email FROM app_user WHERE id = $1`, id)
	if err != nil {
		return report.RecordingUser{}, errors.Wrap(err, "getting recording user")
	}
	return usr, nil
}

func (repo *ReportRepository) getTemplate(ctx context.Context, id int) (report.Template, error) {
	var tmpl report.Template
	err := repo.db.GetContext(ctx, &tmpl, `SELECT id, title FROM report_template WHERE id = $1`, id)
	if err != nil {
		return report.Template{}, errors.Wrap(err, "getting template")
	}

	if err = repo.db.SelectContext(ctx, &tmpl.Sections,
		`SELECT id, template_id, title, ord, description FROM report_section WHERE template_id = $1 ORDER BY ord`, id,
	); err != nil {
		return report.Template{}, errors.Wrap(err, "getting sections")
	}

	var items []report.Item
	if err = repo.db.SelectContext(ctx, &items,
		`SELECT i.id, i.section_id, i.label, i.ord, i.item_type
		 FROM report_item i
		 JOIN report_section s ON s.id = i.section_id
		 WHERE s.template_id = $1
		 ORDER BY i.ord`, id,
	); err != nil {
		return report.Template{}, errors.Wrap(err, "getting items")
	}

	bySection := make(map[int][]report.Item, len(tmpl.Sections))
	for _, it := range items {
		bySection[it.SectionID] = append(bySection[it.SectionID], it)
	}
	for i := range tmpl.Sections {
		tmpl.Sections[i].Items = bySection[tmpl.Sections[i].ID]
	}
	return tmpl, nil
}
