package testutil

import (
	"context"
	"net/mail"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/matibabu/core"
	"github.com/trezcool/matibabu/core/report"
)

// NewConfig returns a self-contained test config that never touches the
// environment or the filesystem.
func NewConfig() *core.Config {
	return &core.Config{
		AppName:  "Matibabu",
		Env:      "TEST",
		Build:    "test",
		TestMode: true,
		DefaultFromEmail: mail.Address{
			Name:    "Matibabu",
			Address: "noreply@test.test",
		},
		Renderer: core.RendererConfig{
			Timeout:       30 * time.Second,
			MaxConcurrent: 1,
		},
		Institution: core.InstitutionConfig{
			Name: "Centro de Terapia Matibabu",
		},
	}
}

// NewReportFixture builds a fully-hydrated report aggregate: a graded section
// followed by a free-text section, one guardian with an email on file and an
// assigned therapist. Mutate it per test as needed.
func NewReportFixture() report.Report {
	return report.Report{
		ID:         1,
		UID:        uuid.MustParse("0e6918cb-3a2c-4bc7-9b5a-6c9a4f0f1d42"),
		ReportDate: time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		Student: report.Student{
			ID:        7,
			FirstName: "Lucía",
			LastName:  "García",
			BirthDate: null.TimeFrom(time.Date(2015, 6, 15, 0, 0, 0, 0, time.UTC)),
			Guardians: []report.Guardian{
				{ID: 1, FirstName: "Marta", LastName: "García", Email: null.StringFrom("marta@test.test")},
				{ID: 2, FirstName: "Pablo", LastName: "García"},
			},
			Therapist: &report.Therapist{ID: 3, FirstName: "Elena", LastName: "Ruiz"},
		},
		RecordedBy: report.RecordingUser{ID: 9, Name: "Elena Ruiz", Email: "elena@test.test"},
		Template: report.Template{
			ID:    2,
			Title: "Informe trimestral de terapia ocupacional",
			Sections: []report.Section{
				{
					ID:    20,
					Title: "Motricidad fina",
					Order: 1,
					Items: []report.Item{
						{ID: 200, SectionID: 20, Label: "Recorta con tijeras siguiendo una línea", Order: 1, Type: report.ItemTypeLevel},
						{ID: 201, SectionID: 20, Label: "Observaciones", Order: 2, Type: report.ItemTypeText},
					},
				},
				{
					ID:    21,
					Title: "Conclusiones",
					Order: 2,
					Items: []report.Item{
						{ID: 210, SectionID: 21, Label: "Valoración global", Order: 1, Type: report.ItemTypeText},
					},
				},
			},
		},
		Answers: []report.ItemAnswer{
			{ID: 1, ReportID: 1, ItemID: 200, Level: null.StringFrom(report.LevelConseguido)},
		},
	}
}

// NopLogger discards everything.
type NopLogger struct{}

var _ core.Logger = (*NopLogger)(nil)

func (NopLogger) Enable(bool)                  {}
func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

// ReportRepo is an in-memory report.Repository.
type ReportRepo struct {
	mu      sync.Mutex
	Reports map[int]report.Report
	Err     error
}

var _ report.Repository = (*ReportRepo)(nil)

func NewReportRepo(reports ...report.Report) *ReportRepo {
	repo := &ReportRepo{Reports: make(map[int]report.Report, len(reports))}
	for _, rep := range reports {
		repo.Reports[rep.ID] = rep
	}
	return repo
}

func (repo *ReportRepo) GetReportByID(_ context.Context, id int) (report.Report, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.Err != nil {
		return report.Report{}, repo.Err
	}
	rep, ok := repo.Reports[id]
	if !ok {
		return report.Report{}, report.ErrNotFound
	}
	return rep, nil
}

// StubEngine is a report.Engine that records what it was asked to print.
type StubEngine struct {
	mu       sync.Mutex
	PDF      []byte
	Err      error
	Block    chan struct{} // when set, RenderPDF waits on it (concurrency tests)
	Calls    int
	LastHTML string
	LastOpts report.PrintOptions
}

var _ report.Engine = (*StubEngine)(nil)

func (e *StubEngine) CallCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Calls
}

func (e *StubEngine) RenderPDF(ctx context.Context, html string, opts report.PrintOptions) ([]byte, error) {
	e.mu.Lock()
	e.Calls++
	e.LastHTML = html
	e.LastOpts = opts
	block := e.Block
	e.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if e.Err != nil {
		return nil, e.Err
	}
	if e.PDF != nil {
		return e.PDF, nil
	}
	return []byte("%PDF-1.4 stub"), nil
}
