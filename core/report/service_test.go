package report_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/trezcool/matibabu/core/report"
	"github.com/trezcool/matibabu/services/email"
	"github.com/trezcool/matibabu/tests"
)

func setup(t *testing.T, reports ...report.Report) (*report.Service, *testutil.ReportRepo, *testutil.StubEngine) {
	t.Helper()
	conf := testutil.NewConfig()
	repo := testutil.NewReportRepo(reports...)
	engine := &testutil.StubEngine{}
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	svc := report.NewService(repo, engine, mailSvc, testutil.NopLogger{}, conf)
	return svc, repo, engine
}

func resetSentMessages() {
	emailsvc.SentMessages = emailsvc.SentMessages[:0]
}

func TestService_RenderPDF(t *testing.T) {
	rep := testutil.NewReportFixture()
	svc, _, engine := setup(t, rep)

	pdf, gotRep, err := svc.RenderPDF(context.Background(), rep.ID, report.RenderOptions{})
	if err != nil {
		t.Fatalf("RenderPDF() error = %v", err)
	}
	if len(pdf) == 0 {
		t.Error("RenderPDF() returned an empty buffer")
	}
	if gotRep.UID != rep.UID {
		t.Errorf("RenderPDF() report UID = %s, want %s", gotRep.UID, rep.UID)
	}

	// the engine received the assembled document with a complete option set
	if !strings.Contains(engine.LastHTML, "DATOS GENERALES") {
		t.Error("engine did not receive the assembled document")
	}
	if engine.LastOpts.Format != "A4" {
		t.Errorf("engine Format = %q, want A4", engine.LastOpts.Format)
	}
	if !strings.Contains(engine.LastOpts.HeaderHTML, "Lucía García") {
		t.Error("header template missing the student name")
	}
	if !strings.Contains(engine.LastOpts.FooterHTML, "Centro de Terapia Matibabu") {
		t.Error("footer template missing the configured institution")
	}
	if !strings.Contains(engine.LastOpts.FooterHTML, `class="pageNumber"`) {
		t.Error("footer template missing the page counter")
	}
}

func TestService_RenderPDF_institutionOverride(t *testing.T) {
	rep := testutil.NewReportFixture()
	svc, _, engine := setup(t, rep)

	if _, _, err := svc.RenderPDF(context.Background(), rep.ID, report.RenderOptions{InstitutionName: "Otro Centro"}); err != nil {
		t.Fatalf("RenderPDF() error = %v", err)
	}
	if !strings.Contains(engine.LastOpts.FooterHTML, "Otro Centro") {
		t.Error("explicit institution name not honored")
	}
}

func TestService_RenderPDF_configuredLogo(t *testing.T) {
	logoPath := filepath.Join(t.TempDir(), "logo.png")
	// tiny but content-sniffable PNG header
	if err := os.WriteFile(logoPath, []byte("\x89PNG\r\n\x1a\n0000000000"), 0o644); err != nil {
		t.Fatal(err)
	}

	rep := testutil.NewReportFixture()
	conf := testutil.NewConfig()
	conf.Institution.LogoPath = logoPath
	engine := &testutil.StubEngine{}
	svc := report.NewService(testutil.NewReportRepo(rep), engine, emailsvc.NewConsoleServiceMock(conf), testutil.NopLogger{}, conf)

	if _, _, err := svc.RenderPDF(context.Background(), rep.ID, report.RenderOptions{}); err != nil {
		t.Fatalf("RenderPDF() error = %v", err)
	}
	if !strings.Contains(engine.LastOpts.HeaderHTML, "data:image/png;base64,") {
		t.Error("configured logo not embedded in the page header")
	}
	if !strings.Contains(engine.LastHTML, "data:image/png;base64,") {
		t.Error("configured logo not embedded in the document header band")
	}

	// an explicit request logo wins over the configured one
	if _, _, err := svc.RenderPDF(context.Background(), rep.ID, report.RenderOptions{LogoDataURL: "data:image/gif;base64,R0lGOD"}); err != nil {
		t.Fatalf("RenderPDF() error = %v", err)
	}
	if !strings.Contains(engine.LastOpts.HeaderHTML, "data:image/gif") {
		t.Error("request logo not honored")
	}
}

func TestService_RenderPDF_oficio(t *testing.T) {
	rep := testutil.NewReportFixture()
	svc, _, engine := setup(t, rep)

	if _, _, err := svc.RenderPDF(context.Background(), rep.ID, report.RenderOptions{Size: report.PaperOficio}); err != nil {
		t.Fatalf("RenderPDF() error = %v", err)
	}
	if engine.LastOpts.Format != "" || engine.LastOpts.WidthIn == 0 || engine.LastOpts.HeightIn == 0 {
		t.Errorf("oficio must reach the engine as explicit dimensions, got %+v", engine.LastOpts)
	}
	if !strings.Contains(engine.LastHTML, "@page { size: 216mm 330mm; }") {
		t.Error("document @page rule does not match the requested format")
	}
}

func TestService_RenderPDF_errors(t *testing.T) {
	incomplete := testutil.NewReportFixture()
	incomplete.ID = 2
	incomplete.Template.Title = ""

	tests := []struct {
		name    string
		id      int
		engErr  error
		wantErr error
	}{
		{name: "not found", id: 404, wantErr: report.ErrNotFound},
		{name: "incomplete aggregate", id: 2, wantErr: report.ErrIncompleteReport},
		{name: "engine failure propagates", id: 1, engErr: errors.New("boom"), wantErr: errors.New("boom")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, engine := setup(t, testutil.NewReportFixture(), incomplete)
			engine.Err = tt.engErr

			_, _, err := svc.RenderPDF(context.Background(), tt.id, report.RenderOptions{})
			if err == nil {
				t.Fatal("RenderPDF() expected an error")
			}
			if err.Error() != tt.wantErr.Error() {
				t.Errorf("RenderPDF() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFilename(t *testing.T) {
	rep := testutil.NewReportFixture()
	want := "informe-0e6918cb-3a2c-4bc7-9b5a-6c9a4f0f1d42.pdf"
	if got := report.Filename(rep); got != want {
		t.Errorf("Filename() = %q, want %q", got, want)
	}
}

func TestService_DeliverToGuardians(t *testing.T) {
	resetSentMessages()
	rep := testutil.NewReportFixture()
	svc, _, _ := setup(t, rep)

	if err := svc.DeliverToGuardians(context.Background(), rep.ID, report.RenderOptions{}); err != nil {
		t.Fatalf("DeliverToGuardians() error = %v", err)
	}

	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("sent %d message(s), want 1", len(emailsvc.SentMessages))
	}
	msg := emailsvc.SentMessages[0]

	// only the guardian with an email on file is addressed
	if len(msg.To) != 1 || msg.To[0].Address != "marta@test.test" {
		t.Errorf("To = %v, want marta@test.test only", msg.To)
	}
	if !strings.Contains(msg.Subject, "Lucía García") {
		t.Errorf("Subject = %q, want the student name in it", msg.Subject)
	}
	if len(msg.Attachments) != 1 {
		t.Fatalf("attached %d file(s), want 1", len(msg.Attachments))
	}
	at := msg.Attachments[0]
	if at.Filename != report.Filename(rep) {
		t.Errorf("attachment name = %q, want %q", at.Filename, report.Filename(rep))
	}
	if at.ContentType != "application/pdf" {
		t.Errorf("attachment content type = %q", at.ContentType)
	}
	if at.Content.Len() == 0 {
		t.Error("attachment is empty")
	}
}

func TestService_DeliverToGuardians_noEmails(t *testing.T) {
	resetSentMessages()
	rep := testutil.NewReportFixture()
	for i := range rep.Student.Guardians {
		rep.Student.Guardians[i].Email.Valid = false
	}
	svc, _, _ := setup(t, rep)

	if err := svc.DeliverToGuardians(context.Background(), rep.ID, report.RenderOptions{}); err != report.ErrNoGuardianEmails {
		t.Errorf("DeliverToGuardians() error = %v, want %v", err, report.ErrNoGuardianEmails)
	}
	if len(emailsvc.SentMessages) != 0 {
		t.Errorf("sent %d message(s), want 0", len(emailsvc.SentMessages))
	}
}
