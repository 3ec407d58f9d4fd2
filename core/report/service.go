package report

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kat-co/vala"

	"github.com/trezcool/matibabu/core"
)

var (
	ErrNotFound         = errors.New("report not found")
	ErrIncompleteReport = errors.New("report aggregate is not fully loaded")
	ErrNoGuardianEmails = errors.New("no guardian has an email address on file")
)

const (
	deliverySubject      = "Informe de evaluación"
	deliveryTemplateName = "report-delivery"
)

type (
	// Repository hydrates the full report aggregate: report, student with
	// guardians and assigned therapist, recording user, template with ordered
	// sections, items and answers. Rendering never writes back.
	Repository interface {
		GetReportByID(ctx context.Context, id int) (Report, error)
	}

	// Engine rasterizes an assembled HTML document into a binary PDF buffer.
	Engine interface {
		RenderPDF(ctx context.Context, html string, opts PrintOptions) ([]byte, error)
	}

	Service struct {
		repo    Repository
		engine  Engine
		mailSvc core.EmailService
		logger  core.Logger
		conf    *core.Config

		logoOnce    sync.Once
		logoDataURL string
	}
)

func NewService(repo Repository, engine Engine, mailSvc core.EmailService, logger core.Logger, conf *core.Config) *Service {
	return &Service{
		repo:    repo,
		engine:  engine,
		mailSvc: mailSvc,
		logger:  logger,
		conf:    conf,
	}
}

// preflight guards against rendering a half-hydrated aggregate; repositories
// should never produce one, but a corrupt row must fail here rather than as a
// blank PDF filed with a guardian.
func preflight(rep Report) error {
	return vala.BeginValidation().Validate(
		vala.GreaterThan(rep.ID, 0, "report.id"),
		vala.GreaterThan(rep.Student.ID, 0, "report.student"),
		vala.GreaterThan(rep.Template.ID, 0, "report.template"),
		vala.StringNotEmpty(rep.Template.Title, "report.template.title"),
	).Check()
}

func (svc *Service) normalize(opts RenderOptions) RenderOptions {
	if opts.InstitutionName == "" {
		opts.InstitutionName = svc.conf.Institution.Name
	}
	if opts.LogoDataURL == "" {
		opts.LogoDataURL = svc.defaultLogo()
	}
	return opts
}

// defaultLogo embeds the configured institution logo as a data URL, once. A
// missing or unreadable file only costs the logo, never the document.
func (svc *Service) defaultLogo() string {
	svc.logoOnce.Do(func() {
		p := svc.conf.Institution.LogoPath
		if p == "" {
			return
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(svc.conf.WorkDir, p)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			svc.logger.Warn(fmt.Sprintf("institution logo %q not readable: %v", p, err))
			return
		}
		svc.logoDataURL = fmt.Sprintf("data:%s;base64,%s", http.DetectContentType(data), base64.StdEncoding.EncodeToString(data))
	})
	return svc.logoDataURL
}

// RenderPDF loads the report aggregate, assembles the document and drives the
// print engine. The returned buffer is the final print-ready artifact.
func (svc *Service) RenderPDF(ctx context.Context, id int, opts RenderOptions) ([]byte, Report, error) {
	rep, err := svc.repo.GetReportByID(ctx, id)
	if err != nil {
		return nil, Report{}, err
	}
	if err = preflight(rep); err != nil {
		svc.logger.Error(fmt.Sprintf("report %d failed preflight: %v", id, err), err)
		return nil, Report{}, ErrIncompleteReport
	}

	opts = svc.normalize(opts)
	layout := LayoutFor(opts.Size)

	popts := layout.PrintOptions()
	popts.HeaderHTML = BuildHeaderTemplate(opts.DocumentTitle(rep), rep.Student.FullName(), opts.LogoDataURL)
	popts.FooterHTML = BuildFooterTemplate(opts.InstitutionName)

	html := AssembleDocument(rep, opts, layout, time.Now())

	pdf, err := svc.engine.RenderPDF(ctx, html, popts)
	if err != nil {
		return nil, Report{}, err
	}
	svc.logger.Info(fmt.Sprintf("rendered report %s (%d bytes, %s)", rep.UID, len(pdf), layout.Size))
	return pdf, rep, nil
}

// Filename names the delivered artifact after the report's public id.
func Filename(rep Report) string {
	return fmt.Sprintf("informe-%s.pdf", rep.UID)
}

// DeliverToGuardians renders the report and emails the PDF to every guardian
// with an email address on file.
func (svc *Service) DeliverToGuardians(ctx context.Context, id int, opts RenderOptions) error {
	pdf, rep, err := svc.RenderPDF(ctx, id, opts)
	if err != nil {
		return err
	}

	var recipients []mail.Address
	for _, g := range rep.Student.Guardians {
		if g.Email.Valid && g.Email.String != "" {
			recipients = append(recipients, mail.Address{Name: g.FullName(), Address: g.Email.String})
		}
	}
	if len(recipients) == 0 {
		return ErrNoGuardianEmails
	}

	msg := &core.EmailMessage{
		To:           recipients,
		Subject:      fmt.Sprintf("%s - %s", deliverySubject, rep.Student.FullName()),
		TemplateName: deliveryTemplateName,
		TemplateData: struct {
			StudentName string
			ReportDate  string
		}{
			StudentName: rep.Student.FullName(),
			ReportDate:  FormatDate(rep.ReportDate),
		},
	}
	if err = msg.Attach(bytes.NewReader(pdf), Filename(rep), "application/pdf"); err != nil {
		return err
	}

	svc.mailSvc.SendMessages(msg)
	svc.logger.Info(fmt.Sprintf("report %s delivered to %d guardian(s)", rep.UID, len(recipients)))
	return nil
}
