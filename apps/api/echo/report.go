package echoapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/matibabu/core"
	"github.com/trezcool/matibabu/core/report"
	"github.com/trezcool/matibabu/services/renderer"
)

type reportApi struct {
	service  *report.Service
	validate *validator.Validate
	// sem bounds simultaneous browser processes; each render spawns its own.
	sem chan struct{}
}

func registerReportAPI(g *echo.Group, deps ServerDeps) {
	maxConcurrent := deps.Conf.Renderer.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	api := reportApi{
		service:  deps.ReportSvc,
		validate: deps.Validate,
		sem:      make(chan struct{}, maxConcurrent),
	}

	rg := g.Group("/reports")
	rg.GET("/:id/pdf", api.reportRenderPDF)
	rg.POST("/:id/deliver", api.reportDeliver)
}

// renderRequest carries the recognized render options of a request.
type renderRequest struct {
	Size            string `query:"size" json:"size" validate:"omitempty,oneof=A4 oficio"`
	Title           string `query:"title" json:"title"`
	LogoDataURL     string `query:"-" json:"logo_data_url"`
	InstitutionName string `query:"institution" json:"institution_name"`
}

func (r *renderRequest) options() report.RenderOptions {
	return report.RenderOptions{
		Size:            report.PaperSize(r.Size),
		Title:           core.CleanString(r.Title),
		LogoDataURL:     core.CleanString(r.LogoDataURL),
		InstitutionName: core.CleanString(r.InstitutionName),
	}
}

// Handlers

func (api *reportApi) reportRenderPDF(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	data := new(renderRequest)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	if err = api.validate.Struct(data); err != nil {
		return err
	}

	release, err := api.acquire()
	if err != nil {
		return err
	}
	defer release()

	pdf, rep, err := api.service.RenderPDF(ctx.Request().Context(), id, data.options())
	if err != nil {
		return mapRenderError(err)
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", report.Filename(rep)))
	return ctx.Blob(http.StatusOK, "application/pdf", pdf)
}

func (api *reportApi) reportDeliver(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	data := new(renderRequest)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	if err = api.validate.Struct(data); err != nil {
		return err
	}

	release, err := api.acquire()
	if err != nil {
		return err
	}
	defer release()

	if err = api.service.DeliverToGuardians(ctx.Request().Context(), id, data.options()); err != nil {
		return mapRenderError(err)
	}
	return ctx.JSON(http.StatusAccepted, echo.Map{"status": "delivery scheduled"})
}

// acquire takes a semaphore slot without queueing: a center assistant re-clicking
// "download" should get an immediate 429 rather than pile up browser processes.
func (api *reportApi) acquire() (func(), error) {
	select {
	case api.sem <- struct{}{}:
		return func() { <-api.sem }, nil
	default:
		return nil, errRendererBusy
	}
}

func mapRenderError(err error) error {
	switch {
	case errors.Cause(err) == report.ErrNotFound:
		return errHttpNotFound
	case errors.Cause(err) == renderer.ErrBrowserNotFound:
		return errRendererUnavailable(err.Error())
	case errors.Cause(err) == report.ErrNoGuardianEmails:
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return err
}
