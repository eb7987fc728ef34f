package handlers

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-reports/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/sigec-reports/internal/domain"
	"github.com/seu-repo/sigec-reports/internal/ports"
	"github.com/seu-repo/sigec-reports/internal/service/report"
)

var errNoViewer = errors.New("missing viewer")

type ReportHandler struct {
	service ports.ReportService
	log     *zap.Logger
}

func NewReportHandler(service ports.ReportService, log *zap.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		log:     log,
	}
}

// Register mounts the report routes on an authenticated router.
func (h *ReportHandler) Register(router fiber.Router) {
	reports := router.Group("/reports")
	reports.Get("/owner", h.GetOwnerReport)
	reports.Get("/owner/export", h.ExportOwnerReport)
}

// GetOwnerReport handles GET /reports/owner?range=&capability=
func (h *ReportHandler) GetOwnerReport(c *fiber.Ctx) error {
	query, err := h.parseQuery(c)
	if err != nil {
		return rejectQuery(c, err)
	}

	metrics, err := h.service.Generate(c.UserContext(), query)
	if err != nil {
		return h.failure(c, err)
	}

	return c.JSON(metrics)
}

// ExportOwnerReport handles GET /reports/owner/export and answers with a CSV
// attachment.
func (h *ReportHandler) ExportOwnerReport(c *fiber.Ctx) error {
	query, err := h.parseQuery(c)
	if err != nil {
		return rejectQuery(c, err)
	}

	var buf bytes.Buffer
	if err := h.service.ExportCSV(c.UserContext(), query, &buf); err != nil {
		return h.failure(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Attachment(fmt.Sprintf("owner-report-%s.csv", query.Range))
	return c.Send(buf.Bytes())
}

func (h *ReportHandler) parseQuery(c *fiber.Ctx) (domain.ReportQuery, error) {
	viewer, ok := middleware.ViewerFrom(c)
	if !ok {
		return domain.ReportQuery{}, errNoViewer
	}

	rng, err := domain.ParseReportRange(c.Query("range", string(domain.Range30Days)))
	if err != nil {
		return domain.ReportQuery{}, err
	}

	// A capability carried by the token cannot be widened by the caller.
	capability := viewer.Capability
	if capability == "" {
		capability, err = domain.ParseOwnerCapability(c.Query("capability"))
		if err != nil {
			return domain.ReportQuery{}, err
		}
	}

	orgID := viewer.OrgID
	if orgID == "" {
		orgID = c.Query("org_id")
	}

	return domain.ReportQuery{
		Range:      rng,
		ViewerID:   viewer.ID,
		OrgID:      orgID,
		Capability: capability,
	}, nil
}

func rejectQuery(c *fiber.Ctx, err error) error {
	if errors.Is(err, errNoViewer) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}

func (h *ReportHandler) failure(c *fiber.Ctx, err error) error {
	if errors.Is(err, report.ErrReportUnavailable) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "metrics unavailable",
			"retry": true,
		})
	}
	h.log.Error("Owner report failed", zap.String("path", c.Path()), zap.Error(err))
	return fiber.NewError(fiber.StatusInternalServerError, "failed to build report")
}
