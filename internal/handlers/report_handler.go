package handlers

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/oceanwatch/marinewatch/internal/classifier"
	"github.com/oceanwatch/marinewatch/internal/dto"
	"github.com/oceanwatch/marinewatch/internal/evidence"
	"github.com/oceanwatch/marinewatch/internal/middleware"
	"github.com/oceanwatch/marinewatch/internal/models"
	"github.com/oceanwatch/marinewatch/internal/services"
	"gorm.io/gorm"
)

const (
	advisoryOK          = "ok"
	advisoryUnavailable = "unavailable"
	advisorySweeping    = "sweeping"
)

type ReportHandler struct {
	reportService     *services.ReportService
	moderationService *services.ModerationService
	orchestrator      *classifier.Orchestrator
	predictor         *classifier.Client
	store             *evidence.Store
}

func NewReportHandler(
	reportService *services.ReportService,
	moderationService *services.ModerationService,
	orchestrator *classifier.Orchestrator,
	predictor *classifier.Client,
	store *evidence.Store,
) *ReportHandler {
	return &ReportHandler{
		reportService:     reportService,
		moderationService: moderationService,
		orchestrator:      orchestrator,
		predictor:         predictor,
		store:             store,
	}
}

func (h *ReportHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid token",
		})
	}

	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	report, err := h.reportService.Create(userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrTitleRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create report",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}

func (h *ReportHandler) ListMine(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid token",
		})
	}

	reports, total, err := h.reportService.ListForOwner(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch reports",
		})
	}

	return c.JSON(dto.ReportListResponse{Reports: reports, Total: total, Classifier: advisoryOK})
}

// List returns the full report set for reviewers and kicks off a background
// classification sweep over it. The response never waits on the sweep; the
// classifier field tells the caller whether fresh predictions are on the way.
func (h *ReportHandler) List(c *fiber.Ctx) error {
	status := c.Query("status")
	limit := c.QueryInt("limit", 100)
	offset := c.QueryInt("offset", 0)

	reports, total, err := h.reportService.ListAll(status, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch reports",
		})
	}

	advisory := h.startSweep(reports, middleware.BearerToken(c))

	return c.JSON(dto.ReportListResponse{Reports: reports, Total: total, Classifier: advisory})
}

// startSweep launches a best-effort sweep over its own copy of the slice and
// reports the resulting advisory. The health probe runs here, before the
// goroutine, so the caller learns about an unreachable classifier in the same
// response.
func (h *ReportHandler) startSweep(reports []models.Report, token string) string {
	if h.orchestrator.Sweeping() {
		return advisorySweeping
	}

	probeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err := h.predictor.Health(probeCtx)
	cancel()
	if err != nil {
		return advisoryUnavailable
	}

	snapshot := make([]models.Report, len(reports))
	copy(snapshot, reports)
	go func() {
		_, _ = h.orchestrator.Sweep(context.Background(), snapshot, token)
	}()
	return advisoryOK
}

func (h *ReportHandler) Triage(c *fiber.Ctx) error {
	reports, _, err := h.reportService.ListAll("", 0, 0)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch reports",
		})
	}

	return c.JSON(h.moderationService.GroupForTriage(reports))
}

func (h *ReportHandler) Analytics(c *fiber.Ctx) error {
	summary, err := h.reportService.AnalyticsSummary()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to compute analytics",
		})
	}

	return c.JSON(summary)
}

func (h *ReportHandler) GetByID(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid token",
		})
	}

	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	report, err := h.reportService.GetByID(reportID, userID, middleware.GetRole(c))
	if err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch report",
		})
	}

	return c.JSON(report)
}

func (h *ReportHandler) GetByCID(c *fiber.Ctx) error {
	cid := c.Params("cid")
	if !evidence.ValidCID(cid) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid content identifier",
		})
	}

	data, err := h.reportService.GetByCID(cid)
	if err != nil {
		if errors.Is(err, services.ErrReportNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Report not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch report",
		})
	}

	return c.JSON(dto.PublicReportResponse{Success: true, Data: *data})
}

func (h *ReportHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "No file provided",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to read file",
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to read file",
		})
	}

	result, err := h.store.Upload(c.Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		if errors.Is(err, evidence.ErrStoreNotConfigured) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Error: true, Message: "Evidence storage not configured",
			})
		}
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Error: true, Message: "Evidence upload failed",
		})
	}

	return c.JSON(dto.UploadResponse{
		Success:   true,
		IPFSHash:  result.CID,
		PinSize:   result.PinSize,
		Timestamp: result.Timestamp,
	})
}

// TriggerSweep starts an explicit sweep over every report. 202 when a sweep
// is started, 200 when one is already running, 503 when the classifier is
// unreachable.
func (h *ReportHandler) TriggerSweep(c *fiber.Ctx) error {
	if h.orchestrator.Sweeping() {
		return c.Status(fiber.StatusOK).JSON(dto.SweepResponse{
			Started: false, Message: "Sweep already in progress",
		})
	}

	probeCtx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	err := h.predictor.Health(probeCtx)
	cancel()
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: true, Message: "Classifier service unavailable",
		})
	}

	reports, _, err := h.reportService.ListAll("", 0, 0)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch reports",
		})
	}

	token := middleware.BearerToken(c)
	go func() {
		_, _ = h.orchestrator.Sweep(context.Background(), reports, token)
	}()

	return c.Status(fiber.StatusAccepted).JSON(dto.SweepResponse{
		Started: true, Message: "Classification sweep started",
	})
}
