package services

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/oceanwatch/marinewatch/internal/dto"
	"github.com/oceanwatch/marinewatch/internal/models"
	"gorm.io/gorm"
)

var (
	ErrNotReviewer   = errors.New("reviewer role required")
	ErrInvalidStatus = errors.New("invalid status value")
)

// ModerationService owns the report status lifecycle. It writes only the
// status column; predicted fields belong to the classification sweep and the
// two may interleave freely.
type ModerationService struct {
	db *gorm.DB
}

func NewModerationService(db *gorm.DB) *ModerationService {
	return &ModerationService{db: db}
}

// Transition disposes of a report: pending -> approved or pending -> rejected.
// Repeating a transition on an already-terminal report succeeds as a logged
// no-op; the server has never exposed a reverse transition, so a reviewer
// flipping a decision is recorded at WARN rather than refused.
func (s *ModerationService) Transition(reportID uuid.UUID, newStatus string, actorID uuid.UUID, actorRole string) (*models.Report, error) {
	if actorRole != models.RoleReviewer {
		return nil, ErrNotReviewer
	}
	if newStatus != models.StatusApproved && newStatus != models.StatusRejected {
		return nil, ErrInvalidStatus
	}

	var report models.Report
	if err := s.db.First(&report, "id = ?", reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}

	if report.Status == newStatus {
		slog.Info("moderation transition repeated, no-op",
			"report_id", reportID.String(), "status", newStatus, "user_id", actorID.String())
		return &report, nil
	}
	if report.Status != models.StatusPending {
		slog.Warn("moderation decision changed on terminal report",
			"report_id", reportID.String(), "from", report.Status, "to", newStatus, "user_id", actorID.String())
	}

	result := s.db.Model(&models.Report{}).
		Where("id = ?", reportID).
		Update("status", newStatus)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrReportNotFound
	}

	report.Status = newStatus
	slog.Info("report status updated",
		"report_id", reportID.String(), "status", newStatus, "user_id", actorID.String())
	return &report, nil
}

// GroupForTriage buckets reports for reviewer display using only the
// machine-predicted fields. Status and the submitter's asserted category are
// deliberately ignored.
func (s *ModerationService) GroupForTriage(reports []models.Report) *dto.TriageResponse {
	groups := &dto.TriageResponse{
		Plastic:    []models.Report{},
		OilSpill:   []models.Report{},
		CleanWater: []models.Report{},
	}

	for _, r := range reports {
		if r.IsWaterDetection {
			groups.CleanWater = append(groups.CleanWater, r)
			continue
		}
		label := ""
		if r.PredictedLabel != nil {
			label = *r.PredictedLabel
		}
		switch label {
		case models.LabelPlastic:
			groups.Plastic = append(groups.Plastic, r)
		case models.LabelOilSpill:
			groups.OilSpill = append(groups.OilSpill, r)
		default:
			groups.CleanWater = append(groups.CleanWater, r)
		}
	}
	return groups
}
