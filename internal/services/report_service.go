package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/oceanwatch/marinewatch/internal/dto"
	"github.com/oceanwatch/marinewatch/internal/models"
	"gorm.io/gorm"
)

var (
	ErrReportNotFound = errors.New("report not found")
	ErrTitleRequired  = errors.New("title is required")
)

type ReportService struct {
	db       *gorm.DB
	gateways []string
}

func NewReportService(db *gorm.DB, gateways []string) *ReportService {
	return &ReportService{db: db, gateways: gateways}
}

func (s *ReportService) Create(ownerID uuid.UUID, req *dto.CreateReportRequest) (*models.Report, error) {
	if req.Title == "" {
		return nil, ErrTitleRequired
	}

	report := models.Report{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Severity:    req.Severity,
		EvidenceCID: req.IPFSHash,
		ImageURL:    req.ImageURL,
		Status:      models.StatusPending,
	}

	if err := s.db.Create(&report).Error; err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	return &report, nil
}

// ListForOwner returns only the caller's reports, newest first.
func (s *ReportService) ListForOwner(ownerID uuid.UUID) ([]models.Report, int64, error) {
	var reports []models.Report
	var total int64

	query := s.db.Model(&models.Report{}).Where("owner_id = ?", ownerID)
	query.Count(&total)

	if err := query.Order("created_at DESC").Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// ListAll returns every report for reviewer triage, optionally filtered by
// moderation status.
func (s *ReportService) ListAll(status string, limit, offset int) ([]models.Report, int64, error) {
	var reports []models.Report
	var total int64

	query := s.db.Model(&models.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	query.Count(&total)

	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Order("created_at DESC").Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// GetByID enforces the original visibility rule: owners see their own
// reports, reviewers see everything.
func (s *ReportService) GetByID(id, requesterID uuid.UUID, requesterRole string) (*models.Report, error) {
	query := s.db.Model(&models.Report{}).Where("id = ?", id)
	if requesterRole != models.RoleReviewer {
		query = query.Where("owner_id = ?", requesterID)
	}

	var report models.Report
	if err := query.First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return &report, nil
}

// GetByCID serves the public lookup-by-content-identifier endpoint.
func (s *ReportService) GetByCID(cid string) (*dto.PublicReportData, error) {
	var report models.Report
	if err := s.db.Where("evidence_cid = ?", cid).First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}

	attachment := ""
	if len(s.gateways) > 0 {
		attachment = s.gateways[0] + "/ipfs/" + report.EvidenceCID
	}

	return &dto.PublicReportData{
		ID:          report.ID.String(),
		Title:       report.Title,
		Category:    report.Category,
		Location:    report.Location,
		Description: report.Description,
		SubmittedAt: report.CreatedAt,
		Attachments: attachment,
	}, nil
}

// UpdatePrediction applies classifier output field-scoped: only the
// predicted columns change, so a concurrent moderation write to status can
// never be clobbered. Satisfies the orchestrator's ReportUpdater.
func (s *ReportService) UpdatePrediction(id uuid.UUID, label string, plasticProb, oilProb float64, isWater bool) error {
	result := s.db.Model(&models.Report{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"predicted_label":     label,
			"plastic_probability": plasticProb,
			"oil_probability":     oilProb,
			"is_water_detection":  isWater,
			"classified_at":       time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReportNotFound
	}
	return nil
}

// AnalyticsSummary breaks classified reports down by predicted label.
func (s *ReportService) AnalyticsSummary() (*dto.AnalyticsSummaryResponse, error) {
	type row struct {
		PredictedLabel string
		Count          int64
	}

	var rows []row
	err := s.db.Model(&models.Report{}).
		Select("predicted_label, COUNT(*) as count").
		Where("predicted_label IS NOT NULL").
		Group("predicted_label").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate predictions: %w", err)
	}

	resp := &dto.AnalyticsSummaryResponse{
		Breakdown:   map[string]int64{models.LabelPlastic: 0, models.LabelOilSpill: 0, models.LabelUndetected: 0},
		Percentages: map[string]float64{},
	}
	for _, r := range rows {
		if _, known := resp.Breakdown[r.PredictedLabel]; known {
			resp.Breakdown[r.PredictedLabel] = r.Count
		}
		resp.TotalClassified += r.Count
	}
	if resp.TotalClassified > 0 {
		for label, count := range resp.Breakdown {
			pct := float64(count) / float64(resp.TotalClassified) * 100
			resp.Percentages[label] = math.Round(pct*10) / 10
		}
	}
	return resp, nil
}
