package dto

import (
	"time"

	"github.com/oceanwatch/marinewatch/internal/models"
)

type CreateReportRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Location    string   `json:"location"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Severity    string   `json:"severity"`
	IPFSHash    string   `json:"ipfs_hash"`
	ImageURL    string   `json:"image_url"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type UpdateStatusResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ReportID  string `json:"reportId"`
	NewStatus string `json:"newStatus"`
}

// ReportListResponse carries the report page plus a classifier advisory so
// the dashboard can tell stale predictions from a fresh sweep.
type ReportListResponse struct {
	Reports    []models.Report `json:"reports"`
	Total      int64           `json:"total"`
	Classifier string          `json:"classifier"`
}

type UploadResponse struct {
	Success   bool      `json:"success"`
	IPFSHash  string    `json:"ipfsHash"`
	PinSize   int64     `json:"pinSize"`
	Timestamp time.Time `json:"timestamp"`
}

// PublicReportResponse is the shape served on the unauthenticated
// lookup-by-CID endpoint.
type PublicReportResponse struct {
	Success bool             `json:"success"`
	Data    PublicReportData `json:"data"`
}

type PublicReportData struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	Description string    `json:"description,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
	Attachments string    `json:"attachments"`
}

// TriageResponse groups reports for reviewer triage. Buckets derive only from
// the machine-predicted fields, never from status or the submitter's category.
type TriageResponse struct {
	Plastic    []models.Report `json:"plastic"`
	OilSpill   []models.Report `json:"oil_spill"`
	CleanWater []models.Report `json:"clean_water_or_undetected"`
}

type AnalyticsSummaryResponse struct {
	TotalClassified int64              `json:"total_classified"`
	Breakdown       map[string]int64   `json:"breakdown"`
	Percentages     map[string]float64 `json:"percentages"`
}

type SweepResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}
