package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Moderation statuses. A report starts pending and is disposed of by a
// reviewer; approved and rejected are terminal.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Predicted labels written by the classification sweep. Plastic and oil_spill
// are confirmed detections and are never overwritten by later sweeps;
// undetected and none stay eligible for re-classification.
const (
	LabelPlastic    = "plastic"
	LabelOilSpill   = "oil_spill"
	LabelUndetected = "undetected"
	LabelNone       = "none"
)

// Report is a marine-pollution incident report. Category is the submitter's
// own assertion and is kept for audit only; triage grouping reads the
// machine-predicted fields instead. The moderation service owns Status, the
// classification orchestrator owns the Predicted* fields; neither touches the
// other's columns.
type Report struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Category    string    `gorm:"size:50" json:"category"`
	Location    string    `gorm:"size:255" json:"location"`
	Latitude    *float64  `gorm:"type:decimal(10,8)" json:"latitude,omitempty"`
	Longitude   *float64  `gorm:"type:decimal(11,8)" json:"longitude,omitempty"`
	Severity    string    `gorm:"size:20" json:"severity,omitempty"`

	// Evidence locations. EvidenceCID is the content identifier returned by
	// the evidence store; EvidenceURL and ImageURL are direct locations kept
	// from two generations of the submission form.
	// The column tag pins the name: the default naming strategy would
	// render CID as c_id.
	EvidenceCID string `gorm:"column:evidence_cid;size:255;index" json:"ipfs_hash,omitempty"`
	EvidenceURL string `gorm:"type:text" json:"evidence_url,omitempty"`
	ImageURL    string `gorm:"type:text" json:"image_url,omitempty"`

	Status string `gorm:"size:20;not null;default:'pending';index" json:"status"`

	PredictedLabel     *string    `gorm:"size:50" json:"predicted_label,omitempty"`
	PlasticProbability *float64   `json:"plastic_prob,omitempty"`
	OilProbability     *float64   `json:"oil_prob,omitempty"`
	IsWaterDetection   bool       `gorm:"default:false" json:"is_water_detection"`
	ClassifiedAt       *time.Time `json:"classified_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Owner     User      `gorm:"foreignKey:OwnerID" json:"-"`
}

// BeforeCreate ensures UUID is set before creation
func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// HasConfirmedLabel reports whether a sweep has already produced a sticky
// pollution detection for this report.
func (r *Report) HasConfirmedLabel() bool {
	if r.PredictedLabel == nil {
		return false
	}
	switch *r.PredictedLabel {
	case "", LabelNone, LabelUndetected, "unknown":
		return false
	}
	return true
}
