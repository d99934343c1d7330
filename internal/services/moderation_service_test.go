package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/oceanwatch/marinewatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition_ApprovesPendingReport(t *testing.T) {
	db := setupTestDB(t)
	reviewer := seedUser(t, db, models.RoleReviewer)
	report := seedReport(t, db, seedUser(t, db, models.RolePublic).ID)

	svc := NewModerationService(db)
	updated, err := svc.Transition(report.ID, models.StatusApproved, reviewer.ID, reviewer.Role)

	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, updated.Status)

	var stored models.Report
	require.NoError(t, db.First(&stored, "id = ?", report.ID).Error)
	assert.Equal(t, models.StatusApproved, stored.Status)
}

func TestTransition_RejectsNonReviewer(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, models.RolePublic)
	report := seedReport(t, db, user.ID)

	svc := NewModerationService(db)
	_, err := svc.Transition(report.ID, models.StatusApproved, user.ID, user.Role)

	require.ErrorIs(t, err, ErrNotReviewer)

	var stored models.Report
	require.NoError(t, db.First(&stored, "id = ?", report.ID).Error)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestTransition_RejectsInvalidStatus(t *testing.T) {
	db := setupTestDB(t)
	reviewer := seedUser(t, db, models.RoleReviewer)
	report := seedReport(t, db, reviewer.ID)

	svc := NewModerationService(db)

	for _, status := range []string{"", models.StatusPending, "escalated"} {
		_, err := svc.Transition(report.ID, status, reviewer.ID, reviewer.Role)
		assert.ErrorIs(t, err, ErrInvalidStatus, "status %q", status)
	}
}

func TestTransition_UnknownReport(t *testing.T) {
	db := setupTestDB(t)
	reviewer := seedUser(t, db, models.RoleReviewer)

	svc := NewModerationService(db)
	_, err := svc.Transition(uuid.New(), models.StatusApproved, reviewer.ID, reviewer.Role)

	require.ErrorIs(t, err, ErrReportNotFound)
}

func TestTransition_RepeatIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	reviewer := seedUser(t, db, models.RoleReviewer)
	report := seedReport(t, db, reviewer.ID)

	svc := NewModerationService(db)
	_, err := svc.Transition(report.ID, models.StatusRejected, reviewer.ID, reviewer.Role)
	require.NoError(t, err)

	updated, err := svc.Transition(report.ID, models.StatusRejected, reviewer.ID, reviewer.Role)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, updated.Status)
}

func TestTransition_DecisionChangeIsAllowed(t *testing.T) {
	db := setupTestDB(t)
	reviewer := seedUser(t, db, models.RoleReviewer)
	report := seedReport(t, db, reviewer.ID)

	svc := NewModerationService(db)
	_, err := svc.Transition(report.ID, models.StatusApproved, reviewer.ID, reviewer.Role)
	require.NoError(t, err)

	updated, err := svc.Transition(report.ID, models.StatusRejected, reviewer.ID, reviewer.Role)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, updated.Status)
}

func TestTransition_LeavesPredictedFieldsAlone(t *testing.T) {
	db := setupTestDB(t)
	reviewer := seedUser(t, db, models.RoleReviewer)
	report := seedReport(t, db, reviewer.ID, func(r *models.Report) {
		r.PredictedLabel = strPtr(models.LabelPlastic)
		r.PlasticProbability = f64Ptr(0.93)
	})

	svc := NewModerationService(db)
	_, err := svc.Transition(report.ID, models.StatusApproved, reviewer.ID, reviewer.Role)
	require.NoError(t, err)

	var stored models.Report
	require.NoError(t, db.First(&stored, "id = ?", report.ID).Error)
	require.NotNil(t, stored.PredictedLabel)
	assert.Equal(t, models.LabelPlastic, *stored.PredictedLabel)
	require.NotNil(t, stored.PlasticProbability)
	assert.InDelta(t, 0.93, *stored.PlasticProbability, 0.001)
}

func TestGroupForTriage_BucketsByPredictedFieldsOnly(t *testing.T) {
	svc := NewModerationService(nil)

	plastic := models.Report{ID: uuid.New(), PredictedLabel: strPtr(models.LabelPlastic)}
	oil := models.Report{ID: uuid.New(), PredictedLabel: strPtr(models.LabelOilSpill)}
	// Water detection wins even with a pollution label present.
	water := models.Report{ID: uuid.New(), PredictedLabel: strPtr(models.LabelPlastic), IsWaterDetection: true}
	unclassified := models.Report{ID: uuid.New()}
	// Submitter claimed oil, prediction says plastic: grouping follows the prediction.
	mislabeled := models.Report{ID: uuid.New(), Category: "oil_spill", PredictedLabel: strPtr(models.LabelPlastic)}

	groups := svc.GroupForTriage([]models.Report{plastic, oil, water, unclassified, mislabeled})

	assert.Len(t, groups.Plastic, 2)
	assert.Len(t, groups.OilSpill, 1)
	assert.Len(t, groups.CleanWater, 2)
	assert.Equal(t, water.ID, groups.CleanWater[0].ID)
}

func TestGroupForTriage_EmptyInput(t *testing.T) {
	svc := NewModerationService(nil)

	groups := svc.GroupForTriage(nil)

	assert.NotNil(t, groups.Plastic)
	assert.Empty(t, groups.Plastic)
	assert.Empty(t, groups.OilSpill)
	assert.Empty(t, groups.CleanWater)
}
