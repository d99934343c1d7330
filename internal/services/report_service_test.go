package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/oceanwatch/marinewatch/internal/dto"
	"github.com/oceanwatch/marinewatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testGateways = []string{"https://gateway.pinata.cloud", "https://ipfs.io"}

func TestCreateReport(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, models.RolePublic)
	svc := NewReportService(db, testGateways)

	report, err := svc.Create(owner.ID, &dto.CreateReportRequest{
		Title:    "Oil sheen near harbor",
		Category: "oil_spill",
		Location: "North Pier",
		IPFSHash: "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG",
	})

	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, report.Status)
	assert.Equal(t, owner.ID, report.OwnerID)
	assert.Nil(t, report.PredictedLabel)
}

func TestCreateReport_RequiresTitle(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReportService(db, testGateways)

	_, err := svc.Create(uuid.New(), &dto.CreateReportRequest{Category: "plastic"})

	require.ErrorIs(t, err, ErrTitleRequired)
}

func TestListForOwner_ScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, models.RolePublic)
	bob := seedUser(t, db, models.RolePublic)
	seedReport(t, db, alice.ID)
	seedReport(t, db, alice.ID)
	seedReport(t, db, bob.ID)

	svc := NewReportService(db, testGateways)
	reports, total, err := svc.ListForOwner(alice.ID)

	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, r := range reports {
		assert.Equal(t, alice.ID, r.OwnerID)
	}
}

func TestListAll_StatusFilter(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, models.RolePublic)
	seedReport(t, db, owner.ID)
	seedReport(t, db, owner.ID, func(r *models.Report) { r.Status = models.StatusApproved })

	svc := NewReportService(db, testGateways)

	_, total, err := svc.ListAll("", 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	approved, total, err := svc.ListAll(models.StatusApproved, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, approved, 1)
	assert.Equal(t, models.StatusApproved, approved[0].Status)
}

func TestGetByID_Visibility(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, models.RolePublic)
	stranger := seedUser(t, db, models.RolePublic)
	reviewer := seedUser(t, db, models.RoleReviewer)
	report := seedReport(t, db, owner.ID)

	svc := NewReportService(db, testGateways)

	got, err := svc.GetByID(report.ID, owner.ID, owner.Role)
	require.NoError(t, err)
	assert.Equal(t, report.ID, got.ID)

	_, err = svc.GetByID(report.ID, stranger.ID, stranger.Role)
	require.ErrorIs(t, err, ErrReportNotFound)

	_, err = svc.GetByID(report.ID, reviewer.ID, reviewer.Role)
	require.NoError(t, err)
}

func TestGetByCID(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, models.RolePublic)
	cid := "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"
	seedReport(t, db, owner.ID, func(r *models.Report) {
		r.EvidenceCID = cid
		r.Location = "South Beach"
	})

	svc := NewReportService(db, testGateways)

	data, err := svc.GetByCID(cid)
	require.NoError(t, err)
	assert.Equal(t, "South Beach", data.Location)
	assert.Equal(t, "https://gateway.pinata.cloud/ipfs/"+cid, data.Attachments)

	_, err = svc.GetByCID("QmUnknownUnknownUnknownUnknownUnknownUnknown12")
	require.ErrorIs(t, err, ErrReportNotFound)
}

func TestUpdatePrediction_FieldScoped(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, models.RolePublic)
	report := seedReport(t, db, owner.ID, func(r *models.Report) {
		r.Status = models.StatusApproved
	})

	svc := NewReportService(db, testGateways)
	require.NoError(t, svc.UpdatePrediction(report.ID, models.LabelPlastic, 0.88, 0.02, false))

	var stored models.Report
	require.NoError(t, db.First(&stored, "id = ?", report.ID).Error)

	require.NotNil(t, stored.PredictedLabel)
	assert.Equal(t, models.LabelPlastic, *stored.PredictedLabel)
	require.NotNil(t, stored.PlasticProbability)
	assert.InDelta(t, 0.88, *stored.PlasticProbability, 0.001)
	require.NotNil(t, stored.ClassifiedAt)
	// Moderation state is untouched by a prediction write.
	assert.Equal(t, models.StatusApproved, stored.Status)
}

func TestUpdatePrediction_UnknownReport(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReportService(db, testGateways)

	err := svc.UpdatePrediction(uuid.New(), models.LabelPlastic, 0.5, 0.1, false)
	require.ErrorIs(t, err, ErrReportNotFound)
}

func TestAnalyticsSummary(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, models.RolePublic)
	seedReport(t, db, owner.ID, func(r *models.Report) { r.PredictedLabel = strPtr(models.LabelPlastic) })
	seedReport(t, db, owner.ID, func(r *models.Report) { r.PredictedLabel = strPtr(models.LabelPlastic) })
	seedReport(t, db, owner.ID, func(r *models.Report) { r.PredictedLabel = strPtr(models.LabelOilSpill) })
	seedReport(t, db, owner.ID, func(r *models.Report) { r.PredictedLabel = strPtr(models.LabelUndetected) })
	seedReport(t, db, owner.ID) // unclassified, excluded

	svc := NewReportService(db, testGateways)
	summary, err := svc.AnalyticsSummary()

	require.NoError(t, err)
	assert.EqualValues(t, 4, summary.TotalClassified)
	assert.EqualValues(t, 2, summary.Breakdown[models.LabelPlastic])
	assert.EqualValues(t, 1, summary.Breakdown[models.LabelOilSpill])
	assert.EqualValues(t, 1, summary.Breakdown[models.LabelUndetected])
	assert.InDelta(t, 50.0, summary.Percentages[models.LabelPlastic], 0.01)
	assert.InDelta(t, 25.0, summary.Percentages[models.LabelOilSpill], 0.01)
}

func TestAnalyticsSummary_Empty(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReportService(db, testGateways)

	summary, err := svc.AnalyticsSummary()

	require.NoError(t, err)
	assert.Zero(t, summary.TotalClassified)
	assert.Empty(t, summary.Percentages)
}
