package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customerrors "github.com/amigo-insight/surveydash/internal/errors"
	"github.com/amigo-insight/surveydash/internal/models"
)

func newIntake(s *testStores, geo staticGeo, failOpen bool, t *testing.T) *IntakeService {
	return NewIntakeService(s.projects, s.vendors, s.responses, geo, failOpen, testLocation(t))
}

func click(uid string) ClickRequest {
	return ClickRequest{
		UID:          uid,
		ProjectToken: "tok1",
		VendorToken:  "vt1",
		Country:      "US",
		SourceIP:     "1.2.3.4",
	}
}

func requireRejection(t *testing.T, err error, want models.RejectionType) {
	t.Helper()
	var rejection *customerrors.RejectionError
	require.True(t, errors.As(err, &rejection), "expected a rejection, got %v", err)
	assert.Equal(t, want, rejection.Type)
}

func TestHandleClick_Success(t *testing.T) {
	stores := newTestStores(t)
	stores.seedProject(t, "P1", "tok1", 100)
	stores.seedVendor(t, "V1", "vt1")
	intake := newIntake(stores, staticGeo{country: "US"}, true, t)

	redirect, err := intake.HandleClick(context.Background(), click("u1"))
	require.NoError(t, err)
	assert.Equal(t, "https://surveys.example.com/s1?uid=u1", redirect)

	record, err := stores.responses.GetResponseByUID("u1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, record.Status)
	assert.Equal(t, "P1", record.ProjectID)
	assert.Equal(t, "V1", record.VendorUsername)
	assert.Equal(t, "1.2.3.4", record.IPAddress)
	assert.Nil(t, record.EndTime)
}

func TestHandleClick_UnknownProjectToken(t *testing.T) {
	stores := newTestStores(t)
	stores.seedVendor(t, "V1", "vt1")
	intake := newIntake(stores, staticGeo{country: "US"}, true, t)

	req := click("u1")
	req.ProjectToken = "bogus"
	_, err := intake.HandleClick(context.Background(), req)
	requireRejection(t, err, models.RejectionTerminate)
}

func TestHandleClick_QuotaFull(t *testing.T) {
	stores := newTestStores(t)
	project := stores.seedProject(t, "P1", "tok1", 2)
	stores.seedVendor(t, "V1", "vt1")

	// Two completes already recorded: the quota target is met.
	column, _ := models.StatusComplete.ProjectCounterColumn()
	require.NoError(t, stores.projects.IncrementProjectCounter(project.ProjectIdentifier, column))
	require.NoError(t, stores.projects.IncrementProjectCounter(project.ProjectIdentifier, column))

	intake := newIntake(stores, staticGeo{country: "US"}, true, t)
	_, err := intake.HandleClick(context.Background(), click("u-new"))
	requireRejection(t, err, models.RejectionQuotaFull)

	// Rejection paths are side-effect free: no ledger record was created.
	exists, err := stores.responses.ExistsByUID("u-new")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestHandleClick_UnknownVendorToken(t *testing.T) {
	stores := newTestStores(t)
	stores.seedProject(t, "P1", "tok1", 100)
	intake := newIntake(stores, staticGeo{country: "US"}, true, t)

	req := click("u1")
	req.VendorToken = "bogus"
	_, err := intake.HandleClick(context.Background(), req)
	requireRejection(t, err, models.RejectionTerminate)
}

func TestHandleClick_InactiveProject(t *testing.T) {
	stores := newTestStores(t)
	stores.seedProject(t, "P1", "tok1", 100)
	stores.seedVendor(t, "V1", "vt1")
	intake := newIntake(stores, staticGeo{country: "US"}, true, t)

	require.NoError(t, stores.projects.UpdateProjectStatus("P1", models.ProjectInactive))
	_, err := intake.HandleClick(context.Background(), click("u1"))
	requireRejection(t, err, models.RejectionPaused)

	require.NoError(t, stores.projects.UpdateProjectStatus("P1", models.ProjectClosed))
	_, err = intake.HandleClick(context.Background(), click("u2"))
	requireRejection(t, err, models.RejectionClosed)
}

func TestHandleClick_DuplicateUID(t *testing.T) {
	stores := newTestStores(t)
	stores.seedProject(t, "P1", "tok1", 100)
	stores.seedVendor(t, "V1", "vt1")
	intake := newIntake(stores, staticGeo{country: "US"}, true, t)

	_, err := intake.HandleClick(context.Background(), click("u1"))
	require.NoError(t, err)

	req := click("u1")
	req.SourceIP = "9.9.9.9" // different IP, same UID still rejects
	_, err = intake.HandleClick(context.Background(), req)
	requireRejection(t, err, models.RejectionTerminate)
}

func TestHandleClick_DuplicateIPSameProject(t *testing.T) {
	stores := newTestStores(t)
	stores.seedProject(t, "P1", "tok1", 100)
	stores.seedVendor(t, "V1", "vt1")
	intake := newIntake(stores, staticGeo{country: "US"}, true, t)

	_, err := intake.HandleClick(context.Background(), click("u1"))
	require.NoError(t, err)

	// A fresh UID from the same IP on the same project is still rejected.
	_, err = intake.HandleClick(context.Background(), click("u2"))
	requireRejection(t, err, models.RejectionTerminate)

	exists, err := stores.responses.ExistsByUID("u2")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestHandleClick_CountryMismatch(t *testing.T) {
	stores := newTestStores(t)
	stores.seedProject(t, "P1", "tok1", 100)
	stores.seedVendor(t, "V1", "vt1")
	intake := newIntake(stores, staticGeo{country: "FR"}, true, t)

	_, err := intake.HandleClick(context.Background(), click("u1"))
	requireRejection(t, err, models.RejectionIP)
}

func TestHandleClick_CountryMatchIsCaseInsensitive(t *testing.T) {
	stores := newTestStores(t)
	stores.seedProject(t, "P1", "tok1", 100)
	stores.seedVendor(t, "V1", "vt1")
	intake := newIntake(stores, staticGeo{country: "us"}, true, t)

	_, err := intake.HandleClick(context.Background(), click("u1"))
	require.NoError(t, err)
}

func TestHandleClick_GeoFailureFailOpen(t *testing.T) {
	stores := newTestStores(t)
	stores.seedProject(t, "P1", "tok1", 100)
	stores.seedVendor(t, "V1", "vt1")
	intake := newIntake(stores, staticGeo{err: errors.New("lookup down")}, true, t)

	// Fail-open: a lookup failure degrades to unknown country, click proceeds.
	redirect, err := intake.HandleClick(context.Background(), click("u1"))
	require.NoError(t, err)
	assert.Contains(t, redirect, "uid=u1")
}

func TestHandleClick_GeoFailureFailClosed(t *testing.T) {
	stores := newTestStores(t)
	stores.seedProject(t, "P1", "tok1", 100)
	stores.seedVendor(t, "V1", "vt1")
	intake := newIntake(stores, staticGeo{err: errors.New("lookup down")}, false, t)

	_, err := intake.HandleClick(context.Background(), click("u1"))
	requireRejection(t, err, models.RejectionIP)
}

func TestHandleClick_UnknownCountryPasses(t *testing.T) {
	stores := newTestStores(t)
	stores.seedProject(t, "P1", "tok1", 100)
	stores.seedVendor(t, "V1", "vt1")
	intake := newIntake(stores, staticGeo{country: ""}, true, t)

	// The geo service could not place the IP; an unknown country never blocks.
	_, err := intake.HandleClick(context.Background(), click("u1"))
	require.NoError(t, err)
}

func TestHandleClick_NoLinkForCountry(t *testing.T) {
	stores := newTestStores(t)
	stores.seedProject(t, "P1", "tok1", 100)
	stores.seedVendor(t, "V1", "vt1")
	intake := newIntake(stores, staticGeo{country: "DE"}, true, t)

	req := click("u1")
	req.Country = "DE" // project only has a US link
	_, err := intake.HandleClick(context.Background(), req)
	requireRejection(t, err, models.RejectionTerminate)
}

func TestHandleClick_NoLinksConfigured(t *testing.T) {
	stores := newTestStores(t)
	require.NoError(t, stores.projects.CreateProject(&models.Project{
		ProjectIdentifier: "P1",
		Token:             "tok1",
		Status:            models.ProjectActive,
		Counts:            100,
	}))
	stores.seedVendor(t, "V1", "vt1")
	intake := newIntake(stores, staticGeo{country: "US"}, true, t)

	_, err := intake.HandleClick(context.Background(), click("u1"))
	requireRejection(t, err, models.RejectionInternalError)
}

func TestSubstituteUID(t *testing.T) {
	assert.Equal(t, "https://x.example/a/u1?check=u1",
		SubstituteUID(" https://x.example/a/[UID]?check=[UID] ", "u1"))
	assert.Equal(t, "https://x.example/plain",
		SubstituteUID("https://x.example/plain", "u1"))
}
