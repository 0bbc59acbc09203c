package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-registration-console/internal/models"
	"github.com/noah-isme/sma-registration-console/internal/repository"
	appErrors "github.com/noah-isme/sma-registration-console/pkg/errors"
	"github.com/noah-isme/sma-registration-console/pkg/i18n"
)

func newSessionServiceForTest(t *testing.T, api *registrationAPIStub, store ColumnLayoutStore) *ConsoleSessionService {
	t.Helper()
	catalog, err := i18n.Default("fr")
	require.NoError(t, err)
	metrics := NewMetricsService()
	columns := NewColumnService(store, catalog, metrics, zap.NewNop())
	return NewConsoleSessionService(api, columns, catalog, metrics, zap.NewNop(), SessionConfig{
		TableKey:        "registration-requests",
		DefaultLanguage: "fr",
		BulkConcurrency: 4,
		IdleTTL:         time.Hour,
	})
}

func TestSessionCreatedOncePerUser(t *testing.T) {
	api := &registrationAPIStub{rows: threeRows()}
	svc := newSessionServiceForTest(t, api, repository.NewMemoryColumnLayoutRepository())
	ctx := context.Background()

	first, err := svc.Session(ctx, "admin-1", "en-GB")
	require.NoError(t, err)
	second, err := svc.Session(ctx, "admin-1", "ar")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, "en", first.Language())
	assert.Equal(t, 1, api.listCalls)
	assert.Len(t, first.List.Requests(), 3)
	assert.Equal(t, 1, svc.Count())

	_, err = svc.Session(ctx, "", "en")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestSessionFallsBackToDefaultLanguage(t *testing.T) {
	svc := newSessionServiceForTest(t, &registrationAPIStub{}, nil)

	session, err := svc.Session(context.Background(), "admin-2", "de")
	require.NoError(t, err)
	assert.Equal(t, "fr", session.Language())
}

func TestSessionLoadsSavedLayout(t *testing.T) {
	store := repository.NewMemoryColumnLayoutRepository()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, LayoutKey("registration-requests", "admin-1"), `[{"key":"status","label":"old","visible":true,"width":222}]`))
	svc := newSessionServiceForTest(t, &registrationAPIStub{rows: threeRows()}, store)

	session, err := svc.Session(ctx, "admin-1", "en")
	require.NoError(t, err)

	columns := session.Columns()
	require.Equal(t, "status", columns[0].Key)
	assert.Equal(t, "Status", columns[0].Label)
	assert.Equal(t, 222, columns[0].Width)
	assert.Equal(t, "Pending", columns[0].Display(models.StatusPending))
}

func TestSetLanguageRelabelsWithoutReordering(t *testing.T) {
	store := repository.NewMemoryColumnLayoutRepository()
	svc := newSessionServiceForTest(t, &registrationAPIStub{rows: threeRows()}, store)
	ctx := context.Background()
	session, err := svc.Session(ctx, "admin-1", "en")
	require.NoError(t, err)

	columns := session.Columns()
	columns[0], columns[6] = columns[6], columns[0]
	columns[1].Visible = false
	_, err = session.SaveColumns(ctx, columns)
	require.NoError(t, err)

	lang, err := session.SetLanguage("fr")
	require.NoError(t, err)
	assert.Equal(t, "fr", lang)

	relabelled := session.Columns()
	assert.Equal(t, "status", relabelled[0].Key)
	assert.False(t, relabelled[1].Visible)
	assert.Equal(t, "En attente", relabelled[0].Display(models.StatusPending))

	_, err = session.SetLanguage("klingon")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestSnapshotRendersRowsAndState(t *testing.T) {
	svc := newSessionServiceForTest(t, &registrationAPIStub{rows: threeRows()}, nil)
	session, err := svc.Session(context.Background(), "admin-1", "en")
	require.NoError(t, err)
	session.List.SetDateFilter("2026-02-15")

	snapshot := session.Snapshot("Sofia")

	require.Len(t, snapshot.Rows, 1)
	assert.Equal(t, "Sofia Mansour", snapshot.Rows[0].Display["guardianName"])
	assert.Equal(t, "Pending", snapshot.Rows[0].Display["status"])
	assert.Equal(t, "warning", snapshot.Rows[0].Status.Color)
	assert.Equal(t, "2026-02-15", snapshot.State.DateFilter)
	assert.Len(t, snapshot.Statuses, 5)
	assert.Equal(t, "Family", snapshot.Categories[CategoryFamily])
}

func TestDetailSnapshotIncludesProgress(t *testing.T) {
	api := &registrationAPIStub{
		rows: threeRows(),
		details: map[models.ID]*models.RegistrationDetail{
			2: {ParentID: 2, PrimaryRole: models.RoleFather, Father: &models.ParentInfo{FirstName: "Karim"}, Status: models.StatusScheduled},
		},
	}
	svc := newSessionServiceForTest(t, api, nil)
	session, err := svc.Session(context.Background(), "admin-1", "en")
	require.NoError(t, err)
	require.NoError(t, session.Detail.OpenDetailByID(context.Background(), 2))

	snapshot := session.DetailSnapshot()

	assert.True(t, snapshot.Open)
	assert.Equal(t, 1, snapshot.StepIndex)
	assert.Len(t, snapshot.Steps, 4)
	assert.Equal(t, "info", snapshot.Status.Color)
	require.NotNil(t, snapshot.Contact)
	assert.Equal(t, "Karim", snapshot.Contact.FirstName)
}

func TestEvictIdleSessions(t *testing.T) {
	svc := newSessionServiceForTest(t, &registrationAPIStub{}, nil)
	now := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := svc.Session(ctx, "old", "fr")
	require.NoError(t, err)
	now = now.Add(90 * time.Minute)
	_, err = svc.Session(ctx, "fresh", "fr")
	require.NoError(t, err)

	assert.Equal(t, 1, svc.EvictIdle())
	assert.Equal(t, 1, svc.Count())

	svc.Close("fresh")
	assert.Equal(t, 0, svc.Count())
}
