package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-registration-console/internal/models"
	"github.com/noah-isme/sma-registration-console/internal/repository"
	appErrors "github.com/noah-isme/sma-registration-console/pkg/errors"
	"github.com/noah-isme/sma-registration-console/pkg/i18n"
)

func identityT(key string) string { return key }

type layoutStoreStub struct {
	slots  map[string]string
	getErr error
	setErr error
	sets   int
}

func (s *layoutStoreStub) Get(ctx context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	raw, ok := s.slots[key]
	if !ok {
		return "", appErrors.ErrLayoutNotFound
	}
	return raw, nil
}

func (s *layoutStoreStub) Set(ctx context.Context, key, raw string) error {
	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	if s.slots == nil {
		s.slots = map[string]string{}
	}
	s.slots[key] = raw
	return nil
}

func newColumnServiceForTest(t *testing.T, store ColumnLayoutStore) *ColumnService {
	t.Helper()
	catalog, err := i18n.Default("fr")
	require.NoError(t, err)
	return NewColumnService(store, catalog, NewMetricsService(), zap.NewNop())
}

func TestDefaultColumnsLayout(t *testing.T) {
	columns := DefaultColumns(identityT)

	visible := models.VisibleColumns(columns)
	keys := make([]string, 0, len(visible))
	for _, col := range visible {
		keys = append(keys, col.Key)
	}
	assert.Equal(t, []string{"id", "guardianName", "role", "phone", "studentCount", "submissionDate", "status", "meetingSlot"}, keys)
	assert.Len(t, columns, 20)
	require.NoError(t, ValidateLayout(columns))

	for _, col := range columns[len(visible):] {
		assert.False(t, col.Visible, col.Key)
		assert.NotEmpty(t, col.Category, col.Key)
	}
}

func TestStatusColumnRendersLabel(t *testing.T) {
	columns := DefaultColumns(identityT)
	status := columns[6]
	require.Equal(t, "status", status.Key)

	assert.Equal(t, "status.approved", status.Display(models.StatusApproved))
	assert.Equal(t, "", status.Display(models.Status("archived")))
}

func TestRehydrateRestoresRenderersAndLabels(t *testing.T) {
	defaults := DefaultColumns(identityT)
	saved := []models.Column{
		{Key: "status", Label: "stale", Visible: false, Width: 300},
		{Key: "legacy", Label: "Legacy", Visible: true, Width: 50},
		{Key: "id", Label: "old", Visible: true, Width: 40},
	}

	out := Rehydrate(saved, defaults)

	require.Len(t, out, len(defaults)+1)
	assert.Equal(t, "status", out[0].Key)
	assert.Equal(t, "columns.status", out[0].Label)
	assert.False(t, out[0].Visible)
	assert.Equal(t, 300, out[0].Width)
	require.NotNil(t, out[0].Render)
	assert.Equal(t, "status.rejected", out[0].Display(models.StatusRejected))

	assert.Equal(t, models.Column{Key: "legacy", Label: "Legacy", Visible: true, Width: 50}, out[1])
	assert.Equal(t, 40, out[2].Width)
}

func TestRehydrateAppendsMissingDefaults(t *testing.T) {
	defaults := DefaultColumns(identityT)
	saved := []models.Column{{Key: "phone", Label: "x", Visible: false, Width: 10}}

	out := Rehydrate(saved, defaults)

	require.Len(t, out, len(defaults))
	assert.Equal(t, "phone", out[0].Key)
	for _, col := range out[1:] {
		var def models.Column
		for _, d := range defaults {
			if d.Key == col.Key {
				def = d
			}
		}
		assert.Equal(t, def.Label, col.Label)
		assert.Equal(t, def.Visible, col.Visible)
		assert.Equal(t, def.Width, col.Width)
		assert.Equal(t, def.Render == nil, col.Render == nil)
	}
}

func TestColumnServiceLoadFallsBackToDefaults(t *testing.T) {
	cases := []struct {
		name  string
		store *layoutStoreStub
	}{
		{name: "empty slot", store: &layoutStoreStub{}},
		{name: "malformed json", store: &layoutStoreStub{slots: map[string]string{"slot": "{not json"}}},
		{name: "wrong shape", store: &layoutStoreStub{slots: map[string]string{"slot": `{"key":"id"}`}}},
		{name: "duplicate keys", store: &layoutStoreStub{slots: map[string]string{"slot": `[{"key":"id"},{"key":"id"}]`}}},
		{name: "store failure", store: &layoutStoreStub{getErr: errors.New("redis down")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newColumnServiceForTest(t, tc.store)

			var out []models.Column
			require.NotPanics(t, func() { out = svc.Load(context.Background(), "slot", "en") })

			defaults := svc.Defaults("en")
			require.Len(t, out, len(defaults))
			for i := range defaults {
				assert.Equal(t, defaults[i].Key, out[i].Key)
				assert.Equal(t, defaults[i].Label, out[i].Label)
				assert.Equal(t, defaults[i].Visible, out[i].Visible)
			}
		})
	}
}

func TestColumnServiceSaveThenLoad(t *testing.T) {
	store := repository.NewMemoryColumnLayoutRepository()
	svc := newColumnServiceForTest(t, store)
	ctx := context.Background()

	columns := svc.Defaults("en")
	columns[0], columns[1] = columns[1], columns[0]
	columns[8].Visible = true
	require.NoError(t, svc.Save(ctx, "slot", columns))

	raw, err := store.Get(ctx, "slot")
	require.NoError(t, err)
	var persisted []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	_, hasRender := persisted[0]["Render"]
	assert.False(t, hasRender)

	loaded := svc.Load(ctx, "slot", "fr")
	assert.Equal(t, "guardianName", loaded[0].Key)
	assert.True(t, loaded[8].Visible)
	assert.Equal(t, "En attente", loaded[6].Display(models.StatusPending))
}

func TestColumnServiceSaveRejectsDuplicateKeys(t *testing.T) {
	store := &layoutStoreStub{}
	svc := newColumnServiceForTest(t, store)

	err := svc.Save(context.Background(), "slot", []models.Column{{Key: "id"}, {Key: "id"}})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, 0, store.sets)
}

func TestColumnServiceSaveWrapsStoreFailure(t *testing.T) {
	svc := newColumnServiceForTest(t, &layoutStoreStub{setErr: errors.New("boom")})

	err := svc.Save(context.Background(), "slot", svc.Defaults("en"))
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestColumnServiceRelabelKeepsCustomisation(t *testing.T) {
	svc := newColumnServiceForTest(t, nil)
	columns := svc.Defaults("en")
	columns[2].Visible = false
	columns[2].Width = 999

	out := svc.Relabel(columns, "fr")

	assert.Equal(t, columns[2].Key, out[2].Key)
	assert.False(t, out[2].Visible)
	assert.Equal(t, 999, out[2].Width)
	assert.Equal(t, svc.Defaults("fr")[2].Label, out[2].Label)
}

func TestLayoutKey(t *testing.T) {
	assert.Equal(t, "columns:registration-requests:user-1", LayoutKey("registration-requests", "user-1"))
}
