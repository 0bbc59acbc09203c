package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-registration-console/internal/models"
	appErrors "github.com/noah-isme/sma-registration-console/pkg/errors"
	"github.com/noah-isme/sma-registration-console/pkg/middleware/requestid"
)

type observerStub struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *observerStub) ObserveUpstreamCall(endpoint, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, endpoint+":"+outcome)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*RegistrationClient, *observerStub) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	obs := &observerStub{}
	return NewRegistrationClient(Config{BaseURL: srv.URL + "/", APIKey: "k-1", Timeout: time.Second}, nil, obs), obs
}

func TestListRequestsDecodesRows(t *testing.T) {
	c, obs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, EndpointList, r.URL.Path)
		assert.Equal(t, "k-1", r.Header.Get("X-API-Key"))
		_, _ = w.Write([]byte(`{"success":true,"data":[{"id":"7","guardianName":"Amina","status":"pending","studentCount":2},{"id":8,"parentId":42,"guardianName":"Karim","status":"scheduled","meetingSlot":"2026-02-15 09:00"}]}`))
	})

	rows, err := c.ListRequests(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.ID(7), rows[0].ID)
	assert.Equal(t, models.ID(7), rows[0].ParentKey())
	assert.Equal(t, models.ID(42), rows[1].ParentKey())
	assert.Equal(t, "2026-02-15 09:00", rows[1].MeetingSlot)
	assert.Equal(t, []string{EndpointList + ":success"}, obs.outcomes)
}

func TestListRequestsUnsuccessfulCarriesServerMessage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"database offline"}`))
	})

	_, err := c.ListRequests(context.Background())
	require.Error(t, err)
	msg, ok := ServerMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "database offline", msg)
}

func TestListRequestsNonJSONIsUpstreamError(t *testing.T) {
	c, obs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	})

	_, err := c.ListRequests(context.Background())
	require.Error(t, err)
	_, ok := ServerMessage(err)
	assert.False(t, ok)
	assert.True(t, errors.Is(err, appErrors.ErrUpstream))
	assert.Equal(t, []string{EndpointList + ":decode_error"}, obs.outcomes)
}

func TestGetDetailSendsParentID(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, EndpointDetail, r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("id"))
		_, _ = w.Write([]byte(`{"success":true,"data":{"parentId":42,"primaryRole":"mother","mother":{"firstName":"Salma","lastName":"B."},"family":{"city":"Oran"},"students":[{"id":1,"firstName":"Nour","repeater":false,"needsBus":true,"busLine":"L3"}],"status":"rejected","rejectionReason":"full"}}`))
	})

	detail, err := c.GetDetail(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, models.ID(42), detail.ParentID)
	assert.Equal(t, "Salma", detail.PrimaryContact().FirstName)
	assert.Equal(t, "full", detail.RejectionReason)
	require.Len(t, detail.Students, 1)
	assert.True(t, detail.Students[0].NeedsBus)
}

func TestGetDetailMissingDataIsRemoteError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	_, err := c.GetDetail(context.Background(), 3)
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, EndpointDetail, remote.Endpoint)
}

func TestUpdateStatusPostsPayload(t *testing.T) {
	var got models.StatusUpdate
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	err := c.UpdateStatus(context.Background(), models.StatusUpdate{ParentID: 42, Status: models.StatusRejected, RejectionReason: "out of capacity"})
	require.NoError(t, err)
	assert.Equal(t, models.ID(42), got.ParentID)
	assert.Equal(t, models.StatusRejected, got.Status)
	assert.Equal(t, "out of capacity", got.RejectionReason)
}

func TestTransportFailureIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()
	c := NewRegistrationClient(Config{BaseURL: srv.URL, Timeout: time.Second}, nil, nil)

	err := c.UpdateStatus(context.Background(), models.StatusUpdate{ParentID: 1, Status: models.StatusApproved})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUpstream))
}

func TestRequestIDIsForwarded(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "req-99", r.Header.Get(requestid.Header))
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	})

	_, err := c.ListRequests(requestid.WithValue(context.Background(), "req-99"))
	require.NoError(t, err)
}
