package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-registration-console/internal/models"
	appErrors "github.com/noah-isme/sma-registration-console/pkg/errors"
	"github.com/noah-isme/sma-registration-console/pkg/middleware/requestid"
)

// Remote endpoints, relative to the configured base URL.
const (
	EndpointList   = "/api/registrationRequests.php"
	EndpointDetail = "/api/registrationDetail.php"
	EndpointUpdate = "/api/updateRegistrationStatus.php"
)

const maxResponseBytes = 8 << 20

// RemoteError is returned when the API answers with success=false.
type RemoteError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: request unsuccessful (status %d)", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Endpoint, e.Message)
}

// ServerMessage extracts the message reported by the remote API, if any.
func ServerMessage(err error) (string, bool) {
	var remote *RemoteError
	if errors.As(err, &remote) && strings.TrimSpace(remote.Message) != "" {
		return remote.Message, true
	}
	return "", false
}

// CallObserver receives timing for every remote call.
type CallObserver interface {
	ObserveUpstreamCall(endpoint, outcome string, duration time.Duration)
}

// Config configures the registration API client.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// RegistrationClient talks to the remote registration API.
type RegistrationClient struct {
	baseURL  string
	apiKey   string
	http     *http.Client
	logger   *zap.Logger
	observer CallObserver
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// NewRegistrationClient constructs a client with sane defaults.
func NewRegistrationClient(cfg Config, logger *zap.Logger, observer CallObserver) *RegistrationClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &RegistrationClient{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		http:     httpClient,
		logger:   logger,
		observer: observer,
	}
}

// ListRequests fetches every registration request.
func (c *RegistrationClient) ListRequests(ctx context.Context) ([]models.RegistrationRequest, error) {
	env, err := c.do(ctx, http.MethodGet, EndpointList, nil, nil)
	if err != nil {
		return nil, err
	}
	var rows []models.RegistrationRequest
	if len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		if err := json.Unmarshal(env.Data, &rows); err != nil {
			return nil, appErrors.Upstream(err, "decode registration list")
		}
	}
	if rows == nil {
		rows = []models.RegistrationRequest{}
	}
	return rows, nil
}

// GetDetail fetches the expanded record for a parent identifier.
func (c *RegistrationClient) GetDetail(ctx context.Context, parentID models.ID) (*models.RegistrationDetail, error) {
	query := url.Values{"id": []string{parentID.String()}}
	env, err := c.do(ctx, http.MethodGet, EndpointDetail, query, nil)
	if err != nil {
		return nil, err
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil, &RemoteError{Endpoint: EndpointDetail, StatusCode: http.StatusOK, Message: "registration detail missing"}
	}
	var detail models.RegistrationDetail
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		return nil, appErrors.Upstream(err, "decode registration detail")
	}
	if detail.ParentID == 0 {
		detail.ParentID = parentID
	}
	return &detail, nil
}

// UpdateStatus posts a status mutation.
func (c *RegistrationClient) UpdateStatus(ctx context.Context, update models.StatusUpdate) error {
	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("encode status update: %w", err)
	}
	_, err = c.do(ctx, http.MethodPost, EndpointUpdate, nil, body)
	return err
}

func (c *RegistrationClient) do(ctx context.Context, method, endpoint string, query url.Values, body []byte) (*apiEnvelope, error) {
	target := c.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if reqID := requestid.FromContext(ctx); reqID != "" {
		req.Header.Set(requestid.Header, reqID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(endpoint, "transport_error", start)
		c.logger.Warn("registration api unreachable", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, appErrors.Upstream(err, "registration service unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.observe(endpoint, "transport_error", start)
		return nil, appErrors.Upstream(err, "read registration response")
	}

	var env apiEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.observe(endpoint, "decode_error", start)
		c.logger.Warn("registration api returned non-json body",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
		)
		return nil, appErrors.Upstream(err, fmt.Sprintf("unexpected response from %s (status %d)", endpoint, resp.StatusCode))
	}
	if !env.Success {
		c.observe(endpoint, "rejected", start)
		return nil, &RemoteError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: env.Error}
	}

	c.observe(endpoint, "success", start)
	return &env, nil
}

func (c *RegistrationClient) observe(endpoint, outcome string, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveUpstreamCall(endpoint, outcome, time.Since(start))
}
