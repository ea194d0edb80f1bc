package omero

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"isccd/internal/config"
)

const sessionHeader = "X-OMERO-Session"

const apiRequestTimeout = 60 * time.Second

// HTTPClient implements Client against the OMERO JSON web API.
type HTTPClient struct {
	baseURL  string
	username string
	password string
	api      *http.Client
	stream   *http.Client

	mu      sync.Mutex
	session string
}

// Option customizes an HTTPClient.
type Option func(*HTTPClient)

// WithAPIClient overrides the client used for JSON endpoints.
func WithAPIClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		if client != nil {
			c.api = client
		}
	}
}

// WithStreamClient overrides the client used for raw file streams.
func WithStreamClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		if client != nil {
			c.stream = client
		}
	}
}

// NewHTTPClient builds a client from connection config. No network traffic
// happens until Connect. JSON endpoints carry an overall request timeout;
// raw file streams must not, since a large asset legitimately takes longer
// than any fixed budget to read. The stream client bounds only the wait for
// response headers and leaves the body read to the request context.
func NewHTTPClient(cfg config.Omero, opts ...Option) *HTTPClient {
	scheme := "https"
	if !cfg.Secure {
		scheme = "http"
	}
	client := &HTTPClient{
		baseURL:  fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port),
		username: cfg.Username,
		password: cfg.Password,
		api:      &http.Client{Timeout: apiRequestTimeout},
		stream: &http.Client{
			Transport: &http.Transport{ResponseHeaderTimeout: apiRequestTimeout},
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type loginResponse struct {
	SessionUUID string `json:"sessionUuid"`
}

// Connect performs the login handshake and stores the session token.
func (c *HTTPClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	c.session = ""
	c.mu.Unlock()

	form := url.Values{}
	form.Set("username", c.username)
	form.Set("password", c.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v0/login", bytes.NewBufferString(form.Encode()))
	if err != nil {
		return fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.api.Do(req)
	if err != nil {
		return fmt.Errorf("%w: login: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: login rejected for user %q", ErrAuth, c.username)
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated:
		return fmt.Errorf("%w: login returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var payload loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("%w: decode login response: %v", ErrUnavailable, err)
	}
	if payload.SessionUUID == "" {
		return fmt.Errorf("%w: login response missing session", ErrUnavailable)
	}

	c.mu.Lock()
	c.session = payload.SessionUUID
	c.mu.Unlock()
	return nil
}

// Connected reports whether a session token is held.
func (c *HTTPClient) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != ""
}

// Close drops the session. The server-side logout is best-effort.
func (c *HTTPClient) Close() {
	c.mu.Lock()
	session := c.session
	c.session = ""
	c.mu.Unlock()
	if session == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v0/logout", nil)
	if err != nil {
		return
	}
	req.Header.Set(sessionHeader, session)
	if resp, err := c.api.Do(req); err == nil {
		resp.Body.Close()
	}
}

type imageDTO struct {
	ID         int64   `json:"@id"`
	Name       string  `json:"Name"`
	ImportedAt string  `json:"ImportedAt"`
	FileIDs    []int64 `json:"OriginalFileIds"`
}

type imagesResponse struct {
	Data []imageDTO `json:"data"`
}

// QueryNewAssets lists images strictly beyond the (since, sinceID) position,
// ordered by import time then id, up to limit. The server applies the tuple
// filter so same-timestamp assets already behind the cursor do not occupy
// the result window.
func (c *HTTPClient) QueryNewAssets(ctx context.Context, since time.Time, sinceID int64, limit int) ([]AssetRef, error) {
	query := url.Values{}
	query.Set("importedSince", since.UTC().Format(time.RFC3339Nano))
	query.Set("importedSinceId", strconv.FormatInt(sinceID, 10))
	query.Set("limit", strconv.Itoa(limit))
	query.Set("order", "import_time")

	resp, err := c.get(ctx, c.api, "/api/v0/m/images/", query)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload imagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode image list: %v", ErrUnavailable, err)
	}

	assets := make([]AssetRef, 0, len(payload.Data))
	for _, dto := range payload.Data {
		imported, err := time.Parse(time.RFC3339Nano, dto.ImportedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: image %d has malformed import time %q", ErrUnavailable, dto.ID, dto.ImportedAt)
		}
		assets = append(assets, AssetRef{
			ID:         dto.ID,
			Name:       dto.Name,
			ImportedAt: imported,
			FileIDs:    dto.FileIDs,
		})
	}
	return assets, nil
}

// OpenRawStream opens the raw byte stream of an original file. The caller owns
// the returned body and must close it. Reads are bounded by ctx, not by the
// JSON request timeout.
func (c *HTTPClient) OpenRawStream(ctx context.Context, fileID int64) (io.ReadCloser, error) {
	resp, err := c.get(ctx, c.stream, fmt.Sprintf("/api/v0/m/originalfiles/%d/file", fileID), nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

type annotationsResponse struct {
	Data []struct {
		Namespace string `json:"ns"`
	} `json:"data"`
}

// RecordExists checks for an annotation under namespace on the asset.
func (c *HTTPClient) RecordExists(ctx context.Context, assetID int64, namespace string) (bool, error) {
	query := url.Values{}
	query.Set("ns", namespace)

	resp, err := c.get(ctx, c.api, fmt.Sprintf("/api/v0/m/images/%d/annotations", assetID), query)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	var payload annotationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false, fmt.Errorf("%w: decode annotations: %v", ErrUnavailable, err)
	}
	for _, ann := range payload.Data {
		if ann.Namespace == namespace {
			return true, nil
		}
	}
	return false, nil
}

type annotationRequest struct {
	Namespace string      `json:"ns"`
	Values    [][2]string `json:"values"`
}

// WriteRecord attaches the record as a map annotation under namespace.
func (c *HTTPClient) WriteRecord(ctx context.Context, assetID int64, namespace string, record Record) error {
	session, err := c.currentSession()
	if err != nil {
		return err
	}

	body, err := json.Marshal(annotationRequest{Namespace: namespace, Values: record.Pairs()})
	if err != nil {
		return fmt.Errorf("marshal annotation: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/v0/m/images/%d/annotations", c.baseURL, assetID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build annotation request: %w", err)
	}
	req.Header.Set(sessionHeader, session)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.api.Do(req)
	if err != nil {
		return fmt.Errorf("%w: write annotation: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	return c.classifyStatus(resp.StatusCode, "write annotation")
}

func (c *HTTPClient) get(ctx context.Context, client *http.Client, path string, query url.Values) (*http.Response, error) {
	session, err := c.currentSession()
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", path, err)
	}
	req.Header.Set(sessionHeader, session)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrUnavailable, path, err)
	}
	if err := c.classifyStatus(resp.StatusCode, "GET "+path); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

func (c *HTTPClient) currentSession() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == "" {
		return "", ErrNotConnected
	}
	return c.session, nil
}

func (c *HTTPClient) classifyStatus(status int, op string) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, op)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		// Session expired or revoked; force a fresh handshake.
		c.mu.Lock()
		c.session = ""
		c.mu.Unlock()
		return fmt.Errorf("%w: %s returned status %d", ErrAuth, op, status)
	default:
		return fmt.Errorf("%w: %s returned status %d", ErrUnavailable, op, status)
	}
}
