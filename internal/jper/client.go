// Package jper is the HTTP client for the JPER notification router: fetching
// notifications, validating deposits and creating new notifications. Every call
// forwards the depositor's API key; the client never retries.
package jper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/antonholmquist/jason"
	"golang.org/x/time/rate"

	"github.com/tphakala/swordgate/internal/errors"
	"github.com/tphakala/swordgate/internal/httpclient"
	"github.com/tphakala/swordgate/internal/logger"
	"github.com/tphakala/swordgate/internal/observability/metrics"
)

const (
	componentName = "jper"

	defaultTimeout     = 30 * time.Second
	defaultUserAgent   = "swordgate"
	defaultFilename    = "deposit.zip"
	defaultContentType = "application/zip"

	// maxErrorBody bounds how much of an error response is kept for messages
	maxErrorBody = 4096
)

// Config holds router client settings.
type Config struct {
	APIURL    string
	Timeout   time.Duration
	UserAgent string
	// RateLimit is the sustained request rate towards the router in requests per second; 0 disables limiting
	RateLimit float64
	RateBurst int
	// Transport overrides the HTTP transport, used by tests
	Transport http.RoundTripper
}

// DefaultConfig returns the default router client configuration.
func DefaultConfig() Config {
	return Config{
		APIURL:    "https://datahub.deepgreen.org/api/v1",
		Timeout:   defaultTimeout,
		UserAgent: defaultUserAgent,
		RateBurst: 1,
	}
}

// Client talks to the router API. A Client is safe for concurrent use;
// ForKey derives per-depositor clients that share its transport and limiter.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *httpclient.Client
	limiter    *rate.Limiter
	log        logger.Logger
	metrics    *metrics.SwordMetrics
	apiKey     string
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithMetrics records backing request metrics.
func WithMetrics(m *metrics.SwordMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a router client.
func NewClient(config Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(config.APIURL) == "" {
		return nil, errors.Newf("router API URL is required").
			Component(componentName).
			Category(errors.CategoryConfiguration).
			Build()
	}
	parsed, err := url.Parse(config.APIURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, errors.Newf("invalid router API URL %q", config.APIURL).
			Component(componentName).
			Category(errors.CategoryConfiguration).
			Build()
	}

	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if config.UserAgent == "" {
		config.UserAgent = defaultUserAgent
	}

	c := &Client{
		baseURL: strings.TrimRight(config.APIURL, "/"),
		timeout: config.Timeout,
		httpClient: httpclient.New(&httpclient.Config{
			DefaultTimeout: config.Timeout,
			UserAgent:      config.UserAgent,
			Transport:      config.Transport,
		}),
		log: logger.NewDiscardLogger(),
	}

	if config.RateLimit > 0 {
		burst := max(config.RateBurst, 1)
		c.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), burst)
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// ForKey returns a client that forwards apiKey on every call.
func (c *Client) ForKey(apiKey string) *Client {
	clone := *c
	clone.apiKey = apiKey
	return &clone
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.Close()
}

// GetNotification fetches a notification by id.
// It returns an error wrapping ErrNotFound when the router does not know the id.
func (c *Client) GetNotification(ctx context.Context, id string) (*Notification, error) {
	endpoint := c.endpoint("notification/" + url.PathEscape(id))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, c.requestError(err, metrics.OpBackingGet)
	}
	req.Header.Set("Accept", "application/json")

	status, body, err := c.doRequest(ctx, metrics.OpBackingGet, req)
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, c.statusError(metrics.OpBackingGet, status, fmt.Errorf("%w: %s", ErrNotFound, id))
	default:
		return nil, c.statusError(metrics.OpBackingGet, status, c.classify(status, body))
	}

	var n Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, errors.Newf("failed to decode notification %s: %w", id, err).
			Component(componentName).
			Category(errors.CategoryFileParsing).
			Context("operation", metrics.OpBackingGet).
			Build()
	}
	if n.ID == "" {
		n.ID = id
	}

	return &n, nil
}

// Validate asks the router to validate a deposit without storing it.
func (c *Client) Validate(ctx context.Context, deposit *Deposit) error {
	status, body, err := c.postDeposit(ctx, metrics.OpBackingValidate, "validate", deposit)
	if err != nil {
		return err
	}

	switch status {
	case http.StatusOK, http.StatusNoContent:
		return nil
	default:
		return c.statusError(metrics.OpBackingValidate, status, c.classify(status, body))
	}
}

// CreateNotification submits a deposit as a new notification.
func (c *Client) CreateNotification(ctx context.Context, deposit *Deposit) (*CreateResult, error) {
	status, body, err := c.postDeposit(ctx, metrics.OpBackingCreate, "notification", deposit)
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
	default:
		return nil, c.statusError(metrics.OpBackingCreate, status, c.classify(status, body))
	}

	obj, err := jason.NewObjectFromBytes(body)
	if err != nil {
		return nil, errors.Newf("failed to decode create response: %w", err).
			Component(componentName).
			Category(errors.CategoryFileParsing).
			Context("operation", metrics.OpBackingCreate).
			Build()
	}

	id, err := obj.GetString("id")
	if err != nil || id == "" {
		return nil, errors.Newf("create response carries no notification id").
			Component(componentName).
			Category(errors.CategoryProtocol).
			Context("operation", metrics.OpBackingCreate).
			Build()
	}
	location, _ := obj.GetString("location")

	return &CreateResult{ID: id, Location: location}, nil
}

// Ping checks that the router API base URL answers at all.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.httpClient.Get(ctx, c.baseURL+"/")
	if err != nil {
		return errors.NetworkError(err, c.baseURL, c.timeout)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode >= http.StatusInternalServerError {
		return errors.New(&StatusError{StatusCode: resp.StatusCode}).
			Component(componentName).
			Category(errors.CategoryIntegration).
			Build()
	}
	return nil
}

func (c *Client) postDeposit(ctx context.Context, operation, path string, deposit *Deposit) (int, []byte, error) {
	if deposit == nil || deposit.Content == nil {
		return 0, nil, errors.Newf("deposit has no content").
			Component(componentName).
			Category(errors.CategoryValidation).
			Context("operation", operation).
			Build()
	}

	metadata, err := depositMetadata(deposit)
	if err != nil {
		return 0, nil, c.requestError(err, operation)
	}

	// The package is piped straight from the depositor to the router. The
	// deferred close unblocks the encoder when the body was never read to
	// the end, for example when the rate limit wait is aborted.
	body, bodyWriter := io.Pipe()
	mw := multipart.NewWriter(bodyWriter)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = bodyWriter.CloseWithError(encodeDeposit(mw, metadata, deposit))
	}()
	defer func() {
		_ = body.Close()
		<-done
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), body)
	if err != nil {
		return 0, nil, c.requestError(err, operation)
	}
	req.ContentLength = -1
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	return c.doRequest(ctx, operation, req)
}

// depositMetadata is the JSON metadata part describing the package.
func depositMetadata(deposit *Deposit) ([]byte, error) {
	metadata := map[string]any{
		"content": map[string]string{"packaging_format": deposit.Packaging},
	}
	if deposit.OnBehalfOf != "" {
		metadata["provider"] = map[string]string{"agent": deposit.OnBehalfOf}
	}
	return json.Marshal(metadata)
}

// encodeDeposit writes the multipart body: the metadata part, then the
// package itself.
func encodeDeposit(w *multipart.Writer, metadata []byte, deposit *Deposit) error {
	metaHeader := make(textproto.MIMEHeader)
	metaHeader.Set("Content-Disposition", `form-data; name="metadata"; filename="metadata.json"`)
	metaHeader.Set("Content-Type", "application/json")
	part, err := w.CreatePart(metaHeader)
	if err != nil {
		return err
	}
	if _, err := part.Write(metadata); err != nil {
		return err
	}

	filename := deposit.Filename
	if filename == "" {
		filename = defaultFilename
	}
	contentType := deposit.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	contentHeader := make(textproto.MIMEHeader)
	contentHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="content"; filename=%q`, filename))
	contentHeader.Set("Content-Type", contentType)
	part, err = w.CreatePart(contentHeader)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, deposit.Content); err != nil {
		return err
	}

	return w.Close()
}

// doRequest applies the rate limit, sends req and reads the whole body.
func (c *Client) doRequest(ctx context.Context, operation string, req *http.Request) (int, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, errors.Newf("router rate limit wait aborted: %w", err).
				Component(componentName).
				Category(errors.CategoryLimit).
				Context("operation", operation).
				Build()
		}
	}

	if c.apiKey != "" {
		q := req.URL.Query()
		q.Set("api_key", c.apiKey)
		req.URL.RawQuery = q.Encode()
	}

	redactedURL := logger.RedactSensitiveData(req.URL.String())
	start := time.Now()

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		// url.Error embeds the full request URL, api key included
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = redactedURL
		}
		c.metrics.RecordBackingRequest(operation, metrics.OutcomeError, time.Since(start))
		c.log.Warn("router request failed",
			logger.String("operation", operation),
			logger.String("url", redactedURL),
			logger.Error(err))
		return 0, nil, errors.Newf("router request failed: %w", err).
			Component(componentName).
			Category(errors.CategoryNetwork).
			Context("operation", operation).
			NetworkContext(redactedURL, c.timeout).
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	c.metrics.RecordBackingRequest(operation, strconv.Itoa(resp.StatusCode), elapsed)

	if err != nil {
		return 0, nil, errors.Newf("failed to read router response: %w", err).
			Component(componentName).
			Category(errors.CategoryNetwork).
			Context("operation", operation).
			Context("status_code", resp.StatusCode).
			Build()
	}

	c.log.Debug("router request",
		logger.String("operation", operation),
		logger.String("method", req.Method),
		logger.String("url", redactedURL),
		logger.Int("status", resp.StatusCode),
		logger.Duration("elapsed", elapsed))

	return resp.StatusCode, body, nil
}

// classify turns a non-success router response into the matching error value.
func (c *Client) classify(status int, body []byte) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusBadRequest:
		return &ValidationError{StatusCode: status, Message: errorMessage(body)}
	default:
		return &StatusError{StatusCode: status, Body: truncate(string(body))}
	}
}

func (c *Client) statusError(operation string, status int, err error) error {
	return errors.New(err).
		Component(componentName).
		Category(getErrorCategory(status)).
		Context("operation", operation).
		Context("status_code", status).
		Build()
}

func (c *Client) requestError(err error, operation string) error {
	return errors.Newf("failed to build router request: %w", err).
		Component(componentName).
		Category(errors.CategoryHTTP).
		Context("operation", operation).
		Build()
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + "/" + path
}

// errorMessage extracts the router's "error" field, falling back to the raw body.
func errorMessage(body []byte) string {
	if obj, err := jason.NewObjectFromBytes(body); err == nil {
		if msg, err := obj.GetString("error"); err == nil && msg != "" {
			return msg
		}
	}
	return truncate(strings.TrimSpace(string(body)))
}

func truncate(s string) string {
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}
