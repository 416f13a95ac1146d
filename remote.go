package follicle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"
)

// Remote submits candidates to the real inference backend over HTTP.
// Transport failures never reach the caller raw: they are logged and
// translated to the single domain-level ErrAnalysisFailed, or to the
// backend's own user-facing message when it supplies one. No retries are
// performed here; resubmission is the caller's decision.
type Remote struct {
	base   string
	client *http.Client
	log    *slog.Logger
}

// NewRemote returns a backend client for cfg.BaseURL with cfg.Timeout as
// the per-request upper bound.
func NewRemote(cfg Config, log *slog.Logger) *Remote {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Remote{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
}

// Analyze implements Backend: a multipart submission carrying the image,
// the consent flag, and a client timestamp in Unix milliseconds.
func (r *Remote) Analyze(ctx context.Context, c Candidate, consent bool) (*Response, error) {
	if !consent {
		return nil, ErrConsentRequired
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, c.Filename))
	hdr.Set("Content-Type", c.MediaType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return nil, fmt.Errorf("follicle: multipart: %w", err)
	}
	if _, err := part.Write(c.Data); err != nil {
		return nil, fmt.Errorf("follicle: multipart: %w", err)
	}
	if err := mw.WriteField("user_consent", strconv.FormatBool(consent)); err != nil {
		return nil, fmt.Errorf("follicle: multipart: %w", err)
	}
	if err := mw.WriteField("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10)); err != nil {
		return nil, fmt.Errorf("follicle: multipart: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("follicle: multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.base+"/analyze", &body)
	if err != nil {
		return nil, fmt.Errorf("follicle: request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.log.Debug("backend call failed", "err", err)
		return nil, ErrAnalysisFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, r.failure(resp)
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		r.log.Debug("backend response undecodable", "err", err)
		return nil, ErrAnalysisFailed
	}
	return &out, nil
}

// Health implements Backend: a no-payload probe whose only contract is
// success or failure.
func (r *Remote) Health(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.base+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}

// failure translates a non-2xx response. A backend-supplied error message
// is passed through as a BackendError; anything else collapses to
// ErrAnalysisFailed.
func (r *Remote) failure(resp *http.Response) error {
	r.log.Debug("backend rejected request", "status", resp.StatusCode)

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&payload); err == nil && payload.Error != "" {
		return &BackendError{Message: payload.Error}
	}
	return ErrAnalysisFailed
}
