package mapfeed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/runmate-app/runmate/internal/core/domain"
)

// Session is the identity handed to write paths. Query clients and the
// merger never see it; only submissions need to know who the user is.
type Session struct {
	UserID      string
	AccessToken string
}

// Submitter posts new runs to the API. Unlike the browsing paths, a failed
// submission is surfaced to the caller so the user learns their run was not
// saved.
type Submitter struct {
	baseURL string
	http    *http.Client
}

// NewSubmitter creates a Submitter for the given API base URL.
func NewSubmitter(baseURL string, timeout time.Duration) *Submitter {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Submitter{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

// SubmitRun validates the form locally, then posts it. Each step either
// succeeds or returns a typed error; nothing fails silently.
func (s *Submitter) SubmitRun(ctx context.Context, sess Session, form domain.NewRun) (*domain.Run, error) {
	if sess.UserID == "" {
		return nil, fmt.Errorf("no active session")
	}
	if strings.TrimSpace(form.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}
	if !form.Location.Valid() {
		return nil, fmt.Errorf("pick a location on the map")
	}
	if form.DistanceKm <= 0 {
		return nil, fmt.Errorf("pick a distance")
	}
	form.CreatedBy = sess.UserID

	body, err := json.Marshal(form)
	if err != nil {
		return nil, fmt.Errorf("encode run: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/runs", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if sess.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+sess.AccessToken)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &RemoteQueryError{Status: resp.StatusCode, Message: string(msg)}
	}

	var run domain.Run
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		return nil, fmt.Errorf("decode created run: %w", err)
	}
	return &run, nil
}
