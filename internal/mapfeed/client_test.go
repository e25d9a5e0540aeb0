package mapfeed_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/runmate-app/runmate/internal/core/domain"
	"github.com/runmate-app/runmate/internal/mapfeed"
)

func TestClient_ExecuteBoxQuery(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"r1","title":"Fjord loop","location":{"lat":60.39,"lng":5.32}}]`))
	}))
	defer srv.Close()

	c := mapfeed.NewClient(srv.URL, time.Second)
	q, err := mapfeed.BuildBoxQuery(viewportAt(60.3913, 5.3221))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	runs, err := c.Execute(context.Background(), q)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if gotPath != "/v1/runs/box" {
		t.Errorf("path = %s, want /v1/runs/box", gotPath)
	}
	if gotQuery["limit"] != "100" {
		t.Errorf("client box path must cap at 100 rows, limit = %q", gotQuery["limit"])
	}
	for _, p := range []string{"latMin", "latMax", "lngMin", "lngMax"} {
		if gotQuery[p] == "" {
			t.Errorf("missing %s parameter", p)
		}
	}
	if len(runs) != 1 || runs[0].ID != "r1" {
		t.Fatalf("unexpected runs: %+v", runs)
	}
}

func TestClient_ExecuteRadiusQuery(t *testing.T) {
	var gotPath, gotRadius string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRadius = r.URL.Query().Get("radius")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := mapfeed.NewClient(srv.URL, time.Second)
	q, err := mapfeed.BuildRadiusQuery(viewportAt(60.3913, 5.3221), mapfeed.DefaultPadding)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if _, err := c.Execute(context.Background(), q); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if gotPath != "/v1/runs/nearby" {
		t.Errorf("path = %s, want /v1/runs/nearby", gotPath)
	}
	if gotRadius != "4163" { // round((0.05/2) * 111000 * 1.5)
		t.Errorf("radius = %s, want 4163", gotRadius)
	}
}

func TestClient_RemoteQueryError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Invalid query", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := mapfeed.NewClient(srv.URL, time.Second)
	q, _ := mapfeed.BuildBoxQuery(viewportAt(60.0, 5.0))

	_, err := c.Execute(context.Background(), q)
	var remoteErr *mapfeed.RemoteQueryError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteQueryError, got %v", err)
	}
	if remoteErr.Status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", remoteErr.Status)
	}
}

func TestClient_NetworkError(t *testing.T) {
	// Nothing listens here.
	c := mapfeed.NewClient("http://127.0.0.1:1", 200*time.Millisecond)
	q, _ := mapfeed.BuildBoxQuery(viewportAt(60.0, 5.0))

	_, err := c.Execute(context.Background(), q)
	var netErr *mapfeed.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestClient_DropsMalformedRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// Second record is missing its id, third has an impossible latitude.
		_, _ = w.Write([]byte(`[
			{"id":"ok","title":"good","location":{"lat":60.39,"lng":5.32}},
			{"title":"no id","location":{"lat":60.4,"lng":5.3}},
			{"id":"bad","title":"off the globe","location":{"lat":912.0,"lng":5.3}}
		]`))
	}))
	defer srv.Close()

	c := mapfeed.NewClient(srv.URL, time.Second)
	q, _ := mapfeed.BuildBoxQuery(viewportAt(60.39, 5.32))

	runs, err := c.Execute(context.Background(), q)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "ok" {
		t.Fatalf("expected only the valid record, got %+v", runs)
	}
}

func TestSubmitter_SubmitRun(t *testing.T) {
	var gotAuth string
	var gotBody domain.NewRun
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = jsonDecode(r, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"new-run","title":"Sunrise Sprint","location":{"lat":60.39,"lng":5.32}}`))
	}))
	defer srv.Close()

	s := mapfeed.NewSubmitter(srv.URL, time.Second)
	sess := mapfeed.Session{UserID: "user-1", AccessToken: "tok"}
	form := domain.NewRun{
		Title:      "Sunrise Sprint",
		Location:   domain.GeoPoint{Lat: 60.39, Lng: 5.32},
		DistanceKm: 8,
		StartTime:  time.Now().Add(24 * time.Hour),
	}

	created, err := s.SubmitRun(context.Background(), sess, form)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if created.ID != "new-run" {
		t.Errorf("id = %s, want new-run", created.ID)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotBody.CreatedBy != "user-1" {
		t.Errorf("created_by should come from the session, got %q", gotBody.CreatedBy)
	}
}

func TestSubmitter_ValidatesBeforeSending(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	s := mapfeed.NewSubmitter(srv.URL, time.Second)
	sess := mapfeed.Session{UserID: "user-1"}

	cases := []domain.NewRun{
		{Location: domain.GeoPoint{Lat: 60, Lng: 5}, DistanceKm: 5},           // no title
		{Title: "x", Location: domain.GeoPoint{Lat: 200, Lng: 5}, DistanceKm: 5}, // bad location
		{Title: "x", Location: domain.GeoPoint{Lat: 60, Lng: 5}},                 // no distance
	}
	for i, form := range cases {
		if _, err := s.SubmitRun(context.Background(), sess, form); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
	if requests != 0 {
		t.Errorf("invalid forms must not reach the network, saw %d requests", requests)
	}
}

func TestSubmitter_SurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := mapfeed.NewSubmitter(srv.URL, time.Second)
	form := domain.NewRun{
		Title:      "Evening loop",
		Location:   domain.GeoPoint{Lat: 60.39, Lng: 5.32},
		DistanceKm: 5,
	}

	_, err := s.SubmitRun(context.Background(), mapfeed.Session{UserID: "u"}, form)
	var remoteErr *mapfeed.RemoteQueryError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("write-path failure must surface, got %v", err)
	}
}

func jsonDecode(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
