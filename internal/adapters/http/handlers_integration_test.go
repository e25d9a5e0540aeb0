//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	handler "github.com/runmate-app/runmate/internal/adapters/http"
	"github.com/runmate-app/runmate/internal/adapters/postgres"
	"github.com/runmate-app/runmate/internal/core/domain"
	"github.com/runmate-app/runmate/internal/core/usecases"
	"github.com/runmate-app/runmate/internal/pkg/config"
)

// setupTestDB connects to the test database and returns a clean DB instance.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("runmate-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}

	db := &postgres.DB{Pool: pool}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("ping db: %v", err)
	}

	return db
}

// setupTestDeps creates dependencies with real DB and repos, no cache.
func setupTestDeps(t *testing.T, db *postgres.DB) *handler.Dependencies {
	runRepo := postgres.NewRunRepo(db)
	profileRepo := postgres.NewProfileRepo(db)

	return &handler.Dependencies{
		Runs:     usecases.NewRunService(runRepo, nil, nil),
		Profiles: usecases.NewProfileService(profileRepo, nil),
		DB:       db,
	}
}

// seedTestProfile inserts a test profile and returns its ID.
func seedTestProfile(t *testing.T, db *postgres.DB, username string) string {
	ctx := context.Background()
	id := uuid.NewString()
	if err := db.Pool.QueryRow(ctx, `
		INSERT INTO profiles (id, username)
		VALUES ($1, $2)
		ON CONFLICT (username) DO UPDATE SET username = EXCLUDED.username
		RETURNING id
	`, id, username).Scan(&id); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return id
}

// seedTestRun inserts a test run at the given location and returns its ID.
func seedTestRun(t *testing.T, db *postgres.DB, createdBy string, lat, lng float64) string {
	ctx := context.Background()
	id := uuid.NewString()
	if _, err := db.Pool.Exec(ctx, `
		INSERT INTO runs (id, title, lat, lng, distance_km, start_time, created_by)
		VALUES ($1, 'Integration run', $2, $3, 5, now() + interval '1 day', $4)
	`, id, lat, lng, createdBy); err != nil {
		t.Fatalf("seed run: %v", err)
	}
	return id
}

// TestRunsInBox_Integration tests the bounding-box query against a real database.
func TestRunsInBox_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	creator := seedTestProfile(t, db, "test_box_runner")
	inside := seedTestRun(t, db, creator, 60.40, 5.32)
	seedTestRun(t, db, creator, 10.0, 10.0) // far outside the box

	deps := setupTestDeps(t, db)
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/runs-in-box?latMin=60.3&latMax=60.5&lngMin=5.2&lngMax=5.4", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var runs []domain.Run
	if err := json.NewDecoder(resp.Body).Decode(&runs); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	found := false
	for _, r := range runs {
		if r.ID == inside {
			found = true
		}
		if r.Location.Lat < 60.3 || r.Location.Lat > 60.5 {
			t.Errorf("run %s outside requested box: %+v", r.ID, r.Location)
		}
	}
	if !found {
		t.Error("expected seeded run inside the box to be returned")
	}
}

// TestNearbyRuns_Integration tests the radius query and distance computation.
func TestNearbyRuns_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	creator := seedTestProfile(t, db, "test_nearby_runner")
	// ~1.1km north of the query center
	seedTestRun(t, db, creator, 60.40, 5.32)

	deps := setupTestDeps(t, db)
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/runs/nearby?lat=60.39&lng=5.32&radius=5000", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var runs []domain.Run
	if err := json.NewDecoder(resp.Body).Decode(&runs); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(runs) == 0 {
		t.Fatal("expected at least one nearby run")
	}
	for _, r := range runs {
		if r.DistanceM == nil {
			t.Errorf("run %s missing distance_m", r.ID)
		} else if *r.DistanceM > 5000 {
			t.Errorf("run %s outside radius: %.1fm", r.ID, *r.DistanceM)
		}
	}
}

// TestCreateAndGetRun_Integration exercises the write path end to end.
func TestCreateAndGetRun_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	creator := seedTestProfile(t, db, "test_create_runner")

	deps := setupTestDeps(t, db)
	app := setupApp(deps)

	body := `{"title":"E2E run","location":{"lat":60.39,"lng":5.32},"distance_km":7,` +
		`"start_time":"` + time.Now().Add(24*time.Hour).Format(time.RFC3339) + `","created_by":"` + creator + `"}`
	req := httptest.NewRequest("POST", "/v1/runs", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var created domain.Run
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	req = httptest.NewRequest("GET", "/v1/runs/"+created.ID, nil)
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var fetched domain.RunWithCreator
	if err := json.NewDecoder(resp.Body).Decode(&fetched); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if fetched.Title != "E2E run" {
		t.Errorf("expected title round-tripped, got %q", fetched.Title)
	}
	if fetched.Creator == nil || fetched.Creator.ID != creator {
		t.Errorf("expected creator joined, got %+v", fetched.Creator)
	}
}
