// Seeds a development database with profiles and runs scattered around a
// city center, so the map has something to show.
//
//	seed [count] [centerLat] [centerLng]
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/runmate-app/runmate/internal/pkg/config"
	"github.com/runmate-app/runmate/internal/pkg/geospatial"
)

var titles = []string{
	"Morning loop", "Tempo Tuesday", "Long slow distance", "Hill repeats",
	"Track intervals", "Easy recovery jog", "River path run", "Park shakeout",
	"Sunset 10k", "Weekend trail run",
}

var usernames = []string{
	"kari", "ola", "ingrid", "lars", "silje", "magnus", "anne", "erik",
}

func main() {
	cfg, err := config.Load("runmate-seed")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	count := 200
	centerLat, centerLng := 60.3913, 5.3221 // Bergen
	if len(os.Args) > 1 {
		if n, err := strconv.Atoi(os.Args[1]); err == nil && n > 0 {
			count = n
		}
	}
	if len(os.Args) > 3 {
		if lat, err := strconv.ParseFloat(os.Args[2], 64); err == nil {
			centerLat = lat
		}
		if lng, err := strconv.ParseFloat(os.Args[3], 64); err == nil {
			centerLng = lng
		}
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	// Profiles first; runs reference their creators.
	profileIDs := make([]string, len(usernames))
	batch := &pgx.Batch{}
	for i, name := range usernames {
		profileIDs[i] = uuid.NewString()
		batch.Queue(`
			INSERT INTO profiles (id, username, full_name, created_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (username) DO NOTHING
		`, profileIDs[i], name, name+" runner")
	}
	if err := pool.SendBatch(ctx, batch).Close(); err != nil {
		log.Fatalf("seed profiles: %v", err)
	}

	// Scatter runs inside a ~10km box around the center.
	minLat, minLng, maxLat, maxLng := geospatial.BoundingBox(centerLat, centerLng, 5000)

	batch = &pgx.Batch{}
	for i := 0; i < count; i++ {
		lat := minLat + rng.Float64()*(maxLat-minLat)
		lng := minLng + rng.Float64()*(maxLng-minLng)
		start := time.Now().Add(time.Duration(rng.Intn(14*24)) * time.Hour)
		dist := 3 + rng.Float64()*18
		pace := 4 + rng.Float64()*3

		batch.Queue(`
			INSERT INTO runs (id, title, lat, lng, distance_km, pace_min_km, start_time, created_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		`, uuid.NewString(), titles[rng.Intn(len(titles))], lat, lng,
			dist, pace, start, profileIDs[rng.Intn(len(profileIDs))])
	}
	if err := pool.SendBatch(ctx, batch).Close(); err != nil {
		log.Fatalf("seed runs: %v", err)
	}

	fmt.Printf("seeded %d runs around (%.4f, %.4f) for %d profiles\n",
		count, centerLat, centerLng, len(usernames))
}
