package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/samirrijal/crewmap/internal/adapters/postgres"
	"github.com/samirrijal/crewmap/internal/core/domain"
	"github.com/samirrijal/crewmap/internal/pkg/config"
	"github.com/samirrijal/crewmap/internal/pkg/logging"
)

// manifest is the import file layout. Jobs and events may point at a location
// from the same file by name instead of by id.
type manifest struct {
	Locations []domain.Location `json:"locations"`
	Jobs      []struct {
		domain.Job
		LocationName string `json:"location_name"`
	} `json:"jobs"`
	Events []struct {
		domain.Event
		LocationName string `json:"location_name"`
	} `json:"events"`
}

func main() {
	path := "manifest.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	cfg, err := config.Load("crewmap-importer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	m, err := readManifest(path)
	if err != nil {
		log.Fatalf("manifest: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	start := time.Now()

	if err := postgres.NewLocationRepo(db).SaveBatch(ctx, m.Locations); err != nil {
		log.Fatalf("locations: %v", err)
	}
	byName := make(map[string]string, len(m.Locations))
	for _, l := range m.Locations {
		byName[l.Name] = l.ID
	}

	jobs := make([]domain.Job, 0, len(m.Jobs))
	for _, j := range m.Jobs {
		if err := resolveLocation(&j.Job.LocationID, j.LocationName, byName); err != nil {
			log.Fatalf("job %q: %v", j.Title, err)
		}
		jobs = append(jobs, j.Job)
	}
	events := make([]domain.Event, 0, len(m.Events))
	for _, e := range m.Events {
		if err := resolveLocation(&e.Event.LocationID, e.LocationName, byName); err != nil {
			log.Fatalf("event %q: %v", e.Title, err)
		}
		events = append(events, e.Event)
	}

	if err := postgres.NewJobRepo(db).SaveBatch(ctx, jobs); err != nil {
		log.Fatalf("jobs: %v", err)
	}
	if err := postgres.NewEventRepo(db).SaveBatch(ctx, events); err != nil {
		log.Fatalf("events: %v", err)
	}

	slog.Info("import complete",
		"locations", len(m.Locations),
		"jobs", len(jobs),
		"events", len(events),
		"duration", time.Since(start).String(),
	)
}

func readManifest(path string) (*manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	// Reject the whole file before touching the database.
	var problems []error
	for i := range m.Locations {
		if err := m.Locations[i].Validate(); err != nil {
			problems = append(problems, err)
		}
	}
	for i := range m.Jobs {
		if err := m.Jobs[i].Job.Validate(); err != nil {
			problems = append(problems, err)
		}
	}
	for i := range m.Events {
		if err := m.Events[i].Event.Validate(); err != nil {
			problems = append(problems, err)
		}
	}
	if len(problems) > 0 {
		return nil, errors.Join(problems...)
	}
	return &m, nil
}

func resolveLocation(id *string, name string, byName map[string]string) error {
	if name == "" || *id != "" {
		return nil
	}
	ref, ok := byName[name]
	if !ok {
		return errors.New("unknown location " + name)
	}
	*id = ref
	return nil
}
