package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/daryltucker/qr-bench/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func row(runID, bg, bc string, box int, level model.ECLevel) model.Result {
	return model.Result{
		RunID:     runID,
		Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Params: model.Params{
			Background:  bg,
			BorderColor: bc,
			BoxSize:     box,
			ECLevel:     level,
			Quality:     50,
			Size:        model.Size{Width: 800, Height: 200},
			Preprocess:  true,
		},
		Iterations:    10,
		Successes:     7,
		TotalReadTime: 250 * time.Millisecond,
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "newdir", "subdir")
		s, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer s.Close()

		if _, err := os.Stat(filepath.Join(dir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if s.Path() != filepath.Join(dir, FileName) {
			t.Errorf("unexpected path %s", s.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{})
		if err == nil {
			t.Error("expected error for missing database")
		}
	})
}

func TestRunsAndResults(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("stores rows and regroups them by background and border color", func(t *testing.T) {
		t.Parallel()
		s := setupTestDB(t)

		run := model.Run{ID: "run-a", StartedAt: time.Now(), Seed: ^uint64(0), Config: "iterations: 10\n"}
		if err := s.SaveRun(ctx, run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		inputs := []model.Result{
			row("run-a", "builtin:white", "#AA336A", 3, model.ECLevelL),
			row("run-a", "builtin:white", "#AA336A", 4, model.ECLevelH),
			row("run-a", "builtin:black", "#AA336A", 3, model.ECLevelL),
		}
		for _, r := range inputs {
			if err := s.Write(r); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		groups, err := s.Results(ctx, "run-a")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(groups) != 2 {
			t.Fatalf("expected 2 groups, got %d", len(groups))
		}
		if len(groups[0].Rows) != 2 || len(groups[1].Rows) != 1 {
			t.Errorf("unexpected group sizes %d/%d", len(groups[0].Rows), len(groups[1].Rows))
		}
		got := groups[0].Rows[1]
		if got.ECLevel != model.ECLevelH || got.Size != (model.Size{Width: 800, Height: 200}) || !got.Preprocess {
			t.Errorf("row did not round trip: %+v", got)
		}
		if got.TotalReadTime != 250*time.Millisecond || got.AvgReadTime() != 25*time.Millisecond {
			t.Errorf("expected read time to round trip, got %v", got.TotalReadTime)
		}
		if !got.Timestamp.Equal(inputs[1].Timestamp) {
			t.Errorf("expected timestamp %v, got %v", inputs[1].Timestamp, got.Timestamp)
		}

		runs, err := s.ListRuns(ctx, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(runs) != 1 || runs[0].Rows != 3 {
			t.Fatalf("expected one run with 3 rows, got %+v", runs)
		}
		if runs[0].Seed != ^uint64(0) {
			t.Errorf("expected seed to survive the signed column, got %d", runs[0].Seed)
		}
		if runs[0].Config != run.Config {
			t.Errorf("expected config snapshot, got %q", runs[0].Config)
		}
	})

	t.Run("lists newest runs first and honours the limit", func(t *testing.T) {
		t.Parallel()
		s := setupTestDB(t)

		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		for i, id := range []string{"old", "mid", "new"} {
			run := model.Run{ID: id, StartedAt: base.Add(time.Duration(i) * time.Hour), Seed: 1}
			if err := s.SaveRun(ctx, run); err != nil {
				t.Fatal(err)
			}
		}

		runs, err := s.ListRuns(ctx, 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(runs) != 2 || runs[0].ID != "new" || runs[1].ID != "mid" {
			t.Errorf("unexpected order %+v", runs)
		}
		if runs[0].Rows != 0 {
			t.Errorf("expected no rows, got %d", runs[0].Rows)
		}
	})

	t.Run("unknown run returns ErrRunNotFound", func(t *testing.T) {
		t.Parallel()
		s := setupTestDB(t)

		_, err := s.Results(ctx, "nope")
		if !errors.Is(err, ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("Run returns one stored run with its seed and config", func(t *testing.T) {
		t.Parallel()
		s := setupTestDB(t)

		started := time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC)
		want := model.Run{ID: "r-max", StartedAt: started, Seed: ^uint64(0), Config: "iterations: 3\n"}
		if err := s.SaveRun(ctx, want); err != nil {
			t.Fatal(err)
		}
		if err := s.SaveRun(ctx, model.Run{ID: "r-other", StartedAt: started, Seed: 1}); err != nil {
			t.Fatal(err)
		}

		got, err := s.Run(ctx, "r-max")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != want.ID || got.Seed != want.Seed || got.Config != want.Config {
			t.Errorf("expected %+v, got %+v", want, got)
		}
		if !got.StartedAt.Equal(started) {
			t.Errorf("expected start %v, got %v", started, got.StartedAt)
		}

		_, err = s.Run(ctx, "missing")
		if !errors.Is(err, ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("duplicate run id is rejected", func(t *testing.T) {
		t.Parallel()
		s := setupTestDB(t)

		run := model.Run{ID: "dup", StartedAt: time.Now()}
		if err := s.SaveRun(ctx, run); err != nil {
			t.Fatal(err)
		}
		if err := s.SaveRun(ctx, run); err == nil {
			t.Error("expected primary key violation")
		}
	})
}
