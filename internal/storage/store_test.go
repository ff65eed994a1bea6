package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"spikejump/internal/model"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	memory := NewMemoryStore()
	if err := memory.Init(ctx); err != nil {
		t.Fatalf("init memory: %v", err)
	}
	sqlite := NewSQLiteStore(filepath.Join(t.TempDir(), "spikejump.db"))
	if err := sqlite.Init(ctx); err != nil {
		t.Fatalf("init sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlite.Close()
	})
	return map[string]Store{"memory": memory, "sqlite": sqlite}
}

func sessionRecord(id, runID string, iteration, highScore int, at time.Time) model.SessionRecord {
	return model.SessionRecord{
		VersionedRecord: Versioned(),
		ID:              id,
		RunID:           runID,
		Iteration:       iteration,
		Seed:            int64(iteration),
		LaneWidth:       1500,
		LaneHeight:      300,
		ObstacleCount:   5,
		RosterSize:      2,
		HighScore:       highScore,
		Ticks:           highScore + 1,
		Agents: []model.AgentResult{
			{AgentID: "a-0", GenomeID: "g-0", Fitness: 1.5, Score: highScore, EliminatedAtTick: highScore + 1},
		},
		CreatedAt: at,
	}
}

func TestStoreGenomeRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range openStores(t) {
		genome := model.Genome{
			VersionedRecord: Versioned(),
			ID:              "g1",
			Neurons:         []model.Neuron{{ID: "n1", Activation: "identity", Bias: 0.5}},
			Synapses:        []model.Synapse{{ID: "s1", From: "n1", To: "n1", Weight: 1.25, Enabled: true}},
			SensorIDs:       []string{"spike_jump_distance"},
		}
		if err := store.SaveGenome(ctx, genome); err != nil {
			t.Fatalf("%s: save genome: %v", name, err)
		}
		loaded, ok, err := store.GetGenome(ctx, "g1")
		if err != nil || !ok {
			t.Fatalf("%s: get genome: ok=%t err=%v", name, ok, err)
		}
		if loaded.ID != "g1" || len(loaded.Synapses) != 1 || loaded.Synapses[0].Weight != 1.25 {
			t.Fatalf("%s: unexpected genome: %+v", name, loaded)
		}
		if _, ok, err := store.GetGenome(ctx, "missing"); ok || err != nil {
			t.Fatalf("%s: expected missing genome, ok=%t err=%v", name, ok, err)
		}
	}
}

func TestStoreSessionRecordsByRun(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for name, store := range openStores(t) {
		records := []model.SessionRecord{
			sessionRecord("s3", "run-a", 2, 40, base.Add(2*time.Second)),
			sessionRecord("s1", "run-a", 0, 30, base),
			sessionRecord("s2", "run-a", 1, 55, base.Add(time.Second)),
			sessionRecord("x1", "run-b", 0, 12, base.Add(time.Second)),
		}
		for _, r := range records {
			if err := store.SaveSessionRecord(ctx, r); err != nil {
				t.Fatalf("%s: save session %s: %v", name, r.ID, err)
			}
		}

		runA, err := store.ListSessionRecords(ctx, "run-a")
		if err != nil {
			t.Fatalf("%s: list run-a: %v", name, err)
		}
		if len(runA) != 3 || runA[0].ID != "s1" || runA[1].ID != "s2" || runA[2].ID != "s3" {
			t.Fatalf("%s: unexpected run-a order: %+v", name, runA)
		}
		if !runA[0].CreatedAt.Equal(base) || len(runA[0].Agents) != 1 || runA[0].Agents[0].Score != 30 {
			t.Fatalf("%s: unexpected decoded record: %+v", name, runA[0])
		}

		all, err := store.ListSessionRecords(ctx, "")
		if err != nil {
			t.Fatalf("%s: list all: %v", name, err)
		}
		if len(all) != 4 {
			t.Fatalf("%s: expected 4 records, got %d", name, len(all))
		}

		got, ok, err := store.GetSessionRecord(ctx, "x1")
		if err != nil || !ok || got.RunID != "run-b" || got.HighScore != 12 {
			t.Fatalf("%s: unexpected session lookup: ok=%t err=%v rec=%+v", name, ok, err, got)
		}
	}
}

func TestStoreScapeSummaryRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range openStores(t) {
		summary := model.ScapeSummary{
			VersionedRecord: Versioned(),
			Name:            "spike-jump",
			Description:     "best session",
			BestFitness:     4.25,
			BestHighScore:   120,
			BestSessionID:   "s2",
		}
		if err := store.SaveScapeSummary(ctx, summary); err != nil {
			t.Fatalf("%s: save summary: %v", name, err)
		}
		summary.BestHighScore = 130
		if err := store.SaveScapeSummary(ctx, summary); err != nil {
			t.Fatalf("%s: overwrite summary: %v", name, err)
		}
		loaded, ok, err := store.GetScapeSummary(ctx, "spike-jump")
		if err != nil || !ok {
			t.Fatalf("%s: get summary: ok=%t err=%v", name, ok, err)
		}
		if loaded.BestHighScore != 130 || loaded.BestSessionID != "s2" {
			t.Fatalf("%s: unexpected summary: %+v", name, loaded)
		}
	}
}

func TestStoreRejectsVersionMismatch(t *testing.T) {
	ctx := context.Background()
	for name, store := range openStores(t) {
		record := sessionRecord("old", "run", 0, 1, time.Now())
		record.SchemaVersion = CurrentSchemaVersion + 1
		if err := store.SaveSessionRecord(ctx, record); !errors.Is(err, ErrVersionMismatch) {
			t.Fatalf("%s: expected ErrVersionMismatch, got %v", name, err)
		}
		if err := store.SaveGenome(ctx, model.Genome{ID: "unversioned"}); !errors.Is(err, ErrVersionMismatch) {
			t.Fatalf("%s: expected ErrVersionMismatch for genome, got %v", name, err)
		}
	}
}

func TestStoresRequireInit(t *testing.T) {
	ctx := context.Background()
	if err := NewMemoryStore().SaveGenome(ctx, model.Genome{VersionedRecord: Versioned()}); err == nil {
		t.Fatal("expected memory store to require init")
	}
	sqlite := NewSQLiteStore(filepath.Join(t.TempDir(), "x.db"))
	if _, err := sqlite.ListSessionRecords(ctx, ""); err == nil {
		t.Fatal("expected sqlite store to require init")
	}
	if err := NewSQLiteStore("").Init(ctx); err == nil {
		t.Fatal("expected sqlite path validation")
	}
}

func TestDecodeRejectsVersionMismatch(t *testing.T) {
	payload, err := EncodeScapeSummary(model.ScapeSummary{Name: "spike-jump"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeScapeSummary(payload); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
	if _, err := DecodeSessionRecord([]byte("{")); err == nil {
		t.Fatal("expected malformed payload error")
	}
}
