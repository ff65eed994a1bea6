package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"spikejump/internal/model"
	"spikejump/internal/platform"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// isolateEnv clears SPIKEJUMP_* overrides inherited from the caller.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "SPIKEJUMP_") {
			t.Setenv(key, "")
		}
	}
}

func TestVersionCmd(t *testing.T) {
	out, _, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, version) {
		t.Fatalf("expected version %q in output, got %q", version, out)
	}

	out, _, err = execute(t, "version", "--json")
	if err != nil {
		t.Fatalf("version --json: %v", err)
	}
	var payload map[string]string
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode version json: %v", err)
	}
	if payload["version"] != version {
		t.Fatalf("unexpected version payload: %+v", payload)
	}
}

func TestRunCmdPrintsSessions(t *testing.T) {
	isolateEnv(t)
	out, _, err := execute(t, "run",
		"--store", "memory",
		"--roster", "3",
		"--iterations", "2",
		"--max-ticks", "200",
		"--seed", "7",
		"--run-id", "cli-run",
		"--log-level", "error",
	)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(out, "run cli-run\n") {
		t.Fatalf("expected run header, got %q", out)
	}
	if strings.Count(out, "high score") != 3 {
		t.Fatalf("expected two session lines plus the best line, got %q", out)
	}
}

func TestRunCmdJSON(t *testing.T) {
	isolateEnv(t)
	out, _, err := execute(t, "run", "--json",
		"--roster", "2",
		"--max-ticks", "100",
		"--hidden", "2",
		"--morphology", "range",
		"--log-level", "error",
	)
	if err != nil {
		t.Fatalf("run --json: %v", err)
	}
	var result platform.RunResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode run json: %v\n%s", err, out)
	}
	if len(result.RunID) != 36 {
		t.Fatalf("expected generated uuid run id, got %q", result.RunID)
	}
	if len(result.Sessions) != 1 || result.Sessions[0].RosterSize != 2 {
		t.Fatalf("unexpected sessions: %+v", result.Sessions)
	}
	if result.Sessions[0].Ticks > 100 {
		t.Fatalf("expected tick cap of 100, got %d", result.Sessions[0].Ticks)
	}
}

func TestRunCmdLogsToStderr(t *testing.T) {
	isolateEnv(t)
	_, stderr, err := execute(t, "run", "--roster", "1", "--max-ticks", "10", "--log-level", "info")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stderr, "run finished") {
		t.Fatalf("expected run log on stderr, got %q", stderr)
	}
}

func TestRunCmdRejectsInvalidSettings(t *testing.T) {
	isolateEnv(t)
	tests := []struct {
		name string
		args []string
	}{
		{"zero obstacles", []string{"run", "--obstacles", "0"}},
		{"zero roster", []string{"run", "--roster", "0"}},
		{"negative ticks", []string{"run", "--max-ticks", "-1"}},
		{"zero iterations", []string{"run", "--iterations", "0"}},
		{"sqlite without path", []string{"run", "--store", "sqlite"}},
		{"unknown morphology", []string{"run", "--morphology", "sonar", "--max-ticks", "10"}},
		{"missing config file", []string{"run", "--config", "/nonexistent/spikejump.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := execute(t, tt.args...); err == nil {
				t.Fatalf("expected error for %v", tt.args)
			}
		})
	}
}

func TestRunCmdReadsConfigFile(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "spikejump.yaml")
	body := "roster_size: 4\nmax_ticks: 50\niterations: 3\nlogging:\n  level: error\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, _, err := execute(t, "run", "--config", path, "--json")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var result platform.RunResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode run json: %v", err)
	}
	if len(result.Sessions) != 3 {
		t.Fatalf("expected 3 sessions from config, got %d", len(result.Sessions))
	}
	for _, s := range result.Sessions {
		if s.RosterSize != 4 {
			t.Fatalf("expected roster 4 from config, got %d", s.RosterSize)
		}
	}
}

func TestSessionsAndBestReadSQLiteStore(t *testing.T) {
	isolateEnv(t)
	dbPath := filepath.Join(t.TempDir(), "spikejump.db")
	storeArgs := []string{"--store", "sqlite", "--store-path", dbPath, "--log-level", "error"}

	runArgs := append([]string{"run", "--roster", "2", "--iterations", "2", "--max-ticks", "150", "--run-id", "persisted"}, storeArgs...)
	if _, _, err := execute(t, runArgs...); err != nil {
		t.Fatalf("run: %v", err)
	}

	out, _, err := execute(t, append([]string{"sessions", "--run", "persisted", "--json"}, storeArgs...)...)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	var records []model.SessionRecord
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("decode sessions json: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 stored sessions, got %d", len(records))
	}
	if records[0].Iteration != 0 || records[1].Iteration != 1 {
		t.Fatalf("expected sessions in iteration order, got %d, %d", records[0].Iteration, records[1].Iteration)
	}

	out, _, err = execute(t, append([]string{"sessions", "--run", "other"}, storeArgs...)...)
	if err != nil {
		t.Fatalf("sessions other: %v", err)
	}
	if !strings.Contains(out, "no sessions recorded") {
		t.Fatalf("expected empty listing, got %q", out)
	}

	out, _, err = execute(t, append([]string{"best", "spikejump"}, storeArgs...)...)
	if err != nil {
		t.Fatalf("best: %v", err)
	}
	if !strings.HasPrefix(out, "spike-jump: best high score") {
		t.Fatalf("unexpected best output %q", out)
	}
	if !strings.Contains(out, "\nchampion persisted-i") || !strings.Contains(out, "sensors [spike_jump_distance spike_jump_velocity spike_jump_jumping]") {
		t.Fatalf("expected champion genome line, got %q", out)
	}

	genomeID := records[0].Agents[0].GenomeID
	out, _, err = execute(t, append([]string{"genome", genomeID, "--json"}, storeArgs...)...)
	if err != nil {
		t.Fatalf("genome: %v", err)
	}
	var genome model.Genome
	if err := json.Unmarshal([]byte(out), &genome); err != nil {
		t.Fatalf("decode genome json: %v", err)
	}
	if genome.ID != genomeID || len(genome.Neurons) == 0 || len(genome.Synapses) == 0 {
		t.Fatalf("unexpected stored genome: %+v", genome)
	}

	out, _, err = execute(t, append([]string{"genome", genomeID}, storeArgs...)...)
	if err != nil {
		t.Fatalf("genome text: %v", err)
	}
	if !strings.HasPrefix(out, genomeID+": ") {
		t.Fatalf("unexpected genome output %q", out)
	}

	if _, _, err := execute(t, append([]string{"genome", "missing"}, storeArgs...)...); err == nil {
		t.Fatal("expected error for unknown genome")
	}
}

func TestBestWithoutSummary(t *testing.T) {
	isolateEnv(t)
	if _, _, err := execute(t, "best", "--store", "memory"); err == nil {
		t.Fatal("expected error for a store with no summary")
	}
}

func TestWatchRejectsZeroFPS(t *testing.T) {
	isolateEnv(t)
	if _, _, err := execute(t, "watch", "--fps", "0"); err == nil {
		t.Fatal("expected fps validation error")
	}
}

func TestRunWritesArtifactsAndRunsListsThem(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	if _, _, err := execute(t, "run", "--roster", "2", "--iterations", "2", "--max-ticks", "80",
		"--run-id", "artifact-run", "--artifacts-dir", dir, "--log-level", "error"); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, file := range []string{"config.json", "sessions.json", "summary.json", "high_scores.csv"} {
		if _, err := os.Stat(filepath.Join(dir, "artifact-run", file)); err != nil {
			t.Fatalf("expected artifact %s: %v", file, err)
		}
	}

	out, _, err := execute(t, "runs", "--artifacts-dir", dir)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if !strings.HasPrefix(out, "artifact-run  spike-jump  roster 2  sessions 2") {
		t.Fatalf("unexpected runs output %q", out)
	}

	if _, _, err := execute(t, "runs"); err == nil {
		t.Fatal("expected error without --artifacts-dir")
	}
}
