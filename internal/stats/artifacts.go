package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"spikejump/internal/model"
)

const runIndexFile = "run_index.json"

// RunConfig is the settings snapshot written next to a run's sessions.
type RunConfig struct {
	RunID         string  `json:"run_id"`
	Scape         string  `json:"scape"`
	LaneWidth     float64 `json:"lane_width"`
	LaneHeight    float64 `json:"lane_height"`
	ObstacleCount int     `json:"obstacle_count"`
	RosterSize    int     `json:"roster_size"`
	MaxTicks      int     `json:"max_ticks"`
	Iterations    int     `json:"iterations"`
	Seed          int64   `json:"seed"`
	Morphology    string  `json:"morphology,omitempty"`
	HiddenNeurons int     `json:"hidden_neurons"`
}

// HighScoreSummary aggregates the high scores of every session in a run.
type HighScoreSummary struct {
	Sessions  int     `json:"sessions"`
	Truncated int     `json:"truncated"`
	Mean      float64 `json:"mean"`
	Std       float64 `json:"std"`
	Min       int     `json:"min"`
	Max       int     `json:"max"`
}

type RunArtifacts struct {
	Config   RunConfig             `json:"config"`
	Sessions []model.SessionRecord `json:"sessions"`
	Summary  HighScoreSummary      `json:"summary"`
}

type RunIndexEntry struct {
	RunID         string `json:"run_id"`
	Scape         string `json:"scape"`
	RosterSize    int    `json:"roster_size"`
	Iterations    int    `json:"iterations"`
	Seed          int64  `json:"seed"`
	BestHighScore int    `json:"best_high_score"`
	CreatedAtUTC  string `json:"created_at_utc"`
}

// SummarizeHighScores computes population statistics over session high
// scores. An empty slice yields a zero summary.
func SummarizeHighScores(records []model.SessionRecord) HighScoreSummary {
	summary := HighScoreSummary{Sessions: len(records)}
	if len(records) == 0 {
		return summary
	}
	summary.Min = records[0].HighScore
	summary.Max = records[0].HighScore
	total := 0.0
	for _, r := range records {
		if r.Truncated {
			summary.Truncated++
		}
		if r.HighScore < summary.Min {
			summary.Min = r.HighScore
		}
		if r.HighScore > summary.Max {
			summary.Max = r.HighScore
		}
		total += float64(r.HighScore)
	}
	summary.Mean = total / float64(len(records))
	variance := 0.0
	for _, r := range records {
		d := float64(r.HighScore) - summary.Mean
		variance += d * d
	}
	summary.Std = math.Sqrt(variance / float64(len(records)))
	return summary
}

// WriteRunArtifacts writes config.json, sessions.json, summary.json and
// high_scores.csv under baseDir/<run id> and returns that directory.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if strings.TrimSpace(artifacts.Config.RunID) == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "config.json"), artifacts.Config); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "sessions.json"), artifacts.Sessions); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "summary.json"), artifacts.Summary); err != nil {
		return "", err
	}
	if err := WriteHighScoreSeries(runDir, artifacts.Sessions); err != nil {
		return "", err
	}
	return runDir, nil
}

// AppendRunIndex adds entry to the index in baseDir, replacing any entry with
// the same run id.
func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := readRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns index entries newest first. A missing index is empty.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	entries, err := readRunIndex(baseDir)
	if err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Later appends win ties.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

// readRunIndex returns the entries in append order, which is the order the
// file keeps.
func readRunIndex(baseDir string) ([]RunIndexEntry, error) {
	var entries []RunIndexEntry
	ok, err := readJSON(filepath.Join(baseDir, runIndexFile), &entries)
	if err != nil {
		return nil, err
	}
	if !ok || entries == nil {
		return []RunIndexEntry{}, nil
	}
	return entries, nil
}

func ReadRunConfig(baseDir, runID string) (RunConfig, bool, error) {
	var cfg RunConfig
	ok, err := readJSON(filepath.Join(baseDir, runID, "config.json"), &cfg)
	return cfg, ok, err
}

func ReadSessions(baseDir, runID string) ([]model.SessionRecord, bool, error) {
	var records []model.SessionRecord
	ok, err := readJSON(filepath.Join(baseDir, runID, "sessions.json"), &records)
	return records, ok, err
}

// WriteHighScoreSeries writes one "iteration,high_score,ticks,truncated" row
// per session.
func WriteHighScoreSeries(runDir string, records []model.SessionRecord) error {
	file, err := os.Create(filepath.Join(runDir, "high_scores.csv"))
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"iteration", "high_score", "ticks", "truncated"}); err != nil {
		return err
	}
	for _, r := range records {
		if err := writer.Write([]string{
			strconv.Itoa(r.Iteration),
			strconv.Itoa(r.HighScore),
			strconv.Itoa(r.Ticks),
			strconv.FormatBool(r.Truncated),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadHighScoreSeries returns the high_score column of high_scores.csv.
func ReadHighScoreSeries(baseDir, runID string) ([]int, bool, error) {
	file, err := os.Open(filepath.Join(baseDir, runID, "high_scores.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []int{}, true, nil
		}
		return nil, false, err
	}
	if len(header) < 2 {
		return nil, false, fmt.Errorf("high score series header must have at least 2 columns")
	}

	series := make([]int, 0, 16)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		if len(record) < 2 {
			return nil, false, fmt.Errorf("high score series row must have at least 2 columns")
		}
		value, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, false, err
		}
		series = append(series, value)
	}
	return series, true, nil
}

func readJSON(path string, value any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, value); err != nil {
		return false, err
	}
	return true, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
