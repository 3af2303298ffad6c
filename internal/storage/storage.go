package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/o365-builds/internal/build"
)

// Snapshot is the on-disk form of a fetch run.
type Snapshot struct {
	FetchedAt time.Time      `json:"fetched_at"`
	Channel   string         `json:"channel"`
	Count     int            `json:"record_count"`
	Records   []build.Record `json:"records"`
}

// NewSnapshot creates a snapshot of records stamped with the current time.
func NewSnapshot(channel string, records []build.Record) *Snapshot {
	if records == nil {
		records = []build.Record{}
	}
	return &Snapshot{
		FetchedAt: time.Now().UTC(),
		Channel:   channel,
		Count:     len(records),
		Records:   records,
	}
}

// ExpandPath expands a leading ~/ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

// Encode writes snapshot as indented JSON.
func Encode(w io.Writer, snapshot *Snapshot) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(snapshot)
}

// Decode reads a snapshot. A bare JSON array of records is accepted as well.
// Every record must carry a version and a build; the result is sorted by version
// with duplicates removed.
func Decode(r io.Reader) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snapshot Snapshot
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(data, &snapshot.Records); err != nil {
			return nil, fmt.Errorf("parsing records: %w", err)
		}
	} else if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}

	for i, rec := range snapshot.Records {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}

	snapshot.Records = build.Normalize(snapshot.Records)
	snapshot.Count = len(snapshot.Records)

	return &snapshot, nil
}

// Save writes snapshot to path, creating parent directories.
func Save(path string, snapshot *Snapshot) error {
	path, err := ExpandPath(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}
	defer f.Close()

	if err := Encode(f, snapshot); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return f.Close()
}

// Load reads the snapshot at path.
func Load(path string) (*Snapshot, error) {
	path, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	return Decode(f)
}
