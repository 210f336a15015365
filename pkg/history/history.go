package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const (
	DefaultStorageFileName = ".usdc-bridge-history.json"
)

// Record is one completed or failed bridge attempt.
type Record struct {
	Timestamp          time.Time `json:"timestamp"`
	Amount             string    `json:"amount"`
	Token              string    `json:"token"`
	SourceChain        string    `json:"source_chain"`
	DestinationChain   string    `json:"destination_chain"`
	SourceAddress      string    `json:"source_address"`
	DestinationAddress string    `json:"destination_address"`
	TxHash             string    `json:"tx_hash,omitempty"`
	FinalState         string    `json:"final_state"`
	ErrorMessage       string    `json:"error_message,omitempty"`
}

// Store persists bridge attempts to a local JSON file.
type Store struct {
	filePath string
	mu       sync.RWMutex
	records  []Record
}

type fileFormat struct {
	Records []Record `json:"records"`
}

// NewStore opens the history file, creating state lazily on first save.
// An empty filePath defaults to the user's home directory.
func NewStore(filePath string) (*Store, error) {
	if filePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		filePath = filepath.Join(home, DefaultStorageFileName)
	}

	store := &Store{filePath: filePath}

	if err := store.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load history: %w", err)
		}
	}

	return store, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var contents fileFormat
	if err := json.Unmarshal(data, &contents); err != nil {
		return fmt.Errorf("failed to unmarshal history: %w", err)
	}

	s.records = contents.Records
	return nil
}

func (s *Store) save() error {
	s.mu.RLock()
	contents := fileFormat{Records: s.records}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(contents, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Write to temporary file first, then rename for atomic write
	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := os.Rename(tempFile, s.filePath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Append records one bridge attempt and persists the file.
func (s *Store) Append(record Record) error {
	s.mu.Lock()
	s.records = append(s.records, record)
	s.mu.Unlock()

	return s.save()
}

// List returns all records, newest first.
func (s *Store) List() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, len(s.records))
	copy(out, s.records)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// Count returns the number of recorded attempts.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// GetFilePath returns the storage file path
func (s *Store) GetFilePath() string {
	return s.filePath
}
