package punishment

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"

	"moderation-bot/model"
)

// subjectHistory is the on-disk shape: one entry per subject, records in
// chronological (insertion) order.
type subjectHistory struct {
	SubjectID string                   `json:"subject_id"`
	Records   []model.PunishmentRecord `json:"records"`
}

// Store is the append-only punishment history. The whole history is written
// back to a single JSON file after every append; records are never mutated
// or removed.
type Store struct {
	mu      sync.Mutex
	path    string
	history map[string][]model.PunishmentRecord
	order   []string
}

// OpenStore loads the history file at path. A missing file yields an empty
// history; a corrupt file is logged and ignored rather than crashing.
func OpenStore(path string) *Store {
	s := &Store{
		path:    path,
		history: make(map[string][]model.PunishmentRecord),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Error reading punishment history %s: %v", path, err)
		}
		return s
	}

	var entries []subjectHistory
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Printf("Punishment history %s is corrupt, starting empty: %v", path, err)
		return s
	}
	for _, e := range entries {
		s.history[e.SubjectID] = e.Records
		s.order = append(s.order, e.SubjectID)
	}
	return s
}

// Record appends rec to the subject's history and persists the store. A
// persistence failure is logged; the in-memory append stands.
func (s *Store) Record(rec model.PunishmentRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.history[rec.SubjectID]; !ok {
		s.order = append(s.order, rec.SubjectID)
	}
	s.history[rec.SubjectID] = append(s.history[rec.SubjectID], rec)

	if err := s.save(); err != nil {
		log.Printf("Error saving punishment history: %v", err)
	}
}

// History returns a copy of the subject's records in chronological order.
func (s *Store) History(subjectID string) []model.PunishmentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.history[subjectID]
	out := make([]model.PunishmentRecord, len(records))
	copy(out, records)
	return out
}

// save writes the full history wholesale. Caller holds s.mu.
func (s *Store) save() error {
	entries := make([]subjectHistory, 0, len(s.order))
	for _, id := range s.order {
		entries = append(entries, subjectHistory{SubjectID: id, Records: s.history[id]})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal punishment history: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write punishment history: %w", err)
	}
	return nil
}
