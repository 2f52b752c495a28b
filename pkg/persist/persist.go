// Package persist defines the optional persistence capability the spawn
// runtime offers dynamically spawned instances, plus a file-backed journal
// implementation. Whether an instance participates is decided explicitly at
// registration time: the hook is a field on the instance wrapper, never
// discovered by runtime type inspection.
package persist

import (
	"bufio"
	"os"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/ajitpratap0/spawnpool/pkg/spawnerrors"
)

// Hook is the capability an instance may carry for persistence integration.
// The runtime calls SetupDynamicInstance once when the instance is spawned
// and RegisterDestroyed when it is despawned.
type Hook interface {
	SetupDynamicInstance(id string) error
	RegisterDestroyed(id string) error
}

// Entry is one journal record.
type Entry struct {
	Op         string    `json:"op"` // "spawn" or "destroy"
	InstanceID string    `json:"instance_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// Journal is a Hook that appends JSON-lines entries to a file. It is the
// reference Hook implementation used by the demo and tests; real embeddings
// typically write into their save system instead.
type Journal struct {
	mu   sync.Mutex
	file *os.File
	w    *bufio.Writer
}

// OpenJournal opens (or creates) a journal file for appending.
func OpenJournal(path string) (*Journal, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644) //nolint:gosec
	if err != nil {
		return nil, spawnerrors.Wrap(err, spawnerrors.ErrorTypePersistence, "failed to open journal")
	}
	return &Journal{
		file: file,
		w:    bufio.NewWriter(file),
	}, nil
}

// SetupDynamicInstance records that a dynamic instance came into existence.
func (j *Journal) SetupDynamicInstance(id string) error {
	return j.append(Entry{Op: "spawn", InstanceID: id, Timestamp: time.Now()})
}

// RegisterDestroyed records that a dynamic instance was destroyed.
func (j *Journal) RegisterDestroyed(id string) error {
	return j.append(Entry{Op: "destroy", InstanceID: id, Timestamp: time.Now()})
}

func (j *Journal) append(e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return spawnerrors.Wrap(err, spawnerrors.ErrorTypePersistence, "failed to marshal journal entry")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if _, err := j.w.Write(data); err != nil {
		return spawnerrors.Wrap(err, spawnerrors.ErrorTypePersistence, "failed to write journal entry")
	}
	if err := j.w.WriteByte('\n'); err != nil {
		return spawnerrors.Wrap(err, spawnerrors.ErrorTypePersistence, "failed to write journal entry")
	}
	return nil
}

// Close flushes and closes the journal file.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.w.Flush(); err != nil {
		return spawnerrors.Wrap(err, spawnerrors.ErrorTypePersistence, "failed to flush journal")
	}
	return j.file.Close()
}

// ReadJournal loads every entry from a journal file, oldest first.
func ReadJournal(path string) ([]Entry, error) {
	file, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, spawnerrors.Wrap(err, spawnerrors.ErrorTypePersistence, "failed to open journal")
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, spawnerrors.Wrap(err, spawnerrors.ErrorTypePersistence, "corrupt journal entry")
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, spawnerrors.Wrap(err, spawnerrors.ErrorTypePersistence, "failed to read journal")
	}
	return entries, nil
}
