// Package store owns the on-disk event log and its in-memory mirror.
//
// The store is the only component that touches the log file. It loads and
// migrates the file on open, hands out read-only copies of the event
// sequence, and persists appends atomically: the full log is written to a
// temporary file, flushed, and renamed over the original, so a failed append
// leaves the previously persisted file byte-for-byte unchanged.
//
// The design is single-process, single-writer. There is no file locking;
// exclusive access for the duration of one invocation is assumed.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/clerkbill/clerk/internal/codec"
	"github.com/clerkbill/clerk/internal/event"
)

// Store is an append-only, ordered sequence of events backed by one file.
type Store struct {
	path   string
	events []event.Event
}

// Open reads the log at path, migrating it to the current format if an older
// version is detected. A missing file is not an error; it is an empty log
// (the bootstrap case). After a successful migration the file is rewritten
// immediately, so migration happens at most once per file.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read log %s: %w", path, err)
	}

	version, events, err := codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode log %s: %w", path, err)
	}
	s.events = events

	if version != codec.CurrentVersion {
		if err := s.persist(s.events); err != nil {
			return nil, fmt.Errorf("rewrite migrated log %s: %w", path, err)
		}
	}

	return s, nil
}

// Path returns the log file path.
func (s *Store) Path() string { return s.path }

// Len returns the number of events in the log.
func (s *Store) Len() int { return len(s.events) }

// Events returns the full history in log order. The returned slice is the
// caller's; mutating it does not touch the store.
func (s *Store) Events() []event.Event {
	out := make([]event.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Append adds one event and persists the log before returning. On error
// nothing is appended: neither the in-memory sequence nor the file changes.
func (s *Store) Append(e event.Event) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("append: %w", err)
	}

	next := make([]event.Event, len(s.events), len(s.events)+1)
	copy(next, s.events)
	next = append(next, e)

	if err := s.persist(next); err != nil {
		return fmt.Errorf("append: %w", err)
	}
	s.events = next
	return nil
}

// persist writes the given sequence in the current format via a temporary
// file in the same directory, fsyncs it, and atomically replaces the log.
func (s *Store) persist(events []event.Event) error {
	data, err := codec.Encode(events)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp log: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp log: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flush temp log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp log: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace log: %w", err)
	}

	// Not all platforms support syncing a directory; a failure here does
	// not undo a completed rename.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		d.Close()
	}

	return nil
}
