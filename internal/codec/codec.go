// Package codec serializes the event log. The current format (version 2) is
// line-oriented UTF-8 text: a header record followed by one self-describing
// JSON event record per line, so a version-control diff shows exactly the
// events that changed and a truncated file loses only its tail.
//
// The previous format (version 1) stored the whole log as a single YAML
// document. Its decoder is retained indefinitely so old files stay
// migratable; see legacy.go.
package codec

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/clerkbill/clerk/internal/event"
)

// CurrentVersion is the format version Encode writes.
const CurrentVersion = 2

// formatName identifies the file as a clerk log in the v2 header record.
const formatName = "clerk.log"

// header is the first line of a v2 log file.
type header struct {
	Format  string `json:"format"`
	Version int    `json:"version"`
}

// Decode parses a complete log file, detecting its format version. It
// returns the detected version alongside the events in log order. Decoding a
// version 1 file performs the migration to current event records; callers
// that care about at-most-once migration (the store) rewrite the file when
// the returned version is not CurrentVersion.
func Decode(data []byte) (int, []event.Event, error) {
	first, rest, ok := firstLine(data)
	if !ok {
		// Empty file: a valid, empty log in the current format.
		return CurrentVersion, nil, nil
	}

	var h header
	if err := json.Unmarshal(first, &h); err == nil && h.Format == formatName {
		if h.Version > CurrentVersion {
			return 0, nil, &UnsupportedVersionError{Version: h.Version}
		}
		if h.Version != CurrentVersion {
			// v1 never wrote a header line, so a header with an older
			// version number cannot have been produced by any release.
			return 0, nil, corruptf("header claims version %d, which never used the line format", h.Version)
		}
		events, err := decodeLines(rest)
		if err != nil {
			return 0, nil, err
		}
		return CurrentVersion, events, nil
	}

	// No recognizable header: either a legacy v1 blob or garbage.
	events, err := decodeLegacy(data)
	if err != nil {
		return 0, nil, err
	}
	return legacyVersion, events, nil
}

// Encode serializes events in the current format. The encoding is
// deterministic: the same sequence always produces identical bytes.
func Encode(events []event.Event) ([]byte, error) {
	var buf bytes.Buffer

	head, err := json.Marshal(header{Format: formatName, Version: CurrentVersion})
	if err != nil {
		return nil, fmt.Errorf("encode header: %w", err)
	}
	buf.Write(head)
	buf.WriteByte('\n')

	for i, e := range events {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("encode record %d: %w", i+1, err)
		}
		line, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("encode record %d: %w", i+1, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	return buf.Bytes(), nil
}

// decodeLines parses the event records following the v2 header. lineOffset
// in errors counts from the top of the file, so the header is line 1.
func decodeLines(data []byte) ([]event.Event, error) {
	var events []event.Event

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 1 // header
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var e event.Event
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, corruptf("line %d: %v", lineNo, err)
		}
		if err := e.Validate(); err != nil {
			return nil, corruptf("line %d: %v", lineNo, err)
		}
		events = append(events, e)
	}
	if err := sc.Err(); err != nil {
		return nil, corruptf("line %d: %v", lineNo, err)
	}

	return events, nil
}

// firstLine splits data into its first non-empty line and the remainder.
func firstLine(data []byte) (line, rest []byte, ok bool) {
	for len(data) > 0 {
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			line, rest = data, nil
		} else {
			line, rest = data[:idx], data[idx+1:]
		}
		if len(bytes.TrimSpace(line)) > 0 {
			return bytes.TrimSpace(line), rest, true
		}
		data = rest
	}
	return nil, nil, false
}
