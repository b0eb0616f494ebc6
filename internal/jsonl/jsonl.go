// Package jsonl reads newline-delimited JSON transcript files.
package jsonl

import (
	"bufio"
	"encoding/json"
	"os"
)

const maxLineSize = 10 * 1024 * 1024 // 10MB

// ReadRecords reads every syntactically valid JSON value found on the
// non-blank lines of the file at path, in file order. Blank and
// malformed lines are skipped. An unreadable file yields nil. This
// function never returns an error: every provider scan is built on it
// and a single bad transcript must not abort the rest.
func ReadRecords(path string) []json.RawMessage {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var records []json.RawMessage

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			continue
		}
		rec := make(json.RawMessage, len(line))
		copy(rec, line)
		records = append(records, rec)
	}

	return records
}

// Decode unmarshals raw into v, reporting success. It exists so callers
// can try several known record shapes against one line without error
// plumbing.
func Decode(raw json.RawMessage, v any) bool {
	return json.Unmarshal(raw, v) == nil
}
