package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

var ErrInvalidRecord = errors.New("long-term record must encode as a JSON object")

// Record is a schema-less patient summary. Values are JSON-compatible.
type Record map[string]any

// LongTerm stores one mergeable summary record per patient.
//
// Update is read-modify-write over two backend calls with no compare-and-swap:
// concurrent updates to the same patient can lose a writer's scalar fields.
type LongTerm struct {
	backend Backend
	log     zerolog.Logger
}

func NewLongTerm(backend Backend, logger zerolog.Logger) *LongTerm {
	return &LongTerm{backend: backend, log: logger}
}

func (l *LongTerm) Key(patientID string) string {
	return "ltm:" + patientID
}

// Get returns the stored record, or ok=false when none exists. A stored value
// that is not a JSON object is reported as absent.
func (l *LongTerm) Get(ctx context.Context, patientID string) (Record, bool, error) {
	key := l.Key(patientID)
	raw, ok, err := l.backend.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("ltm get: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	obj, isObj := Decode(raw).(map[string]any)
	if !isObj {
		l.log.Warn().Str("key", key).Msg("ltm value is not an object, treating as absent")
		return nil, false, nil
	}
	return Record(obj), true, nil
}

// Set replaces the whole record.
func (l *LongTerm) Set(ctx context.Context, patientID string, record Record) error {
	if record == nil {
		record = Record{}
	}
	encoded := Encode(record)
	if _, ok := Decode(encoded).(map[string]any); !ok {
		return fmt.Errorf("ltm set: %w", ErrInvalidRecord)
	}
	if err := l.backend.Set(ctx, l.Key(patientID), encoded); err != nil {
		return fmt.Errorf("ltm set: %w", err)
	}
	return nil
}

// Update merges patch into the stored record and returns the merged result.
func (l *LongTerm) Update(ctx context.Context, patientID string, patch Record) (Record, error) {
	current, _, err := l.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	merged := Merge(current, patch)
	if err := l.Set(ctx, patientID, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// Clear deletes the record.
func (l *LongTerm) Clear(ctx context.Context, patientID string) error {
	if err := l.backend.Delete(ctx, l.Key(patientID)); err != nil {
		return fmt.Errorf("ltm clear: %w", err)
	}
	return nil
}

// Merge applies patch over existing without mutating either. When both sides
// of a field are lists the result is their union without duplicates;
// otherwise the patch value wins. Fields missing from patch are kept.
// Both sides are normalized to their stored JSON form first, so any Go slice
// type counts as a list.
func Merge(existing, patch Record) Record {
	existing, patch = normalizeRecord(existing), normalizeRecord(patch)
	out := make(Record, len(existing)+len(patch))
	for k, v := range existing {
		out[k] = v
	}
	for k, v := range patch {
		prev, had := existing[k]
		if had {
			a, aList := asList(prev)
			b, bList := asList(v)
			if aList && bList {
				out[k] = union(a, b)
				continue
			}
		}
		out[k] = v
	}
	return out
}

func normalizeRecord(r Record) Record {
	if len(r) == 0 {
		return r
	}
	if obj, ok := Decode(Encode(r)).(map[string]any); ok {
		return Record(obj)
	}
	return r
}

func asList(v any) ([]any, bool) {
	list, ok := v.([]any)
	return list, ok
}

// union compares elements by their JSON encoding so nested values dedupe too.
func union(a, b []any) []any {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]any, 0, len(a)+len(b))
	for _, list := range [][]any{a, b} {
		for _, item := range list {
			k := Encode(item)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}
