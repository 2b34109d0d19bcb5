package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ScoreKind identifies which calculation produced a score record.
type ScoreKind string

const (
	KindDNA      ScoreKind = "dna"
	KindSigil    ScoreKind = "sigil"
	KindDevice   ScoreKind = "device"
	KindPlaylist ScoreKind = "playlist"
	KindCosmic   ScoreKind = "cosmic"
)

// ScoreKinds lists every kind in reporting order.
var ScoreKinds = []ScoreKind{KindDNA, KindSigil, KindDevice, KindPlaylist, KindCosmic}

// Valid reports whether k is a known kind.
func (k ScoreKind) Valid() bool {
	for _, known := range ScoreKinds {
		if k == known {
			return true
		}
	}
	return false
}

// JSONObject is a free-form JSON document stored as text.
type JSONObject map[string]any

// Value implements driver.Valuer.
func (j JSONObject) Value() (driver.Value, error) {
	if j == nil {
		return "{}", nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (j *JSONObject) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*j = JSONObject{}
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("scan JSONObject: unsupported type %T", src)
	}
	if len(b) == 0 {
		*j = JSONObject{}
		return nil
	}
	return json.Unmarshal(b, j)
}

// ScoreRecord is a computed score kept in the ledger.
// Score is LabelOnly for results that carry only a label.
type ScoreRecord struct {
	ID             string     `json:"id"`
	Kind           ScoreKind  `json:"kind"`
	Subject        string     `json:"subject"`
	Label          string     `json:"label,omitempty"`
	Inputs         JSONObject `json:"inputs,omitempty"`
	Score          int        `json:"score"`
	CreatedAtEpoch int64      `json:"created_at_epoch"`
}

// LabelOnly is the Score of a record that carries only a label.
const LabelOnly = -1

// NewScoreRecord creates a record with a fresh ID stamped now.
func NewScoreRecord(kind ScoreKind, subject string, score int, label string, inputs JSONObject) *ScoreRecord {
	return &ScoreRecord{
		ID:             uuid.NewString(),
		Kind:           kind,
		Subject:        subject,
		Label:          label,
		Inputs:         inputs,
		Score:          score,
		CreatedAtEpoch: time.Now().UnixMilli(),
	}
}

// ScoreStats aggregates the ledger for one kind.
// Average, Min and Max cover scored records only.
type ScoreStats struct {
	Kind    ScoreKind `json:"kind"`
	Count   int64     `json:"count"`
	Average float64   `json:"average"`
	Min     int       `json:"min"`
	Max     int       `json:"max"`
}
