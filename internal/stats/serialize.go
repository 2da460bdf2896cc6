package stats

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
)

// snapshot is the serializable projection of a Collector: the three
// substructures named by spec §6 plus the finalized flag.
type snapshot struct {
	ErrorStats  ErrorStats  `json:"error_stats" toml:"error_stats"`
	RdhStats    RdhStats    `json:"rdh_stats" toml:"rdh_stats"`
	AlpideStats AlpideStats `json:"alpide_stats" toml:"alpide_stats"`
	IsFinalized bool        `json:"is_finalized" toml:"is_finalized"`
}

func (c *Collector) snapshot() snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshot{
		ErrorStats:  c.Err,
		RdhStats:    c.Rdh,
		AlpideStats: c.Alpide,
		IsFinalized: c.IsFinalized,
	}
}

// MarshalJSON serializes the collector's finalized state (spec §6).
func (c *Collector) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(c.snapshot(), "", "  ")
}

// MarshalTOML serializes the collector's finalized state to TOML.
func (c *Collector) MarshalTOML() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c.snapshot()); err != nil {
		return nil, fmt.Errorf("encode stats toml: %w", err)
	}
	return buf.Bytes(), nil
}

// LoadJSON deserializes a previously-serialized collector for
// comparison (spec §6's "stats input file").
func LoadJSON(data []byte) (*Collector, error) {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal stats json: %w", err)
	}
	return fromSnapshot(s), nil
}

// LoadTOML deserializes a previously-serialized collector for
// comparison.
func LoadTOML(data []byte) (*Collector, error) {
	var s snapshot
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal stats toml: %w", err)
	}
	return fromSnapshot(s), nil
}

func fromSnapshot(s snapshot) *Collector {
	c := &Collector{
		Err:         s.ErrorStats,
		Rdh:         s.RdhStats,
		Alpide:      s.AlpideStats,
		IsFinalized: s.IsFinalized,
	}
	return c
}

// Compare checks two finalized collectors for equality, returning one
// message per mismatch. It compares rdh_seen, rdh_filtered,
// payload_bytes, rdh_version, data_format, system_id, the number of
// error messages, and the ALPIDE counters. The link, FEE and layer/stave
// sets, the per-trigger-bit counts and the text of the error messages
// are not compared. Both collectors must be finalized.
func (c *Collector) Compare(other *Collector) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	other.mu.Lock()
	defer other.mu.Unlock()

	var diffs []string
	if c.Rdh.RDHSeen != other.Rdh.RDHSeen {
		diffs = append(diffs, fmt.Sprintf("rdh_seen: %d != %d", c.Rdh.RDHSeen, other.Rdh.RDHSeen))
	}
	if c.Rdh.RDHFiltered != other.Rdh.RDHFiltered {
		diffs = append(diffs, fmt.Sprintf("rdh_filtered: %d != %d", c.Rdh.RDHFiltered, other.Rdh.RDHFiltered))
	}
	if c.Rdh.PayloadBytes != other.Rdh.PayloadBytes {
		diffs = append(diffs, fmt.Sprintf("payload_bytes: %d != %d", c.Rdh.PayloadBytes, other.Rdh.PayloadBytes))
	}
	if c.Rdh.RdhVersion != other.Rdh.RdhVersion {
		diffs = append(diffs, fmt.Sprintf("rdh_version: %d != %d", c.Rdh.RdhVersion, other.Rdh.RdhVersion))
	}
	if c.Rdh.DataFormat != other.Rdh.DataFormat {
		diffs = append(diffs, fmt.Sprintf("data_format: %d != %d", c.Rdh.DataFormat, other.Rdh.DataFormat))
	}
	if c.Rdh.SystemID != other.Rdh.SystemID {
		diffs = append(diffs, fmt.Sprintf("system_id: %d != %d", c.Rdh.SystemID, other.Rdh.SystemID))
	}
	if len(c.Err.Messages) != len(other.Err.Messages) {
		diffs = append(diffs, fmt.Sprintf("error count: %d != %d", len(c.Err.Messages), len(other.Err.Messages)))
	}
	if c.Alpide != other.Alpide {
		diffs = append(diffs, "alpide_stats differ")
	}
	return diffs
}
