package stats

import "fmt"

// CustomChecks is the optional custom-checks configuration (spec §6):
// a fixed, enumerated set of keys, each optional; absence disables that
// check. Decoded from the TOML file at decode.custom_checks_path by the
// check command.
type CustomChecks struct {
	CDPs         *uint32   `toml:"cdps"`
	TriggersPhT  *uint32   `toml:"triggers_pht"`
	ChipOrdersOB *[2][]uint8 `toml:"chip_orders_ob"`
	ChipCountOB  *uint8    `toml:"chip_count_ob"`
	RdhVersion   *uint8    `toml:"rdh_version"`
}

// ValidateCustomChecks compares every configured expectation against
// the collector's observed RdhStats, emitting a [E40] error per
// mismatch (spec §4.6). Must be called after Finalize.
func (c *Collector) ValidateCustomChecks(cc CustomChecks) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var mismatches []string
	cdpCount := c.Rdh.RDHSeen - c.Rdh.RDHFiltered

	if cc.CDPs != nil && uint64(*cc.CDPs) != cdpCount {
		msg := FormatError(CodeCustomCheck, 0, fmt.Sprintf("expected %d CDPs, observed %d", *cc.CDPs, cdpCount))
		mismatches = append(mismatches, msg)
	}
	if cc.TriggersPhT != nil {
		observed := c.Rdh.TriggerBitCounts[TriggerPhysicsBit]
		if uint64(*cc.TriggersPhT) != observed {
			msg := FormatError(CodeCustomCheck, 0, fmt.Sprintf("expected %d PhT triggers, observed %d", *cc.TriggersPhT, observed))
			mismatches = append(mismatches, msg)
		}
	}
	if cc.RdhVersion != nil && *cc.RdhVersion != c.Rdh.RdhVersion {
		msg := FormatError(CodeCustomCheck, 0, fmt.Sprintf("expected rdh_version %d, observed %d", *cc.RdhVersion, c.Rdh.RdhVersion))
		mismatches = append(mismatches, msg)
	}

	c.Err.Messages = append(c.Err.Messages, mismatches...)
	return mismatches
}
