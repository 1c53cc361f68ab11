package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrDecode marks telemetry payloads that cannot be parsed. The payload is
// dropped; decoding never touches bin state.
var ErrDecode = errors.New("telemetry: decode error")

// Update maps bin identity to a newly observed fill level. A single bus
// message may carry levels for any subset of the fleet, including none.
type Update map[string]float64

// Decode parses a raw bus payload into an Update for the given bin
// identities. The payload is a JSON object with an optional numeric
// "<id>_level" field per bin. Unknown fields are ignored; an absent field
// means no change for that bin. A payload that is not a JSON object, or
// whose level field is not numeric, fails as a whole.
func Decode(payload []byte, ids []string) (Update, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	update := make(Update)
	for _, id := range ids {
		raw, ok := fields[id+"_level"]
		if !ok {
			continue
		}
		var level float64
		if err := json.Unmarshal(raw, &level); err != nil {
			return nil, fmt.Errorf("%w: field %s_level: %v", ErrDecode, id, err)
		}
		update[id] = level
	}
	return update, nil
}
