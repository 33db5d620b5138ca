package reconcile

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vndex/engine-reconciler/internal/engine"
)

// Prefix stamped onto AmmOrder/AmmPosition failure messages so an operator
// can tell engine-reported failures from locally raised ones.
const engineErrorPrefix = "Exchange Engine: "

// decodeEnvelope parses the common envelope. A message that is not even a
// JSON object is a handler-local failure, not a benign drop.
func decodeEnvelope(raw []byte) (*engine.Envelope, error) {
	var env engine.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return &env, nil
}

// decodeObject parses the envelope's object into dst. The object is
// untrusted: individual malformed fields already decode leniently, and a
// wholly absent object leaves dst zero so the missing-key short-circuit
// fires.
func decodeObject(env *engine.Envelope, dst interface{}) error {
	if len(env.Object) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Object, dst); err != nil {
		return fmt.Errorf("decode object: %w", err)
	}
	return nil
}

// numericID extracts an entity id from a flexible identifier: plain integers
// first, then the numeric tail of prefixed forms like "withdrawal-42".
func numericID(id engine.FlexID) (int64, bool) {
	if n, ok := id.Int64(); ok {
		return n, true
	}
	return engine.TrailingID(id.String())
}

// lower dereferences an optional string lower-cased, or "" when absent.
func lower(s *string) string {
	if s == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*s))
}
