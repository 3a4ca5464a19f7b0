package fixture

import (
	"encoding/json"
	"fmt"

	jsoncanonicalizer "github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
)

// Snapshot renders v as canonical JSON (RFC 8785), suitable for golden
// comparisons of seeded fixtures. Self-referencing values cannot be
// rendered.
func Snapshot(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	out, err := jsoncanonicalizer.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	return out, nil
}
