package ledger

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// GUIDEncodingLength is the size of the textual GUID encoding: 32 hex
// characters, no separators.
const GUIDEncodingLength = 32

// GUID is the 128-bit identifier carried by every ledger object.
type GUID [16]byte

// NewGUID returns a fresh random GUID.
func NewGUID() GUID {
	return GUID(uuid.New())
}

// ParseGUID decodes the fixed-length hex encoding. It also accepts the
// canonical dashed form for interoperability.
func ParseGUID(s string) (GUID, error) {
	if len(s) == GUIDEncodingLength {
		var g GUID
		if _, err := hex.Decode(g[:], []byte(s)); err != nil {
			return GUID{}, fmt.Errorf("invalid guid %q: %w", s, err)
		}
		return g, nil
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return GUID{}, fmt.Errorf("invalid guid %q: %w", s, err)
	}
	return GUID(u), nil
}

// String renders the fixed-length hex encoding.
func (g GUID) String() string {
	return hex.EncodeToString(g[:])
}

// IsZero reports whether the GUID is the all-zero value.
func (g GUID) IsZero() bool {
	return g == GUID{}
}
