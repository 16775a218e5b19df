// Package hash computes stable 64-bit identifiers for channel component
// names, used to key snapshot index entries.
package hash

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ChannelID computes the xxHash64 of the lowercased component name.
// Component lookup throughout mtseries is case-insensitive, so the ID of
// "Ex" and "ex" must be identical.
func ChannelID(component string) uint64 {
	return xxhash.Sum64String(strings.ToLower(component))
}
