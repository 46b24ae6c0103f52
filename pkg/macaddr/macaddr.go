// Package macaddr normalizes MAC addresses as reported by the Mist API and
// derives Mist device identifiers from them.
package macaddr

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// deviceIDPrefix is the fixed leading portion of every Mist device UUID;
// the final group is the device MAC.
const deviceIDPrefix = "00000000-0000-0000-1000-"

// NormalizeExactMac normalizes a MAC address to a 12-character lowercase hex string
// without separators. Accepts colon, dash, dot, or no separators.
func NormalizeExactMac(input string) (string, error) {
	clean := strings.Map(func(r rune) rune {
		if r == ':' || r == '.' || r == '-' {
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(input)))

	if len(clean) != 12 {
		return "", fmt.Errorf("invalid MAC address length: %q", input)
	}
	for i := 0; i < len(clean); i++ {
		if !isHexDigit(clean[i]) {
			return "", fmt.Errorf("invalid MAC address characters: %q", input)
		}
	}
	return clean, nil
}

// Key returns the lookup key for a MAC: the normalized form when valid,
// otherwise the trimmed lowercase input so odd values still group together.
func Key(input string) string {
	if clean, err := NormalizeExactMac(input); err == nil {
		return clean
	}
	return strings.ToLower(strings.TrimSpace(input))
}

// FormatMacColon formats a normalized 12-character MAC address with colon separators.
// Example: "001122334455" -> "00:11:22:33:44:55"
func FormatMacColon(clean string) string {
	clean = strings.ToLower(clean)
	if len(clean) != 12 {
		return clean
	}
	var b strings.Builder
	for i := 0; i < 12; i += 2 {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(clean[i : i+2])
	}
	return b.String()
}

// DeviceID returns the Mist device UUID for a device MAC,
// e.g. "5c5b35000001" -> 00000000-0000-0000-1000-5c5b35000001.
func DeviceID(mac string) (uuid.UUID, error) {
	clean, err := NormalizeExactMac(mac)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(deviceIDPrefix + clean)
}

// MacFromDeviceID extracts the MAC from a Mist device UUID.
func MacFromDeviceID(id uuid.UUID) (string, error) {
	s := id.String()
	if !strings.HasPrefix(s, deviceIDPrefix) {
		return "", fmt.Errorf("not a device id: %s", s)
	}
	return strings.TrimPrefix(s, deviceIDPrefix), nil
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
