package device

// Package device derives audit metadata for session records from request
// attributes. The fingerprint tags a session for auditing; it is not an
// authentication factor.

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/mssola/useragent"

	"github.com/target/admin-sso-bridge/internal/ports"
)

// Fingerprinter hashes user-agent and client IP into a stable fingerprint
// and parses the user-agent into a human-readable device name.
type Fingerprinter struct{}

// NewFingerprinter constructs a Fingerprinter.
func NewFingerprinter() *Fingerprinter {
	return &Fingerprinter{}
}

// Fingerprint returns the sha256 hex digest of "user-agent|ip" plus a
// display name like "Chrome on Mac OS X".
func (f *Fingerprinter) Fingerprint(info ports.DeviceInfo) (string, string) {
	sum := sha256.Sum256([]byte(info.UserAgent + "|" + info.ClientIP))
	return hex.EncodeToString(sum[:]), DisplayName(info.UserAgent)
}

// DisplayName parses a user-agent string into "Browser on OS" form.
func DisplayName(rawUA string) string {
	if strings.TrimSpace(rawUA) == "" {
		return "Unknown Device"
	}

	ua := useragent.New(rawUA)
	browser, _ := ua.Browser()
	osName := ua.OSInfo().Name
	if osName == "" {
		osName = ua.Platform()
	}

	switch {
	case browser != "" && osName != "":
		return browser + " on " + osName
	case browser != "":
		return browser
	case osName != "":
		return "Unknown Browser on " + osName
	default:
		return "Unknown Device"
	}
}
