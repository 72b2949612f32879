package docker

import (
	"regexp"
	"strings"
)

// NamePrefix marks the containers this supervisor owns.
const NamePrefix = "claude-"

var nameSanitizeRx = regexp.MustCompile(`[^A-Za-z0-9-]`)

// ContainerName derives the deterministic container name for a session key.
// Any character outside [A-Za-z0-9-] becomes a hyphen. Total function: every
// key, including the empty one, maps to a valid name.
func ContainerName(sessionKey string) string {
	return NamePrefix + nameSanitizeRx.ReplaceAllString(sessionKey, "-")
}

// SessionKeyFromName inverts ContainerName by stripping the prefix. Returns
// false for containers that are not ours.
func SessionKeyFromName(containerName string) (string, bool) {
	if !strings.HasPrefix(containerName, NamePrefix) {
		return "", false
	}
	return strings.TrimPrefix(containerName, NamePrefix), true
}
