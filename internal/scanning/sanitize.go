package scanning

import "regexp"

// RedactedMarker replaces every sensitive line fragment.
const RedactedMarker = "[REDACTED]"

var sensitivePattern = regexp.MustCompile(`(?:MAC Address|OS details|Service Info):[^\n]*`)

// Sanitize redacts MAC addresses, OS fingerprint details and service banners
// from raw scanner output. Text outside the matched fragments is untouched.
func Sanitize(raw string) string {
	return sensitivePattern.ReplaceAllLiteralString(raw, RedactedMarker)
}
