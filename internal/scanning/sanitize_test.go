package scanning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	raw := "Nmap scan report for router.lan (192.168.1.1)\n" +
		"Host is up (0.0010s latency).\n" +
		"PORT   STATE SERVICE\n" +
		"22/tcp open  ssh\n" +
		"MAC Address: AA:BB:CC:DD:EE:FF (Vendor)\n" +
		"OS details: Linux 5.4\n" +
		"Service Info: OS: Linux; CPE: cpe:/o:linux:linux_kernel\n" +
		"Nmap done: 1 IP address (1 host up) scanned in 0.45 seconds\n"

	want := "Nmap scan report for router.lan (192.168.1.1)\n" +
		"Host is up (0.0010s latency).\n" +
		"PORT   STATE SERVICE\n" +
		"22/tcp open  ssh\n" +
		"[REDACTED]\n" +
		"[REDACTED]\n" +
		"[REDACTED]\n" +
		"Nmap done: 1 IP address (1 host up) scanned in 0.45 seconds\n"

	assert.Equal(t, want, Sanitize(raw))
}

func TestSanitizeLeavesOtherLinesAlone(t *testing.T) {
	raw := "Starting Nmap 7.94\nMAC: not a match\nOS: also not a match\n"
	assert.Equal(t, raw, Sanitize(raw))
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"MAC Address: 00:11:22:33:44:55",
		"OS details: Linux 5.4\r\nline two",
		"Service Info: Host: x\nService Info: Host: y",
		"prefix MAC Address: trailing",
		"[REDACTED]",
		"nothing to see",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "input %q", in)
		assert.NotContains(t, once, "MAC Address:")
		assert.NotContains(t, once, "OS details:")
		assert.NotContains(t, once, "Service Info:")
	}
}
