package report

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/scangate/internal/scanning"
)

func sampleReport() *scanning.ScanReport {
	return &scanning.ScanReport{
		Metadata: scanning.Metadata{Timestamp: "2024-05-06_07-08-09", Target: "example.com", Ports: "22,80"},
		Hosts: []scanning.HostScanRecord{
			{
				Host: "example.com",
				Ports: []scanning.PortRecord{
					{Port: "22/tcp", State: scanning.StateOpen, Service: "ssh"},
					{Port: "80/tcp", State: scanning.StateClosed, Service: "http"},
				},
			},
			{
				Host: "other, host",
				Ports: []scanning.PortRecord{
					{Port: "68/udp", State: scanning.StateOther, RawState: "open|filtered", Service: "dhcpc"},
				},
			},
		},
		Stats: scanning.ScanStatistics{OpenPorts: 1, ClosedPorts: 1, TotalPorts: 2, ScanTime: "0.45 seconds"},
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"json":  FormatJSON,
		"JSON":  FormatJSON,
		" csv ": FormatCSV,
		"log":   FormatLog,
		"":      FormatLog,
		"xml":   FormatLog,
		"../x":  FormatLog,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseFormat(in), "input %q", in)
	}
}

func TestTimestamp(t *testing.T) {
	ts := time.Date(2024, time.March, 9, 14, 5, 7, 0, time.UTC)
	assert.Equal(t, "2024-03-09_14-05-07", Timestamp(ts))

	meta := NewMetadata(ts, "10.0.0.1", "22")
	assert.Equal(t, scanning.Metadata{Timestamp: "2024-03-09_14-05-07", Target: "10.0.0.1", Ports: "22"}, meta)
}

func TestJSON(t *testing.T) {
	data, err := JSON(sampleReport())
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"metadata\": {")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	meta := decoded["metadata"].(map[string]any)
	assert.Equal(t, "2024-05-06_07-08-09", meta["timestamp"])
	assert.Equal(t, "example.com", meta["target"])
	assert.Equal(t, "22,80", meta["ports"])

	hosts := decoded["hosts"].([]any)
	require.Len(t, hosts, 2)
	first := hosts[0].(map[string]any)
	ports := first["ports"].([]any)
	assert.Equal(t, map[string]any{"port": "22/tcp", "state": "open", "service": "ssh"}, ports[0])

	stats := decoded["stats"].(map[string]any)
	assert.Equal(t, float64(2), stats["total_ports"])
	assert.Equal(t, "0.45 seconds", stats["scan_time"])
}

func TestCSV(t *testing.T) {
	data, err := CSV(sampleReport())
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Host", "Port", "State", "Service"},
		{"example.com", "22/tcp", "open", "ssh"},
		{"example.com", "80/tcp", "closed", "http"},
		{"other, host", "68/udp", "open|filtered", "dhcpc"},
	}, records)
}

func TestCSVEmptyReport(t *testing.T) {
	data, err := CSV(&scanning.ScanReport{})
	require.NoError(t, err)
	assert.Equal(t, "Host,Port,State,Service\n", string(data))
}

func TestLog(t *testing.T) {
	meta := scanning.Metadata{Timestamp: "2024-05-06_07-08-09", Target: "example.com", Ports: "22"}
	got := string(Log(meta, "Nmap scan report for example.com\n[REDACTED]\n"))

	want := "Nmap Scan Results\n" +
		"Timestamp: 2024-05-06_07-08-09\n" +
		"Target: example.com\n" +
		"Ports: 22\n" +
		strings.Repeat("=", 50) + "\n" +
		"\n" +
		"Nmap scan report for example.com\n[REDACTED]\n" +
		"\n"
	assert.Equal(t, want, got)
}

func TestLogEndsWithNewline(t *testing.T) {
	meta := scanning.Metadata{Timestamp: "2024-05-06_07-08-09", Target: "example.com", Ports: "22"}
	got := string(Log(meta, "Nmap done: 1 IP address (1 host up) scanned in 0.45 seconds"))
	assert.True(t, strings.HasSuffix(got, "\n\nNmap done: 1 IP address (1 host up) scanned in 0.45 seconds\n"), got)
}

func TestExport(t *testing.T) {
	r := sampleReport()
	tests := []struct {
		format   Format
		mime     string
		filename string
		contains string
	}{
		{FormatJSON, "application/json", "scan_example.com_2024-05-06_07-08-09.json", `"hosts"`},
		{FormatCSV, "text/csv", "scan_example.com_2024-05-06_07-08-09.csv", "Host,Port,State,Service"},
		{FormatLog, "text/plain; charset=utf-8", "scan_example.com_2024-05-06_07-08-09.log", "Nmap Scan Results"},
		{Format("pdf"), "text/plain; charset=utf-8", "scan_example.com_2024-05-06_07-08-09.log", "raw text"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			artifact, err := Export(r, "raw text", tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.mime, artifact.MIMEType)
			assert.Equal(t, tt.filename, artifact.Filename)
			assert.Contains(t, string(artifact.Data), tt.contains)
		})
	}
}

func TestExportNilReport(t *testing.T) {
	_, err := Export(nil, "", FormatJSON)
	assert.Error(t, err)
}

func TestFilenameIsSafe(t *testing.T) {
	tests := map[string]string{
		"192.168.1.1-254":          "scan_192.168.1.1-254_ts.csv",
		"10.0.0.1, example.com":    "scan_10.0.0.1__example.com_ts.csv",
		"2001:db8::1":              "scan_2001_db8__1_ts.csv",
		"a\"b\r\nContent-Type: x/y": "scan_a_b__Content-Type__x_y_ts.csv",
	}
	for target, want := range tests {
		assert.Equal(t, want, Filename(target, "ts", FormatCSV), "target %q", target)
	}
}
