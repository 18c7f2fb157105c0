// Package report serializes scan reports for download: indented JSON, a
// Host,Port,State,Service CSV, or a plain-text log wrapping the sanitized
// scanner output.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anstrom/scangate/internal/scanning"
)

// Format names an export representation.
type Format string

const (
	FormatLog  Format = "log"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// TimestampLayout renders as YYYY-MM-DD_HH-MM-SS.
const TimestampLayout = "2006-01-02_15-04-05"

const (
	logBanner         = "Nmap Scan Results"
	logSeparatorWidth = 50
)

var csvHeader = []string{"Host", "Port", "State", "Service"}

// ParseFormat maps a requested format onto a known one. Unknown values fall
// back to the log format.
func ParseFormat(s string) Format {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON
	case FormatCSV:
		return FormatCSV
	default:
		return FormatLog
	}
}

// Extension returns the filename extension for f.
func (f Format) Extension() string {
	return string(f)
}

// MIMEType returns the content type served for f.
func (f Format) MIMEType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Timestamp formats t with TimestampLayout.
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// NewMetadata stamps a request's target and ports with the time t.
func NewMetadata(t time.Time, target, ports string) scanning.Metadata {
	return scanning.Metadata{Timestamp: Timestamp(t), Target: target, Ports: ports}
}

// JSON renders r with two-space indentation.
func JSON(r *scanning.ScanReport) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json report: %w", err)
	}
	return data, nil
}

// CSV renders one row per (host, port) pair in parse order.
func CSV(r *scanning.ScanReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, host := range r.Hosts {
		for _, port := range host.Ports {
			if err := w.Write([]string{host.Host, port.Port, port.StateText(), port.Service}); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Log wraps already sanitized scanner output in a header naming the request.
func Log(meta scanning.Metadata, sanitized string) []byte {
	var b strings.Builder
	b.WriteString(logBanner + "\n")
	fmt.Fprintf(&b, "Timestamp: %s\n", meta.Timestamp)
	fmt.Fprintf(&b, "Target: %s\n", meta.Target)
	fmt.Fprintf(&b, "Ports: %s\n", meta.Ports)
	b.WriteString(strings.Repeat("=", logSeparatorWidth) + "\n\n")
	b.WriteString(sanitized)
	b.WriteString("\n")
	return []byte(b.String())
}
