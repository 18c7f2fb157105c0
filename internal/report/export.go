package report

import (
	"fmt"
	"strings"

	"github.com/anstrom/scangate/internal/scanning"
)

// Artifact is a ready-to-serve export.
type Artifact struct {
	Data     []byte
	MIMEType string
	Filename string
	Format   Format
}

// Export renders r in format. sanitized is the redacted scanner output used
// by the log format; it must already have passed scanning.Sanitize.
func Export(r *scanning.ScanReport, sanitized string, format Format) (*Artifact, error) {
	if r == nil {
		return nil, fmt.Errorf("export %s: nil report", format)
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = JSON(r)
	case FormatCSV:
		data, err = CSV(r)
	default:
		format = FormatLog
		data = Log(r.Metadata, sanitized)
	}
	if err != nil {
		return nil, err
	}

	return &Artifact{
		Data:     data,
		MIMEType: format.MIMEType(),
		Filename: Filename(r.Metadata.Target, r.Metadata.Timestamp, format),
		Format:   format,
	}, nil
}

// Filename returns scan_<target>_<timestamp>.<ext>. Characters of target
// outside [A-Za-z0-9._-] become '_' so the name is safe in a
// Content-Disposition header and on disk.
func Filename(target, timestamp string, format Format) string {
	return fmt.Sprintf("scan_%s_%s.%s", safeName(target), timestamp, format.Extension())
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}
