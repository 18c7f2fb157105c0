package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/anstrom/scangate/internal/report"
	"github.com/anstrom/scangate/internal/scanning"
	"github.com/anstrom/scangate/internal/validation"
)

var (
	convertFormat string
	convertOutput string
	convertTarget string
	convertPorts  string
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert <nmap-xml-file>",
	Short: "Convert saved nmap XML output into a report",
	Long: `Convert a scan saved with nmap -oX into a json, csv or log report.

The XML is parsed into the same host and port records a live scan produces,
so reports from both sources have identical layouts. Pass "-" to read the
XML from standard input.`,
	Example: `  scangate convert scan.xml --format csv
  nmap -p 22,80 -oX - scanme.nmap.org | scangate convert - --format json --output report.json`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&convertFormat, "format", "f", string(report.FormatJSON), "Report format: json, csv or log")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Report file or directory (default: generated name in the current directory)")
	convertCmd.Flags().StringVar(&convertTarget, "target", "", "Target recorded in the report metadata")
	convertCmd.Flags().StringVar(&convertPorts, "ports", "", "Port specification recorded in the report metadata")
}

func runConvert(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	artifact, err := convertXML(data, report.ParseFormat(convertFormat), convertTarget, convertPorts, time.Now())
	if err != nil {
		return err
	}

	path, err := writeArtifact(artifact, convertOutput)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
	return nil
}

func readInput(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(name) //nolint:gosec // path supplied by the local operator
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// convertXML renders an nmap XML document as an export. The log format gets a
// port table in place of raw scanner text.
func convertXML(data []byte, format report.Format, target, ports string, now time.Time) (*report.Artifact, error) {
	parsed, err := scanning.ParseXML(data)
	if err != nil {
		return nil, err
	}

	if target != "" {
		if err := validation.ValidateTarget(target); err != nil {
			return nil, fmt.Errorf("invalid --target: %w", err)
		}
	} else {
		target = reportTarget(parsed)
	}
	parsed.Metadata = report.NewMetadata(now.UTC(), target, ports)

	var text bytes.Buffer
	printPortTable(&text, parsed)
	printStatistics(&text, &parsed.Stats)

	return report.Export(parsed, scanning.Sanitize(text.String()), format)
}

// reportTarget names an imported scan after its hosts.
func reportTarget(r *scanning.ScanReport) string {
	switch len(r.Hosts) {
	case 0:
		return "import"
	case 1:
		host := r.Hosts[0].Host
		if i := strings.Index(host, " ("); i > 0 {
			host = host[:i]
		}
		return host
	default:
		return fmt.Sprintf("%d-hosts", len(r.Hosts))
	}
}
