package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/anstrom/scangate/internal/report"
	"github.com/anstrom/scangate/internal/scanner"
	"github.com/anstrom/scangate/internal/scanning"
)

// File permission constants.
const (
	dirPermissions  = 0750
	filePermissions = 0600
)

var (
	scanPorts   string
	scanFormat  string
	scanOutput  string
	scanTimeout time.Duration
	scanQuiet   bool
)

// newRunner builds the process runner used by the scan command; tests swap it.
var newRunner = func() scanning.Runner { return scanning.NewExecutor() }

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <target>",
	Short: "Scan a target for open ports",
	Long: `Validate a target and port specification, run nmap against them and
print the sanitized output followed by a port table and statistics.

Targets may be a hostname, an IPv4 or IPv6 address or a dash range such
as 192.168.1.1-20, and several of them may be joined with commas. Ports may be single ports, ranges or a comma separated list.
Use --format to also write a json, csv or log report.`,
	Example: `  scangate scan scanme.nmap.org --ports 22,80,443
  scangate scan 192.168.1.1-254 --ports 1-1024 --timeout 2m
  scangate scan 10.0.0.5 --ports 22 --format csv --output reports/`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&scanPorts, "ports", "p", "", "Port specification, e.g. '80,443' or '1-1000'")
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "", "Also write a report: json, csv or log")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "", "Report file or directory (default: generated name in the current directory)")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 0, "Scan timeout (default from config, 5m)")
	scanCmd.Flags().BoolVarP(&scanQuiet, "quiet", "q", false, "Do not print raw scanner output")
	scanCmd.Flags().String("nmap-path", "", "Path to the nmap binary")

	_ = scanCmd.MarkFlagRequired("ports")
	bindFlag("scanning.nmap_path", scanCmd.Flags().Lookup("nmap-path"))
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if scanTimeout > 0 {
		cfg.Scanning.Timeout = scanTimeout
	}

	svc := scanner.New(scanner.Config{
		Program:       cfg.Scanning.NmapPath,
		Timeout:       cfg.Scanning.Timeout,
		MaxConcurrent: 1,
	}, newRunner(), nil)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return executeScan(ctx, cmd.OutOrStdout(), svc, args[0], scanPorts)
}

// executeScan runs one scan and prints it to out. A scan that errors or times
// out is reported and returned as an error so the process exits non-zero.
func executeScan(ctx context.Context, out io.Writer, svc *scanner.Service, target, ports string) error {
	result, err := svc.Scan(ctx, target, ports)
	if err != nil {
		return err
	}

	if !scanQuiet || result.Status != scanner.StatusCompleted {
		fmt.Fprintln(out, result.Output)
	}
	if result.Status != scanner.StatusCompleted {
		return fmt.Errorf("scan %s", result.Status)
	}

	printPortTable(out, result.Report)
	printStatistics(out, result.Stats)

	if scanFormat == "" {
		return nil
	}
	artifact, err := svc.ExportResult(result, report.ParseFormat(scanFormat))
	if err != nil {
		return err
	}
	path, err := writeArtifact(artifact, scanOutput)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Report written to %s\n", path)
	return nil
}

func printPortTable(out io.Writer, r *scanning.ScanReport) {
	if r == nil || len(r.Hosts) == 0 {
		fmt.Fprintln(out, "No hosts reported.")
		return
	}

	table := tablewriter.NewWriter(out)
	table.Header("Host", "Port", "State", "Service")
	for _, host := range r.Hosts {
		for _, port := range host.Ports {
			_ = table.Append([]string{host.Host, port.Port, port.StateText(), port.Service})
		}
	}
	_ = table.Render()
}

func printStatistics(out io.Writer, stats *scanning.ScanStatistics) {
	if stats == nil {
		return
	}

	table := tablewriter.NewWriter(out)
	table.Header("Open", "Closed", "Filtered", "Total", "Scan Time")
	_ = table.Append([]string{
		strconv.Itoa(stats.OpenPorts),
		strconv.Itoa(stats.ClosedPorts),
		strconv.Itoa(stats.FilteredPorts),
		strconv.Itoa(stats.TotalPorts),
		stats.ScanTime,
	})
	_ = table.Render()
}

// writeArtifact stores artifact at output. An empty output or an existing
// directory, or a path ending in a separator, gets the artifact's generated
// file name.
func writeArtifact(artifact *report.Artifact, output string) (string, error) {
	path := output
	if path == "" {
		path = artifact.Filename
	} else if strings.HasSuffix(path, string(os.PathSeparator)) || isDir(path) {
		path = filepath.Join(path, artifact.Filename)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return "", fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, artifact.Data, filePermissions); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
