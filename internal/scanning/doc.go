// Package scanning turns validated scan requests into nmap invocations and
// nmap output back into structured reports.
//
// # Overview
//
// A scan flows through four steps, each usable on its own:
//
//   - CommandBuilder: builds the tokenized argument vector. Arguments are
//     never joined into a shell string.
//   - Executor: runs the command with a hard wall-clock timeout and classifies
//     the Outcome as success, error or timeout. A timed out child is killed
//     and reaped before Run returns.
//   - Sanitize: redacts MAC addresses, OS details and service banners.
//   - Parse: a two-state line classifier that builds HostScanRecord values
//     and ScanStatistics from nmap's normal text output.
//
// ParseXML accepts nmap's -oX output and produces the same ScanReport, so
// saved scans can be exported without running nmap again.
//
// # Usage
//
//	cmd, err := scanning.BuildCommand("192.168.1.1-254", "22,80,443")
//	if err != nil {
//		return err
//	}
//
//	outcome := scanning.NewExecutor().Run(ctx, cmd, scanning.DefaultTimeout)
//	if outcome.Kind == scanning.OutcomeSuccess {
//		report := scanning.ParseReport(scanning.Sanitize(outcome.Output), meta)
//		fmt.Println(report.Stats.OpenPorts)
//	}
//
// # Thread Safety
//
// Builders, executors and parsers hold no mutable state and can be shared
// between goroutines. Run blocks for up to the timeout; callers serving
// several clients run each scan on its own goroutine. ProcessLimiter bounds
// how many nmap processes run at once.
package scanning
