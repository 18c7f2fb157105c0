package scanning

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Ullaakut/nmap/v3"
)

// ParseXML converts an nmap -oX document into a ScanReport shaped exactly like
// one parsed from text output. Metadata is left for the caller to fill in.
func ParseXML(data []byte) (*ScanReport, error) {
	run := &nmap.Run{}
	if err := nmap.Parse(data, run); err != nil {
		return nil, fmt.Errorf("parse nmap xml: %w", err)
	}

	report := &ScanReport{
		Hosts: make([]HostScanRecord, 0, len(run.Hosts)),
		Stats: ScanStatistics{ScanTime: defaultScanTime},
	}
	lineCounts := make(map[PortState]int)
	summaryCounts := make(map[PortState]int)

	for i := range run.Hosts {
		h := &run.Hosts[i]
		if len(h.Addresses) == 0 {
			continue
		}
		record := HostScanRecord{Host: hostLabel(h), Ports: make([]PortRecord, 0, len(h.Ports))}
		for j := range h.Ports {
			p := &h.Ports[j]
			port := PortRecord{
				Port:    fmt.Sprintf("%d/%s", p.ID, p.Protocol),
				State:   ParsePortState(p.State.State),
				Service: serviceText(p.Service.Name, p.Service.Product, p.Service.Version),
			}
			if port.State == StateOther {
				port.RawState = p.State.State
			} else {
				lineCounts[port.State]++
			}
			record.Ports = append(record.Ports, port)
		}
		for _, extra := range h.ExtraPorts {
			if state := ParsePortState(extra.State); state != StateOther {
				summaryCounts[state] += extra.Count
			}
		}
		report.Hosts = append(report.Hosts, record)
	}

	pick := func(state PortState) int {
		if n := lineCounts[state]; n > 0 {
			return n
		}
		return summaryCounts[state]
	}
	report.Stats.OpenPorts = pick(StateOpen)
	report.Stats.ClosedPorts = pick(StateClosed)
	report.Stats.FilteredPorts = pick(StateFiltered)
	report.Stats.TotalPorts = report.Stats.OpenPorts + report.Stats.ClosedPorts + report.Stats.FilteredPorts
	if elapsed := run.Stats.Finished.Elapsed; elapsed > 0 {
		report.Stats.ScanTime = strconv.FormatFloat(float64(elapsed), 'f', 2, 32) + " seconds"
	}
	return report, nil
}

// hostLabel renders a host the way nmap's text report names it.
func hostLabel(h *nmap.Host) string {
	addr := h.Addresses[0].Addr
	if len(h.Hostnames) > 0 && h.Hostnames[0].Name != "" {
		return fmt.Sprintf("%s (%s)", h.Hostnames[0].Name, addr)
	}
	return addr
}

func serviceText(parts ...string) string {
	nonEmpty := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}
