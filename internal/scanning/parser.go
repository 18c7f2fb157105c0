package scanning

import (
	"strconv"
	"strings"
)

const (
	hostHeaderPrefix = "Nmap scan report for"
	portHeaderPrefix = "PORT"
	doneMarker       = "scanned in"

	minPortFields  = 3
	minStatsFields = 2

	defaultScanTime = "0"
)

// lineKind is what the classifier decided a single output line is.
type lineKind int

const (
	lineOther lineKind = iota
	lineHostHeader
	linePortHeader
	linePort
	lineSummary
	lineDone
)

// parserState tracks whether a host record is open.
type parserState int

const (
	stateNoHost parserState = iota
	stateInHost
)

// ParseResult is the parser's full view of one output.
type ParseResult struct {
	Hosts []HostScanRecord
	Stats ScanStatistics
	// Orphans counts port lines seen before any host header. They are
	// dropped rather than attached to an invented host.
	Orphans int
}

type parser struct {
	state   parserState
	current HostScanRecord
	result  ParseResult

	lineCounts    map[PortState]int
	summaryCounts map[PortState]int
}

// ParseDetailed runs the line classifier over raw and returns hosts,
// statistics and the number of dropped orphan port lines.
func ParseDetailed(raw string) ParseResult {
	p := &parser{
		state:         stateNoHost,
		lineCounts:    make(map[PortState]int),
		summaryCounts: make(map[PortState]int),
	}
	p.result.Stats.ScanTime = defaultScanTime
	p.result.Hosts = []HostScanRecord{}

	for _, line := range strings.Split(raw, "\n") {
		p.feed(strings.TrimRight(line, "\r"))
	}
	p.flush()
	p.finishStats()
	return p.result
}

// Parse returns the host records found in raw, in input order.
func Parse(raw string) []HostScanRecord {
	return ParseDetailed(raw).Hosts
}

// ParseStatistics returns the aggregate counts and elapsed time in raw.
func ParseStatistics(raw string) ScanStatistics {
	return ParseDetailed(raw).Stats
}

// ParseReport builds a complete report from already sanitized output.
func ParseReport(raw string, meta Metadata) *ScanReport {
	result := ParseDetailed(raw)
	return &ScanReport{
		Metadata: meta,
		Hosts:    result.Hosts,
		Stats:    result.Stats,
	}
}

func classify(line string) lineKind {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, hostHeaderPrefix):
		return lineHostHeader
	case strings.HasPrefix(trimmed, portHeaderPrefix):
		return linePortHeader
	case strings.Contains(trimmed, "/tcp") || strings.Contains(trimmed, "/udp"):
		return linePort
	case strings.HasPrefix(trimmed, "Nmap done:") && strings.Contains(trimmed, doneMarker):
		return lineDone
	case isSummaryLine(trimmed):
		return lineSummary
	default:
		return lineOther
	}
}

func (p *parser) feed(line string) {
	switch classify(line) {
	case lineHostHeader:
		p.flush()
		host := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), hostHeaderPrefix))
		p.current = HostScanRecord{Host: host, Ports: []PortRecord{}}
		p.state = stateInHost
	case linePort:
		p.countPortLine(line)
		record, ok := parsePortLine(line)
		if !ok {
			return
		}
		if p.state == stateNoHost {
			p.result.Orphans++
			return
		}
		p.current.Ports = append(p.current.Ports, record)
	case lineSummary:
		for _, c := range parseSummaryLine(strings.TrimSpace(line)) {
			p.summaryCounts[c.state] += c.count
		}
	case lineDone:
		trimmed := strings.TrimSpace(line)
		idx := strings.Index(trimmed, doneMarker)
		p.result.Stats.ScanTime = strings.TrimSpace(trimmed[idx+len(doneMarker):])
	case linePortHeader, lineOther:
	}
}

func (p *parser) flush() {
	if p.state == stateInHost {
		p.result.Hosts = append(p.result.Hosts, p.current)
	}
	p.current = HostScanRecord{}
	p.state = stateNoHost
}

func parsePortLine(line string) (PortRecord, bool) {
	fields := strings.Fields(line)
	if len(fields) < minPortFields {
		return PortRecord{}, false
	}
	record := PortRecord{
		Port:    fields[0],
		State:   ParsePortState(fields[1]),
		Service: strings.Join(fields[2:], " "),
	}
	if record.State == StateOther {
		record.RawState = fields[1]
	}
	return record, true
}

// countPortLine counts a port line towards the statistics whether or not a
// host is open and whether or not it carries a service column.
func (p *parser) countPortLine(line string) {
	fields := strings.Fields(line)
	if len(fields) < minStatsFields {
		return
	}
	if state := ParsePortState(fields[1]); state != StateOther {
		p.lineCounts[state]++
	}
}

// finishStats applies summary counts only for states with no individual lines.
func (p *parser) finishStats() {
	count := func(state PortState) int {
		if n := p.lineCounts[state]; n > 0 {
			return n
		}
		return p.summaryCounts[state]
	}
	stats := &p.result.Stats
	stats.OpenPorts = count(StateOpen)
	stats.ClosedPorts = count(StateClosed)
	stats.FilteredPorts = count(StateFiltered)
	stats.TotalPorts = stats.OpenPorts + stats.ClosedPorts + stats.FilteredPorts
}

func isSummaryLine(line string) bool {
	return len(parseSummaryLine(line)) > 0
}

type summaryCount struct {
	state PortState
	count int
}

// parseSummaryLine recognizes the count lines nmap prints in place of
// individual rows: "995 closed ports", "Not shown: 995 closed tcp ports
// (conn-refused)" and the "<N> <word> <state> ports" shape. Newer nmap joins
// several states on one line with commas, so every group is returned.
func parseSummaryLine(line string) []summaryCount {
	line = strings.TrimPrefix(line, "Not shown:")
	var counts []summaryCount
	for _, group := range strings.Split(line, ",") {
		if c, ok := parseSummaryGroup(group); ok {
			counts = append(counts, c)
		}
	}
	return counts
}

func parseSummaryGroup(group string) (summaryCount, bool) {
	fields := strings.Fields(group)
	for i := 0; i+1 < len(fields); i++ {
		n, err := strconv.Atoi(fields[i])
		if err != nil || n < 0 {
			continue
		}
		for j := i + 1; j < len(fields) && j <= i+2; j++ {
			state := ParsePortState(fields[j])
			if state == StateOther {
				continue
			}
			if hasPortsWord(fields[j+1:]) {
				return summaryCount{state: state, count: n}, true
			}
		}
	}
	return summaryCount{}, false
}

// hasPortsWord looks for "ports" within the next two tokens, which allows an
// optional protocol word between the state and "ports".
func hasPortsWord(rest []string) bool {
	for i := 0; i < len(rest) && i < 2; i++ {
		if strings.HasPrefix(rest[i], "port") {
			return true
		}
	}
	return false
}
