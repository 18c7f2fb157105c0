package scanning

// PortState is the reported state of one port.
type PortState string

const (
	StateOpen     PortState = "open"
	StateClosed   PortState = "closed"
	StateFiltered PortState = "filtered"
	StateOther    PortState = "other"
)

// ParsePortState maps nmap's state column onto PortState. States nmap reports
// beyond the three counted ones (open|filtered, unfiltered, ...) become StateOther.
func ParsePortState(s string) PortState {
	switch PortState(s) {
	case StateOpen, StateClosed, StateFiltered:
		return PortState(s)
	default:
		return StateOther
	}
}

// PortRecord is one row of nmap's port table.
type PortRecord struct {
	Port  string    `json:"port"`
	State PortState `json:"state"`
	// RawState keeps nmap's original text when State is StateOther.
	RawState string `json:"raw_state,omitempty"`
	Service  string `json:"service"`
}

// StateText returns the state as nmap printed it.
func (p PortRecord) StateText() string {
	if p.State == StateOther && p.RawState != "" {
		return p.RawState
	}
	return string(p.State)
}

// HostScanRecord groups the port rows reported for one host.
type HostScanRecord struct {
	Host  string       `json:"host"`
	Ports []PortRecord `json:"ports"`
}

// ScanStatistics aggregates port counts and the elapsed time nmap reported.
type ScanStatistics struct {
	OpenPorts     int    `json:"open_ports"`
	ClosedPorts   int    `json:"closed_ports"`
	FilteredPorts int    `json:"filtered_ports"`
	TotalPorts    int    `json:"total_ports"`
	ScanTime      string `json:"scan_time"`
}

// Metadata identifies the request a report was produced for.
type Metadata struct {
	Timestamp string `json:"timestamp"`
	Target    string `json:"target"`
	Ports     string `json:"ports"`
}

// ScanReport is the structured, exportable result of one scan.
type ScanReport struct {
	Metadata Metadata         `json:"metadata"`
	Hosts    []HostScanRecord `json:"hosts"`
	Stats    ScanStatistics   `json:"stats"`
}

// PortCount returns the number of port rows across all hosts.
func (r *ScanReport) PortCount() int {
	n := 0
	for _, h := range r.Hosts {
		n += len(h.Ports)
	}
	return n
}
