package scanning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleOutput = `Nmap scan report for example.com
PORT     STATE    SERVICE
22/tcp   open     ssh
80/tcp   closed   http
Nmap done: 1 IP address scanned in 0.45 seconds
`

func TestParseExampleScenario(t *testing.T) {
	hosts := Parse(exampleOutput)
	assert.Equal(t, []HostScanRecord{{
		Host: "example.com",
		Ports: []PortRecord{
			{Port: "22/tcp", State: StateOpen, Service: "ssh"},
			{Port: "80/tcp", State: StateClosed, Service: "http"},
		},
	}}, hosts)

	assert.Equal(t, ScanStatistics{
		OpenPorts:   1,
		ClosedPorts: 1,
		TotalPorts:  2,
		ScanTime:    "0.45 seconds",
	}, ParseStatistics(exampleOutput))
}

func TestParseTwoHostsKeepsOrderAndOwnership(t *testing.T) {
	raw := `Starting Nmap 7.94 ( https://nmap.org )
Nmap scan report for alpha.lan (10.0.0.1)
Host is up (0.00050s latency).
PORT    STATE SERVICE
22/tcp  open  ssh
443/tcp open  https
Nmap scan report for 10.0.0.2
Host is up.
PORT   STATE    SERVICE
53/udp filtered domain
Nmap done: 2 IP addresses (2 hosts up) scanned in 1.20 seconds`

	hosts := Parse(raw)
	require.Len(t, hosts, 2)

	assert.Equal(t, "alpha.lan (10.0.0.1)", hosts[0].Host)
	require.Len(t, hosts[0].Ports, 2)
	assert.Equal(t, "22/tcp", hosts[0].Ports[0].Port)
	assert.Equal(t, "443/tcp", hosts[0].Ports[1].Port)

	assert.Equal(t, "10.0.0.2", hosts[1].Host)
	require.Len(t, hosts[1].Ports, 1)
	assert.Equal(t, PortRecord{Port: "53/udp", State: StateFiltered, Service: "domain"}, hosts[1].Ports[0])
}

func TestParseStatisticsCountsByState(t *testing.T) {
	raw := `Nmap scan report for host
22/tcp open ssh
80/tcp open http
161/udp filtered snmp`

	stats := ParseStatistics(raw)
	assert.Equal(t, 2, stats.OpenPorts)
	assert.Equal(t, 1, stats.FilteredPorts)
	assert.Equal(t, 0, stats.ClosedPorts)
	assert.Equal(t, 3, stats.TotalPorts)
	assert.Equal(t, "0", stats.ScanTime)
}

func TestParseServiceJoinsRemainingFields(t *testing.T) {
	raw := "Nmap scan report for h\n22/tcp open ssh   OpenSSH 8.9p1   Ubuntu\n"
	hosts := Parse(raw)
	require.Len(t, hosts, 1)
	require.Len(t, hosts[0].Ports, 1)
	assert.Equal(t, "ssh OpenSSH 8.9p1 Ubuntu", hosts[0].Ports[0].Service)
}

func TestParseOtherStateKeepsRawText(t *testing.T) {
	raw := "Nmap scan report for h\n68/udp open|filtered dhcpc\n"
	hosts := Parse(raw)
	require.Len(t, hosts[0].Ports, 1)

	port := hosts[0].Ports[0]
	assert.Equal(t, StateOther, port.State)
	assert.Equal(t, "open|filtered", port.RawState)
	assert.Equal(t, "open|filtered", port.StateText())
	assert.Equal(t, 0, ParseStatistics(raw).TotalPorts)
}

func TestParseDropsOrphanPortLines(t *testing.T) {
	raw := `22/tcp open ssh
Nmap scan report for late.example
80/tcp open http`

	result := ParseDetailed(raw)
	assert.Equal(t, 1, result.Orphans)
	require.Len(t, result.Hosts, 1)
	assert.Equal(t, "late.example", result.Hosts[0].Host)
	require.Len(t, result.Hosts[0].Ports, 1)
	assert.Equal(t, "80/tcp", result.Hosts[0].Ports[0].Port)
	// Orphans still count towards the statistics.
	assert.Equal(t, 2, result.Stats.OpenPorts)
}

func TestParseSkipsShortPortLines(t *testing.T) {
	raw := "Nmap scan report for h\n22/tcp open\n"
	result := ParseDetailed(raw)
	require.Len(t, result.Hosts, 1)
	assert.Empty(t, result.Hosts[0].Ports)
	assert.Equal(t, 1, result.Stats.OpenPorts)
}

func TestParseHeaderLineIsNotAPort(t *testing.T) {
	raw := "Nmap scan report for h\nPORT/tcp STATE SERVICE\n"
	hosts := Parse(raw)
	require.Len(t, hosts, 1)
	assert.Empty(t, hosts[0].Ports)
}

func TestParseSummaryFallback(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ScanStatistics
	}{
		{
			name: "summary only",
			raw:  "Nmap scan report for h\nAll ports shown\n995 closed ports\n",
			want: ScanStatistics{ClosedPorts: 995, TotalPorts: 995, ScanTime: "0"},
		},
		{
			name: "not shown with protocol",
			raw: "Nmap scan report for h\nNot shown: 995 closed tcp ports (conn-refused)\n" +
				"22/tcp open ssh\n",
			want: ScanStatistics{OpenPorts: 1, ClosedPorts: 995, TotalPorts: 996, ScanTime: "0"},
		},
		{
			name: "several states on one not shown line",
			raw: "Nmap scan report for h\nNot shown: 65530 closed tcp ports (reset), 3 filtered tcp ports (no-response)\n" +
				"22/tcp open ssh\n",
			want: ScanStatistics{OpenPorts: 1, ClosedPorts: 65530, FilteredPorts: 3, TotalPorts: 65534, ScanTime: "0"},
		},
		{
			name: "summary ignored when lines exist for state",
			raw: "Nmap scan report for h\nNot shown: 998 closed ports\n" +
				"80/tcp closed http\n443/tcp closed https\n",
			want: ScanStatistics{ClosedPorts: 2, TotalPorts: 2, ScanTime: "0"},
		},
		{
			name: "word between count and state",
			raw:  "Nmap scan report for h\n1000 scanned filtered ports\n",
			want: ScanStatistics{FilteredPorts: 1000, TotalPorts: 1000, ScanTime: "0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseStatistics(tt.raw))
		})
	}
}

func TestParseEmptyInput(t *testing.T) {
	result := ParseDetailed("")
	assert.NotNil(t, result.Hosts)
	assert.Empty(t, result.Hosts)
	assert.Equal(t, ScanStatistics{ScanTime: "0"}, result.Stats)
}

func TestParseHandlesCRLF(t *testing.T) {
	raw := "Nmap scan report for h\r\n22/tcp open ssh\r\nNmap done: 1 IP address scanned in 2.00 seconds\r\n"
	result := ParseDetailed(raw)
	require.Len(t, result.Hosts, 1)
	assert.Equal(t, "h", result.Hosts[0].Host)
	assert.Equal(t, "ssh", result.Hosts[0].Ports[0].Service)
	assert.Equal(t, "2.00 seconds", result.Stats.ScanTime)
}

func TestParseReportCarriesMetadata(t *testing.T) {
	meta := Metadata{Timestamp: "2024-01-02_03-04-05", Target: "example.com", Ports: "22,80"}
	report := ParseReport(exampleOutput, meta)
	assert.Equal(t, meta, report.Metadata)
	assert.Equal(t, 2, report.PortCount())
	assert.Equal(t, 2, report.Stats.TotalPorts)
}
