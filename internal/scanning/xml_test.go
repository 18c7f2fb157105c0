package scanning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<nmaprun scanner="nmap" args="nmap --disable-arp-ping -p 22,80,443 -oX - example.com" start="1700000000" version="7.94">
<host>
<status state="up" reason="syn-ack"/>
<address addr="93.184.216.34" addrtype="ipv4"/>
<hostnames><hostname name="example.com" type="user"/></hostnames>
<ports>
<extraports state="closed" count="997"/>
<port protocol="tcp" portid="22"><state state="open" reason="syn-ack"/><service name="ssh" product="OpenSSH" version="8.9p1"/></port>
<port protocol="tcp" portid="80"><state state="filtered" reason="no-response"/><service name="http"/></port>
<port protocol="udp" portid="68"><state state="open|filtered" reason="no-response"/><service name="dhcpc"/></port>
</ports>
</host>
<host>
<status state="up" reason="syn-ack"/>
<address addr="10.0.0.2" addrtype="ipv4"/>
<ports>
<port protocol="tcp" portid="443"><state state="open" reason="syn-ack"/><service name="https"/></port>
</ports>
</host>
<runstats>
<finished time="1700000002" elapsed="0.45" exit="success"/>
<hosts up="2" down="0" total="2"/>
</runstats>
</nmaprun>`

func TestParseXML(t *testing.T) {
	report, err := ParseXML([]byte(sampleXML))
	require.NoError(t, err)
	require.Len(t, report.Hosts, 2)

	first := report.Hosts[0]
	assert.Equal(t, "example.com (93.184.216.34)", first.Host)
	require.Len(t, first.Ports, 3)
	assert.Equal(t, PortRecord{Port: "22/tcp", State: StateOpen, Service: "ssh OpenSSH 8.9p1"}, first.Ports[0])
	assert.Equal(t, PortRecord{Port: "80/tcp", State: StateFiltered, Service: "http"}, first.Ports[1])
	assert.Equal(t, StateOther, first.Ports[2].State)
	assert.Equal(t, "open|filtered", first.Ports[2].RawState)

	assert.Equal(t, "10.0.0.2", report.Hosts[1].Host)

	assert.Equal(t, ScanStatistics{
		OpenPorts:     2,
		ClosedPorts:   997,
		FilteredPorts: 1,
		TotalPorts:    1000,
		ScanTime:      "0.45 seconds",
	}, report.Stats)
}

func TestParseXMLRejectsGarbage(t *testing.T) {
	_, err := ParseXML([]byte("<nmaprun><host>"))
	assert.Error(t, err)
}
