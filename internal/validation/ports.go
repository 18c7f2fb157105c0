package validation

import (
	"errors"
	"strconv"
	"strings"
)

const (
	// MinPort and MaxPort bound every port number nmap accepts.
	MinPort = 0
	MaxPort = 65535

	expectedPortRangeParts = 2
)

// PortRange is one comma-separated element of a port expression.
// A single port has Start == End.
type PortRange struct {
	Start int
	End   int
}

// Count returns how many ports the range covers.
func (r PortRange) Count() int {
	return r.End - r.Start + 1
}

// ParsePorts parses a port expression such as "22,80,8000-8100".
func ParsePorts(raw string) ([]PortRange, error) {
	if !isPortCharset(raw) {
		return nil, newError(FieldPorts, "", ReasonCharset, "only digits, ',' and '-' are allowed")
	}

	parts := strings.Split(raw, ",")
	ranges := make([]PortRange, 0, len(parts))
	for _, part := range parts {
		r, err := parsePortPart(part)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

// ValidatePorts returns nil when raw is an acceptable port expression.
func ValidatePorts(raw string) error {
	_, err := ParsePorts(raw)
	return err
}

// IsValidPorts is the boolean form of ValidatePorts.
func IsValidPorts(raw string) bool {
	return ValidatePorts(raw) == nil
}

func isPortCharset(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && c != ',' && c != '-' {
			return false
		}
	}
	return true
}

func parsePortPart(part string) (PortRange, error) {
	if !strings.Contains(part, "-") {
		port, err := parsePort(part)
		if err != nil {
			return PortRange{}, err
		}
		return PortRange{Start: port, End: port}, nil
	}

	bounds := strings.Split(part, "-")
	if len(bounds) != expectedPortRangeParts {
		return PortRange{}, newError(FieldPorts, part, ReasonArity, "port range must be start-end")
	}
	start, err := parsePort(bounds[0])
	if err != nil {
		return PortRange{}, err
	}
	end, err := parsePort(bounds[1])
	if err != nil {
		return PortRange{}, err
	}
	if start > end {
		return PortRange{}, newError(FieldPorts, part, ReasonDescendingRange, "range start must not exceed range end")
	}
	return PortRange{Start: start, End: end}, nil
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, newError(FieldPorts, s, ReasonOutOfRange, "port must be %d-%d", MinPort, MaxPort)
		}
		return 0, newError(FieldPorts, s, ReasonNotNumeric, "port is not a number")
	}
	if port < MinPort || port > MaxPort {
		return 0, newError(FieldPorts, s, ReasonOutOfRange, "port must be %d-%d", MinPort, MaxPort)
	}
	return port, nil
}
