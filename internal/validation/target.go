package validation

import (
	"net/netip"
	"strings"

	"github.com/miekg/dns"
)

const (
	// MaxTargetLength is the longest target expression accepted.
	MaxTargetLength = 255

	maxLabelLength    = 63
	maxShortTailDigit = 3
	ipv4DotCount      = 3
)

// ShellMetacharacters is the blocklist no target may contain.
const ShellMetacharacters = ";|&`$(){}[]"

// AtomKind classifies one comma-separated element of a target expression.
type AtomKind string

const (
	AtomAddress  AtomKind = "address"
	AtomRange    AtomKind = "range"
	AtomHostname AtomKind = "hostname"
)

// TargetAtom is one parsed element of a target expression.
type TargetAtom struct {
	Kind AtomKind
	// Raw is the trimmed text as the user wrote it; this is what nmap sees.
	Raw string
	// Start and End are set for addresses (Start == End) and ranges.
	Start netip.Addr
	End   netip.Addr
}

// ContainsShellMetacharacter reports whether s holds any blocklisted character.
func ContainsShellMetacharacter(s string) bool {
	return strings.ContainsAny(s, ShellMetacharacters)
}

// ParseTarget parses a comma-separated target expression. Each atom must be an
// IP literal, an IP range or a hostname; the first failing atom decides the error.
func ParseTarget(raw string) ([]TargetAtom, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, newError(FieldTarget, "", ReasonEmpty, "target is required")
	}
	if ContainsShellMetacharacter(raw) {
		return nil, newError(FieldTarget, "", ReasonInjection, "target contains forbidden characters")
	}
	if len(raw) > MaxTargetLength {
		return nil, newError(FieldTarget, "", ReasonTooLong,
			"target is %d characters, maximum is %d", len(raw), MaxTargetLength)
	}

	parts := strings.Split(raw, ",")
	atoms := make([]TargetAtom, 0, len(parts))
	for _, part := range parts {
		atom, err := parseTargetAtom(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		atoms = append(atoms, atom)
	}
	return atoms, nil
}

// ValidateTarget returns nil when raw is an acceptable target expression.
func ValidateTarget(raw string) error {
	_, err := ParseTarget(raw)
	return err
}

// IsValidTarget is the boolean form of ValidateTarget.
func IsValidTarget(raw string) bool {
	return ValidateTarget(raw) == nil
}

func parseTargetAtom(atom string) (TargetAtom, error) {
	if atom == "" {
		return TargetAtom{}, newError(FieldTarget, "", ReasonEmptyAtom, "empty entry in target list")
	}
	if strings.Contains(atom, "-") {
		return parseRange(atom)
	}
	if addr, err := parseAddr(atom); err == nil {
		return TargetAtom{Kind: AtomAddress, Raw: atom, Start: addr, End: addr}, nil
	}
	if err := checkHostname(atom); err != nil {
		return TargetAtom{}, err
	}
	return TargetAtom{Kind: AtomHostname, Raw: atom}, nil
}

// parseRange accepts 192.168.1.1-254 (short form, last octet only) and
// start-end with two full addresses of the same family.
func parseRange(atom string) (TargetAtom, error) {
	var startText, endText string

	if strings.Count(atom, ".") == ipv4DotCount {
		idx := strings.LastIndex(atom, "-")
		startText, endText = atom[:idx], atom[idx+1:]
		if !strings.Contains(endText, ".") {
			if !isShortTail(endText) {
				return TargetAtom{}, newError(FieldTarget, atom, ReasonMalformedRange,
					"range tail must be 1-%d digits", maxShortTailDigit)
			}
			dot := strings.LastIndex(startText, ".")
			if dot < 0 {
				return TargetAtom{}, newError(FieldTarget, atom, ReasonMalformedRange, "range start is not an IPv4 address")
			}
			endText = startText[:dot] + "." + endText
		}
	} else {
		bounds := strings.Split(atom, "-")
		if len(bounds) != 2 {
			return TargetAtom{}, newError(FieldTarget, atom, ReasonMalformedRange, "range must have exactly one '-'")
		}
		startText, endText = bounds[0], bounds[1]
	}

	start, err := parseAddr(startText)
	if err != nil {
		return TargetAtom{}, newError(FieldTarget, atom, ReasonInvalidAddress, "range start %q is not an IP address", startText)
	}
	end, err := parseAddr(endText)
	if err != nil {
		return TargetAtom{}, newError(FieldTarget, atom, ReasonInvalidAddress, "range end %q is not an IP address", endText)
	}
	if start.Is4() != end.Is4() {
		return TargetAtom{}, newError(FieldTarget, atom, ReasonMixedFamily, "range mixes IPv4 and IPv6")
	}
	if end.Less(start) {
		return TargetAtom{}, newError(FieldTarget, atom, ReasonDescendingRange, "range end is below range start")
	}
	return TargetAtom{Kind: AtomRange, Raw: atom, Start: start, End: end}, nil
}

func isShortTail(s string) bool {
	if s == "" || len(s) > maxShortTailDigit {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// parseAddr parses an IPv4 or IPv6 literal. Zoned addresses are refused.
func parseAddr(s string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, err
	}
	if addr.Zone() != "" {
		return netip.Addr{}, newError(FieldTarget, s, ReasonInvalidAddress, "zoned addresses are not supported")
	}
	return addr, nil
}

// checkHostname applies the label grammar: 1-63 alphanumerics per label,
// hyphens only inside a label, labels joined by single dots.
func checkHostname(name string) error {
	for _, label := range strings.Split(name, ".") {
		if err := checkLabel(name, label); err != nil {
			return err
		}
	}
	if _, ok := dns.IsDomainName(name); !ok {
		return newError(FieldTarget, name, ReasonInvalidHostname, "not a valid domain name")
	}
	return nil
}

func checkLabel(name, label string) error {
	if label == "" {
		return newError(FieldTarget, name, ReasonInvalidHostname, "hostname has an empty label")
	}
	if len(label) > maxLabelLength {
		return newError(FieldTarget, name, ReasonInvalidHostname,
			"hostname label exceeds %d characters", maxLabelLength)
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return newError(FieldTarget, name, ReasonInvalidHostname, "hostname label starts or ends with '-'")
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		if !isAlphanumeric(c) && c != '-' {
			return newError(FieldTarget, name, ReasonInvalidHostname, "hostname contains %q", c)
		}
	}
	return nil
}

func isAlphanumeric(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
