package diag

// Severity orders diagnostics; a bag fails the check once it holds SevError.
type Severity uint8

const (
	// SevInfo carries side reports such as phase timings.
	SevInfo Severity = iota
	// SevWarning marks suspicious code that still resolves, a repeated
	// `using` link for instance.
	SevWarning
	SevError
)

var severityNames = [...]struct{ id, label string }{
	SevInfo:    {"INFO", "info"},
	SevWarning: {"WARNING", "warning"},
	SevError:   {"ERROR", "error"},
}

// String returns the upper-case name used in JSON output.
func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s].id
	}
	return "UNKNOWN"
}

// Label returns the lower-case name printed in diagnostic headers.
func (s Severity) Label() string {
	if int(s) < len(severityNames) {
		return severityNames[s].label
	}
	return "unknown"
}
