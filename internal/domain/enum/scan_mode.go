package enum

import "encoding/json"

// ScanMode decides where keyboard input at the till goes.
type ScanMode int

const (
	ScanModeScan   ScanMode = 0
	ScanModeSearch ScanMode = 1
)

func (m ScanMode) String() string {
	if m == ScanModeSearch {
		return "search"
	}
	return "scan"
}

// ParseScanMode accepts "scan" and "search"; anything else is scan.
func ParseScanMode(s string) ScanMode {
	if s == "search" {
		return ScanModeSearch
	}
	return ScanModeScan
}

func (m ScanMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *ScanMode) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*m = ParseScanMode(str)
	return nil
}
