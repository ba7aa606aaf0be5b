// File: internal/scenario/baseline.go
package scenario

import (
	"fmt"
	"os"

	"github.com/xkilldash9x/autoscan-cli/internal/invoker"
)

// LoadExpectedCount reads the approved raw difference count. The file uses
// the same single-line format the differential plugin writes.
func LoadExpectedCount(path string) (int, error) {
	count, err := invoker.ReadDifferenceCount(path)
	if err != nil {
		return 0, fmt.Errorf("baseline count: %w", err)
	}
	return count, nil
}

// LoadExpectedReport reads the approved per-rule difference report,
// byte-for-byte.
func LoadExpectedReport(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("baseline report: %w", err)
	}
	return string(raw), nil
}
