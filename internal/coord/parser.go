package coord

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// cellRegex matches a column of letters optionally followed by a row number,
// e.g. `A`, `B12`, `AA3`.
var cellRegex = regexp.MustCompile(`^([A-Za-z]+)(\d+)?$`)

// nameRegex matches any key a formula can reference by name.
var nameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Parse creates a new Address from a cell coordinate such as `C7`.
func Parse(raw string) (*Address, error) {
	if raw == "" {
		return nil, fmt.Errorf("coordinate cannot be empty")
	}

	matches := cellRegex.FindStringSubmatch(raw)
	if matches == nil {
		return nil, fmt.Errorf("invalid coordinate format: %q", raw)
	}

	addr := &Address{Column: strings.ToUpper(matches[1]), Row: -1}
	if matches[2] != "" {
		row, err := strconv.Atoi(matches[2])
		if err != nil {
			return nil, fmt.Errorf("invalid row in coordinate %q: %w", raw, err)
		}
		addr.Row = row
	}
	return addr, nil
}

// ValidateKey checks that a snapshot key can be referenced from a formula.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("coordinate cannot be empty")
	}
	if !nameRegex.MatchString(key) {
		return fmt.Errorf("invalid coordinate %q: must start with a letter or underscore and contain only letters, digits and underscores", key)
	}
	return nil
}
