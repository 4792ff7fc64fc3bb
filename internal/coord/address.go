package coord

import (
	"sort"
	"strconv"
)

// Address is a parsed cell coordinate.
type Address struct {
	Column string
	Row    int // -1 indicates no row is present.
}

// String serializes the Address into its canonical form.
func (a *Address) String() string {
	if a == nil {
		return ""
	}
	if a.Row < 0 {
		return a.Column
	}
	return a.Column + strconv.Itoa(a.Row)
}

// Equal checks two addresses for equality.
func (a *Address) Equal(other *Address) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.Column == other.Column && a.Row == other.Row
}

// ColumnIndex returns the zero-based index of the column, `A` = 0, `Z` = 25,
// `AA` = 26.
func (a *Address) ColumnIndex() int {
	idx := 0
	for _, r := range a.Column {
		idx = idx*26 + int(r-'A'+1)
	}
	return idx - 1
}

// Less orders coordinates column first, then row. Keys that are not cell
// coordinates sort after all cell coordinates, alphabetically.
func Less(a, b string) bool {
	addrA, errA := Parse(a)
	addrB, errB := Parse(b)
	switch {
	case errA != nil && errB != nil:
		return a < b
	case errA != nil:
		return false
	case errB != nil:
		return true
	}

	if ca, cb := addrA.ColumnIndex(), addrB.ColumnIndex(); ca != cb {
		return ca < cb
	}
	if addrA.Row != addrB.Row {
		return addrA.Row < addrB.Row
	}
	return a < b
}

// Sort orders keys in place using Less.
func Sort(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool { return Less(keys[i], keys[j]) })
}
