package coord

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddress_RoundTrip(t *testing.T) {
	for _, raw := range []string{"A1", "Z99", "AA3", "B"} {
		t.Run(raw, func(t *testing.T) {
			addr, err := Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, raw, addr.String())

			again, err := Parse(addr.String())
			require.NoError(t, err)
			assert.True(t, addr.Equal(again))
		})
	}
	assert.Equal(t, "", (*Address)(nil).String())
}

func TestAddress_ColumnIndex(t *testing.T) {
	testCases := map[string]int{"A": 0, "Z": 25, "AA": 26, "AZ": 51, "BA": 52}
	for col, want := range testCases {
		addr := &Address{Column: col, Row: -1}
		assert.Equal(t, want, addr.ColumnIndex(), col)
	}
}

func TestSort(t *testing.T) {
	keys := []string{"B1", "total", "A10", "AA1", "A2", "A1", "Z3", "x_1"}
	Sort(keys)
	assert.Equal(t, []string{"A1", "A2", "A10", "B1", "Z3", "AA1", "total", "x_1"}, keys)
}
