package testkit

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrdersGeneratorIsDeterministic(t *testing.T) {
	a := NewOrdersGenerator(DefaultOrdersConfig()).CSV()
	b := NewOrdersGenerator(DefaultOrdersConfig()).CSV()
	assert.Equal(t, a, b)
}

func TestOrdersCSVShape(t *testing.T) {
	records, err := csv.NewReader(bytes.NewReader(OrdersCSV(10))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 11)
	assert.Equal(t, OrdersColumns, records[0])
	for _, r := range records[1:] {
		assert.Len(t, r, len(OrdersColumns))
		assert.Contains(t, []string{"yes", "no"}, r[7])
	}
}
