package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Count
	}{
		{name: "integer", raw: `120`, want: 120},
		{name: "float with zero fraction", raw: `120.0`, want: 120},
		{name: "fraction rounds", raw: `2.5`, want: 3},
		{name: "quoted", raw: `"42"`, want: 42},
		{name: "null", raw: `null`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Count
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &c))
			assert.Equal(t, tt.want, c)
		})
	}
}

func TestCount_RejectsNonNumbers(t *testing.T) {
	var c Count
	assert.Error(t, json.Unmarshal([]byte(`"many"`), &c))
	assert.Error(t, json.Unmarshal([]byte(`true`), &c))
}

func TestStockLevelsResponse_FractionalFields(t *testing.T) {
	var resp StockLevelsResponse
	body := `{"success":true,"total":2.0,"data":[{"product_name":"Shirt","product_sku":"SH-1","stock":120.0}]}`
	require.NoError(t, json.Unmarshal([]byte(body), &resp))

	assert.Equal(t, Count(2), resp.Total)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, 120, resp.Data[0].Stock.Int())
}
