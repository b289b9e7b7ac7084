package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voipops-io/pbxapi-client/internal/constants"
	"github.com/voipops-io/pbxapi-client/pkg/pbxapi"
)

func TestParseDataArgs(t *testing.T) {
	t.Run("parses key=value pairs", func(t *testing.T) {
		data, err := parseDataArgs([]string{"extension=1001", "name=Front Desk"})
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{
			"extension": "1001",
			"name":      "Front Desk",
		}, data)
	})

	t.Run("keeps equals signs inside values", func(t *testing.T) {
		data, err := parseDataArgs([]string{"dial=SIP/1001&SIP/1002,20,r=t"})
		require.NoError(t, err)
		assert.Equal(t, "SIP/1001&SIP/1002,20,r=t", data["dial"])
	})

	t.Run("rejects pairs without equals", func(t *testing.T) {
		_, err := parseDataArgs([]string{"extension"})
		require.Error(t, err)
		assert.ErrorIs(t, err, constants.ErrInvalidDataPair)
	})

	t.Run("rejects empty keys", func(t *testing.T) {
		_, err := parseDataArgs([]string{"=1001"})
		require.Error(t, err)
		assert.ErrorIs(t, err, constants.ErrInvalidDataPair)
	})
}

func TestReadPayload(t *testing.T) {
	t.Run("rejects data and file together", func(t *testing.T) {
		_, err := readPayload([]string{"extension=1001"}, "payload.json")
		assert.ErrorIs(t, err, constants.ErrDataConflict)
	})

	t.Run("requires data or file", func(t *testing.T) {
		_, err := readPayload(nil, "")
		assert.ErrorIs(t, err, constants.ErrDataRequired)
	})

	t.Run("parses data pairs", func(t *testing.T) {
		data, err := readPayload([]string{"extension=1001"}, "")
		require.NoError(t, err)
		assert.Equal(t, "1001", data["extension"])
	})

	t.Run("reads a JSON file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "payload.json")
		err := os.WriteFile(path, []byte(`{"extension":"1001","tech":"sip"}`), 0o600)
		require.NoError(t, err)

		data, err := readPayload(nil, path)
		require.NoError(t, err)
		assert.Equal(t, "1001", data["extension"])
		assert.Equal(t, "sip", data["tech"])
	})

	t.Run("rejects non-object JSON", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "payload.json")
		err := os.WriteFile(path, []byte(`["1001","1002"]`), 0o600)
		require.NoError(t, err)

		_, err = readPayload(nil, path)
		assert.ErrorIs(t, err, constants.ErrInvalidDataJSON)
	})

	t.Run("reports missing files", func(t *testing.T) {
		_, err := readPayload(nil, filepath.Join(t.TempDir(), "missing.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read data file")
	})
}

func TestReloadOptions(t *testing.T) {
	assert.Nil(t, reloadOptions(false))

	opts := reloadOptions(true)
	require.NotNil(t, opts)
	require.NotNil(t, opts.Reload)
	assert.False(t, *opts.Reload)
}

func TestCollectRecordColumns(t *testing.T) {
	records := []map[string]interface{}{
		{"extension": "1001", "name": "Front Desk"},
		{"extension": "1002", "tech": "pjsip"},
	}

	columns := collectRecordColumns(records)
	assert.Equal(t, []string{"extension", "name", "tech"}, columns)
}

func TestFormatCellValue(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected string
	}{
		{
			name:     "nil",
			value:    nil,
			expected: "",
		},
		{
			name:     "string",
			value:    "1001",
			expected: "1001",
		},
		{
			name:     "number",
			value:    float64(20),
			expected: "20",
		},
		{
			name:     "bool",
			value:    true,
			expected: "true",
		},
		{
			name:     "nested map compacts to JSON",
			value:    map[string]interface{}{"tech": "sip"},
			expected: `{"tech":"sip"}`,
		},
		{
			name:     "nested array compacts to JSON",
			value:    []interface{}{"1001", "1002"},
			expected: `["1001","1002"]`,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, formatCellValue(testCase.value))
		})
	}

	t.Run("long values are truncated", func(t *testing.T) {
		long := make([]byte, constants.ValueDisplayLength*2)
		for i := range long {
			long[i] = 'x'
		}

		formatted := formatCellValue(string(long))
		assert.Len(t, formatted, constants.ValueDisplayLength)
		assert.Equal(t, pbxapi.Truncate(string(long), constants.ValueDisplayLength), formatted)
	})
}

func TestFieldsParams(t *testing.T) {
	assert.Nil(t, fieldsParams(nil))
	assert.Nil(t, fieldsParams([]string{}))

	params := fieldsParams([]string{"extension", "name"})
	require.NotNil(t, params)
	assert.Equal(t, []string{"extension", "name"}, params.Fields)
}
