package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"github.com/voipops-io/pbxapi-client/internal/constants"
	"github.com/voipops-io/pbxapi-client/pkg/pbxapi"
	"gopkg.in/yaml.v3"
)

// renderDocument writes an API document to stdout in the configured output
// format.
func renderDocument(doc *pbxapi.Document) error {
	if doc == nil {
		return nil
	}

	if doc.NonJSON {
		_, _ = fmt.Fprintf(os.Stdout, "Non-JSON response (status %d):\n%s\n", doc.StatusCode, doc.Excerpt)

		return nil
	}

	output := viper.GetString("output")
	switch output {
	case constants.FormatJSON:
		return renderJSON(doc.Body)
	case constants.FormatYAML:
		return renderYAML(doc.Body)
	default:
		return renderDocumentTable(doc)
	}
}

// renderJSON writes a value to stdout as indented JSON.
func renderJSON(data interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to JSON: %w", err)
	}

	return nil
}

// renderYAML writes a value to stdout as YAML.
func renderYAML(data interface{}) error {
	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(constants.JSONIndentSize)

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to YAML: %w", err)
	}

	return nil
}

func renderDocumentTable(doc *pbxapi.Document) error {
	// A single object renders as property/value rows, an array as one row
	// per record.
	if obj := doc.Object(); obj != nil {
		return renderObjectTable(obj)
	}

	if doc.Array() != nil {
		return renderRecordsTable(doc.Records())
	}

	// Scalar or null body
	_, _ = fmt.Fprintf(os.Stdout, "%v\n", doc.Body)

	return nil
}

// renderRecordsTable renders a list of records with one row per record and
// the union of field names as columns.
func renderRecordsTable(records []map[string]interface{}) error {
	if len(records) == 0 {
		_, _ = os.Stdout.WriteString("No records found\n")

		return nil
	}

	columns := collectRecordColumns(records)

	headerCells := make([]any, len(columns))
	for i, column := range columns {
		headerCells[i] = column
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header(headerCells...)

	for _, record := range records {
		row := make([]string, 0, len(columns))
		for _, column := range columns {
			row = append(row, formatCellValue(record[column]))
		}

		_ = table.Append(row)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render records table: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "\n%d record(s)\n", len(records))

	return nil
}

// renderObjectTable renders a single record as property/value rows.
func renderObjectTable(obj map[string]interface{}) error {
	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	for _, key := range keys {
		err := table.Append([]string{key, formatCellValue(obj[key])})
		if err != nil {
			return fmt.Errorf("failed to append table row: %w", err)
		}
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// collectRecordColumns returns the sorted union of field names across records.
func collectRecordColumns(records []map[string]interface{}) []string {
	seen := make(map[string]bool)

	var columns []string

	for _, record := range records {
		for key := range record {
			if !seen[key] {
				seen[key] = true

				columns = append(columns, key)
			}
		}
	}

	sort.Strings(columns)

	return columns
}

// formatCellValue formats a record field for table display. Nested values
// are compacted to JSON; long values are truncated.
func formatCellValue(value interface{}) string {
	if value == nil {
		return ""
	}

	var text string

	switch v := value.(type) {
	case string:
		text = v
	case map[string]interface{}, []interface{}:
		raw, err := json.Marshal(v)
		if err != nil {
			text = fmt.Sprintf("%v", v)
		} else {
			text = string(raw)
		}
	default:
		text = fmt.Sprintf("%v", v)
	}

	return pbxapi.Truncate(text, constants.ValueDisplayLength)
}

// parseDataArgs converts repeated key=value flags into a record payload.
// Values stay strings; the PBX API expects string fields throughout.
func parseDataArgs(pairs []string) (map[string]interface{}, error) {
	data := make(map[string]interface{}, len(pairs))

	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("%w: '%s'", constants.ErrInvalidDataPair, pair)
		}

		data[key] = value
	}

	return data, nil
}

// readPayload builds the mutation payload from --data pairs or a JSON file.
// "-" reads the JSON document from stdin.
func readPayload(dataPairs []string, filePath string) (map[string]interface{}, error) {
	if len(dataPairs) > 0 && filePath != "" {
		return nil, constants.ErrDataConflict
	}

	if len(dataPairs) > 0 {
		return parseDataArgs(dataPairs)
	}

	if filePath == "" {
		return nil, constants.ErrDataRequired
	}

	var (
		raw []byte
		err error
	)

	if filePath == "-" {
		raw, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read data from stdin: %w", err)
		}
	} else {
		raw, err = os.ReadFile(filePath) // #nosec G304 -- path comes from an explicit CLI flag
		if err != nil {
			return nil, fmt.Errorf("failed to read data file: %w", err)
		}
	}

	var data map[string]interface{}

	err = json.Unmarshal(raw, &data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", constants.ErrInvalidDataJSON, err)
	}

	return data, nil
}

// reloadOptions maps a --no-reload flag onto mutation options.
func reloadOptions(noReload bool) *pbxapi.MutateOptions {
	if !noReload {
		return nil
	}

	return &pbxapi.MutateOptions{Reload: pbxapi.Bool(false)}
}
