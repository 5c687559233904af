package format

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

// Tabular values can be printed with --format table.
type Tabular interface {
	TableHeaders() []string
	TableRows() [][]string
}

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - yaml (same keys as json)
// - table (the envelope's "data" must be Tabular; anything else falls back to JSON)
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "yaml":
		return WriteYAML(w, v)
	case "table":
		return WriteTable(w, v, pretty)
	default:
		return fmt.Errorf("unknown format: %s (expected json|yaml|table)", format)
	}
}

// WriteJSON writes strict JSON output for CLI commands.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

// WriteYAML writes v as YAML. v goes through encoding/json first so json tags and
// MarshalJSON methods decide the keys.
func WriteYAML(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(b, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}

// WriteTable renders the envelope's data as a bordered table.
func WriteTable(w io.Writer, v any, pretty bool) error {
	data := v
	if env, ok := v.(map[string]any); ok {
		if d, ok := env["data"]; ok {
			data = d
		}
	}
	t, ok := data.(Tabular)
	if !ok {
		return WriteJSON(w, v, pretty)
	}
	_, err := fmt.Fprintln(w, RenderTable(t.TableHeaders(), t.TableRows()))
	return err
}

func RenderTable(headers []string, rows [][]string) string {
	head := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return head
			}
			return cell
		}).
		String()
}
