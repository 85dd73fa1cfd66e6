package history

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/i474232898/weather-lookup/internal/common"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// Format is an export format name.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

var csvHeader = []string{"id", "location", "timestamp", "temperature", "condition"}

// Export renders items in format. It does no I/O.
func Export(items []Item, format Format) (string, error) {
	if items == nil {
		items = []Item{}
	}
	switch format {
	case FormatJSON:
		b, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode json export: %w", err)
		}
		return string(b), nil
	case FormatCSV:
		return exportCSV(items)
	case FormatMarkdown:
		return exportMarkdown(items), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func exportCSV(items []Item) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return "", err
	}
	for _, it := range items {
		row := []string{
			it.ID,
			it.Location,
			it.Timestamp.Format(timestampLayout),
			temperature(it.WeatherData),
			it.WeatherData.Current.Condition.Text,
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("encode csv export: %w", err)
	}
	return buf.String(), nil
}

func exportMarkdown(items []Item) string {
	var b strings.Builder
	b.WriteString("# Weather Search History\n\n")
	b.WriteString("| Location | Date | Temperature | Condition |\n")
	b.WriteString("|----------|------|-------------|-----------|\n")

	for _, it := range items {
		fmt.Fprintf(&b, "| %s | %s | %s°C | %s |\n",
			cell(it.Location),
			it.Timestamp.Format(weather.DateLayout),
			temperature(it.WeatherData),
			cell(it.WeatherData.Current.Condition.Text))
	}
	return b.String()
}

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

func temperature(w weather.WeatherData) string {
	return strconv.FormatFloat(w.Current.TempC, 'f', -1, 64)
}

// cell keeps free text from breaking the table layout.
func cell(s string) string {
	if !common.HasAny(s, "|", "\n", "\r") {
		return s
	}
	r := strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ", "\r", " ")
	return r.Replace(s)
}

// Attachment is a rendered export ready to be served as a download.
type Attachment struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Download names and types the exported text for format. Unknown formats are
// served as plain text.
func Download(data, filename string, format Format) Attachment {
	contentType, ext := "text/plain", "txt"
	switch format {
	case FormatJSON:
		contentType, ext = "application/json", "json"
	case FormatCSV:
		contentType, ext = "text/csv", "csv"
	case FormatMarkdown:
		contentType, ext = "text/markdown", "md"
	}
	if filename == "" {
		filename = DefaultExportName
	}
	return Attachment{
		Filename:    filename + "." + ext,
		ContentType: contentType,
		Body:        []byte(data),
	}
}

// DefaultExportName is the download name used when none is given.
const DefaultExportName = "weather-history"
