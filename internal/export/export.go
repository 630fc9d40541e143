// Package export renders task snapshots as JSON, CSV or PDF.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Iron-Ham/tasker/internal/errors"
	"github.com/Iron-Ham/tasker/internal/task"
	"github.com/jung-kurt/gofpdf"
)

// Format names an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatCSV, FormatPDF}
}

// ParseFormat accepts a format name in any case.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatJSON, FormatCSV, FormatPDF:
		return f, nil
	}
	return "", errors.NewValidationError(fmt.Sprintf("unknown export format (want one of %v)", Formats())).
		WithField("format").WithValue(s)
}

// csvHeader is the first CSV row.
var csvHeader = []string{"id", "title", "done", "created_at"}

const timeLayout = "2006-01-02 15:04:05"

// Render writes tasks to w in the given format.
func Render(w io.Writer, tasks []task.Task, format Format) error {
	if tasks == nil {
		tasks = []task.Task{}
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(tasks), "encode json")

	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(csvHeader); err != nil {
			return errors.Wrap(err, "write csv header")
		}
		for _, t := range tasks {
			created := ""
			if !t.CreatedAt.IsZero() {
				created = t.CreatedAt.UTC().Format(time.RFC3339)
			}
			if err := cw.Write([]string{strconv.FormatInt(t.ID, 10), t.Title, strconv.FormatBool(t.Done), created}); err != nil {
				return errors.Wrap(err, "write csv row")
			}
		}
		cw.Flush()
		return errors.Wrap(cw.Error(), "flush csv")

	case FormatPDF:
		return renderPDF(w, tasks)
	}

	return errors.NewValidationError("unknown export format").WithField("format").WithValue(string(format))
}

func renderPDF(w io.Writer, tasks []task.Task) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Tasks", true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Tasks")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	done := 0
	for _, t := range tasks {
		if t.Done {
			done++
		}
	}
	pdf.Cell(0, 6, fmt.Sprintf("%d total, %d done, %d pending", len(tasks), done, len(tasks)-done))
	pdf.Ln(10)

	if len(tasks) == 0 {
		pdf.MultiCell(0, 6, "No tasks.", "0", "L", false)
	}
	for _, t := range tasks {
		line := fmt.Sprintf("%d. [%s] %s", t.ID, t.Mark(), tr(t.Title))
		if !t.CreatedAt.IsZero() {
			line += " (created " + t.CreatedAt.Local().Format(timeLayout) + ")"
		}
		pdf.MultiCell(0, 6, line, "0", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return errors.Wrap(err, "write pdf")
	}
	return nil
}
