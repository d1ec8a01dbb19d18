// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render prints conversion outcomes and history records.
//
// Text output keeps stdout scriptable: one resolved output path per
// conversion, with failures on the error stream. JSON emits one object per
// line and YAML one document per outcome.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/conver/internal/convert"
	"github.com/pdiddy/conver/pkg/types"
)

// ParseFormat parses a report format name. The empty string selects text.
func ParseFormat(s string) (types.ReportFormat, error) {
	switch types.ReportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", types.ReportText:
		return types.ReportText, nil
	case types.ReportJSON:
		return types.ReportJSON, nil
	case types.ReportYAML:
		return types.ReportYAML, nil
	default:
		return "", fmt.Errorf("invalid report format %q (must be text, json, or yaml)", s)
	}
}

// Renderer writes outcomes in one format.
type Renderer struct {
	format types.ReportFormat
	out    io.Writer
	errOut io.Writer
	styles *lipgloss.Renderer
}

// New creates a Renderer. Text-mode failures go to errOut.
func New(format types.ReportFormat, out, errOut io.Writer) *Renderer {
	return &Renderer{
		format: format,
		out:    out,
		errOut: errOut,
		styles: lipgloss.NewRenderer(out),
	}
}

// outcomeView is the serialized form of a convert.Outcome.
type outcomeView struct {
	Status    convert.OutcomeStatus `json:"status" yaml:"status"`
	Input     string                `json:"input" yaml:"input"`
	Output    string                `json:"output" yaml:"output"`
	ErrorCode int                   `json:"error_code" yaml:"error_code"`
	Message   string                `json:"message,omitempty" yaml:"message,omitempty"`
}

func viewOf(o convert.Outcome) outcomeView {
	v := outcomeView{
		Status: o.Status,
		Input:  o.Job.Input,
		Output: o.Output,
	}
	if v.Output == "" {
		v.Output = o.Job.Output
	}
	if o.Err != nil {
		v.Message = o.Err.Error()
		if code, ok := convert.Code(o.Err); ok {
			v.ErrorCode = int(code)
		} else {
			v.ErrorCode = 1
		}
	}
	return v
}

// Outcome prints one job's outcome.
func (r *Renderer) Outcome(o convert.Outcome) error {
	switch r.format {
	case types.ReportJSON:
		return json.NewEncoder(r.out).Encode(viewOf(o))
	case types.ReportYAML:
		return r.yamlDoc(viewOf(o))
	}

	if o.Status == convert.OutcomeFailed {
		_, err := fmt.Fprintf(r.errOut, "Error: %v\n", o.Err)
		return err
	}
	_, err := fmt.Fprintln(r.out, o.Output)
	return err
}

// Summary prints batch totals. Only text output carries a summary; JSON
// and YAML consumers count outcomes themselves.
func (r *Renderer) Summary(res convert.BatchResult) error {
	if r.format != types.ReportText {
		return nil
	}
	rows := []summaryRow{
		{Label: "Converted", Value: strconv.Itoa(res.Converted)},
		{Label: "Skipped", Value: strconv.Itoa(res.Skipped)},
		{Label: "Failed", Value: strconv.Itoa(res.Failed)},
		{Label: "Total", Value: strconv.Itoa(res.Total())},
	}
	_, err := fmt.Fprintln(r.out, r.renderSummary(rows))
	return err
}

type summaryRow struct {
	Label string
	Value string
}

func (r *Renderer) renderSummary(rows []summaryRow) string {
	labelStyle := r.styles.NewStyle().Foreground(lipgloss.Color("#7A8291"))
	valueStyle := r.styles.NewStyle().Bold(true)

	labelWidth, valueWidth := 0, 0
	for _, row := range rows {
		labelWidth = max(labelWidth, len(row.Label))
		valueWidth = max(valueWidth, len(row.Value))
	}

	hline := strings.Repeat("-", labelWidth+valueWidth+3)
	lines := []string{hline}
	for _, row := range rows {
		label := labelStyle.Render(padRight(row.Label, labelWidth))
		value := valueStyle.Render(padLeft(row.Value, valueWidth))
		lines = append(lines, label+" | "+value)
	}
	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

// History prints history records, newest first.
func (r *Renderer) History(records []types.Record) error {
	switch r.format {
	case types.ReportJSON:
		if records == nil {
			records = []types.Record{}
		}
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case types.ReportYAML:
		return r.yamlDoc(records)
	}

	if len(records) == 0 {
		_, err := fmt.Fprintln(r.out, "No conversions recorded.")
		return err
	}

	header := r.styles.NewStyle().Bold(true)
	failed := r.styles.NewStyle().Foreground(lipgloss.Color("#BF616A"))
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Started", "Code", "Input", "Output", "Took").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			if col == 2 && row >= 0 && row < len(records) && records[row].ErrorCode != types.CodeOK {
				return failed
			}
			return r.styles.NewStyle()
		})
	for _, rec := range records {
		t.Row(
			strconv.FormatInt(rec.ID, 10),
			rec.StartedAt.Local().Format("2006-01-02 15:04:05"),
			codeLabel(rec.ErrorCode),
			shorten(rec.Input, 40),
			shorten(rec.Output, 40),
			rec.Duration.Round(10*time.Millisecond).String(),
		)
	}

	if _, err := fmt.Fprintln(r.out, t.String()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(r.out, "%d conversions\n", len(records))
	return err
}

func (r *Renderer) yamlDoc(v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	if _, err := io.WriteString(r.out, "---\n"); err != nil {
		return err
	}
	_, err = r.out.Write(data)
	return err
}

func codeLabel(c types.ErrorCode) string {
	if c == types.CodeOK {
		return "0"
	}
	return fmt.Sprintf("%d %s", int(c), c)
}

// shorten keeps the tail of long paths, where the file name is.
func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-(n-3):]
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
