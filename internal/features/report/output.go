package report

import (
	"fmt"
	"strings"
	"time"
)

// RenderOutput converts generated data into the format-specific logical
// payload stored as formatted_output. Excel and PDF payloads describe
// workbooks and documents; no binary file is produced here.
func RenderOutput(data *ReportData, format string) (any, error) {
	switch format {
	case FormatJSON, "":
		return data, nil
	case FormatCSV:
		var out [][]any
		if len(data.Columns) > 0 {
			header := make([]any, 0, len(data.Columns))
			for _, c := range data.Columns {
				header = append(header, c.Label)
			}
			out = append(out, header)
		}
		for _, row := range data.Rows {
			values := make([]any, 0, len(data.Columns))
			for _, c := range data.Columns {
				values = append(values, row[c.Field])
			}
			out = append(out, values)
		}
		return map[string]any{
			"format":   FormatCSV,
			"data":     out,
			"filename": ExportFilename(data.TemplateInfo.Name, FormatCSV, data.GenerationInfo.GeneratedAt),
		}, nil
	case FormatExcel:
		return map[string]any{
			"format": FormatExcel,
			"sheets": map[string]any{
				"Report Data": map[string]any{
					"columns": data.Columns,
					"rows":    data.Rows,
				},
			},
			"filename": ExportFilename(data.TemplateInfo.Name, FormatExcel, data.GenerationInfo.GeneratedAt),
		}, nil
	case FormatPDF:
		return map[string]any{
			"format":   FormatPDF,
			"template": "report_template",
			"data":     data,
			"filename": ExportFilename(data.TemplateInfo.Name, FormatPDF, data.GenerationInfo.GeneratedAt),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// ExportFilename builds the canonical export filename:
// template name with spaces replaced by underscores, a timestamp and
// the format's extension.
func ExportFilename(templateName, format string, at time.Time) string {
	ext := map[string]string{
		FormatCSV:   "csv",
		FormatExcel: "xlsx",
		FormatPDF:   "pdf",
		FormatJSON:  "json",
	}[format]
	if ext == "" {
		ext = format
	}
	name := strings.ReplaceAll(templateName, " ", "_")
	return fmt.Sprintf("%s_%s.%s", name, at.Format("2006-01-02_15-04-05"), ext)
}
