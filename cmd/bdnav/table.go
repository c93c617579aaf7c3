package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment = text.Align

const (
	alignLeft  columnAlignment = text.AlignLeft
	alignRight columnAlignment = text.AlignRight
)

// renderTable draws rows in the rounded style under an optional title.
// Columns without an alignment are left aligned; short rows are padded.
func renderTable(title string, headers []string, rows [][]string, aligns []columnAlignment) string {
	return renderTableWithFooter(title, headers, rows, nil, aligns)
}

// renderTableWithFooter is renderTable with a totals row below the body.
func renderTableWithFooter(title string, headers []string, rows [][]string, footer []string, aligns []columnAlignment) string {
	if len(headers) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(title)
	tw.AppendHeader(tableRow(headers, len(headers)))
	for _, row := range rows {
		tw.AppendRow(tableRow(row, len(headers)))
	}
	if len(footer) > 0 {
		tw.AppendFooter(tableRow(footer, len(headers)))
	}

	configs := make([]table.ColumnConfig, len(headers))
	for i := range configs {
		configs[i] = table.ColumnConfig{Number: i + 1, Align: alignLeft, AlignHeader: alignLeft, AlignFooter: alignLeft}
		if i < len(aligns) && aligns[i] != text.AlignDefault {
			configs[i].Align = aligns[i]
			configs[i].AlignFooter = aligns[i]
		}
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func tableRow(cells []string, width int) table.Row {
	row := make(table.Row, width)
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = ""
		}
	}
	return row
}
