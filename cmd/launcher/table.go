package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// column describes one table column. A non-zero wrap soft-wraps long
// cells such as error details and install paths at that width.
type column struct {
	title string
	right bool
	wrap  int
}

var (
	outcomeColumns = []column{{title: "App"}, {title: "Stage"}, {title: "Result"}, {title: "Detail", wrap: 60}}
	historyColumns = []column{{title: "Time"}, {title: "Run"}, {title: "App"}, {title: "Stage"}, {title: "Result"}, {title: "Detail", wrap: 48}}
	renderColumns  = []column{{title: "Time"}, {title: "Output", wrap: 40}, {title: "Settings"}, {title: "PID", right: true}, {title: "Status", wrap: 40}}
	appColumns     = []column{{title: "App"}, {title: "Enabled"}, {title: "Installed"}, {title: "Executable", wrap: 48}, {title: "Status", wrap: 48}}
)

// renderTable draws rows under cols. A non-empty footer spans the full
// table width below the rows.
func renderTable(cols []column, rows [][]string, footer string) string {
	if len(cols) == 0 {
		return ""
	}

	tw := table.NewWriter()
	style := table.StyleRounded
	style.Format.Footer = text.FormatDefault
	style.Format.FooterAlign = text.AlignLeft
	tw.SetStyle(style)

	header := make(table.Row, len(cols))
	configs := make([]table.ColumnConfig, len(cols))
	for i, c := range cols {
		header[i] = c.title
		configs[i] = table.ColumnConfig{Number: i + 1, AlignHeader: text.AlignLeft}
		if c.right {
			configs[i].Align = text.AlignRight
		}
		if c.wrap > 0 {
			configs[i].WidthMax = c.wrap
			configs[i].WidthMaxEnforcer = text.WrapSoft
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(cols))
		for i := range cols {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	if footer != "" {
		f := make(table.Row, len(cols))
		for i := range f {
			f[i] = footer
		}
		tw.AppendFooter(f, table.RowConfig{AutoMerge: true})
	}
	return tw.Render()
}
