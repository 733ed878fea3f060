package display

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/gauthierbraillon/mediamix/internal/content"
)

const urlColumnWidth = 60

// RenderTable writes items as a table to w.
func (f *TerminalFormatter) RenderTable(w io.Writer, items []content.Item) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, WidthMax: urlColumnWidth},
	})
	t.AppendHeader(table.Row{"#", "Name", "Type", "Created", "URL", "Preview"})

	for i, item := range items {
		t.AppendRow(table.Row{
			i + 1,
			item.Name,
			item.Type,
			f.FormatTimestamp(item.CreatedAt),
			f.TruncateText(item.URL, urlColumnWidth),
			f.formatPreview(item),
		})
	}

	t.AppendFooter(table.Row{"", "Total", len(items)})
	t.Render()
}
