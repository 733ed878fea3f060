// Package spreadsheet reads gallery listings from a published spreadsheet
// export.
//
// The sheet must carry a header row with the columns "links", "name" and
// "type" (matched case-insensitively). Optional "id", "thumbnail" and
// "created_at" columns are used when present.
package spreadsheet

// Format is the export format served by the spreadsheet URL.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Column names. The required ones are an external contract with whoever
// maintains the sheet.
const (
	ColumnLinks     = "links"
	ColumnName      = "name"
	ColumnType      = "type"
	ColumnID        = "id"
	ColumnThumbnail = "thumbnail"
	ColumnCreatedAt = "created_at"
)

var requiredColumns = []string{ColumnLinks, ColumnName, ColumnType}
