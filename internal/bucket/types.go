// Package bucket lists generated media stored in one object-storage bucket.
//
// It speaks the storage REST API exposed at {base}/storage/v1: objects are
// listed with POST /object/list/{bucket} and served publicly from
// /object/public/{bucket}/{path}.
package bucket

// PageSize is the number of objects requested per listing.
const PageSize = 100

// PlaceholderName is the marker object that keeps empty folders visible.
// It is never shown in the gallery.
const PlaceholderName = ".emptyFolderPlaceholder"

// Object is one entry of a bucket listing.
type Object struct {
	ID        string
	Name      string
	Path      string
	PublicURL string
	CreatedAt string
	MIMEType  string
	Size      int64
}

type listRequest struct {
	Prefix string `json:"prefix"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	SortBy sortBy `json:"sortBy"`
}

type sortBy struct {
	Column string `json:"column"`
	Order  string `json:"order"`
}

type listEntry struct {
	ID        *string `json:"id"`
	Name      string  `json:"name"`
	CreatedAt string  `json:"created_at"`
	Metadata  *struct {
		MIMEType string `json:"mimetype"`
		Size     int64  `json:"size"`
	} `json:"metadata"`
}
