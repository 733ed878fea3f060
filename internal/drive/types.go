// Package drive lists the files of one folder through a drive-style files
// API authenticated by an API key.
package drive

// File is one child of the listed folder.
type File struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	MIMEType      string `json:"mimeType"`
	CreatedTime   string `json:"createdTime"`
	WebViewLink   string `json:"webViewLink"`
	ThumbnailLink string `json:"thumbnailLink"`
}

// Fields lists the file properties requested from the API.
const Fields = "files(id,name,mimeType,createdTime,webViewLink,thumbnailLink)"

type filesResponse struct {
	Files []File `json:"files"`
}
