package port

import "supercrm/internal/document"

// DocumentRenderer turns assembled invoice data into a printable file.
type DocumentRenderer interface {
	Render(data *document.Data) ([]byte, error)
	ContentType() string
}
