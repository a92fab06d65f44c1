package document

import "errors"

// Extraction errors surfaced at the pipeline boundary
var (
	// ErrDocumentUnreadable means no engine could recover any text from the
	// upload: corrupt PDF, empty file, or a text file that is not UTF-8.
	ErrDocumentUnreadable = errors.New("document is unreadable: no text could be extracted")

	// ErrUnsupportedType means the upload is neither PDF nor plain text.
	ErrUnsupportedType = errors.New("unsupported document type")
)
