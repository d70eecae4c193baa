package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"boardanalyzer/internal/services"
)

const (
	// FormFileField is the multipart field carrying the board export
	FormFileField = "file"

	// multipartOverhead is the slack allowed on top of the document limit
	// for multipart boundaries and part headers.
	multipartOverhead = 64 << 10

	// multipartMemory is kept in memory before parts spill to temp files.
	multipartMemory = 8 << 20
)

// readUpload reads the board export from the multipart "file" field. It
// returns services.ErrNoDocument when the field is missing and
// services.ErrDocumentTooLarge when the body exceeds maxBytes.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (string, []byte, error) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return "", nil, services.ErrDocumentTooLarge.WithCause(err)
		case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
			return "", nil, services.ErrNoDocument
		default:
			return "", nil, fmt.Errorf("parse multipart form: %w", err)
		}
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(FormFileField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil, services.ErrNoDocument
		}
		return "", nil, fmt.Errorf("read form file: %w", err)
	}
	defer file.Close()

	reader := io.Reader(file)
	if maxBytes > 0 {
		// One byte over the limit is enough for the service to reject it.
		reader = io.LimitReader(file, maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	return header.Filename, data, nil
}
