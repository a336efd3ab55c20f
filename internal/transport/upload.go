package transport

import (
	"errors"
	"net/http"
	"strings"

	"github.com/frahmantamala/school-platform/internal"
	"github.com/frahmantamala/school-platform/internal/storage"
)

const multipartMemory = 32 << 20

// ReadUploads parses the request form and drains the named file fields into memory.
// Fields without an attached file are absent from the result.
func ReadUploads(w http.ResponseWriter, r *http.Request, maxBytes int64, fields ...string) (map[string]*storage.Upload, *internal.AppError) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseForm(); err != nil {
			return nil, uploadError("invalid form body", err)
		}
		return map[string]*storage.Upload{}, nil
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, uploadError("invalid multipart body", err)
	}

	uploads := make(map[string]*storage.Upload, len(fields))
	for _, field := range fields {
		u, err := storage.FormUpload(r, field)
		if err != nil {
			return nil, uploadError("failed to read "+field, err)
		}
		if u != nil {
			uploads[field] = u
		}
	}
	return uploads, nil
}

func uploadError(message string, cause error) *internal.AppError {
	var tooLarge *http.MaxBytesError
	if errors.As(cause, &tooLarge) {
		message = "upload exceeds the size limit"
	}
	return internal.NewValidationError(message, internal.ErrCodeInvalidUpload).WithCause(cause)
}
