package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
)

// Upload is a file payload fully read into memory, ready to be stored.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (u *Upload) Ext() string {
	return filepath.Ext(u.Filename)
}

func (u *Upload) Size() int {
	return len(u.Data)
}

// ReadUpload drains file into a buffer. Read errors are returned, never swallowed.
func ReadUpload(file io.Reader, header *multipart.FileHeader) (*Upload, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return nil, fmt.Errorf("failed to read upload %q: %w", header.Filename, err)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(buf.Bytes())
	}

	return &Upload{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        buf.Bytes(),
	}, nil
}

// FormUpload reads the named multipart field. It returns (nil, nil) when no file was attached.
func FormUpload(r *http.Request, field string) (*Upload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %q: %w", field, err)
	}
	defer file.Close()

	if header.Size == 0 && header.Filename == "" {
		return nil, nil
	}
	return ReadUpload(file, header)
}
