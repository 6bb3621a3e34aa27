package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DocumentDir is the storage-relative directory every uploaded document lands in.
const DocumentDir = "ngo_documents"

var ErrEmptyUpload = errors.New("empty upload")

// Upload is a client-supplied file. Filename is only consulted for its extension.
type Upload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

type DocumentStore interface {
	// Save persists the upload and returns its storage-relative path.
	Save(ctx context.Context, upload Upload) (string, error)
}

// NewDocumentKey returns "ngo_documents/<uuid><ext>" for a client filename.
func NewDocumentKey(clientFilename string) string {
	return path.Join(DocumentDir, uuid.NewString()+safeExtension(clientFilename))
}

func safeExtension(clientFilename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(clientFilename)))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
