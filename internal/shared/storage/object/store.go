package object

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"resume-builder/internal/shared/util"
)

var (
	ErrNotFound   = errors.New("object not found")
	ErrInvalidKey = errors.New("invalid storage key")
)

// Info describes a stored object.
type Info struct {
	Key         string
	Size        int64
	ContentType string
}

// ObjectStore saves and retrieves binary objects by key.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (Info, error)
	Open(ctx context.Context, key string) (io.ReadCloser, Info, error)
	Delete(ctx context.Context, key string) error
}

// UserKey builds "<kind>/<owner>/<uuid>_<file>" so objects are namespaced per user
// without exposing the user id.
func UserKey(kind, userID, fileName string) (string, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", err
	}
	return path.Join(kind, util.OwnerSegment(userID), uuid.NewString()+"_"+name), nil
}

// OwnedBy reports whether key was produced by UserKey for userID.
func OwnedBy(key, userID string) bool {
	parts := strings.SplitN(CleanKey(key), "/", 3)
	return len(parts) == 3 && parts[1] == util.OwnerSegment(userID)
}

// CleanKey normalizes a key and returns "" for traversal or absolute paths.
func CleanKey(key string) string {
	clean := path.Clean("/" + strings.TrimSpace(key))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." || strings.Contains(key, "..") {
		return ""
	}
	return clean
}
