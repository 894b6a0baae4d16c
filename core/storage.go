package core

import "io"

// FileStorage is any service that can persist uploaded files (avatars etc.)
// and serve them back by URL.
type FileStorage interface {
	// Save stores the content under the given bucket/name and returns the
	// public URL the file can be fetched from.
	Save(bucket, name string, r io.Reader) (string, error)
	Delete(bucket, name string) error
}
