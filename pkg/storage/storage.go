// Package storage stores uploaded room images and hands back the URL the
// stored file is served under.
package storage

import "context"

// FileStorage stores a file's bytes and returns its public URL
type FileStorage interface {
	Store(ctx context.Context, filename string, data []byte) (string, error)
}
