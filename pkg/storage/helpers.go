package storage

import (
	"context"
	"fmt"
	"mime/multipart"
)

// PutFile uploads a multipart file. The content type comes from the file's
// magic bytes; the client-sent header and filename are ignored.
func PutFile(ctx context.Context, s Storage, fh *multipart.FileHeader, opts ...Option) (*FileInfo, error) {
	if fh == nil || fh.Size == 0 {
		return nil, ErrEmptyFile
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	defer f.Close()

	return s.Put(ctx, f, fh.Size, opts...)
}
