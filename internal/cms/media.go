package cms

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/newsdesk"
	"github.com/dmitrymomot/newsdesk/api"
	"github.com/dmitrymomot/newsdesk/pkg/id"
	"github.com/dmitrymomot/newsdesk/pkg/storage"
)

const (
	imageField    = "file"
	maxImageSize  = 10 << 20
	maxFormMemory = 1 << 20
)

var imageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// uploadImage stores a multipart image under images/ with a public ACL.
// The content type is sniffed; the client's header is ignored.
func (h *Handlers) uploadImage(c newsdesk.Context, _, _ newsdesk.Empty) (api.Image, error) {
	if h.files == nil {
		return api.Image{}, newsdesk.ErrNotFound("image uploads are not enabled")
	}

	r := c.Request()
	r.Body = http.MaxBytesReader(c.Response(), r.Body, maxImageSize+maxFormMemory)
	_, fh, err := r.FormFile(imageField)
	if err != nil {
		return api.Image{}, uploadError(err)
	}

	info, err := storage.PutFile(c, h.files, fh,
		storage.WithPrefix("images"),
		storage.WithACL(storage.ACLPublicRead),
		storage.WithValidation(
			storage.NotEmpty(),
			storage.MaxSize(maxImageSize),
			storage.AllowedTypes(imageTypes...),
		),
	)
	if err != nil {
		return api.Image{}, uploadError(err)
	}

	img := &Image{
		ID:          id.New(),
		Key:         info.Key,
		URL:         info.URL,
		ContentType: info.ContentType,
		Size:        info.Size,
		UploadedBy:  h.proc.Auth.User(c).ID,
		CreatedAt:   h.svc.now().UTC(),
	}
	if err := h.images.CreateImage(c, img); err != nil {
		if derr := h.files.Delete(c, info.Key); derr != nil {
			c.LogWarn("orphaned upload", slog.String("key", info.Key), slog.Any("error", derr))
		}
		return api.Image{}, err
	}

	c.LogInfo("image uploaded", slog.String("image_id", img.ID), slog.Int64("size", img.Size))
	return img.API(), nil
}

func uploadError(err error) error {
	var (
		verr   *storage.ValidationError
		maxErr *http.MaxBytesError
	)
	switch {
	case errors.As(err, &verr):
		return newsdesk.ErrValidation([]newsdesk.FieldError{{Field: imageField, Message: verr.Message}}, newsdesk.WithCause(err))
	case errors.As(err, &maxErr):
		return newsdesk.ErrValidation([]newsdesk.FieldError{{Field: imageField, Message: "file is too large"}}, newsdesk.WithCause(err))
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart), errors.Is(err, storage.ErrEmptyFile):
		return newsdesk.ErrValidation([]newsdesk.FieldError{{Field: imageField, Message: "an image file is required"}}, newsdesk.WithCause(err))
	}
	return err
}
