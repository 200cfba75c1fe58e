package api

// Image is an uploaded picture. UUID is what galleries reference as
// mainImageUuid.
type Image struct {
	UUID        string `json:"uuid"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}
