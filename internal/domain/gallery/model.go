package gallery

import "time"

type Item struct {
	ID         int64  `json:"id"`
	UploaderID int64  `json:"uploader_id"`
	Uploader   string `json:"uploader,omitempty"` // joined in for listings
	Title      string `json:"title"`
	MIME       string `json:"mime"`
	// FileName is the opaque name under the media directory.
	FileName  string    `json:"file_name"`
	Size      int64     `json:"size"`
	Hidden    bool      `json:"hidden"`
	CreatedAt time.Time `json:"created_at"`
}
