package domain

type Car struct {
	ID              int32  `json:"id"`
	OwnerID         int32  `json:"owner_id"`
	Make            string `json:"make"`
	Model           string `json:"model"`
	Year            int32  `json:"year"`
	Description     string `json:"description"`
	PrimaryImageURL string `json:"primary_image_url"`
	LikeCount       int32  `json:"like_count"`
	CreatedOn       string `json:"created_on"`
	UpdatedOn       string `json:"updated_on"`

	// Populated on gallery reads
	OwnerUsername string `json:"owner_username,omitempty"`
	LikedByViewer bool   `json:"liked_by_viewer,omitempty"`
}

type CarImageStatus string

const (
	CarImageStatusPending   CarImageStatus = "PENDING"
	CarImageStatusConfirmed CarImageStatus = "CONFIRMED"
	CarImageStatusDeleted   CarImageStatus = "DELETED"
)

// CarImage tracks an image through the presigned-upload flow: a PENDING row
// is created when an upload URL is issued, confirmed once the client reports
// the upload complete, and soft-deleted on removal.
type CarImage struct {
	ID         int32          `json:"id"`
	CarID      *int32         `json:"car_id,omitempty"` // nil while pending for a not-yet-created car
	UploaderID int32          `json:"uploader_id"`
	StorageKey string         `json:"storage_key"`
	IsPrimary  bool           `json:"is_primary"`
	Status     CarImageStatus `json:"status"`
	FileSize   int64          `json:"file_size"`
	CreatedOn  string         `json:"created_on"`
}

// GalleryPage is one page of the garage_gallery database function output.
type GalleryPage struct {
	Cars       []Car `json:"cars"`
	TotalCount int32 `json:"total_count"`
	Page       int32 `json:"page"`
	PageSize   int32 `json:"page_size"`
}
