package entity

import (
	"time"

	"github.com/google/uuid"
)

// Asset is a source media asset. Read-only to the orchestration core except
// for the thumbnail reference.
type Asset struct {
	ID           uuid.UUID `json:"id"`
	URL          string    `json:"url"`
	Resolution   Tier      `json:"resolution"`
	Duration     float64   `json:"duration"`
	ThumbnailURL *string   `json:"thumbnail_url,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Rendition is a derivative encode of an Asset. At most one per (asset, tier).
type Rendition struct {
	ID           uuid.UUID `json:"id"`
	AssetID      uuid.UUID `json:"asset_id"`
	Resolution   Tier      `json:"resolution"`
	URL          string    `json:"url"`
	ThumbnailURL *string   `json:"thumbnail_url,omitempty"`
	Duration     float64   `json:"duration"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DispatchRequest is the body sent to the rendition worker.
type DispatchRequest struct {
	AssetID           uuid.UUID `json:"assetId"`
	SourceURL         string    `json:"sourceUrl"`
	SourceResolution  Tier      `json:"sourceResolution"`
	TargetResolutions []Tier    `json:"targetResolutions"`
	Duration          float64   `json:"duration"`
}
