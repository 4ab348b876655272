package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Company statuses within the enrichment pipeline.
const (
	CompanyStatusNew      = "new"
	CompanyStatusEnriched = "enriched"
)

// Company represents a business discovered by the job scraper. Provider
// payloads from Hunter and Apollo are stored as opaque blobs and never merged.
type Company struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Location    *string         `json:"location,omitempty"`
	EmailDomain *string         `json:"email_domain,omitempty"`
	Website     *string         `json:"website,omitempty"`
	Industry    *string         `json:"industry,omitempty"`
	Size        *string         `json:"size,omitempty"`
	Phone       *string         `json:"phone,omitempty"`
	HunterData  json.RawMessage `json:"hunter_data"`
	ApolloData  json.RawMessage `json:"apollo_data"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
