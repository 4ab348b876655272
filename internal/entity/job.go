package entity

import (
	"time"

	"github.com/google/uuid"
)

// Job is a scraped job posting linked to the company that published it.
type Job struct {
	ID         uuid.UUID `json:"id"`
	CompanyID  uuid.UUID `json:"company_id"`
	Title      string    `json:"title"`
	Location   *string   `json:"location,omitempty"`
	PostedDate *string   `json:"posted_date,omitempty"`
	Source     string    `json:"source"`
	Keyword    string    `json:"keyword"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}
