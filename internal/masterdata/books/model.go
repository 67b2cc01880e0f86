package books

import (
	"time"
)

// Book represents a title in the catalog.
type Book struct {
	ID           int64     `json:"id"`
	ISBN         string    `json:"isbn"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	PublisherID  int64     `json:"publisher_id"`
	DepartmentID int64     `json:"department_id"`
	Price        float64   `json:"price"`
	Cost         float64   `json:"cost"`
	CoverURL     string    `json:"cover_url,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
