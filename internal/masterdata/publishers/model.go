package publishers

import "time"

type Publisher struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country,omitempty"`
	Website   string    `json:"website,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PublisherForm struct {
	Name     string `json:"name" validate:"required,max=200"`
	Country  string `json:"country" validate:"omitempty,max=100"`
	Website  string `json:"website" validate:"omitempty,url"`
	IsActive bool   `json:"is_active"`
}
