package books

// BookForm is the create/update payload.
type BookForm struct {
	ISBN         string  `json:"isbn" validate:"required,max=20"`
	Title        string  `json:"title" validate:"required,max=300"`
	Author       string  `json:"author" validate:"required,max=200"`
	PublisherID  int64   `json:"publisher_id" validate:"required,gt=0"`
	DepartmentID int64   `json:"department_id" validate:"required,gt=0"`
	Price        float64 `json:"price" validate:"gte=0"`
	Cost         float64 `json:"cost" validate:"gte=0"`
	CoverURL     string  `json:"cover_url" validate:"omitempty,url,max=500"`
	IsActive     bool    `json:"is_active"`
}
