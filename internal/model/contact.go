package model

type ContactRequest struct {
	FirstName      string  `json:"first_name" binding:"required,min=1,max=100"`
	LastName       string  `json:"last_name" binding:"max=100"`
	Email          string  `json:"email" binding:"omitempty,email"`
	Phone          string  `json:"phone" binding:"max=50"`
	Birthday       string  `json:"birthday" binding:"omitempty,datetime=2006-01-02"`
	AdditionalInfo *string `json:"additional_info"`
}

// Contact belongs to exactly one user (OwnerID). Birthday is YYYY-MM-DD or "".
type Contact struct {
	ID             int64   `json:"id"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	Birthday       string  `json:"birthday"`
	AdditionalInfo *string `json:"additional_info"`
	OwnerID        int64   `json:"owner_id"`
}

type ContactFilter struct {
	Name  string `form:"name"`
	Email string `form:"email"`
}
