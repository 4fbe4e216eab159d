package dto

// ClientResponse client company
type ClientResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person,omitempty"`
	ContactEmail  string `json:"contact_email,omitempty"`
	Address       string `json:"address,omitempty"`
}

// CreateClientRequest POST /clients
type CreateClientRequest struct {
	Name          string `json:"name"           binding:"required,max=200"`
	ContactPerson string `json:"contact_person" binding:"omitempty,max=200"`
	ContactEmail  string `json:"contact_email"  binding:"omitempty,email"`
	Address       string `json:"address"`
}

// UpdateClientRequest PUT /clients/:id
type UpdateClientRequest struct {
	Name          *string `json:"name"           binding:"omitempty,min=1,max=200"`
	ContactPerson *string `json:"contact_person" binding:"omitempty,max=200"`
	ContactEmail  *string `json:"contact_email"  binding:"omitempty,email"`
	Address       *string `json:"address"`
}

// ClientSearchRequest GET /clients/search
type ClientSearchRequest struct {
	Name string `form:"name" binding:"required,max=200"`
}
