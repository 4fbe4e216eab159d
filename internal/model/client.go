package model

// Client maps to clients.
type Client struct {
	ClientID      string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"client_id"`
	Name          string `gorm:"type:varchar(200);not null"                     json:"name"`
	ContactPerson string `gorm:"type:varchar(200)"                              json:"contact_person"`
	ContactEmail  string `gorm:"type:varchar(255)"                              json:"contact_email"`
	Address       string `gorm:"type:text"                                      json:"address"`
	SoftDeleteModel
}

func (Client) TableName() string { return "clients" }
