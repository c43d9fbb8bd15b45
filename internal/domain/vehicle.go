package domain

import "time"

// Client owns one or more registered vehicles. Client records are managed
// by the administrative UI; the pipeline only reads them.
type Client struct {
	ID          int       `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Address     string    `json:"address"`
	PhoneNumber string    `json:"phone_number"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Vehicle is a registry entry. PlateNum is unique and matched
// case-insensitively against recognized plate text.
type Vehicle struct {
	ID        int       `json:"id"`
	ClientID  int       `json:"client_id"`
	PlateNum  string    `json:"plate_num"`
	OwnerName string    `json:"owner_name"`
	Make      string    `json:"make"`
	Model     string    `json:"model"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
