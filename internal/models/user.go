package models

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	FullName    string `json:"fullName,omitempty"`
	Email       string `json:"email,omitempty"`
	Address     string `json:"address,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Password    string `json:"-"`
	Role        string `json:"role"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Customer construit le customerInfo d'une commande depuis le profil.
func (u User) Customer() CustomerInfo {
	name := u.FullName
	if name == "" {
		name = u.Username
	}
	return CustomerInfo{
		UserID:  u.ID,
		Name:    name,
		Email:   u.Email,
		Address: u.Address,
	}
}
