package domain

import "time"

// Guard is an operator account at the gate post. Supervisors can manage
// other guards; suspended guards cannot log in.
type Guard struct {
	ID         int       `json:"id"`
	Username   string    `json:"username"`
	Password   string    `json:"-"` // bcrypt hash, never serialized
	Email      string    `json:"email"`
	Supervisor bool      `json:"supervisor"`
	Suspended  bool      `json:"suspended"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Role returns the authorization role encoded in JWT claims.
func (g *Guard) Role() string {
	if g.Supervisor {
		return "supervisor"
	}
	return "guard"
}

type LoginGuardDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponseDTO struct {
	Token    string `json:"token"`
	GuardID  int    `json:"guard_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
