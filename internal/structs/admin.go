package structs

import "time"

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleMasterAdmin Role = "masteradmin"
)

type Admin struct {
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	AddedBy   int64     `json:"added_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Access is what the bot knows about the caller's privileges.
type Access struct {
	UserID   int64
	IsAdmin  bool
	IsMaster bool
}
