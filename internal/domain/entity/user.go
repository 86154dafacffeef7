package entity

import "time"

// Roles válidos para User.
const (
	RoleInventoryManager = "inventory_manager"
	RoleStaff            = "staff"
)

// User usuario que firma los movimientos. La administración de usuarios vive fuera
// de este servicio; aquí solo se lee para login.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt
	Name         string
	Role         string
	Status       string // active, inactive
	CreatedAt    time.Time
}
