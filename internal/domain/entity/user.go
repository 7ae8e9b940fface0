package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleCompras  = "compras"
	RoleConsulta = "consulta"
)

// User representa un usuario del back-office.
type User struct {
	ID           string
	Username     string
	Name         string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         string // admin, compras, consulta
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
