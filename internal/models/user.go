// models содержит доменные сущности сайта.
// Эти типы общие для хранилища, сервиса и транспорта.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role роль в админке.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
)

// EnvAdminID user id в сессиях администратора из конфигурации.
// Ни одной строке в БД он не соответствует.
const EnvAdminID = "env-admin"

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEditor
}

func (r Role) String() string { return string(r) }

// User учётная запись админки. PasswordHash это bcrypt-хеш, за пределы сервиса он не выходит.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash []byte
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
