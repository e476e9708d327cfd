package models

import (
	"time"

	"github.com/google/uuid"
)

// ContactMessage сообщение из публичной формы обратной связи.
type ContactMessage struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Subject   string
	Message   string
	Read      bool
	CreatedAt time.Time
}

// ViewStats счётчики просмотров по пути и по дню UTC (YYYY-MM-DD).
type ViewStats struct {
	Paths map[string]int64
	Days  map[string]int64
}
