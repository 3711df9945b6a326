package models

import (
	"time"
)

type Member struct {
	ID                    int64
	CreatedAt             time.Time
	Name                  string
	Email                 string
	PasswordHash          string
	Role                  Role
	LastPasswordChangedAt time.Time
}

func (m Member) Identity() Identity {
	return Identity{SubjectID: m.ID, Role: m.Role}
}
