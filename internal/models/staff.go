package models

import "github.com/google/uuid"

// StaffMember сотрудник на странице персонала. По ReportsTo строится оргструктура.
type StaffMember struct {
	ID         uuid.UUID
	Name       string
	Position   string
	Department string
	Email      string
	PhotoKey   string
	PhotoURL   string
	ReportsTo  *uuid.UUID
	SortOrder  int32
}

// OrgNode сотрудник вместе с подчинёнными.
type OrgNode struct {
	StaffMember
	Reports []*OrgNode
}
