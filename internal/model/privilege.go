package model

import "strings"

// Privilege is one "resource:action" grant, e.g. "order:create"
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(100);uniqueIndex;not null" json:"code"`
	Name string `gorm:"type:varchar(100)" json:"name"`
}

func PrivilegeCode(resource, action string) string {
	return resource + ":" + action
}

// Split returns the resource and action parts of the code.
func (p Privilege) Split() (resource, action string) {
	resource, action, _ = strings.Cut(p.Code, ":")
	return resource, action
}
