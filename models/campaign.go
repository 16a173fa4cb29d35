package models

import "gorm.io/gorm"

// Campaign holds the outreach templates. Placeholders use {{field}}
// syntax and are filled per recipient by the personalization engine.
type Campaign struct {
	gorm.Model

	Name            string `gorm:"not null;uniqueIndex" json:"name"`
	SubjectTemplate string `gorm:"not null" json:"subject_template"`
	BodyTemplate    string `gorm:"not null;type:text" json:"body_template"`
	Active          bool   `gorm:"default:true;index" json:"active"`
}
