package models

import (
	"strings"
	"time"
	"unicode"
)

// CivilStatus values accepted on a person profile.
const (
	CivilStatusSingle    = "single"
	CivilStatusMarried   = "married"
	CivilStatusWidowed   = "widowed"
	CivilStatusSeparated = "separated"
)

// Person holds the identity profile embedded in domain entities that
// represent people. Emails are stored lowercased.
type Person struct {
	FirstName   string     `db:"first_name" json:"first_name"`
	MiddleName  string     `db:"middle_name" json:"middle_name,omitempty"`
	LastName    string     `db:"last_name" json:"last_name"`
	Birthdate   *time.Time `db:"birthdate" json:"birthdate,omitempty"`
	CivilStatus string     `db:"civil_status" json:"civil_status,omitempty"`
	Sex         string     `db:"sex" json:"sex,omitempty"`
	Address     string     `db:"address" json:"address,omitempty"`
	ContactNo   string     `db:"contact_no" json:"contact_no,omitempty"`
	Email       string     `db:"email" json:"email"`
}

// NormalizeEmail lowercases the email in place.
func (p *Person) NormalizeEmail() {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
}

// MiddleInitial returns the capitalized first letter of the middle name
// followed by a period, or the empty string when there is no middle name.
func (p Person) MiddleInitial() string {
	if p.MiddleName == "" {
		return ""
	}
	runes := []rune(p.MiddleName)
	return string(unicode.ToUpper(runes[0])) + "."
}

// String renders "Last, First[ Middle]".
func (p Person) String() string {
	var b strings.Builder
	b.WriteString(p.LastName)
	b.WriteString(", ")
	b.WriteString(p.FirstName)
	if p.MiddleName != "" {
		b.WriteString(" ")
		b.WriteString(p.MiddleName)
	}
	return b.String()
}

// TrailingName renders ", First[ Middle]" for contexts that already printed
// the last name.
func (p Person) TrailingName() string {
	var b strings.Builder
	b.WriteString(", ")
	b.WriteString(p.FirstName)
	if p.MiddleName != "" {
		b.WriteString(" ")
		b.WriteString(p.MiddleName)
	}
	return b.String()
}
