package models

import (
	"time"
)

// RoleType identifies the access level of a staff account
type RoleType string

const (
	// RoleAdmin has full access to every applicant record
	RoleAdmin RoleType = "admin"
	// RoleDocumentationOfficer may file applicants and work only on its own
	RoleDocumentationOfficer RoleType = "documentation_officer"
)

// User defines the staff account model based on the 'users' table
type User struct {
	ID          int64     `json:"id" db:"id"`
	Email       string    `json:"email" db:"email"`
	Password    string    `json:"-" db:"password"`
	FullName    string    `json:"full_name" db:"full_name"`
	CompanyName string    `json:"company_name" db:"company_name"`
	PhoneNo     string    `json:"phone_no" db:"phone_no"`
	Role        RoleType  `json:"role" db:"role"`
	IsVerified  bool      `json:"is_verified" db:"is_verified"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// TokenPurpose distinguishes single-use account token flows
type TokenPurpose string

const (
	TokenPurposeEmailVerification TokenPurpose = "email_verification"
	TokenPurposePasswordReset     TokenPurpose = "password_reset"
)

// AccountToken is a time-limited, single-use token bound to one account,
// gating email verification and password reset.
type AccountToken struct {
	ID         int64        `db:"id"`
	UserID     int64        `db:"user_id"`
	Token      string       `db:"token"`
	Purpose    TokenPurpose `db:"purpose"`
	ExpiryDate time.Time    `db:"expiry_date"`
	UsedAt     *time.Time   `db:"used_at"`
	CreatedAt  time.Time    `db:"created_at"`
}
