package model

import (
	"strings"
	"time"
)

// MinPasswordLength is the shortest password accepted at setup or change.
const MinPasswordLength = 6

// User is the single local account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// ValidatePassword checks the password policy.
func ValidatePassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return &ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < MinPasswordLength {
		return &ValidationError{Field: "password", Message: "password must be at least 6 characters"}
	}
	return nil
}

// ValidateSetup checks the fields required to create the user and department.
func ValidateSetup(username, password, departmentName string) error {
	if err := requireText("username", username); err != nil {
		return err
	}
	if err := requireText("department", departmentName); err != nil {
		return err
	}
	return ValidatePassword(password)
}
