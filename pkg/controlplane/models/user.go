package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// UserRole represents the role of a user in the system.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// IsValid checks if the role is a valid UserRole.
func (r UserRole) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// PermCOP is the permission granting unrestricted access to every container.
const PermCOP = "cop"

// User is an identity in the backing store. Username is unique.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null;size:255" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Enabled      bool      `gorm:"default:true" json:"enabled"`
	Role         string    `gorm:"default:user;size:50" json:"role"`
	DisplayName  string    `gorm:"size:255" json:"display_name,omitempty"`
	Email        string    `gorm:"size:255" json:"email,omitempty"`
	Permissions  string    `gorm:"type:text" json:"-"` // JSON array of permission names
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for User.
func (User) TableName() string {
	return "users"
}

// GetDisplayName returns the display name, or username if display name is not set.
func (u *User) GetDisplayName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// GetPermissions decodes the stored permission list. Empty or malformed
// values yield nil.
func (u *User) GetPermissions() []string {
	if u.Permissions == "" || u.Permissions == "null" {
		return nil
	}
	var perms []string
	if err := json.Unmarshal([]byte(u.Permissions), &perms); err != nil {
		return nil
	}
	return perms
}

// SetPermissions stores perms as a JSON array.
func (u *User) SetPermissions(perms []string) {
	if len(perms) == 0 {
		u.Permissions = ""
		return
	}
	data, _ := json.Marshal(perms)
	u.Permissions = string(data)
}

// HasPermission checks whether the user holds perm.
func (u *User) HasPermission(perm string) bool {
	for _, p := range u.GetPermissions() {
		if p == perm {
			return true
		}
	}
	return false
}

// Validate checks if the user has valid configuration.
func (u *User) Validate() error {
	if u.Username == "" {
		return fmt.Errorf("username is required")
	}
	if u.Role != "" && !UserRole(u.Role).IsValid() {
		return fmt.Errorf("invalid role %q", u.Role)
	}
	return nil
}

// IsAdmin checks if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == string(RoleAdmin)
}
