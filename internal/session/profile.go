// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import "strings"

// UserProfile is the identity and role data returned by GET /auth/me and
// embedded in the login response.
type UserProfile struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Phone        *string `json:"phone,omitempty"`
	IsActive     bool    `json:"is_active"`
	Role         *Role   `json:"role,omitempty"`
	ProfilePhoto *string `json:"profile_photo,omitempty"`
	CreatedAt    string  `json:"created_at,omitempty"`
	UpdatedAt    string  `json:"updated_at,omitempty"`
}

// Role groups the permissions granted to a user.
type Role struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Permissions []Permission `json:"permissions,omitempty"`
}

// Permission is a single grant such as "candidates.read".
type Permission struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}

// FullName joins first and last name, falling back to the email.
func (u *UserProfile) FullName() string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// RoleName returns the role name or "none".
func (u *UserProfile) RoleName() string {
	if u == nil || u.Role == nil || u.Role.Name == "" {
		return "none"
	}
	return u.Role.Name
}

// HasPermission reports whether the user's role grants the permission code.
// Codes compare case-insensitively.
func (u *UserProfile) HasPermission(code string) bool {
	if u == nil || u.Role == nil {
		return false
	}
	for _, p := range u.Role.Permissions {
		if strings.EqualFold(p.Code, code) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so snapshots never alias store-owned data.
func (u *UserProfile) Clone() *UserProfile {
	if u == nil {
		return nil
	}
	c := *u
	if u.Phone != nil {
		p := *u.Phone
		c.Phone = &p
	}
	if u.ProfilePhoto != nil {
		p := *u.ProfilePhoto
		c.ProfilePhoto = &p
	}
	if u.Role != nil {
		r := *u.Role
		if u.Role.Permissions != nil {
			r.Permissions = append([]Permission(nil), u.Role.Permissions...)
		}
		c.Role = &r
	}
	return &c
}
