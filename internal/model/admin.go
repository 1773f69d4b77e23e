package model

import "time"

// Admin represents a department admin account. At most one admin carries
// the super admin flag and manages the others.
type Admin struct {
	ID           int       `json:"id"`
	EmployeeID   string    `json:"employee_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Branch       string    `json:"branch"`
	SuperAdmin   bool      `json:"super_admin"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AdminLoginRequest is the payload for admin authentication.
type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// AdminLoginResponse is returned after successful admin login.
type AdminLoginResponse struct {
	Token string `json:"token"`
	Admin Admin  `json:"admin"`
}

// CreateAdminRequest is the super admin payload for registering a new admin.
type CreateAdminRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,min=4,max=20"`
	Name       string `json:"name" binding:"required,min=2,max=100"`
	Email      string `json:"email" binding:"required,email,max=255"`
	Branch     string `json:"branch" binding:"required,min=2,max=50"`
	Password   string `json:"password" binding:"required,min=8,max=128"`
}

// UpdateAdminRequest is the super admin payload for editing an admin.
type UpdateAdminRequest struct {
	Name   string `json:"name" binding:"required,min=2,max=100"`
	Email  string `json:"email" binding:"required,email,max=255"`
	Branch string `json:"branch" binding:"required,min=2,max=50"`
}

// ChangeAdminPasswordRequest resets an admin's password by the super admin.
type ChangeAdminPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}
