package model

import "time"

// Gender represents the student's gender.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Student represents a student account.
type Student struct {
	ID           int       `json:"id"`
	RollNumber   string    `json:"roll_number"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Gender       Gender    `json:"gender"`
	Branch       string    `json:"branch"`
	Section      string    `json:"section"`
	Year         int       `json:"year"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StudentLoginRequest is the payload for student authentication.
// Identifier accepts either the registered email or the roll number.
type StudentLoginRequest struct {
	Identifier string `json:"identifier" binding:"required,min=4,max=255"`
	Password   string `json:"password" binding:"required,min=4,max=128"`
}

// StudentLoginResponse is returned after successful student login.
type StudentLoginResponse struct {
	Token   string  `json:"token"`
	Student Student `json:"student"`
}

// SendOTPRequest asks for a one-time password to be mailed.
type SendOTPRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}

// RegisterStudentRequest is the payload for student self-registration.
// The OTP must match the one previously mailed to the email address.
type RegisterStudentRequest struct {
	RollNumber string `json:"roll_number" binding:"required,len=10,alphanum"`
	Name       string `json:"name" binding:"required,min=2,max=100"`
	Email      string `json:"email" binding:"required,email,max=255"`
	Phone      string `json:"phone" binding:"required,min=10,max=15"`
	Gender     Gender `json:"gender" binding:"required,oneof=Male Female Other"`
	Branch     string `json:"branch" binding:"required,min=2,max=50"`
	Section    string `json:"section" binding:"required,min=1,max=10"`
	Year       int    `json:"year" binding:"required,min=1,max=4"`
	Password   string `json:"password" binding:"required,min=8,max=128"`
	OTP        string `json:"otp" binding:"required,len=6,numeric"`
}

// ResetPasswordRequest completes a forgotten-password flow with a mailed OTP.
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email,max=255"`
	OTP         string `json:"otp" binding:"required,len=6,numeric"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// UpdateStudentProfileRequest is the payload for a student editing their profile.
type UpdateStudentProfileRequest struct {
	Name    string `json:"name" binding:"required,min=2,max=100"`
	Phone   string `json:"phone" binding:"required,min=10,max=15"`
	Section string `json:"section" binding:"required,min=1,max=10"`
	Year    int    `json:"year" binding:"required,min=1,max=4"`
}
