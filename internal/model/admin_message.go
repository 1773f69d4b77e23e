package model

import "time"

// AdminMessage is a note from the super admin to one department admin,
// delivered to an in-portal mailbox with a read flag.
type AdminMessage struct {
	ID        int       `json:"id"`
	AdminID   int       `json:"admin_id"`
	SenderID  int       `json:"sender_id"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Read      bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// SendMessageRequest is the super admin payload for messaging an admin.
type SendMessageRequest struct {
	AdminID int    `json:"admin_id" binding:"required,min=1"`
	Subject string `json:"subject" binding:"required,min=1,max=255"`
	Body    string `json:"body" binding:"required,min=1,max=5000"`
}
