package dto

import "time"

// ======================
// Request DTOs
// ======================

type StartDirectConversationRequest struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	Content     string `json:"content" validate:"required,min=1,max=4000"`
}

type CreateSupportConversationRequest struct {
	Subject string `json:"subject" validate:"required,min=2,max=200"`
	Topic   string `json:"topic" validate:"required,is-support-topic"`
	Content string `json:"content" validate:"required,min=1,max=4000"`
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=4000"`
}

// ======================
// Response DTOs
// ======================

type ConversationResponse struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	Subject       string    `json:"subject,omitempty"`
	Topic         string    `json:"topic,omitempty"`
	LastMessage   string    `json:"last_message"`
	LastMessageAt time.Time `json:"last_message_at"`
	UnreadCount   int64     `json:"unread_count"`
	CreatedAt     time.Time `json:"created_at"`

	Participants []*UserResponse `json:"participants,omitempty"`
}

type ConversationListResponse struct {
	Conversations []*ConversationResponse `json:"conversations"`
	Total         int                     `json:"total"`
}

type MessageResponse struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

type MessageListResponse struct {
	Messages []*MessageResponse `json:"messages"`
	Total    int                `json:"total"`
}
