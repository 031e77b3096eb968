package dto

import (
	"github.com/apkmarket/backend/internal/models"
)

// ErrorResponse is a uniform error envelope for the API
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse is a uniform envelope for operations without a payload
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// AuthResponse carries the issued access token together with account info
type AuthResponse struct {
	Token   string      `json:"token"`
	Account interface{} `json:"account"`
}

// ReviewListResponse represents reviews together with aggregate statistics
// This is the payload of GET /api/reviews/:apkId
type ReviewListResponse struct {
	Reviews      []models.ReviewWithAuthor `json:"reviews"`
	Average      float64                   `json:"average"`
	Total        int                       `json:"total"`
	Distribution map[int]int               `json:"distribution"`
}

// HelpfulVoteResponse carries the updated helpful count after a vote
type HelpfulVoteResponse struct {
	Helpful int `json:"helpful"`
}

// ModerationStatsResponse represents application counts per status for the admin dashboard
type ModerationStatsResponse struct {
	Pending  int `json:"pending"`
	Active   int `json:"active"`
	Deactive int `json:"deactive"`
	Rejected int `json:"rejected"`
}
