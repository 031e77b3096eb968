package dto

import "time"

// RegisterUserRequest represents the request to register a catalog user
type RegisterUserRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterDeveloperRequest represents the request to register a developer account
type RegisterDeveloperRequest struct {
	Email       string  `json:"email" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	CompanyName *string `json:"companyName"`
	Password    string  `json:"password" binding:"required"`
}

// LoginRequest represents a login request for any account kind
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateReviewRequest represents the request to create a genuine user review
type CreateReviewRequest struct {
	ApkID   string `json:"apkId" binding:"required"`
	UserID  string `json:"userId" binding:"required"`
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// CreateSyntheticReviewRequest represents the admin request to inject a review
type CreateSyntheticReviewRequest struct {
	ApkID       string     `json:"apkId" binding:"required"`
	DisplayName string     `json:"displayName" binding:"required"`
	Rating      int        `json:"rating" binding:"required"`
	Comment     string     `json:"comment"`
	CreatedAt   *time.Time `json:"createdAt"`
}

// UpdateReviewRequest represents a partial review edit; nil fields are kept as is
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

// HelpfulVoteRequest represents the request to cast a helpful vote
type HelpfulVoteRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// UpdateStatusRequest represents the admin request to change application status
type UpdateStatusRequest struct {
	Status  string  `json:"status" binding:"required"`
	Message *string `json:"message"`
}

// UpdateDeveloperStatusRequest represents the admin request to change developer status
type UpdateDeveloperStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateCategoryRequest represents the admin request to create a category
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}
