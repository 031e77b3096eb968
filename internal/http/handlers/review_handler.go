package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/apkmarket/backend/internal/dto"
	"github.com/apkmarket/backend/internal/http/handlers/common"
	"github.com/apkmarket/backend/internal/service"
)

type ReviewHandler struct {
	reviews *service.ReviewService
}

func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// Create POST /api/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "некорректное тело запроса")
		return
	}

	applicationID, err := uuid.Parse(req.ApkID)
	if err != nil {
		common.RespondBadRequest(c, "неверный apkId")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		common.RespondBadRequest(c, "неверный userId")
		return
	}

	var comment *string
	if req.Comment != "" {
		comment = &req.Comment
	}

	review, err := h.reviews.CreateReview(c.Request.Context(), applicationID, userID, req.Rating, comment)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// ListForApplication GET /api/reviews/:id — id приложения.
func (h *ReviewHandler) ListForApplication(c *gin.Context) {
	applicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondBadRequest(c, "неверный apkId")
		return
	}

	limit := common.ParseIntQuery(c, "limit", service.DefaultReviewPageSize)

	listing, err := h.reviews.GetApplicationReviews(c.Request.Context(), applicationID, limit)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ReviewListResponse{
		Reviews:      listing.Reviews,
		Average:      listing.Average,
		Total:        listing.Total,
		Distribution: listing.Distribution,
	})
}

// CastHelpfulVote PATCH /api/reviews/:id/helpful
func (h *ReviewHandler) CastHelpfulVote(c *gin.Context) {
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondBadRequest(c, "неверный id отзыва")
		return
	}

	var req dto.HelpfulVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "некорректное тело запроса")
		return
	}

	voterID, err := uuid.Parse(req.UserID)
	if err != nil {
		common.RespondBadRequest(c, "неверный userId")
		return
	}

	helpful, err := h.reviews.CastHelpfulVote(c.Request.Context(), reviewID, voterID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.HelpfulVoteResponse{Helpful: helpful})
}

// CreateSynthetic POST /api/admin/reviews
func (h *ReviewHandler) CreateSynthetic(c *gin.Context) {
	var req dto.CreateSyntheticReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "некорректное тело запроса")
		return
	}

	applicationID, err := uuid.Parse(req.ApkID)
	if err != nil {
		common.RespondBadRequest(c, "неверный apkId")
		return
	}

	var comment *string
	if req.Comment != "" {
		comment = &req.Comment
	}

	review, err := h.reviews.CreateSyntheticReview(c.Request.Context(), applicationID, req.DisplayName, req.Rating, comment, req.CreatedAt)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// Update PUT /api/admin/reviews/:id
func (h *ReviewHandler) Update(c *gin.Context) {
	reviewID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный id отзыва")
		return
	}

	var req dto.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "некорректное тело запроса")
		return
	}

	review, err := h.reviews.UpdateReview(c.Request.Context(), reviewID, req.Rating, req.Comment)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// Delete DELETE /api/admin/reviews/:id
func (h *ReviewHandler) Delete(c *gin.Context) {
	reviewID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный id отзыва")
		return
	}

	if err := h.reviews.DeleteReview(c.Request.Context(), reviewID); err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "отзыв удалён"})
}
