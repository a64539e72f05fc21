// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"time"

	"github.com/scriptbin/scriptbin/app/dto"
	businessflow "github.com/scriptbin/scriptbin/business_flow"
	"github.com/scriptbin/scriptbin/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// CommentHandlerInterface defines the contract for script comments
type CommentHandlerInterface interface {
	Add(c fiber.Ctx) error
}

type CommentHandler struct {
	flow      businessflow.CommentFlow
	validator *validator.Validate
}

func NewCommentHandler(flow businessflow.CommentFlow) CommentHandlerInterface {
	return &CommentHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// ErrorResponse standard JSON error
func (h *CommentHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

// SuccessResponse standard JSON success
func (h *CommentHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Add stores a comment on a script
// @Summary Add comment
// @Tags Comments
// @Accept json
// @Produce json
// @Param permalink path string true "Script permalink"
// @Param request body dto.AddCommentRequest true "Comment data"
// @Success 201 {object} dto.APIResponse{data=dto.AddCommentResponse} "Comment created"
// @Failure 400 {object} dto.APIResponse "Validation or captcha failure"
// @Failure 404 {object} dto.APIResponse "Script not found"
// @Router /script/{permalink}/comments [post]
func (h *CommentHandler) Add(c fiber.Ctx) error {
	permalink := c.Params("permalink")

	var req dto.AddCommentRequest
	if err := c.Bind().Body(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	resp, err := h.flow.AddComment(h.createRequestContext(c, "/script/"+permalink+"/comments"), permalink, &req, metadata)
	if err != nil {
		if field, ok := businessflow.IsFieldRequired(err); ok {
			return h.ErrorResponse(c, fiber.StatusBadRequest, field+" is required", "VALIDATION_ERROR", nil)
		}
		if businessflow.IsInvalidCaptcha(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid captcha", "INVALID_CAPTCHA", nil)
		}
		if businessflow.IsPermalinkMissing(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Permalink is required", "PERMALINK_MISSING", nil)
		}
		if businessflow.IsScriptNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Script not found", "SCRIPT_NOT_FOUND", nil)
		}
		log.Println("Add comment failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save comment", "COMMENT_SAVE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Comment created", resp)
}

func (h *CommentHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 10*time.Second)
}

func (h *CommentHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
