// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/scriptbin/scriptbin/app/dto"
	businessflow "github.com/scriptbin/scriptbin/business_flow"
	"github.com/scriptbin/scriptbin/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

const xhrHeaderValue = "XMLHttpRequest"

// ScriptHandlerInterface defines the contract for the script CRUD surface
type ScriptHandlerInterface interface {
	View(c fiber.Ctx) error
	Submit(c fiber.Ctx) error
	Override(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	ListTags(c fiber.Ctx) error
}

type ScriptHandler struct {
	submitFlow businessflow.SubmitScriptFlow
	viewFlow   businessflow.ScriptViewFlow
	adminFlow  businessflow.AdminScriptFlow
	validator  *validator.Validate
}

func NewScriptHandler(
	submitFlow businessflow.SubmitScriptFlow,
	viewFlow businessflow.ScriptViewFlow,
	adminFlow businessflow.AdminScriptFlow,
) ScriptHandlerInterface {
	return &ScriptHandler{
		submitFlow: submitFlow,
		viewFlow:   viewFlow,
		adminFlow:  adminFlow,
		validator:  validator.New(),
	}
}

// ErrorResponse standard JSON error
func (h *ScriptHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
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
func (h *ScriptHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// View returns a script and its comments
// @Summary Get script
// @Tags Scripts
// @Produce json
// @Param permalink path string true "Script permalink"
// @Success 200 {object} dto.APIResponse{data=dto.ScriptViewResponse} "Script found"
// @Failure 400 {object} dto.APIResponse "Permalink missing"
// @Failure 404 {object} dto.APIResponse "Script not found"
// @Router /script/{permalink} [get]
func (h *ScriptHandler) View(c fiber.Ctx) error {
	permalink := c.Params("permalink")
	isAdmin := c.Locals(string(utils.AdminIDKey)) != nil

	resp, err := h.viewFlow.GetScript(h.createRequestContext(c, "/script/"+permalink), permalink, isAdmin)
	if err != nil {
		if businessflow.IsPermalinkMissing(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Permalink is required", "PERMALINK_MISSING", nil)
		}
		if businessflow.IsScriptNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Script not found", "SCRIPT_NOT_FOUND", nil)
		}
		log.Println("View script failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load script", "SCRIPT_VIEW_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Script found", resp)
}

// Submit stores a new script and returns its permalink. Browser form posts
// get a 302 to the new page, XHR clients get a 201 with a Location header.
// @Summary Submit script
// @Tags Scripts
// @Accept json
// @Produce json
// @Param request body dto.SubmitScriptRequest true "Script data"
// @Success 201 {object} dto.APIResponse{data=dto.SubmitScriptResponse} "Script created"
// @Failure 400 {object} dto.APIResponse "Validation or captcha failure"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /script [post]
func (h *ScriptHandler) Submit(c fiber.Ctx) error {
	var req dto.SubmitScriptRequest
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
	resp, err := h.submitFlow.Submit(h.createRequestContext(c, "/script"), &req, metadata)
	if err != nil {
		if field, ok := businessflow.IsFieldRequired(err); ok {
			return h.ErrorResponse(c, fiber.StatusBadRequest, field+" is required", "VALIDATION_ERROR", nil)
		}
		if businessflow.IsInvalidCaptcha(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid captcha", "INVALID_CAPTCHA", nil)
		}
		if businessflow.IsPermalinkExhausted(err) {
			log.Println("Submit script failed: permalink space exhausted", err)
			return h.ErrorResponse(c, fiber.StatusInternalServerError, "Could not allocate permalink", "PERMALINK_EXHAUSTED", nil)
		}
		log.Println("Submit script failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save script", "SCRIPT_SAVE_FAILED", nil)
	}

	if c.Get("X-Requested-With") == xhrHeaderValue {
		c.Set(fiber.HeaderLocation, resp.Location)
		return h.SuccessResponse(c, fiber.StatusCreated, "Script created", resp)
	}
	return c.Redirect().Status(fiber.StatusFound).To(resp.Location)
}

// Override routes form posts that tunnel another verb through __method.
// Plain HTML forms cannot issue DELETE, so the admin page posts
// __method=DELETE to the script URL instead; any other post to the
// permalink URL is an ordinary submission.
func (h *ScriptHandler) Override(c fiber.Ctx) error {
	if c.FormValue("__method") == fiber.MethodDelete {
		if c.Locals(string(utils.AdminIDKey)) == nil {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "UNAUTHORIZED", nil)
		}
		return h.Delete(c)
	}
	return h.Submit(c)
}

// Delete removes a script and its comments (admin only, enforced in routing)
// @Summary Delete script
// @Tags Scripts
// @Produce json
// @Param permalink path string true "Script permalink"
// @Success 200 {object} dto.APIResponse{data=dto.DeleteScriptResponse} "Script deleted"
// @Failure 400 {object} dto.APIResponse "Permalink missing"
// @Failure 401 {object} dto.APIResponse "Admin authentication required"
// @Failure 404 {object} dto.APIResponse "Script not found"
// @Router /script/{permalink} [delete]
func (h *ScriptHandler) Delete(c fiber.Ctx) error {
	permalink := c.Params("permalink")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	resp, err := h.adminFlow.DeleteScript(h.createRequestContext(c, "/script/"+permalink), permalink, metadata)
	if err != nil {
		if businessflow.IsPermalinkMissing(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Permalink is required", "PERMALINK_MISSING", nil)
		}
		if businessflow.IsScriptNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Script not found", "SCRIPT_NOT_FOUND", nil)
		}
		log.Println("Delete script failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete script", "SCRIPT_DELETE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Script deleted", resp)
}

// ListTags returns tags ordered by usage
// @Summary List tags
// @Tags Tags
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.TagListResponse} "Tags"
// @Router /api/v1/tags [get]
func (h *ScriptHandler) ListTags(c fiber.Ctx) error {
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil && v > 0 {
			limit = v
		}
	}

	resp, err := h.viewFlow.ListTags(h.createRequestContext(c, "/api/v1/tags"), limit)
	if err != nil {
		log.Println("List tags failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list tags", "TAG_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Tags", resp)
}

func (h *ScriptHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 10*time.Second)
}

func (h *ScriptHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
