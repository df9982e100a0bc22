package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"tasktracker/internal/auth"
	"tasktracker/internal/errors"
	"tasktracker/internal/service"
	"tasktracker/internal/upload"
)

// documentsField is the multipart field name carrying task attachments.
const documentsField = "documents"

// TaskHandler handles task endpoints.
type TaskHandler struct {
	taskService service.TaskService
	uploads     *upload.Validator
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(taskService service.TaskService, uploads *upload.Validator) *TaskHandler {
	return &TaskHandler{taskService: taskService, uploads: uploads}
}

// CreateTaskRequest represents a task creation request. Bodies may arrive
// as JSON or as multipart form fields alongside file parts.
type CreateTaskRequest struct {
	Title       string `json:"title" form:"title" validate:"required"`
	Description string `json:"description" form:"description" validate:"required"`
	Status      string `json:"status" form:"status"`
	Priority    string `json:"priority" form:"priority"`
	DueDate     string `json:"dueDate" form:"dueDate" validate:"required"`
}

// UpdateTaskRequest represents a partial task update.
type UpdateTaskRequest struct {
	Title       *string `json:"title" form:"title"`
	Description *string `json:"description" form:"description"`
	Status      *string `json:"status" form:"status"`
	Priority    *string `json:"priority" form:"priority"`
	DueDate     *string `json:"dueDate" form:"dueDate"`
}

// Create godoc
// @Summary Create a task assigned to the caller
// @Tags tasks
// @Accept json
// @Accept mpfd
// @Produce json
// @Param request body CreateTaskRequest true "Task fields"
// @Success 201 {object} model.Task
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return respondError(c, errors.ErrUnauthorized)
	}

	var req CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return respondError(c, err)
	}

	documents, err := h.stageAttachments(c)
	if err != nil {
		return respondError(c, err)
	}

	task, err := h.taskService.Create(c.Request().Context(), identity, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     dueDate,
		Documents:   documents,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, task)
}

// List godoc
// @Summary List tasks visible to the caller
// @Tags tasks
// @Produce json
// @Param status query string false "Filter by status"
// @Param priority query string false "Filter by priority"
// @Param sort query string false "Sort field, '-' prefix for descending"
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 10)"
// @Success 200 {object} service.TaskPage
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return respondError(c, errors.ErrUnauthorized)
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.taskService.List(c.Request().Context(), identity, service.ListTasksOptions{
		Status:   c.QueryParam("status"),
		Priority: c.QueryParam("priority"),
		Sort:     c.QueryParam("sort"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// GetByID godoc
// @Summary Get a single task
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} model.Task
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetByID(c echo.Context) error {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return respondError(c, errors.ErrUnauthorized)
	}

	task, err := h.taskService.GetByID(c.Request().Context(), identity, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

// Update godoc
// @Summary Update a task
// @Tags tasks
// @Accept json
// @Accept mpfd
// @Produce json
// @Param id path string true "Task ID"
// @Param request body UpdateTaskRequest true "Fields to update"
// @Success 200 {object} model.Task
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [put]
func (h *TaskHandler) Update(c echo.Context) error {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return respondError(c, errors.ErrUnauthorized)
	}

	var req UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	input := service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	}
	if req.DueDate != nil {
		dueDate, err := parseDueDate(*req.DueDate)
		if err != nil {
			return respondError(c, err)
		}
		input.DueDate = &dueDate
	}

	documents, err := h.stageAttachments(c)
	if err != nil {
		return respondError(c, err)
	}
	if documents != nil {
		// Attached files replace the stored document list.
		input.Documents = documents
	}

	task, err := h.taskService.Update(c.Request().Context(), identity, c.Param("id"), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

// Delete godoc
// @Summary Delete a task
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return respondError(c, errors.ErrUnauthorized)
	}

	if err := h.taskService.Delete(c.Request().Context(), identity, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "task removed"})
}

// stageAttachments validates and stores any files attached under the
// documents field. Returns nil when the request carries no file parts, so
// callers can tell "no files" apart from "zero valid files".
func (h *TaskHandler) stageAttachments(c echo.Context) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// Not a multipart request: nothing to stage.
		return nil, nil
	}
	files := form.File[documentsField]
	if len(files) == 0 {
		return nil, nil
	}
	return h.uploads.Save(documentsField, files)
}

func parseDueDate(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid due date %q", errors.ErrValidation, raw)
}
