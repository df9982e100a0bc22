package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tasktracker/internal/auth"
	"tasktracker/internal/errors"
	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// sortColumns whitelists API sort fields and maps them to DB columns.
var sortColumns = map[string]string{
	"title":     "title",
	"status":    "status",
	"priority":  "priority",
	"dueDate":   "due_date",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// CreateTaskInput carries the caller-supplied task fields. The assignee is
// never taken from the caller.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     time.Time
	Documents   []string
}

// UpdateTaskInput carries a partial task update. Nil fields are left
// unchanged. Documents, when set, replaces the stored list.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
	Documents   []string
}

// ListTasksOptions narrows and pages a task listing.
type ListTasksOptions struct {
	Status   string
	Priority string
	Sort     string
	Page     int
	Limit    int
}

// TaskPage is one page of a task listing.
type TaskPage struct {
	Tasks       []model.Task `json:"tasks"`
	CurrentPage int          `json:"currentPage"`
	TotalPages  int          `json:"totalPages"`
	TotalTasks  int64        `json:"totalTasks"`
}

// TaskService builds identity-scoped views over the task collection and
// enforces ownership on single-record operations.
type TaskService interface {
	Create(ctx context.Context, identity auth.Identity, input CreateTaskInput) (*model.Task, error)
	List(ctx context.Context, identity auth.Identity, opts ListTasksOptions) (*TaskPage, error)
	GetByID(ctx context.Context, identity auth.Identity, id string) (*model.Task, error)
	Update(ctx context.Context, identity auth.Identity, id string, input UpdateTaskInput) (*model.Task, error)
	Delete(ctx context.Context, identity auth.Identity, id string) error
}

type taskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
}

// NewTaskService builds a TaskService.
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository) TaskService {
	return &taskService{taskRepo: taskRepo, userRepo: userRepo}
}

// Create persists a new task assigned to the acting identity, regardless of
// any assignee the caller supplied.
func (s *taskService) Create(ctx context.Context, identity auth.Identity, input CreateTaskInput) (*model.Task, error) {
	task := &model.Task{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		AssignedTo:  identity.ID,
		Documents:   model.StringList(input.Documents),
	}
	if task.Status == "" {
		task.Status = model.StatusToDo
	}
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.resolveAssignees(ctx, []*model.Task{task})
	return task, nil
}

// List returns one page of tasks visible to the identity. Non-admins only
// ever see tasks assigned to themselves; status and priority narrow the
// filter further.
func (s *taskService) List(ctx context.Context, identity auth.Identity, opts ListTasksOptions) (*TaskPage, error) {
	filter := repository.TaskFilter{
		Status:   opts.Status,
		Priority: opts.Priority,
	}
	if !identity.IsAdmin() {
		id := identity.ID
		filter.AssignedTo = &id
	}

	page := opts.Page
	if page < 1 {
		page = defaultPage
	}
	limit := opts.Limit
	if limit < 1 {
		limit = defaultLimit
	}

	tasks, err := s.taskRepo.List(ctx, filter, parseSort(opts.Sort), (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	total, err := s.taskRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}

	refs := make([]*model.Task, len(tasks))
	for i := range tasks {
		refs[i] = &tasks[i]
	}
	s.resolveAssignees(ctx, refs)

	return &TaskPage{
		Tasks:       tasks,
		CurrentPage: page,
		TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
		TotalTasks:  total,
	}, nil
}

// GetByID returns a single task after the ownership check. Malformed and
// unknown identifiers are indistinguishable: both are a 404.
func (s *taskService) GetByID(ctx context.Context, identity auth.Identity, id string) (*model.Task, error) {
	task, err := s.fetchOwned(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	s.resolveAssignees(ctx, []*model.Task{task})
	return task, nil
}

// Update applies a partial update to an owned task. A non-nil Documents
// list replaces the stored one.
func (s *taskService) Update(ctx context.Context, identity auth.Identity, id string, input UpdateTaskInput) (*model.Task, error) {
	task, err := s.fetchOwned(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = *input.DueDate
	}
	if input.Documents != nil {
		task.Documents = model.StringList(input.Documents)
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	s.resolveAssignees(ctx, []*model.Task{task})
	return task, nil
}

// Delete removes an owned task.
func (s *taskService) Delete(ctx context.Context, identity auth.Identity, id string) error {
	task, err := s.fetchOwned(ctx, identity, id)
	if err != nil {
		return err
	}
	if err := s.taskRepo.Delete(ctx, task.ID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// fetchOwned loads a task and applies the ownership gate: admins pass
// unconditionally, everyone else must be the assignee.
func (s *taskService) fetchOwned(ctx context.Context, identity auth.Identity, id string) (*model.Task, error) {
	taskID, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.ErrTaskNotFound
	}
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	if !identity.CanAccess(task.AssignedTo) {
		return nil, errors.ErrUnauthorized
	}
	return task, nil
}

// resolveAssignees fills AssigneeEmail on each task from the users
// collection. A dangling assignee reference leaves the field empty.
func (s *taskService) resolveAssignees(ctx context.Context, tasks []*model.Task) {
	if len(tasks) == 0 {
		return
	}
	seen := make(map[uuid.UUID]struct{}, len(tasks))
	ids := make([]uuid.UUID, 0, len(tasks))
	for _, t := range tasks {
		if _, ok := seen[t.AssignedTo]; !ok {
			seen[t.AssignedTo] = struct{}{}
			ids = append(ids, t.AssignedTo)
		}
	}
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return
	}
	emails := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		emails[u.ID] = u.Email
	}
	for _, t := range tasks {
		t.AssigneeEmail = emails[t.AssignedTo]
	}
}

// parseSort turns the API sort parameter into a typed column/direction
// pair. A "-" prefix means descending; unknown fields fall back to the
// default ordering, newest first.
func parseSort(sort string) repository.TaskSort {
	if sort == "" {
		return repository.TaskSort{Column: "created_at", Desc: true}
	}
	field := sort
	desc := false
	if strings.HasPrefix(sort, "-") {
		field = sort[1:]
		desc = true
	}
	column, ok := sortColumns[field]
	if !ok {
		return repository.TaskSort{Column: "created_at", Desc: true}
	}
	return repository.TaskSort{Column: column, Desc: desc}
}

func validateTask(task *model.Task) error {
	if task.Title == "" {
		return fmt.Errorf("%w: title is required", errors.ErrValidation)
	}
	if task.Description == "" {
		return fmt.Errorf("%w: description is required", errors.ErrValidation)
	}
	if task.DueDate.IsZero() {
		return fmt.Errorf("%w: due date is required", errors.ErrValidation)
	}
	if !model.ValidStatus(task.Status) {
		return fmt.Errorf("%w: unknown status %q", errors.ErrValidation, task.Status)
	}
	if !model.ValidPriority(task.Priority) {
		return fmt.Errorf("%w: unknown priority %q", errors.ErrValidation, task.Priority)
	}
	return nil
}
