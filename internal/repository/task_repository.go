package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tasktracker/internal/model"
)

// TaskFilter restricts a task listing. Zero fields do not constrain; all set
// fields must match.
type TaskFilter struct {
	AssignedTo *uuid.UUID
	Status     string
	Priority   string
}

// TaskSort is a parsed sort specification: a column and a direction.
type TaskSort struct {
	Column string
	Desc   bool
}

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	List(ctx context.Context, filter TaskFilter, sort TaskSort, offset, limit int) ([]model.Task, error)
	Count(ctx context.Context, filter TaskFilter) (int64, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository builds a GORM-backed repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) List(ctx context.Context, filter TaskFilter, sort TaskSort, offset, limit int) ([]model.Task, error) {
	var tasks []model.Task
	q := applyFilter(r.db.WithContext(ctx), filter)
	q = q.Order(clause.OrderByColumn{
		Column: clause.Column{Name: sort.Column},
		Desc:   sort.Desc,
	})
	if err := q.Offset(offset).Limit(limit).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) Count(ctx context.Context, filter TaskFilter) (int64, error) {
	var count int64
	if err := applyFilter(r.db.WithContext(ctx).Model(&model.Task{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *taskRepository) Update(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Task{}).Error
}

func applyFilter(q *gorm.DB, filter TaskFilter) *gorm.DB {
	if filter.AssignedTo != nil {
		q = q.Where("assigned_to = ?", *filter.AssignedTo)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	return q
}
