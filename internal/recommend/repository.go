package recommend

import (
	"context" // Context for store operations
	"time"    // Timestamps

	"referral_system/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// Repository persists recommendation batches and tasks. Every mutation of
// shared state (task status, batch accepted_count) goes through one atomic
// store transaction, never a read-then-separate-write pair.
type Repository interface {
	CreateBatch(ctx context.Context, batch *domain.RecommendationBatch, tasks []domain.RecommendationTask) error
	GetBatch(ctx context.Context, id uint) (*domain.RecommendationBatch, error)
	GetTask(ctx context.Context, id uint) (*domain.RecommendationTask, error)
	MarkSent(ctx context.Context, taskID uint) (bool, error)
	ApplyConsent(ctx context.Context, taskID uint, desired domain.TaskStatus) (Decision, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns a Repository backed by the given store handle.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// CreateBatch writes the parent batch and all of its tasks in one atomic
// multi-record write. Task IDs are filled in on the passed slice.
func (r *gormRepository) CreateBatch(ctx context.Context, batch *domain.RecommendationBatch, tasks []domain.RecommendationTask) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(batch).Error; err != nil {
			return err // Return error to rollback
		}
		for i := range tasks {
			tasks[i].BatchID = batch.ID // Attach tasks to the new batch
		}
		return tx.Create(&tasks).Error
	})
}

// GetBatch loads one batch by id.
func (r *gormRepository) GetBatch(ctx context.Context, id uint) (*domain.RecommendationBatch, error) {
	var batch domain.RecommendationBatch
	if err := r.db.WithContext(ctx).First(&batch, id).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

// GetTask loads one task by id.
func (r *gormRepository) GetTask(ctx context.Context, id uint) (*domain.RecommendationTask, error) {
	var task domain.RecommendationTask
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// MarkSent transitions a task pending -> sent with a conditional update, so a
// replayed delivery event finds zero affected rows and becomes a no-op.
func (r *gormRepository) MarkSent(ctx context.Context, taskID uint) (bool, error) {
	now := time.Now().UnixMilli()
	res := r.db.WithContext(ctx).Exec(
		"UPDATE recommendation_tasks SET status = ?, sent_at = ? WHERE id = ? AND status = ?",
		domain.TaskSent, now, taskID, domain.TaskPending,
	)
	return res.RowsAffected > 0, res.Error
}

// ApplyConsent drives one task to the desired terminal state. The task row is
// locked for the duration; the status write and the parent batch's
// accepted_count increment happen in the same transaction.
func (r *gormRepository) ApplyConsent(ctx context.Context, taskID uint, desired domain.TaskStatus) (Decision, error) {
	var decision Decision
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task struct {
			ID      uint
			BatchID uint
			Status  domain.TaskStatus
		}
		res := tx.Raw("SELECT id, batch_id, status FROM recommendation_tasks WHERE id = ? FOR UPDATE", taskID).Scan(&task)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTaskNotFound // No state mutation occurs
		}
		d, err := DecideConsent(task.Status, desired)
		if err != nil {
			return err // Conflict or invalid outcome; nothing written
		}
		decision = d
		if d == DecisionNoop {
			return nil // Same terminal replay
		}
		now := time.Now().UnixMilli()
		if err := tx.Exec(
			"UPDATE recommendation_tasks SET status = ?, handled_at = ? WHERE id = ?",
			desired, now, taskID,
		).Error; err != nil {
			return err // Return error to rollback
		}
		if desired == domain.TaskAccepted {
			// Aggregate step: only a genuine transition to accepted bumps the counter
			return tx.Exec(
				"UPDATE recommendation_batches SET accepted_count = accepted_count + 1 WHERE id = ?",
				task.BatchID,
			).Error
		}
		return nil // Commit transaction
	})
	return decision, err
}
