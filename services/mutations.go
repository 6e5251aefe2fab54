package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hucha-app/hucha-api/models"
	"github.com/hucha-app/hucha-api/store"
)

// The domain mutators. Each validates its own preconditions inside the
// transaction, so concurrent admins cannot race a check against a stale
// read.

// AddTask creates a task assigned to an existing user. The id comes from the
// document's nextTaskId counter; task type is exam when the category is the
// exam category.
func (s *Session) AddTask(ctx context.Context, title, description, category, assignedTo string) (*models.Task, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	category = strings.TrimSpace(category)
	assignedTo = strings.ToLower(strings.TrimSpace(assignedTo))

	if title == "" || description == "" || category == "" || assignedTo == "" {
		return nil, fmt.Errorf("%w: title, description, category and assignedTo are required", store.ErrValidation)
	}

	var created *models.Task
	err := s.ApplyMutation(ctx, "addTask", func(doc *models.AppDocument) (bool, error) {
		if _, ok := doc.Users[assignedTo]; !ok {
			return false, fmt.Errorf("%w: user %q", store.ErrNotFound, assignedTo)
		}
		if !containsCategory(doc.Categories, category) {
			return false, fmt.Errorf("%w: category %q does not exist", store.ErrValidation, category)
		}

		taskType := models.TaskTypeGeneral
		if category == models.ExamCategory {
			taskType = models.TaskTypeExam
		}
		task := &models.Task{
			ID:          doc.NextTaskID,
			Title:       title,
			Description: description,
			Category:    category,
			AssignedTo:  assignedTo,
			Type:        taskType,
		}
		doc.NextTaskID++
		doc.Tasks = append(doc.Tasks, task)
		created = task
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AddCategory appends a category. An existing name is a silent no-op so the
// category list never grows duplicates.
func (s *Session) AddCategory(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: category name is required", store.ErrValidation)
	}

	return s.ApplyMutation(ctx, "addCategory", func(doc *models.AppDocument) (bool, error) {
		if containsCategory(doc.Categories, name) {
			return false, nil
		}
		doc.Categories = append(doc.Categories, name)
		return true, nil
	})
}

// RegisterWalletMovement records an income or expense for a user. Expense
// entries carry a positive amount; which list holds them implies the sign.
func (s *Session) RegisterWalletMovement(ctx context.Context, username string, amount float64, description, kind string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	description = strings.TrimSpace(description)

	if username == "" || description == "" {
		return fmt.Errorf("%w: username and description are required", store.ErrValidation)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be greater than zero", store.ErrValidation)
	}
	switch kind {
	case models.MovementIncome, models.MovementFixedExpense, models.MovementExtraExpense:
	default:
		return fmt.Errorf("%w: unknown movement kind %q", store.ErrValidation, kind)
	}

	return s.ApplyMutation(ctx, "registerWalletMovement", func(doc *models.AppDocument) (bool, error) {
		user, ok := doc.Users[username]
		if !ok {
			return false, fmt.Errorf("%w: user %q", store.ErrNotFound, username)
		}

		entry := models.Movement{
			Amount:      amount,
			Description: description,
			Date:        time.Now().Format(models.MovementDateLayout),
		}
		if kind == models.MovementIncome {
			user.Wallet.Balance += amount
			user.Wallet.Incomes = append(user.Wallet.Incomes, entry)
		} else {
			user.Wallet.Balance -= amount
			user.Wallet.Expenses = append(user.Wallet.Expenses, entry)
		}
		return true, nil
	})
}

// UpdateTaskCompletion sets a task's completed flag. Setting the flag to its
// current value is a no-op.
func (s *Session) UpdateTaskCompletion(ctx context.Context, taskID int, completed bool) error {
	return s.ApplyMutation(ctx, "updateTaskCompletion", func(doc *models.AppDocument) (bool, error) {
		task := doc.FindTask(taskID)
		if task == nil {
			return false, fmt.Errorf("%w: task %d", store.ErrNotFound, taskID)
		}
		if task.Completed == completed {
			return false, nil
		}
		task.Completed = completed
		return true, nil
	})
}

// SaveExamResult stores an exam score and grants its reward exactly once:
// when the task already has a granted reward the call is a silent no-op, so
// retries and duplicate submits cannot pay twice. The wallet entry records
// the absolute reward (a zero reward still appends a zero-amount income so
// the history shows the graded event) and the balance moves by exactly the
// signed reward.
func (s *Session) SaveExamResult(ctx context.Context, taskID int, username string, score float64) (*models.Task, float64, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if err := ValidateScore(score); err != nil {
		return nil, 0, err
	}
	reward := CalculateExamReward(score)

	var result *models.Task
	var granted float64
	err := s.ApplyMutation(ctx, "saveExamResult", func(doc *models.AppDocument) (bool, error) {
		task := doc.FindTask(taskID)
		if task == nil {
			return false, fmt.Errorf("%w: task %d", store.ErrNotFound, taskID)
		}
		if task.AssignedTo != username {
			return false, fmt.Errorf("%w: task %d is not assigned to %q", store.ErrValidation, taskID, username)
		}
		if task.Type != models.TaskTypeExam {
			return false, fmt.Errorf("%w: task %d is not an exam", store.ErrValidation, taskID)
		}

		if task.RewardGranted {
			// Reward already granted: score and rewardAmount are frozen.
			result = task
			if task.RewardAmount != nil {
				granted = *task.RewardAmount
			}
			return false, nil
		}

		user, ok := doc.Users[username]
		if !ok {
			return false, fmt.Errorf("%w: user %q", store.ErrNotFound, username)
		}

		scoreValue := score
		rewardValue := reward
		task.Score = &scoreValue
		task.RewardGranted = true
		task.RewardAmount = &rewardValue

		entry := models.Movement{
			Amount:      abs(reward),
			Description: fmt.Sprintf("Recompensa examen %q", task.Title),
			Date:        time.Now().Format(models.MovementDateLayout),
		}
		user.Wallet.Balance += reward
		if reward >= 0 {
			user.Wallet.Incomes = append(user.Wallet.Incomes, entry)
		} else {
			user.Wallet.Expenses = append(user.Wallet.Expenses, entry)
		}

		result = task
		granted = reward
		return true, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return result, granted, nil
}

func containsCategory(categories []string, name string) bool {
	for _, c := range categories {
		if c == name {
			return true
		}
	}
	return false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
