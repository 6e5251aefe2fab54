package models

// ============================================================================
// API REQUESTS / RESPONSES
// ============================================================================

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type AddTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Category    string `json:"category" binding:"required"`
	AssignedTo  string `json:"assignedTo" binding:"required"`
}

type AddCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

type MovementRequest struct {
	Username    string  `json:"username" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Kind        string  `json:"kind" binding:"required"`
}

type CompletionRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

type ScoreRequest struct {
	Score *float64 `json:"score" binding:"required"`
}

type ScoreResponse struct {
	Task   *Task   `json:"task"`
	Reward float64 `json:"reward"`
}
