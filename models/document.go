package models

import (
	"encoding/json"
	"sort"
)

// ============================================================================
// SHARED DOCUMENT MODEL
// ============================================================================
// The whole application state lives in one shared document. Field names are
// part of the wire contract with the frontend and with the persisted JSON.
// ============================================================================

// User roles
const (
	RoleAdmin = "admin"
	RoleBasic = "basic"
)

// Task types
const (
	TaskTypeExam    = "exam"
	TaskTypeGeneral = "general"
)

// ExamCategory is the category whose tasks are graded exams. Task type is
// derived from category name equality at creation time, like the frontend
// always did.
const ExamCategory = "Exámenes"

// Movement kinds accepted by the wallet
const (
	MovementIncome       = "income"
	MovementFixedExpense = "fixed-expense"
	MovementExtraExpense = "extra-expense"
)

type Movement struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

// MovementDateLayout matches the DD/MM/YYYY dates the original frontend wrote
// with toLocaleDateString.
const MovementDateLayout = "02/01/2006"

type Wallet struct {
	Balance  float64    `json:"balance"`
	Incomes  []Movement `json:"incomes"`
	Expenses []Movement `json:"expenses"`
}

type User struct {
	Username    string  `json:"username"`
	Password    string  `json:"password"` // plaintext: known weak point, part of the persisted shape
	Role        string  `json:"role"`
	DisplayName string  `json:"displayName"`
	Wallet      *Wallet `json:"wallet"`
}

type Task struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	AssignedTo    string   `json:"assignedTo"`
	Completed     bool     `json:"completed"`
	Type          string   `json:"type"`
	Score         *float64 `json:"score"`
	RewardGranted bool     `json:"rewardGranted"`
	RewardAmount  *float64 `json:"rewardAmount,omitempty"`
}

// AppDocument is the single shared aggregate. Unknown top-level fields read
// from the store are kept verbatim and written back (forward compatibility
// with newer frontends sharing the same document).
type AppDocument struct {
	Users      map[string]*User `json:"users"`
	Categories []string         `json:"categories"`
	Tasks      []*Task          `json:"tasks"`
	NextTaskID int              `json:"nextTaskId"`

	extra map[string]json.RawMessage
}

// SeedUsers returns the two bootstrap accounts.
func SeedUsers() map[string]*User {
	return map[string]*User{
		"admin": {
			Username:    "admin",
			Password:    "admin123",
			Role:        RoleAdmin,
			DisplayName: "Administrador",
			Wallet:      &Wallet{Incomes: []Movement{}, Expenses: []Movement{}},
		},
		"carlota": {
			Username:    "carlota",
			Password:    "carlota123",
			Role:        RoleBasic,
			DisplayName: "Carlota",
			Wallet:      &Wallet{Incomes: []Movement{}, Expenses: []Movement{}},
		},
	}
}

// SeedCategories returns the four bootstrap categories, in display order.
// The first one doubles as the kids' default tab.
func SeedCategories() []string {
	return []string{ExamCategory, "Tareas del hogar", "Gastos fijos", "Gastos extras"}
}

// SeedDocument builds the document written on first boot.
func SeedDocument() *AppDocument {
	return &AppDocument{
		Users:      SeedUsers(),
		Categories: SeedCategories(),
		Tasks:      []*Task{},
		NextTaskID: 1,
	}
}

// FindTask returns the task with the given id, or nil.
func (d *AppDocument) FindTask(id int) *Task {
	for _, t := range d.Tasks {
		if t != nil && t.ID == id {
			return t
		}
	}
	return nil
}

// BasicUsers returns the non-admin users in stable username order.
func (d *AppDocument) BasicUsers() []*User {
	names := make([]string, 0, len(d.Users))
	for name, u := range d.Users {
		if u != nil && u.Role == RoleBasic {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	users := make([]*User, 0, len(names))
	for _, name := range names {
		users = append(users, d.Users[name])
	}
	return users
}
