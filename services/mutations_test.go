package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hucha-app/hucha-api/models"
	"github.com/hucha-app/hucha-api/store"
)

// newLocalSession builds a ready session running against a throwaway local
// slot, the simplest backend for exercising the mutators.
func newLocalSession(t *testing.T) *Session {
	t.Helper()
	local := store.NewLocalStore(filepath.Join(t.TempDir(), "state.json"))
	s := NewSession(nil, local, nil)
	s.Start(context.Background())
	require.NoError(t, s.WaitReady(context.Background()))
	require.Equal(t, ModeLocal, s.Mode())
	return s
}

func TestRegisterWalletMovement_IncomeAndExpense(t *testing.T) {
	s := newLocalSession(t)
	ctx := context.Background()

	require.NoError(t, s.RegisterWalletMovement(ctx, "carlota", 20, "allowance", models.MovementIncome))
	require.NoError(t, s.RegisterWalletMovement(ctx, "carlota", 5, "snack", models.MovementExtraExpense))

	wallet := s.State().Users["carlota"].Wallet
	assert.Equal(t, 15.0, wallet.Balance)
	require.Len(t, wallet.Incomes, 1)
	assert.Equal(t, 20.0, wallet.Incomes[0].Amount)
	assert.Equal(t, "allowance", wallet.Incomes[0].Description)
	require.Len(t, wallet.Expenses, 1)
	assert.Equal(t, 5.0, wallet.Expenses[0].Amount)

	// The movement reached the slot, not just memory
	persisted, err := s.local.Load()
	require.NoError(t, err)
	assert.Equal(t, 15.0, persisted.Users["carlota"].Wallet.Balance)
}

func TestRegisterWalletMovement_FixedExpenseSubtracts(t *testing.T) {
	s := newLocalSession(t)

	require.NoError(t, s.RegisterWalletMovement(context.Background(), "carlota", 7.5, "bus", models.MovementFixedExpense))
	wallet := s.State().Users["carlota"].Wallet
	assert.Equal(t, -7.5, wallet.Balance)
	assert.Len(t, wallet.Expenses, 1)
}

func TestRegisterWalletMovement_Validation(t *testing.T) {
	s := newLocalSession(t)
	ctx := context.Background()

	err := s.RegisterWalletMovement(ctx, "carlota", 0, "x", models.MovementIncome)
	assert.ErrorIs(t, err, store.ErrValidation)

	err = s.RegisterWalletMovement(ctx, "carlota", -3, "x", models.MovementIncome)
	assert.ErrorIs(t, err, store.ErrValidation)

	err = s.RegisterWalletMovement(ctx, "carlota", 3, "x", "donation")
	assert.ErrorIs(t, err, store.ErrValidation)

	err = s.RegisterWalletMovement(ctx, "nadie", 3, "x", models.MovementIncome)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Nothing was written
	wallet := s.State().Users["carlota"].Wallet
	assert.Equal(t, 0.0, wallet.Balance)
	assert.Empty(t, wallet.Incomes)
}

func TestAddCategory_DuplicateIsNoOp(t *testing.T) {
	s := newLocalSession(t)
	ctx := context.Background()

	require.NoError(t, s.AddCategory(ctx, models.ExamCategory))
	assert.Equal(t, models.SeedCategories(), s.State().Categories)

	require.NoError(t, s.AddCategory(ctx, "Deporte"))
	assert.Equal(t, append(models.SeedCategories(), "Deporte"), s.State().Categories)

	require.NoError(t, s.AddCategory(ctx, "Deporte"))
	assert.Len(t, s.State().Categories, 5)
}

func TestAddTask_AssignsIncreasingIDs(t *testing.T) {
	s := newLocalSession(t)
	ctx := context.Background()

	first, err := s.AddTask(ctx, "Hacer la cama", "Cada mañana", "Tareas del hogar", "carlota")
	require.NoError(t, err)
	second, err := s.AddTask(ctx, "Examen de mates", "Tema 4", models.ExamCategory, "carlota")
	require.NoError(t, err)

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)
	assert.Equal(t, models.TaskTypeGeneral, first.Type)
	assert.Equal(t, models.TaskTypeExam, second.Type)
	assert.False(t, second.RewardGranted)
	assert.Nil(t, second.Score)

	doc := s.State()
	assert.Equal(t, 3, doc.NextTaskID)
	assert.Len(t, doc.Tasks, 2)
}

func TestAddTask_Preconditions(t *testing.T) {
	s := newLocalSession(t)
	ctx := context.Background()

	_, err := s.AddTask(ctx, "t", "d", "Tareas del hogar", "nadie")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.AddTask(ctx, "t", "d", "No existe", "carlota")
	assert.ErrorIs(t, err, store.ErrValidation)

	_, err = s.AddTask(ctx, "", "d", "Tareas del hogar", "carlota")
	assert.ErrorIs(t, err, store.ErrValidation)

	assert.Empty(t, s.State().Tasks)
}

func TestUpdateTaskCompletion(t *testing.T) {
	s := newLocalSession(t)
	ctx := context.Background()

	task, err := s.AddTask(ctx, "Recoger", "El cuarto", "Tareas del hogar", "carlota")
	require.NoError(t, err)

	require.NoError(t, s.UpdateTaskCompletion(ctx, task.ID, true))
	assert.True(t, s.State().FindTask(task.ID).Completed)

	// Setting the same value again is fine
	require.NoError(t, s.UpdateTaskCompletion(ctx, task.ID, true))

	require.NoError(t, s.UpdateTaskCompletion(ctx, task.ID, false))
	assert.False(t, s.State().FindTask(task.ID).Completed)

	assert.ErrorIs(t, s.UpdateTaskCompletion(ctx, 999, true), store.ErrNotFound)
}

func TestSaveExamResult_GrantsRewardOnce(t *testing.T) {
	s := newLocalSession(t)
	ctx := context.Background()

	task, err := s.AddTask(ctx, "Examen de lengua", "Tema 2", models.ExamCategory, "carlota")
	require.NoError(t, err)

	saved, reward, err := s.SaveExamResult(ctx, task.ID, "carlota", 9.5)
	require.NoError(t, err)
	assert.Equal(t, 10.0, reward)
	require.NotNil(t, saved.Score)
	assert.Equal(t, 9.5, *saved.Score)
	assert.True(t, saved.RewardGranted)

	wallet := s.State().Users["carlota"].Wallet
	assert.Equal(t, 10.0, wallet.Balance)
	require.Len(t, wallet.Incomes, 1)
	assert.Equal(t, 10.0, wallet.Incomes[0].Amount)
	assert.Equal(t, `Recompensa examen "Examen de lengua"`, wallet.Incomes[0].Description)

	// A second submit with a different score changes nothing
	again, reward2, err := s.SaveExamResult(ctx, task.ID, "carlota", 2.0)
	require.NoError(t, err)
	assert.Equal(t, 10.0, reward2, "original reward is reported back")
	assert.Equal(t, 9.5, *again.Score)
	assert.Equal(t, 10.0, *again.RewardAmount)

	wallet = s.State().Users["carlota"].Wallet
	assert.Equal(t, 10.0, wallet.Balance, "balance moved exactly once")
	assert.Len(t, wallet.Incomes, 1)
	assert.Empty(t, wallet.Expenses)
}

func TestSaveExamResult_PenaltyGoesToExpenses(t *testing.T) {
	s := newLocalSession(t)
	ctx := context.Background()

	task, err := s.AddTask(ctx, "Examen de inglés", "Unit 3", models.ExamCategory, "carlota")
	require.NoError(t, err)

	_, reward, err := s.SaveExamResult(ctx, task.ID, "carlota", 5.0)
	require.NoError(t, err)
	assert.Equal(t, -30.0, reward)

	wallet := s.State().Users["carlota"].Wallet
	assert.Equal(t, -30.0, wallet.Balance)
	require.Len(t, wallet.Expenses, 1)
	assert.Equal(t, 30.0, wallet.Expenses[0].Amount, "expense entries store positive amounts")
	assert.Empty(t, wallet.Incomes)
}

func TestSaveExamResult_ZeroRewardStillRecorded(t *testing.T) {
	s := newLocalSession(t)
	ctx := context.Background()

	task, err := s.AddTask(ctx, "Examen de historia", "Tema 1", models.ExamCategory, "carlota")
	require.NoError(t, err)

	_, reward, err := s.SaveExamResult(ctx, task.ID, "carlota", 8.2)
	require.NoError(t, err)
	assert.Equal(t, 0.0, reward)

	wallet := s.State().Users["carlota"].Wallet
	assert.Equal(t, 0.0, wallet.Balance)
	require.Len(t, wallet.Incomes, 1, "the graded event shows in the history")
	assert.Equal(t, 0.0, wallet.Incomes[0].Amount)
}

func TestSaveExamResult_Preconditions(t *testing.T) {
	s := newLocalSession(t)
	ctx := context.Background()

	general, err := s.AddTask(ctx, "Fregar", "Los platos", "Tareas del hogar", "carlota")
	require.NoError(t, err)
	exam, err := s.AddTask(ctx, "Examen", "Tema 5", models.ExamCategory, "carlota")
	require.NoError(t, err)

	_, _, err = s.SaveExamResult(ctx, exam.ID, "carlota", 11)
	assert.ErrorIs(t, err, store.ErrValidation)

	_, _, err = s.SaveExamResult(ctx, exam.ID, "carlota", -1)
	assert.ErrorIs(t, err, store.ErrValidation)

	_, _, err = s.SaveExamResult(ctx, general.ID, "carlota", 9)
	assert.ErrorIs(t, err, store.ErrValidation)

	_, _, err = s.SaveExamResult(ctx, exam.ID, "admin", 9)
	assert.ErrorIs(t, err, store.ErrValidation)

	_, _, err = s.SaveExamResult(ctx, 404, "carlota", 9)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
