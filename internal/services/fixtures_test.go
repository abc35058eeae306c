package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"trackit-api/internal/auth"
	"trackit-api/internal/models"
	"trackit-api/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testPassword = "password123"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	hashed, err := auth.HashPassword(testPassword)
	require.NoError(t, err)
	u := &models.User{
		Firstname:  "Test",
		Lastname:   "User",
		Email:      email,
		Password:   hashed,
		Role:       role,
		AuthMethod: models.AuthLocal,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

type taskFixture struct {
	db          *gorm.DB
	handler     *models.User
	other       *models.User
	category    *models.Category
	subCategory *models.SubCategory
	tasks       *TaskService
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()
	db := newTestDB(t)
	ctx := context.Background()
	handler := seedUser(t, db, "handler@trackit.io", models.RoleUser)
	other := seedUser(t, db, "other@trackit.io", models.RoleUser)

	category, err := NewCategoryService(db).Create(ctx, CategoryInput{Title: "Maintenance"}, handler)
	require.NoError(t, err)
	subCategory, err := NewSubCategoryService(db).Create(ctx, CategoryInput{Title: "Pumps"}, handler)
	require.NoError(t, err)

	return &taskFixture{
		db:          db,
		handler:     handler,
		other:       other,
		category:    category,
		subCategory: subCategory,
		tasks:       NewTaskService(db),
	}
}

func (f *taskFixture) input(title string) CreateTaskInput {
	return CreateTaskInput{
		Title:         title,
		Description:   "replace worn parts",
		Vendor:        "Acme Supplies",
		Amount:        decimal.RequireFromString("1250.50"),
		Approver:      models.ApproverTES,
		CategoryID:    f.category.ID,
		SubCategoryID: f.subCategory.ID,
	}
}

func (f *taskFixture) create(t *testing.T, title string) *models.Task {
	t.Helper()
	task, err := f.tasks.Create(context.Background(), f.input(title), f.handler)
	require.NoError(t, err)
	return task
}

type sentMail struct {
	to   string
	link string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, to, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, link: link})
	return nil
}

func (m *fakeMailer) last(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "expected a reset email")
	return m.sent[len(m.sent)-1]
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// rawTokenFrom extracts the raw reset token from a reset link.
func rawTokenFrom(t *testing.T, link string) string {
	t.Helper()
	idx := strings.LastIndex(link, "/reset-password/")
	require.GreaterOrEqual(t, idx, 0, "unexpected reset link %q", link)
	return link[idx+len("/reset-password/"):]
}

func ptr[T any](v T) *T {
	return &v
}
