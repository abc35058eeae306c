package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"trackit-api/internal/database"
	"trackit-api/internal/mail"
	"trackit-api/internal/middleware"
	"trackit-api/internal/models"
	"trackit-api/internal/testutil"
	"trackit-api/internal/throttle"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const (
	testCookie   = "TrackIt"
	testPassword = "password123"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (e envelope) decode(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(e.Data, v))
}

// decodeKey unmarshals the named member of the data object.
func (e envelope) decodeKey(t *testing.T, key string, v any) {
	t.Helper()
	var data map[string]json.RawMessage
	e.decode(t, &data)
	raw, ok := data[key]
	require.True(t, ok, "data has no %q member: %s", key, string(e.Data))
	require.NoError(t, json.Unmarshal(raw, v))
}

type captureMailer struct {
	mu    sync.Mutex
	links []string
}

func (m *captureMailer) SendPasswordReset(_ context.Context, _, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links = append(m.links, link)
	return nil
}

func (m *captureMailer) lastToken(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.links)
	link := m.links[len(m.links)-1]
	return link[strings.LastIndex(link, "/")+1:]
}

// newTestRouter wires every handler the way the server does, on a fresh
// in-memory database.
func newTestRouter(t *testing.T) (*gin.Engine, *captureMailer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	mailer := &captureMailer{}
	prevMailer := mail.Get()
	mail.Set(mailer)
	t.Cleanup(func() { mail.Set(prevMailer) })

	Configure(Settings{
		SessionCookie: testCookie,
		ClientURL:     "http://localhost:5173",
		ResetLimiter:  throttle.NewLimiter(3, 10*time.Minute),
	})

	r := gin.New()
	session := middleware.SessionAuth(testCookie)
	api := r.Group("/api")

	users := api.Group("/users")
	users.POST("/register", Register)
	users.POST("/check", CheckUser)
	users.POST("/login", Login)
	users.POST("/forgot-password", ForgotPassword)
	users.POST("/reset-password/:token", ResetPassword)
	users.GET("/checkauth", session, CheckAuth)
	users.POST("/logout", session, Logout)
	users.PATCH("/:id/role", session, middleware.RequireRole(models.RoleAdmin, models.RoleHead), ChangeRole)

	tasks := api.Group("/tasks")
	tasks.GET("", GetTasks)
	tasks.GET("/:id", GetTaskByID)
	tasks.POST("/create", session, CreateTask)
	tasks.PATCH("/:id", session, UpdateTask)
	tasks.DELETE("/:id", session, DeleteTask)

	reports := api.Group("/reports")
	reports.GET("", GetReports)
	reports.GET("/:id", GetReportByID)
	reports.POST("/create", session, CreateReport)
	reports.PATCH("/:id", session, UpdateReport)
	reports.DELETE("/:id", session, DeleteReport)

	categories := api.Group("/categories")
	categories.GET("", GetCategories)
	categories.GET("/:id", GetCategoryByID)
	categories.POST("/create", session, CreateCategory)
	categories.PUT("/:id", session, UpdateCategory)
	categories.DELETE("/:id", session, DeleteCategory)

	subCategories := api.Group("/subcategories")
	subCategories.GET("", GetSubCategories)
	subCategories.POST("/create", session, CreateSubCategory)

	regions := api.Group("/regions")
	regions.GET("", GetRegions)
	regions.GET("/:id", GetRegionByID)
	regions.POST("/create", session, CreateRegion)

	stations := api.Group("/stations")
	stations.GET("", GetStations)
	stations.GET("/:id", GetStationByID)
	stations.POST("/create", session, CreateStation)
	stations.PATCH("/:id", session, UpdateStation)

	reportCategories := api.Group("/reportcategories")
	reportCategories.GET("", GetReportCategories)
	reportCategories.POST("/create", session, CreateReportCategory)

	return r, mailer
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, cookie *http.Cookie) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return w, env
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == testCookie {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", testCookie)
	return nil
}

// registerAndLogin creates an account through the API and returns its id
// and session cookie.
func registerAndLogin(t *testing.T, r *gin.Engine, email string) (string, *http.Cookie) {
	t.Helper()
	w, _ := doJSON(t, r, http.MethodPost, "/api/users/register", gin.H{
		"firstname": "Jane",
		"lastname":  "Doe",
		"email":     email,
		"password":  testPassword,
		"passmatch": testPassword,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env := doJSON(t, r, http.MethodPost, "/api/users/login", gin.H{"email": email, "password": testPassword}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var data struct {
		User models.User `json:"user"`
	}
	env.decode(t, &data)
	return data.User.ID, sessionCookie(t, w)
}

func createdID(t *testing.T, env envelope, key string) string {
	t.Helper()
	var item struct {
		ID string `json:"id"`
	}
	env.decodeKey(t, key, &item)
	require.NotEmpty(t, item.ID)
	return item.ID
}
