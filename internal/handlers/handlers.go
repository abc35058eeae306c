package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"trackit-api/internal/apperror"
	"trackit-api/internal/database"
	"trackit-api/internal/mail"
	"trackit-api/internal/middleware"
	"trackit-api/internal/models"
	"trackit-api/internal/response"
	"trackit-api/internal/services"
	"trackit-api/internal/throttle"

	"github.com/gin-gonic/gin"
)

// Settings holds the account and session options the handlers need.
type Settings struct {
	SessionCookie string
	CookieSecure  bool
	ClientURL     string
	ResetLimiter  *throttle.Limiter
}

var (
	settingsMu sync.RWMutex
	settings   = Settings{
		SessionCookie: "TrackIt",
		ClientURL:     "http://localhost:5173",
		ResetLimiter:  throttle.NewLimiter(3, 10*time.Minute),
	}
)

// Configure replaces the handler settings. Called once at startup.
func Configure(s Settings) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	if s.SessionCookie == "" {
		s.SessionCookie = "TrackIt"
	}
	settings = s
}

func currentSettings() Settings {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return settings
}

func userService() *services.UserService {
	s := currentSettings()
	return services.NewUserService(database.GetDB(), services.UserOptions{
		Mailer:       mail.Get(),
		ResetLimiter: s.ResetLimiter,
		ClientURL:    s.ClientURL,
	})
}

// sessionUser returns the SessionAuth user or writes a 401.
func sessionUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperror.Authentication("Not authenticated, please log in"))
		return nil, false
	}
	return user, true
}

// firstNonEmpty picks the first non-blank value; request bodies accept both
// the short and the Id-suffixed field names.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func parseDateFlexible(dateStr string) (t time.Time, dateOnly bool, ok bool) {
	if dateStr == "" {
		return time.Time{}, false, false
	}
	dateLayouts := []string{
		"2006-01-02",  // ISO date
		"2 Jan 2006",  // e.g., 30 Oct 2025
		"02 Jan 2006", // zero-padded day
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, true, true
		}
	}
	if t, err := time.Parse(time.RFC3339, dateStr); err == nil {
		return t, false, true
	}
	return time.Time{}, false, false
}

// dateRange reads startDate/endDate query params. A date-only endDate
// covers the whole day.
func dateRange(c *gin.Context) (start, end *time.Time, err error) {
	if v := strings.TrimSpace(c.Query("startDate")); v != "" {
		t, _, ok := parseDateFlexible(v)
		if !ok {
			return nil, nil, apperror.Validation("invalid startDate %q", v)
		}
		start = &t
	}
	if v := strings.TrimSpace(c.Query("endDate")); v != "" {
		t, dateOnly, ok := parseDateFlexible(v)
		if !ok {
			return nil, nil, apperror.Validation("invalid endDate %q", v)
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		end = &t
	}
	return start, end, nil
}

// queryBool reads an optional boolean query param.
func queryBool(c *gin.Context, key string) (*bool, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, apperror.Validation("%s must be true or false", key)
	}
	return &b, nil
}

func entityMessage(entity, action string) string {
	return fmt.Sprintf("%s %s successfully", entity, action)
}
