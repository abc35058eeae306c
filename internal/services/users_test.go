package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"trackit-api/internal/apperror"
	"trackit-api/internal/auth"
	"trackit-api/internal/models"
	"trackit-api/internal/throttle"

	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) (*UserService, *fakeMailer) {
	t.Helper()
	db := newTestDB(t)
	mailer := &fakeMailer{}
	svc := NewUserService(db, UserOptions{
		Mailer:       mailer,
		ResetLimiter: throttle.NewLimiter(3, 10*time.Minute),
		ClientURL:    "http://localhost:5173/",
	})
	return svc, mailer
}

func validRegistration(email string) RegisterInput {
	return RegisterInput{
		Firstname:       "Jane",
		Lastname:        "Doe",
		Email:           email,
		Password:        testPassword,
		ConfirmPassword: testPassword,
	}
}

func TestRegister(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, validRegistration("  Jane@Example.com "))
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "jane@example.com", user.Email)
	require.Equal(t, models.RoleUser, user.Role)
	require.Equal(t, models.AuthLocal, user.AuthMethod)
	require.NotEqual(t, testPassword, user.Password)
	require.True(t, auth.CheckPassword(user.Password, testPassword))

	exists, err := svc.CheckUserExists(ctx, "JANE@example.com")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = svc.CheckUserExists(ctx, "nobody@example.com")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestRegister_Rejections(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, validRegistration("taken@example.com"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(in *RegisterInput)
	}{
		{name: "duplicate email", mutate: func(in *RegisterInput) { in.Email = "TAKEN@example.com" }},
		{name: "password mismatch", mutate: func(in *RegisterInput) { in.ConfirmPassword = "different123" }},
		{name: "short password", mutate: func(in *RegisterInput) { in.Password, in.ConfirmPassword = "short", "short" }},
		{name: "malformed email", mutate: func(in *RegisterInput) { in.Email = "not-an-email" }},
		{name: "missing firstname", mutate: func(in *RegisterInput) { in.Firstname = " " }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegistration("new@example.com")
			tt.mutate(&in)
			_, err := svc.Register(ctx, in)
			require.True(t, apperror.IsKind(err, apperror.KindValidation), "got %v", err)
		})
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()
	registered, err := svc.Register(ctx, validRegistration("jane@example.com"))
	require.NoError(t, err)

	user, token, err := svc.Login(ctx, "jane@example.com", testPassword)
	require.NoError(t, err)
	require.Equal(t, registered.ID, user.ID)
	require.NotEmpty(t, token)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID())

	resolved, err := svc.ResolveSessionUser(ctx, token)
	require.NoError(t, err)
	require.Equal(t, user.ID, resolved.ID)
	require.NotNil(t, resolved.TaskIDs)

	_, _, wrongPass := svc.Login(ctx, "jane@example.com", "wrong-password")
	_, _, unknown := svc.Login(ctx, "ghost@example.com", testPassword)
	require.True(t, apperror.IsKind(wrongPass, apperror.KindAuthentication))
	require.True(t, apperror.IsKind(unknown, apperror.KindAuthentication))
	require.Equal(t, wrongPass.Error(), unknown.Error())
}

func TestLogin_BlockedUser(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()
	user, err := svc.Register(ctx, validRegistration("blocked@example.com"))
	require.NoError(t, err)
	require.NoError(t, svc.db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_blocked", true).Error)

	_, _, err = svc.Login(ctx, "blocked@example.com", testPassword)
	require.True(t, apperror.IsKind(err, apperror.KindAuthentication))
}

func TestResolveSessionUser_Rejections(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.ResolveSessionUser(ctx, "")
	require.True(t, apperror.IsKind(err, apperror.KindAuthentication))

	_, err = svc.ResolveSessionUser(ctx, "garbage")
	require.True(t, apperror.IsKind(err, apperror.KindAuthentication))

	token, err := auth.GenerateToken(models.NewID(), "ghost@example.com")
	require.NoError(t, err)
	_, err = svc.ResolveSessionUser(ctx, token)
	require.True(t, apperror.IsKind(err, apperror.KindAuthentication))
}

func TestPasswordReset_Scenario(t *testing.T) {
	svc, mailer := newUserService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, validRegistration("jane@example.com"))
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(ctx, "jane@example.com"))
	sent := mailer.last(t)
	require.Equal(t, "jane@example.com", sent.to)
	require.Contains(t, sent.link, "http://localhost:5173/reset-password/")
	raw := rawTokenFrom(t, sent.link)
	require.Len(t, raw, auth.ResetTokenBytes*2)

	var stored models.User
	require.NoError(t, svc.db.First(&stored, "email = ?", "jane@example.com").Error)
	require.NotNil(t, stored.PasswordResetToken)
	require.Equal(t, auth.HashResetToken(raw), *stored.PasswordResetToken)
	require.NotEqual(t, raw, *stored.PasswordResetToken)
	require.NotNil(t, stored.PasswordResetExpires)

	user, err := svc.ResetPassword(ctx, raw, "brand-new-pass")
	require.NoError(t, err)
	require.Nil(t, user.PasswordResetToken)

	_, _, err = svc.Login(ctx, "jane@example.com", testPassword)
	require.Error(t, err)
	_, _, err = svc.Login(ctx, "jane@example.com", "brand-new-pass")
	require.NoError(t, err)

	var after models.User
	require.NoError(t, svc.db.First(&after, "email = ?", "jane@example.com").Error)
	require.Nil(t, after.PasswordResetToken)
	require.Nil(t, after.PasswordResetExpires)

	_, err = svc.ResetPassword(ctx, raw, "another-pass-1")
	require.True(t, apperror.IsKind(err, apperror.KindInvalidToken), "token must be single use")
}

func TestPasswordReset_ExpiredAndTampered(t *testing.T) {
	svc, mailer := newUserService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, validRegistration("jane@example.com"))
	require.NoError(t, err)
	require.NoError(t, svc.RequestPasswordReset(ctx, "jane@example.com"))
	raw := rawTokenFrom(t, mailer.last(t).link)

	_, err = svc.ResetPassword(ctx, raw+"00", "brand-new-pass")
	require.True(t, apperror.IsKind(err, apperror.KindInvalidToken))

	svc.now = func() time.Time { return time.Now().Add(ResetTokenTTL + time.Minute) }
	_, err = svc.ResetPassword(ctx, raw, "brand-new-pass")
	require.True(t, apperror.IsKind(err, apperror.KindInvalidToken))

	svc.now = time.Now
	_, err = svc.ResetPassword(ctx, raw, "short")
	require.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, _, err = svc.Login(ctx, "jane@example.com", testPassword)
	require.NoError(t, err, "failed resets must not change the password")
}

func TestPasswordReset_UnknownEmailSendsNothing(t *testing.T) {
	svc, mailer := newUserService(t)
	require.NoError(t, svc.RequestPasswordReset(context.Background(), "ghost@example.com"))
	require.Equal(t, 0, mailer.count())
}

func TestPasswordReset_Throttled(t *testing.T) {
	svc, mailer := newUserService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, validRegistration("jane@example.com"))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.RequestPasswordReset(ctx, "jane@example.com"))
	}
	err = svc.RequestPasswordReset(ctx, "jane@example.com")
	require.True(t, apperror.IsKind(err, apperror.KindRateLimited))
	require.Equal(t, 3, mailer.count())
}

func TestPasswordReset_MailFailureClearsToken(t *testing.T) {
	svc, mailer := newUserService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, validRegistration("jane@example.com"))
	require.NoError(t, err)

	mailer.err = errors.New("smtp down")
	err = svc.RequestPasswordReset(ctx, "jane@example.com")
	require.True(t, apperror.IsKind(err, apperror.KindInternal))

	var after models.User
	require.NoError(t, svc.db.First(&after, "email = ?", "jane@example.com").Error)
	require.Nil(t, after.PasswordResetToken)
	require.Nil(t, after.PasswordResetExpires)
}

func TestChangeRole(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()
	admin := seedUser(t, svc.db, "admin@trackit.io", models.RoleAdmin)
	member := seedUser(t, svc.db, "member@trackit.io", models.RoleUser)

	_, err := svc.ChangeRole(ctx, member, admin.ID, models.RoleUser)
	require.True(t, apperror.IsKind(err, apperror.KindForbidden))

	_, err = svc.ChangeRole(ctx, admin, member.ID, models.Role("owner"))
	require.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = svc.ChangeRole(ctx, admin, models.NewID(), models.RoleHead)
	require.True(t, apperror.IsKind(err, apperror.KindNotFound))

	updated, err := svc.ChangeRole(ctx, admin, member.ID, models.RoleHead)
	require.NoError(t, err)
	require.Equal(t, models.RoleHead, updated.Role)

	var stored models.User
	require.NoError(t, svc.db.First(&stored, "id = ?", member.ID).Error)
	require.Equal(t, models.RoleHead, stored.Role)
}
