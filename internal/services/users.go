package services

import (
	"context"
	"errors"
	netmail "net/mail"
	"strings"
	"time"

	"trackit-api/internal/apperror"
	"trackit-api/internal/auth"
	"trackit-api/internal/logger"
	"trackit-api/internal/mail"
	"trackit-api/internal/models"
	"trackit-api/internal/throttle"

	"gorm.io/gorm"
)

const (
	MinPasswordLength = 8
	ResetTokenTTL     = 10 * time.Minute
)

var errInvalidCredentials = apperror.Authentication("Invalid email or password")

// RegisterInput carries a sign-up request.
type RegisterInput struct {
	Firstname       string
	Lastname        string
	Email           string
	Password        string
	ConfirmPassword string
}

// UserOptions configures the account flows that talk to collaborators.
type UserOptions struct {
	Mailer       mail.Mailer
	ResetLimiter *throttle.Limiter
	ClientURL    string
}

// UserService owns registration, sessions and password recovery.
type UserService struct {
	db   *gorm.DB
	opts UserOptions
	now  func() time.Time
}

func NewUserService(db *gorm.DB, opts UserOptions) *UserService {
	if opts.Mailer == nil {
		opts.Mailer = mail.Get()
	}
	opts.ClientURL = strings.TrimRight(opts.ClientURL, "/")
	return &UserService{db: db, opts: opts, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	firstname, err := required(in.Firstname, "firstname")
	if err != nil {
		return nil, err
	}
	lastname, err := required(in.Lastname, "lastname")
	if err != nil {
		return nil, err
	}
	email := normalizeEmail(in.Email)
	if _, err := netmail.ParseAddress(email); err != nil || email == "" {
		return nil, apperror.Validation("Please provide a valid email")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperror.Validation("Password must be at least %d characters", MinPasswordLength)
	}
	if in.Password != in.ConfirmPassword {
		return nil, apperror.Validation("Passwords do not match")
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	user := models.User{
		Firstname:  firstname,
		Lastname:   lastname,
		Email:      email,
		Password:   hashed,
		Role:       models.RoleUser,
		AuthMethod: models.AuthLocal,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
			return apperror.Internal(err)
		}
		if n > 0 {
			return apperror.Validation("Email is already registered")
		}
		return storeErr(tx.Create(&user).Error, "user")
	})
	if err != nil {
		return nil, err
	}
	user.TaskIDs = []string{}
	return &user, nil
}

// CheckUserExists reports whether an account with email exists.
func (s *UserService) CheckUserExists(ctx context.Context, email string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" {
		return false, apperror.Validation("email is required")
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return false, apperror.Internal(err)
	}
	return n > 0, nil
}

// Login verifies credentials and issues a session token.
// Unknown email and wrong password fail identically.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", errInvalidCredentials
		}
		return nil, "", apperror.Internal(err)
	}
	if !auth.CheckPassword(user.Password, password) {
		return nil, "", errInvalidCredentials
	}
	if user.IsBlocked {
		return nil, "", apperror.Authentication("Account is blocked")
	}

	token, err := auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", apperror.Internal(err)
	}
	if err := attachUserTasks(ctx, s.db, &user); err != nil {
		return nil, "", apperror.Internal(err)
	}
	return &user, token, nil
}

// ResolveSessionUser maps a session token to its user.
func (s *UserService) ResolveSessionUser(ctx context.Context, token string) (*models.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, apperror.Authentication("Not authenticated")
	}
	claims, err := auth.ValidateToken(token)
	if err != nil {
		logger.Debugf(ctx, "session token rejected: %v", err)
		return nil, apperror.Wrap(apperror.KindAuthentication, err, "Invalid or expired session")
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", claims.UserID()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Authentication("User no longer exists")
		}
		return nil, apperror.Internal(err)
	}
	if user.IsBlocked {
		return nil, apperror.Authentication("Account is blocked")
	}
	if err := attachUserTasks(ctx, s.db, &user); err != nil {
		return nil, apperror.Internal(err)
	}
	return &user, nil
}

// RequestPasswordReset stores a fresh reset token digest and mails the raw
// token. Unknown emails succeed silently.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return apperror.Validation("email is required")
	}
	if !s.opts.ResetLimiter.Allow(email) {
		return apperror.RateLimited("Too many password reset requests, please try again later")
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Infof(ctx, "password reset requested for unknown email")
			return nil
		}
		return apperror.Internal(err)
	}

	raw, hashed, err := auth.NewResetToken()
	if err != nil {
		return apperror.Internal(err)
	}
	expires := s.now().UTC().Add(ResetTokenTTL)
	err = s.db.WithContext(ctx).Model(&user).Updates(map[string]any{
		"password_reset_token":   hashed,
		"password_reset_expires": expires,
	}).Error
	if err != nil {
		return apperror.Internal(err)
	}

	link := s.opts.ClientURL + "/reset-password/" + raw
	if err := s.opts.Mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		logger.Errorf(ctx, "send password reset email: %v", err)
		s.clearResetToken(ctx, user.ID)
		return apperror.Wrap(apperror.KindInternal, err, "There was an error sending the email, try again later")
	}
	return nil
}

func (s *UserService) clearResetToken(ctx context.Context, userID string) {
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"password_reset_token":   nil,
		"password_reset_expires": nil,
	}).Error
	if err != nil {
		logger.Errorf(ctx, "clear reset token for %s: %v", userID, err)
	}
}

// ResetPassword replaces the password of the user holding an unexpired
// token matching rawToken, then invalidates the token.
func (s *UserService) ResetPassword(ctx context.Context, rawToken, newPassword string) (*models.User, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, apperror.InvalidToken("Token is invalid or has expired")
	}
	hashedToken := auth.HashResetToken(rawToken)

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("password_reset_token = ? AND password_reset_expires > ?", hashedToken, s.now().UTC()).
			First(&user).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.InvalidToken("Token is invalid or has expired")
			}
			return apperror.Internal(err)
		}
		if len(newPassword) < MinPasswordLength {
			return apperror.Validation("Password must be at least %d characters", MinPasswordLength)
		}

		hashed, err := auth.HashPassword(newPassword)
		if err != nil {
			return apperror.Internal(err)
		}
		err = tx.Model(&user).Updates(map[string]any{
			"password":               hashed,
			"password_reset_token":   nil,
			"password_reset_expires": nil,
		}).Error
		if err != nil {
			return apperror.Internal(err)
		}
		user.Password = hashed
		user.PasswordResetToken = nil
		user.PasswordResetExpires = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := attachUserTasks(ctx, s.db, &user); err != nil {
		return nil, apperror.Internal(err)
	}
	return &user, nil
}

// ChangeRole lets an admin or head change another user's role.
func (s *UserService) ChangeRole(ctx context.Context, actor *models.User, userID string, role models.Role) (*models.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !actor.Role.Elevated() {
		return nil, apperror.Forbidden("You do not have permission to perform this action")
	}
	if !role.Valid() {
		return nil, apperror.Validation("role must be one of user, admin, head")
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &user, userID, "user"); err != nil {
			return err
		}
		return storeErr(tx.Model(&user).Update("role", role).Error, "user")
	})
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := attachUserTasks(ctx, s.db, &user); err != nil {
		return nil, apperror.Internal(err)
	}
	return &user, nil
}
