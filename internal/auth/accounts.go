package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/abhisek/adaptiq/internal/store"
)

// ErrInvalidCredentials is returned when login fails.
var ErrInvalidCredentials = errors.New("login unsuccessful, please check email and password")

// ValidationError describes a rejected registration or preference field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Accounts implements registration, login and preference changes.
type Accounts struct {
	users store.UserRepo
	now   func() time.Time
}

// NewAccounts creates an Accounts service.
func NewAccounts(users store.UserRepo) *Accounts {
	return &Accounts{users: users, now: time.Now}
}

// Registration is the input to Register.
type Registration struct {
	Username        string `json:"username" form:"username"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

func (r Registration) validate() error {
	switch n := utf8.RuneCountInString(r.Username); {
	case n == 0:
		return &ValidationError{"username", "This field is required."}
	case n < 2 || n > 20:
		return &ValidationError{"username", "Field must be between 2 and 20 characters long."}
	}
	if r.Email == "" {
		return &ValidationError{"email", "This field is required."}
	}
	if addr, err := mail.ParseAddress(r.Email); err != nil || addr.Address != r.Email {
		return &ValidationError{"email", "Invalid email address."}
	}
	if r.Password == "" {
		return &ValidationError{"password", "This field is required."}
	}
	if len(r.Password) > maxPasswordBytes {
		return &ValidationError{"password", fmt.Sprintf("Password must be at most %d bytes.", maxPasswordBytes)}
	}
	if r.ConfirmPassword != r.Password {
		return &ValidationError{"confirm_password", "Field must be equal to password."}
	}
	return nil
}

// Register creates a user with default preferences.
func (a *Accounts) Register(ctx context.Context, in Registration) (*store.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := in.validate(); err != nil {
		return nil, err
	}

	if _, err := a.users.GetByUsername(ctx, in.Username); err == nil {
		return nil, &ValidationError{"username", "That username is taken. Please choose a different one."}
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if _, err := a.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, &ValidationError{"email", "That email is taken. Please choose a different one."}
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &store.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    a.now().UTC(),
		Preferences:  store.DefaultPreferences(),
	}
	if err := a.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, &ValidationError{"username", "That username or email is taken."}
		}
		return nil, err
	}
	return u, nil
}

// Login checks credentials and records the login time.
func (a *Accounts) Login(ctx context.Context, email, password string) (*store.User, error) {
	u, err := a.users.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	u.LastLogin = a.now().UTC()
	if err := a.users.TouchLastLogin(ctx, u.ID, u.LastLogin); err != nil {
		return nil, err
	}
	return u, nil
}

// Resolve loads the session for a verified token.
func (a *Accounts) Resolve(ctx context.Context, claims *Claims) (*Session, error) {
	id, err := claims.UserID()
	if err != nil {
		return nil, err
	}
	u, err := a.users.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, err
	}
	return NewSession(u), nil
}

// Profile returns the stored user behind a session.
func (a *Accounts) Profile(ctx context.Context, s *Session) (*store.User, error) {
	return a.users.Get(ctx, s.UserID)
}

// UpdatePreferences replaces all preferences of the session's user.
func (a *Accounts) UpdatePreferences(ctx context.Context, s *Session, prefs store.Preferences) error {
	if prefs.QuestionMode == "" {
		prefs.QuestionMode = store.ModeMultipleChoice
	}
	if !prefs.QuestionMode.Valid() {
		return &ValidationError{"question_mode", "Must be multiple_choice or free_recall."}
	}
	if err := a.users.UpdatePreferences(ctx, s.UserID, prefs); err != nil {
		return err
	}
	s.Preferences = prefs
	return nil
}

// Preference names accepted by TogglePreference.
const (
	PrefDisplayExplanations = "display_explanations"
	PrefQuestionMode        = "question_mode"
	PrefInteractiveMode     = "interactive_mode"
)

// ErrUnknownPreference is returned for an unrecognized preference name.
var ErrUnknownPreference = errors.New("invalid preference")

// TogglePreference sets a single preference from a decoded JSON value.
func (a *Accounts) TogglePreference(ctx context.Context, s *Session, name string, value any) error {
	prefs := s.Preferences
	switch name {
	case PrefDisplayExplanations, PrefInteractiveMode:
		b, ok := asBool(value)
		if !ok {
			return &ValidationError{name, "Value must be a boolean."}
		}
		if name == PrefDisplayExplanations {
			prefs.DisplayExplanations = b
		} else {
			prefs.InteractiveMode = b
		}
	case PrefQuestionMode:
		str, _ := value.(string)
		prefs.QuestionMode = store.QuestionMode(str)
		if !prefs.QuestionMode.Valid() {
			return &ValidationError{name, "Must be multiple_choice or free_recall."}
		}
	default:
		return ErrUnknownPreference
	}
	return a.UpdatePreferences(ctx, s, prefs)
}

func asBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(t) {
		case "true", "on", "1", "yes":
			return true, true
		case "false", "off", "0", "no", "":
			return false, true
		}
	case float64:
		return t != 0, true
	}
	return false, false
}
