// Package session keeps the logged-in user between CLI invocations and the
// local web UI. A Session is created by Login, restored by Load and removed
// by Logout; all of it lives in the SQLite key-value store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"attendlog/api"
	"attendlog/attendance"
)

const (
	RoleAdmin   = "Admin"
	RoleManager = "Manager"
)

const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyRole         = "role"
	keyOutletID     = "outlet_id"
	keyOutletName   = "outlet_name"
	keyUserProfile  = "user_profile"
)

var allKeys = []string{keyAccessToken, keyRefreshToken, keyRole, keyOutletID, keyOutletName, keyUserProfile}

var (
	ErrNoSession = errors.New("not logged in: run 'attendlog auth login' first")
	ErrForbidden = errors.New("forbidden: role not permitted")
)

// Store is the persistence the session needs. storage.SQLiteStore satisfies it.
type Store interface {
	GetAll() (map[string]string, error)
	SetMany(values map[string]string) error
	DeleteKeys(keys ...string) (int64, error)
}

// Authenticator exchanges credentials for tokens and loads the profile of a
// freshly issued token.
type Authenticator interface {
	Login(ctx context.Context, creds api.Credentials) (api.Tokens, error)
	Profile(ctx context.Context, accessToken string) (api.User, []attendance.Outlet, error)
}

type Session struct {
	AccessToken  string
	RefreshToken string
	Role         string
	User         api.User
	OutletID     int64
	OutletName   string
}

// Login authenticates, resolves the role from the access token and selects
// the first visible outlet of the user. The new session replaces any stored one.
func Login(ctx context.Context, store Store, auth Authenticator, creds api.Credentials) (*Session, error) {
	tokens, err := auth.Login(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	role, err := RoleFromToken(tokens.Access)
	if err != nil {
		return nil, err
	}

	user, outlets, err := auth.Profile(ctx, tokens.Access)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(user.Role) == "" {
		user.Role = role
	}

	s := &Session{
		AccessToken:  tokens.Access,
		RefreshToken: tokens.Refresh,
		Role:         role,
		User:         user,
	}
	if outlet, ok := defaultOutlet(user, outlets); ok {
		s.OutletID = outlet.ID
		s.OutletName = outlet.Name
	}

	if err := s.Save(store); err != nil {
		return nil, err
	}
	return s, nil
}

// RoleFromToken reads the role claim of a JWT without checking its signature.
func RoleFromToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(strings.TrimSpace(token), claims); err != nil {
		return "", fmt.Errorf("decode access token: %w", err)
	}
	role, _ := claims["role"].(string)
	return strings.TrimSpace(role), nil
}

// defaultOutlet picks the first visible outlet the user is assigned to. Users
// without assignments (administrators) get the first visible outlet overall.
func defaultOutlet(user api.User, outlets []attendance.Outlet) (attendance.Outlet, bool) {
	visible := attendance.VisibleOutlets(outlets)
	if len(user.Outlets) == 0 {
		if len(visible) == 0 {
			return attendance.Outlet{}, false
		}
		return visible[0], true
	}

	assigned := make(map[int64]struct{}, len(user.Outlets))
	for _, ref := range user.Outlets {
		assigned[ref.ID] = struct{}{}
	}
	for _, outlet := range visible {
		if _, ok := assigned[outlet.ID]; ok {
			return outlet, true
		}
	}
	return attendance.Outlet{}, false
}

// Load restores the stored session. It returns ErrNoSession when no access
// token is stored.
func Load(store Store) (*Session, error) {
	values, err := store.GetAll()
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	token := strings.TrimSpace(values[keyAccessToken])
	if token == "" {
		return nil, ErrNoSession
	}

	s := &Session{
		AccessToken:  token,
		RefreshToken: values[keyRefreshToken],
		Role:         values[keyRole],
		OutletName:   values[keyOutletName],
	}
	if raw := strings.TrimSpace(values[keyOutletID]); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid stored outlet id %q: %w", raw, err)
		}
		s.OutletID = id
	}
	if raw := strings.TrimSpace(values[keyUserProfile]); raw != "" {
		if err := json.Unmarshal([]byte(raw), &s.User); err != nil {
			return nil, fmt.Errorf("decode stored user profile: %w", err)
		}
	}
	return s, nil
}

func (s *Session) Save(store Store) error {
	profile, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("encode user profile: %w", err)
	}

	outletID := ""
	if s.OutletID > 0 {
		outletID = strconv.FormatInt(s.OutletID, 10)
	}

	values := map[string]string{
		keyAccessToken:  s.AccessToken,
		keyRefreshToken: s.RefreshToken,
		keyRole:         s.Role,
		keyOutletID:     outletID,
		keyOutletName:   s.OutletName,
		keyUserProfile:  string(profile),
	}
	if err := store.SetMany(values); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// SelectOutlet records the outlet the user is working with.
func (s *Session) SelectOutlet(store Store, outlet attendance.Outlet) error {
	if outlet.ID <= 0 {
		return fmt.Errorf("invalid outlet id %d", outlet.ID)
	}
	if outlet.Hidden() {
		return fmt.Errorf("outlet %d is disabled", outlet.ID)
	}
	if err := store.SetMany(map[string]string{
		keyOutletID:   strconv.FormatInt(outlet.ID, 10),
		keyOutletName: outlet.Name,
	}); err != nil {
		return fmt.Errorf("save selected outlet: %w", err)
	}
	s.OutletID = outlet.ID
	s.OutletName = outlet.Name
	return nil
}

// ClearOutlet forgets the selected outlet, e.g. after it was deleted.
func (s *Session) ClearOutlet(store Store) error {
	if _, err := store.DeleteKeys(keyOutletID, keyOutletName); err != nil {
		return fmt.Errorf("clear selected outlet: %w", err)
	}
	s.OutletID = 0
	s.OutletName = ""
	return nil
}

// Logout removes every session key in one transaction.
func Logout(store Store) error {
	if _, err := store.DeleteKeys(allKeys...); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

func (s *Session) IsManager() bool {
	return s != nil && s.Role == RoleManager
}

// RequireRole returns ErrForbidden unless the session role is one of roles.
func (s *Session) RequireRole(roles ...string) error {
	if s == nil {
		return ErrNoSession
	}
	for _, role := range roles {
		if s.Role == role {
			return nil
		}
	}
	return fmt.Errorf("%w: %q needs one of %s", ErrForbidden, s.Role, strings.Join(roles, ", "))
}
