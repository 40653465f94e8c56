package store

import (
	"context"
	"fmt"

	"github.com/matzehuels/kgview/pkg/menu"
)

// Module and mutation names of the kgview client state.
const (
	ModuleUser = "user"
	ModuleApp  = "app"

	SetToken            = "SET_TOKEN"
	SetUserInfo         = "SET_USER_INFO"
	ClearUser           = "CLEAR_USER"
	SetPermissions      = "SET_PERMISSIONS"
	SetPermissionType   = "SET_PERMISSION_TYPE"
	ClearPermissionType = "CLEAR_PERMISSION_TYPE"
)

// Storage keys of the default persisters.
const (
	KeyAccessCert     = "access_cert"
	KeyPermissionData = "permission_data"
)

// UserModule holds the login token and user profile.
func UserModule() Module {
	return Module{
		Name: ModuleUser,
		State: func() State {
			return State{"token": "", "userInfo": map[string]any{}}
		},
		Mutations: map[string]MutationFunc{
			SetToken: func(st State, payload any) error {
				tok, ok := payload.(string)
				if !ok {
					return fmt.Errorf("token must be a string, got %T", payload)
				}
				st["token"] = tok
				return nil
			},
			SetUserInfo: func(st State, payload any) error {
				info, ok := payload.(map[string]any)
				if !ok {
					return fmt.Errorf("user info must be an object, got %T", payload)
				}
				st["userInfo"] = info
				return nil
			},
			ClearUser: func(st State, _ any) error {
				st["token"] = ""
				st["userInfo"] = map[string]any{}
				return nil
			},
		},
	}
}

// AppModule holds the granted permissions and the knowledge-base
// permission type selection.
func AppModule() Module {
	return Module{
		Name: ModuleApp,
		State: func() State {
			return State{"permissions": []any{}, "permissionType": ""}
		},
		Mutations: map[string]MutationFunc{
			SetPermissions: func(st State, payload any) error {
				perms, ok := payload.([]string)
				if !ok {
					return fmt.Errorf("permissions must be []string, got %T", payload)
				}
				list := make([]any, len(perms))
				for i, p := range perms {
					list[i] = p
				}
				st["permissions"] = list
				return nil
			},
			SetPermissionType: func(st State, payload any) error {
				st["permissionType"] = payload
				return nil
			},
			ClearPermissionType: func(st State, _ any) error {
				st["permissionType"] = ""
				return nil
			},
			ClearUser: func(st State, _ any) error {
				st["permissions"] = []any{}
				return nil
			},
		},
	}
}

// NewDefault builds the client store with the user and app modules and
// installs their persisters on kv:
//
//   - access_cert: the user module, saved on every mutation
//   - permission_data: the app module, saved only on permission type
//     changes and restored only while access_cert exists
func NewDefault(ctx context.Context, kv KV, opts ...Option) (*Store, error) {
	s, err := New([]Module{UserModule(), AppModule()}, opts...)
	if err != nil {
		return nil, err
	}
	persisters := []*Persister{
		{Key: KeyAccessCert, Storage: kv, Modules: []string{ModuleUser}, OnError: s.logSaveError},
		{
			Key:     KeyPermissionData,
			Storage: kv,
			Modules: []string{ModuleApp},
			Filter:  MutationIn(SetPermissionType, ClearPermissionType),
			Restore: KeyExists(KeyAccessCert),
			OnError: s.logSaveError,
		},
	}
	for _, p := range persisters {
		if err := p.Install(ctx, s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) logSaveError(err error) {
	s.logger.Warn("persist state", "err", err)
}

// Token returns the stored login token, if any.
func Token(r Reader) string {
	v, _ := r.Get(ModuleUser, "token")
	tok, _ := v.(string)
	return tok
}

// Permissions returns the granted permissions as a menu checker.
func Permissions(r Reader) menu.PermSet {
	v, _ := r.Get(ModuleApp, "permissions")
	var perms []string
	switch list := v.(type) {
	case []any:
		for _, p := range list {
			if s, ok := p.(string); ok {
				perms = append(perms, s)
			}
		}
	case []string:
		perms = list
	}
	return menu.NewPermSet(perms...)
}
