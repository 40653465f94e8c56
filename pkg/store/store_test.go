package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kgerrors "github.com/matzehuels/kgview/pkg/errors"
)

func counterModule(name string) Module {
	return Module{
		Name:  name,
		State: func() State { return State{"n": 0} },
		Mutations: map[string]MutationFunc{
			"INC": func(st State, _ any) error {
				st["n"] = st["n"].(int) + 1
				return nil
			},
			"FAIL": func(State, any) error { return errors.New("nope") },
		},
	}
}

func TestCommitRunsEveryModuleHandler(t *testing.T) {
	s, err := New([]Module{counterModule("a"), counterModule("b"), {Name: "c"}})
	require.NoError(t, err)

	var seen []Mutation
	s.Subscribe(func(_ context.Context, m Mutation, r Reader) { seen = append(seen, m) })

	require.NoError(t, s.Commit(context.Background(), "INC", nil))
	va, _ := s.Get("a", "n")
	vb, _ := s.Get("b", "n")
	assert.Equal(t, 1, va)
	assert.Equal(t, 1, vb)
	assert.Equal(t, []Mutation{{Type: "INC"}}, seen)
	assert.Equal(t, []string{"a", "b", "c"}, s.Modules())
}

func TestFailedCommitLeavesStateUntouched(t *testing.T) {
	nested := Module{
		Name:  "a",
		State: func() State { return State{"n": 0, "user": map[string]any{"name": "ada"}} },
		Mutations: map[string]MutationFunc{
			"MIXED": func(st State, _ any) error {
				st["n"] = 99
				st["user"].(map[string]any)["name"] = "changed"
				return nil
			},
		},
	}
	failing := Module{
		Name: "b",
		Mutations: map[string]MutationFunc{
			"MIXED": func(State, any) error { return errors.New("rejected") },
		},
	}
	s, err := New([]Module{nested, failing})
	require.NoError(t, err)

	err = s.Commit(context.Background(), "MIXED", nil)
	require.Error(t, err)

	n, _ := s.Get("a", "n")
	assert.Equal(t, 0, n)
	user, _ := s.Get("a", "user")
	assert.Equal(t, map[string]any{"name": "ada"}, user)
}

func TestCommitErrors(t *testing.T) {
	s, _ := New([]Module{counterModule("a")})
	ctx := context.Background()

	notified := false
	s.Subscribe(func(context.Context, Mutation, Reader) { notified = true })

	err := s.Commit(ctx, "MISSING", nil)
	assert.True(t, kgerrors.Is(err, kgerrors.ErrCodeNotFound))

	err = s.Commit(ctx, "FAIL", nil)
	assert.True(t, kgerrors.Is(err, kgerrors.ErrCodeInvalidInput))
	assert.False(t, notified)
}

func TestNewRejectsBadModules(t *testing.T) {
	_, err := New([]Module{{Name: ""}})
	assert.Error(t, err)
	_, err = New([]Module{{Name: "x"}, {Name: "x"}})
	assert.Error(t, err)
}

func TestStateIsACopy(t *testing.T) {
	s, _ := New([]Module{UserModule()})
	require.NoError(t, s.Commit(context.Background(), SetUserInfo, map[string]any{"name": "ada"}))

	st, err := s.State(ModuleUser)
	require.NoError(t, err)
	st["userInfo"].(map[string]any)["name"] = "mutated"

	again, _ := s.State(ModuleUser)
	assert.Equal(t, "ada", again["userInfo"].(map[string]any)["name"])

	_, err = s.State("nope")
	assert.True(t, kgerrors.Is(err, kgerrors.ErrCodeNotFound))
}

func TestMergeState(t *testing.T) {
	dst := map[string]any{
		"keep":  1,
		"list":  []any{"a", "b", "c"},
		"inner": map[string]any{"x": 1, "y": 2},
	}
	mergeState(dst, map[string]any{
		"list":  []any{"z"},
		"inner": map[string]any{"y": 3},
		"new":   map[string]any{"k": true},
	})
	assert.Equal(t, map[string]any{
		"keep":  1,
		"list":  []any{"z"},
		"inner": map[string]any{"x": 1, "y": 3},
		"new":   map[string]any{"k": true},
	}, dst)
}

func TestDefaultStorePersistsAndRestores(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	s, err := NewDefault(ctx, kv)
	require.NoError(t, err)
	require.NoError(t, s.Commit(ctx, SetToken, "tok-1"))
	require.NoError(t, s.Commit(ctx, SetPermissions, []string{"knowledge.graph"}))
	require.NoError(t, s.Commit(ctx, SetPermissionType, "all"))

	raw, ok, _ := kv.Get(ctx, KeyAccessCert)
	require.True(t, ok)
	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "tok-1", doc["user"]["token"])
	assert.NotContains(t, doc, "app")

	restored, err := NewDefault(ctx, kv)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", Token(restored))
	pt, _ := restored.Get(ModuleApp, "permissionType")
	assert.Equal(t, "all", pt)
	assert.True(t, Permissions(restored).Allowed("knowledge.graph"))
}

func TestPermissionDataFilter(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s, _ := NewDefault(ctx, kv)

	require.NoError(t, s.Commit(ctx, SetPermissions, []string{"a"}))
	_, ok, _ := kv.Get(ctx, KeyPermissionData)
	assert.False(t, ok, "SET_PERMISSIONS is filtered out")

	require.NoError(t, s.Commit(ctx, ClearPermissionType, nil))
	_, ok, _ = kv.Get(ctx, KeyPermissionData)
	assert.True(t, ok)
}

func TestPermissionDataRequiresAccessCert(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(ctx, KeyPermissionData, []byte(`{"app":{"permissionType":"all"}}`)))

	s, err := NewDefault(ctx, kv)
	require.NoError(t, err)
	pt, _ := s.Get(ModuleApp, "permissionType")
	assert.Equal(t, "", pt)
}

func TestPersisterRejectsCorruptState(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(ctx, KeyAccessCert, []byte("{")))

	_, err := NewDefault(ctx, kv)
	assert.True(t, kgerrors.Is(err, kgerrors.ErrCodeInvalidPayload))

	p := &Persister{}
	s, _ := New(nil)
	assert.True(t, kgerrors.Is(p.Install(ctx, s), kgerrors.ErrCodeInvalidConfig))
}

func TestPersisterReportsSaveErrors(t *testing.T) {
	ctx := context.Background()
	s, _ := New([]Module{counterModule("a")})
	var got error
	p := &Persister{Key: "k", Storage: failingKV{}, OnError: func(err error) { got = err }}
	require.NoError(t, p.Install(ctx, s))
	require.NoError(t, s.Commit(ctx, "INC", nil))
	assert.Error(t, got)
}

type failingKV struct{}

func (failingKV) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (failingKV) Set(context.Context, string, []byte) error         { return errors.New("disk full") }
func (failingKV) Delete(context.Context, string) error              { return nil }

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()
	_, ok, err := kv.Get(ctx, "access_cert")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "access_cert", []byte(`{"user":{}}`)))
	data, ok, err := kv.Get(ctx, "access_cert")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"user":{}}`, string(data))

	require.NoError(t, kv.Delete(ctx, "access_cert"))
	require.NoError(t, kv.Delete(ctx, "access_cert"))
	_, ok, _ = kv.Get(ctx, "access_cert")
	assert.False(t, ok)
}

func TestMemoryKV(t *testing.T) { exerciseKV(t, NewMemoryKV()) }

func TestFileKV(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	require.NoError(t, err)
	exerciseKV(t, kv)

	assert.Error(t, kv.Set(context.Background(), "../escape", nil))
}

func TestRedisKV(t *testing.T) {
	addr := os.Getenv("KGVIEW_TEST_REDIS")
	if addr == "" {
		t.Skip("KGVIEW_TEST_REDIS not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	exerciseKV(t, NewRedisKV(client, "kgview-test:"))
}
