package integration

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func createUser(t *testing.T, env *testEnv, payload map[string]any) map[string]any {
	t.Helper()
	resp := postJSON(t, env, "/api/v1/users", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody(t, resp)
}

func TestUserCRUDLifecycle(t *testing.T) {
	env := setupTestEnv(t)

	created := createUser(t, env, map[string]any{
		"username":  "alice",
		"email":     "alice@example.com",
		"full_name": "Alice Example",
	})
	id, ok := created["id"].(string)
	require.True(t, ok)
	require.Len(t, id, 26)
	require.Equal(t, "user", created["role"])
	require.Equal(t, true, created["is_active"])

	resp := doGet(t, env, "/api/v1/users/"+id)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "alice", decodeBody(t, resp)["username"])

	resp = putJSON(t, env, "/api/v1/users/"+id, map[string]any{"role": "admin"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "admin", decodeBody(t, resp)["role"])

	resp = doDelete(t, env, "/api/v1/users/"+id)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	deleted := decodeBody(t, resp)
	require.Equal(t, true, deleted["success"])

	resp = doGet(t, env, "/api/v1/users/"+id)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUserUniqueness(t *testing.T) {
	env := setupTestEnv(t)

	createUser(t, env, map[string]any{"username": "alice", "email": "alice@example.com"})

	resp := postJSON(t, env, "/api/v1/users", map[string]any{
		"username": "alice",
		"email":    "different@example.com",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))

	resp = postJSON(t, env, "/api/v1/users", map[string]any{
		"username": "alice2",
		"email":    "alice@example.com",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestUserLookupByUsernameAndEmail(t *testing.T) {
	env := setupTestEnv(t)

	created := createUser(t, env, map[string]any{"username": "bob", "email": "bob@example.com"})

	resp := doGet(t, env, "/api/v1/users/search/by-username/bob")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, created["id"], decodeBody(t, resp)["id"])

	resp = doGet(t, env, "/api/v1/users/search/by-email/bob@example.com")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, created["id"], decodeBody(t, resp)["id"])

	resp = doGet(t, env, "/api/v1/users/search/by-username/ghost")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUserActivationRoundTrip(t *testing.T) {
	env := setupTestEnv(t)

	created := createUser(t, env, map[string]any{"username": "carol", "email": "carol@example.com"})
	id := created["id"].(string)

	resp := postJSON(t, env, "/api/v1/users/"+id+"/deactivate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, false, decodeBody(t, resp)["is_active"])

	resp = postJSON(t, env, "/api/v1/users/"+id+"/activate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, decodeBody(t, resp)["is_active"])
}

func TestUserListActiveOnly(t *testing.T) {
	env := setupTestEnv(t)

	createUser(t, env, map[string]any{"username": "alice", "email": "alice@example.com"})
	createUser(t, env, map[string]any{"username": "bob", "email": "bob@example.com", "is_active": false})

	resp := doGet(t, env, "/api/v1/users?active_only=true")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	require.Equal(t, "alice", list[0]["username"])
}

func TestUserStatsSummary(t *testing.T) {
	env := setupTestEnv(t)

	createUser(t, env, map[string]any{"username": "alice", "email": "alice@example.com", "role": "admin"})
	createUser(t, env, map[string]any{"username": "bob", "email": "bob@example.com", "is_active": false})

	resp := doGet(t, env, "/api/v1/users/stats/summary")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decodeBody(t, resp)
	require.Equal(t, float64(2), stats["total_users"])
	require.Equal(t, float64(1), stats["active_users"])
	require.Equal(t, float64(1), stats["inactive_users"])

	roles, ok := stats["roles"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, float64(1), roles["admin"])
	require.Equal(t, float64(1), roles["user"])
}
