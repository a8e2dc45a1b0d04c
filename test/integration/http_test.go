package integration_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ganot/sitecycle/internal/identity"
	"github.com/ganot/sitecycle/internal/testserver"
)

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	} `json:"error"`
}

func rpcCall(t *testing.T, ts *testserver.TestServer, token, method string, params any) rpcResponse {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": 1, "method": method, "params": params})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/rpc", bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out rpcResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHTTP_ReportsCarryTokenIdentity(t *testing.T) {
	ts := testserver.New(t, identity.User{ID: "u1", DisplayName: "Dana"})

	resp := rpcCall(t, ts, ts.Token, "create_project", map[string]any{
		"name": "Harbor Tower", "responsible_person": "Dana", "planned_activity": "Excavation",
	})
	require.Nil(t, resp.Error)
	var entry struct {
		Project struct {
			ID string `json:"id"`
		} `json:"project"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &entry))

	resp = rpcCall(t, ts, ts.Token, "append_report", map[string]any{"project_id": entry.Project.ID, "report": "fenced"})
	require.Nil(t, resp.Error)
	require.Contains(t, string(resp.Result), `"reporterName":"Dana"`)
	require.Contains(t, string(resp.Result), `"reporterId":"u1"`)

	anon := ts.IssueToken(t, identity.AnonymousUser("guest"))
	resp = rpcCall(t, ts, anon, "append_report", map[string]any{"project_id": entry.Project.ID, "report": "checked"})
	require.Nil(t, resp.Error)
	require.Contains(t, string(resp.Result), `"reporterName":"Anonymous reporter"`)

	resp = rpcCall(t, ts, anon, "seed_projects", nil)
	require.Nil(t, resp.Error)
	require.JSONEq(t, `{"seeded":false}`, string(resp.Result))
}

func TestHTTP_ValidationError(t *testing.T) {
	ts := testserver.New(t, identity.User{ID: "u1"})

	resp := rpcCall(t, ts, ts.Token, "create_project", map[string]any{"name": "No owner"})
	require.NotNil(t, resp.Error)
	require.Equal(t, -32602, resp.Error.Code)
	require.Contains(t, string(resp.Error.Data), "VALIDATION_FAILURE")
}

func TestHTTP_RejectsForeignToken(t *testing.T) {
	ts := testserver.New(t, identity.User{ID: "u1"})
	foreign, err := identity.NewJWT("another-secret", time.Hour).Issue(identity.User{ID: "u1"})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/rpc", strings.NewReader(`{"jsonrpc":"2.0","method":"list_projects","id":1}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+foreign)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHTTP_ProjectFeedFollowsWrites(t *testing.T) {
	ts := testserver.New(t, identity.User{ID: "u1", DisplayName: "Dana"})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.Server.URL+"/feeds/projects?access_token="+ts.Token, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	reader := bufio.NewReader(resp.Body)

	nextData := func() string {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "data: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			}
		}
	}

	require.Contains(t, nextData(), `"items":[]`)

	create := rpcCall(t, ts, ts.Token, "create_project", map[string]any{
		"name": "Harbor Tower", "responsible_person": "Dana", "planned_activity": "Excavation",
	})
	require.Nil(t, create.Error)

	require.Contains(t, nextData(), "Harbor Tower")
}
