package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestComments_InternalHiddenFromClients(t *testing.T) {
	s := newTestServer(t)
	acme := s.company(t, "Acme")
	alice := s.user(t, "alice", domain.RoleClient, &acme.ID)
	support := s.user(t, "sam", domain.RoleSupport, nil)
	id := s.do(t, http.MethodPost, "/tickets", alice.token, map[string]any{"title": "T", "description": "D"}).object(t)["id"].(string)
	path := "/tickets/" + id + "/comments"

	resp := s.do(t, http.MethodPost, path, support.token, map[string]any{"content": "public reply"})
	require.Equal(t, http.StatusCreated, resp.status, string(resp.body))
	resp = s.do(t, http.MethodPost, path, support.token, map[string]any{"content": "internal note", "isInternal": true})
	require.Equal(t, http.StatusCreated, resp.status)
	assert.Equal(t, true, resp.object(t)["isInternal"])

	resp = s.do(t, http.MethodGet, path, alice.token, nil)
	require.Equal(t, http.StatusOK, resp.status)
	comments := resp.list(t)
	require.Len(t, comments, 1)
	assert.Equal(t, "public reply", comments[0].(map[string]any)["content"])

	resp = s.do(t, http.MethodGet, path, support.token, nil)
	comments = resp.list(t)
	require.Len(t, comments, 2)
	assert.Equal(t, "public reply", comments[0].(map[string]any)["content"])
	assert.Equal(t, "internal note", comments[1].(map[string]any)["content"])
	assert.Equal(t, "sam", comments[1].(map[string]any)["author"].(map[string]any)["name"])

	resp = s.do(t, http.MethodGet, "/tickets/"+id+"?includeComments=true", alice.token, nil)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Len(t, resp.object(t)["comments"], 1)
}

func TestComments_ClientInternalFlagDowngraded(t *testing.T) {
	s := newTestServer(t)
	acme := s.company(t, "Acme")
	alice := s.user(t, "alice", domain.RoleClient, &acme.ID)
	id := s.do(t, http.MethodPost, "/tickets", alice.token, map[string]any{"title": "T", "description": "D"}).object(t)["id"].(string)

	resp := s.do(t, http.MethodPost, "/tickets/"+id+"/comments", alice.token, map[string]any{"content": " hi ", "isInternal": true})
	require.Equal(t, http.StatusCreated, resp.status)
	body := resp.object(t)
	assert.Equal(t, false, body["isInternal"])
	assert.Equal(t, "hi", body["content"])

	resp = s.do(t, http.MethodPost, "/tickets/"+id+"/comments", alice.token, map[string]any{"content": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.status)
}

func TestComments_UpdateDeleteByAuthorOrSupport(t *testing.T) {
	s := newTestServer(t)
	acme := s.company(t, "Acme")
	alice := s.user(t, "alice", domain.RoleClient, &acme.ID)
	bob := s.user(t, "bob", domain.RoleClient, &acme.ID)
	support := s.user(t, "sam", domain.RoleSupport, nil)
	id := s.do(t, http.MethodPost, "/tickets", alice.token, map[string]any{"title": "T", "description": "D"}).object(t)["id"].(string)
	commentID := s.do(t, http.MethodPost, "/tickets/"+id+"/comments", alice.token, map[string]any{"content": "first"}).object(t)["id"].(string)
	path := "/tickets/" + id + "/comments/" + commentID

	resp := s.do(t, http.MethodPut, path, bob.token, map[string]any{"content": "hijack"})
	assert.Equal(t, http.StatusForbidden, resp.status)

	resp = s.do(t, http.MethodPut, path, alice.token, map[string]any{"content": "edited"})
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "edited", resp.object(t)["content"])

	resp = s.do(t, http.MethodDelete, path, bob.token, nil)
	assert.Equal(t, http.StatusForbidden, resp.status)

	resp = s.do(t, http.MethodDelete, path, support.token, nil)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "Comment deleted successfully", resp.object(t)["message"])

	resp = s.do(t, http.MethodDelete, path, support.token, nil)
	assert.Equal(t, http.StatusNotFound, resp.status)
}
