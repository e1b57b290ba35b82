package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mybankuml/banking-portal/internal/core/domain"
	"github.com/mybankuml/banking-portal/internal/core/ports"
)

func TestAdminHandler_AssignRole(t *testing.T) {
	var gotUser, gotRole string
	api := &stubBankAPI{
		assignRoleFn: func(userID, role string) (*ports.Envelope, error) {
			gotUser, gotRole = userID, role
			return &ports.Envelope{Success: true}, nil
		},
	}
	store, _ := storeAs(t, api, "a1", domain.RoleAdmin)
	h := NewAdminHandler(api, zerolog.Nop())

	rec, err := serve(t, store, h.AssignRole, request{
		method: http.MethodPost,
		target: "/admin/users/u7/role",
		body:   `{"role":"bank_manager"}`,
		params: map[string]string{"userID": "u7"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotUser != "u7" || gotRole != "bank_manager" {
		t.Fatalf("unexpected call (%q, %q)", gotUser, gotRole)
	}
	if resp := decode[messageResponse](t, rec); resp.Message != "Role updated" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
}

func TestAdminHandler_AssignUnknownRole(t *testing.T) {
	api := &stubBankAPI{}
	store, _ := storeAs(t, api, "a1", domain.RoleAdmin)
	h := NewAdminHandler(api, zerolog.Nop())

	_, err := serve(t, store, h.AssignRole, request{
		method: http.MethodPost,
		target: "/admin/users/u7/role",
		body:   `{"role":"superuser"}`,
		params: map[string]string{"userID": "u7"},
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if api.callCount("AssignRole") != 0 {
		t.Fatal("expected no backend call")
	}
}

func TestAdminHandler_Stats(t *testing.T) {
	api := &stubBankAPI{
		adminStatsFn: func() (*ports.StatsResult, error) {
			return &ports.StatsResult{Envelope: ok(), TotalUsers: 7}, nil
		},
	}
	store, _ := storeAs(t, api, "a1", domain.RoleAdmin)
	h := NewAdminHandler(api, zerolog.Nop())

	rec, err := serve(t, store, h.Stats, request{method: http.MethodGet, target: "/admin/stats"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp := decode[statsResponse](t, rec); resp.TotalUsers != 7 {
		t.Fatalf("expected 7, got %d", resp.TotalUsers)
	}
}
