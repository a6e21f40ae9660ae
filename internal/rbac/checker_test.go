package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheckerHas(t *testing.T) {
	c := NewChecker(nil)
	tests := []struct {
		role, perm string
		want       bool
	}{
		{"learner", "education:submit", true},
		{"learner", "education:view", true},
		{"learner", "users:list", false},
		{"support", "education:view", true},
		{"support", "education:submit", false},
		{"admin", "education:submit", true},
		{"admin", "anything:at:all", true},
		{"", "education:view", false},
		{"ghost", "education:view", false},
	}
	for _, tc := range tests {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestCheckerWildcardPrefix(t *testing.T) {
	c := NewChecker(map[string][]string{"ops": {"education:*"}})
	if !c.Has("ops", "education:view") {
		t.Fatal("prefix wildcard did not match")
	}
	if c.Has("ops", "users:list") {
		t.Fatal("prefix wildcard matched outside its prefix")
	}
}

func TestCheckerAny(t *testing.T) {
	c := NewChecker(nil)
	if !c.Any("support", "education:submit", "users:list") {
		t.Fatal("Any missed a granted permission")
	}
	if c.Any("support", "education:submit", "education:start") {
		t.Fatal("Any granted permissions the role lacks")
	}
}

func TestRequireMiddleware(t *testing.T) {
	handler := Require("education:submit")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name string
		role string
		want int
	}{
		{"granted", "learner", http.StatusNoContent},
		{"denied", "support", http.StatusForbidden},
		{"no role", "", http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/x", nil)
			if tc.role != "" {
				req = req.WithContext(WithRole(req.Context(), tc.role))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestRoleRoundTrip(t *testing.T) {
	ctx := WithRole(context.Background(), "learner")
	if got := RoleFromContext(ctx); got != "learner" {
		t.Fatalf("role = %q, want learner", got)
	}
	if got := RoleFromContext(context.Background()); got != "" {
		t.Fatalf("empty context role = %q, want empty", got)
	}
}
