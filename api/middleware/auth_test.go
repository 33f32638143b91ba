package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/stockroom/pkg/db/models"
	"github.com/angelmondragon/stockroom/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockroom/pkg/errors"
)

type fakeGate struct {
	users        map[string]*models.User
	seenToken    string
	authorizeErr error
}

func (f *fakeGate) Resolve(ctx context.Context, token string) (*models.User, error) {
	f.seenToken = token
	if user, ok := f.users[token]; ok {
		return user, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "token rejected")
}

func (f *fakeGate) Authorize(ctx context.Context, user *models.User, required enums.Role) error {
	if f.authorizeErr != nil {
		return f.authorizeErr
	}
	if user.Position != required {
		return pkgerrors.New(pkgerrors.CodeForbidden, "wrong role")
	}
	return nil
}

func newFakeGate() *fakeGate {
	return &fakeGate{users: map[string]*models.User{
		"trader-token": {ID: 1, Login: "alice", Position: enums.RoleTrader},
		"buyer-token":  {ID: 2, Login: "bob", Position: enums.RoleBuyer},
	}}
}

func TestAuthInjectsUser(t *testing.T) {
	gate := newFakeGate()
	var got *models.User
	handler := Auth(gate, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer trader-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got == nil || got.Login != "alice" {
		t.Fatalf("expected alice in context, got %+v", got)
	}
	if gate.seenToken != "trader-token" {
		t.Fatalf("expected bearer token stripped of scheme, got %q", gate.seenToken)
	}
}

func TestAuthRejectsWithBearerChallenge(t *testing.T) {
	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"unknown token":  "Bearer nope",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			handler := Auth(newFakeGate(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler should not run")
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if rec.Header().Get("WWW-Authenticate") != "Bearer" {
				t.Fatalf("expected bearer challenge, got %q", rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	gate := newFakeGate()
	chain := func(role enums.Role) http.Handler {
		return Auth(gate, nil)(RequireRole(gate, role, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})))
	}

	serve := func(h http.Handler, token string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := serve(chain(enums.RoleTrader), "trader-token"); code != http.StatusNoContent {
		t.Fatalf("trader on trader route: expected 204, got %d", code)
	}
	if code := serve(chain(enums.RoleTrader), "buyer-token"); code != http.StatusForbidden {
		t.Fatalf("buyer on trader route: expected 403, got %d", code)
	}
	if code := serve(chain(enums.RoleBuyer), "trader-token"); code != http.StatusForbidden {
		t.Fatalf("trader on buyer route: expected 403, got %d", code)
	}
}

func TestRequireRoleWithoutAuthIsUnauthorized(t *testing.T) {
	handler := RequireRole(newFakeGate(), enums.RoleBuyer, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestStatusRecorderDefaultsToOK(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	if rec.Status() != http.StatusOK {
		t.Fatalf("expected default 200, got %d", rec.Status())
	}
	rec.WriteHeader(http.StatusTeapot)
	rec.WriteHeader(http.StatusOK)
	if rec.Status() != http.StatusTeapot {
		t.Fatalf("expected first status to stick, got %d", rec.Status())
	}
}

func TestRecovererWritesInternalError(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestRequestIDEchoesOrGenerates(t *testing.T) {
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get(requestIDHeader) != "abc-123" {
		t.Fatalf("expected echoed id, got %q", rec.Header().Get(requestIDHeader))
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if len(rec.Header().Get(requestIDHeader)) != 36 {
		t.Fatalf("expected generated uuid, got %q", rec.Header().Get(requestIDHeader))
	}
}
