package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-learn/internal/db/dbtest"
	"github.com/mind-engage/mindengage-learn/internal/rbac"
)

func actorEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, ok := rbac.ActorFromContext(r.Context())
		if !ok {
			_, _ = w.Write([]byte("anonymous"))
			return
		}
		_, _ = w.Write([]byte(a.ID + "/" + string(a.Role)))
	})
}

func do(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestIssueAndParse(t *testing.T) {
	a := NewAuthService("secret", time.Hour)
	tok, err := a.IssueJWT("u-1", rbac.RoleTeacher)
	if err != nil {
		t.Fatal(err)
	}
	c, err := a.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := c.Actor(); got != (rbac.Actor{ID: "u-1", Role: rbac.RoleTeacher}) {
		t.Fatalf("actor = %+v", got)
	}

	if _, err := NewAuthService("other", time.Hour).Parse(tok); err == nil {
		t.Fatal("token signed with another secret accepted")
	}

	expired := NewAuthService("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _ := expired.IssueJWT("u-1", rbac.RoleStudent)
	if _, err := a.Parse(old); err == nil {
		t.Fatal("expired token accepted")
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Sub: "u-1", Role: "admin"})
	raw, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := a.Parse(raw); err == nil {
		t.Fatal("unsigned token accepted")
	}

	bogus, _ := a.IssueJWT("u-1", rbac.Role("root"))
	if _, err := a.Parse(bogus); err == nil {
		t.Fatal("unknown role accepted")
	}
}

func TestJWTMiddleware(t *testing.T) {
	a := NewAuthService("secret", time.Hour)
	tok, _ := a.IssueJWT("u-1", rbac.RoleStudent)
	h := JWTMiddleware(a)(actorEcho())

	if rr := do(h, ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: %d", rr.Code)
	}
	if rr := do(h, "junk"); rr.Code != http.StatusUnauthorized {
		t.Fatalf("junk token: %d", rr.Code)
	}
	rr := do(h, tok)
	if rr.Code != http.StatusOK || rr.Body.String() != "u-1/student" {
		t.Fatalf("valid token: %d %q", rr.Code, rr.Body.String())
	}
}

func TestOptionalJWT(t *testing.T) {
	a := NewAuthService("secret", time.Hour)
	tok, _ := a.IssueJWT("u-1", rbac.RoleAdmin)
	h := OptionalJWT(a)(actorEcho())

	if rr := do(h, ""); rr.Code != http.StatusOK || rr.Body.String() != "anonymous" {
		t.Fatalf("anonymous: %d %q", rr.Code, rr.Body.String())
	}
	if rr := do(h, "junk"); rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad token should still be rejected: %d", rr.Code)
	}
	if rr := do(h, tok); rr.Body.String() != "u-1/admin" {
		t.Fatalf("valid token: %q", rr.Body.String())
	}
}

func TestLoginAndRoleRefresh(t *testing.T) {
	h := dbtest.Open(t)
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	created, err := EnsureAdmin(ctx, h, "root", "", string(hash))
	if err != nil || !created {
		t.Fatalf("ensure admin: %v %v", created, err)
	}
	if created, err := EnsureAdmin(ctx, h, "root", "", string(hash)); err != nil || created {
		t.Fatalf("second ensure admin should be a no-op: %v %v", created, err)
	}
	if _, err := EnsureAdmin(ctx, h, "x", "x@y", "plaintext"); err == nil {
		t.Fatal("non-bcrypt hash accepted")
	}

	a := NewAuthService("secret", time.Hour)
	login := LoginHandler(a, h, nil)
	post := func(body string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		login(rr, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body)))
		return rr
	}

	if rr := post(`{"username":"root","password":"wrong"}`); rr.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: %d", rr.Code)
	}
	if rr := post(`{"username":"nobody","password":"pw"}`); rr.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user: %d", rr.Code)
	}
	if rr := post(`{`); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad json: %d", rr.Code)
	}
	rr := post(`{"username":"root@localhost","password":"pw"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rr.Code, rr.Body.String())
	}
	var resp loginResp
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Role != "admin" || resp.AccessToken == "" {
		t.Fatalf("resp = %+v", resp)
	}

	// the stored role wins over the token's claim
	if _, err := h.Exec(`UPDATE users SET role='student' WHERE id=$1`, resp.UserID); err != nil {
		t.Fatal(err)
	}
	chain := JWTMiddleware(a)(AttachRoleFromDB(h, false)(actorEcho()))
	if got := do(chain, resp.AccessToken).Body.String(); got != resp.UserID+"/student" {
		t.Fatalf("refreshed actor = %q", got)
	}

	ghost, _ := a.IssueJWT("ghost", rbac.RoleTeacher)
	if rr := do(chain, ghost); rr.Code != http.StatusForbidden {
		t.Fatalf("unknown user without fallback: %d", rr.Code)
	}
	lenient := JWTMiddleware(a)(AttachRoleFromDB(h, true)(actorEcho()))
	if got := do(lenient, ghost).Body.String(); got != "ghost/teacher" {
		t.Fatalf("fallback actor = %q", got)
	}
}
