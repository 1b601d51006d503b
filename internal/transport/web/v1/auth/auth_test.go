package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wnsghl6272/total-cooked/internal/domain"
)

type fakeUsers struct {
	created   []string
	createErr error
	user      domain.User
	byLoginOK bool
}

func (f *fakeUsers) Close()                             {}
func (f *fakeUsers) Ping(context.Context) error         { return nil }
func (f *fakeUsers) CreateUser(_ context.Context, login string, passHash []byte) (domain.User, error) {
	if f.createErr != nil {
		return domain.User{}, f.createErr
	}
	f.created = append(f.created, login)
	return domain.User{ID: uuid.New(), Login: login, PassHash: passHash}, nil
}

func (f *fakeUsers) UserByLogin(context.Context, string) (domain.User, error) {
	if !f.byLoginOK {
		return domain.User{}, errors.New("no rows")
	}
	return f.user, nil
}

func (f *fakeUsers) UserByID(context.Context, domain.UserID) (domain.User, error) {
	return f.user, nil
}

type fakeHasher struct{ verifyOK bool }

func (f *fakeHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }
func (f *fakeHasher) Verify(string, string) (bool, error) {
	return f.verifyOK, nil
}

type fakeTokens struct {
	claims   domain.TokenClaims
	parseErr error
}

func (f *fakeTokens) Issue(context.Context, domain.UserID, string) (domain.Token, domain.TokenClaims, error) {
	return "issued-token", f.claims, nil
}

func (f *fakeTokens) Parse(context.Context, domain.Token) (domain.TokenClaims, error) {
	return f.claims, f.parseErr
}

type fakeBlacklist struct{ revoked []string }

func (f *fakeBlacklist) Revoke(_ context.Context, jti string, _ time.Time) error {
	f.revoked = append(f.revoked, jti)
	return nil
}

func (f *fakeBlacklist) IsRevoked(context.Context, string) (bool, error) { return false, nil }

func discard() *log.Logger { return log.New(io.Discard, "", 0) }

func jsonRequest(method, url, body string) *http.Request {
	r := httptest.NewRequest(method, url, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestRegisterOK(t *testing.T) {
	users := &fakeUsers{}
	h := &HandlerRegister{Log: discard(), Users: users, Hasher: &fakeHasher{}}

	w := httptest.NewRecorder()
	h.Register(w, jsonRequest(http.MethodPost, "/api/register", `{"login": "chef42", "pswd": "Str0ngPass"}`))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	if len(users.created) != 1 || users.created[0] != "chef42" {
		t.Errorf("user not created: %v", users.created)
	}
	var resp registerResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Login != "chef42" {
		t.Errorf("unexpected login: %q", resp.Login)
	}
}

func TestRegisterValidation(t *testing.T) {
	h := &HandlerRegister{Log: discard(), Users: &fakeUsers{}, Hasher: &fakeHasher{}}

	cases := []struct{ name, body string }{
		{"short login", `{"login": "ab", "pswd": "Str0ngPass"}`},
		{"weak password", `{"login": "chef42", "pswd": "weak"}`},
		{"no digits", `{"login": "chef42", "pswd": "NoDigitsHere"}`},
		{"bad json", `{nope`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.Register(w, jsonRequest(http.MethodPost, "/api/register", c.body))
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestRegisterDuplicateLogin(t *testing.T) {
	users := &fakeUsers{createErr: errors.New("unique violation")}
	h := &HandlerRegister{Log: discard(), Users: users, Hasher: &fakeHasher{}}

	w := httptest.NewRecorder()
	h.Register(w, jsonRequest(http.MethodPost, "/api/register", `{"login": "chef42", "pswd": "Str0ngPass"}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestRegisterAcceptsForm(t *testing.T) {
	users := &fakeUsers{}
	h := &HandlerRegister{Log: discard(), Users: users, Hasher: &fakeHasher{}}

	r := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader("login=chef42&pswd=Str0ngPass"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.Register(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
}

func TestLoginOK(t *testing.T) {
	users := &fakeUsers{byLoginOK: true, user: domain.User{ID: uuid.New(), Login: "chef42", PassHash: []byte("h")}}
	h := &HandlerLogin{Log: discard(), Users: users, Hasher: &fakeHasher{verifyOK: true}, Tokens: &fakeTokens{}}

	w := httptest.NewRecorder()
	h.Login(w, jsonRequest(http.MethodPost, "/api/auth", `{"login": "chef42", "pswd": "Str0ngPass"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	var resp loginResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Token != "issued-token" {
		t.Errorf("unexpected token: %q", resp.Token)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	h := &HandlerLogin{Log: discard(), Users: &fakeUsers{}, Hasher: &fakeHasher{}, Tokens: &fakeTokens{}}
	w := httptest.NewRecorder()
	h.Login(w, jsonRequest(http.MethodPost, "/api/auth", `{"login": "ghost", "pswd": "Str0ngPass"}`))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	users := &fakeUsers{byLoginOK: true, user: domain.User{Login: "chef42"}}
	h := &HandlerLogin{Log: discard(), Users: users, Hasher: &fakeHasher{verifyOK: false}, Tokens: &fakeTokens{}}
	w := httptest.NewRecorder()
	h.Login(w, jsonRequest(http.MethodPost, "/api/auth", `{"login": "chef42", "pswd": "wrongPass1"}`))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestLoginEmptyFields(t *testing.T) {
	h := &HandlerLogin{Log: discard(), Users: &fakeUsers{}, Hasher: &fakeHasher{}, Tokens: &fakeTokens{}}
	w := httptest.NewRecorder()
	h.Login(w, jsonRequest(http.MethodPost, "/api/auth", `{"login": "", "pswd": ""}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestLogoutFromPath(t *testing.T) {
	bl := &fakeBlacklist{}
	tokens := &fakeTokens{claims: domain.TokenClaims{JTI: "jti-1", ExpiresAt: time.Now().Add(time.Hour)}}
	h := &HandlerLogout{Log: discard(), Tokens: tokens, Blacklist: bl}

	w := httptest.NewRecorder()
	h.Logout(w, httptest.NewRequest(http.MethodDelete, "/api/auth/some.jwt.token", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	if len(bl.revoked) != 1 || bl.revoked[0] != "jti-1" {
		t.Errorf("jti not revoked: %v", bl.revoked)
	}
	var resp logoutResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Revoked != "jti-1" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestLogoutFromBearerHeader(t *testing.T) {
	bl := &fakeBlacklist{}
	tokens := &fakeTokens{claims: domain.TokenClaims{JTI: "jti-2", ExpiresAt: time.Now().Add(time.Hour)}}
	h := &HandlerLogout{Log: discard(), Tokens: tokens, Blacklist: bl}

	r := httptest.NewRequest(http.MethodDelete, "/logout", nil)
	r.Header.Set("Authorization", "Bearer some.jwt.token")
	w := httptest.NewRecorder()
	h.Logout(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(bl.revoked) != 1 {
		t.Errorf("expected revocation, got %v", bl.revoked)
	}
}

func TestLogoutBadToken(t *testing.T) {
	h := &HandlerLogout{Log: discard(), Tokens: &fakeTokens{parseErr: errors.New("bad sig")}, Blacklist: &fakeBlacklist{}}
	w := httptest.NewRecorder()
	h.Logout(w, httptest.NewRequest(http.MethodDelete, "/api/auth/garbage", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestLogoutMissingToken(t *testing.T) {
	h := &HandlerLogout{Log: discard(), Tokens: &fakeTokens{}, Blacklist: &fakeBlacklist{}}
	w := httptest.NewRecorder()
	h.Logout(w, httptest.NewRequest(http.MethodDelete, "/logout", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
