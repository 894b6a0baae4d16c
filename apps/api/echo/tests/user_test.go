package tests

import (
	"encoding/json"
	"net/http"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elevezen/elevezen/core/user"
	emailsvc "github.com/elevezen/elevezen/services/email"
	testutil "github.com/elevezen/elevezen/tests"
)

func Test_userApi_signup(t *testing.T) {
	app := setup(t)

	body := marchallObj(t, map[string]string{
		"name":             "Jane Doe",
		"email":            "jane@test.cd",
		"password":         "LePassword7",
		"password_confirm": "LePassword7",
	})

	mailCount := len(emailsvc.SentMessages)

	req, rec := newRequest(http.MethodPost, "/v1/users/signup", body)
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var usr user.User
	if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	assert.NotEmpty(t, usr.ID)
	assert.Equal(t, "Jane Doe", usr.Name)
	assert.Equal(t, "jane@test.cd", usr.Email)
	assert.Equal(t, user.RoleUser, usr.Role)
	assert.True(t, usr.IsActive)

	// welcome email
	if assert.Greater(t, len(emailsvc.SentMessages), mailCount) {
		msg := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
		assert.Equal(t, "Welcome to EleveZen", msg.Subject)
		assert.Equal(t, "jane@test.cd", msg.To[0].Address)
	}

	// duplicate email is rejected
	req, rec = newRequest(http.MethodPost, "/v1/users/signup", body)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "email")

	// missing fields are rejected
	req, rec = newRequest(http.MethodPost, "/v1/users/signup", marchallObj(t, map[string]string{"email": "x@test.cd"}))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "this field is required")
}

func Test_userApi_login(t *testing.T) {
	app := setup(t)

	testutil.CreateUser(t, usrRepo, "Jane", "jane@test.cd", "LePassword7", user.RoleUser, true)
	testutil.CreateUser(t, usrRepo, "N Dog", "ndog@test.cd", "LePassword7", user.RoleUser, false)

	tests := []httpTest{
		{
			name: "valid credentials", body: marchallObj(t, map[string]string{"email": "jane@test.cd", "password": "LePassword7"}),
			wantCode: http.StatusOK,
		},
		{
			name: "email is case-insensitive", body: marchallObj(t, map[string]string{"email": "JANE@Test.CD", "password": "LePassword7"}),
			wantCode: http.StatusOK,
		},
		{
			name: "wrong password", body: marchallObj(t, map[string]string{"email": "jane@test.cd", "password": "nope"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "unknown email", body: marchallObj(t, map[string]string{"email": "who@test.cd", "password": "LePassword7"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", body: marchallObj(t, map[string]string{"email": "ndog@test.cd", "password": "LePassword7"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			assert.Equal(t, tt.wantCode, rec.Code)
			var res struct {
				Token string `json:"token"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
				t.Fatalf("unmarshalling response: %v", err)
			}
			assert.NotEmpty(t, res.Token)
		})
	}
}

func Test_userApi_me(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Jane", "jane@test.cd", "LePassword7", user.RoleUser, true)
	token := getToken(t, usr)

	// auth required
	req, rec := newRequest(http.MethodGet, "/v1/users/me")
	app.ServeHTTP(rec, req)
	tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
	checkCodeAndData(t, tt, rec)

	// retrieve
	req, rec = newAuthRequest(http.MethodGet, "/v1/users/me", token)
	app.ServeHTTP(rec, req)
	tt = httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, usr)}
	checkCodeAndData(t, tt, rec)

	// update
	body := marchallObj(t, map[string]string{"name": "Jane D.", "formation": "DevOps"})
	req, rec = newAuthRequest(http.MethodPut, "/v1/users/me", token, body)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	var updated user.User
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	assert.Equal(t, "Jane D.", updated.Name)
	assert.Equal(t, "DevOps", updated.Formation)
	assert.Equal(t, usr.Email, updated.Email)
}

func Test_userApi_role(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Jane", "jane@test.cd", "", user.RoleUser, true)
	superAdmin := testutil.CreateUser(t, usrRepo, "Root", "root@test.cd", "", user.RoleSuperAdmin, true)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "regular user", token: getToken(t, usr), wantCode: http.StatusOK,
			wantData: marchallObj(t, map[string]string{"role": user.RoleUser}),
		},
		{
			name: "super-admin", token: getToken(t, superAdmin), wantCode: http.StatusOK,
			wantData: marchallObj(t, map[string]string{"role": user.RoleSuperAdmin}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/users/me/role", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// a stale token whose subject no longer resolves degrades to the lowest privilege
	ghost := user.User{ID: "deadbeef-0000-0000-0000-000000000000", Email: "ghost@test.cd", Role: user.RoleAdmin}
	req, rec := newAuthRequest(http.MethodGet, "/v1/users/me/role", getToken(t, ghost))
	app.ServeHTTP(rec, req)
	tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, map[string]string{"role": user.RoleUser})}
	checkCodeAndData(t, tt, rec)
}

func Test_userApi_tokenRefresh(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Jane", "jane@test.cd", "", user.RoleUser, true)

	req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", getToken(t, usr))
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var res struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	assert.NotEmpty(t, res.Token)
}

func Test_userApi_passwordReset(t *testing.T) {
	app := setup(t)

	testutil.CreateUser(t, usrRepo, "Jane", "jane@test.cd", "LePassword7", user.RoleUser, true)
	mailCount := len(emailsvc.SentMessages)

	// request a reset
	req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", marchallObj(t, map[string]string{"email": "jane@test.cd"}))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	if !assert.Greater(t, len(emailsvc.SentMessages), mailCount) {
		t.FailNow()
	}
	msg := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
	matches := regexp.MustCompile(`/password-reset/([^/\s]+)/([^/\s]+)`).FindStringSubmatch(msg.TextContent)
	if len(matches) != 3 {
		t.Fatalf("reset link not found in email: %q", msg.TextContent)
	}
	uid, token := matches[1], matches[2]

	// confirm with the emailed token
	body := marchallObj(t, map[string]string{
		"uid":              uid,
		"token":            token,
		"password":         "NewPassword8",
		"password_confirm": "NewPassword8",
	})
	req, rec = newRequest(http.MethodPost, "/v1/users/password-reset-confirm", body)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// old password no longer works; the new one does
	req, rec = newRequest(http.MethodPost, "/v1/users/login", marchallObj(t, map[string]string{"email": "jane@test.cd", "password": "LePassword7"}))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req, rec = newRequest(http.MethodPost, "/v1/users/login", marchallObj(t, map[string]string{"email": "jane@test.cd", "password": "NewPassword8"}))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// an unknown email gets the same response, with no email sent
	mailCount = len(emailsvc.SentMessages)
	req, rec = newRequest(http.MethodPost, "/v1/users/password-reset", marchallObj(t, map[string]string{"email": "who@test.cd"}))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, emailsvc.SentMessages, mailCount)
}
