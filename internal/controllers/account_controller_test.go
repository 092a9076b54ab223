package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"accounts-be/internal/jwt"
	"accounts-be/internal/mailer"
	"accounts-be/internal/middleware"
	"accounts-be/internal/repository"
	"accounts-be/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *repository.MemoryRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepository()
	jwtService := jwt.NewJWTService("test-secret", time.Hour)
	accountService := service.NewAccountService(repo, jwtService, mailer.NewMemoryMailer(), "http://localhost:3000")
	controller := NewAccountController(accountService)

	router := gin.New()
	router.POST("/register", controller.Register)
	router.GET("/verify-email", controller.VerifyEmail)
	router.POST("/login", controller.Login)
	router.POST("/forget-password", controller.ForgetPassword)
	router.POST("/reset-password", controller.ResetPassword)

	protected := router.Group("")
	protected.Use(middleware.AuthMiddleware(jwtService))
	{
		protected.GET("/profile", controller.GetProfile)
		protected.PUT("/profile", controller.UpdateProfile)
		protected.DELETE("/profile", controller.DeleteProfile)
	}

	return router, repo
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// verificationToken looks up the pending verification token for an email.
func verificationToken(t *testing.T, repo *repository.MemoryRepository, email string) string {
	t.Helper()
	user, err := repo.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	require.NotNil(t, user.VerificationToken)
	return *user.VerificationToken
}

func TestRegisterVerifyLoginProfile(t *testing.T) {
	router, repo := newTestRouter(t)

	// Register.
	w := doJSON(t, router, http.MethodPost, "/register", "", gin.H{
		"name": "Alice", "email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "User registered successfully")
	assert.NotContains(t, w.Body.String(), "password")

	// Login before verification.
	w = doJSON(t, router, http.MethodPost, "/login", "", gin.H{
		"email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	// Verify with the emailed token.
	w = doJSON(t, router, http.MethodGet, "/verify-email?token="+verificationToken(t, repo, "a@x.com"), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Login.
	w = doJSON(t, router, http.MethodPost, "/login", "", gin.H{
		"email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var loginBody struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loginBody))
	require.NotEmpty(t, loginBody.Token)

	// Profile with the session token.
	w = doJSON(t, router, http.MethodGet, "/profile", loginBody.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var profileBody struct {
		User struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profileBody))
	assert.Equal(t, "Alice", profileBody.User.Name)
	assert.Equal(t, "a@x.com", profileBody.User.Email)
}

func TestRegister_Validation(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name string
		body gin.H
	}{
		{"short name", gin.H{"name": "Al", "email": "a@x.com", "password": "secret1"}},
		{"bad email", gin.H{"name": "Alice", "email": "not-an-email", "password": "secret1"}},
		{"short password", gin.H{"name": "Alice", "email": "a@x.com", "password": "12345"}},
		{"missing fields", gin.H{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRegister_Duplicate(t *testing.T) {
	router, _ := newTestRouter(t)

	body := gin.H{"name": "Alice", "email": "a@x.com", "password": "secret1"}
	w := doJSON(t, router, http.MethodPost, "/register", "", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/register", "", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "User already exists")
}

func TestLogin_FailureBodiesAreIdentical(t *testing.T) {
	router, repo := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/register", "", gin.H{
		"name": "Alice", "email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, router, http.MethodGet, "/verify-email?token="+verificationToken(t, repo, "a@x.com"), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	wrongPass := doJSON(t, router, http.MethodPost, "/login", "", gin.H{
		"email": "a@x.com", "password": "wrong-password",
	})
	noUser := doJSON(t, router, http.MethodPost, "/login", "", gin.H{
		"email": "nobody@x.com", "password": "secret1",
	})

	assert.Equal(t, wrongPass.Code, noUser.Code)
	assert.Equal(t, http.StatusBadRequest, wrongPass.Code)
	assert.Equal(t, wrongPass.Body.Bytes(), noUser.Body.Bytes())
}

func TestLogin_MissingCredentials(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/login", "", gin.H{"email": "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfile_RequiresSessionToken(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, token := range []string{"", "garbage", "eyJhbGciOiJIUzI1NiJ9.e30.bad"} {
		w := doJSON(t, router, http.MethodGet, "/profile", token, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestProfile_UserDeletedAfterTokenIssued(t *testing.T) {
	router, repo := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/register", "", gin.H{
		"name": "Alice", "email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, router, http.MethodGet, "/verify-email?token="+verificationToken(t, repo, "a@x.com"), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/login", "", gin.H{
		"email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var loginBody struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loginBody))

	w = doJSON(t, router, http.MethodDelete, "/profile", loginBody.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// The token still verifies, but the user behind it is gone.
	w = doJSON(t, router, http.MethodGet, "/profile", loginBody.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestForgetPassword_StatusCodes(t *testing.T) {
	router, repo := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/register", "", gin.H{
		"name": "Alice", "email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Unverified account.
	w = doJSON(t, router, http.MethodPost, "/forget-password", "", gin.H{"email": "a@x.com"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Unknown email.
	w = doJSON(t, router, http.MethodPost, "/forget-password", "", gin.H{"email": "nobody@x.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Verified account.
	w = doJSON(t, router, http.MethodGet, "/verify-email?token="+verificationToken(t, repo, "a@x.com"), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/forget-password", "", gin.H{"email": "a@x.com"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestResetPassword_EndToEnd(t *testing.T) {
	router, repo := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/register", "", gin.H{
		"name": "Alice", "email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, router, http.MethodGet, "/verify-email?token="+verificationToken(t, repo, "a@x.com"), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/forget-password", "", gin.H{"email": "a@x.com"})
	require.Equal(t, http.StatusOK, w.Code)

	user, err := repo.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, user.ResetToken)
	resetToken := *user.ResetToken

	w = doJSON(t, router, http.MethodPost, "/reset-password", "", gin.H{
		"token": resetToken, "newPassword": "brand-new-pass",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// The consumed token cannot be replayed.
	w = doJSON(t, router, http.MethodPost, "/reset-password", "", gin.H{
		"token": resetToken, "newPassword": "yet-another-pass",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid or expired token")

	// Login with the new password.
	w = doJSON(t, router, http.MethodPost, "/login", "", gin.H{
		"email": "a@x.com", "password": "brand-new-pass",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestResetPassword_Validation(t *testing.T) {
	router, _ := newTestRouter(t)

	// Short replacement passwords are rejected at the boundary.
	w := doJSON(t, router, http.MethodPost, "/reset-password", "", gin.H{
		"token": "whatever", "newPassword": "12345",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// A missing token never reaches the store.
	w = doJSON(t, router, http.MethodPost, "/reset-password", "", gin.H{
		"newPassword": "brand-new-pass",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyEmail_MissingToken(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/verify-email", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateProfile_EmailChangeRequiresVerification(t *testing.T) {
	router, repo := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/register", "", gin.H{
		"name": "Alice", "email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// An unverified user cannot log in, so mint a token directly for them to
	// exercise the policy check in isolation.
	user, err := repo.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	token, err := jwt.NewJWTService("test-secret", time.Hour).GenerateToken(user.ID, false)
	require.NoError(t, err)

	w = doJSON(t, router, http.MethodPut, "/profile", token, gin.H{"email": "alice@x.com"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Verify, then the same change succeeds.
	w = doJSON(t, router, http.MethodGet, "/verify-email?token="+verificationToken(t, repo, "a@x.com"), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPut, "/profile", token, gin.H{"email": "alice@x.com"})
	require.Equal(t, http.StatusOK, w.Code)

	stored, err := repo.FindByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
}
