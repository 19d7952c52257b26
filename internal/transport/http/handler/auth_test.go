package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vanishmail/internal/application/auth"
	"github.com/vanishmail/internal/domain"
)

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Signup(ctx context.Context, req auth.SignupRequest) (*auth.Result, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*auth.Result); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthService) RequestSignupOTP(ctx context.Context, req auth.SignupRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
func (m *mockAuthService) VerifySignupOTP(ctx context.Context, req auth.VerifyOTPRequest) (*auth.Result, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*auth.Result); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.Result, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*auth.Result); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthService) FederatedLogin(ctx context.Context, profile auth.FederatedProfile) (*auth.Result, error) {
	args := m.Called(ctx, profile)
	if r, _ := args.Get(0).(*auth.Result); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}
func (m *mockAuthService) VerifyResetOTP(ctx context.Context, req auth.VerifyOTPRequest) error {
	return m.Called(ctx, req).Error(0)
}
func (m *mockAuthService) ResetPassword(ctx context.Context, req auth.ResetPasswordRequest) error {
	return m.Called(ctx, req).Error(0)
}

func doJSON(t *testing.T, h http.HandlerFunc, body string) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestSignup_Created(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Signup", mock.Anything, auth.SignupRequest{
		Email: "a@x.com", Password: "pw123456", Name: "Alice",
	}).Return(&auth.Result{
		User:  &domain.User{UserID: "u1", Email: "a@x.com"},
		Token: "tok123",
	}, nil)

	h := NewAuthHandler(svc)
	rec, env := doJSON(t, h.Signup, `{"email":"a@x.com","password":"pw123456","name":"Alice"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "account created", env.Message)
	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "tok123", data["token"])
}

func TestSignup_ValidationError_422(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})
	rec, env := doJSON(t, h.Signup, `{"email":"not-an-email","password":"short","name":""}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.False(t, env.Success)
	fields, ok := env.Error.([]interface{})
	require.True(t, ok)
	assert.Len(t, fields, 3)
}

func TestSignup_InvalidBody_400(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})
	rec, env := doJSON(t, h.Signup, `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", env.Error)
}

func TestSignup_Conflict_409(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Signup", mock.Anything, mock.Anything).Return(nil, domain.ErrConflict)

	h := NewAuthHandler(svc)
	rec, env := doJSON(t, h.Signup, `{"email":"a@x.com","password":"pw123456","name":"Alice"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, env.Success)
}

func TestLogin_InvalidCredentials_401(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Login", mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidCredentials)

	h := NewAuthHandler(svc)
	rec, env := doJSON(t, h.Login, `{"email":"a@x.com","password":"wrongpw1"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)
}

func TestVerifySignupOTP_BadCodeLength_422(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})
	rec, _ := doJSON(t, h.VerifySignupOTP, `{"email":"a@x.com","otp":"123"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestVerifySignupOTP_InvalidCode_400(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("VerifySignupOTP", mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidCode)

	h := NewAuthHandler(svc)
	rec, _ := doJSON(t, h.VerifySignupOTP, `{"email":"a@x.com","otp":"123456"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForgotPassword_AlwaysNeutralMessage(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("RequestPasswordReset", mock.Anything, "ghost@x.com").Return("", nil)

	h := NewAuthHandler(svc)
	rec, env := doJSON(t, h.ForgotPassword, `{"email":"ghost@x.com"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "if the email is registered, a reset code has been sent", env.Message)
	assert.Nil(t, env.Data)
}

func TestForgotPassword_MailWarningSurfaced(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("RequestPasswordReset", mock.Anything, "a@x.com").
		Return("could not send email, try again later", nil)

	h := NewAuthHandler(svc)
	rec, env := doJSON(t, h.ForgotPassword, `{"email":"a@x.com"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, data["warning"])
}

func TestResetPassword_BeforeVerify_403(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("ResetPassword", mock.Anything, mock.Anything).Return(domain.ErrForbidden)

	h := NewAuthHandler(svc)
	rec, _ := doJSON(t, h.ResetPassword, `{"email":"a@x.com","new_password":"newpw1234"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
