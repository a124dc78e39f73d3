package authController_test

import (
	"testing"

	authController "innerspark/controllers/auth"
	"innerspark/database"
	"innerspark/models"
	"innerspark/routers/authRoutes"
	"innerspark/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) *fiber.App {
	testutil.Setup(t)
	app := fiber.New()
	authRoutes.SetupAuthRoutes(app.Group("/api"))
	return app
}

type session struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

func TestSignupVerifyFlow(t *testing.T) {
	app := newApp(t)

	status, body := testutil.Do(t, app, testutil.Request("POST", "/api/auth/signup", map[string]string{
		"name": "Dewi", "email": "Dewi@Example.com", "password": "supersecret",
	}, ""))
	require.Equal(t, fiber.StatusCreated, status, string(body))
	var s session
	testutil.DecodeEnvelope(t, body, &s)
	assert.Equal(t, "dewi@example.com", s.User.Email)
	assert.Equal(t, models.RoleStudent, s.User.Role)
	require.NotEmpty(t, s.Token)

	status, body = testutil.Do(t, app, testutil.Request("GET", "/api/auth/status", nil, s.Token))
	require.Equal(t, fiber.StatusOK, status)
	var st authController.AccountStatus
	testutil.DecodeEnvelope(t, body, &st)
	assert.Equal(t, authController.StateRequireEmail, st.State)

	// a code was issued at signup, so a resend right away is throttled
	status, _ = testutil.Do(t, app, testutil.Request("POST", "/api/auth/verify-email/send", nil, s.Token))
	assert.Equal(t, fiber.StatusTooManyRequests, status)

	var otp models.OTP
	require.NoError(t, database.Database.Db.Where("user_id = ?", s.User.ID).First(&otp).Error)

	wrong := "000000"
	if otp.Code == wrong {
		wrong = "111111"
	}
	status, _ = testutil.Do(t, app, testutil.Request("POST", "/api/auth/verify-email", map[string]string{"code": wrong}, s.Token))
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = testutil.Do(t, app, testutil.Request("POST", "/api/auth/verify-email", map[string]string{"code": otp.Code}, s.Token))
	require.Equal(t, fiber.StatusOK, status, string(body))
	testutil.DecodeEnvelope(t, body, &st)
	assert.Equal(t, authController.StateActive, st.State)

	status, _ = testutil.Do(t, app, testutil.Request("POST", "/api/auth/signup", map[string]string{
		"name": "Dewi", "email": "dewi@example.com", "password": "supersecret",
	}, ""))
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestLoginLogout(t *testing.T) {
	app := newApp(t)
	u := testutil.CreateUser(t, models.RoleStudent)

	status, body := testutil.Do(t, app, testutil.Request("POST", "/api/auth/login", map[string]string{
		"email": u.Email, "password": testutil.Password,
	}, ""))
	require.Equal(t, fiber.StatusOK, status, string(body))
	var s session
	testutil.DecodeEnvelope(t, body, &s)

	status, _ = testutil.Do(t, app, testutil.Request("GET", "/api/auth/me", nil, s.Token))
	assert.Equal(t, fiber.StatusOK, status)

	status, body = testutil.Do(t, app, testutil.Request("GET", "/api/auth/login-history", nil, s.Token))
	require.Equal(t, fiber.StatusOK, status)
	var history struct {
		Total int64 `json:"total"`
	}
	testutil.DecodeEnvelope(t, body, &history)
	assert.Equal(t, int64(1), history.Total)

	status, _ = testutil.Do(t, app, testutil.Request("POST", "/api/auth/logout", nil, s.Token))
	require.Equal(t, fiber.StatusOK, status)

	status, _ = testutil.Do(t, app, testutil.Request("GET", "/api/auth/me", nil, s.Token))
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestLoginLockout(t *testing.T) {
	app := newApp(t)
	u := testutil.CreateUser(t, models.RoleStudent)
	wrong := map[string]string{"email": u.Email, "password": "not-the-password"}

	for i := 0; i < 5; i++ {
		status, _ := testutil.Do(t, app, testutil.Request("POST", "/api/auth/login", wrong, ""))
		require.Equal(t, fiber.StatusUnauthorized, status)
	}

	status, body := testutil.Do(t, app, testutil.Request("POST", "/api/auth/login", map[string]string{
		"email": u.Email, "password": testutil.Password,
	}, ""))
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Contains(t, string(body), "blocked")
}

func TestInactiveUser(t *testing.T) {
	app := newApp(t)
	u := testutil.CreateUser(t, models.RoleStudent)
	token := testutil.Token(t, u)
	require.NoError(t, database.Database.Db.Model(u).Update("is_active", false).Error)

	status, _ := testutil.Do(t, app, testutil.Request("POST", "/api/auth/login", map[string]string{
		"email": u.Email, "password": testutil.Password,
	}, ""))
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body := testutil.Do(t, app, testutil.Request("GET", "/api/auth/status", nil, token))
	require.Equal(t, fiber.StatusOK, status)
	var st authController.AccountStatus
	testutil.DecodeEnvelope(t, body, &st)
	assert.Equal(t, authController.StateInactive, st.State)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, authController.StateActive, authController.StatusOf(&models.User{IsActive: true, IsEmailVerified: true}).State)
	assert.Equal(t, authController.StateRequireEmail, authController.StatusOf(&models.User{IsActive: true}).State)
	assert.Equal(t, authController.StateInactive, authController.StatusOf(&models.User{IsActive: false, IsEmailVerified: true}).State)
}
