package adminController_test

import (
	"fmt"
	"testing"

	"innerspark/metrics"
	"innerspark/models"
	"innerspark/routers/adminRoutes"
	"innerspark/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) *fiber.App {
	testutil.Setup(t)
	app := fiber.New()
	app.Use(metrics.Default.Middleware())
	adminRoutes.SetupAdminRoutes(app.Group("/api"))
	return app
}

func TestCreateUser(t *testing.T) {
	app := newApp(t)
	admin := testutil.CreateUser(t, models.RoleAdmin)
	token := testutil.Token(t, admin)

	req := map[string]string{"name": "Budi", "email": "budi@innerspark.test", "password": "mentorpass", "role": models.RoleStaff}
	status, body := testutil.Do(t, app, testutil.Request("POST", "/api/admin/users", req, token))
	require.Equal(t, fiber.StatusCreated, status, string(body))
	var u models.User
	testutil.DecodeEnvelope(t, body, &u)
	assert.Equal(t, models.RoleStaff, u.Role)
	assert.True(t, u.IsEmailVerified)

	status, _ = testutil.Do(t, app, testutil.Request("POST", "/api/admin/users", req, token))
	assert.Equal(t, fiber.StatusConflict, status)

	student := testutil.CreateUser(t, models.RoleStudent)
	status, _ = testutil.Do(t, app, testutil.Request("POST", "/api/admin/users", req, testutil.Token(t, student)))
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestSetUserStatus(t *testing.T) {
	app := newApp(t)
	admin := testutil.CreateUser(t, models.RoleAdmin)
	student := testutil.CreateUser(t, models.RoleStudent)
	token := testutil.Token(t, admin)

	status, body := testutil.Do(t, app, testutil.Request("POST", fmt.Sprintf("/api/admin/users/%d/status", student.ID),
		map[string]bool{"isActive": false}, token))
	require.Equal(t, fiber.StatusOK, status, string(body))
	var u models.User
	testutil.DecodeEnvelope(t, body, &u)
	assert.False(t, u.IsActive)

	status, _ = testutil.Do(t, app, testutil.Request("POST", fmt.Sprintf("/api/admin/users/%d/status", admin.ID),
		map[string]bool{"isActive": false}, token))
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = testutil.Do(t, app, testutil.Request("POST", fmt.Sprintf("/api/admin/users/%d/status", student.ID),
		map[string]string{}, token))
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}

func TestDeveloperMetrics(t *testing.T) {
	app := newApp(t)
	dev := testutil.CreateUser(t, models.RoleDeveloper)
	student := testutil.CreateUser(t, models.RoleStudent)

	status, _ := testutil.Do(t, app, testutil.Request("GET", "/api/developer/metrics", nil, testutil.Token(t, student)))
	require.Equal(t, fiber.StatusForbidden, status)

	status, body := testutil.Do(t, app, testutil.Request("GET", "/api/developer/metrics", nil, testutil.Token(t, dev)))
	require.Equal(t, fiber.StatusOK, status)
	var snap metrics.Snapshot
	testutil.DecodeEnvelope(t, body, &snap)
	assert.NotZero(t, snap.Requests)
	assert.NotNil(t, snap.Database)
	assert.NotEmpty(t, snap.TopRoutes)
}
