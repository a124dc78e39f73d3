package supportController_test

import (
	"fmt"
	"testing"

	"innerspark/models"
	"innerspark/routers/supportRoutes"
	"innerspark/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) *fiber.App {
	testutil.Setup(t)
	app := fiber.New()
	supportRoutes.SetupSupportRoutes(app.Group("/api"))
	return app
}

func TestTicketThread(t *testing.T) {
	app := newApp(t)
	student := testutil.CreateUser(t, models.RoleStudent)
	admin := testutil.CreateUser(t, models.RoleAdmin)
	studentToken, adminToken := testutil.Token(t, student), testutil.Token(t, admin)

	status, body := testutil.Do(t, app, testutil.Request("POST", "/api/support/tickets", map[string]string{
		"title": "Video will not play", "message": "The second lesson stays black", "category": "TECHNICAL",
	}, studentToken))
	require.Equal(t, fiber.StatusCreated, status, string(body))
	var ticket models.SupportTicket
	testutil.DecodeEnvelope(t, body, &ticket)
	assert.Equal(t, models.TicketOpen, ticket.Status)
	assert.Equal(t, "TECHNICAL", ticket.Category)
	assert.Equal(t, "MEDIUM", ticket.Priority)
	require.Len(t, ticket.Messages, 1)

	replyURL := fmt.Sprintf("/api/support/tickets/%d/reply", ticket.ID)
	status, body = testutil.Do(t, app, testutil.Request("POST", replyURL, map[string]string{"message": "Please try another browser"}, adminToken))
	require.Equal(t, fiber.StatusOK, status, string(body))
	var reply struct {
		Status  string               `json:"status"`
		Message models.TicketMessage `json:"message"`
	}
	testutil.DecodeEnvelope(t, body, &reply)
	assert.Equal(t, models.TicketAnswered, reply.Status)
	assert.Equal(t, models.SenderAdmin, reply.Message.Sender)

	status, body = testutil.Do(t, app, testutil.Request("POST", replyURL, map[string]string{"message": "Still black"}, studentToken))
	require.Equal(t, fiber.StatusOK, status)
	testutil.DecodeEnvelope(t, body, &reply)
	assert.Equal(t, models.TicketOpen, reply.Status)

	status, body = testutil.Do(t, app, testutil.Request("GET", "/api/support/tickets", nil, studentToken))
	require.Equal(t, fiber.StatusOK, status)
	var list struct {
		Tickets []models.SupportTicket `json:"tickets"`
	}
	testutil.DecodeEnvelope(t, body, &list)
	require.Len(t, list.Tickets, 1)
	assert.Len(t, list.Tickets[0].Messages, 3)

	status, _ = testutil.Do(t, app, testutil.Request("POST", fmt.Sprintf("/api/support/tickets/%d/close", ticket.ID), nil, studentToken))
	require.Equal(t, fiber.StatusOK, status)
	status, _ = testutil.Do(t, app, testutil.Request("POST", replyURL, map[string]string{"message": "one more"}, studentToken))
	assert.Equal(t, fiber.StatusConflict, status)

	status, body = testutil.Do(t, app, testutil.Request("GET", "/api/admin/support/stats", nil, adminToken))
	require.Equal(t, fiber.StatusOK, status)
	var stats map[string]int64
	testutil.DecodeEnvelope(t, body, &stats)
	assert.Equal(t, int64(1), stats[models.TicketClosed])
	assert.Equal(t, int64(1), stats["total"])
}

func TestTicketsArePrivate(t *testing.T) {
	app := newApp(t)
	owner := testutil.CreateUser(t, models.RoleStudent)
	other := testutil.CreateUser(t, models.RoleStudent)

	status, body := testutil.Do(t, app, testutil.Request("POST", "/api/support/tickets", map[string]string{
		"title": "Billing question", "message": "Was I charged twice?",
	}, testutil.Token(t, owner)))
	require.Equal(t, fiber.StatusCreated, status)
	var ticket models.SupportTicket
	testutil.DecodeEnvelope(t, body, &ticket)

	status, _ = testutil.Do(t, app, testutil.Request("POST", fmt.Sprintf("/api/support/tickets/%d/reply", ticket.ID),
		map[string]string{"message": "hello"}, testutil.Token(t, other)))
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = testutil.Do(t, app, testutil.Request("GET", "/api/admin/support/tickets", nil, testutil.Token(t, owner)))
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestCreateTicketValidation(t *testing.T) {
	app := newApp(t)
	u := testutil.CreateUser(t, models.RoleStudent)

	status, _ := testutil.Do(t, app, testutil.Request("POST", "/api/support/tickets", map[string]string{
		"title": "Hi", "message": "x", "priority": "URGENT",
	}, testutil.Token(t, u)))
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}
