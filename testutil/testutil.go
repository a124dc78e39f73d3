// Package testutil wires an in-memory database and the package-level singletons for handler tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"innerspark/config"
	"innerspark/database"
	"innerspark/middleware"
	"innerspark/models"
	courseModels "innerspark/models/course"
	"innerspark/payment"
	"innerspark/revocation"
	"innerspark/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// ServerKey is the gateway key configured by Setup
const ServerKey = "SB-Mid-server-test"

// Password is the plain password of every seeded user
const Password = "password123"

// Setup points config, database, storage and revocation at fresh in-memory instances.
func Setup(t *testing.T) *gorm.DB {
	t.Helper()

	config.AppConfig = &config.Config{
		AppEnv:            "test",
		SaltRound:         bcrypt.MinCost,
		DBDriver:          "sqlite",
		JWTKey:            "test-secret",
		JWTTTLHours:       1,
		StorageDriver:     "local",
		StorageDir:        t.TempDir(),
		MidtransServerKey: ServerKey,
		CertificateIssuer: "InnerSpark Test Academy",
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormLogger.Default.LogMode(gormLogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	database.Database = database.DbInstance{Db: db}

	store, err := storage.NewLocalStore(config.AppConfig.StorageDir)
	require.NoError(t, err)
	storage.Default = store
	revocation.Default = revocation.NewMemoryStore()
	payment.Default = nil

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// CreateUser stores an active, verified user with the given role.
func CreateUser(t *testing.T, role string) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{
		Name:            strings.ToLower(role) + " user",
		Email:           strings.ToLower(role) + "-" + uuid.NewString()[:8] + "@example.com",
		Role:            role,
		Password:        string(hashed),
		IsActive:        true,
		IsEmailVerified: true,
	}
	require.NoError(t, database.Database.Db.Create(u).Error)
	return u
}

// Token signs a JWT for u
func Token(t *testing.T, u *models.User) string {
	t.Helper()
	tok, err := middleware.GenerateJWT(u)
	require.NoError(t, err)
	return tok
}

// CreateCourse stores a published course owned by staff.
func CreateCourse(t *testing.T, staff *models.User, price int64, accessDays int) *courseModels.Course {
	t.Helper()
	c := &courseModels.Course{
		Title:       "Mindful Leadership " + uuid.NewString()[:6],
		Description: "Lead with presence",
		Category:    "leadership",
		Price:       price,
		MentorName:  "Ayu",
		StaffID:     staff.ID,
		AccessDays:  accessDays,
		Status:      courseModels.CoursePublished,
	}
	require.NoError(t, database.Database.Db.Create(c).Error)
	return c
}

// CreateModule stores an approved module. When data is non-nil it is saved as the module file.
func CreateModule(t *testing.T, course *courseModels.Course, contentType string, previewSeconds int, data []byte) *courseModels.Module {
	t.Helper()
	m := &courseModels.Module{
		CourseID:        course.ID,
		Title:           contentType + " lesson",
		ContentType:     contentType,
		PreviewDuration: previewSeconds,
		ApprovalStatus:  courseModels.ApprovalApproved,
		CreatedBy:       course.StaffID,
	}
	if contentType == courseModels.ContentRich {
		m.Body = "# Welcome\n\nBreathe **slowly**."
	}
	if data != nil {
		mime := "video/mp4"
		if contentType == courseModels.ContentPDF {
			mime = "application/pdf"
		}
		m.FileKey = fmt.Sprintf("modules/%d/%s", course.ID, uuid.NewString())
		require.NoError(t, storage.Default.Save(context.Background(), m.FileKey, bytes.NewReader(data), mime))
		meta, _ := json.Marshal(courseModels.FileMeta{OriginalName: "lesson", Size: int64(len(data)), MimeType: mime})
		m.FileMetadata = datatypes.JSON(meta)
	}
	require.NoError(t, database.Database.Db.Create(m).Error)
	return m
}

// Enroll stores an enrollment; a nil expiresAt means lifetime access.
func Enroll(t *testing.T, u *models.User, course *courseModels.Course, expiresAt *time.Time) *courseModels.Enrollment {
	t.Helper()
	e := &courseModels.Enrollment{
		UserID:    u.ID,
		CourseID:  course.ID,
		Status:    courseModels.EnrollmentActive,
		ExpiresAt: expiresAt,
	}
	require.NoError(t, database.Database.Db.Create(e).Error)
	return e
}

// Request builds a request with an optional JSON body and bearer token.
func Request(method, target string, body interface{}, token string) *http.Request {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// Do runs req against app and returns the status code and body.
func Do(t *testing.T, app *fiber.App, req *http.Request) (int, []byte) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

// Envelope is the standard JSON response wrapper
type Envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// DecodeEnvelope unmarshals body and, when out is non-nil, its data field.
func DecodeEnvelope(t *testing.T, body []byte, out interface{}) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out), string(env.Data))
	}
	return env
}
