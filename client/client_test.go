package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"innerspark/client"
	"innerspark/client/accountstatus"
	"innerspark/client/securefile"
	"innerspark/database"
	"innerspark/models"
	courseModels "innerspark/models/course"
	"innerspark/routers/analyticsRoutes"
	"innerspark/routers/authRoutes"
	"innerspark/routers/courseRoutes"
	"innerspark/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	url     string
	staff   *models.User
	student *models.User
	course  *courseModels.Course
	video   *courseModels.Module
	pdf     *courseModels.Module
}

func setup(t *testing.T) fixture {
	testutil.Setup(t)

	app := fiber.New()
	api := app.Group("/api")
	authRoutes.SetupAuthRoutes(api)
	courseRoutes.SetupCourseRoutes(api)
	analyticsRoutes.SetupAnalyticsRoutes(api)
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)

	staff := testutil.CreateUser(t, models.RoleStaff)
	course := testutil.CreateCourse(t, staff, 150000, 30)
	return fixture{
		url:     srv.URL,
		staff:   staff,
		student: testutil.CreateUser(t, models.RoleStudent),
		course:  course,
		video:   testutil.CreateModule(t, course, courseModels.ContentVideo, 30, []byte("fake-mp4-bytes")),
		pdf:     testutil.CreateModule(t, course, courseModels.ContentPDF, 0, []byte("%PDF-1.4 fake")),
	}
}

func TestGetCourseEntitlement(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	student := client.New(f.url, testutil.Token(t, f.student))
	detail, err := student.GetCourse(ctx, f.course.ID)
	require.NoError(t, err)
	assert.False(t, detail.FullAccess())
	assert.Equal(t, f.course.Title, detail.Course.Title)
	require.Len(t, detail.Content, 2)

	testutil.Enroll(t, f.student, f.course, nil)
	detail, err = student.GetCourse(ctx, f.course.ID)
	require.NoError(t, err)
	assert.True(t, detail.FullAccess())

	_, err = student.GetCourse(ctx, 999999)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	_, err = client.New(f.url, "").GetCourse(ctx, f.course.ID)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestGetPreviewsAndCatalog(t *testing.T) {
	f := setup(t)
	c := client.New(f.url, "")

	previews, err := c.GetPreviews(context.Background(), f.course.ID)
	require.NoError(t, err)
	require.Len(t, previews, 1)
	assert.Equal(t, f.video.ID, previews[0].ID)
	assert.Equal(t, 30, previews[0].PreviewDuration)

	courses, err := c.Catalog(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, f.course.ID, courses[0].ID)
}

func TestSecureFileThroughClient(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	reg := securefile.NewRegistry()

	student := client.New(f.url, testutil.Token(t, f.student))
	handle, release, err := securefile.Load(ctx, student, reg, f.video.ID)
	require.NoError(t, err)
	p, ok := reg.Resolve(handle)
	require.True(t, ok)
	assert.Equal(t, "preview", p.Access)
	assert.Equal(t, 30, p.PreviewDuration)
	assert.Equal(t, []byte("fake-mp4-bytes"), p.Data)
	release()

	_, release, err = securefile.Load(ctx, student, reg, f.pdf.ID)
	assert.ErrorIs(t, err, securefile.ErrNotAuthorized)
	assert.Nil(t, release)

	_, _, err = securefile.Load(ctx, client.New(f.url, ""), reg, f.pdf.ID)
	assert.ErrorIs(t, err, securefile.ErrLoadFailed)
	assert.NotErrorIs(t, err, securefile.ErrNotAuthorized)

	testutil.Enroll(t, f.student, f.course, nil)
	handle, release, err = securefile.Load(ctx, student, reg, f.pdf.ID)
	require.NoError(t, err)
	p, _ = reg.Resolve(handle)
	assert.Equal(t, "full", p.Access)
	release()
	assert.Zero(t, reg.Len())
	assert.Equal(t, 2, reg.Revocations())
}

func TestCheckStatus(t *testing.T) {
	f := setup(t)
	c := client.New(f.url, testutil.Token(t, f.student))

	status, err := c.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, accountstatus.Active, status.State)

	_, err = client.New(f.url, "").CheckStatus(context.Background())
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestTrackIsFireAndForget(t *testing.T) {
	f := setup(t)
	c := client.New(f.url, testutil.Token(t, f.student))

	c.Track(context.Background(), client.Event{
		CourseID: f.course.ID,
		Type:     models.EventPreviewCompleted,
		Metadata: map[string]interface{}{"contentId": f.video.ID},
	})
	require.Eventually(t, func() bool {
		var n int64
		database.Database.Db.Model(&models.AnalyticsEvent{}).
			Where("type = ?", models.EventPreviewCompleted).Count(&n)
		return n == 1
	}, 2*time.Second, 10*time.Millisecond)

	dead := client.New("http://127.0.0.1:1", "")
	assert.NotPanics(t, func() { dead.Track(context.Background(), client.Event{CourseID: 1, Type: "x"}) })
}

func serveJSON(t *testing.T, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestMalformedCourseDetail(t *testing.T) {
	for _, body := range []string{
		`{"content":[],"hasFullAccess":true}`,
		`{"course":{"_id":3},"hasFullAccess":true}`,
		`not json`,
	} {
		_, err := client.New(serveJSON(t, body), "").GetCourse(context.Background(), 3)
		assert.True(t, errors.Is(err, client.ErrMalformed), body)
	}
}

func TestMissingAccessFlagReadsAsNoAccess(t *testing.T) {
	url := serveJSON(t, `{"course":{"_id":3},"content":[{"_id":1,"contentType":"video","previewDuration":20}]}`)

	detail, err := client.New(url, "").GetCourse(context.Background(), 3)
	require.NoError(t, err)
	assert.Nil(t, detail.HasFullAccess)
	assert.False(t, detail.FullAccess())
}
