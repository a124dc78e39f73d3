// Package client is the Go SDK for the InnerSpark HTTP API. It mirrors what a browser front end
// does: read course entitlement, stream gated files, post engagement events and poll the
// account state.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"innerspark/client/accountstatus"
	"innerspark/client/securefile"
	"innerspark/logger"

	"github.com/go-resty/resty/v2"
)

// ErrMalformed is returned when a response does not have the expected shape.
var ErrMalformed = errors.New("malformed response")

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	http *resty.Client
	log  *logger.Logger
}

// New creates a client for baseURL (scheme and host, without /api). token may be empty for
// anonymous use.
func New(baseURL, token string) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetHeader("Accept", "application/json")
	c := &Client{http: rc, log: logger.Log.With("component", "client")}
	c.SetToken(token)
	return c
}

// SetToken replaces the bearer token used for later requests.
func (c *Client) SetToken(token string) {
	c.http.SetAuthToken(token)
}

type Course struct {
	ID           uint      `json:"_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Price        int64     `json:"price"`
	MentorName   string    `json:"mentorName"`
	AccessDays   int       `json:"accessDays"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Content struct {
	ID              uint   `json:"_id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	ContentType     string `json:"contentType"`
	FileURL         string `json:"fileUrl,omitempty"`
	PreviewDuration int    `json:"previewDuration"`
	OrderIndex      int    `json:"orderIndex"`
	Body            string `json:"body,omitempty"`
	Completed       bool   `json:"completed"`
}

// CourseDetail is the entitlement-bearing course payload. HasFullAccess stays nil when the
// server omitted it.
type CourseDetail struct {
	Course        Course    `json:"course"`
	Content       []Content `json:"content"`
	HasFullAccess *bool     `json:"hasFullAccess"`
	IsExpired     bool      `json:"isExpired"`
}

// Validate checks the fields a viewer depends on. A missing hasFullAccess is not an error; it
// reads as no full access.
func (d *CourseDetail) Validate() error {
	if d.Course.ID == 0 {
		return fmt.Errorf("%w: course id missing", ErrMalformed)
	}
	if d.Content == nil {
		return fmt.Errorf("%w: content list missing", ErrMalformed)
	}
	return nil
}

// FullAccess reads the flag, treating a missing value as no access.
func (d *CourseDetail) FullAccess() bool {
	return d.HasFullAccess != nil && *d.HasFullAccess
}

// ContentByID finds a module in the detail.
func (d *CourseDetail) ContentByID(id uint) (Content, bool) {
	for _, item := range d.Content {
		if item.ID == id {
			return item, true
		}
	}
	return Content{}, false
}

type Preview struct {
	ID              uint   `json:"_id"`
	FileURL         string `json:"fileUrl"`
	Title           string `json:"title"`
	PreviewDuration int    `json:"previewDuration"`
}

// Event is an engagement event posted to /api/analytics/track.
type Event struct {
	CourseID uint                   `json:"courseID"`
	Type     string                 `json:"type"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

func apiError(resp *resty.Response) error {
	var body struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(resp.Body(), &body)
	return &APIError{StatusCode: resp.StatusCode(), Message: body.Message}
}

// GetCourse fetches the course detail with the caller's entitlement.
func (c *Client) GetCourse(ctx context.Context, courseID uint) (*CourseDetail, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/api/courses/" + strconv.FormatUint(uint64(courseID), 10))
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, apiError(resp)
	}

	var detail CourseDetail
	if err := json.Unmarshal(resp.Body(), &detail); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := detail.Validate(); err != nil {
		return nil, err
	}
	return &detail, nil
}

// GetPreviews lists the preview-eligible videos of a course.
func (c *Client) GetPreviews(ctx context.Context, courseID uint) ([]Preview, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/api/courses/" + strconv.FormatUint(uint64(courseID), 10) + "/preview")
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, apiError(resp)
	}

	var body struct {
		Previews []Preview `json:"previews"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if body.Previews == nil {
		return nil, fmt.Errorf("%w: previews missing", ErrMalformed)
	}
	return body.Previews, nil
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// getEnvelope GETs path and decodes the data member of the standard response envelope.
func (c *Client) getEnvelope(ctx context.Context, path string, out interface{}) error {
	resp, err := c.http.R().SetContext(ctx).Get(path)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		if !resp.IsSuccess() {
			return &APIError{StatusCode: resp.StatusCode()}
		}
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !resp.IsSuccess() || !env.Status {
		return &APIError{StatusCode: resp.StatusCode(), Message: env.Message}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// Catalog lists published courses.
func (c *Client) Catalog(ctx context.Context) ([]Course, error) {
	var courses []Course
	if err := c.getEnvelope(ctx, "/api/courses", &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// CheckStatus returns the signed-in user's account state.
func (c *Client) CheckStatus(ctx context.Context) (accountstatus.Status, error) {
	var status accountstatus.Status
	if err := c.getEnvelope(ctx, "/api/auth/status", &status); err != nil {
		return accountstatus.Status{}, err
	}
	if err := status.Validate(); err != nil {
		return accountstatus.Status{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return status, nil
}

// FetchSecureFile downloads a module file with the caller's token.
func (c *Client) FetchSecureFile(ctx context.Context, moduleID uint) (int, *securefile.Payload, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "*/*").
		Get("/api/secure-files/" + strconv.FormatUint(uint64(moduleID), 10))
	if err != nil {
		return 0, nil, err
	}
	if !resp.IsSuccess() {
		return resp.StatusCode(), nil, nil
	}

	p := &securefile.Payload{
		Data:        resp.Body(),
		ContentType: resp.Header().Get("Content-Type"),
		Access:      resp.Header().Get("X-Access"),
	}
	if raw := resp.Header().Get("X-Preview-Duration"); raw != "" {
		p.PreviewDuration, _ = strconv.Atoi(raw)
	}
	return resp.StatusCode(), p, nil
}

// Track posts an event in the background. Failures are logged and otherwise ignored so callers
// never wait on analytics.
func (c *Client) Track(ctx context.Context, ev Event) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		resp, err := c.http.R().SetContext(ctx).SetBody(ev).Post("/api/analytics/track")
		if err != nil {
			c.log.Debug("track failed", "type", ev.Type, "error", err)
			return
		}
		if !resp.IsSuccess() {
			c.log.Debug("track rejected", "type", ev.Type, "status", resp.StatusCode())
		}
	}()
}
