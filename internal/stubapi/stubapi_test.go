// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

package stubapi_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asharvi/admin-core/internal/api"
	"github.com/asharvi/admin-core/internal/catalog"
	"github.com/asharvi/admin-core/internal/platform/apperr"
	"github.com/asharvi/admin-core/internal/platform/config"
	"github.com/asharvi/admin-core/internal/platform/transport"
	"github.com/asharvi/admin-core/internal/stubapi"
	"github.com/asharvi/admin-core/internal/upload"
	"github.com/asharvi/admin-core/pkg/slug"
)

// tokenBox is a mutex-guarded access token shared between the client's
// token source and its session hook.
type tokenBox struct {
	mu    sync.Mutex
	token string
}

func (b *tokenBox) get() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token
}

func (b *tokenBox) set(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = token
}

type harness struct {
	server  *stubapi.Server
	web     *httptest.Server
	tokens  *tokenBox
	client  *api.Client
	catalog *catalog.Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	log := slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelError}))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	server := stubapi.NewServer(ctx, stubapi.Options{Log: log})
	require.NoError(t, server.SeedDefaults())

	web := httptest.NewServer(server.Handler())
	t.Cleanup(web.Close)

	tokens := &tokenBox{}
	appConfig, err := config.Load()
	require.NoError(t, err)

	client := api.New(api.Config{
		BaseURL:     web.URL,
		Environment: config.Staging,
		AuthPaths:   appConfig.AuthPaths(),
		Token:       tokens.get,
		OnSession:   tokens.set,
	}, transport.New(log), log)

	return &harness{
		server:  server,
		web:     web,
		tokens:  tokens,
		client:  client,
		catalog: catalog.NewClient(client),
	}
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	_, err := h.client.Login(context.Background(), stubapi.DefaultAdminEmail, stubapi.DefaultAdminPassword)
	require.NoError(t, err)
	require.NotEmpty(t, h.tokens.get(), "login must hand the access token to the session hook")
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func TestLoginAndIdentity(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	identity, err := h.client.Me(context.Background())
	require.NoError(t, err)
	assert.True(t, identity.IsAdmin())
	assert.NotEmpty(t, identity.UserID)
}

func TestWrongPasswordRejected(t *testing.T) {
	h := newHarness(t)
	_, err := h.client.Login(context.Background(), stubapi.DefaultAdminEmail, "nope")
	require.Error(t, err)
	assert.Equal(t, 401, apperr.StatusOf(err))
}

func TestUnauthenticatedAdminAccessRejected(t *testing.T) {
	h := newHarness(t)
	_, err := h.catalog.ListCourses(context.Background(), catalog.ListOptions{})
	require.Error(t, err)
	assert.Equal(t, 401, apperr.StatusOf(err))
}

func TestCourseLifecycleEndToEnd(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	ctx := context.Background()

	// List the seeded catalog.
	list, err := h.catalog.ListCourses(ctx, catalog.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)

	// Filter by status.
	published, err := h.catalog.ListCourses(ctx, catalog.ListOptions{Status: catalog.StatusPublished})
	require.NoError(t, err)
	require.Equal(t, 1, published.Total)
	assert.Equal(t, "intro-to-backend-development", published.Items[0].Slug)

	// Create, update, publish, archive.
	created, err := h.catalog.CreateCourse(ctx, &catalog.Course{
		Title: "Observability 101",
		Slug:  slug.From("Observability 101"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, catalog.StatusDraft, created.Status)

	created.Description = "Metrics, logs and traces."
	updated, err := h.catalog.UpdateCourse(ctx, created.ID, created)
	require.NoError(t, err)
	assert.Equal(t, "Metrics, logs and traces.", updated.Description)

	live, err := h.catalog.PublishCourse(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusPublished, live.Status)
	require.NotNil(t, live.PublishedAt)

	// Published courses refuse deletion.
	err = h.catalog.DeleteCourse(ctx, created.ID)
	require.Error(t, err)
	assert.Equal(t, 409, apperr.StatusOf(err))
	assert.Equal(t, "PUBLISHED", apperr.AsAPIError(err).Code)

	// Archive, then delete succeeds.
	archived, err := h.catalog.ArchiveCourse(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusArchived, archived.Status)
	require.NoError(t, h.catalog.DeleteCourse(ctx, created.ID))
}

func TestModuleAndLessonOperations(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	ctx := context.Background()

	list, err := h.catalog.ListCourses(ctx, catalog.ListOptions{Status: catalog.StatusDraft})
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	courseID := list.Items[0].ID

	module, err := h.catalog.CreateModule(ctx, courseID, &catalog.Module{Title: "Streaming"})
	require.NoError(t, err)
	require.NotEmpty(t, module.ID)

	lesson, err := h.catalog.CreateLesson(ctx, module.ID, &catalog.Lesson{
		Title: "Windowing", Type: catalog.LessonVideo, Content: "https://cdn.asharvi.dev/v/windowing.mp4",
	})
	require.NoError(t, err)
	require.NotEmpty(t, lesson.ID)
	assert.Equal(t, 1, lesson.Order)

	moved, err := h.catalog.ReorderModule(ctx, module.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, moved.Order)

	require.NoError(t, h.catalog.DeleteLesson(ctx, lesson.ID))
	require.NoError(t, h.catalog.DeleteModule(ctx, module.ID))
}

func TestExpiredTokenRefreshesAndReplays(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	ctx := context.Background()

	// Invalidate the access token locally; the refresh cookie from login is
	// still in the transport's jar, so the 401 triggers a silent refresh
	// and a single replay.
	h.tokens.set("expired-garbage")

	list, err := h.catalog.ListCourses(ctx, catalog.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)
	assert.NotEqual(t, "expired-garbage", h.tokens.get(), "refresh must rotate the stored access token")
}

func TestForcedThrottleSurfacesRateLimit(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	ctx := context.Background()

	h.server.Throttle(1)
	_, err := h.catalog.ListCourses(ctx, catalog.ListOptions{})
	require.Error(t, err)
	assert.True(t, apperr.IsRateLimit(err))

	retryAfter, ok := apperr.RetryAfterOf(err)
	require.True(t, ok)
	assert.Equal(t, 15*time.Second, retryAfter)

	// The throttle window has passed; the next call goes through.
	_, err = h.catalog.ListCourses(ctx, catalog.ListOptions{})
	require.NoError(t, err)
}

func TestThumbnailUploadRoundTrip(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	ctx := context.Background()

	log := slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelError}))
	uploader := upload.New(upload.Config{
		BaseURL:        h.web.URL,
		Environment:    config.Staging,
		ThumbnailPath:  "/admin/uploads/thumbnail",
		AttachmentPath: "/admin/uploads/attachment",
		Token:          h.tokens.get,
		Refresher:      h.client,
	}, log)

	content := []byte("fake-png-bytes")
	var lastProgress int
	result, err := uploader.UploadThumbnail(ctx, upload.File{Name: "cover.png", Content: content}, func(percent int) {
		lastProgress = percent
	})
	require.NoError(t, err)
	assert.Equal(t, 100, lastProgress)

	stored, ok := h.server.Uploads().Stored(result.URL)
	require.True(t, ok, "upload must be retrievable by its returned URL")
	assert.Equal(t, content, stored)
}

func TestUploadRejectsDisallowedExtension(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	log := slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelError}))
	uploader := upload.New(upload.Config{
		BaseURL:       h.web.URL,
		Environment:   config.Staging,
		ThumbnailPath: "/admin/uploads/thumbnail",
		Token:         h.tokens.get,
		Refresher:     h.client,
	}, log)

	_, err := uploader.UploadThumbnail(context.Background(), upload.File{Name: "cover.exe", Content: []byte("x")}, nil)
	require.Error(t, err)
}

func TestHealthEndpoints(t *testing.T) {
	h := newHarness(t)

	resp, err := h.web.Client().Get(h.web.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)

	var body struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Data["status"])
}
