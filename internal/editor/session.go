// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

/*
Package editor owns the in-editor course document and its synchronization
with the backend.

A Session holds two copies of the course for its whole lifetime: the
working copy (what the admin is editing) and the baseline copy (the last
server-confirmed snapshot). Structural comparison of the two drives dirty
detection; the baseline advances on every successful persist.

Persistence is optimistic and debounced: local mutations apply immediately,
and a trailing debounce collapses bursts of edits into a single save.
Upload side effects splice into the working copy the moment they complete
and are deliberately never rolled back when their direct persist fails -
visible uploaded content must not revert under the admin's cursor.
*/
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/asharvi/admin-core/internal/catalog"
	"github.com/asharvi/admin-core/internal/diagnostics"
	"github.com/asharvi/admin-core/internal/platform/apperr"
	"github.com/asharvi/admin-core/internal/platform/config"
	"github.com/asharvi/admin-core/internal/upload"
	"github.com/asharvi/admin-core/pkg/slug"
)

// DefaultDebounce is the autosave window: the persist fires this long
// after the last mutation in a burst.
const DefaultDebounce = 800 * time.Millisecond

// ConfirmYes is the confirmation value for destructive actions in
// non-production environments. Production deletes require the exact slug.
const ConfirmYes = "yes"

// State is the edit session's lifecycle state.
type State string

const (
	StateLoading State = "loading"
	StateClean   State = "clean"
	StateDirty   State = "dirty"
	StateSaving  State = "saving"
	StateError   State = "error"
)

// Config wires a [Session].
type Config struct {
	CourseID    string
	Environment config.Environment
	Catalog     *catalog.Client
	Uploader    *upload.Uploader
	Sink        *diagnostics.Sink
	// Debounce overrides [DefaultDebounce] when positive.
	Debounce time.Duration
	Log      *slog.Logger
}

// Session is one course edit session. All methods are safe for concurrent
// use; in-flight saves are never cancelled by newer edits.
type Session struct {
	cfg Config

	mu          sync.Mutex
	working     *catalog.Course
	baseline    *catalog.Course
	state       State
	dirty       bool
	videoErrors map[string]string

	// editVersion increments on every local mutation; saves capture it at
	// dispatch so stale responses can be detected and merged conservatively.
	editVersion uint64

	debounce *time.Timer

	thumbnailUpload   upload.Record
	attachmentUploads map[string][]upload.Record
}

// NewSession constructs a session. Call [Session.Load] before editing.
func NewSession(cfg Config) *Session {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	return &Session{
		cfg:               cfg,
		state:             StateLoading,
		videoErrors:       map[string]string{},
		attachmentUploads: map[string][]upload.Record{},
	}
}

// # Loading

// Load fetches the course and resets the session around it: working copy,
// baseline, validation and upload tracking all start fresh.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	s.state = StateLoading
	s.cancelDebounceLocked()
	s.mu.Unlock()

	course, err := s.cfg.Catalog.GetCourse(ctx, s.cfg.CourseID)
	if err != nil {
		s.mu.Lock()
		s.state = StateError
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.working = course.Clone()
	s.baseline = course.Clone()
	s.dirty = false
	s.state = StateClean
	s.videoErrors = catalog.VideoErrors(s.working)
	s.thumbnailUpload = upload.Record{}
	s.attachmentUploads = map[string][]upload.Record{}
	return nil
}

// # Local mutation

// Apply runs fn against the working copy, then recomputes dirty state and
// validation and (when the result is dirty and valid) schedules the
// debounced autosave. Repeated calls within the debounce window collapse
// into one trailing persist.
func (s *Session) Apply(fn func(*catalog.Course)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.working == nil {
		return
	}
	fn(s.working)
	s.editVersion++
	s.refreshDirtyLocked()
	s.scheduleAutosaveLocked()
}

// refreshDirtyLocked recomputes validation and the dirty flag from a deep
// structural comparison of working copy versus baseline.
func (s *Session) refreshDirtyLocked() {
	s.videoErrors = catalog.VideoErrors(s.working)
	s.dirty = s.baseline == nil || !reflect.DeepEqual(s.working, s.baseline)
	switch {
	case s.state == StateSaving || s.state == StateLoading:
		// A state transition lands when the in-flight operation settles.
	case s.dirty:
		s.state = StateDirty
	default:
		s.state = StateClean
	}
}

func (s *Session) validLocked() bool {
	return slug.IsValid(s.working.Slug) && len(s.videoErrors) == 0
}

func (s *Session) scheduleAutosaveLocked() {
	s.cancelDebounceLocked()
	if !s.dirty || !s.validLocked() {
		return
	}
	s.debounce = time.AfterFunc(s.cfg.Debounce, func() {
		// Autosave runs detached from any caller; a failure lands in the
		// session state and the diagnostics trail.
		if err := s.Save(context.Background()); err != nil {
			s.cfg.Log.Debug("autosave_failed", slog.String("course", s.cfg.CourseID), slog.Any("error", err))
		}
	})
}

func (s *Session) cancelDebounceLocked() {
	if s.debounce != nil {
		s.debounce.Stop()
		s.debounce = nil
	}
}

// # Persistence

// Save persists the working copy immediately, bypassing the debounce.
//
// Validation failures (invalid slug, broken video URLs) abort locally with
// a [*apperr.ValidationError] and no network call. A clean session is a
// no-op success.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	s.cancelDebounceLocked()
	if s.working == nil || !s.dirty {
		s.mu.Unlock()
		return nil
	}
	if len(s.videoErrors) > 0 {
		s.state = StateError
		s.mu.Unlock()
		return apperr.Validation("Please fix video URL validation errors before saving.")
	}
	if !slug.IsValid(s.working.Slug) {
		s.state = StateError
		s.mu.Unlock()
		return apperr.Validation(fmt.Sprintf("Slug %q is invalid.", s.working.Slug))
	}

	candidate := s.working.Clone()
	version := s.editVersion
	s.state = StateSaving
	s.mu.Unlock()

	saved, err := s.cfg.Catalog.UpdateCourse(ctx, s.cfg.CourseID, candidate)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateError
		return err
	}

	if version == s.editVersion {
		// No edits raced the save: the server copy is the truth.
		s.working = saved.Clone()
		s.baseline = saved.Clone()
		s.dirty = false
		s.state = StateClean
		s.videoErrors = catalog.VideoErrors(s.working)
		return nil
	}

	// Edits landed while the save was in flight. The response is stale
	// relative to the working copy, so it only advances the baseline; the
	// newer local edits stay ahead and remain dirty.
	s.baseline = saved.Clone()
	s.state = StateDirty
	s.refreshDirtyLocked()
	s.scheduleAutosaveLocked()
	return nil
}

// # Publish / Archive / Delete

// Publish forces a save of any dirty state, then issues the publish action
// and reloads the document. A failed save aborts the publish.
func (s *Session) Publish(ctx context.Context) error {
	if err := s.Save(ctx); err != nil {
		return err
	}
	if _, err := s.cfg.Catalog.PublishCourse(ctx, s.cfg.CourseID); err != nil {
		return err
	}
	s.logEvent("COURSE_PUBLISH", map[string]any{"id": s.cfg.CourseID})
	return s.Load(ctx)
}

// Archive mirrors [Session.Publish] for the archive action.
func (s *Session) Archive(ctx context.Context) error {
	if err := s.Save(ctx); err != nil {
		return err
	}
	if _, err := s.cfg.Catalog.ArchiveCourse(ctx, s.cfg.CourseID); err != nil {
		return err
	}
	s.logEvent("COURSE_ARCHIVE", map[string]any{"id": s.cfg.CourseID})
	return s.Load(ctx)
}

// Delete removes the course after confirmation.
//
// In production the confirmation must exactly match the course slug; a
// mismatch aborts locally and no delete request is sent. Elsewhere the
// [ConfirmYes] value suffices. A 409 is remapped to a message directing
// the admin to archive instead.
func (s *Session) Delete(ctx context.Context, confirmation string) error {
	s.mu.Lock()
	currentSlug := ""
	if s.working != nil {
		currentSlug = s.working.Slug
	}
	s.mu.Unlock()

	if s.cfg.Environment == config.Production {
		if confirmation != currentSlug {
			return apperr.Validation("Deletion cancelled. Confirmation text did not match slug.")
		}
	} else if confirmation != ConfirmYes {
		return apperr.Validation("Deletion cancelled.")
	}

	if err := s.cfg.Catalog.DeleteCourse(ctx, s.cfg.CourseID); err != nil {
		if apperr.StatusOf(err) == http.StatusConflict {
			return apperr.Validation("Cannot delete a published course. Archive it instead.")
		}
		return err
	}
	s.logEvent("COURSE_DELETE", map[string]any{"id": s.cfg.CourseID})
	return nil
}

// # Upload side effects
//
// Uploads mutate the working copy the moment they succeed, independent of
// the autosave debounce, and then attempt a direct persist of just that
// change. A failed persist does NOT roll the optimistic change back: the
// working copy stays ahead of the server until the next successful save.

// AttachThumbnail uploads file as the course thumbnail and splices the
// resulting URL into the working copy.
func (s *Session) AttachThumbnail(ctx context.Context, file upload.File, onProgress upload.Progress) error {
	if err := upload.CheckFile(file.Name, int64(len(file.Content)), upload.KindThumbnail); err != nil {
		return err
	}
	s.setThumbnailRecord(upload.Record{Name: file.Name, Status: upload.StatusUploading})
	s.logEvent("UPLOAD_START", map[string]any{"type": "thumbnail", "name": file.Name})

	result, err := s.cfg.Uploader.UploadThumbnail(ctx, file, func(percent int) {
		s.updateThumbnailRecord(func(r *upload.Record) { r.Progress = percent })
		if onProgress != nil {
			onProgress(percent)
		}
	})
	if err != nil {
		s.setThumbnailRecord(upload.Record{Name: file.Name, Status: upload.StatusError, Error: err.Error()})
		s.logEvent("UPLOAD_FAIL", map[string]any{"type": "thumbnail", "status": apperr.StatusOf(err)})
		return err
	}

	s.setThumbnailRecord(upload.Record{Name: file.Name, Status: upload.StatusSuccess, Progress: 100})
	s.logEvent("UPLOAD_SUCCESS", map[string]any{"type": "thumbnail"})
	return s.setThumbnail(ctx, result.URL)
}

// RemoveThumbnail clears the thumbnail optimistically and persists.
func (s *Session) RemoveThumbnail(ctx context.Context) error {
	return s.setThumbnail(ctx, "")
}

func (s *Session) setThumbnail(ctx context.Context, url string) error {
	s.mu.Lock()
	if s.working == nil {
		s.mu.Unlock()
		return apperr.Validation("No course loaded.")
	}
	s.working.ThumbnailURL = url
	s.editVersion++
	s.refreshDirtyLocked()
	s.mu.Unlock()

	// Direct persist of just this field, outside the debounce.
	if _, err := s.cfg.Catalog.PatchCourse(ctx, s.cfg.CourseID, map[string]any{"thumbnailUrl": url}); err != nil {
		// Optimistic change stays; the error is the caller's to surface.
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.baseline != nil {
		s.baseline.ThumbnailURL = url
	}
	s.refreshDirtyLocked()
	return nil
}

// AddAttachment uploads file and appends the resulting URL to the lesson's
// attachment list.
func (s *Session) AddAttachment(ctx context.Context, lessonID string, file upload.File, onProgress upload.Progress) error {
	if err := upload.CheckFile(file.Name, int64(len(file.Content)), upload.KindAttachment); err != nil {
		return err
	}

	recordID := fmt.Sprintf("%s-%s", lessonID, uuid.NewString())
	s.appendAttachmentRecord(lessonID, upload.Record{
		ID: recordID, Name: file.Name, Status: upload.StatusUploading,
	})
	s.logEvent("UPLOAD_START", map[string]any{"type": "attachment", "name": file.Name})

	result, err := s.cfg.Uploader.UploadAttachment(ctx, file, func(percent int) {
		s.updateAttachmentRecord(lessonID, recordID, func(r *upload.Record) { r.Progress = percent })
		if onProgress != nil {
			onProgress(percent)
		}
	})
	if err != nil {
		s.updateAttachmentRecord(lessonID, recordID, func(r *upload.Record) {
			r.Status = upload.StatusError
			r.Error = err.Error()
			r.Progress = 0
		})
		s.logEvent("UPLOAD_FAIL", map[string]any{"type": "attachment", "name": file.Name, "status": apperr.StatusOf(err)})
		return err
	}

	s.updateAttachmentRecord(lessonID, recordID, func(r *upload.Record) {
		r.Status = upload.StatusSuccess
		r.Progress = 100
	})
	s.logEvent("UPLOAD_SUCCESS", map[string]any{"type": "attachment", "name": file.Name})

	return s.mutateLessonAttachments(ctx, lessonID, func(lesson *catalog.Lesson) {
		lesson.Attachments = append(lesson.Attachments, result.URL)
	})
}

// RemoveAttachment drops url from the lesson optimistically and persists.
func (s *Session) RemoveAttachment(ctx context.Context, lessonID, url string) error {
	return s.mutateLessonAttachments(ctx, lessonID, func(lesson *catalog.Lesson) {
		kept := lesson.Attachments[:0]
		for _, existing := range lesson.Attachments {
			if existing != url {
				kept = append(kept, existing)
			}
		}
		lesson.Attachments = kept
	})
}

func (s *Session) mutateLessonAttachments(ctx context.Context, lessonID string, fn func(*catalog.Lesson)) error {
	s.mu.Lock()
	if s.working == nil {
		s.mu.Unlock()
		return apperr.Validation("No course loaded.")
	}
	if !catalog.UpdateLesson(s.working, lessonID, fn) {
		s.mu.Unlock()
		return apperr.Validation("Lesson not found.")
	}
	s.editVersion++
	s.refreshDirtyLocked()
	updated := catalog.FindLesson(s.working, lessonID)
	payload := *updated
	payload.Attachments = append([]string{}, updated.Attachments...)
	s.mu.Unlock()

	if _, err := s.cfg.Catalog.UpdateLesson(ctx, lessonID, &payload); err != nil {
		// Never roll back: the attachment stays visible locally.
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.baseline != nil {
		catalog.UpdateLesson(s.baseline, lessonID, func(lesson *catalog.Lesson) {
			// Non-nil empty keeps the deep comparison against the working
			// copy honest; Normalize guarantees the same shape there.
			lesson.Attachments = append([]string{}, payload.Attachments...)
		})
	}
	s.refreshDirtyLocked()
	return nil
}

// # Replication

// ReplicateFrom merges a replicated copy of source over the working copy,
// keeping the current course's identity. The session becomes dirty; the
// next save persists the imported content.
func (s *Session) ReplicateFrom(source *catalog.Course) {
	transformed := catalog.Replicate(source)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.working == nil {
		return
	}
	transformed.ID = s.working.ID
	s.working = transformed
	s.editVersion++
	s.refreshDirtyLocked()
	s.scheduleAutosaveLocked()

	s.logEventLocked("COURSE_REPLICATE", map[string]any{
		"sourceId": source.ID,
		"targetId": s.working.ID,
	})
}

// # Accessors

// State returns the session lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dirty reports whether the working copy differs from the baseline. The
// hosting UI uses this to gate navigation away from unsaved changes.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Working returns a deep copy of the working document.
func (s *Session) Working() *catalog.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.working.Clone()
}

// Baseline returns a deep copy of the last server-confirmed snapshot.
func (s *Session) Baseline() *catalog.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseline.Clone()
}

// ValidationErrors returns the current lesson-id → message map.
func (s *Session) ValidationErrors() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.videoErrors))
	for k, v := range s.videoErrors {
		out[k] = v
	}
	return out
}

// ThumbnailUpload returns the current thumbnail upload record.
func (s *Session) ThumbnailUpload() upload.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.thumbnailUpload
}

// AttachmentUploads returns the upload records for one lesson.
func (s *Session) AttachmentUploads(lessonID string) []upload.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]upload.Record(nil), s.attachmentUploads[lessonID]...)
}

// Close cancels any pending autosave timer. In-flight saves complete.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelDebounceLocked()
}

// # Internals

func (s *Session) setThumbnailRecord(r upload.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.thumbnailUpload = r
}

func (s *Session) updateThumbnailRecord(fn func(*upload.Record)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.thumbnailUpload)
}

func (s *Session) appendAttachmentRecord(lessonID string, r upload.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attachmentUploads[lessonID] = append(s.attachmentUploads[lessonID], r)
}

func (s *Session) updateAttachmentRecord(lessonID, recordID string, fn func(*upload.Record)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.attachmentUploads[lessonID]
	for i := range records {
		if records[i].ID == recordID {
			fn(&records[i])
			return
		}
	}
}

func (s *Session) logEvent(eventType string, payload map[string]any) {
	if s.cfg.Sink != nil {
		s.cfg.Sink.Log(eventType, payload)
	}
}

// logEventLocked exists for call sites already holding the mutex; the sink
// has its own lock, so the call itself is safe either way.
func (s *Session) logEventLocked(eventType string, payload map[string]any) {
	if s.cfg.Sink != nil {
		s.cfg.Sink.Log(eventType, payload)
	}
}
