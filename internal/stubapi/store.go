// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

package stubapi

import (
	"strings"
	"sync"
	"time"

	"github.com/asharvi/admin-core/internal/catalog"
	"github.com/asharvi/admin-core/internal/platform/apperr"
	"github.com/asharvi/admin-core/internal/platform/validate"
	"github.com/asharvi/admin-core/pkg/pagination"
	"github.com/asharvi/admin-core/pkg/pointer"
	"github.com/asharvi/admin-core/pkg/slice"
	"github.com/asharvi/admin-core/pkg/slug"
	"github.com/asharvi/admin-core/pkg/uuidv7"
)

// Store is the in-memory course catalog behind the stub backend.
//
// Courses are held in creation order. Every read hands out deep copies so
// handlers can never mutate stored state through a response value.
type Store struct {
	mu      sync.RWMutex
	courses map[string]*catalog.Course
	order   []string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{courses: map[string]*catalog.Course{}}
}

// Seed inserts courses verbatim, assigning IDs where missing.
func (s *Store) Seed(courses ...*catalog.Course) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, course := range courses {
		stored := course.Clone()
		if stored.ID == "" {
			stored.ID = uuidv7.New()
		}
		for mi := range stored.Modules {
			if stored.Modules[mi].ID == "" {
				stored.Modules[mi].ID = uuidv7.New()
			}
			for li := range stored.Modules[mi].Lessons {
				if stored.Modules[mi].Lessons[li].ID == "" {
					stored.Modules[mi].Lessons[li].ID = uuidv7.New()
				}
			}
		}
		if stored.CreatedAt == nil {
			stored.CreatedAt = pointer.To(time.Now().UTC())
		}
		s.courses[stored.ID] = stored
		s.order = append(s.order, stored.ID)
	}
}

// ListFilter narrows a course listing.
type ListFilter struct {
	Status string
	Search string
	Tags   []string
}

// ListCourses returns one page of matching courses plus the total match count.
func (s *Store) ListCourses(filter ListFilter, params pagination.Params) ([]catalog.Course, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*catalog.Course, 0, len(s.order))
	for _, id := range s.order {
		if course, ok := s.courses[id]; ok {
			all = append(all, course)
		}
	}

	matched := slice.Filter(all, func(course *catalog.Course) bool {
		return matchesFilter(course, filter)
	})

	total := len(matched)
	start := params.Offset()
	if start > total {
		start = total
	}
	end := start + params.PageSize
	if end > total {
		end = total
	}

	page := slice.Map(matched[start:end], func(course *catalog.Course) catalog.Course {
		return *course.Clone()
	})
	return page, total
}

func matchesFilter(course *catalog.Course, filter ListFilter) bool {
	if filter.Status != "" && course.Status != filter.Status {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(course.Title), needle) &&
			!strings.Contains(strings.ToLower(course.Description), needle) {
			return false
		}
	}
	for _, wanted := range filter.Tags {
		found := false
		for _, tag := range course.Tags {
			if strings.EqualFold(tag, wanted) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// GetCourse fetches a course by id.
func (s *Store) GetCourse(id string) (*catalog.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	course, ok := s.courses[id]
	if !ok {
		return nil, apperr.NotFound("Course not found")
	}
	return course.Clone(), nil
}

// CreateCourse inserts a new course with server-side defaults applied.
// validateCourse vets a full course payload before it enters the store.
// Article lessons carry prose in Content, so only video lessons get the
// URL check.
func validateCourse(course *catalog.Course) error {
	v := &validate.Validator{}
	v.Required("title", course.Title).
		MaxLen("title", course.Title, 200).
		MaxLen("description", course.Description, 5000).
		Slug("slug", course.Slug).
		OneOf("status", course.Status, catalog.StatusDraft, catalog.StatusPublished, catalog.StatusArchived).
		HTTPURL("thumbnailUrl", course.ThumbnailURL)
	for _, module := range course.Modules {
		for _, lesson := range module.Lessons {
			if lesson.Type == catalog.LessonVideo {
				v.HTTPURL("content", lesson.Content)
			}
		}
	}
	return v.Err()
}

func (s *Store) CreateCourse(input *catalog.Course) (*catalog.Course, error) {
	stored := catalog.DefaultCourse()
	if input != nil {
		stored = input.Clone()
	}
	catalog.Normalize(stored)
	if stored.Status == "" {
		stored.Status = catalog.StatusDraft
	}
	if stored.Slug == "" {
		stored.Slug = slug.WithRandomSuffix(slug.From(stored.Title))
	}
	if err := validateCourse(stored); err != nil {
		return nil, err
	}
	stored.ID = uuidv7.New()
	now := time.Now().UTC()
	stored.CreatedAt = pointer.To(now)
	stored.UpdatedAt = pointer.To(now)
	catalog.RenumberOrders(stored)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses[stored.ID] = stored
	s.order = append(s.order, stored.ID)
	return stored.Clone(), nil
}

// UpdateCourse replaces the full document, preserving identity and creation time.
func (s *Store) UpdateCourse(id string, input *catalog.Course) (*catalog.Course, error) {
	if input == nil {
		return nil, apperr.Validation("Request body is required")
	}
	if err := validateCourse(input); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.courses[id]
	if !ok {
		return nil, apperr.NotFound("Course not found")
	}

	stored := input.Clone()
	stored.ID = existing.ID
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = pointer.To(time.Now().UTC())
	catalog.RenumberOrders(stored)
	s.courses[id] = stored
	return stored.Clone(), nil
}

// PatchCourse applies a partial update. Unknown fields are ignored.
func (s *Store) PatchCourse(id string, fields map[string]any) (*catalog.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	course, ok := s.courses[id]
	if !ok {
		return nil, apperr.NotFound("Course not found")
	}

	for name, value := range fields {
		switch name {
		case "thumbnailUrl":
			if v, ok := value.(string); ok {
				course.ThumbnailURL = v
			}
		case "title":
			if v, ok := value.(string); ok {
				course.Title = v
			}
		case "description":
			if v, ok := value.(string); ok {
				course.Description = v
			}
		case "category":
			if v, ok := value.(string); ok {
				course.Category = v
			}
		case "visibility":
			if v, ok := value.(string); ok {
				course.Visibility = v
			}
		}
	}
	course.UpdatedAt = pointer.To(time.Now().UTC())
	return course.Clone(), nil
}

// DeleteCourse removes a course. Published courses refuse deletion.
func (s *Store) DeleteCourse(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	course, ok := s.courses[id]
	if !ok {
		return apperr.NotFound("Course not found")
	}
	if course.Status == catalog.StatusPublished {
		return apperr.Conflict("PUBLISHED", "Published courses cannot be deleted")
	}
	delete(s.courses, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// SetStatus transitions a course's lifecycle status.
func (s *Store) SetStatus(id, status string) (*catalog.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	course, ok := s.courses[id]
	if !ok {
		return nil, apperr.NotFound("Course not found")
	}
	course.Status = status
	now := time.Now().UTC()
	course.UpdatedAt = pointer.To(now)
	if status == catalog.StatusPublished {
		course.PublishedAt = pointer.To(now)
	}
	return course.Clone(), nil
}

// # Module operations
//
// Modules and lessons are addressed by their own IDs; the owning course is
// resolved by scanning, which is fine at stub scale.

// CreateModule appends a module to a course.
func (s *Store) CreateModule(courseID string, input *catalog.Module) (*catalog.Module, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	course, ok := s.courses[courseID]
	if !ok {
		return nil, apperr.NotFound("Course not found")
	}

	module := catalog.Module{Lessons: []catalog.Lesson{}}
	if input != nil {
		module = *input
		if module.Lessons == nil {
			module.Lessons = []catalog.Lesson{}
		}
	}
	module.ID = uuidv7.New()
	for i := range module.Lessons {
		module.Lessons[i].ID = uuidv7.New()
	}
	course.Modules = append(course.Modules, module)
	catalog.RenumberOrders(course)
	created := course.Modules[len(course.Modules)-1]
	return &created, nil
}

// UpdateModule replaces a module's title, summary and order metadata.
func (s *Store) UpdateModule(moduleID string, input *catalog.Module) (*catalog.Module, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	course, index := s.findModuleLocked(moduleID)
	if course == nil {
		return nil, apperr.NotFound("Module not found")
	}

	module := &course.Modules[index]
	if input != nil {
		module.Title = input.Title
		module.Summary = input.Summary
	}
	updated := *module
	return &updated, nil
}

// DeleteModule removes a module and its lessons.
func (s *Store) DeleteModule(moduleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	course, index := s.findModuleLocked(moduleID)
	if course == nil {
		return apperr.NotFound("Module not found")
	}
	course.Modules = append(course.Modules[:index], course.Modules[index+1:]...)
	catalog.RenumberOrders(course)
	return nil
}

// ReorderModule moves a module to the given 1-based position.
func (s *Store) ReorderModule(moduleID string, order int) (*catalog.Module, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	course, index := s.findModuleLocked(moduleID)
	if course == nil {
		return nil, apperr.NotFound("Module not found")
	}

	target := clampOrder(order, len(course.Modules))
	module := course.Modules[index]
	course.Modules = append(course.Modules[:index], course.Modules[index+1:]...)
	course.Modules = append(course.Modules[:target], append([]catalog.Module{module}, course.Modules[target:]...)...)
	catalog.RenumberOrders(course)
	moved := course.Modules[target]
	return &moved, nil
}

// # Lesson operations

// CreateLesson appends a lesson to a module.
func (s *Store) CreateLesson(moduleID string, input *catalog.Lesson) (*catalog.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	course, index := s.findModuleLocked(moduleID)
	if course == nil {
		return nil, apperr.NotFound("Module not found")
	}

	lesson := catalog.Lesson{Type: catalog.LessonVideo, Attachments: []string{}}
	if input != nil {
		lesson = *input
		if lesson.Attachments == nil {
			lesson.Attachments = []string{}
		}
	}
	lesson.ID = uuidv7.New()
	course.Modules[index].Lessons = append(course.Modules[index].Lessons, lesson)
	catalog.RenumberOrders(course)
	created := course.Modules[index].Lessons[len(course.Modules[index].Lessons)-1]
	return &created, nil
}

// UpdateLesson replaces a lesson's content.
func (s *Store) UpdateLesson(lessonID string, input *catalog.Lesson) (*catalog.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	course := s.findLessonCourseLocked(lessonID)
	if course == nil {
		return nil, apperr.NotFound("Lesson not found")
	}

	catalog.UpdateLesson(course, lessonID, func(lesson *catalog.Lesson) {
		if input == nil {
			return
		}
		id, order := lesson.ID, lesson.Order
		*lesson = *input
		lesson.ID = id
		lesson.Order = order
		if lesson.Attachments == nil {
			lesson.Attachments = []string{}
		}
	})
	updated := *catalog.FindLesson(course, lessonID)
	return &updated, nil
}

// DeleteLesson removes a lesson.
func (s *Store) DeleteLesson(lessonID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	course := s.findLessonCourseLocked(lessonID)
	if course == nil {
		return apperr.NotFound("Lesson not found")
	}
	for mi := range course.Modules {
		lessons := course.Modules[mi].Lessons
		for li := range lessons {
			if lessons[li].ID == lessonID {
				course.Modules[mi].Lessons = append(lessons[:li], lessons[li+1:]...)
				catalog.RenumberOrders(course)
				return nil
			}
		}
	}
	return apperr.NotFound("Lesson not found")
}

// ReorderLesson moves a lesson to the given 1-based position within its module.
func (s *Store) ReorderLesson(lessonID string, order int) (*catalog.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	course := s.findLessonCourseLocked(lessonID)
	if course == nil {
		return nil, apperr.NotFound("Lesson not found")
	}

	for mi := range course.Modules {
		lessons := course.Modules[mi].Lessons
		for li := range lessons {
			if lessons[li].ID != lessonID {
				continue
			}
			target := clampOrder(order, len(lessons))
			lesson := lessons[li]
			lessons = append(lessons[:li], lessons[li+1:]...)
			lessons = append(lessons[:target], append([]catalog.Lesson{lesson}, lessons[target:]...)...)
			course.Modules[mi].Lessons = lessons
			catalog.RenumberOrders(course)
			moved := course.Modules[mi].Lessons[target]
			return &moved, nil
		}
	}
	return nil, apperr.NotFound("Lesson not found")
}

// # Lookup helpers

func (s *Store) findModuleLocked(moduleID string) (*catalog.Course, int) {
	for _, id := range s.order {
		course, ok := s.courses[id]
		if !ok {
			continue
		}
		for index := range course.Modules {
			if course.Modules[index].ID == moduleID {
				return course, index
			}
		}
	}
	return nil, -1
}

func (s *Store) findLessonCourseLocked(lessonID string) *catalog.Course {
	for _, id := range s.order {
		course, ok := s.courses[id]
		if !ok {
			continue
		}
		if catalog.FindLesson(course, lessonID) != nil {
			return course
		}
	}
	return nil
}

// clampOrder converts a 1-based order into a valid 0-based index.
func clampOrder(order, length int) int {
	index := order - 1
	if index < 0 {
		return 0
	}
	if index >= length {
		return length - 1
	}
	return index
}
