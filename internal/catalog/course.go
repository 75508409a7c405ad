// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

/*
Package catalog holds the course catalog data model and its typed API client.

The model mirrors the backend wire format (camelCase JSON, nullable
timestamps as pointers). Courses own an ordered sequence of modules, modules
own an ordered sequence of lessons; `order` fields are 1-based and dense
within their parent after every mutation.
*/
package catalog

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// # Statuses & lesson types

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

const (
	LessonVideo    = "video"
	LessonArticle  = "article"
	LessonQuiz     = "quiz"
	LessonDownload = "download"
)

// # Model

// SEO is the search metadata block on a course.
type SEO struct {
	MetaTitle       string `json:"metaTitle"`
	MetaDescription string `json:"metaDescription"`
}

// Lesson is one unit of course content. The interpretation of Content
// depends on Type: an absolute URL for video, body or reference text for
// article and download. Attachments apply to download lessons and are kept
// in append order for display.
type Lesson struct {
	ID          string          `json:"id,omitempty"`
	Title       string          `json:"title"`
	Type        string          `json:"type"`
	Order       int             `json:"order"`
	Content     string          `json:"content"`
	Attachments []string        `json:"attachments"`
	Quiz        json.RawMessage `json:"quiz,omitempty"`
}

// Module groups lessons inside a course.
type Module struct {
	ID      string   `json:"id,omitempty"`
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Order   int      `json:"order"`
	Lessons []Lesson `json:"lessons"`
}

// Course is the editable catalog document.
type Course struct {
	ID              string     `json:"id,omitempty"`
	Slug            string     `json:"slug"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Category        string     `json:"category"`
	Status          string     `json:"status"`
	Visibility      string     `json:"visibility"`
	PriceCents      int        `json:"priceCents"`
	Currency        string     `json:"currency"`
	ThumbnailURL    string     `json:"thumbnailUrl"`
	DurationMinutes int        `json:"durationMinutes"`
	Tags            []string   `json:"tags"`
	Instructors     []string   `json:"instructors"`
	SEO             SEO        `json:"seo"`
	PublishedAt     *time.Time `json:"publishedAt"`
	DeletedAt       *time.Time `json:"deletedAt"`
	CreatedAt       *time.Time `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
	Modules         []Module   `json:"modules"`
}

// DefaultCourse returns a course with server-side creation defaults.
func DefaultCourse() *Course {
	return &Course{
		Status:      StatusDraft,
		Visibility:  "unlisted",
		Currency:    "USD",
		Tags:        []string{},
		Instructors: []string{},
		Modules:     []Module{},
	}
}

// Normalize fills zero-value collections in place so that structural
// comparison between two decoded courses never diverges on nil-vs-empty.
// Call it after every decode from the wire.
func Normalize(c *Course) {
	if c == nil {
		return
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.Instructors == nil {
		c.Instructors = []string{}
	}
	if c.Modules == nil {
		c.Modules = []Module{}
	}
	for mi := range c.Modules {
		if c.Modules[mi].Lessons == nil {
			c.Modules[mi].Lessons = []Lesson{}
		}
		for li := range c.Modules[mi].Lessons {
			if c.Modules[mi].Lessons[li].Attachments == nil {
				c.Modules[mi].Lessons[li].Attachments = []string{}
			}
		}
	}
}

// Clone returns a deep copy of the course. The working copy and the
// baseline copy of an edit session must never share backing arrays.
func (c *Course) Clone() *Course {
	if c == nil {
		return nil
	}
	out := *c
	out.Tags = append([]string(nil), c.Tags...)
	out.Instructors = append([]string(nil), c.Instructors...)
	out.PublishedAt = cloneTime(c.PublishedAt)
	out.DeletedAt = cloneTime(c.DeletedAt)
	out.CreatedAt = cloneTime(c.CreatedAt)
	out.UpdatedAt = cloneTime(c.UpdatedAt)
	out.Modules = make([]Module, len(c.Modules))
	for mi, mod := range c.Modules {
		cloned := mod
		cloned.Lessons = make([]Lesson, len(mod.Lessons))
		for li, lesson := range mod.Lessons {
			l := lesson
			l.Attachments = append([]string(nil), lesson.Attachments...)
			l.Quiz = append(json.RawMessage(nil), lesson.Quiz...)
			cloned.Lessons[li] = l
		}
		out.Modules[mi] = cloned
	}
	Normalize(&out)
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// # Lookup & mutation helpers

// FindLesson locates a lesson by id. Returns nil when absent.
func FindLesson(c *Course, lessonID string) *Lesson {
	if c == nil {
		return nil
	}
	for mi := range c.Modules {
		for li := range c.Modules[mi].Lessons {
			if c.Modules[mi].Lessons[li].ID == lessonID {
				return &c.Modules[mi].Lessons[li]
			}
		}
	}
	return nil
}

// UpdateLesson applies fn to the lesson with the given id, in place.
// It reports whether the lesson was found.
func UpdateLesson(c *Course, lessonID string, fn func(*Lesson)) bool {
	lesson := FindLesson(c, lessonID)
	if lesson == nil {
		return false
	}
	fn(lesson)
	return true
}

// RenumberOrders rewrites every module and lesson order to a dense 1-based
// sequence matching slice position.
func RenumberOrders(c *Course) {
	for mi := range c.Modules {
		c.Modules[mi].Order = mi + 1
		for li := range c.Modules[mi].Lessons {
			c.Modules[mi].Lessons[li].Order = li + 1
		}
	}
}

// # Validation

// VideoErrors returns a lesson-id → message map of video lessons whose
// content is not a syntactically valid absolute URL. An empty map means the
// course passes lesson-level validation.
func VideoErrors(c *Course) map[string]string {
	errors := map[string]string{}
	if c == nil {
		return errors
	}
	for _, mod := range c.Modules {
		for _, lesson := range mod.Lessons {
			if lesson.Type != LessonVideo {
				continue
			}
			content := strings.TrimSpace(lesson.Content)
			if content == "" {
				errors[lesson.ID] = fmt.Sprintf("Video lesson %q needs a video URL", lesson.Title)
				continue
			}
			if !isAbsoluteURL(content) {
				errors[lesson.ID] = fmt.Sprintf("Video lesson %q has an invalid URL", lesson.Title)
			}
		}
	}
	return errors
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.IsAbs() && u.Host != ""
}
