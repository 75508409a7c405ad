// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asharvi/admin-core/internal/catalog"
)

func sampleCourse() *catalog.Course {
	c := &catalog.Course{
		ID:     "c-1",
		Slug:   "intro-to-go",
		Title:  "Intro to Go",
		Status: catalog.StatusPublished,
		Modules: []catalog.Module{
			{
				ID: "m-1", Title: "Basics", Order: 1,
				Lessons: []catalog.Lesson{
					{ID: "l-1", Title: "Hello", Type: catalog.LessonVideo, Order: 1, Content: "https://cdn.example.com/hello.mp4"},
					{ID: "l-2", Title: "Syntax", Type: catalog.LessonArticle, Order: 2, Content: "body"},
					{ID: "l-3", Title: "Worksheet", Type: catalog.LessonDownload, Order: 3, Attachments: []string{"https://cdn.example.com/a.pdf"}},
				},
			},
			{
				ID: "m-2", Title: "Concurrency", Order: 2,
				Lessons: []catalog.Lesson{
					{ID: "l-4", Title: "Goroutines", Type: catalog.LessonVideo, Order: 1, Content: "https://cdn.example.com/goroutines.mp4"},
					{ID: "l-5", Title: "Quiz", Type: catalog.LessonQuiz, Order: 2},
				},
			},
		},
	}
	catalog.Normalize(c)
	return c
}

func TestNormalize_FillsCollections(t *testing.T) {
	c := &catalog.Course{Modules: []catalog.Module{{ID: "m-1"}}}
	catalog.Normalize(c)

	assert.NotNil(t, c.Tags)
	assert.NotNil(t, c.Instructors)
	assert.NotNil(t, c.Modules[0].Lessons)
}

func TestClone_IsDeep(t *testing.T) {
	original := sampleCourse()
	clone := original.Clone()

	clone.Modules[0].Lessons[0].Title = "changed"
	clone.Modules[0].Lessons[2].Attachments[0] = "changed"
	clone.Tags = append(clone.Tags, "new")

	assert.Equal(t, "Hello", original.Modules[0].Lessons[0].Title)
	assert.Equal(t, "https://cdn.example.com/a.pdf", original.Modules[0].Lessons[2].Attachments[0])
	assert.Empty(t, original.Tags)
}

func TestFindAndUpdateLesson(t *testing.T) {
	c := sampleCourse()

	require.NotNil(t, catalog.FindLesson(c, "l-4"))
	assert.Nil(t, catalog.FindLesson(c, "missing"))

	ok := catalog.UpdateLesson(c, "l-3", func(l *catalog.Lesson) {
		l.Attachments = append(l.Attachments, "https://cdn.example.com/b.pdf")
	})
	require.True(t, ok)
	assert.Len(t, catalog.FindLesson(c, "l-3").Attachments, 2)

	assert.False(t, catalog.UpdateLesson(c, "missing", func(*catalog.Lesson) {}))
}

/*
TestVideoErrors validates the lesson-level URL rule: only video lessons are
checked, and only absolute URLs pass.
*/
func TestVideoErrors(t *testing.T) {
	c := sampleCourse()
	assert.Empty(t, catalog.VideoErrors(c))

	catalog.UpdateLesson(c, "l-1", func(l *catalog.Lesson) { l.Content = "not a url" })
	catalog.UpdateLesson(c, "l-4", func(l *catalog.Lesson) { l.Content = "  " })

	errs := catalog.VideoErrors(c)
	assert.Len(t, errs, 2)
	assert.Contains(t, errs["l-1"], "invalid URL")
	assert.Contains(t, errs["l-4"], "needs a video URL")

	// Relative paths are not absolute URLs.
	catalog.UpdateLesson(c, "l-1", func(l *catalog.Lesson) { l.Content = "/videos/hello.mp4" })
	assert.Contains(t, catalog.VideoErrors(c), "l-1")

	// Article content is never URL-checked.
	catalog.UpdateLesson(c, "l-2", func(l *catalog.Lesson) { l.Content = "definitely not a url" })
	assert.NotContains(t, catalog.VideoErrors(c), "l-2")
}

/*
TestReplicate verifies the environment-cloning transform: same shape, all
fresh identifiers, dense 1-based orders, draft status, and a new slug.
*/
func TestReplicate(t *testing.T) {
	source := sampleCourse()
	copy := catalog.Replicate(source)

	require.Len(t, copy.Modules, 2)
	assert.Len(t, copy.Modules[0].Lessons, 3)
	assert.Len(t, copy.Modules[1].Lessons, 2)

	sourceIDs := map[string]bool{}
	for _, mod := range source.Modules {
		sourceIDs[mod.ID] = true
		for _, lesson := range mod.Lessons {
			sourceIDs[lesson.ID] = true
		}
	}
	for mi, mod := range copy.Modules {
		assert.False(t, sourceIDs[mod.ID], "module id must be fresh")
		assert.Equal(t, mi+1, mod.Order)
		for li, lesson := range mod.Lessons {
			assert.False(t, sourceIDs[lesson.ID], "lesson id must be fresh")
			assert.Equal(t, li+1, lesson.Order)
		}
	}

	assert.Empty(t, copy.ID)
	assert.Equal(t, catalog.StatusDraft, copy.Status)
	assert.Nil(t, copy.PublishedAt)
	assert.Nil(t, copy.DeletedAt)
	assert.NotEqual(t, source.Slug, copy.Slug)

	// The transform is pure: the source is untouched.
	assert.Equal(t, catalog.StatusPublished, source.Status)
	assert.Equal(t, "m-1", source.Modules[0].ID)
}
