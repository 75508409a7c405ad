// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

package stubapi

import (
	"github.com/asharvi/admin-core/internal/catalog"
)

// DefaultAdminEmail and DefaultAdminPassword are the seeded local
// credentials. Development only; the stub never faces the internet.
const (
	DefaultAdminEmail    = "admin@asharvi.dev"
	DefaultAdminPassword = "local-admin"
)

// SeedDefaults loads a small demo catalog and the default admin account.
func (s *Server) SeedDefaults() error {
	if err := s.auth.AddUser(DefaultAdminEmail, DefaultAdminPassword, "admin"); err != nil {
		return err
	}

	s.store.Seed(
		&catalog.Course{
			Slug:        "intro-to-backend-development",
			Title:       "Intro to Backend Development",
			Description: "HTTP, databases and deployment from first principles.",
			Category:    "engineering",
			Status:      catalog.StatusPublished,
			Visibility:  "public",
			PriceCents:  4900,
			Currency:    "USD",
			Tags:        []string{"backend", "beginner"},
			Instructors: []string{"Priya Nair"},
			Modules: []catalog.Module{
				{
					Title: "Foundations", Order: 1,
					Lessons: []catalog.Lesson{
						{Title: "How the web works", Type: catalog.LessonVideo, Order: 1, Content: "https://cdn.asharvi.dev/v/web-101.mp4"},
						{Title: "Course workbook", Type: catalog.LessonDownload, Order: 2, Attachments: []string{"https://cdn.asharvi.dev/a/workbook.pdf"}},
					},
				},
				{
					Title: "Databases", Order: 2,
					Lessons: []catalog.Lesson{
						{Title: "Relational modelling", Type: catalog.LessonVideo, Order: 1, Content: "https://cdn.asharvi.dev/v/sql-101.mp4"},
					},
				},
			},
		},
		&catalog.Course{
			Slug:        "data-pipelines-in-practice",
			Title:       "Data Pipelines in Practice",
			Description: "Batch and streaming pipelines for production teams.",
			Category:    "data",
			Status:      catalog.StatusDraft,
			Visibility:  "unlisted",
			PriceCents:  7900,
			Currency:    "USD",
			Tags:        []string{"data", "advanced"},
			Instructors: []string{"Marco Silva"},
			Modules: []catalog.Module{
				{
					Title: "Ingestion", Order: 1,
					Lessons: []catalog.Lesson{
						{Title: "Sources and sinks", Type: catalog.LessonArticle, Order: 1, Content: "Connecting upstream systems."},
					},
				},
			},
		},
	)
	return nil
}
