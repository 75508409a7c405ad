// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

package stubapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/asharvi/admin-core/internal/catalog"
	requestutil "github.com/asharvi/admin-core/internal/platform/request"
	"github.com/asharvi/admin-core/internal/platform/respond"
	"github.com/asharvi/admin-core/pkg/convert"
	"github.com/asharvi/admin-core/pkg/pagination"
	"github.com/asharvi/admin-core/pkg/query"
)

// CourseHandler exposes the admin catalog routes.
type CourseHandler struct {
	store *Store
}

// NewCourseHandler wraps the store.
func NewCourseHandler(store *Store) *CourseHandler {
	return &CourseHandler{store: store}
}

// RegisterRoutes mounts the catalog routes on the router.
func (handler *CourseHandler) RegisterRoutes(router chi.Router) {
	router.Get("/courses", handler.listCourses)
	router.Post("/courses", handler.createCourse)
	router.Get("/courses/{id}", handler.getCourse)
	router.Put("/courses/{id}", handler.updateCourse)
	router.Patch("/courses/{id}", handler.patchCourse)
	router.Delete("/courses/{id}", handler.deleteCourse)
	router.Post("/courses/{id}/publish", handler.publishCourse)
	router.Post("/courses/{id}/archive", handler.archiveCourse)
	router.Post("/courses/{id}/modules", handler.createModule)

	router.Put("/modules/{id}", handler.updateModule)
	router.Delete("/modules/{id}", handler.deleteModule)
	router.Patch("/modules/{id}/reorder", handler.reorderModule)
	router.Post("/modules/{id}/lessons", handler.createLesson)

	router.Put("/lessons/{id}", handler.updateLesson)
	router.Delete("/lessons/{id}", handler.deleteLesson)
	router.Patch("/lessons/{id}/reorder", handler.reorderLesson)
}

func (handler *CourseHandler) listCourses(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	filter := ListFilter{
		Status: request.URL.Query().Get("status"),
		Search: request.URL.Query().Get("search"),
		Tags:   query.StringSlice(request.URL.Query().Get("tag")),
	}

	items, total := handler.store.ListCourses(filter, params)
	respond.Paginated(writer,
		catalog.CourseList{Items: items, Total: total},
		pagination.NewMeta(params.Page, params.PageSize, total),
	)
}

func (handler *CourseHandler) getCourse(writer http.ResponseWriter, request *http.Request) {
	course, err := handler.store.GetCourse(requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, course)
}

func (handler *CourseHandler) createCourse(writer http.ResponseWriter, request *http.Request) {
	var input catalog.Course
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.store.CreateCourse(&input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, created)
}

func (handler *CourseHandler) updateCourse(writer http.ResponseWriter, request *http.Request) {
	var input catalog.Course
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.store.UpdateCourse(requestutil.Param(request, "id"), &input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, updated)
}

func (handler *CourseHandler) patchCourse(writer http.ResponseWriter, request *http.Request) {
	var fields map[string]any
	if err := requestutil.DecodeJSON(request, &fields); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.store.PatchCourse(requestutil.Param(request, "id"), fields)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, updated)
}

func (handler *CourseHandler) deleteCourse(writer http.ResponseWriter, request *http.Request) {
	if err := handler.store.DeleteCourse(requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *CourseHandler) publishCourse(writer http.ResponseWriter, request *http.Request) {
	course, err := handler.store.SetStatus(requestutil.Param(request, "id"), catalog.StatusPublished)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, course)
}

func (handler *CourseHandler) archiveCourse(writer http.ResponseWriter, request *http.Request) {
	course, err := handler.store.SetStatus(requestutil.Param(request, "id"), catalog.StatusArchived)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, course)
}

// # Module routes

func (handler *CourseHandler) createModule(writer http.ResponseWriter, request *http.Request) {
	var input catalog.Module
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.store.CreateModule(requestutil.Param(request, "id"), &input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, created)
}

func (handler *CourseHandler) updateModule(writer http.ResponseWriter, request *http.Request) {
	var input catalog.Module
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.store.UpdateModule(requestutil.Param(request, "id"), &input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, updated)
}

func (handler *CourseHandler) deleteModule(writer http.ResponseWriter, request *http.Request) {
	if err := handler.store.DeleteModule(requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *CourseHandler) reorderModule(writer http.ResponseWriter, request *http.Request) {
	moved, err := handler.store.ReorderModule(requestutil.Param(request, "id"), decodeOrder(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, moved)
}

// # Lesson routes

func (handler *CourseHandler) createLesson(writer http.ResponseWriter, request *http.Request) {
	var input catalog.Lesson
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.store.CreateLesson(requestutil.Param(request, "id"), &input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, created)
}

func (handler *CourseHandler) updateLesson(writer http.ResponseWriter, request *http.Request) {
	var input catalog.Lesson
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.store.UpdateLesson(requestutil.Param(request, "id"), &input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, updated)
}

func (handler *CourseHandler) deleteLesson(writer http.ResponseWriter, request *http.Request) {
	if err := handler.store.DeleteLesson(requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *CourseHandler) reorderLesson(writer http.ResponseWriter, request *http.Request) {
	moved, err := handler.store.ReorderLesson(requestutil.Param(request, "id"), decodeOrder(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, moved)
}

// decodeOrder reads the {"order": N} reorder payload.
func decodeOrder(request *http.Request) int {
	var input struct {
		Order json.Number `json:"order"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		return 1
	}
	return convert.ToIntD(input.Order.String(), 1)
}
