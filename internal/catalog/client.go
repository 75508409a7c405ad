// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/asharvi/admin-core/internal/api"
	"github.com/asharvi/admin-core/internal/platform/transport"
)

// Client is the typed façade over the admin course endpoints.
//
// It translates operations to paths and methods and unwraps the response
// envelope. It adds no failure handling of its own - errors pass through
// from the authenticated client unchanged.
type Client struct {
	api *api.Client
}

// NewClient wraps an authenticated client.
func NewClient(apiClient *api.Client) *Client {
	return &Client{api: apiClient}
}

// ListOptions filter a course listing.
type ListOptions struct {
	Page     int
	PageSize int
	Status   string
	Search   string
	Tag      string
}

// query renders the options in a stable order: page, pageSize, then the
// optional filters. Backend request logs rely on this ordering staying put.
func (o ListOptions) query() string {
	page := o.Page
	if page <= 0 {
		page = 1
	}
	pageSize := o.PageSize
	if pageSize <= 0 {
		pageSize = 12
	}

	var b strings.Builder
	fmt.Fprintf(&b, "page=%d&pageSize=%d", page, pageSize)
	if o.Status != "" {
		fmt.Fprintf(&b, "&status=%s", url.QueryEscape(o.Status))
	}
	if o.Search != "" {
		fmt.Fprintf(&b, "&search=%s", url.QueryEscape(o.Search))
	}
	if o.Tag != "" {
		fmt.Fprintf(&b, "&tag=%s", url.QueryEscape(o.Tag))
	}
	return b.String()
}

// CourseList is one page of a course listing.
type CourseList struct {
	Items []Course `json:"items"`
	Total int      `json:"total"`
}

// # Course operations

// ListCourses fetches one page of courses matching the filters.
func (c *Client) ListCourses(ctx context.Context, opts ListOptions) (*CourseList, error) {
	resp, err := c.api.Get(ctx, "/admin/courses?"+opts.query())
	if err != nil {
		return nil, err
	}
	list := &CourseList{Items: []Course{}}
	if err := decodeData(resp, list); err != nil {
		return nil, err
	}
	for i := range list.Items {
		Normalize(&list.Items[i])
	}
	return list, nil
}

// GetCourse fetches a single course by id.
func (c *Client) GetCourse(ctx context.Context, id string) (*Course, error) {
	resp, err := c.api.Get(ctx, "/admin/courses/"+id)
	if err != nil {
		return nil, err
	}
	return decodeCourse(resp)
}

// CreateCourse creates a course with server-side defaults applied.
func (c *Client) CreateCourse(ctx context.Context, payload *Course) (*Course, error) {
	resp, err := c.api.Post(ctx, "/admin/courses", payload)
	if err != nil {
		return nil, err
	}
	return decodeCourse(resp)
}

// UpdateCourse replaces the full course document.
func (c *Client) UpdateCourse(ctx context.Context, id string, payload *Course) (*Course, error) {
	resp, err := c.api.Put(ctx, "/admin/courses/"+id, payload)
	if err != nil {
		return nil, err
	}
	return decodeCourse(resp)
}

// PatchCourse applies a partial update (e.g. just the thumbnail URL).
func (c *Client) PatchCourse(ctx context.Context, id string, fields map[string]any) (*Course, error) {
	resp, err := c.api.Patch(ctx, "/admin/courses/"+id, fields)
	if err != nil {
		return nil, err
	}
	return decodeCourse(resp)
}

// DeleteCourse removes a course.
func (c *Client) DeleteCourse(ctx context.Context, id string) error {
	_, err := c.api.Delete(ctx, "/admin/courses/"+id)
	return err
}

// PublishCourse transitions a course to published.
func (c *Client) PublishCourse(ctx context.Context, id string) (*Course, error) {
	resp, err := c.api.Post(ctx, "/admin/courses/"+id+"/publish", nil)
	if err != nil {
		return nil, err
	}
	return decodeCourse(resp)
}

// ArchiveCourse transitions a course to archived.
func (c *Client) ArchiveCourse(ctx context.Context, id string) (*Course, error) {
	resp, err := c.api.Post(ctx, "/admin/courses/"+id+"/archive", nil)
	if err != nil {
		return nil, err
	}
	return decodeCourse(resp)
}

// # Module operations

// CreateModule appends a module to a course.
func (c *Client) CreateModule(ctx context.Context, courseID string, payload *Module) (*Module, error) {
	resp, err := c.api.Post(ctx, "/admin/courses/"+courseID+"/modules", payload)
	if err != nil {
		return nil, err
	}
	return decodeModule(resp)
}

// UpdateModule replaces a module.
func (c *Client) UpdateModule(ctx context.Context, moduleID string, payload *Module) (*Module, error) {
	resp, err := c.api.Put(ctx, "/admin/modules/"+moduleID, payload)
	if err != nil {
		return nil, err
	}
	return decodeModule(resp)
}

// DeleteModule removes a module.
func (c *Client) DeleteModule(ctx context.Context, moduleID string) error {
	_, err := c.api.Delete(ctx, "/admin/modules/"+moduleID)
	return err
}

// ReorderModule moves a module to the given 1-based position.
func (c *Client) ReorderModule(ctx context.Context, moduleID string, order int) (*Module, error) {
	resp, err := c.api.Patch(ctx, "/admin/modules/"+moduleID+"/reorder", map[string]int{"order": order})
	if err != nil {
		return nil, err
	}
	return decodeModule(resp)
}

// # Lesson operations

// CreateLesson appends a lesson to a module.
func (c *Client) CreateLesson(ctx context.Context, moduleID string, payload *Lesson) (*Lesson, error) {
	resp, err := c.api.Post(ctx, "/admin/modules/"+moduleID+"/lessons", payload)
	if err != nil {
		return nil, err
	}
	return decodeLesson(resp)
}

// UpdateLesson replaces a lesson.
func (c *Client) UpdateLesson(ctx context.Context, lessonID string, payload *Lesson) (*Lesson, error) {
	resp, err := c.api.Put(ctx, "/admin/lessons/"+lessonID, payload)
	if err != nil {
		return nil, err
	}
	return decodeLesson(resp)
}

// DeleteLesson removes a lesson.
func (c *Client) DeleteLesson(ctx context.Context, lessonID string) error {
	_, err := c.api.Delete(ctx, "/admin/lessons/"+lessonID)
	return err
}

// ReorderLesson moves a lesson to the given 1-based position.
func (c *Client) ReorderLesson(ctx context.Context, lessonID string, order int) (*Lesson, error) {
	resp, err := c.api.Patch(ctx, "/admin/lessons/"+lessonID+"/reorder", map[string]int{"order": order})
	if err != nil {
		return nil, err
	}
	return decodeLesson(resp)
}

// # Envelope decoding

// decodeData unwraps the {data: ...} envelope into target. A nil payload
// leaves target at its zero value; callers treat that as an empty result.
func decodeData(resp *transport.Response, target any) error {
	if resp == nil || resp.Data == nil {
		return nil
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Data, &envelope); err != nil {
		return fmt.Errorf("catalog: decode envelope: %w", err)
	}
	if envelope.Data == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, target); err != nil {
		return fmt.Errorf("catalog: decode payload: %w", err)
	}
	return nil
}

func decodeCourse(resp *transport.Response) (*Course, error) {
	course := &Course{}
	if err := decodeData(resp, course); err != nil {
		return nil, err
	}
	Normalize(course)
	return course, nil
}

func decodeModule(resp *transport.Response) (*Module, error) {
	mod := &Module{}
	if err := decodeData(resp, mod); err != nil {
		return nil, err
	}
	return mod, nil
}

func decodeLesson(resp *transport.Response) (*Lesson, error) {
	lesson := &Lesson{}
	if err := decodeData(resp, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}
