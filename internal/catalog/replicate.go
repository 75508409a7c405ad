// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

package catalog

import (
	"github.com/google/uuid"

	"github.com/asharvi/admin-core/pkg/slug"
)

// Replicate produces a draft copy of source suitable for import into
// another environment (or the same one).
//
// The transform is pure - no network I/O. Every module and lesson receives
// a fresh identifier so replicated content can never collide with ids in
// the target deployment; orders are renumbered densely from 1 at each
// level; publish/lifecycle timestamps are cleared; status is forced back to
// draft; and the slug gains a random numeric suffix to dodge the
// per-environment uniqueness constraint.
//
// The course's own id is cleared - the caller decides which identity the
// copy assumes (see editor.Session.ReplicateFrom).
func Replicate(source *Course) *Course {
	out := source.Clone()

	out.ID = ""
	out.Slug = slug.WithRandomSuffix(out.Slug)
	out.Status = StatusDraft
	out.PublishedAt = nil
	out.DeletedAt = nil
	out.CreatedAt = nil
	out.UpdatedAt = nil

	for mi := range out.Modules {
		out.Modules[mi].ID = uuid.NewString()
		for li := range out.Modules[mi].Lessons {
			out.Modules[mi].Lessons[li].ID = uuid.NewString()
		}
	}
	RenumberOrders(out)

	return out
}
