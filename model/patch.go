/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package model

// TaskPatch is a partial update of a task. Nil fields are left untouched by the store. Setting
// OwnerID or ProjectID to a pointer to the zero ID clears the reference.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *Status `json:"status,omitempty"`
	EndDate     *string `json:"endDate,omitempty"`
	OwnerID     *ID     `json:"userId,omitempty"`
	ProjectID   *ID     `json:"projectId,omitempty"`
	Parents     *IDs    `json:"parents,omitempty"`
	Children    *IDs    `json:"children,omitempty"`
}

// SetParents sets the parents list in the patch.
func (patch *TaskPatch) SetParents(ids IDs) *TaskPatch {
	ids = ids.Clone()
	patch.Parents = &ids
	return patch
}

// SetChildren sets the children list in the patch.
func (patch *TaskPatch) SetChildren(ids IDs) *TaskPatch {
	ids = ids.Clone()
	patch.Children = &ids
	return patch
}

// Empty returns true if the patch changes nothing.
func (patch *TaskPatch) Empty() bool {
	return patch.Title == nil &&
		patch.Description == nil &&
		patch.Status == nil &&
		patch.EndDate == nil &&
		patch.OwnerID == nil &&
		patch.ProjectID == nil &&
		patch.Parents == nil &&
		patch.Children == nil
}

// ProjectPatch is a partial update of a project.
type ProjectPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *Status `json:"status,omitempty"`
	OwnerID     *ID     `json:"owner,omitempty"`
	Tasks       *IDs    `json:"tasks,omitempty"`
}

// SetTasks sets the member list in the patch.
func (patch *ProjectPatch) SetTasks(ids IDs) *ProjectPatch {
	ids = ids.Clone()
	patch.Tasks = &ids
	return patch
}

// UserPatch is a partial update of a user.
type UserPatch struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}
