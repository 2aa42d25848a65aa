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

// Status is a lifecycle state shared by tasks and projects. The set of valid members is
// configured when the schema is built.
type Status string

// Default status members.
const (
	StatusPending    Status = "PENDING"
	StatusAssigned   Status = "ASSIGNED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusBlocked    Status = "BLOCKED"
)

// DefaultStatuses lists the status members used when none are configured.
var DefaultStatuses = []Status{
	StatusPending,
	StatusAssigned,
	StatusInProgress,
	StatusCompleted,
	StatusBlocked,
}

// Task is a unit of work. Parents are the tasks it depends on and children are the tasks that
// depend on it; every edge is stored on both ends.
type Task struct {
	ID          ID     `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      Status `json:"status,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	OwnerID     ID     `json:"userId,omitempty"`
	ProjectID   ID     `json:"projectId,omitempty"`
	Parents     IDs    `json:"parents"`
	Children    IDs    `json:"children"`
}

// References returns the ids of every task linked to t by a dependency edge in either direction.
func (t *Task) References() IDs {
	refs := t.Parents.Clone()
	for _, child := range t.Children {
		refs = refs.With(child)
	}
	return refs
}

// User owns tasks and projects. The store keeps no back-pointers from a user.
type User struct {
	ID    ID     `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Project groups tasks. Tasks lists the ids of the member tasks; each member's ProjectID points
// back to the project.
type Project struct {
	ID          ID     `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      Status `json:"status,omitempty"`
	OwnerID     ID     `json:"owner,omitempty"`
	Tasks       IDs    `json:"tasks"`
}

// ProjectMembers is a project read together with its member task rows. The store fills Tasks with
// every task whose projectId references the project.
type ProjectMembers struct {
	ID    ID      `json:"id"`
	Tasks []*Task `json:"tasks"`
}

// IDs returns the ids of the member tasks.
func (members *ProjectMembers) IDs() IDs {
	ids := make(IDs, 0, len(members.Tasks))
	for _, task := range members.Tasks {
		ids = append(ids, task.ID)
	}
	return ids
}
