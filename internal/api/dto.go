package api

// AddRequest is the request body for creating a tag or registering a
// note, optionally under categories.
type AddRequest struct {
	Name       string   `json:"name"`
	Categories []string `json:"categories,omitempty"`
}

// AddResponse reports the tags created by an add.
type AddResponse struct {
	Created []string `json:"created"`
}

// TagListResponse wraps the known tag names.
type TagListResponse struct {
	Tags []string `json:"tags"`
}

// MembersResponse wraps a tag's direct children in insertion order.
type MembersResponse struct {
	Members []string `json:"members"`
}

// CategoriesResponse wraps the tags an entity belongs to.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// NoteBlock is one resolved note in a notes response.
type NoteBlock struct {
	ID          string `json:"id"`
	Content     string `json:"content,omitempty"`
	Unavailable bool   `json:"unavailable,omitempty"`
}

// NotesResponse wraps the resolved, ordered, filtered notes of a tag.
type NotesResponse struct {
	Notes []NoteBlock `json:"notes"`
}

// LastResponse carries the most recent note of a tag.
type LastResponse struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}
