package collection

import "strings"

// Item is one link card in the collection.
type Item struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	Tags        []string `json:"tags"`
	CreatedAt   int64    `json:"createdAt"`
}

// HasTag reports whether tag is one of the item's labels.
func (it Item) HasTag(tag string) bool {
	for _, t := range it.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (it Item) clone() Item {
	it.Tags = cloneTags(it.Tags)
	return it
}

// Candidate is the payload for a new item. ID is always assigned by the
// backend; CreatedAt is attached by the Store and may be overwritten by the
// backend's record.
type Candidate struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	Tags        []string `json:"tags"`
	CreatedAt   int64    `json:"createdAt,omitempty"`
}

// Validate enforces the form-level rule that title and url are present.
func (c Candidate) Validate() error {
	switch {
	case strings.TrimSpace(c.Title) == "":
		return &ValidationError{Field: "title"}
	case strings.TrimSpace(c.URL) == "":
		return &ValidationError{Field: "url"}
	}
	return nil
}

// Patch holds the fields an update changes. Nil fields are left untouched;
// there is no way to express a change to ID or CreatedAt.
type Patch struct {
	Title       *string   `json:"title,omitempty"`
	URL         *string   `json:"url,omitempty"`
	Description *string   `json:"description,omitempty"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.URL == nil && p.Description == nil && p.ImageURL == nil && p.Tags == nil
}

// Apply returns it with the patch merged in.
func (p Patch) Apply(it Item) Item {
	out := it.clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.URL != nil {
		out.URL = *p.URL
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.ImageURL != nil {
		out.ImageURL = *p.ImageURL
	}
	if p.Tags != nil {
		out.Tags = cloneTags(*p.Tags)
	}
	return out
}

func cloneTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
