package links

// Link is one row of the links table as the API serves it.
type Link struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	Tags        []string `json:"tags"`
	CreatedAt   int64    `json:"createdAt"`
}

type CreateLinkInput struct {
	Title       string
	URL         string
	Description string
	ImageURL    string
	Tags        []string
	// CreatedAt is the client's timestamp in epoch ms. Zero or negative means
	// the service stamps it.
	CreatedAt int64
}

// UpdateLinkInput carries the fields an update changes; nil means keep.
type UpdateLinkInput struct {
	Title       *string
	URL         *string
	Description *string
	ImageURL    *string
	Tags        *[]string
}

func (in UpdateLinkInput) IsEmpty() bool {
	return in.Title == nil && in.URL == nil && in.Description == nil && in.ImageURL == nil && in.Tags == nil
}

// Apply merges the input into l and returns the result.
func (in UpdateLinkInput) Apply(l Link) Link {
	if in.Title != nil {
		l.Title = *in.Title
	}
	if in.URL != nil {
		l.URL = *in.URL
	}
	if in.Description != nil {
		l.Description = *in.Description
	}
	if in.ImageURL != nil {
		l.ImageURL = *in.ImageURL
	}
	if in.Tags != nil {
		l.Tags = append([]string{}, (*in.Tags)...)
	}
	return l
}
