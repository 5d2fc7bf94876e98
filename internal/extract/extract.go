package extract

import "errors"

// ErrStructure is wrapped by every error caused by page text that does not have
// the expected shape. It means the extraction rules are stale and retrying the
// same page will not help.
var ErrStructure = errors.New("unexpected page structure")

// Object is an untyped JSON object decoded from page text.
type Object = map[string]any

// ProfilePage is the fetched events tab of a profile. Prerender is the page
// source as first served, Postrender the body after scripts ran and the list
// was scrolled.
type ProfilePage struct {
	Profile    string `json:"profile"`
	Prerender  string `json:"prerender"`
	Postrender string `json:"postrender"`
}

// EventPage is the fetched page of a single event.
type EventPage struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Source        string  `json:"source"`
	CoverImageURL *string `json:"cover_image_url"`
}
