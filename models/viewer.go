package models

// Viewer is the authenticated caller on whose behalf remote requests are made.
type Viewer struct {
	Token     string `json:"-"`
	Identity  string `json:"identity"`
	Organizer bool   `json:"organizer"`
}
