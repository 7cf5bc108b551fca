package models

import "time"

// Event is the persisted calendar entry. Events imported from Instagram carry
// the source permalink and the importedFromInstagram flag.
type Event struct {
	EventID               string     `json:"eventid" bson:"_id"`
	Title                 string     `json:"title" bson:"title"`
	Slug                  string     `json:"slug" bson:"slug"`
	Image                 string     `json:"image" bson:"image"`
	Thumbnail             string     `json:"thumbnail,omitempty" bson:"thumbnail,omitempty"`
	AdditionalImages      []string   `json:"additionalImages,omitempty" bson:"additionalImages,omitempty"`
	Date                  time.Time  `json:"date" bson:"date"`
	EndDate               *time.Time `json:"endDate,omitempty" bson:"endDate,omitempty"`
	Description           string     `json:"description" bson:"description"`
	Location              string     `json:"location" bson:"location"`
	InstagramURL          string     `json:"instagramUrl,omitempty" bson:"instagramUrl,omitempty"`
	ImportedFromInstagram bool       `json:"importedFromInstagram" bson:"importedFromInstagram"`
	PublishedAt           time.Time  `json:"publishedAt" bson:"publishedAt"`
}

// IsMultiDay reports whether the event spans more than one day.
func (e *Event) IsMultiDay() bool {
	return e.EndDate != nil
}

// StaffUser is an editorial account allowed to trigger manual imports and
// delete events. Passwords are bcrypt hashes; accounts are created out of band.
type StaffUser struct {
	Username     string   `json:"username" bson:"_id"`
	PasswordHash string   `json:"-" bson:"password_hash"`
	Role         []string `json:"role" bson:"role"`
}

// AssetRef points at an uploaded binary in the asset store.
type AssetRef struct {
	Key string `json:"key" bson:"key"`
	URL string `json:"url" bson:"url"`
}

// Index represents a notification message published on the queue.
type Index struct {
	EntityType string `json:"entity_type"`
	Method     string `json:"method"`
	EntityId   string `json:"entity_id"`
}
