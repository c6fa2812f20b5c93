// Package entity defines the entities and errors used in the application.
// It includes the Link struct, which represents a shortened link owned by a
// user or by nobody (a guest link), the immutable ClickEvent recorded on every
// redirect, and the rows produced by click analytics.
package entity

import (
	"errors"
	"time"
)

var (
	// ErrSlugExists is returned when attempting to create a link with a slug that already exists.
	ErrSlugExists = errors.New("slug exists")
	// ErrLinkNotFound is returned when a link cannot be found or is no longer active.
	ErrLinkNotFound = errors.New("link not found")
	// ErrLinkExpired is returned when a link has passed its expiration time.
	ErrLinkExpired = errors.New("link expired")
	// ErrForbidden is returned when the caller is not allowed to access a link.
	ErrForbidden = errors.New("forbidden")
)

// Link represents a shortened link.
type Link struct {
	ID          string     // ID is the unique identifier of the link.
	Title       string     // Title is a human readable name of the link.
	URL         string     // URL is the destination the slug redirects to.
	Slug        string     // Slug is the globally unique short key of the link.
	Description *string    // Description is an optional free-form text.
	IsActive    bool       // IsActive reports whether the link may be resolved.
	Clicks      int64      // Clicks is the cumulative number of resolved redirects.
	IsCustom    bool       // IsCustom reports whether the slug was chosen by the creator.
	UserID      *string    // UserID references the owner. Nil means a guest link.
	Favicon     *string    // Favicon is an icon URL for the destination host.
	ExpiresAt   *time.Time // ExpiresAt is the moment the link stops resolving.
	CreatedAt   time.Time  // CreatedAt is the timestamp when the link was created.
	UpdatedAt   time.Time  // UpdatedAt is the timestamp when the link was last updated.
}

// IsGuest reports whether the link has no owner.
func (l *Link) IsGuest() bool {
	return l.UserID == nil
}

// OwnedBy reports whether the link belongs to the given user.
func (l *Link) OwnedBy(userID string) bool {
	return l.UserID != nil && *l.UserID == userID
}

// Expired reports whether the link has an expiration time that is not after now.
func (l *Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && !now.Before(*l.ExpiresAt)
}

// NewLink carries the caller supplied fields of a link being created.
type NewLink struct {
	Title       string
	URL         string
	Description *string
	CustomSlug  string
}

// LinkUpdate carries the fields of a link to change. Nil fields are left untouched.
type LinkUpdate struct {
	Title       *string
	URL         *string
	Description *string
	IsActive    *bool
	Favicon     *string
}

// OwnerStats summarizes the links of a single owner.
type OwnerStats struct {
	TotalLinks  int64
	TotalClicks int64
}
