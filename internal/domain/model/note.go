package model

import "time"

// Note is a persisted note. Content holds the sealed envelope produced by the
// cipher; plaintext never appears in this type.
type Note struct {
	ID        int64
	Title     string
	Content   []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NoteSummary is the listing view of a note. It carries no content so that
// listings never require decryption.
type NoteSummary struct {
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
