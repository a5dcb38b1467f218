package domain

import "time"

// Comment captures a thread entry on a ticket. Mentions holds the IDs of
// directory users whose @Name tokens resolved at submission time; tokens
// with no directory match stay literal text in Content.
type Comment struct {
	ID          string
	TicketID    string
	AuthorID    string
	Content     string
	Mentions    []string
	Attachments []CommentAttachment
	CreatedAt   time.Time
}

// CommentAttachment stores opaque attachment metadata.
type CommentAttachment struct {
	FileName   string
	StorageKey string
	SizeBytes  int64
}
