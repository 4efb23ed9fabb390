package store

// Analytics is one immutable insight snapshot for a user. Payload is
// the JSON-serialized snapshot produced by the analytics pipeline; the
// store treats it as opaque. A user's history is the set of rows
// ordered by PublishedTs — appending a snapshot is an INSERT, so
// history is append-only by construction and needs no upsert dance.
type Analytics struct {
	ID          int32
	UserID      int32
	PublishedTs int64
	Payload     string
}

// FindAnalytics is the find condition for analytics snapshots.
type FindAnalytics struct {
	ID     *int32
	UserID *int32
	Limit  *int
}

// DeleteAnalytics is the delete request for analytics snapshots.
type DeleteAnalytics struct {
	ID     *int32
	UserID *int32
}
