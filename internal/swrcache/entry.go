package swrcache

import "time"

// entryVersion is bumped when the on-disk layout changes; older files
// read as misses.
const entryVersion = 2

// Entry wraps cached data with metadata.
type Entry[T any] struct {
	Version   int       `json:"version"`
	Key       string    `json:"key"`
	Data      T         `json:"data"`
	FetchedAt time.Time `json:"fetched_at"`
}

// usable reports whether e was written for key by this layout. File
// names are sanitized, so two keys may share a file.
func (e Entry[T]) usable(key string) bool {
	return e.Version == entryVersion && e.Key == key && !e.FetchedAt.IsZero()
}
