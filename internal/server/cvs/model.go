package cvs

import (
	"encoding/json"
	"time"
)

// CVRecord is a CV document as last uploaded by a client. Document holds
// the client's JSON verbatim.
type CVRecord struct {
	ID           string
	Document     json.RawMessage
	LastModified *time.Time
	SyncedAt     time.Time
}
