package types

// Company is the authoritative record stored in the primary store.
// ID is assigned by the store at insert time and never changes; it is also
// the document key in the search index. Created is assigned by the
// coordinator (server time, epoch seconds) and never changes.
type Company struct {
	ID          string `json:"id" dynamodbav:"id"`
	Title       string `json:"title" dynamodbav:"title"`
	Description string `json:"description" dynamodbav:"description"`
	URL         string `json:"url" dynamodbav:"url"`
	Created     int64  `json:"created" dynamodbav:"created"`
}

const (
	TitleMaxLength = 100
	IDMinLength    = 12

	AdminTokenHdrName = "admin_token"
	ContentTypeJSON   = "application/json"
)

// CompanyDraft carries the caller-supplied fields of a registration.
// Description and URL default to the empty string when absent.
type CompanyDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// CompanyPatch is a partial-merge patch: only non-empty fields overwrite
// the stored values, everything else is retained.
type CompanyPatch struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Document is the search-index mirror of a Company. The index never holds
// fields the primary store does not; it is a derived representation.
type Document struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Created     int64  `json:"created"`
}

// SortOrder selects the direction of a sorted index query.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Divergence records an index write that failed after the primary store
// had already committed, leaving the index stale for this id until a
// re-index job runs.
type Divergence struct {
	ID       string `json:"id" dynamodbav:"id"`
	Op       string `json:"op" dynamodbav:"op"`
	Reason   string `json:"reason" dynamodbav:"reason"`
	At       int64  `json:"at" dynamodbav:"at"`
	Snapshot string `json:"snapshot,omitempty" dynamodbav:"snapshot"`
}

const (
	OpRegister = "register"
	OpUpdate   = "update"
	OpRemove   = "remove"
)

// Validate checks the draft's field constraints and returns one FieldError
// per offending field.
func (d CompanyDraft) Validate() FieldErrors {
	var fe FieldErrors
	if d.Title == "" {
		fe = append(fe, FieldError{Field: "title", Message: "title is required"})
	} else if len(d.Title) > TitleMaxLength {
		fe = append(fe, FieldError{Field: "title", Message: "title must be at most 100 characters"})
	}
	return fe
}

// Doc returns the index document mirroring the company.
func (c Company) Doc() Document {
	return Document{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		URL:         c.URL,
		Created:     c.Created,
	}
}
