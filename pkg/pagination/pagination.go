package pagination

const (
	// DefaultPage is the first page.
	DefaultPage = 1
	// DefaultSize is the standard page size when one is not provided.
	DefaultSize = 10
	// MaxSize caps how many rows any listing can request.
	MaxSize = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page int
	Size int
}

// Normalize enforces the configured defaults and maximum size.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Size <= 0 {
		p.Size = DefaultSize
	}
	if p.Size > MaxSize {
		p.Size = MaxSize
	}
	return p
}

// Offset returns the row offset for the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Size
}

// Metadata describes the position of a page within the full result set.
type Metadata struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	Size     int   `json:"size"`
	Pages    int   `json:"pages"`
	HasNext  bool  `json:"has_next"`
	HasPrev  bool  `json:"has_prev"`
	NextPage *int  `json:"next_page"`
	PrevPage *int  `json:"prev_page"`
}

// Envelope is the wire shape for paginated listings.
type Envelope struct {
	Items    any      `json:"items"`
	Metadata Metadata `json:"metadata"`
}

// NewMetadata computes the page metadata for a total row count.
func NewMetadata(total int64, params Params) Metadata {
	params = params.Normalize()

	pages := int((total + int64(params.Size) - 1) / int64(params.Size))

	meta := Metadata{
		Total:   total,
		Page:    params.Page,
		Size:    params.Size,
		Pages:   pages,
		HasNext: params.Page < pages,
		HasPrev: params.Page > 1,
	}
	if meta.HasNext {
		next := params.Page + 1
		meta.NextPage = &next
	}
	if meta.HasPrev {
		prev := params.Page - 1
		meta.PrevPage = &prev
	}
	return meta
}

// NewEnvelope pairs the items slice with its computed metadata.
func NewEnvelope(items any, total int64, params Params) Envelope {
	return Envelope{Items: items, Metadata: NewMetadata(total, params)}
}
