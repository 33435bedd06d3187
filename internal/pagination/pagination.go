// Package pagination implements the page/size to offset/limit translation
// shared by every list endpoint.
package pagination

const (
	DefaultSize = 10
	MaxSize     = 100
)

// Params is a normalized (page, size) pair. Page starts at 1.
type Params struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

// Normalize clamps page and size into their valid ranges. Zero or negative
// values fall back to the defaults.
func Normalize(page, size int) Params {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	return Params{Page: page, Size: size}
}

func (p Params) Offset() int { return (p.Page - 1) * p.Size }

func (p Params) Limit() int { return p.Size }

// Page is the pagination block attached to list responses.
type Page struct {
	Page      int `json:"page"`
	Size      int `json:"size"`
	TotalData int `json:"total_data"`
	TotalPage int `json:"total_page"`
}

// NewPage computes total pages as ceil(total/size). Callers must treat a
// zero total as a not-found result rather than returning an empty page.
func NewPage(p Params, total int) Page {
	return Page{
		Page:      p.Page,
		Size:      p.Size,
		TotalData: total,
		TotalPage: (total + p.Size - 1) / p.Size,
	}
}
