package core

// DefaultPageSize matches the fixed page size of every list view.
const DefaultPageSize = 10

// Pagination is the page selection bound from list requests.
type Pagination struct {
	Page    int `json:"-" query:"page"`
	PerPage int `json:"-" query:"-"`
}

func (p *Pagination) Clean() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPageSize
	}
}

func (p Pagination) Limit() int {
	return p.PerPage
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Page is the pagination envelope list endpoints respond with; the client
// pagination widgets consume current_page/last_page/from/to as-is.
type Page struct {
	Data        interface{} `json:"data"`
	CurrentPage int         `json:"current_page"`
	LastPage    int         `json:"last_page"`
	PerPage     int         `json:"per_page"`
	Total       int         `json:"total"`
	From        int         `json:"from"`
	To          int         `json:"to"`
}

// NewPage wraps one page worth of data. size is the number of rows in data,
// total the count of all rows matching the query across pages.
func NewPage(data interface{}, size, total int, p Pagination) Page {
	p.Clean()

	lastPage := (total + p.PerPage - 1) / p.PerPage
	if lastPage < 1 {
		lastPage = 1
	}
	var from, to int
	if size > 0 {
		from = (p.Page-1)*p.PerPage + 1
		to = from + size - 1
	}
	return Page{
		Data:        data,
		CurrentPage: p.Page,
		LastPage:    lastPage,
		PerPage:     p.PerPage,
		Total:       total,
		From:        from,
		To:          to,
	}
}
