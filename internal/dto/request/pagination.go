package request

import "estate-api/pkg/utils"

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

type PaginatedRequest struct {
	Page    int `json:"page" validate:"min=1"`
	PerPage int `json:"per_page" validate:"min=1,max=100"`
}

// Normalize clamps page and per_page into the accepted range.
func (p *PaginatedRequest) Normalize() {
	p.Page, p.PerPage = utils.NormalizePage(p.Page, p.PerPage, DefaultPerPage, MaxPerPage)
}

func (p PaginatedRequest) Offset() int {
	return utils.CalculateOffset(p.Page, p.Limit())
}

func (p PaginatedRequest) Limit() int {
	_, perPage := utils.NormalizePage(p.Page, p.PerPage, DefaultPerPage, MaxPerPage)
	return perPage
}
