package request

import "flight-booking/pkg/utils"

type PaginatedRequest struct {
	Page    int `json:"page" validate:"omitempty,min=1"`
	PerPage int `json:"per_page" validate:"omitempty,min=1,max=100"`
}

func (p PaginatedRequest) Offset() int {
	page, perPage := utils.NormalizePage(p.Page, p.PerPage)
	return utils.CalculateOffset(page, perPage)
}

func (p PaginatedRequest) Limit() int {
	_, perPage := utils.NormalizePage(p.Page, p.PerPage)
	return perPage
}

// Normalized returns the request with defaults applied.
func (p PaginatedRequest) Normalized() PaginatedRequest {
	p.Page, p.PerPage = utils.NormalizePage(p.Page, p.PerPage)
	return p
}
