package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Siellph/DimaTech-Ltd-test/internal/ledger"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PaginatedResponse is the envelope of every list endpoint.
type PaginatedResponse struct {
	Data        interface{} `json:"data"`
	TotalRows   int64       `json:"totalRows"`
	TotalPages  int64       `json:"totalPages"`
	CurrentPage int         `json:"currentPage"`
	PageSize    int         `json:"pageSize"`
}

// pageRequest is the page asked for through ?page= and ?pageSize=.
// Out-of-range values fall back to the first page and the default size.
type pageRequest struct {
	Page     int
	PageSize int
}

func newPageRequest(c *gin.Context) pageRequest {
	p := pageRequest{Page: 1, PageSize: DefaultPageSize}
	if n, err := strconv.Atoi(c.Query("page")); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(c.Query("pageSize")); err == nil && n > 0 {
		p.PageSize = min(n, MaxPageSize)
	}
	return p
}

// Scope limits a ledger listing to this page.
func (p pageRequest) Scope() ledger.Scope {
	offset := (p.Page - 1) * p.PageSize
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(offset).Limit(p.PageSize)
	}
}

// Response wraps one page of rows with the total reported by the listing.
func (p pageRequest) Response(data interface{}, totalRows int64) PaginatedResponse {
	size := int64(p.PageSize)
	return PaginatedResponse{
		Data:        data,
		TotalRows:   totalRows,
		TotalPages:  (totalRows + size - 1) / size,
		CurrentPage: p.Page,
		PageSize:    p.PageSize,
	}
}
