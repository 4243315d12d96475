package customers

import (
	"time"

	"github.com/angelmondragon/crm-backend/pkg/db/models"
	"github.com/angelmondragon/crm-backend/pkg/pagination"
)

// Filter lists the supported customer filters. Nil fields are ignored.
type Filter struct {
	Name         *string
	Email        *string
	CreatedAtGte *time.Time
	CreatedAtLte *time.Time
	PhonePattern *string
}

// ListQuery captures filter, ordering and paging for allCustomers.
type ListQuery struct {
	Filter     Filter
	OrderBy    []string
	Pagination pagination.Params
}

// ListResult is one page of customers plus the filtered total.
type ListResult struct {
	Page       pagination.Page[models.Customer]
	TotalCount int64
}
