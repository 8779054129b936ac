package persistence

import (
	"strings"

	"github.com/stockflow/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// sortColumns whitelists the columns a list endpoint may order by. Anything
// else, including SQL fragments, falls back to created_at.
type sortColumns map[string]struct{}

func columns(names ...string) sortColumns {
	cols := sortColumns{"id": {}, "created_at": {}, "updated_at": {}}
	for _, n := range names {
		cols[n] = struct{}{}
	}
	return cols
}

var (
	reportSortColumns   = columns("status", "title", "current_money_amount", "broken_rate")
	shipmentSortColumns = columns("status", "title")
	expenseSortColumns  = columns("name", "amount", "tag")
)

func (c sortColumns) pick(requested string) string {
	if _, ok := c[strings.TrimSpace(requested)]; ok {
		return strings.TrimSpace(requested)
	}
	return "created_at"
}

// sortDirection accepts asc in any case and defaults to DESC
func sortDirection(dir string) string {
	if strings.EqualFold(strings.TrimSpace(dir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// applyPaging orders and pages a list query. Ties on the sort column are
// broken by id so pages are stable.
func applyPaging(query *gorm.DB, filter shared.Filter, allowed sortColumns) *gorm.DB {
	query = query.Order(allowed.pick(filter.OrderBy) + " " + sortDirection(filter.OrderDir)).Order("id DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// searchPattern builds a case-insensitive LIKE pattern portable across postgres and sqlite
func searchPattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}
