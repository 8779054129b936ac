package report

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/shared"
)

// Duration selects the reporting period for statistics
type Duration string

const (
	DurationDay   Duration = "DAY"
	DurationWeek  Duration = "WEEK"
	DurationMonth Duration = "MONTH"
	DurationYear  Duration = "YEAR"
)

// ParseDuration parses a period name, defaulting to DAY
func ParseDuration(s string) (Duration, error) {
	if s == "" {
		return DurationDay, nil
	}
	d := Duration(strings.ToUpper(s))
	switch d {
	case DurationDay, DurationWeek, DurationMonth, DurationYear:
		return d, nil
	default:
		return "", shared.InvalidInputf("unknown statistics duration %q", s)
	}
}

// Since returns the start of the period containing now. Weeks start on Sunday.
func (d Duration) Since(now time.Time) time.Time {
	y, m, day := now.Date()
	loc := now.Location()
	switch d {
	case DurationWeek:
		return time.Date(y, m, day-int(now.Weekday()), 0, 0, 0, 0, loc)
	case DurationMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case DurationYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(y, m, day, 0, 0, 0, 0, loc)
	}
}

// StatisticRow is one line item joined with its report's breakage figures
type StatisticRow struct {
	ProductName       string
	SoldUnits         decimal.Decimal
	SoldUnitsAmount   decimal.Decimal
	BrokenRate        decimal.Decimal
	BrokenMoneyAmount decimal.Decimal
}

// ProductStatistic aggregates sales and breakage for one product
type ProductStatistic struct {
	Name              string
	Count             decimal.Decimal
	Amount            decimal.Decimal
	BrokenRate        decimal.Decimal
	BrokenMoneyAmount decimal.Decimal
}

// Statistics summarises reports over a period
type Statistics struct {
	TotalProducts          decimal.Decimal
	TotalAmount            decimal.Decimal
	TotalBrokenRate        decimal.Decimal
	TotalBrokenMoneyAmount decimal.Decimal
	Products               []ProductStatistic
}

// Aggregate groups rows by product name and totals them
func Aggregate(rows []StatisticRow) Statistics {
	byName := make(map[string]*ProductStatistic)
	for _, row := range rows {
		ps, ok := byName[row.ProductName]
		if !ok {
			ps = &ProductStatistic{Name: row.ProductName}
			byName[row.ProductName] = ps
		}
		ps.Count = ps.Count.Add(row.SoldUnits)
		ps.Amount = ps.Amount.Add(row.SoldUnitsAmount)
		ps.BrokenRate = ps.BrokenRate.Add(row.BrokenRate)
		ps.BrokenMoneyAmount = ps.BrokenMoneyAmount.Add(row.BrokenMoneyAmount)
	}

	stats := Statistics{Products: make([]ProductStatistic, 0, len(byName))}
	for _, ps := range byName {
		stats.Products = append(stats.Products, *ps)
		stats.TotalProducts = stats.TotalProducts.Add(ps.Count)
		stats.TotalAmount = stats.TotalAmount.Add(ps.Amount)
		stats.TotalBrokenRate = stats.TotalBrokenRate.Add(ps.BrokenRate)
		stats.TotalBrokenMoneyAmount = stats.TotalBrokenMoneyAmount.Add(ps.BrokenMoneyAmount)
	}
	sort.Slice(stats.Products, func(i, j int) bool {
		return stats.Products[i].Name < stats.Products[j].Name
	})
	return stats
}
