package core

import (
	"errors"
	"strings"
	"time"
)

const (
	DimensionCategory Dimension = "category"
	DimensionStore    Dimension = "store"
)

type (
	// Dimension is the closed set of reference kinds an expense can point at.
	Dimension string

	Date struct {
		time.Time
	}

	// DateRange is an inclusive filter on the expense date. Either bound may
	// be zero, in which case that side is unconstrained.
	DateRange struct {
		Start Date
		End   Date
	}

	// Expense is the fact row as stored.
	Expense struct {
		ID         int64
		UserID     int64
		Amount     Money
		Date       Date // zero when the row has no date
		StoreID    *int64
		CategoryID *int64
	}

	// ExpenseInput is one raw record handed in by create or bulk upload.
	// All fields arrive as free text; Store and Category are labels, not ids.
	ExpenseInput struct {
		Amount   string `json:"amount"`
		Date     string `json:"date"`
		Store    string `json:"store"`
		Category string `json:"category"`
	}

	// ExpensePatch is a partial update. Nil fields are left unchanged.
	// A non-nil Store or Category that trims to "" clears the reference.
	ExpensePatch struct {
		Amount   *string `json:"amount"`
		Date     *string `json:"date"`
		Store    *string `json:"store"`
		Category *string `json:"category"`
	}

	// ExpenseDetail is an expense with its dimension names resolved.
	// Store and Category are "" when the reference is null.
	ExpenseDetail struct {
		ID       int64  `json:"id"`
		Amount   Money  `json:"amount"`
		Date     string `json:"date"`
		Store    string `json:"store"`
		Category string `json:"category"`
	}

	DailyTotal struct {
		Date   string `json:"date"`
		Amount Money  `json:"amount"`
	}

	MonthlyTotal struct {
		Month  string `json:"month"` // YYYY-MM
		Amount Money  `json:"amount"`
	}

	DimensionTotal struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		Amount Money  `json:"amount"`
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidSort        = errors.New("invalid sort")
	ErrNotFound           = errors.New("expense not found")
	ErrMissingDimensionID = errors.New("missing dimension id")
	ErrUnknownDimension   = errors.New("unknown dimension")
	ErrMissingOwner       = errors.New("missing user id")
	ErrNoIDs              = errors.New("no expense ids given")
	ErrBatchTooLarge      = errors.New("batch too large")
)

// ParseDimension maps the request path segment to a Dimension.
func ParseDimension(s string) (Dimension, error) {
	switch Dimension(s) {
	case DimensionCategory:
		return DimensionCategory, nil
	case DimensionStore:
		return DimensionStore, nil
	default:
		return "", ErrUnknownDimension
	}
}

// Other returns the opposite dimension. Detail views join the other
// dimension's name onto each row.
func (d Dimension) Other() Dimension {
	if d == DimensionCategory {
		return DimensionStore
	}
	return DimensionCategory
}

func (d Dimension) String() string {
	return string(d)
}

const dateLayout = "2006-01-02"

// ParseDate parses a calendar date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// ParseDateRange builds an inclusive range from optional bounds. An empty
// string leaves that side open.
func ParseDateRange(start, end string) (DateRange, error) {
	var rng DateRange
	if strings.TrimSpace(start) != "" {
		d, err := ParseDate(start)
		if err != nil {
			return DateRange{}, err
		}
		rng.Start = d
	}
	if strings.TrimSpace(end) != "" {
		d, err := ParseDate(end)
		if err != nil {
			return DateRange{}, err
		}
		rng.End = d
	}
	return rng, nil
}

// NormalizeLabel is the form store and category names are deduplicated on:
// lowercased with runs of whitespace collapsed to single spaces.
func NormalizeLabel(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
