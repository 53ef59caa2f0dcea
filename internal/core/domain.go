package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Reserved category tokens. CategorySalary marks scheduler-originated
// deposits and is the duplicate-detection key for "already paid this month".
const (
	CategorySalary        = "salary"
	CategoryUncategorized = "uncategorized"
)

// ISODate is the canonical persisted date layout.
const ISODate = "2006-01-02"

// MonthToken is the layout for calendar-month scoping (watermark, summaries).
const MonthToken = "2006-01"

type (
	Kind string

	Date struct {
		time.Time
	}

	// Transaction is one ledger row. Rows are append-mostly: created once,
	// never updated, deleted only by explicit user action.
	Transaction struct {
		ID          int64
		Date        Date
		Kind        Kind
		Amount      Money
		Category    string
		Description string
	}

	// SalarySetting is one row of salary configuration history. At most one
	// row is active at a time; superseded rows are deactivated, not deleted.
	SalarySetting struct {
		ID        int64
		Payday    int // day of month, 1-31
		Amount    Money
		StartDate Date
		Active    bool
	}

	// DailyDefault is a recurring entry replayed once per calendar day.
	DailyDefault struct {
		ID          int64
		Kind        Kind
		Amount      Money
		Category    string
		Description string
		Active      bool
	}

	// BudgetAlertConfig is the singleton alert row. Budget is nil when no
	// threshold has been configured; LastAlertMonth is empty until the first
	// alert fires and then holds a YYYY-MM token.
	BudgetAlertConfig struct {
		Budget         *Money
		LastAlertMonth string
	}

	// BudgetStatus is the result of one monitor read. Reading it may have
	// advanced the watermark as a side effect.
	BudgetStatus struct {
		IsOver  bool
		Budget  Money
		Current Money
		Month   string
	}

	// MonthSummary aggregates one calendar month. Balance is income minus
	// expense and may be negative.
	MonthSummary struct {
		Month   string
		Income  Money
		Expense Money
		Balance Money
	}
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidKind   = errors.New("invalid kind")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrMissingField  = errors.New("missing field")
	ErrConfiguration = errors.New("invalid configuration")
	ErrStorage       = errors.New("storage error")
)

// ParseKind matches income/expense case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(Income):
		return Income, nil
	case string(Expense):
		return Expense, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

func (k Kind) Validate() error {
	if k != Income && k != Expense {
		return fmt.Errorf("%w: %q", ErrInvalidKind, string(k))
	}
	return nil
}

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a wall-clock time to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a canonical ISO calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(ISODate, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// ISO returns the canonical YYYY-MM-DD form.
func (d Date) ISO() string {
	return d.Format(ISODate)
}

// Month returns the YYYY-MM token of the date.
func (d Date) Month() string {
	return d.Format(MonthToken)
}

// MonthOf returns the YYYY-MM token for a wall-clock time.
func MonthOf(t time.Time) string {
	return t.Format(MonthToken)
}

// ValidMonthToken reports whether s is a well-formed YYYY-MM token.
func ValidMonthToken(s string) bool {
	_, err := time.Parse(MonthToken, s)
	return err == nil
}

// NormalizeCategory collapses empty or whitespace-only categories to the
// uncategorized sentinel.
func NormalizeCategory(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return CategoryUncategorized
	}
	return s
}

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return fmt.Errorf("%w: zero date", ErrInvalidDate)
	}
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	return nil
}

func (s SalarySetting) Validate() error {
	if s.Payday < 1 || s.Payday > 31 {
		return fmt.Errorf("%w: payday %d out of range 1-31", ErrConfiguration, s.Payday)
	}
	if s.Amount.Cents <= 0 {
		return fmt.Errorf("%w: salary amount must be positive", ErrConfiguration)
	}
	return nil
}

func (d DailyDefault) Validate() error {
	if err := d.Kind.Validate(); err != nil {
		return err
	}
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	return nil
}
