package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	WaboxCartridges ExplosiveType = "Wabox Cartridges"
	Detonators      ExplosiveType = "Detonators"
	SafetyFuse      ExplosiveType = "Safety Fuse (m)"
)

type (
	ExplosiveType string

	Date struct {
		time.Time
	}

	// Month is a calendar month, derived from a Date by truncation.
	Month struct {
		Year  int
		Month time.Month
	}

	// Quantities maps an explosive type to a count. A missing key reads
	// as zero.
	Quantities map[ExplosiveType]int

	// IssuanceRecord is one outgoing transaction from the magazine to a
	// mine site. Immutable once appended, except Mine which is rewritten
	// in place when a mine is renamed.
	IssuanceRecord struct {
		Date       Date
		Mine       string
		IssuedBy   string
		ReceivedBy string
		Remarks    string
		Quantities Quantities
	}

	// StockRecord is one incoming transaction into the magazine.
	StockRecord struct {
		SerialNo      string
		ReceivingDate Date
		ExplosiveType ExplosiveType
		Quantity      int
	}
)

var (
	ErrDuplicateMine = errors.New("mine already exists")
	ErrUnknownMine   = errors.New("mine not registered")
)

// ExplosiveTypes returns the fixed enumeration in the column order used
// by every durable file and report.
func ExplosiveTypes() []ExplosiveType {
	return []ExplosiveType{WaboxCartridges, Detonators, SafetyFuse}
}

// IsValid returns true for one of the three known explosive types.
func (t ExplosiveType) IsValid() bool {
	switch t {
	case WaboxCartridges, Detonators, SafetyFuse:
		return true
	default:
		return false
	}
}

func (t ExplosiveType) String() string {
	return string(t)
}

// ParseExplosiveType resolves the textual form used in durable files.
func ParseExplosiveType(s string) (ExplosiveType, error) {
	t := ExplosiveType(strings.TrimSpace(s))
	if !t.IsValid() {
		return "", fmt.Errorf("unknown explosive type %q", s)
	}
	return t, nil
}

// NewDate creates a Date from year, month, day at UTC midnight.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses the wire format YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Equal compares two dates as calendar dates, ignoring time-of-day and
// location.
func (d Date) Equal(o Date) bool {
	y1, m1, d1 := d.Date()
	y2, m2, d2 := o.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// MonthOf truncates the date to its calendar month.
func (d Date) MonthOf() Month {
	return Month{Year: d.Time.Year(), Month: d.Time.Month()}
}

// String renders the month as "2006-01"; lexicographic order of the
// rendered form matches chronological order.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Before reports whether m is chronologically before o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// Get returns the quantity for a type, zero when absent.
func (q Quantities) Get(t ExplosiveType) int {
	return q[t]
}

// Clone returns an independent copy.
func (q Quantities) Clone() Quantities {
	out := make(Quantities, len(q))
	for k, v := range q {
		out[k] = v
	}
	return out
}

// IsZero reports whether every quantity is zero or absent.
func (q Quantities) IsZero() bool {
	for _, v := range q {
		if v != 0 {
			return false
		}
	}
	return true
}

func (r IssuanceRecord) Validate() error {
	var v ValidationError
	if err := r.Date.Validate(); err != nil {
		v.Add("date", err.Error())
	}
	if strings.TrimSpace(r.Mine) == "" {
		v.Add("mine", "mine is required")
	}
	for _, t := range ExplosiveTypes() {
		if r.Quantities.Get(t) < 0 {
			v.Add(fieldNameFor(t), "quantity cannot be negative")
		}
	}
	for t := range r.Quantities {
		if !t.IsValid() {
			v.Add("quantities", fmt.Sprintf("unknown explosive type %q", t))
		}
	}
	return v.OrNil()
}

func (r StockRecord) Validate() error {
	var v ValidationError
	if strings.TrimSpace(r.SerialNo) == "" {
		v.Add("serial_no", "serial number is required")
	}
	if err := r.ReceivingDate.Validate(); err != nil {
		v.Add("receiving_date", err.Error())
	}
	if !r.ExplosiveType.IsValid() {
		v.Add("explosive_type", fmt.Sprintf("unknown explosive type %q", r.ExplosiveType))
	}
	if r.Quantity <= 0 {
		v.Add("quantity", "quantity must be positive")
	}
	return v.OrNil()
}

func fieldNameFor(t ExplosiveType) string {
	switch t {
	case WaboxCartridges:
		return "wabox_cartridges"
	case Detonators:
		return "detonators"
	case SafetyFuse:
		return "safety_fuse"
	default:
		return "quantities"
	}
}
