package core

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"strconv"
	"strings"
	"time"
)

// DateFormat is the wire format for entry dates. Lexicographic order on
// these strings is chronological order, which the month filter and the
// export sort both rely on.
const DateFormat = "2006-01-02"

type (
	// Client is a billable counterparty with a rate, VAT flag and the
	// activity labels offered when logging entries against it.
	Client struct {
		ID            string   `json:"id"`
		Name          string   `json:"name"`
		Rate          float64  `json:"rate"`
		VATApplicable bool     `json:"vatApplicable"`
		Activities    []string `json:"activities"`
		Hidden        bool     `json:"hidden,omitempty"`
		InvoiceText   string   `json:"invoiceText,omitempty"`
	}

	// Entry is one logged unit of billable time/expense for a client on a
	// specific date.
	Entry struct {
		ID           string  `json:"id"`
		ClientID     string  `json:"clientId"`
		Date         string  `json:"date"`
		Hours        float64 `json:"hours"`
		Activity     string  `json:"activity"`
		Notes        string  `json:"notes,omitempty"`
		TravelHours  float64 `json:"travelHours,omitempty"`
		Miles        int     `json:"miles,omitempty"`
		ExpenseValue float64 `json:"expenseValue,omitempty"`
	}

	// Settings holds the document-wide knobs. The mileage rate applies to
	// all clients uniformly at aggregation time; changing it retroactively
	// changes historical totals.
	Settings struct {
		MileageRate float64 `json:"mileageRate"`
	}

	// Document is the single unit of persistence: the whole data set,
	// loaded wholesale at startup and written back wholesale after every
	// mutation.
	Document struct {
		Clients  []Client `json:"clients"`
		Entries  []Entry  `json:"entries"`
		Settings Settings `json:"settings"`
	}
)

// DefaultMileageRate is used when a document carries no settings.
const DefaultMileageRate = 0.45

var (
	ErrEmptyName       = errors.New("client name is required")
	ErrInvalidRate     = errors.New("hourly rate must be positive")
	ErrNoActivities    = errors.New("at least one activity is required")
	ErrMissingDate     = errors.New("date is required")
	ErrInvalidDate     = errors.New("date must be YYYY-MM-DD")
	ErrInvalidHours    = errors.New("hours must be positive")
	ErrNegativeAmount  = errors.New("travel hours, miles and expenses cannot be negative")
	ErrNegativeMileage = errors.New("mileage rate cannot be negative")
	ErrUnknownClient   = errors.New("unknown client")
)

// IsValidation reports whether err is one of the domain validation errors,
// the kind the UI surfaces next to the form instead of as a failure.
func IsValidation(err error) bool {
	for _, v := range []error{
		ErrEmptyName, ErrInvalidRate, ErrNoActivities,
		ErrMissingDate, ErrInvalidDate, ErrInvalidHours,
		ErrNegativeAmount, ErrNegativeMileage,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

func (c Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.Rate <= 0 {
		return ErrInvalidRate
	}
	if len(c.Activities) == 0 {
		return ErrNoActivities
	}
	for _, a := range c.Activities {
		if strings.TrimSpace(a) == "" {
			return ErrNoActivities
		}
	}
	return nil
}

func (e Entry) Validate() error {
	if e.ClientID == "" {
		return ErrUnknownClient
	}
	if e.Date == "" {
		return ErrMissingDate
	}
	if _, err := time.Parse(DateFormat, e.Date); err != nil {
		return ErrInvalidDate
	}
	if e.Hours <= 0 {
		return ErrInvalidHours
	}
	if e.TravelHours < 0 || e.Miles < 0 || e.ExpenseValue < 0 {
		return ErrNegativeAmount
	}
	return nil
}

func (s Settings) Validate() error {
	if s.MileageRate < 0 {
		return ErrNegativeMileage
	}
	return nil
}

// FindClient returns the client with the given id, or false when absent.
func (d Document) FindClient(id string) (Client, bool) {
	for _, c := range d.Clients {
		if c.ID == id {
			return c, true
		}
	}
	return Client{}, false
}

// FindClientByName resolves a client by case-insensitive exact name match.
// Hidden clients are included: they remain valid targets for entries.
func (d Document) FindClientByName(name string) (Client, bool) {
	name = strings.TrimSpace(name)
	for _, c := range d.Clients {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Client{}, false
}

// NewID generates an identifier from the current millisecond timestamp plus
// a random suffix, both base-36. Sufficient for a single-user single-process
// data set, not a global uniqueness guarantee.
func NewID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// Timestamp alone still separates ids issued a millisecond apart.
		return strconv.FormatInt(time.Now().UnixMilli(), 36)
	}
	suffix := binary.BigEndian.Uint64(b[:]) >> 16
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + strconv.FormatUint(suffix, 36)
}
