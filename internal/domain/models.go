package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Date is a calendar date without a time component. It marshals as
// "2006-01-02" and maps to a SQL DATE column.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate builds a Date from year, month and day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("parsing date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}

func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = v
		return nil
	case string:
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return fmt.Errorf("scanning date %q: %w", v, err)
		}
		d.Time = t
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

// User is the identity resolved from a bearer token by the auth service.
type User struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
	Role   UserRole  `json:"role"`
}

// Report represents one uploaded brokerage document and its processing
// and payment state.
type Report struct {
	ReportID               uuid.UUID           `db:"report_id" json:"report_id"`
	UserID                 uuid.UUID           `db:"user_id" json:"user_id"`
	Filename               string              `db:"filename" json:"filename"`
	CreatedAt              time.Time           `db:"created_at" json:"created_at"`
	ParseStatus            ParseStatus         `db:"parse_status" json:"parse_status"`
	PaymentStatus          PaymentStatus       `db:"payment_status" json:"payment_status"`
	Price                  decimal.NullDecimal `db:"price" json:"price"`
	ParsedAt               *time.Time          `db:"parsed_at" json:"parsed_at"`
	Broker                 *string             `db:"broker" json:"broker"`
	PeriodStart            *Date               `db:"period_start" json:"period_start"`
	PeriodEnd              *Date               `db:"period_end" json:"period_end"`
	Year                   *int                `db:"year" json:"year"`
	ParseNote              *string             `db:"parse_note" json:"parse_note"`
	ParserVersion          *string             `db:"parser_version" json:"parser_version"`
	PaymentStatusUpdatedAt *time.Time          `db:"payment_status_updated_at" json:"payment_status_updated_at"`
	IsDeleted              bool                `db:"is_deleted" json:"-"`
	DeletedAt              *time.Time          `db:"deleted_at" json:"-"`
}

// IsReadyToUse reports whether the detailed rows of the report may be
// served: the report is parsed and either payed or free.
func (r *Report) IsReadyToUse() bool {
	if r.ParseStatus != ParseStatusParsed {
		return false
	}
	if r.PaymentStatus == PaymentStatusPayed {
		return true
	}
	return r.Price.Valid && r.Price.Decimal.IsZero()
}

// ReportRowData carries the parsed fields of a single transaction line.
type ReportRowData struct {
	Isin                   string   `db:"isin" json:"isin"`
	Name                   string   `db:"name" json:"name"`
	TaxRate                string   `db:"tax_rate" json:"tax_rate"`
	CountryCode            string   `db:"country_code" json:"country_code"`
	CurrencyCode           string   `db:"currency_code" json:"currency_code"`
	IncomeAmount           float64  `db:"income_amount" json:"income_amount"`
	IncomeDate             Date     `db:"income_date" json:"income_date"`
	IncomeCurrencyRate     float64  `db:"income_currency_rate" json:"income_currency_rate"`
	TaxPaymentDate         *Date    `db:"tax_payment_date" json:"tax_payment_date"`
	PayedTaxAmount         *float64 `db:"payed_tax_amount" json:"payed_tax_amount"`
	TaxPaymentCurrencyRate *float64 `db:"tax_payment_currency_rate" json:"tax_payment_currency_rate"`
}

// ReportRow is a persisted transaction line belonging to a report.
// (report_id, row_n) is the primary key; row_n is a dense 1..N sequence.
type ReportRow struct {
	ReportID uuid.UUID `db:"report_id" json:"report_id"`
	RowN     int       `db:"row_n" json:"row_n"`
	ReportRowData
}

// DetailedReportRow is a ReportRow extended with the derived country
// pair used downstream for tax-treaty calculations. It is never stored.
type DetailedReportRow struct {
	ReportRow
	SourceCountryCode string `json:"source_country_code"`
	TargetCountryCode string `json:"target_country_code"`
}

// Period is the inclusive date range covered by a parsed report.
type Period struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// ParsedReport is the successful output of the parse worker.
type ParsedReport struct {
	Broker  string          `json:"broker"`
	Version string          `json:"version"`
	Period  Period          `json:"period"`
	Note    *string         `json:"note"`
	Rows    []ReportRowData `json:"rows"`
}

// ParsingResult is the payload the parse worker submits for a report,
// successful or not.
type ParsingResult struct {
	IsParsed     bool          `json:"is_parsed"`
	Message      *string       `json:"message"`
	ParsedReport *ParsedReport `json:"parsed_report"`
}

// ParsedReportInfo is the set of report fields derived from a
// successful parse result, persisted in one statement together with the
// parsed status.
type ParsedReportInfo struct {
	Broker      string
	Version     string
	Note        *string
	PeriodStart Date
	PeriodEnd   Date
	Year        *int
	Price       decimal.Decimal
	ParsedAt    time.Time
}

// Promocode is an admin-provisioned discount instrument. A nil UserID
// means the code is usable by anyone; Discount is a percentage.
type Promocode struct {
	Promocode  string     `db:"promocode" json:"promocode"`
	UserID     *uuid.UUID `db:"user_id" json:"user_id"`
	ValidFrom  time.Time  `db:"valid_from" json:"valid_from"`
	ValidTo    time.Time  `db:"valid_to" json:"valid_to"`
	RestUsages int        `db:"rest_usages" json:"rest_usages"`
	Discount   int        `db:"discount" json:"discount"`
}

// YearRowsCount is the number of parsed rows of a report that fall into
// one calendar year.
type YearRowsCount struct {
	ReportID uuid.UUID `db:"report_id" json:"-"`
	Year     int       `db:"year" json:"year"`
	Count    int       `db:"count" json:"count"`
}

// ReportWithParts is a report together with its per-year row counts,
// used by the list endpoint.
type ReportWithParts struct {
	Report
	Parts []YearRowsCount `json:"parts"`
}
