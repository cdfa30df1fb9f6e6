package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"reportsvc/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"Row",
	"ISIN",
	"Name",
	"Tax Rate",
	"Country Code",
	"Source Country Code",
	"Target Country Code",
	"Currency Code",
	"Income Amount",
	"Income Date",
	"Income Currency Rate",
	"Tax Payment Date",
	"Payed Tax Amount",
	"Tax Payment Currency Rate",
}

// Writer wraps csv.Writer for exporting detailed report rows as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteRows converts detailed report rows to CSV records and writes them.
func (w *Writer) WriteRows(rows []domain.DetailedReportRow) error {
	for i := range rows {
		if err := w.csv.Write(rowToRecord(&rows[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func rowToRecord(row *domain.DetailedReportRow) []string {
	record := make([]string, len(columns))
	record[0] = strconv.Itoa(row.RowN)
	record[1] = row.Isin
	record[2] = row.Name
	record[3] = row.TaxRate
	record[4] = row.CountryCode
	record[5] = row.SourceCountryCode
	record[6] = row.TargetCountryCode
	record[7] = row.CurrencyCode
	record[8] = formatMoney(row.IncomeAmount)
	record[9] = row.IncomeDate.Format("2006-01-02")
	record[10] = formatRate(row.IncomeCurrencyRate)
	if row.TaxPaymentDate != nil {
		record[11] = row.TaxPaymentDate.Format("2006-01-02")
	}
	if row.PayedTaxAmount != nil {
		record[12] = formatMoney(*row.PayedTaxAmount)
	}
	if row.TaxPaymentCurrencyRate != nil {
		record[13] = formatRate(*row.TaxPaymentCurrencyRate)
	}
	return record
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a report filename for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition
// header. Format: {sanitized_report_filename}_{YYYY-MM-DD}.csv
func BuildFilename(reportFilename string) string {
	sanitized := SanitizeFilename(reportFilename)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.csv", sanitized, date)
}
