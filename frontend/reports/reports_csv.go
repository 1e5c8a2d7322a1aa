package reports

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"stocksence/models"
)

var salesHeader = []string{"sale_id", "sale_date", "product_id", "product_name", "quantity", "price", "total_amount", "sold_by", "verified", "verification_code"}

func writeSalesCSV(w io.Writer, sales []models.Sale) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(salesHeader); err != nil {
		return err
	}
	for _, s := range sales {
		record := []string{
			s.ID,
			s.SaleDate.UTC().Format(time.RFC3339),
			s.ProductID,
			csvSafe(s.ProductName),
			strconv.FormatInt(s.Quantity, 10),
			strconv.FormatFloat(s.Price, 'f', 2, 64),
			strconv.FormatFloat(s.TotalAmount, 'f', 2, 64),
			s.SoldBy,
			strconv.FormatBool(s.IsVerified),
			s.VerificationCode,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// csvSafe keeps spreadsheet applications from evaluating user text as a formula.
func csvSafe(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}
