package stock

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"stocksence/validation"
)

var importHeader = []string{"name", "description", "quantity", "price", "category"}

// ImportCSV upserts products from a CSV with the header
// name,description,quantity,price,category. Rows whose name matches an
// existing product of the company (case-insensitive) update it; other rows
// create a new product. Bad rows are counted and skipped.
func ImportCSV(ctx context.Context, st Catalog, reader io.Reader) (ImportSummary, error) {
	summary := ImportSummary{}
	r := csv.NewReader(reader)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return summary, &validation.Error{Messages: []string{"read header: " + err.Error()}}
	}
	if !validHeader(header) {
		return summary, &validation.Error{Messages: []string{"invalid CSV header; expected " + strings.Join(importHeader, ",")}}
	}

	existing, err := st.Products(ctx)
	if err != nil {
		return summary, err
	}
	byName := make(map[string]string, len(existing))
	for _, p := range existing {
		byName[strings.ToLower(p.Name)] = p.ID
	}

	line := 1
	for {
		record, err := r.Read()
		line++
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			summary.rowError(line, err)
			continue
		}
		in, err := parseRow(record)
		if err != nil {
			summary.rowError(line, err)
			continue
		}

		key := strings.ToLower(strings.TrimSpace(in.Name))
		if id, ok := byName[key]; ok {
			patch := validation.ProductPatch{
				Name:        &in.Name,
				Description: &in.Description,
				Quantity:    &in.Quantity,
				Price:       &in.Price,
				Category:    &in.Category,
			}
			if _, err := st.UpdateProduct(ctx, id, patch); err != nil {
				summary.rowError(line, err)
				continue
			}
			summary.Updated++
			continue
		}

		p, err := st.AddProduct(ctx, in)
		if err != nil {
			summary.rowError(line, err)
			continue
		}
		byName[strings.ToLower(p.Name)] = p.ID
		summary.Inserted++
	}
	return summary, nil
}

func validHeader(header []string) bool {
	if len(header) < len(importHeader) {
		return false
	}
	for i, want := range importHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return false
		}
	}
	return true
}

func parseRow(record []string) (validation.NewProductInput, error) {
	if len(record) < len(importHeader) {
		return validation.NewProductInput{}, fmt.Errorf("expected %d columns, got %d", len(importHeader), len(record))
	}
	qty, err := strconv.ParseInt(strings.TrimSpace(record[2]), 10, 64)
	if err != nil {
		return validation.NewProductInput{}, fmt.Errorf("invalid quantity %q", record[2])
	}
	price, err := decimal.NewFromString(strings.TrimSpace(record[3]))
	if err != nil {
		return validation.NewProductInput{}, fmt.Errorf("invalid price %q", record[3])
	}
	return validation.NewProductInput{
		Name:        strings.TrimSpace(record[0]),
		Description: strings.TrimSpace(record[1]),
		Quantity:    qty,
		Price:       price.InexactFloat64(),
		Category:    strings.TrimSpace(record[4]),
	}, nil
}

func (s *ImportSummary) rowError(line int, err error) {
	s.Errors++
	s.RowErrors = append(s.RowErrors, fmt.Sprintf("row %d: %v", line, err))
}
