// Package importer bulk-loads customers from CSV files through the customer
// service, so imported rows get the same validation and email rules as the API.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"favorites-catalog/internal/domain"
	customersvc "favorites-catalog/internal/service/customer"
)

type CustomerCreator interface {
	Create(ctx context.Context, in customersvc.Input) (*domain.Customer, error)
}

// Result summarizes an import run.
type Result struct {
	Imported int
	Skipped  int
}

// CSVImporter reads `name,email` rows. Column order is taken from the header.
type CSVImporter struct {
	reader    *csv.Reader
	customers CustomerCreator
	logger    *log.Logger
}

func NewCSVImporter(r io.Reader, customers CustomerCreator, logger *log.Logger) *CSVImporter {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:    csvr,
		customers: customers,
		logger:    logger,
	}
}

// Run creates one customer per row. Rows rejected by validation or as
// duplicates are logged and skipped; any other error stops the run.
func (i *CSVImporter) Run(ctx context.Context) (Result, error) {
	var res Result

	headers, err := i.reader.Read()
	if err != nil {
		return res, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, col := range []string{"name", "email"} {
		if _, ok := index[col]; !ok {
			return res, fmt.Errorf("missing %q column", col)
		}
	}

	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return res, fmt.Errorf("read row %d: %w", line, err)
		}

		in := customersvc.Input{
			Name:  pick(record, index, "name"),
			Email: pick(record, index, "email"),
		}
		if in.Name == "" && in.Email == "" {
			continue
		}

		if _, err := i.customers.Create(ctx, in); err != nil {
			if skippable(err) {
				i.logger.Printf("importer: skip row line=%d email=%q reason=%v", line, in.Email, err)
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("create customer on line %d: %w", line, err)
		}
		res.Imported++
	}

	return res, nil
}

func skippable(err error) bool {
	return domain.IsValidation(err) || errors.Is(err, domain.ErrAlreadyExists)
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
