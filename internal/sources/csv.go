package sources

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/temcen/quickrec/internal/catalog"
	"github.com/temcen/quickrec/pkg/models"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// CSVCatalogSource reads products from a CSV file with a header row containing
// product_id, name, category and description. Empty cells become empty strings.
type CSVCatalogSource struct {
	path   string
	logger *logrus.Logger
}

func NewCSVCatalogSource(path string, logger *logrus.Logger) *CSVCatalogSource {
	return &CSVCatalogSource{path: path, logger: logger}
}

func (s *CSVCatalogSource) Name() string { return "csv:" + s.path }

func (s *CSVCatalogSource) LoadProducts(ctx context.Context) ([]models.Product, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()

	return s.read(ctx, f)
}

func (s *CSVCatalogSource) read(ctx context.Context, r io.Reader) ([]models.Product, error) {
	rows, header, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if header == nil {
		return []models.Product{}, nil
	}

	idCol, ok := header["product_id"]
	if !ok {
		return nil, fmt.Errorf("%w: catalog is missing column product_id", catalog.ErrMalformedSource)
	}

	products := make([]models.Product, 0, len(rows))
	for i, row := range rows {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		id, err := strconv.ParseInt(strings.TrimSpace(cell(row, idCol)), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: invalid product_id %q", catalog.ErrMalformedSource, i+2, cell(row, idCol))
		}

		products = append(products, models.Product{
			ID:          id,
			Name:        cellByName(row, header, "name"),
			Category:    cellByName(row, header, "category"),
			Description: cellByName(row, header, "description"),
		})
	}

	s.logger.WithFields(logrus.Fields{
		"source":   s.Name(),
		"products": len(products),
	}).Info("Catalog loaded")

	return products, nil
}

// CSVInteractionSource reads events from a CSV file with a header row containing
// user_id, product_id, interaction_type and timestamp. Rows with unparseable ids or an
// unknown interaction type are skipped; a missing column makes the source malformed.
type CSVInteractionSource struct {
	path      string
	validator *validator.Validate
	logger    *logrus.Logger
}

func NewCSVInteractionSource(path string, logger *logrus.Logger) *CSVInteractionSource {
	return &CSVInteractionSource{path: path, validator: validator.New(), logger: logger}
}

func (s *CSVInteractionSource) Name() string { return "csv:" + s.path }

func (s *CSVInteractionSource) LoadInteractions(ctx context.Context) ([]models.InteractionEvent, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open interactions file: %w", err)
	}
	defer f.Close()

	return s.read(ctx, f)
}

func (s *CSVInteractionSource) read(ctx context.Context, r io.Reader) ([]models.InteractionEvent, error) {
	rows, header, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if header == nil {
		return []models.InteractionEvent{}, nil
	}

	for _, col := range []string{"user_id", "product_id", "interaction_type"} {
		if _, ok := header[col]; !ok {
			return nil, fmt.Errorf("%w: interactions missing column %s", catalog.ErrMalformedSource, col)
		}
	}

	events := make([]models.InteractionEvent, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		e, err := s.parseRow(row, header)
		if err != nil {
			skipped++
			s.logger.WithError(err).Debug("Skipping interaction row")
			continue
		}
		events = append(events, e)
	}

	entry := s.logger.WithFields(logrus.Fields{
		"source":  s.Name(),
		"events":  len(events),
		"skipped": skipped,
	})
	if skipped > 0 {
		entry.Warn("Interaction log loaded with skipped rows")
	} else {
		entry.Info("Interaction log loaded")
	}

	return events, nil
}

func (s *CSVInteractionSource) parseRow(row []string, header map[string]int) (models.InteractionEvent, error) {
	userID, err := parseID(cellByName(row, header, "user_id"))
	if err != nil {
		return models.InteractionEvent{}, fmt.Errorf("user_id: %w", err)
	}
	productID, err := parseID(cellByName(row, header, "product_id"))
	if err != nil {
		return models.InteractionEvent{}, fmt.Errorf("product_id: %w", err)
	}

	e := models.InteractionEvent{
		UserID:    userID,
		ProductID: productID,
		Type:      models.InteractionType(strings.TrimSpace(cellByName(row, header, "interaction_type"))),
	}
	if err := s.validator.Struct(e); err != nil {
		return models.InteractionEvent{}, err
	}

	// Timestamps play no part in ranking; an unparseable one is left zero.
	if ts, ok := parseTimestamp(cellByName(row, header, "timestamp")); ok {
		e.Timestamp = ts
	}
	return e, nil
}

// readTable returns the data rows and a column-name index. A nil index means the input
// had no header at all.
func readTable(r io.Reader) ([][]string, map[string]int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headerRow, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read header: %v", catalog.ErrMalformedSource, err)
	}

	header := make(map[string]int, len(headerRow))
	for i, name := range headerRow {
		header[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", catalog.ErrMalformedSource, err)
	}
	return rows, header, nil
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

func cellByName(row []string, header map[string]int, name string) string {
	col, ok := header[name]
	if !ok {
		return ""
	}
	return cell(row, col)
}

// parseID accepts integer ids, including the "101.0" form written by tools that store
// ids as floats.
func parseID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return int64(f), nil
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
