package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/temcen/quickrec/internal/catalog"
	"github.com/temcen/quickrec/internal/validation"
	"github.com/temcen/quickrec/pkg/models"
)

// JSONCatalogSource reads a JSON array of products, validated against the embedded
// product-catalog schema before decoding. Null text fields decode to empty strings.
type JSONCatalogSource struct {
	path      string
	validator *validation.SchemaValidator
	logger    *logrus.Logger
}

func NewJSONCatalogSource(path string, validator *validation.SchemaValidator, logger *logrus.Logger) *JSONCatalogSource {
	return &JSONCatalogSource{path: path, validator: validator, logger: logger}
}

func (s *JSONCatalogSource) Name() string { return "json:" + s.path }

func (s *JSONCatalogSource) LoadProducts(ctx context.Context) ([]models.Product, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return s.decode(data)
}

func (s *JSONCatalogSource) decode(data []byte) ([]models.Product, error) {
	if err := s.validator.ValidateProductCatalog(data).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrMalformedSource, err)
	}

	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrMalformedSource, err)
	}
	if products == nil {
		products = []models.Product{}
	}

	s.logger.WithFields(logrus.Fields{
		"source":   s.Name(),
		"products": len(products),
	}).Info("Catalog loaded")

	return products, nil
}
