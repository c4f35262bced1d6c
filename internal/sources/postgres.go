package sources

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/temcen/quickrec/internal/catalog"
	"github.com/temcen/quickrec/pkg/models"
)

// DatabaseQuerier interface for database operations
type DatabaseQuerier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

const (
	productsQuery = `
		SELECT product_id, COALESCE(name, ''), COALESCE(category, ''), COALESCE(description, '')
		FROM products
		ORDER BY product_id`

	interactionsQuery = `
		SELECT user_id, product_id, interaction_type, COALESCE(timestamp, to_timestamp(0))
		FROM user_interactions
		ORDER BY timestamp`
)

// PostgresCatalogSource loads the catalog from the products table, ordered by id so the
// catalog order is stable across restarts.
type PostgresCatalogSource struct {
	db     DatabaseQuerier
	logger *logrus.Logger
}

func NewPostgresCatalogSource(db DatabaseQuerier, logger *logrus.Logger) *PostgresCatalogSource {
	return &PostgresCatalogSource{db: db, logger: logger}
}

func (s *PostgresCatalogSource) Name() string { return "postgres:products" }

func (s *PostgresCatalogSource) LoadProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.Query(ctx, productsQuery)
	if err != nil {
		return nil, fmt.Errorf("products query failed: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Description); err != nil {
			return nil, fmt.Errorf("%w: scan product: %v", catalog.ErrMalformedSource, err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("products query failed: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"source":   s.Name(),
		"products": len(products),
	}).Info("Catalog loaded")

	return products, nil
}

// PostgresInteractionSource loads the interaction log from user_interactions. Rows with
// an unknown interaction type are skipped.
type PostgresInteractionSource struct {
	db     DatabaseQuerier
	logger *logrus.Logger
}

func NewPostgresInteractionSource(db DatabaseQuerier, logger *logrus.Logger) *PostgresInteractionSource {
	return &PostgresInteractionSource{db: db, logger: logger}
}

func (s *PostgresInteractionSource) Name() string { return "postgres:user_interactions" }

func (s *PostgresInteractionSource) LoadInteractions(ctx context.Context) ([]models.InteractionEvent, error) {
	rows, err := s.db.Query(ctx, interactionsQuery)
	if err != nil {
		return nil, fmt.Errorf("interactions query failed: %w", err)
	}
	defer rows.Close()

	events := []models.InteractionEvent{}
	skipped := 0
	for rows.Next() {
		var (
			e    models.InteractionEvent
			kind string
		)
		if err := rows.Scan(&e.UserID, &e.ProductID, &kind, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("%w: scan interaction: %v", catalog.ErrMalformedSource, err)
		}
		e.Type = models.InteractionType(kind)
		if !e.Type.Valid() {
			skipped++
			continue
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("interactions query failed: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"source":  s.Name(),
		"events":  len(events),
		"skipped": skipped,
	}).Info("Interaction log loaded")

	return events, nil
}
