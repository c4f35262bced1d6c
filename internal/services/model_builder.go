package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/temcen/quickrec/internal/catalog"
	"github.com/temcen/quickrec/pkg/models"
)

// ModelBuilder loads both sources and builds the similarity index and popularity ranking.
type ModelBuilder struct {
	catalogSource     CatalogSource
	interactionSource InteractionSource
	metrics           *Metrics
	logger            *logrus.Logger
}

func NewModelBuilder(
	catalogSource CatalogSource,
	interactionSource InteractionSource,
	metrics *Metrics,
	logger *logrus.Logger,
) *ModelBuilder {
	return &ModelBuilder{
		catalogSource:     catalogSource,
		interactionSource: interactionSource,
		metrics:           metrics,
		logger:            logger,
	}
}

// Build never returns nil. Source failures other than a malformed interaction log yield
// an unavailable Model wrapping ErrBuildUnavailable.
func (b *ModelBuilder) Build(ctx context.Context) *Model {
	start := time.Now()
	model := b.build(ctx)
	b.metrics.ObserveBuild(model, time.Since(start))

	if !model.Ready() {
		entry := b.logger.WithError(model.Err())
		if errors.Is(model.Err(), fs.ErrNotExist) {
			entry = entry.WithField("hint", "run cmd/seed to generate products.csv and user_interactions.csv")
		}
		entry.Error("Recommender build failed, serving will be unavailable")
		return model
	}

	b.logger.WithFields(logrus.Fields{
		"build_id":     model.BuildID,
		"products":     model.Catalog.Len(),
		"interactions": model.Interactions.Len(),
		"content":      model.Similarity.State(),
		"popularity":   model.Popularity.State(),
		"duration":     time.Since(start),
	}).Info("Recommender model built")

	return model
}

func (b *ModelBuilder) build(ctx context.Context) *Model {
	var (
		products []models.Product
		events   []models.InteractionEvent
		logErr   error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = b.catalogSource.LoadProducts(gctx)
		if err != nil {
			return fmt.Errorf("load catalog from %s: %w", b.catalogSource.Name(), err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		events, err = b.interactionSource.LoadInteractions(gctx)
		if err != nil {
			if errors.Is(err, catalog.ErrMalformedSource) {
				logErr = err
				events = nil
				return nil
			}
			return fmt.Errorf("load interactions from %s: %w", b.interactionSource.Name(), err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return UnavailableModel(fmt.Errorf("%w: %w", ErrBuildUnavailable, err))
	}

	if len(products) == 0 {
		b.logger.Warn("Catalog is empty")
	}
	if len(events) == 0 && logErr == nil {
		b.logger.Warn("Interaction log is empty")
	}

	store, err := catalog.NewStore(products)
	if err != nil {
		return UnavailableModel(fmt.Errorf("%w: %w", ErrBuildUnavailable, err))
	}
	interactions := catalog.NewInteractionLog(events)

	model := &Model{
		BuildID:      uuid.New(),
		BuiltAt:      time.Now(),
		Catalog:      store,
		Interactions: interactions,
	}

	// Both steps are pure and absorb their own failures.
	var steps errgroup.Group
	steps.Go(func() error {
		model.Similarity = BuildSimilarityIndex(store, b.logger)
		return nil
	})
	steps.Go(func() error {
		model.Popularity = BuildPopularityRanking(store, interactions, logErr, b.logger)
		return nil
	})
	_ = steps.Wait()

	return model
}
