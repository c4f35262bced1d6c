package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/temcen/quickrec/internal/config"
	"github.com/temcen/quickrec/internal/messaging"
	"github.com/temcen/quickrec/internal/seed"
	"github.com/temcen/quickrec/pkg/models"
)

func main() {
	defaults := seed.DefaultOptions()

	outDir := flag.String("out-dir", ".", "Directory for products.csv and user_interactions.csv")
	users := flag.Int("users", defaults.Users, "Number of distinct users")
	interactions := flag.Int("interactions", defaults.Interactions, "Number of interaction events")
	days := flag.Int("days", defaults.Days, "Spread events over the last N days")
	seedValue := flag.Uint64("seed", defaults.Seed, "Random seed")
	publish := flag.Bool("kafka", false, "Also publish the interactions to the configured Kafka topic")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	opts := seed.Options{
		Users:        *users,
		Interactions: *interactions,
		Days:         *days,
		Seed:         *seedValue,
		Now:          defaults.Now,
	}

	products := seed.Catalog()
	events := seed.GenerateInteractions(products, opts)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.WithError(err).Fatal("Failed to create output directory")
	}

	productsPath := filepath.Join(*outDir, "products.csv")
	if err := writeFile(productsPath, func(f *os.File) error { return seed.WriteProductsCSV(f, products) }); err != nil {
		logger.WithError(err).Fatal("Failed to write products")
	}
	logger.WithFields(logrus.Fields{"path": productsPath, "products": len(products)}).Info("Product catalog written")

	interactionsPath := filepath.Join(*outDir, "user_interactions.csv")
	if err := writeFile(interactionsPath, func(f *os.File) error { return seed.WriteInteractionsCSV(f, events) }); err != nil {
		logger.WithError(err).Fatal("Failed to write interactions")
	}
	logger.WithFields(logrus.Fields{"path": interactionsPath, "events": len(events)}).Info("Interaction log written")

	if *publish {
		if err := publishInteractions(events, logger); err != nil {
			logger.WithError(err).Fatal("Failed to publish interactions")
		}
	}
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func publishInteractions(events []models.InteractionEvent, logger *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	publisher := messaging.NewInteractionPublisher(&cfg.Kafka, logger)
	defer publisher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	return publisher.Publish(ctx, events)
}
