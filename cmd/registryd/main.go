package main

import (
	"context"
	"errors"
	"os"
	"strconv"

	"registra/internal/api"
	"registra/internal/backends"
	"registra/internal/registry"
	"registra/internal/seed"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Info("The .env file not found.")
	}

	adminToken := os.Getenv("ADMIN_TOKEN")
	if adminToken == "" {
		log.Fatal("ADMIN_TOKEN must be set")
	}

	svc, err := buildService()
	if err != nil {
		log.Fatalf("Failed to initialize stores: %v", err)
	}

	if len(os.Args) > 1 && os.Args[1] == "seed" {
		path, err := seedPathArg(os.Args)
		if err != nil {
			log.Fatal(err)
		}
		n, err := seed.Import(context.Background(), svc, path)
		if err != nil {
			log.Fatalf("Seed failed after %d companies: %v", n, err)
		}
		log.Infof("Seeded %d companies", n)
		return
	}

	port, err := strconv.Atoi(getenv("PORT", "8080"))
	if err != nil {
		log.Fatalf("Invalid PORT: %v", err)
	}
	api.RunServer(port, svc, adminToken)
}

func buildService() (*registry.Service, error) {
	companies, err := backends.CompanyStoreFromEnv()
	if err != nil {
		return nil, err
	}
	index, err := backends.SearchIndexFromEnv()
	if err != nil {
		return nil, err
	}
	journal, err := backends.DivergenceJournalFromEnv()
	if err != nil {
		return nil, err
	}

	reporter := registry.NewDivergenceReporter(journal, nil)
	if topic := os.Getenv("DIVERGENCE_TOPIC_ARN"); topic != "" {
		pub, err := backends.PublisherFromEnv()
		if err != nil {
			return nil, err
		}
		reporter = registry.NewDivergenceReporter(journal, pub)
		reporter.TopicARN = topic
		reporter.FilterExpr = os.Getenv("DIVERGENCE_FILTER")
		reporter.FilterNegate = parseBoolean(os.Getenv("DIVERGENCE_FILTER_NEGATE"))
	}

	co := registry.NewCoordinator(companies, index, reporter)
	return registry.NewService(co), nil
}

func seedPathArg(args []string) (string, error) {
	if len(args) < 3 || args[2] == "" {
		return "", errors.New("usage: registryd seed <file>")
	}
	return args[2], nil
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func parseBoolean(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}
