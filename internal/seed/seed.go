// Package seed bulk-registers companies from a YAML file. It goes through
// the registry service, so every seeded record follows the same protocol as
// a live registration (uniqueness, index mirroring, divergence reporting).
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"

	"registra/internal/registry"
	"registra/internal/types"

	"github.com/goccy/go-yaml"
	log "github.com/sirupsen/logrus"
)

type seedCompany struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	URL         string `yaml:"url"`
}

type seedFile struct {
	Companies []seedCompany `yaml:"companies"`
}

// Import registers every company in the file. Titles already present are
// skipped with a warning; any other failure aborts the import. Returns the
// number of companies registered.
func Import(ctx context.Context, svc *registry.Service, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	sf, err := parse(data)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}

	registered := 0
	for _, c := range sf.Companies {
		res, err := svc.Register(ctx, types.CompanyDraft{
			Title:       c.Title,
			Description: c.Description,
			URL:         c.URL,
		})
		if err != nil {
			if errors.Is(err, types.ErrDuplicate) {
				log.WithField("title", c.Title).Warn("already registered, skipping")
				continue
			}
			return registered, fmt.Errorf("register %q: %w", c.Title, err)
		}
		log.WithFields(log.Fields{"title": c.Title, "id": res.ID}).Info("registered")
		registered++
	}
	return registered, nil
}

func parse(data []byte) (seedFile, error) {
	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return seedFile{}, err
	}
	if len(sf.Companies) == 0 {
		return seedFile{}, fmt.Errorf("no companies in file")
	}
	return sf, nil
}
