package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"travel-booking-service/internal/domain/entity"
	"travel-booking-service/internal/infrastructure/config"
	"travel-booking-service/internal/infrastructure/persistence"
	storeRepo "travel-booking-service/internal/interface/repository"
	"travel-booking-service/internal/usecase"
	"travel-booking-service/pkg/apperror"
	"travel-booking-service/pkg/logger"
	"travel-booking-service/pkg/metrics"
)

// Fixtures is the seed file layout. Catalog documents are kept as raw records
// and decoded through the entity codecs.
type Fixtures struct {
	Airlines     []AirlineFixture `yaml:"airlines"`
	Airports     []AirportFixture `yaml:"airports"`
	Universities []entity.Record  `yaml:"universities"`
	Offers       []entity.Record  `yaml:"offers"`
	Deals        []entity.Record  `yaml:"deals"`
}

type AirlineFixture struct {
	Code    string `yaml:"code"`
	Name    string `yaml:"name"`
	Country string `yaml:"country"`
	Active  *bool  `yaml:"active"`
}

type AirportFixture struct {
	Code     string `yaml:"code"`
	Name     string `yaml:"name"`
	CityCode string `yaml:"cityCode"`
	CityName string `yaml:"cityName"`
	Country  string `yaml:"country"`
	Timezone string `yaml:"timezone"`
	GmtTz    string `yaml:"gmtOffset"`
}

// LoadFixtures parses a seed file
func LoadFixtures(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	return &f, nil
}

func main() {
	file := flag.String("file", "cmd/seed/fixtures.yaml", "fixtures file")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall timeout")
	flag.Parse()

	log := logger.NewLogger()
	defer log.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}
	if cfg.StoreDriver != config.StoreMongo {
		log.Fatal("Seeding requires the mongo store driver", "driver", cfg.StoreDriver)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal("Failed to read fixtures", "file", *file, "error", err)
	}
	fixtures, err := LoadFixtures(data)
	if err != nil {
		log.Fatal("Invalid fixtures", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	mongoClient, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	defer mongoClient.Disconnect(context.Background())

	store := storeRepo.NewMongoDocumentStore(persistence.GetDatabase(mongoClient, cfg.MongoDB), log)
	m := metrics.NewNopMetrics()
	seeder := &Seeder{
		universities: usecase.NewUniversityService(store, log, m),
		offers:       usecase.NewOfferService(store, log, m),
		log:          log,
	}

	if cfg.PostgresDSN != "" {
		db, err := persistence.NewPostgresDB(ctx, cfg.PostgresDSN, storeRepo.ReferenceModels()...)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		seeder.catalog = usecase.ReferenceCatalog{
			Airlines: storeRepo.NewGormAirlineRepository(db),
			Airports: storeRepo.NewGormAirportRepository(db),
		}
	} else if len(fixtures.Airlines)+len(fixtures.Airports) > 0 {
		log.Warn("POSTGRES_DSN not set; skipping airline and airport fixtures")
	}

	stats, err := seeder.Seed(ctx, fixtures)
	if err != nil {
		log.Fatal("Seeding failed", "error", err)
	}
	log.Info("Seeding completed",
		"created", stats.Created,
		"skipped", stats.Skipped,
		"reference", stats.Reference)
}

// SeedStats counts what one run did
type SeedStats struct {
	Created   int
	Skipped   int
	Reference int
}

// Seeder writes fixtures through the domain services so every document is
// validated the same way API writes are
type Seeder struct {
	universities *usecase.UniversityService
	offers       *usecase.OfferService
	catalog      usecase.ReferenceCatalog
	log          logger.Logger
}

// Seed loads every fixture. Documents whose slug already exists are skipped, which
// makes reruns safe.
func (s *Seeder) Seed(ctx context.Context, f *Fixtures) (*SeedStats, error) {
	stats := &SeedStats{}

	if s.catalog.Airlines != nil {
		for _, a := range f.Airlines {
			active := a.Active == nil || *a.Active
			if err := s.catalog.Airlines.Upsert(ctx, &entity.Airline{Code: a.Code, Name: a.Name, Country: a.Country, Active: active}); err != nil {
				return stats, err
			}
			stats.Reference++
		}
	}
	if s.catalog.Airports != nil {
		for _, a := range f.Airports {
			airport := &entity.Airport{
				Code:     a.Code,
				Name:     a.Name,
				CityCode: a.CityCode,
				CityName: a.CityName,
				Country:  a.Country,
				TzName:   a.Timezone,
				GmtTz:    a.GmtTz,
			}
			if err := s.catalog.Airports.Upsert(ctx, airport); err != nil {
				return stats, err
			}
			stats.Reference++
		}
	}

	for i, rec := range f.Universities {
		rawPrograms := rec["programs"]
		delete(rec, "programs")

		u, err := entity.UniversityFromRecord("", rec)
		if err != nil {
			return stats, fmt.Errorf("university #%d: %w", i, err)
		}
		programs, err := decodePrograms(u.Slug, rawPrograms)
		if err != nil {
			return stats, err
		}

		created, err := s.universities.Create(ctx, u)
		if err != nil {
			if s.skip(err, "university", u.Slug) {
				stats.Skipped++
				continue
			}
			return stats, fmt.Errorf("university %s: %w", u.Slug, err)
		}
		stats.Created++

		for _, p := range programs {
			if _, err := s.universities.CreateProgram(ctx, created.ID, p); err != nil {
				return stats, fmt.Errorf("university %s program %s: %w", u.Slug, p.Name, err)
			}
			stats.Created++
		}
	}

	for i, rec := range f.Offers {
		o, err := entity.OfferFromRecord("", rec)
		if err != nil {
			return stats, fmt.Errorf("offer #%d: %w", i, err)
		}
		if _, err := s.offers.Create(ctx, o); err != nil {
			if s.skip(err, "offer", o.Slug) {
				stats.Skipped++
				continue
			}
			return stats, fmt.Errorf("offer %s: %w", o.Slug, err)
		}
		stats.Created++
	}

	for i, rec := range f.Deals {
		d, err := entity.DealFromRecord("", rec)
		if err != nil {
			return stats, fmt.Errorf("deal #%d: %w", i, err)
		}
		if _, err := s.offers.CreateDeal(ctx, d); err != nil {
			return stats, fmt.Errorf("deal %q: %w", d.Title, err)
		}
		stats.Created++
	}

	return stats, nil
}

// decodePrograms reads a university's nested program list and validates every entry
// so a bad program never leaves its university half seeded
func decodePrograms(slug string, raw interface{}) ([]*entity.Program, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("university %s programs must be a list", slug)
	}
	programs := make([]*entity.Program, 0, len(items))
	for j, item := range items {
		var rec entity.Record
		switch v := item.(type) {
		case entity.Record:
			rec = v
		case map[string]interface{}:
			rec = v
		default:
			return nil, fmt.Errorf("university %s program #%d is not a mapping", slug, j)
		}
		p, err := entity.ProgramFromRecord("", rec)
		if err != nil {
			return nil, fmt.Errorf("university %s program #%d: %w", slug, j, err)
		}
		// CreateProgram replaces the owner with the stored university id
		p.UniversityID = slug
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("university %s program #%d: %w", slug, j, err)
		}
		programs = append(programs, p)
	}
	return programs, nil
}

func (s *Seeder) skip(err error, kind, slug string) bool {
	if !errors.Is(err, apperror.ErrConflict) {
		return false
	}
	s.log.Info("Already seeded", "kind", kind, "slug", slug)
	return true
}
