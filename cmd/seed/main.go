// Seed loads listing and post fixtures from a JSON file straight into
// the database, bypassing the HTTP API. Intended for local development
// and demo environments.
//
// Usage:
//
//	seed -file fixtures.json [-env local]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/glowpages/spaseek/internal/config"
	dbRedis "github.com/glowpages/spaseek/internal/db/redis"
	"github.com/glowpages/spaseek/internal/domain/geo"
	"github.com/glowpages/spaseek/internal/domain/record"
	recordsrepo "github.com/glowpages/spaseek/internal/repository/records"
	cataloguc "github.com/glowpages/spaseek/internal/usecase/catalog"
)

type fixtureCoordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type fixtureTreatment struct {
	Name  string   `json:"name"`
	Price *float64 `json:"price,omitempty"`
}

type fixtureListing struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Location      string             `json:"location,omitempty"`
	Neighborhood  string             `json:"neighborhood,omitempty"`
	Treatments    []fixtureTreatment `json:"treatments,omitempty"`
	Practitioners []string           `json:"practitioners,omitempty"`
	Tags          []string           `json:"tags,omitempty"`
	GoogleStars   *float64           `json:"google_stars,omitempty"`
	GoogleReviews *float64           `json:"google_reviews,omitempty"`
	YelpStars     *float64           `json:"yelp_stars,omitempty"`
	YelpReviews   *float64           `json:"yelp_reviews,omitempty"`
	FreeConsult   *bool              `json:"free_consult,omitempty"`
	Coordinate    *fixtureCoordinate `json:"coordinate,omitempty"`
	CreatedAt     int64              `json:"created_at,omitempty"`
}

type fixturePost struct {
	ID         string             `json:"id"`
	Title      string             `json:"title"`
	Excerpt    string             `json:"excerpt,omitempty"`
	Tags       []string           `json:"tags,omitempty"`
	Upvotes    *float64           `json:"upvotes,omitempty"`
	Comments   *float64           `json:"comments,omitempty"`
	Saved      *bool              `json:"saved,omitempty"`
	Coordinate *fixtureCoordinate `json:"coordinate,omitempty"`
	CreatedAt  int64              `json:"created_at,omitempty"`
}

type fixtureFile struct {
	Listings []fixtureListing `json:"listings"`
	Posts    []fixturePost    `json:"posts"`
}

func main() {
	var (
		file = flag.String("file", "", "path to the fixtures JSON file (required)")
		env  = flag.String("env", config.GetEnv(), "config environment name")
	)
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*file, *env); err != nil {
		log.Fatalf("seed: %v", err)
	}
}

func run(file, env string) error {
	data, err := os.ReadFile(filepath.Clean(file))
	if err != nil {
		return fmt.Errorf("read fixtures: %w", err)
	}

	var fixtures fixtureFile
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("parse fixtures: %w", err)
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	repo := recordsrepo.New(store, cfg.Storage.KeyPrefix)
	catalog := cataloguc.New(repo)

	var loaded, failed int
	for _, l := range fixtures.Listings {
		if _, err := catalog.UpsertListing(ctx, listingParams(l)); err != nil {
			log.Printf("listing %s: %v", l.ID, err)
			failed++
			continue
		}
		loaded++
	}
	for _, p := range fixtures.Posts {
		if _, err := catalog.UpsertPost(ctx, postParams(p)); err != nil {
			log.Printf("post %s: %v", p.ID, err)
			failed++
			continue
		}
		loaded++
	}

	log.Printf("done: loaded=%d failed=%d", loaded, failed)
	if failed > 0 {
		return fmt.Errorf("%d records failed", failed)
	}
	return nil
}

func listingParams(l fixtureListing) record.ListingParams {
	return record.ListingParams{
		ID:            l.ID,
		Name:          l.Name,
		Location:      l.Location,
		Neighborhood:  l.Neighborhood,
		Treatments:    treatments(l.Treatments),
		Practitioners: l.Practitioners,
		Tags:          l.Tags,
		GoogleStars:   l.GoogleStars,
		GoogleReviews: l.GoogleReviews,
		YelpStars:     l.YelpStars,
		YelpReviews:   l.YelpReviews,
		FreeConsult:   l.FreeConsult,
		Coordinate:    coordinate(l.Coordinate),
		CreatedAt:     l.CreatedAt,
	}
}

func postParams(p fixturePost) record.PostParams {
	return record.PostParams{
		ID:         p.ID,
		Title:      p.Title,
		Excerpt:    p.Excerpt,
		Tags:       p.Tags,
		Upvotes:    p.Upvotes,
		Comments:   p.Comments,
		Saved:      p.Saved,
		Coordinate: coordinate(p.Coordinate),
		CreatedAt:  p.CreatedAt,
	}
}

func treatments(ts []fixtureTreatment) []record.Treatment {
	if len(ts) == 0 {
		return nil
	}
	out := make([]record.Treatment, len(ts))
	for i, t := range ts {
		out[i] = record.Treatment{Name: t.Name, Price: t.Price}
	}
	return out
}

func coordinate(c *fixtureCoordinate) *geo.Coordinate {
	if c == nil {
		return nil
	}
	coord := geo.NewCoordinate(c.Lat, c.Lng)
	return &coord
}
