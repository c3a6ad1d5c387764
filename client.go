// Package spaseek is the embedded client for the spaseek search engine.
// It wires the catalog and search services directly onto a database
// connection, bypassing the HTTP API. Useful for batch jobs and tests.
package spaseek

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glowpages/spaseek/internal/db"
	dbRedis "github.com/glowpages/spaseek/internal/db/redis"
	"github.com/glowpages/spaseek/internal/domain/geo"
	"github.com/glowpages/spaseek/internal/domain/record"
	recordsrepo "github.com/glowpages/spaseek/internal/repository/records"
	cataloguc "github.com/glowpages/spaseek/internal/usecase/catalog"
	searchuc "github.com/glowpages/spaseek/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "spaseek:"
)

// Option configures the client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs     []string
	username  string
	password  string
	keyPrefix string
}

// WithRedis sets the Redis address and password.
func WithRedis(addr, password string) Option {
	return func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	}
}

// WithUsername sets the database username (Redis ACL).
func WithUsername(username string) Option {
	return func(c *clientConfig) {
		c.username = username
	}
}

// WithKeyPrefix overrides the storage key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(c *clientConfig) {
		c.keyPrefix = prefix
	}
}

// Client is the spaseek embedded entry point.
type Client struct {
	store      db.Store
	searchSvc  *searchuc.Service
	catalogSvc *cataloguc.Service
}

// New creates a Client and connects to the database.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{keyPrefix: defaultKeyPrefix}
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("spaseek: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("spaseek: create store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("spaseek: database not ready: %w", err)
	}

	return wireClient(store, cfg), nil
}

func wireClient(store db.Store, cfg *clientConfig) *Client {
	repo := recordsrepo.New(store, cfg.keyPrefix)
	return &Client{
		store:      store,
		searchSvc:  searchuc.New(repo),
		catalogSvc: cataloguc.New(repo),
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// --- Write path ---

// Treatment is an offered treatment with an optional price point.
type Treatment struct {
	Name  string
	Price *float64
}

// Coordinate is a latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64
	Lng float64
}

// Listing is the write-path input for a marketplace listing.
type Listing struct {
	ID            string
	Name          string
	Location      string
	Neighborhood  string
	Treatments    []Treatment
	Practitioners []string
	Tags          []string
	GoogleStars   *float64
	GoogleReviews *float64
	YelpStars     *float64
	YelpReviews   *float64
	FreeConsult   *bool
	Coordinate    *Coordinate
	CreatedAt     int64 // unix millis; zero means now
}

// Post is the write-path input for a community post.
type Post struct {
	ID         string
	Title      string
	Excerpt    string
	Tags       []string
	Upvotes    *float64
	Comments   *float64
	Saved      *bool
	Coordinate *Coordinate
	CreatedAt  int64 // unix millis; zero means now
}

// UpsertListing validates and stores a listing.
func (c *Client) UpsertListing(ctx context.Context, l Listing) error {
	params := record.ListingParams{
		ID:            l.ID,
		Name:          l.Name,
		Location:      l.Location,
		Neighborhood:  l.Neighborhood,
		Treatments:    toInternalTreatments(l.Treatments),
		Practitioners: l.Practitioners,
		Tags:          l.Tags,
		GoogleStars:   l.GoogleStars,
		GoogleReviews: l.GoogleReviews,
		YelpStars:     l.YelpStars,
		YelpReviews:   l.YelpReviews,
		FreeConsult:   l.FreeConsult,
		Coordinate:    toInternalCoordinate(l.Coordinate),
		CreatedAt:     l.CreatedAt,
	}
	if _, err := c.catalogSvc.UpsertListing(ctx, params); err != nil {
		return fmt.Errorf("upsert listing: %w", err)
	}
	return nil
}

// UpsertPost validates and stores a community post.
func (c *Client) UpsertPost(ctx context.Context, p Post) error {
	params := record.PostParams{
		ID:         p.ID,
		Title:      p.Title,
		Excerpt:    p.Excerpt,
		Tags:       p.Tags,
		Upvotes:    p.Upvotes,
		Comments:   p.Comments,
		Saved:      p.Saved,
		Coordinate: toInternalCoordinate(p.Coordinate),
		CreatedAt:  p.CreatedAt,
	}
	if _, err := c.catalogSvc.UpsertPost(ctx, params); err != nil {
		return fmt.Errorf("upsert post: %w", err)
	}
	return nil
}

// DeleteListing removes a listing.
func (c *Client) DeleteListing(ctx context.Context, id string) error {
	return c.catalogSvc.Delete(ctx, record.KindListing, id)
}

// DeletePost removes a post.
func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.catalogSvc.Delete(ctx, record.KindPost, id)
}

// UpvotePost bumps a post's upvote count by one and returns the new count.
func (c *Client) UpvotePost(ctx context.Context, id string) (int64, error) {
	return c.catalogSvc.Upvote(ctx, id)
}

func toInternalTreatments(ts []Treatment) []record.Treatment {
	if len(ts) == 0 {
		return nil
	}
	out := make([]record.Treatment, len(ts))
	for i, t := range ts {
		out[i] = record.Treatment{Name: t.Name, Price: t.Price}
	}
	return out
}

func toInternalCoordinate(c *Coordinate) *geo.Coordinate {
	if c == nil {
		return nil
	}
	coord := geo.NewCoordinate(c.Lat, c.Lng)
	return &coord
}
