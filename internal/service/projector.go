package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/catalog_api/internal/database"
	"github.com/GTDGit/catalog_api/internal/models"
	"github.com/GTDGit/catalog_api/internal/repository"
	"github.com/GTDGit/catalog_api/internal/utils"
)

// OptionEntry is one dimension of a projection.
type OptionEntry struct {
	Type  string
	Value string
}

// Projection maps variant type titles to the value a SKU holds, ordered by
// type title. The zero value is an empty projection.
type Projection struct {
	entries []OptionEntry
}

// Len returns the number of dimensions in the projection.
func (p Projection) Len() int { return len(p.entries) }

// Entries returns the dimensions in type title order.
func (p Projection) Entries() []OptionEntry {
	return slices.Clone(p.entries)
}

// Get returns the value held for typeTitle.
func (p Projection) Get(typeTitle string) (string, bool) {
	i, found := slices.BinarySearchFunc(p.entries, typeTitle, func(e OptionEntry, t string) int {
		return strings.Compare(e.Type, t)
	})
	if !found {
		return "", false
	}
	return p.entries[i].Value, true
}

// Map returns the projection as a plain map.
func (p Projection) Map() map[string]string {
	m := make(map[string]string, len(p.entries))
	for _, e := range p.entries {
		m[e.Type] = e.Value
	}
	return m
}

// MarshalJSON encodes the projection as a flat object with keys in type title
// order. An empty projection encodes as {}.
func (p Projection) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range p.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Type)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// BuildProjection folds the option rows of one SKU into a projection. Two rows
// for the same type title mean the one-value-per-dimension invariant was
// bypassed, reported as ErrCorruptState.
func BuildProjection(rows []models.OptionRow) (Projection, error) {
	entries := make([]OptionEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, OptionEntry{Type: r.TypeTitle, Value: r.ValueTitle})
	}
	slices.SortFunc(entries, func(a, b OptionEntry) int {
		return strings.Compare(a.Type, b.Type)
	})
	for i := 1; i < len(entries); i++ {
		if entries[i].Type == entries[i-1].Type {
			sku := ""
			if len(rows) > 0 {
				sku = rows[0].SKUID
			}
			return Projection{}, fmt.Errorf("%w: sku %s holds %q and %q for %q",
				utils.ErrCorruptState, sku, entries[i-1].Value, entries[i].Value, entries[i].Type)
		}
	}
	return Projection{entries: entries}, nil
}

// SKUProjection pairs a SKU with its projection.
type SKUProjection struct {
	SKUID   string     `json:"skuId"`
	Options Projection `json:"options"`
}

// SKUOptionsView is the read model of one SKU with its projected options.
type SKUOptionsView struct {
	ID        string     `json:"id"`
	ListingID string     `json:"listingId"`
	Title     string     `json:"title"`
	Options   Projection `json:"options"`
}

// ProjectorService derives variant projections from the registry. It keeps no
// state of its own.
type ProjectorService struct {
	db       *sqlx.DB
	listings *repository.ListingRepository
	skus     *repository.SKURepository
}

// NewProjectorService constructs a ProjectorService.
func NewProjectorService(db *sqlx.DB, listings *repository.ListingRepository, skus *repository.SKURepository) *ProjectorService {
	return &ProjectorService{db: db, listings: listings, skus: skus}
}

// Project returns the projection of skuID.
func (s *ProjectorService) Project(ctx context.Context, skuID string) (Projection, error) {
	view, err := s.SKUOptionsView(ctx, skuID)
	if err != nil {
		return Projection{}, err
	}
	return view.Options, nil
}

// SKUOptionsView returns the SKU with its projection, read from one snapshot.
func (s *ProjectorService) SKUOptionsView(ctx context.Context, skuID string) (*SKUOptionsView, error) {
	var view *SKUOptionsView
	err := database.WithTx(ctx, s.db, database.SnapshotOptions(s.db), func(tx *sqlx.Tx) error {
		skus := s.skus.WithTx(tx)
		sku, err := skus.GetByID(ctx, skuID)
		if err != nil {
			return notFound(err, "sku", skuID)
		}
		rows, err := skus.OptionRows(ctx, skuID)
		if err != nil {
			return err
		}
		p, err := BuildProjection(rows)
		if err != nil {
			return err
		}
		view = &SKUOptionsView{ID: sku.ID, ListingID: sku.ListingID, Title: sku.Title, Options: p}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// ProjectAll returns the projection of every SKU of listingID in SKU creation
// order. All rows are read from a single snapshot, so a concurrent option
// replacement is seen either fully or not at all.
func (s *ProjectorService) ProjectAll(ctx context.Context, listingID string) ([]SKUProjection, error) {
	var out []SKUProjection
	err := database.WithTx(ctx, s.db, database.SnapshotOptions(s.db), func(tx *sqlx.Tx) error {
		if _, err := s.listings.WithTx(tx).GetByID(ctx, listingID); err != nil {
			return notFound(err, "listing", listingID)
		}
		skus := s.skus.WithTx(tx)
		list, err := skus.GetByListingID(ctx, listingID)
		if err != nil {
			return err
		}
		rows, err := skus.OptionRowsOfListing(ctx, listingID)
		if err != nil {
			return err
		}
		bySKU := make(map[string][]models.OptionRow, len(list))
		for _, r := range rows {
			bySKU[r.SKUID] = append(bySKU[r.SKUID], r)
		}
		out = make([]SKUProjection, 0, len(list))
		for _, sku := range list {
			p, err := BuildProjection(bySKU[sku.ID])
			if err != nil {
				return err
			}
			out = append(out, SKUProjection{SKUID: sku.ID, Options: p})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
