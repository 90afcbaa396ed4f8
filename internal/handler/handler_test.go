package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/catalog_api/internal/cache"
	"github.com/GTDGit/catalog_api/internal/database"
	"github.com/GTDGit/catalog_api/internal/handler"
	"github.com/GTDGit/catalog_api/internal/middleware"
	"github.com/GTDGit/catalog_api/internal/repository"
	"github.com/GTDGit/catalog_api/internal/service"
	"github.com/GTDGit/catalog_api/internal/utils"
)

const secret = "test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

type server struct {
	t      *testing.T
	router *gin.Engine
	events *cache.EventLog
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatal(err)
	}

	users := repository.NewUserRepository(db)
	categories := repository.NewCategoryRepository(db)
	listings := repository.NewListingRepository(db)
	variants := repository.NewVariantRepository(db)
	skus := repository.NewSKURepository(db)
	conditions := repository.NewConditionRepository(db)
	events := cache.NewEventLog(16)

	listingSvc := service.NewListingService(db, listings, categories, users, events)
	skuSvc := service.NewSKUService(db, listings, variants, skus, conditions)
	handlers := &handler.Handlers{
		Health:   handler.NewHealthHandler(db),
		Taxonomy: handler.NewTaxonomyHandler(service.NewTaxonomyService(categories)),
		Listing:  handler.NewListingHandler(listingSvc),
		Variant:  handler.NewVariantHandler(service.NewVariantService(db, listings, variants), listingSvc),
		SKU:      handler.NewSKUHandler(skuSvc, service.NewProjectorService(db, listings, skus), listingSvc),
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	jwtMw := middleware.NewJWTMiddleware(secret, middleware.NewInvalidAuthRateLimiter(ctx, 2, time.Minute))

	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	handler.SetupRoutes(router, handlers, jwtMw.Handle(), middleware.UserSyncMiddleware(users))
	return &server{t: t, router: router, events: events}
}

func token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := utils.GenerateJWT(secret, userID, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

// do sends a request as user (anonymous when empty) and decodes the envelope.
func (s *server) do(method, path, user string, body any) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+token(s.t, user))
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		s.t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, env
}

// must sends a request that has to succeed with status and returns its data.
func (s *server) must(status int, method, path, user string, body any) json.RawMessage {
	s.t.Helper()
	code, env := s.do(method, path, user, body)
	if code != status {
		s.t.Fatalf("%s %s = %d %+v, want %d", method, path, code, env.Error, status)
	}
	return env.Data
}

func (s *server) id(status int, method, path, user string, body any) string {
	s.t.Helper()
	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(s.must(status, method, path, user, body), &out); err != nil {
		s.t.Fatal(err)
	}
	return out.ID
}

func (s *server) wantError(status int, code, method, path, user string, body any) {
	s.t.Helper()
	got, env := s.do(method, path, user, body)
	if got != status || env.Error == nil || env.Error.Code != code {
		s.t.Fatalf("%s %s = %d %+v, want %d %s", method, path, got, env.Error, status, code)
	}
}

func TestCatalogFlow(t *testing.T) {
	s := newServer(t)
	const seller = "seller-1"

	s.must(http.StatusOK, http.MethodGet, "/v1/health", "", nil)

	categoryID := s.id(http.StatusCreated, http.MethodPost, "/v1/categories", seller, gin.H{"title": "Apparel", "colour": "#336699"})
	subID := s.id(http.StatusCreated, http.MethodPost, "/v1/categories/"+categoryID+"/subcategories", seller, gin.H{"title": "Shirts"})
	attrID := s.id(http.StatusCreated, http.MethodPost, "/v1/categories/"+categoryID+"/attributes", seller,
		gin.H{"title": "Fit", "datatype": "enum", "values": []string{"Slim", "Regular"}})
	s.wantError(http.StatusBadRequest, "INVALID_ARGUMENT", http.MethodPost, "/v1/categories/"+categoryID+"/attributes", seller,
		gin.H{"title": "Season", "datatype": "date"})

	listingID := s.id(http.StatusCreated, http.MethodPost, "/v1/listings", seller, gin.H{"title": "Basic tee", "subCategoryId": subID})
	s.must(http.StatusOK, http.MethodPut, "/v1/listings/"+listingID+"/attributes/"+attrID, seller, gin.H{"value": "Slim"})
	s.wantError(http.StatusUnprocessableEntity, "TYPE_MISMATCH", http.MethodPut, "/v1/listings/"+listingID+"/attributes/"+attrID, seller, gin.H{"value": "Baggy"})

	colorID := s.id(http.StatusCreated, http.MethodPost, "/v1/listings/"+listingID+"/variants", seller, gin.H{"title": "Color"})
	sizeID := s.id(http.StatusCreated, http.MethodPost, "/v1/listings/"+listingID+"/variants", seller, gin.H{"title": "Size"})
	redID := s.id(http.StatusCreated, http.MethodPost, "/v1/variant-types/"+colorID+"/values", seller, gin.H{"title": "Red", "colour": "#ff0000"})
	blueID := s.id(http.StatusCreated, http.MethodPost, "/v1/variant-types/"+colorID+"/values", seller, gin.H{"title": "Blue"})
	mID := s.id(http.StatusCreated, http.MethodPost, "/v1/variant-types/"+sizeID+"/values", seller, gin.H{"title": "M"})
	s.wantError(http.StatusConflict, "DUPLICATE_DEFINITION", http.MethodPost, "/v1/variant-types/"+colorID+"/values", seller, gin.H{"title": "Red"})

	sku1 := s.id(http.StatusCreated, http.MethodPost, "/v1/listings/"+listingID+"/skus", seller,
		gin.H{"title": "sku1", "price": "12.50", "conditionId": "new", "stock": 3, "options": []string{redID, mID}})
	sku2 := s.id(http.StatusCreated, http.MethodPost, "/v1/listings/"+listingID+"/skus", seller,
		gin.H{"title": "sku2", "price": 9, "conditionId": "new"})
	s.wantError(http.StatusBadRequest, "INVALID_ARGUMENT", http.MethodPost, "/v1/listings/"+listingID+"/skus", seller,
		gin.H{"title": "bad", "price": 1, "conditionId": "new", "stock": -1})

	var all []struct {
		SKUID   string            `json:"skuId"`
		Options map[string]string `json:"options"`
	}
	if err := json.Unmarshal(s.must(http.StatusOK, http.MethodGet, "/v1/listings/"+listingID+"/skus", "", nil), &all); err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].SKUID != sku1 || all[1].SKUID != sku2 {
		t.Fatalf("skus = %+v", all)
	}
	if all[0].Options["Color"] != "Red" || all[0].Options["Size"] != "M" || len(all[1].Options) != 0 {
		t.Fatalf("projections = %+v", all)
	}

	s.must(http.StatusOK, http.MethodPut, "/v1/skus/"+sku1+"/options", seller, gin.H{"variantValueId": blueID})
	raw := s.must(http.StatusOK, http.MethodGet, "/v1/skus/"+sku1+"/options", "", nil)
	var view struct {
		ID        string          `json:"id"`
		ListingID string          `json:"listingId"`
		Options   json.RawMessage `json:"options"`
	}
	if err := json.Unmarshal(raw, &view); err != nil {
		t.Fatal(err)
	}
	if view.ListingID != listingID || string(view.Options) != `{"Color":"Blue","Size":"M"}` {
		t.Fatalf("view = %s", raw)
	}
	raw = s.must(http.StatusOK, http.MethodGet, "/v1/skus/"+sku2+"/options", "", nil)
	if err := json.Unmarshal(raw, &view); err != nil {
		t.Fatal(err)
	}
	if string(view.Options) != `{}` {
		t.Fatalf("empty sku options = %s", view.Options)
	}

	s.wantError(http.StatusConflict, "IN_USE", http.MethodDelete, "/v1/variant-types/"+colorID, seller, nil)
	s.must(http.StatusOK, http.MethodDelete, "/v1/skus/"+sku1+"/options/"+colorID, seller, nil)
	s.must(http.StatusOK, http.MethodDelete, "/v1/variant-types/"+colorID, seller, nil)

	s.must(http.StatusOK, http.MethodPatch, "/v1/skus/"+sku2+"/stock", seller, gin.H{"stock": 0})
	s.must(http.StatusOK, http.MethodPatch, "/v1/listings/"+listingID+"/visibility", seller, gin.H{"isPublic": true})
	s.must(http.StatusOK, http.MethodGet, "/v1/listings/"+listingID, "", nil)
	select {
	case e := <-s.events.Events():
		if e.ListingID != listingID || e.Type != service.EventListingViewed {
			t.Fatalf("event = %+v", e)
		}
	default:
		t.Fatal("view was not logged")
	}

	s.wantError(http.StatusConflict, "IN_USE", http.MethodDelete, "/v1/listings/"+listingID, seller, nil)
	s.wantError(http.StatusNotFound, "NOT_FOUND", http.MethodGet, "/v1/skus/missing/options", "", nil)
}

func TestCrossListingAndOwnership(t *testing.T) {
	s := newServer(t)
	categoryID := s.id(http.StatusCreated, http.MethodPost, "/v1/categories", "alice", gin.H{"title": "Toys"})
	subID := s.id(http.StatusCreated, http.MethodPost, "/v1/categories/"+categoryID+"/subcategories", "alice", gin.H{"title": "Blocks"})

	mine := s.id(http.StatusCreated, http.MethodPost, "/v1/listings", "alice", gin.H{"title": "Brick set", "subCategoryId": subID})
	other := s.id(http.StatusCreated, http.MethodPost, "/v1/listings", "alice", gin.H{"title": "Tower set", "subCategoryId": subID})
	typeID := s.id(http.StatusCreated, http.MethodPost, "/v1/listings/"+other+"/variants", "alice", gin.H{"title": "Color"})
	valueID := s.id(http.StatusCreated, http.MethodPost, "/v1/variant-types/"+typeID+"/values", "alice", gin.H{"title": "Red"})
	skuID := s.id(http.StatusCreated, http.MethodPost, "/v1/listings/"+mine+"/skus", "alice", gin.H{"title": "Box", "price": 5, "conditionId": "new"})

	s.wantError(http.StatusConflict, "CROSS_LISTING_MISMATCH", http.MethodPut, "/v1/skus/"+skuID+"/options", "alice", gin.H{"variantValueId": valueID})

	s.wantError(http.StatusForbidden, "FORBIDDEN", http.MethodPost, "/v1/listings/"+mine+"/variants", "mallory", gin.H{"title": "Size"})
	s.wantError(http.StatusForbidden, "FORBIDDEN", http.MethodDelete, "/v1/skus/"+skuID, "mallory", nil)
	s.wantError(http.StatusForbidden, "FORBIDDEN", http.MethodDelete, "/v1/variant-values/"+valueID, "mallory", nil)
	s.must(http.StatusOK, http.MethodDelete, "/v1/skus/"+skuID, "alice", nil)
}

func TestAuthentication(t *testing.T) {
	s := newServer(t)

	s.wantError(http.StatusUnauthorized, "UNAUTHORIZED", http.MethodPost, "/v1/categories", "", gin.H{"title": "Toys"})

	bad := func() (int, envelope) {
		req := httptest.NewRequest(http.MethodPost, "/v1/categories", bytes.NewBufferString(`{"title":"Toys"}`))
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		var env envelope
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
		return rec.Code, env
	}
	for i := range 2 {
		if code, env := bad(); code != http.StatusUnauthorized || env.Error.Code != "INVALID_TOKEN" {
			t.Fatalf("attempt %d = %d %+v", i+1, code, env.Error)
		}
	}
	if code, _ := bad(); code != http.StatusTooManyRequests {
		t.Fatalf("third invalid token = %d, want 429", code)
	}

	// Public reads need no token.
	s.must(http.StatusOK, http.MethodGet, "/v1/categories", "", nil)
	s.must(http.StatusOK, http.MethodGet, "/v1/conditions", "", nil)
}
