package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"inventorylite/internal/handlers"
	"inventorylite/internal/models"
	"inventorylite/internal/repositories"
	"inventorylite/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbCounter int64

// setupApp builds a Fiber app for testing with its own in-memory sqlite
// database and the full handler/service/repository stack.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:handlertest%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.Product{}))

	productRepo := repositories.NewGORMProductRepository(db)
	productService := services.NewProductService(productRepo, nil) // no broker in tests
	productHandler := handlers.NewProductHandler(productService)

	app := fiber.New()
	api := app.Group("/api")
	productHandler.RegisterRoutes(api)

	return app
}

// TestMain suppresses logging during tests for cleaner output.
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}

func decodeProduct(t *testing.T, resp *http.Response) models.Product {
	t.Helper()

	var p models.Product
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	return p
}

func listProducts(t *testing.T, app *fiber.App) []models.Product {
	t.Helper()

	resp := doJSON(t, app, http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var products []models.Product
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	return products
}

func TestCreateProduct(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/products", map[string]interface{}{
		"name":     "Cable",
		"category": "Cables",
		"price":    9.99,
		"quantity": 10,
	})

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decodeProduct(t, resp)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Cable", created.Name)
	assert.Equal(t, 9.99, created.Price)
	assert.Equal(t, 10, created.Quantity)
	assert.False(t, created.UpdatedAt.IsZero())

	location := resp.Header.Get("Location")
	assert.Equal(t, fmt.Sprintf("/api/products/%d", created.ID), location)

	// The created record is retrievable at the Location reference.
	resp = doJSON(t, app, http.MethodGet, location, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	fetched := decodeProduct(t, resp)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "Cables", fetched.Category)
}

func TestCreateProductValidation(t *testing.T) {
	app := setupApp(t)

	cases := []struct {
		name  string
		body  map[string]interface{}
		field string
	}{
		{"empty name", map[string]interface{}{"name": "", "price": 1.0, "quantity": 1}, "Name"},
		{"blank name", map[string]interface{}{"name": "   ", "price": 1.0, "quantity": 1}, "Name"},
		{"name too long", map[string]interface{}{"name": strings.Repeat("x", 121), "price": 1.0, "quantity": 1}, "Name"},
		{"category too long", map[string]interface{}{"name": "Cable", "category": strings.Repeat("x", 81), "price": 1.0, "quantity": 1}, "Category"},
		{"negative price", map[string]interface{}{"name": "Cable", "price": -1.0, "quantity": 1}, "Price"},
		{"price above limit", map[string]interface{}{"name": "Cable", "price": 1000001.0, "quantity": 1}, "Price"},
		{"negative quantity", map[string]interface{}{"name": "Cable", "price": 1.0, "quantity": -1}, "Quantity"},
		{"fractional quantity", map[string]interface{}{"name": "Cable", "price": 1.0, "quantity": 1.5}, "quantity"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, app, http.MethodPost, "/api/products", tc.body)
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

			var body struct {
				Message string            `json:"message"`
				Errors  map[string]string `json:"errors"`
			}
			assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, "Validation failed", body.Message)
			assert.Contains(t, body.Errors, tc.field)
		})
	}

	// No partial write occurred.
	assert.Empty(t, listProducts(t, app))
}

func TestListProductsSortedByName(t *testing.T) {
	app := setupApp(t)

	for _, name := range []string{"Wireless Mouse", "27\" Monitor", "Laptop Stand"} {
		resp := doJSON(t, app, http.MethodPost, "/api/products", map[string]interface{}{
			"name": name, "price": 1.0, "quantity": 1,
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	products := listProducts(t, app)
	assert.Len(t, products, 3)
	assert.Equal(t, "27\" Monitor", products[0].Name)
	assert.Equal(t, "Laptop Stand", products[1].Name)
	assert.Equal(t, "Wireless Mouse", products[2].Name)
}

func TestGetProductNotFound(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/products/9999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// A non-integer id is treated as absence, not a server error.
	resp = doJSON(t, app, http.MethodGet, "/api/products/abc", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateProductNotFound(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodPut, "/api/products/9999", map[string]interface{}{
		"name": "Ghost", "price": 1.0, "quantity": 1,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Update on a missing id never creates a record.
	assert.Empty(t, listProducts(t, app))
}

func TestUpdateProductValidation(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/products", map[string]interface{}{
		"name": "Cable", "price": 9.99, "quantity": 10,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeProduct(t, resp)

	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/products/%d", created.ID), map[string]interface{}{
		"name": "", "price": 9.99, "quantity": 10,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	// The record is unchanged.
	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/products/%d", created.ID), nil)
	assert.Equal(t, "Cable", decodeProduct(t, resp).Name)
}

func TestDeleteProductNotFound(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodDelete, "/api/products/9999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// TestProductLifecycle walks the full create → update → delete flow.
func TestProductLifecycle(t *testing.T) {
	app := setupApp(t)

	// Create
	resp := doJSON(t, app, http.MethodPost, "/api/products", map[string]interface{}{
		"name": "Cable", "category": "Cables", "price": 9.99, "quantity": 10,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeProduct(t, resp)
	assert.NotZero(t, created.ID)
	assert.Equal(t, 9.99, created.Price)
	assert.Equal(t, 10, created.Quantity)

	path := fmt.Sprintf("/api/products/%d", created.ID)

	// Update replaces all mutable fields and refreshes the timestamp.
	time.Sleep(50 * time.Millisecond)
	resp = doJSON(t, app, http.MethodPut, path, map[string]interface{}{
		"name": "Cable v2", "category": "Cables", "price": 12.00, "quantity": 5,
	})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeProduct(t, resp)
	assert.Equal(t, "Cable v2", updated.Name)
	assert.Equal(t, 12.00, updated.Price)
	assert.Equal(t, 5, updated.Quantity)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt), "UpdatedAt must be strictly greater after update")

	// Delete, then the record is gone.
	resp = doJSON(t, app, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// A second delete yields not-found, not a crash.
	resp = doJSON(t, app, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateProductMalformedBody(t *testing.T) {
	app := setupApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
