package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"inventorylite/internal/models"
	"inventorylite/internal/repositories"
	"inventorylite/internal/services"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleListProducts retrieves all products, ordered by name.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts()
	if err != nil {
		log.Printf("Error listing products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve products",
		})
	}
	return c.JSON(products)
}

// HandleGetProduct retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return notFound(c, c.Params("id"))
	}

	product, err := h.service.GetProduct(id)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return notFound(c, c.Params("id"))
		}
		log.Printf("Error getting product %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve product",
		})
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product and returns it with a Location
// header pointing at the get-by-id endpoint.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	input, err := h.parseAndValidate(c)
	if input == nil {
		return err
	}

	created, err := h.service.CreateProduct(*input)
	if err != nil {
		log.Printf("Error creating product: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create product",
		})
	}

	c.Location(fmt.Sprintf("/api/products/%d", created.ID))
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleUpdateProduct overwrites an existing product's mutable fields.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return notFound(c, c.Params("id"))
	}

	input, parseErr := h.parseAndValidate(c)
	if input == nil {
		return parseErr
	}

	if err := h.service.UpdateProduct(id, *input); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return notFound(c, c.Params("id"))
		}
		log.Printf("Error updating product %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update product",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleDeleteProduct removes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return notFound(c, c.Params("id"))
	}

	if err := h.service.DeleteProduct(id); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return notFound(c, c.Params("id"))
		}
		log.Printf("Error deleting product %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete product",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// parseAndValidate binds the request body to a ProductInput and runs struct
// validation. A nil input means the error response was already written:
// malformed JSON is 400, a wrong-typed field (e.g. a fractional quantity) or
// a constraint violation is 422 naming the field.
func (h *ProductHandler) parseAndValidate(c *fiber.Ctx) (*models.ProductInput, error) {
	var input models.ProductInput
	if err := c.BodyParser(&input); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return nil, c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"message": "Validation failed",
				"errors": map[string]string{
					typeErr.Field: fmt.Sprintf("must be of type %s", typeErr.Type),
				},
			})
		}
		log.Printf("Error parsing request body: %v", err)
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Category = strings.TrimSpace(input.Category)

	if err := h.validate.Struct(input); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return nil, c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	return &input, nil
}

func notFound(c *fiber.Ctx, id string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"message": fmt.Sprintf("Product with ID %s not found", id),
	})
}
