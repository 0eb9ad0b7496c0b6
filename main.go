package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"inventorylite/internal/handlers"
	"inventorylite/internal/models"
	"inventorylite/internal/repositories"
	"inventorylite/internal/services"
	"inventorylite/pkg/rabbitmq"
	"inventorylite/webui"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DB_DRIVER", "sqlite")
	viper.SetDefault("DB_DSN", "inventory.db")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")

	// --- Repository (backed by the configured store) ---
	productRepo, err := newProductRepository(viper.GetString("DB_DRIVER"), viper.GetString("DB_DSN"))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	// --- Optional RabbitMQ client ---
	// Eventing is off unless a broker URL is configured; the service treats a
	// nil publisher as "skip publishing".
	var mqClient *rabbitmq.Client
	var eventPublisher services.EventPublisher
	if rabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		eventPublisher = mqClient
	}

	// --- Services / Handlers ---
	if err := seedProducts(productRepo); err != nil {
		log.Fatalf("Failed to seed products: %v", err)
	}

	productService := services.NewProductService(productRepo, eventPublisher)
	productHandler := handlers.NewProductHandler(productService)

	// --- Fiber app ---
	app := fiber.New()

	app.Use(requestid.New(requestid.Config{
		Generator: func() string { return uuid.NewString() },
	}))
	app.Use(logger.New())
	// The client may be served from a different origin; there is no auth
	// boundary to protect, so any origin is allowed.
	app.Use(cors.New())

	// --- API Routes ---
	api := app.Group("/api")
	productHandler.RegisterRoutes(api)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Embedded web client ---
	webui.Register(app)

	// --- Start RabbitMQ consumer in a goroutine ---
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for inventory events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received inventory event (Tag: %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil
			}
			if consumerErr := mqClient.ConsumeProductEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// newProductRepository builds the repository for the configured driver:
// GORM over sqlite or postgres, or the in-memory store for throwaway runs.
func newProductRepository(driver, dsn string) (repositories.ProductRepository, error) {
	var db *gorm.DB
	var err error

	switch driver {
	case "memory":
		return repositories.NewMockProductRepository(), nil
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	case "postgres":
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&models.Product{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return repositories.NewGORMProductRepository(db), nil
}

// seedProducts inserts the sample catalog on first run. An already-populated
// store is left untouched.
func seedProducts(repo repositories.ProductRepository) error {
	existing, err := repo.GetAll()
	if err != nil {
		return fmt.Errorf("failed to check existing products: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	products := []models.Product{
		{Name: "USB-C Dock", Category: "Accessories", Price: 119.99, Quantity: 18},
		{Name: "Wireless Mouse", Category: "Accessories", Price: 24.99, Quantity: 75},
		{Name: "Mechanical Keyboard", Category: "Accessories", Price: 89.50, Quantity: 32},
		{Name: "27\" Monitor", Category: "Displays", Price: 219.00, Quantity: 12},
		{Name: "Laptop Stand", Category: "Accessories", Price: 34.95, Quantity: 40},
		{Name: "Ethernet Adapter", Category: "Networking", Price: 14.99, Quantity: 60},
		{Name: "Webcam 1080p", Category: "Peripherals", Price: 49.99, Quantity: 22},
		{Name: "Noise-Cancel Headset", Category: "Peripherals", Price: 129.00, Quantity: 15},
		{Name: "Portable SSD 1TB", Category: "Storage", Price: 99.99, Quantity: 28},
		{Name: "HDMI Cable 2m", Category: "Cables", Price: 9.99, Quantity: 120},
	}

	now := time.Now().UTC()
	for i := range products {
		products[i].UpdatedAt = now
		if err := repo.Create(&products[i]); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", products[i].Name, err)
		}
		log.Printf("Seeded product: %s (ID: %d)", products[i].Name, products[i].ID)
	}
	return nil
}
