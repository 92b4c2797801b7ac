package main

import (
	"os"
	"runtime/debug"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	_ "go.uber.org/automaxprocs"

	"payment-orchestrator/domain/payment"
	"payment-orchestrator/infrastructure/database"
	"payment-orchestrator/infrastructure/queue"
	"payment-orchestrator/infrastructure/service"
)

const defaultPort = "9999"

func main() {
	debug.SetGCPercent(500)

	log.SetLevel(log.LevelInfo)

	cfg := fiber.Config{
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		Concurrency:           2048,
		DisableStartupMessage: true,
		BodyLimit:             1 * 1024 * 1024,
		StreamRequestBody:     true,
	}
	api := fiber.New(cfg)

	db, err := database.NewPostgres()
	if err != nil {
		log.Fatal(err)
	}

	redisClient, err := database.NewRedis()
	if err != nil {
		log.Fatal(err)
	}

	eventQueue, err := queue.NewEventQueue()
	if err != nil {
		log.Fatal(err)
	}

	registry := payment.NewRegistry()
	if err = registerProcessors(registry); err != nil {
		log.Fatal(err)
	}

	router := payment.NewRouter(registry, payment.RouterConfig{})
	fraudScreen := service.NewHTTPFraudScreen(os.Getenv("FRAUD_SCREEN_URL"))
	settlement := payment.NewSettlementInitiator(service.NewHTTPSettlementEngine(os.Getenv("SETTLEMENT_ENGINE_URL")))
	repo := payment.NewRepository(db)
	analytics := payment.NewAnalyticsSink(redisClient)

	orchestrator := payment.NewOrchestrator(registry, router, fraudScreen, settlement, repo, eventQueue)
	payment.NewController(orchestrator, repo, analytics).InitRoutes(api)

	consumer := payment.NewNatsConsumer(
		eventQueue,
		service.NewWebhookNotifier(os.Getenv("WEBHOOK_ENDPOINT_URL")),
		service.NewReceiptNotifier(os.Getenv("RECEIPT_SERVICE_URL")),
		service.NewFraudFeedbackNotifier(os.Getenv("FRAUD_SCREEN_URL")),
		analytics,
	)
	defer consumer.Close()

	go func() {
		if err := consumer.StartProcess(); err != nil {
			log.Fatal(err)
		}
	}()

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = defaultPort
	}

	if err = api.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}

// registerProcessors wires the payment rails from environment configuration.
// Metric seeds are optimistic; the registry's rolling updates take over as
// real attempts flow through.
func registerProcessors(registry *payment.Registry) error {
	allCurrencies := []string{"USD", "EUR", "GBP", "KES", "TZS", "UGX", "RWF"}

	descriptors := []struct {
		desc payment.ProcessorDescriptor
		url  string
	}{
		{
			desc: payment.ProcessorDescriptor{
				Type:        "card_primary",
				Methods:     []string{"card", "digital_wallet"},
				Currencies:  allCurrencies,
				CostRating:  0.45,
				SuccessRate: 0.98,
				AvgLatency:  900 * time.Millisecond,
			},
			url: os.Getenv("PROCESSOR_CARD_PRIMARY_URL"),
		},
		{
			desc: payment.ProcessorDescriptor{
				Type:        "card_backup",
				Methods:     []string{"card", "digital_wallet"},
				Currencies:  allCurrencies,
				CostRating:  0.55,
				SuccessRate: 0.96,
				AvgLatency:  1200 * time.Millisecond,
			},
			url: os.Getenv("PROCESSOR_CARD_BACKUP_URL"),
		},
		{
			desc: payment.ProcessorDescriptor{
				Type:        "mobile_money",
				Methods:     []string{"mobile_money"},
				Currencies:  []string{"KES", "TZS", "UGX", "RWF"},
				CostRating:  0.30,
				SuccessRate: 0.95,
				AvgLatency:  2 * time.Second,
			},
			url: os.Getenv("PROCESSOR_MOBILE_MONEY_URL"),
		},
		{
			desc: payment.ProcessorDescriptor{
				Type:        "bank_transfer",
				Methods:     []string{"bank_transfer"},
				Currencies:  allCurrencies,
				CostRating:  0.15,
				SuccessRate: 0.93,
				AvgLatency:  3 * time.Second,
			},
			url: os.Getenv("PROCESSOR_BANK_TRANSFER_URL"),
		},
		{
			desc: payment.ProcessorDescriptor{
				Type:        "crypto",
				Methods:     []string{"crypto"},
				Currencies:  []string{"USD", "EUR", "GBP"},
				CostRating:  0.20,
				SuccessRate: 0.90,
				AvgLatency:  5 * time.Second,
			},
			url: os.Getenv("PROCESSOR_CRYPTO_URL"),
		},
	}

	for _, d := range descriptors {
		if d.url == "" {
			log.Warnf("processor %s has no endpoint configured, skipping", d.desc.Type)
			continue
		}
		if err := registry.Register(d.desc, service.NewHTTPProcessor(d.desc.Type, d.url)); err != nil {
			return err
		}
	}
	return nil
}
