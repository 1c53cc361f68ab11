package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	acctapp "smartwaste-cloud/internal/accounts/application"
	acctpostgres "smartwaste-cloud/internal/accounts/infrastructure/postgres"
	accthttp "smartwaste-cloud/internal/accounts/interfaces/http"
	apihttp "smartwaste-cloud/internal/api/http"
	"smartwaste-cloud/internal/auth"
	binapp "smartwaste-cloud/internal/bins/application"
	bins "smartwaste-cloud/internal/bins/domain"
	"smartwaste-cloud/internal/observability/metrics"
	"smartwaste-cloud/internal/reports"
	"smartwaste-cloud/internal/stream"
	busmqtt "smartwaste-cloud/internal/telemetry/interfaces/mqtt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init()

	records, err := binapp.LoadProvisioning(cfg.BinsConfigPath)
	if err != nil {
		logger.Fatalf("bin provisioning error: %v", err)
	}
	registry, err := bins.NewRegistry(records)
	if err != nil {
		logger.Fatalf("bin registry error: %v", err)
	}

	hub := stream.NewHub(logger)
	go hub.Run(context.Background())

	updater, err := binapp.NewUpdaterService(registry, hub, systemClock{}, logger)
	if err != nil {
		logger.Fatalf("state updater error: %v", err)
	}
	subscriber, err := busmqtt.NewSubscriber(cfg.MQTTBrokerURL, cfg.MQTTTopic, registry.IDs(), updater, logger)
	if err != nil {
		logger.Fatalf("bus subscriber error: %v", err)
	}
	subscriber.Start()
	defer subscriber.Stop()

	signer, err := auth.NewSigner([]byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		logger.Fatalf("auth signer error: %v", err)
	}
	consumerRepo := acctpostgres.NewConsumerRepository(db)
	supportRepo := acctpostgres.NewSupportRepository(db)
	accountService, err := acctapp.NewService(consumerRepo, supportRepo, signer)
	if err != nil {
		logger.Fatalf("account service error: %v", err)
	}
	accountHandler, err := accthttp.NewHandler(accountService, logger)
	if err != nil {
		logger.Fatalf("account handler error: %v", err)
	}

	streamHandler, err := stream.NewHandler(hub, cfg.AllowedOrigins, logger)
	if err != nil {
		logger.Fatalf("stream handler error: %v", err)
	}
	reportHandler, err := reports.NewHandler(registry, supportRepo, logger)
	if err != nil {
		logger.Fatalf("report handler error: %v", err)
	}

	cors := apihttp.NewCORS(cfg.AllowedOrigins)
	authMiddleware := auth.NewMiddleware(signer)

	mux := http.NewServeMux()
	mux.Handle("/api/data", apihttp.NewDataHandler(registry))
	mux.Handle("/api/register", accountHandler)
	mux.Handle("/api/login", accountHandler)
	mux.Handle("/api/support", accountHandler)
	mux.Handle("/api/report/", authMiddleware.Wrap(reportHandler))
	mux.Handle("/ws", streamHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(cors.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL    string
	HTTPAddr       string
	MQTTBrokerURL  string
	MQTTTopic      string
	BinsConfigPath string
	AllowedOrigins []string
	JWTSecret      string
	TokenTTL       time.Duration
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:    getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:       getenvDefault("HTTP_ADDR", ":5000"),
		MQTTBrokerURL:  getenvDefault("MQTT_BROKER_URL", "tcp://broker.hivemq.com:1883"),
		MQTTTopic:      getenvDefault("MQTT_TOPIC", "waste/bin/data"),
		BinsConfigPath: getenvDefault("BINS_CONFIG", ""),
		AllowedOrigins: splitCSV(getenvDefault("ALLOWED_ORIGINS", "https://elfifthsem.netlify.app")),
		JWTSecret:      getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		TokenTTL:       getenvDuration("AUTH_TOKEN_TTL", 24*time.Hour),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Hijack forwards to the wrapped writer so the websocket upgrade works
// behind the logging middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}

// systemClock stamps observations with local wall-clock time; the
// last-emptied format is a local timestamp, not UTC.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
