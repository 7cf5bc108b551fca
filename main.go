package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"erfworld/assets"
	"erfworld/auth"
	"erfworld/config"
	"erfworld/db"
	"erfworld/discord"
	"erfworld/events"
	"erfworld/instagram"
	"erfworld/middleware"
	"erfworld/mq"
	"erfworld/ocr"
	"erfworld/qr"
	"erfworld/ratelim"
	"erfworld/rdx"
	"erfworld/routes"

	"github.com/joho/godotenv"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request method, path, remote address, and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		duration := time.Since(start)
		log.Printf("%s %s from %s – %v", r.Method, r.RequestURI, r.RemoteAddr, duration)
	})
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func main() {
	// load .env if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	cfg := config.Load()
	ctx := context.Background()

	database, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := database.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	uploader, err := assets.NewUploader(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey,
		cfg.MinioBucket, cfg.MinioUseSSL, cfg.UpstreamTimeout)
	if err != nil {
		log.Fatalf("Failed to build asset store client: %v", err)
	}
	if err := uploader.EnsureBucket(ctx); err != nil {
		log.Fatalf("Failed to ensure asset bucket: %v", err)
	}

	eventStore := events.NewStore(database.EventsCollection)

	// notification fanout is optional; the importer works without Redis
	var notifier instagram.Notifier
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	if redisConn, rerr := rdx.Connect(ctx, cfg.RedisAddr); rerr != nil {
		log.Printf("Redis unavailable, event notifications disabled: %v", rerr)
	} else {
		notifier = mq.NewEmitter(redisConn)
		go mq.StartNotifyWorker(workerCtx, redisConn, eventStore,
			discord.NewNotifier(cfg.DiscordWebhookURL, cfg.UpstreamTimeout))
	}

	importer := &instagram.Importer{
		Fetcher:  instagram.NewGraphFetcher(cfg.InstagramAccessToken, cfg.UpstreamTimeout),
		OCR:      ocr.NewClient(cfg.VisionAPIKey, cfg.UpstreamTimeout),
		Uploader: uploader,
		Writer:   eventStore,
		Parser:   instagram.NewParser(cfg.DefaultLocation),
		Notifier: notifier,
	}

	authmw := middleware.NewAuth(cfg.JwtSecret)
	rateLimiter := ratelim.NewRateLimiter(5, 10)

	router := httprouter.New()
	router.GET("/health", Index)
	routes.AddInstagramRoutes(router, instagram.NewHandler(cfg.InstagramVerifyToken, cfg.InstagramAppSecret, importer), authmw)
	routes.AddEventsRoutes(router, events.NewHandler(eventStore), authmw, rateLimiter)
	routes.AddQRRoutes(router, qr.NewHandler(qr.NewService(cfg.QRTokenSecret)), rateLimiter)
	routes.AddAuthRoutes(router, auth.NewHandler(database.StaffCollection, cfg.JwtSecret), rateLimiter)

	// apply middleware: CORS → security headers → logging → router
	// auth rides in the Authorization header, never in cookies, so the
	// wildcard origin stays usable without credentialed CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"}, // lock down in production
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(router)

	handler := loggingMiddleware(securityHeaders(corsHandler))

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe error: %v", err)
		}
	}()

	// wait for interrupt or SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutdown signal received; shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stopWorker()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Graceful shutdown failed: %v", err)
	}
	if err := database.Close(shutdownCtx); err != nil {
		log.Printf("Mongo disconnect error: %v", err)
	}

	log.Println("Server stopped cleanly")
}
