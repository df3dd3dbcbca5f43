package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/PeytonNagle/MoodMusic2/internal/catalog"
	"github.com/PeytonNagle/MoodMusic2/internal/history"
	"github.com/PeytonNagle/MoodMusic2/internal/httpapi"
	"github.com/PeytonNagle/MoodMusic2/internal/moodai"
	"github.com/PeytonNagle/MoodMusic2/internal/recommend"
)

func main() {
	port := getenv("PORT", "8080")

	jwtSecret := getenv("JWT_SECRET", "")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// AI provider
	aiProvider := getenv("AI_PROVIDER", "gemini")
	mood, err := moodai.NewService(moodai.Config{
		Provider:      aiProvider,
		GeminiAPIKey:  getenv("GEMINI_API_KEY", ""),
		GeminiBaseURL: getenv("GEMINI_BASE_URL", ""),
		GeminiModel:   getenv("GEMINI_MODEL", ""),
		OllamaBaseURL: getenv("OLLAMA_BASE_URL", ""),
		OllamaModel:   getenv("OLLAMA_MODEL", ""),
		KeepAlive:     getenv("OLLAMA_KEEP_ALIVE", ""),
	})
	if err != nil {
		log.Fatalf("moodmusic: %v", err)
	}

	// Spotify catalog
	spotifyID := getenv("SPOTIFY_CLIENT_ID", "")
	spotifySecret := getenv("SPOTIFY_CLIENT_SECRET", "")
	if spotifyID == "" || spotifySecret == "" {
		log.Fatal("SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET are required")
	}
	spotify := catalog.NewSpotifyClient(
		spotifyID,
		spotifySecret,
		getenv("SPOTIFY_TOKEN_URL", "https://accounts.spotify.com/api/token"),
		getenv("SPOTIFY_SEARCH_URL", "https://api.spotify.com/v1/search"),
	)

	// Optional Redis cache in front of the catalog
	var searcher catalog.Searcher = spotify
	if redisURL := getenv("REDIS_URL", ""); redisURL != "" {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		rdb := redis.NewClient(opt)
		defer rdb.Close()
		searcher = catalog.NewCachedSearcher(spotify, rdb, getenvDuration("CATALOG_CACHE_TTL", time.Hour))
		log.Printf("moodmusic: catalog cache enabled")
	}

	// Postgres
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	databaseURL := getenv("DATABASE_URL", "")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer pool.Close()
	if err := history.AutoMigrate(ctx, pool); err != nil {
		log.Fatalf("migrate database: %v", err)
	}
	repo := history.NewPostgresRepository(pool)

	// Background save worker
	worker := history.NewSaveWorker(repo, getenvInt("SAVE_QUEUE_SIZE", 100))
	worker.Start()
	defer worker.Stop()

	// Recommendation pipeline
	matcher := recommend.NewMatcher(searcher)
	engine := recommend.NewEngine(mood, matcher, worker)

	srv := httpapi.NewServer(engine, repo, []byte(jwtSecret)).
		WithHealthTargets(aiProvider, mood, spotify)

	httpServer := &http.Server{
		Addr:    ":" + port,
		Handler: srv.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	log.Printf("moodmusic listening on :%s (ai=%s)", port, aiProvider)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("moodmusic: %v", err)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
