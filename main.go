package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/sashabaranov/go-openai"

	"go-homereel/boundary"
	"go-homereel/cache"
	"go-homereel/cronjobs"
	"go-homereel/db"
	"go-homereel/geocode"
	"go-homereel/handlers"
	"go-homereel/imagery"
	"go-homereel/narration"
	"go-homereel/pipeline"
	"go-homereel/render"
	"go-homereel/routes"
	"go-homereel/script"
)

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Fatalf("Error loading .env file: %v", err)
	}

	// Print and check env
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY not set")
	}
	fmt.Println("OPENAI_API_KEY loaded")

	// Firestore backs the location and render stores when credentials are
	// present; without them the service still runs, just without
	// cross-session persistence.
	var locationStore geocode.LocationStore
	var recordStore pipeline.RecordStore
	if os.Getenv("FIREBASE_CREDENTIALS") != "" {
		firestoreClient, err := db.InitFirestore()
		if err != nil {
			log.Fatalf("Failed to initialize Firestore: %v", err)
		}
		defer db.CloseFirestore() // Firestore client is closed on exit
		locationStore = db.NewLocationStore(firestoreClient)
		recordStore = db.NewRenderStore(firestoreClient)
	} else {
		fmt.Println("FIREBASE_CREDENTIALS not set, running without persistence")
	}

	// Maps client for geocoding; the imagery fetcher shares the same key.
	mapsClient, err := geocode.InitMapsClient()
	if err != nil {
		log.Fatalf("Failed to initialize Maps client: %v", err)
	}

	// Imagery cache: memory tier in front, Redis behind it when
	// REDIS_URL is set, a disk store otherwise.
	cacheDir := os.Getenv("HOMEREEL_CACHE_DIR")
	if cacheDir == "" {
		cacheDir = "./cache"
	}
	diskStore, err := cache.NewDiskStore(cacheDir)
	if err != nil {
		log.Fatalf("Failed to initialize imagery cache dir: %v", err)
	}
	memStore := cache.NewMemoryStore()

	var imageryStore cache.Store
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		redisStore, err := cache.NewRedisStore(redisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		imageryStore = cache.NewTieredStore(memStore, redisStore)
		fmt.Println("Imagery cache: memory + redis")
	} else {
		imageryStore = cache.NewTieredStore(memStore, diskStore)
		fmt.Println("Imagery cache: memory + disk at", cacheDir)
	}

	workDir := os.Getenv("HOMEREEL_RENDER_DIR")
	if workDir == "" {
		workDir = "./videos"
	}
	renderer, err := render.NewRenderer(workDir)
	if err != nil {
		log.Fatalf("Failed to initialize renderer: %v", err)
	}
	renderer.MusicDir = os.Getenv("HOMEREEL_MUSIC_DIR")

	openaiClient := openai.NewClient(apiKey)
	resolver := geocode.NewResolver(mapsClient, locationStore)
	detector := boundary.DetectorFromEnv()

	p := &pipeline.Pipeline{
		Resolver: resolver,
		Imagery:  imagery.NewFetcher(imageryStore),
		Boundary: boundary.NewModel(detector, false),
		Script:   script.NewGenerator(openaiClient),
		Speech:   narration.NewSynthesizer(openaiClient),
		Renderer: renderer,
		Records:  recordStore,
	}

	// Initialize cron jobs
	cronjobs.InitCronJobs(memStore, diskStore, workDir)

	sessions := handlers.NewSessionStore(detector)
	r := routes.SetupRouter(p, resolver, sessions)
	if err := r.Run(":8080"); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
