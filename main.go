package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/genai"

	"ragstack/controller"
	"ragstack/encoders"
	"ragstack/models"
	"ragstack/services"
)

func main() {
	httpClient := &http.Client{
		Timeout: 60 * time.Second,
	}

	ctx := context.Background()

	// The summarizer and the routing encoder are both optional: a missing key
	// disables the feature instead of failing startup.
	var summarizer services.Summarizer
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		geminiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			log.Fatalf("FATAL: Failed to create Gemini client: %v", err)
		}
		summarizer = services.NewGeminiSummarizer(geminiClient, "")
		log.Println("Successfully connected to Google Gemini.")
	} else {
		log.Println("GEMINI_API_KEY not set, summarization pass disabled.")
	}

	var routingEncoder encoders.Encoder
	if apiKey := os.Getenv("COHERE_API_KEY"); apiKey != "" {
		// The router embeds queries and reference utterances, both query-side.
		encoder, err := encoders.NewCohereEncoder(encoders.CohereConfig{APIKey: apiKey, InputType: "search_query"})
		if err != nil {
			log.Fatalf("FATAL: Failed to create Cohere routing encoder: %v", err)
		}
		routingEncoder = encoder
	} else {
		log.Println("COHERE_API_KEY not set, query routing degrades to the default intent.")
	}
	routeLayer := services.NewRouteLayer(services.DefaultRoutes(), routingEncoder)

	chunkBuilder := services.NewChunkBuilder(
		services.NewFileDownloader(httpClient),
		services.NewFilePartitioner(),
	)
	ragService := services.NewRAGService(chunkBuilder, routeLayer, summarizer)
	ragController := controller.NewRAGController(ragService)

	// Optional local directory sync, sharing the ingestion pipeline.
	if watchDir := os.Getenv("WATCH_DIR"); watchDir != "" {
		watchIndex := os.Getenv("WATCH_INDEX")
		if watchIndex == "" {
			watchIndex = "local-files"
		}
		vdbKind := models.VectorDatabaseKind(os.Getenv("WATCH_VECTOR_DB"))
		if vdbKind == "" {
			vdbKind = models.VectorDatabaseChroma
		}
		encoderKind := models.EncoderKind(os.Getenv("WATCH_ENCODER"))
		if encoderKind == "" {
			encoderKind = models.EncoderOllama
		}
		storeConfig := map[string]string{"url": os.Getenv("CHROMA_URL")}
		if vdbKind == models.VectorDatabaseQdrant {
			storeConfig = map[string]string{
				"url":     os.Getenv("QDRANT_URL"),
				"api_key": os.Getenv("QDRANT_API_KEY"),
			}
		}
		watcher := services.NewWatchService(ragService, watchIndex, models.VectorDatabaseConfig{
			Kind:   vdbKind,
			Config: storeConfig,
		}, encoderKind)
		go func() {
			watcher.ScanAndIndexDirectory(ctx, watchDir)
			watcher.WatchDirectory(ctx, watchDir)
		}()
	}

	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "RAG API",
			"version": "1.0.0",
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/ingest", ragController.Ingest)
		apiV1.POST("/query", ragController.Query)
		apiV1.DELETE("/delete", ragController.Delete)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("RAG backend server starting on http://localhost:%s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}
