package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	docsadapter "github.com/PabloGalante/docchat/internal/adapters/docs"
	httpadapter "github.com/PabloGalante/docchat/internal/adapters/http"
	"github.com/PabloGalante/docchat/internal/adapters/llm"
	"github.com/PabloGalante/docchat/internal/adapters/retrieval"
	firestorestore "github.com/PabloGalante/docchat/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/docchat/internal/adapters/storage/memory"
	"github.com/PabloGalante/docchat/internal/app/chat"
	docsapp "github.com/PabloGalante/docchat/internal/app/docs"
	"github.com/PabloGalante/docchat/internal/config"
	"github.com/PabloGalante/docchat/internal/domain"
)

func main() {
	ctx := context.Background()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	// Document catalog: one scan at startup.
	registry := docsadapter.NewRegistry(cfg.DataDirectory, cfg.AllowedFileTypes)

	// Retrieval index over the same data directory.
	var embedder domain.Embedder
	switch cfg.Embedder {
	case "ollama":
		log.Printf("[RAG] Using Ollama embedder (model=%s)", cfg.EmbeddingsModel)
		embedder = retrieval.NewOllamaEmbedder(cfg.EmbeddingsModel, cfg.OllamaURL)
	default:
		log.Println("[RAG] Using TF-IDF embedder")
		embedder = retrieval.NewTFIDFEmbedder()
	}

	var vectorIndex domain.VectorIndex
	switch cfg.VectorStore {
	case "qdrant":
		log.Printf("[RAG] Using Qdrant index (url=%s collection=%s)", cfg.QdrantURL, cfg.QdrantCollection)
		vectorIndex = retrieval.NewQdrantIndex(retrieval.QdrantConfig{
			URL:        cfg.QdrantURL,
			Collection: cfg.QdrantCollection,
		})
	default:
		log.Println("[RAG] Using in-memory vector index")
		vectorIndex = retrieval.NewMemoryIndex()
	}

	index := retrieval.NewIndex(
		retrieval.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		embedder,
		vectorIndex,
	)
	if _, err := index.Ingest(ctx, cfg.DataDirectory); err != nil {
		// The server starts anyway; chat degrades to answers without
		// document context.
		log.Printf("[RAG] index build failed, retrieval disabled: %v", err)
	}

	// Generation backend
	var llmClient domain.GenerationClient
	switch cfg.LLMBackend {
	case "ollama":
		log.Printf("[LLM] Using Ollama client (model=%s)", cfg.ChatModel)
		llmClient = llm.NewOllamaClient(cfg.ChatModel, cfg.OllamaURL, cfg.MaxTokens)
	case "vertex":
		log.Printf("[LLM] Using Vertex client (model=%s)", cfg.ChatModel)
		llmClient, err = llm.NewVertexClient(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.ChatModel, cfg.MaxTokens)
		if err != nil {
			log.Fatalf("error initializing Vertex LLM client: %v", err)
		}
	default:
		log.Println("[LLM] Using MOCK LLM client")
		llmClient = llm.NewMockLLM()
	}

	// Storage: Firestore or Memory
	var sessionStore domain.SessionStore
	switch cfg.StorageBackend {
	case "firestore":
		if cfg.GCPProjectID == "" {
			log.Fatal("DOCCHAT_GCP_PROJECT is required for the Firestore storage backend")
		}
		log.Printf("[STORE] Using Firestore storage (project=%s)", cfg.GCPProjectID)
		sessionStore, err = firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			log.Fatalf("error initializing Firestore store: %v", err)
		}
	default:
		log.Println("[STORE] Using in-memory storage")
		sessionStore = memstore.NewSessionStore()
	}

	chatSvc := chat.NewService(sessionStore, registry, index, llmClient)
	docsSvc := docsapp.NewService(registry)

	handler := httpadapter.NewServer(chatSvc, docsSvc, cfg.AllowedOrigins)

	addr := ":" + cfg.Port
	log.Println("docchat API listening on", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal(err)
	}
}
