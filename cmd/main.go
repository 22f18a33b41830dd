package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chat-rag/internal/broadcast"
	"chat-rag/internal/config"
	"chat-rag/internal/embedding"
	"chat-rag/internal/helper"
	"chat-rag/internal/llmservice"
	"chat-rag/internal/models"
	"chat-rag/internal/parser"
	"chat-rag/internal/rag"
	"chat-rag/internal/store"
	"chat-rag/internal/vectordb"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	convoID := flag.String("convo", "default-convo", "Conversation id")
	userID := flag.String("user", "default", "User id")
	files := flag.String("files", "", "Comma-separated document files to ingest into the conversation")
	message := flag.String("message", "", "Chat message to send to the conversation")
	flag.Parse()

	if *files == "" && *message == "" {
		log.Fatal().Msg("Please provide documents with the -files flag or a message with the -message flag")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	log.Debug().Interface("config", cfg).Msg("Loaded config")

	ctx := context.Background()

	dbClient := store.Connect(&cfg.Database)
	st := store.New(dbClient)
	defer st.Close()
	if err := st.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg("Error initializing database")
	}

	if !cfg.RAG.InMemory {
		if err := helper.CreateFolder(cfg.RAG.VectorDBPath); err != nil {
			log.Fatal().Err(err).Msg("Error creating vector database folder")
		}
	}
	vdb, err := vectordb.NewManager(cfg.RAG.VectorDBPath, cfg.RAG.InMemory)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating vector database manager")
	}

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	broadcaster := broadcast.LogBroadcaster{}

	if *files != "" {
		ingestFiles(ctx, cfg, vdb, embedder, st, broadcaster, *convoID, *userID, strings.Split(*files, ","))
		return
	}

	sendMessage(ctx, cfg, vdb, embedder, st, broadcaster, *convoID, *userID, *message)
}

func ingestFiles(ctx context.Context, cfg *config.Config, vdb *vectordb.Manager, embedder embedding.Embedder, st *store.Store, broadcaster broadcast.Broadcaster, convoID, userID string, paths []string) {
	docs := make([]models.ParsedDocument, 0, len(paths))
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		text, err := parser.Extract(path)
		docs = append(docs, models.ParsedDocument{
			Filename: path,
			Text:     text,
			Err:      err,
		})
	}

	ingestor := rag.NewIngestor(vdb, embedder, st, broadcaster, &cfg.RAG)
	results, err := ingestor.Ingest(ctx, convoID, userID, docs)
	if err != nil {
		log.Fatal().Err(err).Msg("Error ingesting documents")
	}

	log.Info().Int("files", len(results)).Str("convo_id", convoID).Msg("Ingestion finished")
	helper.PrettyPrint(results)
}

func sendMessage(ctx context.Context, cfg *config.Config, vdb *vectordb.Manager, embedder embedding.Embedder, st *store.Store, broadcaster broadcast.Broadcaster, convoID, userID, message string) {
	retriever := rag.NewRetriever(vdb, embedder, &cfg.RAG)
	completer := llmservice.NewClient(&cfg.InferenceLLM)
	chat := rag.NewChat(retriever, completer, st, broadcaster)

	reply, err := chat.HandleMessage(ctx, convoID, userID, message)
	if err != nil {
		log.Fatal().Err(err).Msg("Error handling message")
	}

	log.Info().Bool("context_used", reply.ContextUsed).Int("chunks", reply.ChunkCount).Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", reply.Body)
}
