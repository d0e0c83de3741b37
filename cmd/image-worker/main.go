package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andrefranchin/treine-me-api/internal/cache"
	"github.com/andrefranchin/treine-me-api/internal/config"
	"github.com/andrefranchin/treine-me-api/internal/database"
	"github.com/andrefranchin/treine-me-api/internal/repository"
	"github.com/andrefranchin/treine-me-api/internal/services"
	"github.com/andrefranchin/treine-me-api/internal/storage"
)

// Worker that generates thumbnails for uploaded conteudo images.
func main() {
	log.Println("Starting image processing worker...")

	cfg := config.Load()

	ctx := context.Background()

	redisClient, err := cache.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	pool, err := database.Connect(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	storageDriver, err := storage.New(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage driver: %v", err)
	}

	processor := services.NewConteudoProcessor(repository.NewConteudoRepository(pool), storageDriver)

	log.Println("Connections established. Worker ready.")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ctxWorker, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubsub := redisClient.Client.Subscribe(ctxWorker, cache.ProcessChannel)
	defer pubsub.Close()

	go func() {
		for {
			select {
			case <-ctxWorker.Done():
				return
			default:
				msg, err := pubsub.ReceiveMessage(ctxWorker)
				if err != nil {
					if ctxWorker.Err() != nil {
						return
					}
					log.Printf("Failed to receive message: %v", err)
					time.Sleep(1 * time.Second)
					continue
				}

				var event services.ProcessConteudoEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("Failed to parse event: %v", err)
					continue
				}

				log.Printf("Processing conteudo %s", event.ConteudoID)

				if err := processor.Process(ctxWorker, event.ConteudoID); err != nil {
					log.Printf("Failed to process conteudo %s: %v", event.ConteudoID, err)
				} else {
					log.Printf("Conteudo %s processed", event.ConteudoID)
				}
			}
		}
	}()

	log.Println("Worker running. Waiting for events...")

	<-quit
	log.Println("Shutting down worker...")

	cancel()

	// Give the receive loop a moment to unwind.
	time.Sleep(2 * time.Second)

	log.Println("Worker exited.")
}
