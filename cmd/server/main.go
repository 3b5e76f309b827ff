package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"thewherewhat/internal/config"
	"thewherewhat/internal/database"
	"thewherewhat/internal/engine"
	"thewherewhat/internal/engine/actors"
	"thewherewhat/internal/handlers"
	"thewherewhat/internal/media"
	"thewherewhat/internal/middleware"
	"thewherewhat/internal/scrapers"
	"thewherewhat/internal/utils"
	"thewherewhat/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	metrics := utils.NewMetricsCollector()

	// The system cannot operate without its persistent store.
	mongodb, err := database.NewMongoDB(cfg.Database.URI, cfg.Database.Name)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer mongodb.Close()

	hub := websocket.NewHub()
	go hub.Run()

	// Initialize actor system and domain actors
	system := actor.NewActorSystem()
	eng := engine.NewEngine(system, cfg.Lifecycle.RetentionWindow, engine.Stores{
		Bubbles:     mongodb,
		Suggestions: mongodb,
	}, hub, metrics)

	mediaStorage, err := media.NewStorage(cfg.UploadDir, "/uploads")
	if err != nil {
		log.Fatalf("Failed to initialize media storage: %v", err)
	}

	// Bot importer: three generated event feeds over one shared geocoder.
	geocoder := scrapers.NewNominatimClient()
	importer := scrapers.NewImporter(system.Root, eng.GetBubbleActor(),
		scrapers.NewEventbriteSource(geocoder, cfg.Map.City),
		scrapers.NewStudentSource(geocoder, cfg.Map.City),
		scrapers.NewCommunitySource(geocoder, cfg.Map.City),
	)

	server := handlers.NewServer(system, system.Root, eng, hub, mediaStorage, importer, metrics, cfg.Map)

	startTimers(system.Root, eng, hub, importer, cfg.Lifecycle)

	corsConfig := middleware.DefaultCORSConfig(cfg.AllowedOrigins)
	handler := middleware.CORSMiddleware(corsConfig)(server.Routes())

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("TheWhereWhat running at http://%s", serverAddr)
	if err := http.ListenAndServe(serverAddr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

// startTimers launches the periodic tasks: the expiry sweep, the bot import
// cycle, and the decay heartbeat. Each is just a message send; the actors
// serialize them against request-driven work.
func startTimers(root *actor.RootContext, eng *engine.Engine, hub *websocket.Hub, importer *scrapers.Importer, lifecycle *config.LifecycleConfig) {
	go func() {
		ticker := time.NewTicker(lifecycle.SweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			root.Send(eng.GetBubbleActor(), &actors.ExpireSweepMsg{})
		}
	}()

	go func() {
		// Delayed first run so startup finishes before geocoding begins.
		time.Sleep(lifecycle.ScrapeStartup)
		importer.Run(context.Background())

		ticker := time.NewTicker(lifecycle.ScrapeInterval)
		defer ticker.Stop()
		for range ticker.C {
			importer.Run(context.Background())
		}
	}()

	go func() {
		ticker := time.NewTicker(lifecycle.DecayTickInterval)
		defer ticker.Stop()
		for range ticker.C {
			hub.BroadcastEvent(websocket.Event{Type: websocket.EventDecayTick})
		}
	}()
}
