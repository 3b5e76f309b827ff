package scrapers

import (
	"context"
	"log"
	"time"

	"thewherewhat/internal/engine/actors"

	protoactor "github.com/asynkron/protoactor-go/actor"
)

// Importer pulls candidate events from each source and feeds them to the
// bubble lifecycle engine, which owns the dedup decision. A failing source
// never aborts the cycle; partial success is the normal outcome.
type Importer struct {
	root      *protoactor.RootContext
	bubblePID *protoactor.PID
	sources   []EventSource

	// Cap on one source's Events call so a slow feed cannot stall the
	// whole cycle.
	SourceTimeout time.Duration
	// Timeout for each import request to the engine.
	RequestTimeout time.Duration
}

func NewImporter(root *protoactor.RootContext, bubblePID *protoactor.PID, sources ...EventSource) *Importer {
	return &Importer{
		root:           root,
		bubblePID:      bubblePID,
		sources:        sources,
		SourceTimeout:  2 * time.Minute,
		RequestTimeout: 5 * time.Second,
	}
}

// Run executes one full import cycle and returns how many bubbles were
// inserted across all sources.
func (imp *Importer) Run(ctx context.Context) int {
	log.Printf("Importer: running %d sources...", len(imp.sources))

	totalImported := 0
	for _, source := range imp.sources {
		imported, err := imp.runSource(ctx, source)
		totalImported += imported
		if err != nil {
			log.Printf("Importer: source %s failed: %v", source.Name(), err)
			continue
		}
		log.Printf("Importer: source %s imported %d events", source.Name(), imported)
	}

	log.Printf("Importer: cycle done, %d new events", totalImported)
	return totalImported
}

func (imp *Importer) runSource(ctx context.Context, source EventSource) (int, error) {
	sourceCtx, cancel := context.WithTimeout(ctx, imp.SourceTimeout)
	defer cancel()

	events, err := source.Events(sourceCtx)
	if err != nil {
		return 0, err
	}

	imported := 0
	for _, event := range events {
		future := imp.root.RequestFuture(imp.bubblePID, &actors.ImportBotEventMsg{Event: event}, imp.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			log.Printf("Importer: failed to import %q: %v", event.Title, err)
			continue
		}
		if importResult, ok := result.(*actors.ImportResult); ok && importResult.Imported {
			imported++
		}
	}
	return imported, nil
}
