package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crewbase.org/internal/audit"
	"crewbase.org/internal/httpapi"
	"crewbase.org/internal/obs"
	"crewbase.org/internal/org"
	"crewbase.org/internal/store/memstore"
	"crewbase.org/internal/store/pg"
	"crewbase.org/internal/uc"
)

var version = "0.3.0"

func main() {
	obs.Init()
	obs.InitBuildInfo(version, os.Getenv("CREWBASE_COMMIT"))

	var (
		stores  *org.Stores
		uow     uc.UnitOfWork
		probe   httpapi.ReadyProbe
		cleanup func()
	)
	if dsn := os.Getenv("CREWBASE_PG_DSN"); dsn != "" {
		pgStore, err := pg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		stores = pgStore.Stores()
		uow = pgStore
		probe = httpapi.ReadyProbe{DB: pgStore.DB()}
		cleanup = func() { _ = pgStore.Close() }
	} else {
		// No DSN: run on the in-memory store. Meant for local development.
		log.Printf("CREWBASE_PG_DSN not set, using in-memory store")
		mem := memstore.New()
		stores = mem.Stores()
		uow = mem
		cleanup = func() {}
	}

	adapters := &uc.Adapters{
		UoW:     uow,
		Clock:   uc.SystemClock{},
		UUID:    uc.UUIDGenerator{},
		HookLog: audit.HookLogger{},
		Stores:  stores,
	}
	registry := uc.NewRegistry()
	useCases := org.NewUseCases(registry, adapters)

	api := httpapi.New(useCases, stores, probe, version)
	handler := httpapi.MaxBodyBytes(api.Handler(), 1<<20)
	handler = httpapi.RateLimit(handler, 50, 25)

	addr := os.Getenv("CREWBASE_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting crewbase-api %s on %s", version, srv.Addr)
	obs.SetReady(true)

	// graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")
	obs.SetReady(false)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	cleanup()
	log.Println("Stopped")
}
