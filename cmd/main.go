package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/speechhook/speechhook/pkg/server"
)

func main() {
	godotenv.Load()

	addr := os.Getenv("SPEECHHOOK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	srv := server.NewBargeInServer(server.Config{
		Addr: addr,
		OnsetHandler: func(evt server.OnsetEvent) {
			log.Printf("barge-in: caller started speaking on call %s (%d bytes pre-roll)",
				evt.CallSid, len(evt.PreRoll))
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		log.Fatal(err)
	}

	<-ctx.Done()
	srv.Stop()
}
