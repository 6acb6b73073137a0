package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/app"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "path to config file")
	live := flag.Bool("live", false, "actually submit; default is dry run")
	timeout := flag.Duration("timeout", 2*time.Hour, "overall batch timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	log.Println("🚀 Starting auto-apply batch run...")
	a, err := app.Bootstrap(ctx, *cfgPath, true)
	if err != nil {
		log.Fatalf("❌ Startup failed: %v", err)
	}
	defer a.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Println("🛑 Stop requested, finishing current step...")
		a.Engine.Stop()
	}()

	summary := a.Engine.RunQueue(ctx, !*live)

	log.Printf("📊 Batch summary (%d attempts):", summary.Total)
	for status, n := range summary.ByStatus {
		log.Printf("   %s: %d", status, n)
	}
}
