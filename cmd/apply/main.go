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
	url := flag.String("url", "", "job posting URL")
	resume := flag.String("resume", "", "path to rendered resume file")
	market := flag.String("market", "us", "market code for personal info")
	live := flag.Bool("live", false, "actually submit; default is dry run")
	flag.Parse()

	if *url == "" || *resume == "" {
		log.Fatal("❌ -url and -resume are required")
	}
	if _, err := os.Stat(*resume); err != nil {
		log.Fatalf("❌ Resume file not found: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	log.Println("🚀 Starting auto-apply (single URL)...")
	a, err := app.Bootstrap(ctx, *cfgPath, true)
	if err != nil {
		log.Fatalf("❌ Startup failed: %v", err)
	}
	defer a.Close()

	//SIGINT stops after the current step, never mid-fill
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Println("🛑 Stop requested, finishing current step...")
		a.Engine.Stop()
	}()

	result, err := a.Engine.ApplySingle(ctx, *url, *resume, *market, !*live)
	if err != nil {
		log.Fatalf("❌ Attempt could not run: %v", err)
	}

	log.Printf("🏁 Status: %s", result.Status)
	for field, value := range result.FilledFields {
		log.Printf("   ✏️ %s = %s", field, value)
	}
	if result.PausedQuestion != "" {
		log.Printf("   ❓ Paused on: %s", result.PausedQuestion)
	}
	if result.Confirmation != "" {
		log.Printf("   🎫 Confirmation: %s", result.Confirmation)
	}
	for _, path := range result.Artifacts {
		log.Printf("   📁 %s", path)
	}
}
