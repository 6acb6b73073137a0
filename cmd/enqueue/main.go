package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/app"
	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/apply"
	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/queue"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "path to config file")
	url := flag.String("url", "", "job posting URL")
	resume := flag.String("resume", "", "path to rendered resume file")
	market := flag.String("market", "us", "market code for personal info")
	flag.Parse()

	if *url == "" || *resume == "" {
		log.Fatal("❌ -url and -resume are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, err := app.Bootstrap(ctx, *cfgPath, false)
	if err != nil {
		log.Fatalf("❌ Startup failed: %v", err)
	}
	defer a.Close()

	platform, ok := a.Engine.DetectPlatform(*url)
	if !ok {
		log.Fatalf("🚫 No supported platform matches %s", *url)
	}

	entry := &apply.QueueEntry{
		URL:        *url,
		ResumePath: *resume,
		Platform:   platform,
		Market:     *market,
	}
	if err := a.Store.Enqueue(ctx, entry); err != nil {
		if errors.Is(err, queue.ErrDuplicate) {
			log.Printf("⏭️ Already applied or pending: %s", *url)
			return
		}
		log.Fatalf("❌ Enqueue failed: %v", err)
	}
	log.Printf("✅ Queued %s for %s (entry %s)", *url, platform, entry.ID)
}
