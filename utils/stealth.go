package utils

import (
	"math/rand"
	"time"

	"github.com/playwright-community/playwright-go"
)

// RandomDelay pauses execution for a random time between min and max (milliseconds)
func RandomDelay(min, max int) {
	if min >= max {
		time.Sleep(time.Duration(min) * time.Millisecond)
		return
	}
	duration := time.Duration(rand.Intn(max-min)+min) * time.Millisecond
	time.Sleep(duration)
}

// MouseJiggle simulates a small random mouse movement so form sessions don't
// look idle between fills
func MouseJiggle(page playwright.Page) {
	x := float64(rand.Intn(800) + 100)
	y := float64(rand.Intn(600) + 100)

	page.Mouse().Move(x, y)
	RandomDelay(100, 300)
}

// ScrollToForm scrolls down in small steps so lazy-loaded form sections
// render before the filler looks for them
func ScrollToForm(page playwright.Page) {
	page.Mouse().Wheel(0, 500)
	RandomDelay(400, 900)
	page.Evaluate("window.scrollTo(0, document.body.scrollHeight / 2)")
}
