package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/ZoeDepthTokyo/jseeker-sub000/utils"
)

// PlaywrightSession adapts a Playwright page to the runner.Session surface.
// One session serves exactly one attempt.
type PlaywrightSession struct {
	page playwright.Page
}

func NewSession(browserCtx playwright.BrowserContext) (*PlaywrightSession, error) {
	page, err := browserCtx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	return &PlaywrightSession{page: page}, nil
}

func (s *PlaywrightSession) Goto(_ context.Context, url string, timeout time.Duration) error {
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	})
	if err == nil {
		utils.ScrollToForm(s.page)
	}
	return err
}

func (s *PlaywrightSession) URL() string {
	return s.page.URL()
}

func (s *PlaywrightSession) Title() (string, error) {
	return s.page.Title()
}

func (s *PlaywrightSession) Content() (string, error) {
	return s.page.Content()
}

func (s *PlaywrightSession) Visible(selector string) (bool, error) {
	return s.page.Locator(selector).First().IsVisible()
}

func (s *PlaywrightSession) WaitVisible(selector string, timeout time.Duration) error {
	return s.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

func (s *PlaywrightSession) Click(selector string) error {
	return s.page.Locator(selector).First().Click()
}

func (s *PlaywrightSession) Fill(selector, value string) error {
	return s.page.Locator(selector).First().Fill(value)
}

func (s *PlaywrightSession) Check(selector string) error {
	return s.page.Locator(selector).First().Check()
}

func (s *PlaywrightSession) Press(selector, key string) error {
	return s.page.Locator(selector).First().Press(key)
}

func (s *PlaywrightSession) Upload(selector, path string) error {
	return s.page.Locator(selector).First().SetInputFiles(path)
}

func (s *PlaywrightSession) Count(selector string) (int, error) {
	return s.page.Locator(selector).Count()
}

func (s *PlaywrightSession) NthText(selector string, i int) (string, error) {
	return s.page.Locator(selector).Nth(i).TextContent()
}

func (s *PlaywrightSession) FillNth(selector string, i int, value string) error {
	return s.page.Locator(selector).Nth(i).Fill(value)
}

func (s *PlaywrightSession) CheckNth(selector string, i int) error {
	return s.page.Locator(selector).Nth(i).Check()
}

func (s *PlaywrightSession) Screenshot(path string) error {
	_, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return err
}

// Pace inserts a human-like pause plus a small mouse movement between steps.
func (s *PlaywrightSession) Pace() {
	utils.RandomDelay(400, 1200)
	utils.MouseJiggle(s.page)
}

func (s *PlaywrightSession) Close() error {
	return s.page.Close()
}
