// Package runnertest provides an in-memory Session fake so runner and engine
// behavior can be exercised without a live browser.
package runnertest

import (
	"context"
	"fmt"
	"time"
)

// Element is the state of one matched DOM node.
type Element struct {
	Visible bool
	Text    string
	Value   string
	Checked bool
}

// FakeSession implements runner.Session against an in-memory selector map.
type FakeSession struct {
	//selector -> matched elements, in DOM order
	Elements map[string][]*Element

	PageURL     string
	PageTitle   string
	PageContent string

	GotoErr error
	//per-selector injected failures
	FillErr map[string]error

	//every interaction, in order, e.g. "goto:https://...", "fill:#email=x"
	Actions []string

	//OnClick lets a test script page-state changes (e.g. submit -> redirect)
	OnClick map[string]func(s *FakeSession)
}

func New() *FakeSession {
	return &FakeSession{
		Elements: make(map[string][]*Element),
		FillErr:  make(map[string]error),
		OnClick:  make(map[string]func(s *FakeSession)),
	}
}

// AddVisible registers a visible element for a selector.
func (s *FakeSession) AddVisible(selector, text string) *Element {
	el := &Element{Visible: true, Text: text}
	s.Elements[selector] = append(s.Elements[selector], el)
	return el
}

func (s *FakeSession) record(format string, args ...any) {
	s.Actions = append(s.Actions, fmt.Sprintf(format, args...))
}

func (s *FakeSession) Goto(_ context.Context, url string, _ time.Duration) error {
	s.record("goto:%s", url)
	if s.GotoErr != nil {
		return s.GotoErr
	}
	s.PageURL = url
	return nil
}

func (s *FakeSession) URL() string               { return s.PageURL }
func (s *FakeSession) Title() (string, error)    { return s.PageTitle, nil }
func (s *FakeSession) Content() (string, error)  { return s.PageContent, nil }

func (s *FakeSession) Visible(selector string) (bool, error) {
	els := s.Elements[selector]
	return len(els) > 0 && els[0].Visible, nil
}

func (s *FakeSession) WaitVisible(selector string, _ time.Duration) error {
	visible, _ := s.Visible(selector)
	if !visible {
		return fmt.Errorf("timeout waiting for %q", selector)
	}
	return nil
}

func (s *FakeSession) Click(selector string) error {
	s.record("click:%s", selector)
	if _, ok := s.Elements[selector]; !ok {
		return fmt.Errorf("no element matches %q", selector)
	}
	if fn, ok := s.OnClick[selector]; ok {
		fn(s)
	}
	return nil
}

func (s *FakeSession) Fill(selector, value string) error {
	s.record("fill:%s=%s", selector, value)
	if err := s.FillErr[selector]; err != nil {
		return err
	}
	els := s.Elements[selector]
	if len(els) == 0 {
		return fmt.Errorf("no element matches %q", selector)
	}
	els[0].Value = value
	return nil
}

func (s *FakeSession) Check(selector string) error {
	return s.CheckNth(selector, 0)
}

func (s *FakeSession) Press(selector, key string) error {
	s.record("press:%s:%s", selector, key)
	return nil
}

func (s *FakeSession) Upload(selector, path string) error {
	s.record("upload:%s=%s", selector, path)
	if len(s.Elements[selector]) == 0 {
		return fmt.Errorf("no element matches %q", selector)
	}
	return nil
}

func (s *FakeSession) Count(selector string) (int, error) {
	return len(s.Elements[selector]), nil
}

func (s *FakeSession) NthText(selector string, i int) (string, error) {
	els := s.Elements[selector]
	if i >= len(els) {
		return "", fmt.Errorf("index %d out of range for %q", i, selector)
	}
	return els[i].Text, nil
}

func (s *FakeSession) FillNth(selector string, i int, value string) error {
	s.record("fill:%s#%d=%s", selector, i, value)
	if err := s.FillErr[selector]; err != nil {
		return err
	}
	els := s.Elements[selector]
	if i >= len(els) {
		return fmt.Errorf("index %d out of range for %q", i, selector)
	}
	els[i].Value = value
	return nil
}

func (s *FakeSession) CheckNth(selector string, i int) error {
	s.record("check:%s#%d", selector, i)
	els := s.Elements[selector]
	if i >= len(els) {
		return fmt.Errorf("index %d out of range for %q", i, selector)
	}
	els[i].Checked = true
	return nil
}

func (s *FakeSession) Screenshot(path string) error {
	s.record("screenshot:%s", path)
	return nil
}

func (s *FakeSession) Pace() {}
