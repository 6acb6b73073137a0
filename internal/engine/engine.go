// Engine composes detection, dedup, the monitor gate, the platform runners
// and the verifier. It is the only component that writes queue status, and it
// never touches a browser session directly.

package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/answerbank"
	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/apply"
	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/artifacts"
	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/monitor"
	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/queue"
	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/runner"
	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/verifier"
)

// Verifier classifies captured post-submit state.
type Verifier interface {
	Verify(finalURL, finalDOM string, hints verifier.Hints) apply.VerificationResult
}

// Reporter pushes operator-facing notifications. Optional; all methods are
// best effort.
type Reporter interface {
	AlertCircuitOpen(platform apply.Platform, reason string) error
	NotifyPause(result *apply.AttemptResult) error
	NotifyResult(result *apply.AttemptResult) error
}

// SessionFactory hands out one browser session per attempt. The release
// function must be called when the attempt finishes; two attempts never share
// a session.
type SessionFactory func(platform apply.Platform) (runner.Session, func(), error)

type Config struct {
	Runners       []runner.Runner
	Hints         map[apply.Platform]verifier.Hints
	Store         queue.Store
	Monitor       *monitor.Monitor
	Verifier      Verifier
	Bank          *answerbank.AnswerBank
	Sessions      SessionFactory
	Reporter      Reporter
	ArtifactsRoot string
}

type Engine struct {
	cfg    Config
	cancel runner.Cancel
}

func New(cfg Config) *Engine {
	if cfg.ArtifactsRoot == "" {
		cfg.ArtifactsRoot = "logs/attempts"
	}
	return &Engine{cfg: cfg}
}

// Stop requests cooperative cancellation: the current step completes, then
// the running attempt terminates as stopped_by_user.
func (e *Engine) Stop() {
	e.cancel.Stop()
}

func (e *Engine) detect(url string) runner.Runner {
	for _, r := range e.cfg.Runners {
		if r.Detect(url) {
			return r
		}
	}
	return nil
}

func (e *Engine) runnerFor(platform apply.Platform) runner.Runner {
	for _, r := range e.cfg.Runners {
		if r.Name() == platform {
			return r
		}
	}
	return nil
}

// DetectPlatform reports which registered runner claims the URL.
func (e *Engine) DetectPlatform(url string) (apply.Platform, bool) {
	r := e.detect(url)
	if r == nil {
		return "", false
	}
	return r.Name(), true
}

// ApplySingle runs one URL end to end. The returned result is always
// terminal and already persisted; the error is reserved for configuration
// and storage problems, never for attempt outcomes.
func (e *Engine) ApplySingle(ctx context.Context, url, resumePath, market string, dryRun bool) (*apply.AttemptResult, error) {
	normalized := apply.NormalizeURL(url)

	//dedup before anything else: a non-failed terminal record wins
	dup, err := e.cfg.Store.IsDuplicate(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("dedup lookup failed: %w", err)
	}
	if dup {
		log.Printf("⏭️ Skipping duplicate: %s", url)
		return e.offQueueResult(url, "", market, apply.StatusSkippedDuplicate, "already applied or pending review"), nil
	}

	r := e.detect(url)
	if r == nil {
		log.Printf("🚫 No runner detects %s", url)
		return e.offQueueResult(url, "", market, apply.StatusFailedUnsupported, "no registered platform matches this URL"), nil
	}

	//fail loudly on configuration problems before claiming the entry
	if _, err := e.cfg.Bank.GetPersonalInfo(market); err != nil {
		return nil, err
	}

	entry := &apply.QueueEntry{
		URL:           url,
		NormalizedURL: normalized,
		ResumePath:    resumePath,
		Platform:      r.Name(),
		Market:        market,
	}
	if err := e.cfg.Store.Enqueue(ctx, entry); err != nil {
		if errors.Is(err, queue.ErrDuplicate) {
			return e.offQueueResult(url, r.Name(), market, apply.StatusSkippedDuplicate, "already applied or pending review"), nil
		}
		return nil, fmt.Errorf("enqueue failed: %w", err)
	}
	if err := e.cfg.Store.RecordStatus(ctx, entry.ID, apply.StatusRunning, nil); err != nil {
		return nil, fmt.Errorf("claim failed: %w", err)
	}
	entry.Status = apply.StatusRunning

	return e.runEntry(ctx, entry, dryRun), nil
}

// ApplyBatch enqueues the given entries and drains the queue. Entries whose
// URL is already terminal count as skipped_duplicate without touching a
// runner.
func (e *Engine) ApplyBatch(ctx context.Context, entries []apply.QueueEntry, dryRun bool) apply.BatchSummary {
	var summary apply.BatchSummary
	for i := range entries {
		entry := entries[i]
		r := e.detect(entry.URL)
		if r == nil {
			log.Printf("🚫 No runner detects %s", entry.URL)
			summary.Record(apply.StatusFailedUnsupported)
			continue
		}
		entry.Platform = r.Name()
		if err := e.cfg.Store.Enqueue(ctx, &entry); err != nil {
			if errors.Is(err, queue.ErrDuplicate) {
				log.Printf("⏭️ Skipping duplicate: %s", entry.URL)
				summary.Record(apply.StatusSkippedDuplicate)
				continue
			}
			log.Printf("⚠️ Enqueue failed for %s: %v", entry.URL, err)
			continue
		}
	}

	drained := e.RunQueue(ctx, dryRun)
	summary.Total += drained.Total
	for status, n := range drained.ByStatus {
		if summary.ByStatus == nil {
			summary.ByStatus = make(map[apply.AttemptStatus]int)
		}
		summary.ByStatus[status] += n
	}
	return summary
}

// RunQueue drains every platform's queue. One worker per platform keeps
// attempts strictly ordered within a platform (the monitor's counters depend
// on that); different platforms run concurrently.
func (e *Engine) RunQueue(ctx context.Context, dryRun bool) apply.BatchSummary {
	var (
		mu      sync.Mutex
		summary apply.BatchSummary
		wg      sync.WaitGroup
	)

	for _, r := range e.cfg.Runners {
		wg.Add(1)
		go func(platform apply.Platform) {
			defer wg.Done()
			for {
				if ctx.Err() != nil || e.cancel.Stopped() {
					return
				}
				entry, err := e.cfg.Store.ClaimNext(ctx, platform)
				if err != nil {
					log.Printf("⚠️ Claim failed for %s: %v", platform, err)
					return
				}
				if entry == nil {
					return
				}
				result := e.runEntry(ctx, entry, dryRun)
				mu.Lock()
				summary.Record(result.Status)
				mu.Unlock()
			}
		}(r.Name())
	}
	wg.Wait()

	log.Printf("🏁 Batch finished: %d attempts", summary.Total)
	return summary
}

// runEntry owns the running -> terminal transition for one claimed entry.
func (e *Engine) runEntry(ctx context.Context, entry *apply.QueueEntry, dryRun bool) *apply.AttemptResult {
	//monitor gate: denials are explicit outcomes, decided before any
	//browser work and never fed back into the failure counter
	decision := e.cfg.Monitor.BeforeAttempt(entry.Platform)
	switch decision.Decision {
	case apply.DecisionDenyCircuitOpen:
		log.Printf("⛔ %s: %s", entry.Platform, decision.Reason)
		return e.finishWithout(ctx, entry, apply.StatusFailedPlatformDisabled, decision.Reason)
	case apply.DecisionDenyRateLimited:
		log.Printf("🐢 %s: %s", entry.Platform, decision.Reason)
		return e.finishWithout(ctx, entry, apply.StatusFailedRateLimited, decision.Reason)
	}

	info, err := e.cfg.Bank.GetPersonalInfo(entry.Market)
	if err != nil {
		return e.finishWithout(ctx, entry, apply.StatusFailedConfig, err.Error())
	}

	dir, err := artifacts.NewDir(e.cfg.ArtifactsRoot, entry.ID)
	if err != nil {
		return e.finishWithout(ctx, entry, apply.StatusFailedConfig, err.Error())
	}

	sess, release, err := e.cfg.Sessions(entry.Platform)
	if err != nil {
		result := e.finishWithout(ctx, entry, apply.StatusFailedNavigation, "session setup: "+err.Error())
		e.cfg.Monitor.RecordOutcome(entry.Platform, result.Status)
		return result
	}
	defer release()

	r := e.runnerFor(entry.Platform)
	req := runner.Request{
		URL:        entry.URL,
		ResumePath: entry.ResumePath,
		Market:     entry.Market,
		DryRun:     dryRun,
		Info:       info,
		Bank:       e.cfg.Bank,
		Artifacts:  dir,
		Cancel:     &e.cancel,
	}

	result := r.Run(ctx, sess, req)
	result.ID = entry.ID

	//classification happens only after an actual submit; pauses and
	//failures keep the runner's status untouched
	if result.Submitted {
		vr := e.cfg.Verifier.Verify(result.FinalURL, result.FinalDOM, e.cfg.Hints[entry.Platform])
		switch vr.Tier {
		case apply.TierVerified:
			result.Status = apply.StatusAppliedVerified
			result.Confirmation = vr.Evidence
		case apply.TierSoft:
			result.Status = apply.StatusAppliedSoft
			result.Confirmation = vr.Evidence
			result.NeedsReview = true
		default:
			result.Status = apply.StatusPausedAmbiguousResult
			result.AddError("verification inconclusive: " + vr.Signal)
		}
		log.Printf("🔎 Verification for %s: %s (%s)", entry.URL, vr.Tier, vr.Signal)
	}

	e.cfg.Monitor.RecordOutcome(entry.Platform, result.Status)
	e.persist(ctx, entry.ID, dir, result)
	e.notify(result)
	return result
}

// finishWithout terminates an entry that never reached a browser.
func (e *Engine) finishWithout(ctx context.Context, entry *apply.QueueEntry, status apply.AttemptStatus, detail string) *apply.AttemptResult {
	result := &apply.AttemptResult{
		ID:         entry.ID,
		URL:        entry.URL,
		Platform:   entry.Platform,
		Market:     entry.Market,
		Status:     status,
		StartedAt:  time.Now().UTC(),
		FinishedAt: time.Now().UTC(),
	}
	if detail != "" {
		result.AddError(detail)
	}
	dir, err := artifacts.NewDir(e.cfg.ArtifactsRoot, entry.ID)
	if err == nil {
		e.persist(ctx, entry.ID, dir, result)
	} else if err := e.cfg.Store.RecordStatus(ctx, entry.ID, status, nil); err != nil {
		log.Printf("⚠️ Failed to record status for %s: %v", entry.ID, err)
	}
	e.notify(result)
	return result
}

// offQueueResult builds a terminal record for outcomes that never create a
// queue entry (dedup skips, unsupported URLs). Still persisted as an
// inspectable artifact: no outcome is silently dropped.
func (e *Engine) offQueueResult(url string, platform apply.Platform, market string, status apply.AttemptStatus, detail string) *apply.AttemptResult {
	result := &apply.AttemptResult{
		ID:         uuid.NewString(),
		URL:        url,
		Platform:   platform,
		Market:     market,
		Status:     status,
		StartedAt:  time.Now().UTC(),
		FinishedAt: time.Now().UTC(),
	}
	if detail != "" {
		result.AddError(detail)
	}
	if dir, err := artifacts.NewDir(e.cfg.ArtifactsRoot, result.ID); err == nil {
		if path, err := dir.WriteJSON("attempt", result); err == nil {
			result.Artifacts = append(result.Artifacts, path)
		}
	}
	return result
}

// persist writes the attempt log and the final queue status. Persist before
// return: the caller always sees an already-durable record.
func (e *Engine) persist(ctx context.Context, id string, dir *artifacts.Dir, result *apply.AttemptResult) {
	if path, err := dir.WriteJSON("attempt", result); err == nil {
		result.Artifacts = append(result.Artifacts, path)
	} else {
		log.Printf("⚠️ Failed to write attempt log: %v", err)
	}
	if err := e.cfg.Store.RecordStatus(ctx, id, result.Status, result.Artifacts); err != nil {
		log.Printf("⚠️ Failed to record status for %s: %v", id, err)
	}
}

func (e *Engine) notify(result *apply.AttemptResult) {
	if e.cfg.Reporter == nil {
		return
	}
	var err error
	if result.Status.Paused() {
		err = e.cfg.Reporter.NotifyPause(result)
	} else {
		err = e.cfg.Reporter.NotifyResult(result)
	}
	if err != nil {
		log.Printf("⚠️ Reporter notification failed: %v", err)
	}
}
