package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"campus_rentals/internal/adapters/observability"
	"campus_rentals/internal/domain"
	"campus_rentals/internal/search"
)

const (
	DefaultDigestWindow = 10
	recordTimeout       = 10 * time.Second
)

// per-search outcomes; also the metric label values
const (
	outcomeNotDue        = "not_due"
	outcomeUserMissing   = "user_missing"
	outcomeFetchFailed   = "fetch_failed"
	outcomeNoMatch       = "no_match"
	outcomeSendFailed    = "send_failed"
	outcomeRecordFailed  = "record_failed"
	outcomeNotified      = "notified"
	outcomeCancelled     = "cancelled"
	outcomeNotifyDisable = "disabled"
)

type NotifierConfig struct {
	Workers      int           // concurrent saved searches; <= 1 is sequential
	DigestWindow int           // newest listings considered per search
	Timeout      time.Duration // whole invocation; 0 = none
}

type RunReport struct {
	Considered   int `json:"considered"`
	NotDue       int `json:"notDue"`
	UserMissing  int `json:"userMissing"`
	FetchFailed  int `json:"fetchFailed"`
	NoMatch      int `json:"noMatch"`
	Notified     int `json:"notified"`
	SendFailed   int `json:"sendFailed"`
	RecordFailed int `json:"recordFailed"`
	Cancelled    int `json:"cancelled"`
}

func (r *RunReport) add(outcome string) {
	switch outcome {
	case outcomeNotDue, outcomeNotifyDisable:
		r.NotDue++
	case outcomeUserMissing:
		r.UserMissing++
	case outcomeFetchFailed:
		r.FetchFailed++
	case outcomeNoMatch:
		r.NoMatch++
	case outcomeSendFailed:
		r.SendFailed++
	case outcomeRecordFailed:
		r.RecordFailed++
	case outcomeNotified:
		r.Notified++
	case outcomeCancelled:
		r.Cancelled++
	}
}

type NotifierService struct {
	searches domain.SavedSearchRepository
	users    domain.UserRepository
	props    domain.PropertyRepository
	mailer   domain.Mailer
	cfg      NotifierConfig
	now      func() time.Time
}

func NewNotifierService(s domain.SavedSearchRepository, u domain.UserRepository, p domain.PropertyRepository,
	m domain.Mailer, cfg NotifierConfig) *NotifierService {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.DigestWindow <= 0 {
		cfg.DigestWindow = DefaultDigestWindow
	}
	return &NotifierService{searches: s, users: u, props: p, mailer: m, cfg: cfg, now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (s *NotifierService) WithClock(now func() time.Time) *NotifierService {
	s.now = now
	return s
}

// ProcessSavedSearches runs one batch invocation. Only a failure to list the
// saved searches is returned; per-search failures are logged and counted.
func (s *NotifierService) ProcessSavedSearches(ctx context.Context) (RunReport, error) {
	start := time.Now()
	defer func() { observability.ObserveRun(time.Since(start)) }()

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	var report RunReport
	list, err := s.searches.ListActiveSavedSearches(ctx)
	if err != nil {
		return report, fmt.Errorf("list saved searches: %w", err)
	}
	report.Considered = len(list)
	now := s.now()

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = semaphore.NewWeighted(int64(s.cfg.Workers))
	)
	record := func(outcome string) {
		observability.ObserveSearch(outcome)
		mu.Lock()
		report.add(outcome)
		mu.Unlock()
	}

	for i, ss := range list {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			// Deadline or cancellation: leave the rest untouched for the next tick.
			for range list[i:] {
				record(outcomeCancelled)
			}
			log.Warn().Err(err).Int("remaining", len(list)-i).Msg("saved-search batch interrupted")
			break
		}
		wg.Add(1)
		go func(ss domain.SavedSearch) {
			defer wg.Done()
			defer sem.Release(1)
			record(s.processOne(ctx, ss, now))
		}(ss)
	}
	wg.Wait()

	log.Info().
		Int("considered", report.Considered).
		Int("notified", report.Notified).
		Int("no_match", report.NoMatch).
		Int("not_due", report.NotDue).
		Int("failed", report.UserMissing+report.FetchFailed+report.SendFailed+report.RecordFailed).
		Int("cancelled", report.Cancelled).
		Dur("duration", time.Since(start)).
		Msg("saved-search batch completed")
	return report, nil
}

func (s *NotifierService) processOne(ctx context.Context, ss domain.SavedSearch, now time.Time) string {
	l := log.With().Str("search_id", ss.ID).Str("user_id", ss.UserID).Logger()

	if ctx.Err() != nil {
		return outcomeCancelled
	}
	if !ss.EmailNotifications {
		return outcomeNotifyDisable
	}
	if !ShouldNotify(ss, now) {
		return outcomeNotDue
	}

	user, err := s.users.GetUserContact(ctx, ss.UserID)
	if err != nil || user.Email == "" {
		if err == nil || errors.Is(err, domain.ErrNotFound) {
			l.Warn().Msg("saved search owner not found, skipping")
		} else {
			l.Error().Err(err).Msg("user lookup failed, skipping")
		}
		return outcomeUserMissing
	}

	spec := search.FromSavedSearch(ss.Filters)
	recent, err := s.props.ListRecentProperties(ctx, spec.Pushdown(search.DigestPredicates, s.cfg.DigestWindow))
	if err != nil {
		l.Error().Err(err).Msg("fetch recent properties failed")
		return outcomeFetchFailed
	}
	matches := search.Filter(recent, spec, search.DigestPredicates)
	if len(matches) == 0 {
		l.Debug().Msg("no matching properties")
		return outcomeNoMatch
	}

	// Do not start a send we may not be able to record.
	if ctx.Err() != nil {
		return outcomeCancelled
	}
	err = s.mailer.SendDigest(ctx, domain.Digest{
		To: user, SearchID: ss.ID, SearchName: ss.Name, Properties: matches, RunAt: now,
	})
	observability.ObserveEmail(err)
	if err != nil {
		l.Error().Err(err).Int("matches", len(matches)).Msg("digest send failed")
		return outcomeSendFailed
	}

	// The mail is out; record it even if the invocation deadline just passed.
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := s.searches.SetLastNotified(wctx, ss.ID, s.now()); err != nil {
		l.Error().Err(err).Msg("digest sent but lastNotified not recorded")
		return outcomeRecordFailed
	}
	l.Info().Int("matches", len(matches)).Msg("digest sent")
	return outcomeNotified
}
