package processor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"position-report-extractor/internal/extract"
	"position-report-extractor/internal/logging"
	"position-report-extractor/internal/mailstore"
	"position-report-extractor/internal/models"
	"position-report-extractor/internal/section"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// LowMatchRate is the share of matched documents under which a source is
// reported as probably misconfigured.
const LowMatchRate = 0.10

// Options tunes a run.
type Options struct {
	// Workers bounds the documents processed concurrently.
	Workers int
	// DocumentBudget is the wall-clock limit of one document, zero for none.
	DocumentBudget time.Duration
	// MaxAge skips documents sent longer ago, zero keeps everything.
	MaxAge time.Duration
}

// SourceSummary counts the documents of one source.
type SourceSummary struct {
	Name    string
	Scanned int
	Matched int
	Records int
	Failed  int
	Skipped int
}

// LowMatch reports a source that found tables in under LowMatchRate of its
// scanned documents.
func (s SourceSummary) LowMatch() bool {
	return s.Scanned > 0 && float64(s.Matched) < LowMatchRate*float64(s.Scanned)
}

// Summary totals a run.
type Summary struct {
	Scanned int
	Matched int
	Records int
	Failed  int
	Skipped int
	Sources []SourceSummary
}

func (s *Summary) add(src SourceSummary) {
	s.Scanned += src.Scanned
	s.Matched += src.Matched
	s.Records += src.Records
	s.Failed += src.Failed
	s.Skipped += src.Skipped
	s.Sources = append(s.Sources, src)
}

// Result holds the records of one source ordered by sent time.
type Result struct {
	Source  *extract.Source
	Records []models.Record
}

type Processor struct {
	store   mailstore.Store
	sources []*extract.Source
	opts    Options
	now     func() time.Time
}

// NewProcessor creates a new Processor reading documents from store for every source
func NewProcessor(store mailstore.Store, sources []*extract.Source, opts Options) *Processor {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Processor{
		store:   store,
		sources: sources,
		opts:    opts,
		now:     time.Now,
	}
}

// Run extracts every source. Per-document failures are logged and counted,
// only a cancelled context stops the run.
func (p *Processor) Run(ctx context.Context) ([]Result, Summary, error) {
	var summary Summary
	results := make([]Result, 0, len(p.sources))

	for _, src := range p.sources {
		res, sum, err := p.runSource(ctx, src)
		if err != nil {
			return nil, summary, err
		}
		results = append(results, res)
		summary.add(sum)

		entry := logging.Log.WithFields(logrus.Fields{
			"broker":  sum.Name,
			"scanned": sum.Scanned,
			"matched": sum.Matched,
			"records": sum.Records,
			"failed":  sum.Failed,
			"skipped": sum.Skipped,
		})
		if sum.LowMatch() {
			entry.Warnf("Low match rate for %s: tables found in %d of %d emails, check its layout", sum.Name, sum.Matched, sum.Scanned)
		} else {
			entry.Infof("Finished %s", sum.Name)
		}
	}

	logging.Log.WithFields(logrus.Fields{
		"scanned": summary.Scanned,
		"matched": summary.Matched,
		"records": summary.Records,
		"failed":  summary.Failed,
		"skipped": summary.Skipped,
	}).Info("Run summary")

	return results, summary, nil
}

type status int

const (
	statusEmpty status = iota
	statusMatched
	statusFailed
	statusSkipped
)

type outcome struct {
	status  status
	records []models.Record
}

func (p *Processor) runSource(ctx context.Context, src *extract.Source) (Result, SourceSummary, error) {
	sum := SourceSummary{Name: src.Name}
	res := Result{Source: src}

	refs, err := p.store.List(ctx, src.Folder)
	if err != nil {
		if ctx.Err() != nil {
			return res, sum, ctx.Err()
		}
		logging.Log.WithField("broker", src.Name).Warnf("Cannot list folder %q: %v", src.Folder, err)
		return res, sum, nil
	}

	outcomes := make([]outcome, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = p.processWithBudget(gctx, src, ref)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, sum, err
	}
	if err := ctx.Err(); err != nil {
		return res, sum, err
	}

	for _, o := range outcomes {
		sum.Scanned++
		switch o.status {
		case statusMatched:
			sum.Matched++
			sum.Records += len(o.records)
			res.Records = append(res.Records, o.records...)
		case statusFailed:
			sum.Failed++
		case statusSkipped:
			sum.Skipped++
		}
	}

	sort.SliceStable(res.Records, func(i, j int) bool {
		a, b := res.Records[i], res.Records[j]
		if !a.SentAt.Equal(b.SentAt) {
			return a.SentAt.Before(b.SentAt)
		}
		return a.Origin < b.Origin
	})
	return res, sum, nil
}

// processWithBudget runs one document, giving up once the budget expires.
func (p *Processor) processWithBudget(ctx context.Context, src *extract.Source, ref mailstore.Ref) outcome {
	if p.opts.DocumentBudget <= 0 {
		return p.processDocument(ctx, src, ref)
	}

	ctx, cancel := context.WithTimeout(ctx, p.opts.DocumentBudget)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		done <- p.processDocument(ctx, src, ref)
	}()

	select {
	case o := <-done:
		return o
	case <-ctx.Done():
		logging.ForDocument("unknown", ref.ID).Warnf("Skipping email after %v: %v", p.opts.DocumentBudget, ctx.Err())
		return outcome{status: statusSkipped}
	}
}

// processDocument orchestrates one email: fetch → check age → extract
func (p *Processor) processDocument(ctx context.Context, src *extract.Source, ref mailstore.Ref) outcome {
	doc, err := p.store.Fetch(ctx, ref)
	if err != nil && ctx.Err() != nil {
		return outcome{status: statusSkipped}
	}
	if err != nil {
		logging.ForDocument("unknown", ref.ID).Warnf("Error reading email: %v", err)
		return outcome{status: statusFailed}
	}

	locallog := logging.ForDocument(doc.TraceID, ref.ID)

	if !p.isDocumentInWindowAt(doc, p.now()) {
		locallog.Debugf("Email is older than %v (date: %v), skipping", p.opts.MaxAge, doc.SentAt)
		return outcome{status: statusSkipped}
	}

	recs, err := p.extract(doc, src)
	if errors.Is(err, section.ErrNotFound) {
		locallog.Debugf("No %s section", src.Name)
		return outcome{status: statusEmpty}
	}
	if err != nil {
		locallog.Warnf("Error extracting %s: %v", src.Name, err)
		return outcome{status: statusFailed}
	}
	if len(recs) == 0 {
		locallog.Debugf("%s section holds no rows", src.Name)
		return outcome{status: statusEmpty}
	}

	locallog.Debugf("Extracted %d %s records", len(recs), src.Name)
	return outcome{status: statusMatched, records: recs}
}

// extract turns a parser panic into a per-document error.
func (p *Processor) extract(doc *models.RawDocument, src *extract.Source) (recs []models.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extract panic: %v", r)
		}
	}()
	return extract.Extract(doc, src)
}

// isDocumentInWindowAt allows testing with a fixed "now" time for deterministic unit tests
func (p *Processor) isDocumentInWindowAt(doc *models.RawDocument, now time.Time) bool {
	if p.opts.MaxAge <= 0 || doc.SentAt.IsZero() {
		return true
	}

	cutoff := now.Add(-p.opts.MaxAge)
	return !doc.SentAt.Before(cutoff) // inclusive
}
