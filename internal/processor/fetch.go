package processor

import (
	"context"
	"time"

	"position-report-extractor/internal/archive"
	"position-report-extractor/internal/extract"
	"position-report-extractor/internal/index"
	"position-report-extractor/internal/logging"
	"position-report-extractor/internal/mailstore"

	"github.com/sirupsen/logrus"
)

// Index remembers downloaded messages.
type Index interface {
	Has(ctx context.Context, store, entryID string) (bool, error)
	Mark(ctx context.Context, e index.Entry) error
	Count(ctx context.Context, folder string) (int, error)
}

// FolderCount is the outcome of mirroring one broker folder.
type FolderCount struct {
	Folder  string
	Seen    int
	New     int
	Skipped int
	Failed  int
	// Indexed is the number of messages of the folder in the index after the run.
	Indexed int
}

// Fetcher mirrors broker folders of a store into the on-disk archive.
type Fetcher struct {
	store mailstore.Store
	index Index
	root  string
}

// NewFetcher creates a Fetcher saving messages below root
func NewFetcher(store mailstore.Store, idx Index, root string) *Fetcher {
	return &Fetcher{store: store, index: idx, root: root}
}

// Run saves every message not yet in the index. Messages that cannot be
// fetched or saved are logged and left for the next run.
func (f *Fetcher) Run(ctx context.Context, sources []*extract.Source) ([]FolderCount, error) {
	counts := make([]FolderCount, 0, len(sources))
	for _, src := range sources {
		c, err := f.folder(ctx, src.Folder)
		if err != nil {
			return counts, err
		}
		counts = append(counts, c)

		logging.Log.WithFields(logrus.Fields{
			"folder":  c.Folder,
			"seen":    c.Seen,
			"new":     c.New,
			"skipped": c.Skipped,
			"failed":  c.Failed,
			"indexed": c.Indexed,
		}).Info("Folder mirrored")
	}
	return counts, nil
}

func (f *Fetcher) folder(ctx context.Context, folder string) (FolderCount, error) {
	c := FolderCount{Folder: folder}

	refs, err := f.store.List(ctx, folder)
	if err != nil {
		if ctx.Err() != nil {
			return c, ctx.Err()
		}
		logging.Log.WithField("folder", folder).Warnf("Cannot list folder: %v", err)
		return c, nil
	}

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return c, err
		}
		c.Seen++

		has, err := f.index.Has(ctx, f.store.Name(), ref.ID)
		if err != nil {
			return c, err
		}
		if has {
			c.Skipped++
			continue
		}

		doc, err := f.store.Fetch(ctx, ref)
		if err != nil {
			logging.ForDocument("unknown", ref.ID).Warnf("Error fetching email: %v", err)
			c.Failed++
			continue
		}
		locallog := logging.ForDocument(doc.TraceID, ref.ID)

		path, err := archive.Save(f.root, folder, doc)
		if err != nil {
			locallog.Warnf("Error saving email: %v", err)
			c.Failed++
			continue
		}

		err = f.index.Mark(ctx, index.Entry{
			Store:      f.store.Name(),
			EntryID:    ref.ID,
			MessageID:  doc.MessageID,
			Received:   doc.SentAt,
			Subject:    doc.Subject,
			Folder:     folder,
			SavedPath:  path,
			RecordedAt: time.Now(),
		})
		if err != nil {
			return c, err
		}
		locallog.Debugf("Saved %s", path)
		c.New++
	}

	n, err := f.index.Count(ctx, folder)
	if err != nil {
		return c, err
	}
	c.Indexed = n
	return c, nil
}

// Totals sums folder counts.
func Totals(counts []FolderCount) FolderCount {
	var t FolderCount
	for _, c := range counts {
		t.Seen += c.Seen
		t.New += c.New
		t.Skipped += c.Skipped
		t.Failed += c.Failed
		t.Indexed += c.Indexed
	}
	return t
}
