package mailstore

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"position-report-extractor/internal/archive"
	"position-report-extractor/internal/mailparse"
	"position-report-extractor/internal/models"
)

// DirStore reads .eml files below <root>/<folder>.
type DirStore struct {
	root string
}

// NewDirStore returns a store over the archive rooted at root.
func NewDirStore(root string) *DirStore {
	return &DirStore{root: root}
}

func (s *DirStore) Name() string { return "dir:" + s.root }

// List returns the messages of folder sorted by path. A missing folder has no
// messages.
func (s *DirStore) List(ctx context.Context, folder string) ([]Ref, error) {
	base := filepath.Join(s.root, folder)

	var refs []Ref
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == base {
				return filepath.SkipDir
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), archive.Ext) {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		refs = append(refs, Ref{Folder: folder, ID: filepath.ToSlash(rel), path: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", base, err)
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
	return refs, nil
}

// Fetch reads and parses one archived message.
func (s *DirStore) Fetch(ctx context.Context, ref Ref) (*models.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := ref.path
	if path == "" {
		path = filepath.Join(s.root, filepath.FromSlash(ref.ID))
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", ref.ID, err)
	}

	doc, err := mailparse.ParseBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ref.ID, err)
	}
	doc.ID = ref.ID
	doc.Folder = ref.Folder
	return doc, nil
}
