package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"position-report-extractor/internal/assemble"
	"position-report-extractor/internal/models"
	"position-report-extractor/internal/section"
)

// ErrMalformed reports a source configuration that cannot be compiled. It is
// fatal at startup.
var ErrMalformed = errors.New("malformed source configuration")

// Source is a compiled per-broker configuration.
type Source struct {
	Name       string
	Folder     string
	Locator    section.Locator
	Reference  *regexp.Regexp
	Strategies []Strategy
	Derive     []Derivation

	columns []string
}

// Columns returns the leading column order for the tabular output.
func (s *Source) Columns() []string {
	return append([]string(nil), s.columns...)
}

// Compile validates cfg and builds the matching Source.
func Compile(cfg models.SourceConfig) (*Source, error) {
	if strings.TrimSpace(cfg.Name) == "" {
		return nil, fmt.Errorf("%w: source without name", ErrMalformed)
	}

	src := &Source{
		Name:   cfg.Name,
		Folder: cfg.Folder,
	}
	if src.Folder == "" {
		src.Folder = cfg.Name
	}

	wrap := func(err error) error {
		return fmt.Errorf("source %q: %w", cfg.Name, err)
	}

	if cfg.Reference != "" {
		re, err := compileRegexp("reference", cfg.Reference)
		if err != nil {
			return nil, wrap(err)
		}
		for _, g := range []string{"day", "month", "year"} {
			if re.SubexpIndex(g) < 0 {
				return nil, wrap(fmt.Errorf("%w: reference has no %q group", ErrMalformed, g))
			}
		}
		src.Reference = re
	}

	loc, err := compileLocator(cfg.Anchors, cfg.Window, src.Reference)
	if err != nil {
		return nil, wrap(err)
	}
	src.Locator = loc

	if len(cfg.Strategies) == 0 {
		return nil, wrap(fmt.Errorf("%w: no strategies", ErrMalformed))
	}
	for i, sc := range cfg.Strategies {
		st, names, err := compileStrategy(sc)
		if err != nil {
			return nil, wrap(fmt.Errorf("strategy %d: %w", i, err))
		}
		src.Strategies = append(src.Strategies, st)
		if i == 0 && len(cfg.Columns) == 0 {
			src.columns = append(provenance(cfg), names...)
		}
	}
	if len(cfg.Columns) > 0 {
		src.columns = append([]string(nil), cfg.Columns...)
	}

	for i, dc := range cfg.Derive {
		d, err := compileDerivation(dc)
		if err != nil {
			return nil, wrap(fmt.Errorf("derive %d: %w", i, err))
		}
		src.Derive = append(src.Derive, d)
	}

	return src, nil
}

func provenance(cfg models.SourceConfig) []string {
	cols := []string{models.ColBroker, models.ColSentDate, models.ColEmailFile}
	if cfg.Reference != "" {
		cols = append(cols, models.ColReportDate)
	}
	return cols
}

func compileRegexp(what, expr string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, what, err)
	}
	return re, nil
}

func optionalRegexp(what, expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return nil, nil
	}
	return compileRegexp(what, expr)
}

func compileLocator(anchors []models.AnchorConfig, window int, reference *regexp.Regexp) (section.Locator, error) {
	if len(anchors) == 0 {
		return section.Locator{}, fmt.Errorf("%w: no anchors", ErrMalformed)
	}
	if window < 0 {
		return section.Locator{}, fmt.Errorf("%w: negative window", ErrMalformed)
	}

	loc := section.Locator{MaxWindow: window}
	for i, ac := range anchors {
		var a section.Anchor
		if ac.Phrase != "" {
			a = section.PhraseAnchor(ac.Phrase, ac.StrictOnly)
		} else {
			var err error
			if a.Strict, err = optionalRegexp("anchor strict", ac.Strict); err != nil {
				return section.Locator{}, err
			}
			if a.Loose, err = optionalRegexp("anchor loose", ac.Loose); err != nil {
				return section.Locator{}, err
			}
		}
		if a.Strict == nil && a.Loose == nil {
			return section.Locator{}, fmt.Errorf("%w: anchor %d is empty", ErrMalformed, i)
		}
		if ac.Reference {
			if reference == nil {
				return section.Locator{}, fmt.Errorf("%w: anchor %d needs a reference pattern", ErrMalformed, i)
			}
			a.Accept = func(m string) bool {
				return !reportDate(reference, []string{m}).IsZero()
			}
		}
		loc.Anchors = append(loc.Anchors, a)
	}
	return loc, nil
}

var kinds = map[string]assemble.Kind{
	"":           assemble.Fixed,
	"fixed":      assemble.Fixed,
	"variable":   assemble.Variable,
	"terminator": assemble.Terminator,
	"trailing":   assemble.Trailing,
}

func compileField(fc models.FieldConfig) (assemble.Field, error) {
	kind, ok := kinds[fc.Kind]
	if !ok {
		return assemble.Field{}, fmt.Errorf("%w: field %q has unknown kind %q", ErrMalformed, fc.Name, fc.Kind)
	}
	f := assemble.Field{Name: fc.Name, Kind: kind}

	if fc.Match != "" {
		re, err := compileRegexp("field "+fc.Name, fc.Match)
		if err != nil {
			return assemble.Field{}, err
		}
		f.Valid = assemble.FullMatch(re)
	}

	clean, err := cleaner(fc.Clean)
	if err != nil {
		return assemble.Field{}, err
	}
	f.Clean = clean
	return f, nil
}

func compileStrategy(sc models.StrategyConfig) (Strategy, []string, error) {
	if sc.Kind == "pattern" {
		return compilePattern(sc)
	}

	fields := make([]assemble.Field, 0, len(sc.Fields))
	for _, fc := range sc.Fields {
		f, err := compileField(fc)
		if err != nil {
			return nil, nil, err
		}
		fields = append(fields, f)
	}
	schema := assemble.Schema{
		Fields: fields,
		Tuning: assemble.Tuning{
			Advance:     sc.Tuning.Advance,
			MaxFailures: sc.Tuning.MaxFailures,
			MiddleCap:   sc.Tuning.MiddleCap,
			Joiner:      sc.Tuning.Joiner,
		},
	}
	if err := schema.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	stop, err := optionalRegexp("stop", sc.Stop)
	if err != nil {
		return nil, nil, err
	}

	switch sc.Kind {
	case "vertical":
		cutoff, err := optionalRegexp("cutoff", sc.Cutoff)
		if err != nil {
			return nil, nil, err
		}
		if stop != nil {
			schema.Stop = stop.MatchString
		}
		return &vertical{schema: schema, header: sc.Header, cutoff: cutoff}, schema.Names(), nil

	case "delimited":
		for _, f := range fields {
			if f.Kind != assemble.Fixed {
				return nil, nil, fmt.Errorf("%w: delimited field %q must be fixed", ErrMalformed, f.Name)
			}
		}
		if sc.MinParts > len(fields) {
			return nil, nil, fmt.Errorf("%w: minParts %d exceeds %d fields", ErrMalformed, sc.MinParts, len(fields))
		}
		minParts := sc.MinParts
		if minParts <= 0 {
			minParts = len(fields)
		}
		return &delimited{fields: fields, stop: stop, minParts: minParts}, schema.Names(), nil
	}

	return nil, nil, fmt.Errorf("%w: unknown strategy kind %q", ErrMalformed, sc.Kind)
}

func compilePattern(sc models.StrategyConfig) (Strategy, []string, error) {
	if sc.Pattern == "" {
		return nil, nil, fmt.Errorf("%w: pattern strategy without pattern", ErrMalformed)
	}
	re, err := compileRegexp("pattern", sc.Pattern)
	if err != nil {
		return nil, nil, err
	}

	p := &pattern{
		re:           re,
		continuation: sc.Continuation,
		maxBlankRun:  sc.MaxBlankRun,
		missLimit:    sc.MissLimit,
		rawField:     sc.RawField,
	}
	if p.start, err = optionalRegexp("start", sc.Start); err != nil {
		return nil, nil, err
	}
	if p.stop, err = optionalRegexp("stop", sc.Stop); err != nil {
		return nil, nil, err
	}
	if p.stopUnless, err = optionalRegexp("stopUnless", sc.StopUnless); err != nil {
		return nil, nil, err
	}

	fcs := sc.Fields
	if len(fcs) == 0 {
		for _, g := range re.SubexpNames() {
			if g != "" {
				fcs = append(fcs, models.FieldConfig{Name: g})
			}
		}
	}
	if len(fcs) == 0 {
		return nil, nil, fmt.Errorf("%w: pattern has no named groups", ErrMalformed)
	}

	seen := make(map[string]bool)
	names := make([]string, 0, len(fcs)+1)
	for _, fc := range fcs {
		group := fc.Group
		if group == "" {
			group = fc.Name
		}
		idx := re.SubexpIndex(group)
		if fc.Name == "" || idx < 0 {
			return nil, nil, fmt.Errorf("%w: field %q has no group %q in pattern", ErrMalformed, fc.Name, group)
		}
		if seen[fc.Name] {
			return nil, nil, fmt.Errorf("%w: duplicate field %q", ErrMalformed, fc.Name)
		}
		seen[fc.Name] = true

		clean, err := cleaner(fc.Clean)
		if err != nil {
			return nil, nil, err
		}
		p.fields = append(p.fields, patternField{name: fc.Name, group: idx, clean: clean})
		names = append(names, fc.Name)
	}
	if p.rawField != "" {
		names = append(names, p.rawField)
	}
	return p, names, nil
}
