package reconcile

import (
	"github.com/agentstation/dotsect/internal/pathutil"
	"github.com/agentstation/dotsect/pkg/document"
	"github.com/agentstation/dotsect/pkg/logging"
	"github.com/agentstation/dotsect/pkg/section"
)

// Cache memoizes parsed source documents for one invocation, so a source
// referenced by several target sections is read once. Append-only, not safe
// for concurrent use.
type Cache map[string]*document.Document

// NewCache returns an empty source-document cache.
func NewCache() Cache {
	return make(Cache)
}

// Load returns the parsed document for path, reading it on first use.
func (c Cache) Load(path string) (*document.Document, error) {
	expanded := pathutil.ExpandTilde(path)
	if doc, ok := c[expanded]; ok {
		return doc, nil
	}
	doc, err := document.Load(expanded)
	if err != nil {
		return nil, err
	}
	c[expanded] = doc
	return doc, nil
}

// Update pulls fresh content into target from the sources its sections (or
// its metafile) declare, using cache for source documents. The target is
// mutated in place; the caller decides whether to write it back.
func Update(target *document.Document, cache Cache) (int, section.ChangeState) {
	if target.Meta != nil {
		return updateMetaFile(target, cache)
	}

	applied := 0
	state := section.Unchanged
	for _, n := range target.NamedSections() {
		if n.Source == "" {
			continue
		}
		source, err := cache.Load(n.Source)
		if err != nil {
			logging.Warn().Str("target", target.Path).Str("section", n.Name).
				Str("source", n.Source).Err(err).Msg("cannot read update source")
			continue
		}
		candidate, ok := source.Section(n.Name)
		if !ok {
			logging.Warn().Str("target", target.Path).Str("section", n.Name).
				Str("source", n.Source).Msg("section missing from update source")
			continue
		}
		sectionState, err := ApplySection(target, candidate)
		if err != nil {
			logging.Warn().Str("target", target.Path).Str("section", n.Name).
				Err(err).Msg("section not updated")
			continue
		}
		if sectionState.DidChange() {
			logging.Info().Str("target", target.Path).Str("section", n.Name).
				Str("source", n.Source).Msg("updated section")
			applied++
			state = section.Changed
		}
	}
	return applied, state
}

// updateMetaFile refreshes a metafile-backed target from its declared source.
func updateMetaFile(target *document.Document, cache Cache) (int, section.ChangeState) {
	if target.Meta.Source == "" {
		return 0, section.Unchanged
	}
	source, err := cache.Load(target.Meta.Source)
	if err != nil {
		logging.Warn().Str("target", target.Path).Str("source", target.Meta.Source).
			Err(err).Msg("cannot read update source")
		return 0, section.Unchanged
	}
	if source.Meta == nil {
		logging.Warn().Str("target", target.Path).Str("source", target.Meta.Source).
			Msg("update source is not metafile-backed")
		return 0, section.Unchanged
	}
	return 0, applyMetaFile(source.Meta, target.Meta)
}

// UpdateFile loads the document at path, updates it from its declared
// sources and writes it back when something changed.
func UpdateFile(path string, cache Cache) (*Result, error) {
	target, err := document.Load(path)
	if err != nil {
		return nil, err
	}
	applied, state := Update(target, cache)
	result := &Result{Target: path, Applied: applied}
	if !state.DidChange() {
		return result, nil
	}
	if err := target.WriteFile(); err != nil {
		return nil, err
	}
	result.Changed = true
	return result, nil
}
