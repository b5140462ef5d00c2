// Package reconcile propagates tracked content from source documents into
// target documents. Reconciliation is deliberately conservative: a section or
// file carrying local modifications blocks propagation on that side, and
// ineligible pairings degrade to logged no-ops rather than errors.
package reconcile

import (
	"os"

	"github.com/agentstation/dotsect/internal/pathutil"
	"github.com/agentstation/dotsect/pkg/constants"
	"github.com/agentstation/dotsect/pkg/document"
	"github.com/agentstation/dotsect/pkg/errors"
	"github.com/agentstation/dotsect/pkg/logging"
	"github.com/agentstation/dotsect/pkg/metafile"
	"github.com/agentstation/dotsect/pkg/section"
)

// Result summarizes one reconciliation run against a target file.
type Result struct {
	// Source and Target are the file paths involved.
	Source string `json:"source"`
	Target string `json:"target"`
	// Created reports that the target file did not exist and was transplanted.
	Created bool `json:"created"`
	// Applied counts per-section replacements. Zero on the whole-file fast
	// path and for metafile targets.
	Applied int `json:"applied"`
	// Changed reports whether the target was rewritten.
	Changed bool `json:"changed"`
}

// Eligible reports whether target may receive content from source. Backing
// types must match and both sides must be managed.
func Eligible(source, target *document.Document) error {
	if !source.IsManaged() {
		return errors.Wrapf(errors.ErrUnmanaged, "source %s has no tracked sections", source.Path)
	}
	if !target.IsManaged() {
		return errors.Wrapf(errors.ErrUnmanaged, "target %s has no tracked sections", target.Path)
	}
	if (source.Meta != nil) != (target.Meta != nil) {
		return errors.NewApplyError(source.Path, target.Path, "",
			"metafile and comment tracking cannot be mixed")
	}
	return nil
}

// ApplySection replaces the target section named like candidate with
// candidate, wholesale. Refused for metafile-backed targets, for candidates
// carrying uncompiled local edits, for target sections with local edits, and
// when the target has no section of that name.
func ApplySection(target *document.Document, candidate *section.Named) (section.ChangeState, error) {
	if target.Meta != nil {
		return section.Unchanged, errors.NewApplyError("", target.Path, candidate.Name,
			"section operations are undefined for metafile-backed files")
	}
	if candidate.Modified() {
		return section.Unchanged, errors.NewApplyError("", target.Path, candidate.Name,
			"source section has uncompiled modifications")
	}
	existing, ok := target.Section(candidate.Name)
	if !ok {
		return section.Unchanged, errors.Wrapf(errors.ErrNotFound,
			"section %s not present in %s", candidate.Name, target.Path)
	}
	if existing.Modified() {
		return section.Unchanged, errors.NewApplyError("", target.Path, candidate.Name,
			"target section has local modifications")
	}
	if existing.Hash == candidate.Hash {
		return section.Unchanged, nil
	}
	target.ReplaceSection(candidate)
	return section.Changed, nil
}

// ApplyFile reconciles target from source in place and reports whether the
// target changed along with the number of per-section replacements.
//
// Metafile targets copy content and hash only when both sides are clean and
// the hashes differ. Comment targets take the whole section list when the
// target is unmodified and every target section also exists in the source;
// otherwise each source section is merged individually.
func ApplyFile(source, target *document.Document) (int, section.ChangeState) {
	if err := Eligible(source, target); err != nil {
		logging.Warn().Str("source", source.Path).Str("target", target.Path).
			Err(err).Msg("skipping ineligible file pair")
		return 0, section.Unchanged
	}

	if target.Meta != nil {
		return 0, applyMetaFile(source.Meta, target.Meta)
	}

	if !target.Modified() && coveredBy(target, source) {
		target.Sections = source.Sections
		target.Markers = source.Markers
		logging.Debug().Str("target", target.Path).Msg("replacing all sections")
		return 0, section.Changed
	}

	applied := 0
	for _, candidate := range source.NamedSections() {
		state, err := ApplySection(target, candidate)
		if err != nil {
			logging.Warn().Str("target", target.Path).Str("section", candidate.Name).
				Err(err).Msg("section not applied")
			continue
		}
		if state.DidChange() {
			logging.Info().Str("target", target.Path).Str("section", candidate.Name).
				Msg("applied section")
			applied++
		}
	}
	if applied > 0 {
		return applied, section.Changed
	}
	return 0, section.Unchanged
}

// applyMetaFile copies source content into target. A dirty side always blocks.
func applyMetaFile(source, target *metafile.MetaFile) section.ChangeState {
	if source.Modified {
		logging.Warn().Str("metafile", source.Path()).Msg("source content modified, not applying")
		return section.Unchanged
	}
	if target.Modified {
		logging.Warn().Str("metafile", target.Path()).Msg("target content modified, not applying")
		return section.Unchanged
	}
	if source.Hash == target.Hash {
		return section.Unchanged
	}
	target.SetContent(source.Content())
	target.Hash = source.Hash
	target.Finalize()
	return section.Changed
}

// coveredBy reports whether every named section of target also exists in source.
func coveredBy(target, source *document.Document) bool {
	for _, n := range target.NamedSections() {
		if !source.HasSection(n.Name) {
			return false
		}
	}
	return true
}

// Apply reconciles the file at path into its declared target. A missing
// target file is created, transplanting the source wholesale; an existing
// target is loaded, reconciled and written back only when something changed.
func Apply(path string) (*Result, error) {
	source, err := document.Load(path)
	if err != nil {
		return nil, err
	}
	if source.TargetPath == "" {
		return nil, errors.Wrapf(errors.ErrNoTarget, "%s declares no target", path)
	}

	targetPath := pathutil.ExpandTilde(source.TargetPath)
	result := &Result{Source: path, Target: source.TargetPath}

	created, err := pathutil.CreateFile(targetPath)
	if err != nil {
		return nil, err
	}
	if created {
		if err := transplant(source, targetPath); err != nil {
			return nil, err
		}
		logging.Info().Str("source", path).Str("target", targetPath).Msg("created target file")
		result.Created = true
		result.Changed = true
		return result, nil
	}

	target, err := document.Load(targetPath)
	if err != nil {
		return nil, err
	}
	applied, state := ApplyFile(source, target)
	result.Applied = applied
	if !state.DidChange() {
		return result, nil
	}
	if err := target.WriteFile(); err != nil {
		return nil, err
	}
	result.Changed = true
	return result, nil
}

// transplant writes a freshly created target file from the source document.
// Metafile sources derive a sidecar next to the target with a back-reference
// to the source and inherited permissions.
func transplant(source *document.Document, targetPath string) error {
	content := source.Serialize()
	if err := os.WriteFile(targetPath, []byte(content), constants.FilePermissions); err != nil {
		return errors.WrapIO("write", targetPath, err)
	}

	if source.Meta != nil {
		sidecar := metafile.Derive(targetPath, content, source.Path, source.Meta.Permissions)
		if err := sidecar.WriteFile(); err != nil {
			return err
		}
		return sidecar.WritePermissions()
	}

	if source.Permissions != nil {
		mode, err := metafile.PermissionMode(*source.Permissions)
		if err != nil {
			return err
		}
		if err := os.Chmod(targetPath, mode); err != nil {
			return errors.WrapIO("chmod", targetPath, err)
		}
	}
	return nil
}
