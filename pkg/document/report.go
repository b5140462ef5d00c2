package document

import "fmt"

// Section status values used in info reports.
const (
	StatusOK       = "ok"
	StatusModified = "modified"
)

// SectionInfo describes one tracked section for reporting.
type SectionInfo struct {
	Range  string `json:"range"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Source string `json:"source,omitempty"`
}

// Info is a human-oriented summary of a document's tracking state.
type Info struct {
	Path          string        `json:"path"`
	CommentPrefix string        `json:"comment_prefix,omitempty"`
	Metafile      bool          `json:"metafile"`
	Hash          string        `json:"hash,omitempty"`
	Modified      bool          `json:"modified"`
	Sections      []SectionInfo `json:"sections,omitempty"`
	Target        string        `json:"target,omitempty"`
	Permissions   *int          `json:"permissions,omitempty"`
}

// Info summarizes the document for reporting.
func (d *Document) Info() Info {
	info := Info{
		Path:        d.Path,
		Modified:    d.Modified(),
		Target:      d.TargetPath,
		Permissions: d.Permissions,
	}

	if d.Meta != nil {
		info.Metafile = true
		info.Hash = d.Meta.Hash
		return info
	}

	info.CommentPrefix = d.CommentPrefix
	for _, n := range d.NamedSections() {
		status := StatusOK
		if n.Modified() {
			status = StatusModified
		}
		info.Sections = append(info.Sections, SectionInfo{
			Range:  fmt.Sprintf("%d-%d", n.StartLine(), n.EndLine()),
			Name:   n.Name,
			Status: status,
			Source: n.Source,
		})
	}
	return info
}
