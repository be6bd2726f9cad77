package morph

import "fmt"

// SectionRecord is the flat, loader-facing form of a section: samples plus a
// parent reference by ID. A ParentID below zero marks the arbor root.
type SectionRecord struct {
	ID       int
	ParentID int
	Type     SampleType
	Samples  []*Sample
}

// BuildArbor links a flat list of section records into a rooted tree.
// Children are attached in record order. It fails on an empty record list,
// a missing or duplicated root, an orphaned parent reference, or a parent
// chain that never reaches the root (a cycle), since any of these would make
// recursive traversal unsound.
func BuildArbor(label string, records []SectionRecord) (*Arbor, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("build arbor %q: no sections", label)
	}

	byID := make(map[int]*Section, len(records))
	for _, rec := range records {
		if _, dup := byID[rec.ID]; dup {
			return nil, fmt.Errorf("build arbor %q: duplicate section id %d", label, rec.ID)
		}
		byID[rec.ID] = &Section{
			ID:      rec.ID,
			Samples: rec.Samples,
			Type:    rec.Type,
		}
	}

	var root *Section
	for _, rec := range records {
		sec := byID[rec.ID]
		if rec.ParentID < 0 {
			if root != nil {
				return nil, fmt.Errorf("build arbor %q: sections %d and %d both claim root", label, root.ID, sec.ID)
			}
			root = sec
			continue
		}
		parent, ok := byID[rec.ParentID]
		if !ok {
			return nil, fmt.Errorf("build arbor %q: section %d references missing parent %d", label, rec.ID, rec.ParentID)
		}
		if parent == sec {
			return nil, fmt.Errorf("build arbor %q: section %d is its own parent", label, rec.ID)
		}
		sec.Parent = parent
		parent.Children = append(parent.Children, sec)
	}
	if root == nil {
		return nil, fmt.Errorf("build arbor %q: no root section", label)
	}

	// Every section must be reachable from the root; a shortfall means a
	// parent cycle detached part of the tree.
	reached := 0
	root.Walk(func(*Section) { reached++ })
	if reached != len(records) {
		return nil, fmt.Errorf("build arbor %q: %d of %d sections unreachable from root (parent cycle)", label, len(records)-reached, len(records))
	}

	return &Arbor{Root: root, Label: label, Type: records[0].Type}, nil
}

// Validate checks the structural preconditions the repair engine assumes:
// every section has at least one sample, parent/child links are mutually
// consistent, and every arbor tree is acyclic. A violation is a loader bug,
// so the engine fails fast instead of attempting recovery.
func Validate(m *Morphology) error {
	if m == nil {
		return fmt.Errorf("validate: nil morphology")
	}
	if m.Soma == nil {
		return fmt.Errorf("validate: morphology has no soma")
	}
	if m.Soma.MeanRadius <= 0 {
		return fmt.Errorf("validate: soma mean radius %g is not positive", m.Soma.MeanRadius)
	}
	for _, a := range m.Arbors() {
		if a.Root == nil {
			return fmt.Errorf("validate: arbor %q has no root section", a.Label)
		}
		if a.Root.Parent != nil {
			return fmt.Errorf("validate: arbor %q root section %d has a parent", a.Label, a.Root.ID)
		}
		if err := validateSection(a.Label, a.Root, make(map[*Section]bool)); err != nil {
			return err
		}
	}
	return nil
}

func validateSection(label string, sec *Section, seen map[*Section]bool) error {
	if seen[sec] {
		return fmt.Errorf("validate: arbor %q: section %d appears twice in the tree (cycle)", label, sec.ID)
	}
	seen[sec] = true
	if len(sec.Samples) == 0 {
		return fmt.Errorf("validate: arbor %q: section %d has no samples", label, sec.ID)
	}
	for _, s := range sec.Samples {
		if s.Radius < 0 {
			return fmt.Errorf("validate: arbor %q: section %d sample %d has negative radius", label, sec.ID, s.ID)
		}
	}
	for _, child := range sec.Children {
		if child.Parent != sec {
			return fmt.Errorf("validate: arbor %q: section %d lists child %d whose parent link disagrees", label, sec.ID, child.ID)
		}
		if err := validateSection(label, child, seen); err != nil {
			return err
		}
	}
	return nil
}
