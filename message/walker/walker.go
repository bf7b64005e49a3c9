package walker

import (
	"strconv"

	"github.com/zostay/go-mailjson/message"
)

// Parts is a function that can be processed for each part of a message.
// The depth is 0 for the root, and i is the index of the part within its
// parent.
type Parts func(depth, i int, part *message.Part) error

// Walk performs a depth first search for all the parts of a message starting
// with the given part itself. It calls the Parts function for each part. If
// the function returns an error, then processing stops immediately and the
// error is returned.
func (w Parts) Walk(root *message.Part) error {
	type part struct {
		depth int
		i     int
		part  *message.Part
	}

	openStack := make([]part, 0, 10)

	pushStack := func(depth int, p *message.Part) {
		parts := p.GetParts()
		for i := len(parts) - 1; i >= 0; i-- {
			openStack = append(openStack, part{depth, i, parts[i]})
		}
	}

	popStack := func() part {
		end := len(openStack) - 1
		p := openStack[end]
		openStack = openStack[:end]
		return p
	}

	openStack = append(openStack, part{0, 0, root})
	for len(openStack) > 0 {
		p := popStack()
		if err := w(p.depth, p.i, p.part); err != nil {
			return err
		}
		pushStack(p.depth+1, p.part)
	}

	return nil
}

// WalkLeaves will call the Parts function for each part that does not hold
// multipart content using a depth first traversal.
func (w Parts) WalkLeaves(root *message.Part) error {
	var lw Parts = func(depth, i int, part *message.Part) error {
		if !part.IsMultipart() {
			return w(depth, i, part)
		}
		return nil
	}
	return lw.Walk(root)
}

// WalkMultipart will call the Parts function for each part holding multipart
// content using a depth first traversal.
func (w Parts) WalkMultipart(root *message.Part) error {
	var mw Parts = func(depth, i int, part *message.Part) error {
		if part.IsMultipart() {
			return w(depth, i, part)
		}
		return nil
	}
	return mw.Walk(root)
}

// SectionID returns the section id of the i-th (zero-based) child of a part
// with the given section. Children of the root are "1", "2", and so on, and
// their children are "1.1", "1.2", etc.
func SectionID(parent string, i int) string {
	n := strconv.Itoa(i + 1)
	if parent == "" {
		return n
	}
	return parent + "." + n
}

// AssignSections fills in the Section of every descendant of root that does
// not already have one. Computed ids extend the parent's section, so a part
// whose id came from the document keeps it and its unnumbered children are
// numbered beneath it. The root itself is left alone.
func AssignSections(root *message.Part) {
	var assign func(p *message.Part)
	assign = func(p *message.Part) {
		for i, c := range p.GetParts() {
			if c.Section == "" {
				c.Section = SectionID(p.Section, i)
			}
			assign(c)
		}
	}
	assign(root)
}
