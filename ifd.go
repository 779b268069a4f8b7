// Copyright 2025 Martin Vik
// SPDX-License-Identifier: MIT

package exifedit

import (
	"fmt"
	"sort"
)

// ImageFileDirectory is an ordered collection of tags. Its identity within
// a Metadata container is the pair (group, generic IFD number); the number
// disambiguates repeated instances of the same group, e.g. the thumbnail
// directory is (GroupGeneric, 1).
//
// Tags are kept sorted by code so that serialization is deterministic.
type ImageFileDirectory struct {
	group        Group
	genericIFDNr uint32
	tags         []Tag

	// containerVersion points at the owning container's mutation counter
	// once the directory is attached, so tag mutations invalidate live
	// iterators over that container.
	containerVersion *uint64
}

// NewIFD returns an empty directory with the given identity.
func NewIFD(group Group, genericIFDNr uint32) *ImageFileDirectory {
	return &ImageFileDirectory{group: group, genericIFDNr: genericIFDNr}
}

// Group returns the group classifier of the directory.
func (d *ImageFileDirectory) Group() Group {
	return d.group
}

// GenericIFDNr returns the generic IFD number of the directory.
func (d *ImageFileDirectory) GenericIFDNr() uint32 {
	return d.genericIFDNr
}

// Tags returns the tags in storage order. The returned slice is a view;
// callers must not modify it.
func (d *ImageFileDirectory) Tags() []Tag {
	return d.tags
}

// AddTag inserts t, keeping the tags sorted by code. Multiple tags with the
// same code may coexist; uniqueness within a directory is a convention, not
// enforced here.
func (d *ImageFileDirectory) AddTag(t Tag) {
	i := sort.Search(len(d.tags), func(i int) bool { return d.tags[i].code > t.code })
	d.tags = append(d.tags, Tag{})
	copy(d.tags[i+1:], d.tags[i:])
	d.tags[i] = t
	d.bumpVersion()
}

// SetTag inserts t, replacing an existing tag with the same code if there
// is one.
func (d *ImageFileDirectory) SetTag(t Tag) {
	for i := range d.tags {
		if d.tags[i].code == t.code {
			d.tags[i] = t
			d.bumpVersion()
			return
		}
	}
	d.AddTag(t)
}

// RemoveTag removes every tag with the given code and reports whether any
// was removed.
func (d *ImageFileDirectory) RemoveTag(code uint16) bool {
	removed := false
	kept := d.tags[:0]
	for _, t := range d.tags {
		if t.code == code {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	d.tags = kept
	if removed {
		d.bumpVersion()
	}
	return removed
}

func (d *ImageFileDirectory) bumpVersion() {
	if d.containerVersion != nil {
		*d.containerVersion++
	}
}

func (d *ImageFileDirectory) String() string {
	return fmt.Sprintf("IFD(%s, %d, %d tags)", d.group, d.genericIFDNr, len(d.tags))
}
