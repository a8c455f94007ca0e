/*
Copyright 2024 The KNIME Python Gateway Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package python

import (
	"os"
	"strings"
)

// Path is an ordered collection of filesystem locations exposed to the
// interpreter as importable module roots. It is frozen once built
type Path struct {
	entries []string
}

// PathBuilder builds a Path. Entries keep insertion order, duplicates are
// dropped
type PathBuilder struct {
	entries []string
	seen    map[string]struct{}
}

// NewPathBuilder creates an empty path builder
func NewPathBuilder() *PathBuilder {
	return &PathBuilder{
		seen: map[string]struct{}{},
	}
}

// Add appends a directory entry unless it was added before
func (b *PathBuilder) Add(entry string) *PathBuilder {
	if _, added := b.seen[entry]; added {
		return b
	}

	b.seen[entry] = struct{}{}
	b.entries = append(b.entries, entry)

	return b
}

// AddAll appends all given entries in order
func (b *PathBuilder) AddAll(entries ...string) *PathBuilder {
	for _, entry := range entries {
		b.Add(entry)
	}

	return b
}

// Build freezes the builder into a Path
func (b *PathBuilder) Build() *Path {
	entries := make([]string, len(b.entries))
	copy(entries, b.entries)

	return &Path{entries: entries}
}

// Entries returns the path entries in order
func (p *Path) Entries() []string {
	entries := make([]string, len(p.entries))
	copy(entries, p.entries)

	return entries
}

// Len returns the number of entries
func (p *Path) Len() int {
	return len(p.entries)
}

// String joins the entries with the OS path list separator, suitable for
// PYTHONPATH
func (p *Path) String() string {
	return strings.Join(p.entries, string(os.PathListSeparator))
}
