// Package report accumulates resolver outcomes into the hierarchical
// missing-report and serializes it as pretty-printed XML.
package report

import (
	"encoding/xml"
	"fmt"
	"io"

	"romscan/internal/resolve"
)

type romNode struct {
	name         string
	sizeMismatch bool
	found        *foundNode
}

type foundNode struct {
	path string
	file string
}

type gameNode struct {
	name  string
	roms  map[string]*romNode
	order []string
}

// Report groups unmet obligations by game, then rom. Each (game, rom) pair
// appears at most once; a second Add for the same pair is a no-op.
type Report struct {
	games map[string]*gameNode
	order []string
}

// New returns an empty report.
func New() *Report {
	return &Report{games: make(map[string]*gameNode)}
}

// Build accumulates all outcomes into a fresh report, preserving their
// order of first appearance.
func Build(outcomes []resolve.Outcome) *Report {
	r := New()
	for _, o := range outcomes {
		r.Add(o)
	}
	return r
}

// Add inserts one outcome. Insertion is idempotent per (game, rom).
func (r *Report) Add(o resolve.Outcome) {
	g, ok := r.games[o.Game]
	if !ok {
		g = &gameNode{name: o.Game, roms: make(map[string]*romNode)}
		r.games[o.Game] = g
		r.order = append(r.order, o.Game)
	}
	if _, ok := g.roms[o.Rom]; ok {
		return
	}
	n := &romNode{name: o.Rom, sizeMismatch: o.SizeMismatch}
	if o.Found != nil {
		n.found = &foundNode{path: o.Found.Path, file: o.Found.File}
	}
	g.roms[o.Rom] = n
	g.order = append(g.order, o.Rom)
}

type xmlFound struct {
	Path string `xml:"path,attr"`
	File string `xml:"file,attr"`
}

type xmlRom struct {
	Name         string    `xml:"name,attr"`
	SizeMismatch *struct{} `xml:"size_mismatch"`
	Found        *xmlFound `xml:"found"`
}

type xmlGame struct {
	Name string   `xml:"name,attr"`
	Roms []xmlRom `xml:"rom"`
}

type xmlMissing struct {
	XMLName xml.Name  `xml:"missing"`
	Games   []xmlGame `xml:"game"`
}

// WriteTo serializes the report as an XML document with two-space
// indentation, preceded by the standard XML header.
func (r *Report) WriteTo(w io.Writer) error {
	doc := xmlMissing{Games: make([]xmlGame, 0, len(r.order))}
	for _, gname := range r.order {
		g := r.games[gname]
		xg := xmlGame{Name: g.name, Roms: make([]xmlRom, 0, len(g.order))}
		for _, rname := range g.order {
			n := g.roms[rname]
			xr := xmlRom{Name: n.name}
			if n.sizeMismatch {
				xr.SizeMismatch = &struct{}{}
			}
			if n.found != nil {
				xr.Found = &xmlFound{Path: n.found.path, File: n.found.file}
			}
			xg.Roms = append(xg.Roms, xr)
		}
		doc.Games = append(doc.Games, xg)
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize report: %w", err)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if _, err := w.Write(append(out, '\n')); err != nil {
		return err
	}
	return nil
}
