package dat

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"romscan/internal/logger"
)

type xmlRom struct {
	Name   string `xml:"name,attr"`
	Size   uint64 `xml:"size,attr"`
	CRC    string `xml:"crc,attr"`
	Merge  string `xml:"merge,attr"`
	Status string `xml:"status,attr"`
}

type xmlGame struct {
	Name        string   `xml:"name,attr"`
	CloneOf     string   `xml:"cloneof,attr"`
	RomOf       string   `xml:"romof,attr"`
	Description string   `xml:"description"`
	Year        string   `xml:"year"`
	Roms        []xmlRom `xml:"rom"`
}

// The root element name varies between DAT dialects; only its game children
// matter.
type xmlDat struct {
	Games []xmlGame `xml:"game"`
}

// Parse reads a DAT document and builds the catalog. It fails only when the
// document is not well-formed; missing optional attributes and data-quality
// oddities are logged and recovered.
func Parse(r io.Reader) (Catalog, error) {
	var doc xmlDat
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse dat: %w", err)
	}

	cat := make(Catalog, len(doc.Games))
	for _, g := range doc.Games {
		game := &Game{
			Name:        g.Name,
			Description: g.Description,
			Year:        g.Year,
			Roms:        make(map[string]Rom, len(g.Roms)),
		}
		switch {
		case g.CloneOf != "":
			game.CloneOf = g.CloneOf
		case g.RomOf != "":
			game.RomOf = g.RomOf
		}
		if g.CloneOf != "" && g.RomOf != "" && g.CloneOf != g.RomOf {
			logger.Warnf("game %q has cloneof=%q and romof=%q; using cloneof", g.Name, g.CloneOf, g.RomOf)
		}

		for _, r := range g.Roms {
			rom := Rom{
				Name:  r.Name,
				Hash:  ContentHash{Size: r.Size},
				Merge: r.Merge,
			}
			if r.Status != "nodump" {
				crc, err := parseCRC(r.CRC)
				if err != nil {
					return nil, fmt.Errorf("game %q rom %q: %w", g.Name, r.Name, err)
				}
				if crc == 0 {
					logger.Warnf("game %q rom %q has a zero crc but is not marked nodump", g.Name, r.Name)
				}
				rom.Hash.CRC = crc
			}
			if r.Merge != "" && game.CloneOf == "" && game.RomOf == "" {
				logger.Warnf("game %q rom %q has merge=%q but no cloneof or romof", g.Name, r.Name, r.Merge)
			}
			game.Roms[r.Name] = rom
		}
		cat[g.Name] = game
	}
	return cat, nil
}

// parseCRC accepts the hexadecimal forms seen in the wild: bare hex in
// either case, optionally prefixed with 0x.
func parseCRC(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	if s == "" {
		return 0, fmt.Errorf("missing crc attribute")
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("bad crc %q: %w", s, err)
	}
	return uint32(v), nil
}
