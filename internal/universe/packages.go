package universe

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dpeckett/deb822"
	"github.com/dpeckett/deb822/types"
)

// Packages is the decoded Packages file: the universe of binary packages
// a suite offers, indexed by name for install-list lookups.
type Packages struct {
	byName map[string]*Package
	all    []*Package
}

// ParsePackages decodes a (decompressed) Packages file into a Packages
// index, the Go equivalent of di_packages_minimal_read_file.
func ParsePackages(data []byte) (*Packages, error) {
	dec := deb822.NewDecoder(bytes.NewReader(data))

	pkgs := &Packages{byName: make(map[string]*Package)}
	for {
		var stanza types.Package
		if err := dec.Decode(&stanza); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("decode package stanza: %w", err)
		}
		p := newPackage(stanza)
		pkgs.byName[p.Key()] = p
		pkgs.all = append(pkgs.all, p)
	}

	return pkgs, nil
}

// Get returns the package with the given name, or nil if the universe
// does not contain it - the Go equivalent of di_packages_get_package.
func (p *Packages) Get(name string) *Package {
	return p.byName[name]
}

// All returns every package in the universe, in index order.
func (p *Packages) All() []*Package {
	return p.all
}

// Len reports how many packages the universe holds.
func (p *Packages) Len() int {
	return len(p.all)
}
