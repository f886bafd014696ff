// Package recipe works with declarative package recipes: small YAML
// manifests that pin a package's identity, licenses, upstream source
// archive and build-time dependencies.
package recipe

import (
	"io/ioutil"
	"regexp"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

var hexDigestRegexp = regexp.MustCompile(`^[0-9a-f]{64}$`)

type License struct {
	ID     string `yaml:"id"`
	File   string `yaml:"file"`
	Sha256 string `yaml:"sha256"`
}

type Source struct {
	// PyPI is the package name on the upstream package index.
	PyPI    string `yaml:"pypi"`
	Version string `yaml:"version"`
	// URL overrides the package index location, for sources hosted elsewhere.
	URL    string `yaml:"url,omitempty"`
	Sha256 string `yaml:"sha256"`
	// Strip removes this many leading path elements when unpacking.
	Strip int `yaml:"strip,omitempty"`
}

type Variants struct {
	Native bool `yaml:"native"`
	Cross  bool `yaml:"cross"`
}

type Recipe struct {
	Name         string    `yaml:"name"`
	Summary      string    `yaml:"summary"`
	Licenses     []License `yaml:"licenses"`
	Source       Source    `yaml:"source"`
	BuildDepends []string  `yaml:"build_depends,omitempty"`
	Variants     Variants  `yaml:"variants"`
}

// Load reads and parses a recipe manifest.
func Load(path string) (*Recipe, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "Could not open file %s.", path)
	}

	var rec Recipe
	err = yaml.Unmarshal(data, &rec)
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to parse %s.", path)
	}

	return &rec, nil
}

// Validate checks that the recipe carries everything a build of it needs.
func (r *Recipe) Validate() error {
	if r.Name == "" {
		return eris.New("Recipe is missing a name")
	}

	if r.Summary == "" {
		return eris.Errorf("Recipe %s is missing a summary", r.Name)
	}

	if len(r.Licenses) == 0 {
		return eris.Errorf("Recipe %s declares no licenses", r.Name)
	}

	for _, lic := range r.Licenses {
		if lic.ID == "" || lic.File == "" {
			return eris.Errorf("Recipe %s has an incomplete license entry", r.Name)
		}

		if !hexDigestRegexp.MatchString(lic.Sha256) {
			return eris.Errorf("Recipe %s has an invalid checksum for license file %s", r.Name, lic.File)
		}
	}

	if r.Source.PyPI == "" {
		return eris.Errorf("Recipe %s is missing the upstream package name", r.Name)
	}

	if r.Source.Version == "" {
		return eris.Errorf("Recipe %s is missing the source version", r.Name)
	}

	if !hexDigestRegexp.MatchString(r.Source.Sha256) {
		return eris.Errorf("Recipe %s has an invalid source checksum", r.Name)
	}

	if r.Source.Strip < 0 {
		return eris.Errorf("Recipe %s has a negative strip count", r.Name)
	}

	return nil
}
