package installer

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/Masterminds/semver/v3"
	"github.com/rotisserie/eris"
)

// Defaults point at the last buildtools release that was tested against
// this tool. Override them with the matching flags.
const (
	DefaultBaseURL   = "https://downloads.yoctoproject.org"
	DefaultRelease   = "yocto-4.1"
	DefaultVersion   = "4.1"
	DefaultBuildDate = "20221023"
)

// Milestone releases look like "yocto-4.1_M2"; artifacts for them live in a
// date-stamped snapshot directory which is why they need a build date.
var milestoneRegexp = regexp.MustCompile(`^(?P<distro>[a-z]+)-(?P<version>\d+(\.\d+)+)_(?P<milestone>M\d+)$`)

// Config collects everything the pipeline needs, resolved from flags.
type Config struct {
	URL       string
	Filename  string
	Directory string
	Release   string
	Version   string
	BaseURL   string
	BuildDate string
	Extended  bool
	Check     bool

	// overridden in tests to observe the temporary directory
	tempParent string
}

// Resolved holds the values derived from a Config.
type Resolved struct {
	DownloadURL string
	Filename    string
	InstallDir  string
}

func (c *Config) variant() string {
	if c.Extended {
		return "buildtools-extended"
	}
	return "buildtools"
}

// Resolve validates the configuration and constructs the download URL, the
// expected filename and the install directory. An explicit URL/filename pair
// always wins over the constructed form.
func (c *Config) Resolve() (*Resolved, error) {
	res := Resolved{}
	dirVersion := c.Version

	if c.URL != "" && c.Filename != "" {
		res.DownloadURL = c.URL + "/" + c.Filename
		res.Filename = c.Filename
	} else {
		groups := milestoneRegexp.FindStringSubmatch(c.Release)
		if groups != nil {
			if c.BuildDate == "" {
				return nil, eris.Errorf("Milestone release %s requires --build-date", c.Release)
			}

			version := groups[milestoneRegexp.SubexpIndex("version")]
			if _, err := semver.NewVersion(version); err != nil {
				return nil, eris.Wrapf(err, "Invalid version in release %s", c.Release)
			}
			dirVersion = version

			res.Filename = fmt.Sprintf("x86_64-%s-nativesdk-standalone-%s+snapshot-%s.sh",
				c.variant(), version, c.BuildDate)
			res.DownloadURL = fmt.Sprintf("%s/milestones/%s/buildtools/%s",
				c.BaseURL, c.Release, res.Filename)
		} else {
			if _, err := semver.NewVersion(c.Version); err != nil {
				return nil, eris.Wrapf(err, "Invalid installer version %s", c.Version)
			}

			res.Filename = fmt.Sprintf("x86_64-%s-nativesdk-standalone-%s.sh",
				c.variant(), c.Version)
			res.DownloadURL = fmt.Sprintf("%s/releases/%s/buildtools/%s",
				c.BaseURL, c.Release, res.Filename)
		}
	}

	if c.Directory != "" {
		res.InstallDir = c.Directory
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, eris.Wrap(err, "Failed to determine the user's home directory")
		}

		res.InstallDir = filepath.Join(home, "buildtools-"+dirVersion)
	}

	return &res, nil
}
