package cmd

import (
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ngld/install-buildtools/pkg/installer"
)

var rootCmd = &cobra.Command{
	Use:   "install-buildtools",
	Short: "Installs a prebuilt buildtools bundle",
	Long: `This command downloads a self-extracting buildtools installer from the
release server, optionally verifies it against its checksum manifest, runs it
and checks that the installed toolchain works.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()

		cfg := installer.Config{}
		var err error
		cfg.URL, err = flags.GetString("url")
		if err != nil {
			return err
		}

		cfg.Filename, err = flags.GetString("filename")
		if err != nil {
			return err
		}

		cfg.Directory, err = flags.GetString("directory")
		if err != nil {
			return err
		}

		cfg.Release, err = flags.GetString("release")
		if err != nil {
			return err
		}

		cfg.Version, err = flags.GetString("installer-version")
		if err != nil {
			return err
		}

		cfg.BaseURL, err = flags.GetString("base-url")
		if err != nil {
			return err
		}

		cfg.BuildDate, err = flags.GetString("build-date")
		if err != nil {
			return err
		}

		cfg.Check, err = flags.GetBool("check")
		if err != nil {
			return err
		}

		extended, err := flags.GetBool("with-extended-buildtools")
		if err != nil {
			return err
		}

		standard, err := flags.GetBool("without-extended-buildtools")
		if err != nil {
			return err
		}

		cfg.Extended, err = resolveVariant(flags.Changed("with-extended-buildtools"), extended, standard)
		if err != nil {
			return err
		}

		debug, err := flags.GetBool("debug")
		if err != nil {
			return err
		}

		quiet, err := flags.GetBool("quiet")
		if err != nil {
			return err
		}

		level := zerolog.InfoLevel
		if debug {
			level = zerolog.DebugLevel
		} else if quiet {
			level = zerolog.ErrorLevel
		}

		logger := zerolog.New(NewConsoleWriter()).Level(level)
		ctx := installer.WithLogger(cmd.Context(), &logger)

		return installer.Run(ctx, &cfg)
	},
}

// resolveVariant combines the two variant toggles. They only contradict each
// other when the user explicitly asked for both the extended and the standard
// bundle; --with-extended-buildtools=false and --without-extended-buildtools
// agree on the standard bundle.
func resolveVariant(withChanged, extended, standard bool) (bool, error) {
	if withChanged && extended && standard {
		return false, eris.New("--with-extended-buildtools and --without-extended-buildtools are mutually exclusive")
	}

	return extended && !standard, nil
}

func init() {
	flags := rootCmd.Flags()
	flags.String("url", "", "URL to download the buildtools installer from (requires --filename)")
	flags.String("filename", "", "filename of the buildtools installer (requires --url)")
	flags.StringP("directory", "d", "", "directory to install buildtools into")
	flags.StringP("release", "r", installer.DefaultRelease, "buildtools release to install")
	flags.String("installer-version", installer.DefaultVersion, "version of the buildtools installer")
	flags.String("base-url", installer.DefaultBaseURL, "base URL of the release server")
	flags.String("build-date", "", "build date of milestone release artifacts (e.g. "+installer.DefaultBuildDate+")")
	flags.Bool("with-extended-buildtools", true, "install the buildtools-extended bundle which includes a compiler")
	flags.Bool("without-extended-buildtools", false, "install the standard buildtools bundle")
	flags.Bool("check", true, "verify the installer against its checksum manifest")
	flags.BoolP("debug", "D", false, "enable debug output")
	flags.BoolP("quiet", "q", false, "only print errors")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
