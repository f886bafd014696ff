package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ngld/install-buildtools/pkg"
	"github.com/ngld/install-buildtools/pkg/recipe"
)

var recipeCmd = &cobra.Command{
	Use:   "recipe",
	Short: "Works with package recipe manifests",
}

var recipeLintCmd = &cobra.Command{
	Use:   "lint <recipe>...",
	Short: "Checks recipe manifests for missing or malformed fields",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pkg.PrintTask("Checking recipes")
		for _, path := range args {
			rec, err := recipe.Load(path)
			if err != nil {
				return err
			}

			err = rec.Validate()
			if err != nil {
				return err
			}

			pkg.PrintSubtask(rec.Name + ": ok")
		}

		return nil
	},
}

var recipeFetchCmd = &cobra.Command{
	Use:   "fetch <recipe>",
	Short: "Downloads, verifies and unpacks a recipe's source archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dest, err := cmd.Flags().GetString("dest")
		if err != nil {
			return err
		}

		rec, err := recipe.Load(args[0])
		if err != nil {
			return err
		}

		pkg.PrintTask("Fetching sources")
		err = recipe.FetchSource(cmd.Context(), rec, dest)
		if err != nil {
			return err
		}

		pkg.PrintTask("Done")
		return nil
	},
}

func init() {
	recipeFetchCmd.Flags().String("dest", "sources", "directory to unpack the sources into")
	recipeCmd.AddCommand(recipeLintCmd)
	recipeCmd.AddCommand(recipeFetchCmd)
	rootCmd.AddCommand(recipeCmd)
}
