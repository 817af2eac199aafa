package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/buildingmap/pkg/save"
)

// saveCommand loads a map and saves it through a full save pass.
func (c *CLI) saveCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "save <input>",
		Short: "Load a map and save it with dense vertex numbering",
		Long: `Load a building map, spawn it into a scene and run a save pass.

The output location may be a file path (format from the extension), or a
redis://, mongodb:// or s3:// location when the matching sink is configured.
mem:// locations are kept in memory only, which makes a dry run. Without -o
the input file is rewritten in place.`,
		Example: `  buildingmap save office.building.yaml
  buildingmap save office.building.yaml -o office.json
  buildingmap save office.building.yaml -o s3://maps/office.building.yaml`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeMapFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			if output == "" {
				output = input
			}
			return c.runSave(cmd, input, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output location (default: overwrite input)")
	return cmd
}

func (c *CLI) runSave(cmd *cobra.Command, input, output string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	s, _, err := loadScene(input)
	if err != nil {
		return err
	}

	router, _, closeRouter, err := c.newRouter(ctx)
	if err != nil {
		return err
	}
	defer closeRouter()

	res, err := save.NewSaver(router, logger).Save(ctx, s, output)
	if err != nil {
		printError("save failed")
		return err
	}
	prog.done(fmt.Sprintf("Saved %s", output))

	printSuccess("Saved %s", StyleValue.Render(res.Map.Name))
	printFile(res.Location)
	for _, name := range res.Map.LevelNames() {
		l := res.Map.Levels[name]
		cnt := l.Counts()
		printDetail("%s: %d vertices, %d lanes, %d walls, %d measurements, %d models",
			name, cnt.Vertices, cnt.Lanes, cnt.Walls, cnt.Measurements, cnt.Models)
	}
	return nil
}
