package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	bmio "github.com/matzehuels/buildingmap/pkg/io"
)

// inspectCommand prints a summary of a map document.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "inspect <input>",
		Short:             "Show the levels and entity counts of a map",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeMapFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := bmio.ImportFile(args[0])
			if err != nil {
				return err
			}

			printKeyValue("Map", m.Name)
			printKeyValue("Version", fmt.Sprint(m.Version))
			crowd := "disabled"
			if m.CrowdSim.Enabled() {
				crowd = "enabled"
			}
			printKeyValue("Crowd sim", crowd)
			printKeyValue("Levels", fmt.Sprint(len(m.Levels)))
			fmt.Fprintln(out, levelTable(m))

			if len(m.Levels) > 0 {
				printNextStep("Draw a level", fmt.Sprintf("%s graph %s --level %s", appName, args[0], m.LevelNames()[0]))
			}
			return nil
		},
	}
}
