package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/buildingmap/pkg/building"
	bmerrors "github.com/matzehuels/buildingmap/pkg/errors"
	bmio "github.com/matzehuels/buildingmap/pkg/io"
	"github.com/matzehuels/buildingmap/pkg/render/nodelink"
)

type graphOpts struct {
	level        string
	output       string
	walls        bool
	measurements bool
}

// graphCommand draws the topology of one level.
func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOpts

	cmd := &cobra.Command{
		Use:   "graph <input>",
		Short: "Render the lane and wall topology of a level",
		Long: `Render one level as a node-link diagram with vertices at their map
coordinates. The output format follows the -o extension (.svg or .dot).

Without --level a single-level map draws its only level; otherwise an
interactive picker opens when running in a terminal.`,
		Example: `  buildingmap graph office.building.yaml --level L1
  buildingmap graph office.building.yaml --level L1 --walls -o l1.dot`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeMapFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.level, "level", "l", "", "level to draw")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <map>.<level>.svg)")
	cmd.Flags().BoolVar(&opts.walls, "walls", false, "include walls")
	cmd.Flags().BoolVar(&opts.measurements, "measurements", false, "include measurements")
	return cmd
}

func (c *CLI) runGraph(cmd *cobra.Command, input string, opts graphOpts) error {
	ctx := cmd.Context()
	prog := newProgress(loggerFromContext(ctx))

	m, err := bmio.ImportFile(input)
	if err != nil {
		return err
	}
	level, err := chooseLevel(m, opts.level, isTerminal(os.Stdin))
	if err != nil {
		return err
	}
	if level == "" {
		return nil
	}

	output := opts.output
	if output == "" {
		output = defaultGraphPath(input, level, "svg")
	}

	dot := nodelink.ToDOT(level, m.Levels[level], nodelink.Options{
		Walls:        opts.walls,
		Measurements: opts.measurements,
	})

	var data []byte
	switch ext := strings.ToLower(filepath.Ext(output)); ext {
	case ".dot", ".gv":
		data = []byte(dot)
	case ".svg":
		data, err = nodelink.RenderSVG(ctx, dot)
		if err != nil {
			return err
		}
	default:
		return bmerrors.New(bmerrors.ErrCodeInvalidFormat, "unsupported graph output %q (must be .svg or .dot)", ext)
	}

	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	prog.done(fmt.Sprintf("Rendered %s", level))
	printSuccess("Rendered level %s", StyleValue.Render(level))
	printFile(output)
	return nil
}

// chooseLevel resolves the level to draw. The picker only runs when
// interactive is set.
func chooseLevel(m *building.Map, requested string, interactive bool) (string, error) {
	if requested != "" {
		if _, ok := m.Levels[requested]; !ok {
			return "", bmerrors.New(bmerrors.ErrCodeNotFound, "level %q not found (have: %s)",
				requested, strings.Join(m.LevelNames(), ", "))
		}
		return requested, nil
	}
	switch len(m.Levels) {
	case 0:
		return "", bmerrors.New(bmerrors.ErrCodeNotFound, "map %q has no levels", m.Name)
	case 1:
		return m.LevelNames()[0], nil
	}
	if !interactive {
		return "", errNoLevel
	}
	return pickLevel(m)
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
