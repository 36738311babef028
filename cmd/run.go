// cbuild run [path] [args...]
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/qobs-build/cbuild/internal/msg"
	"github.com/qobs-build/cbuild/internal/project"
)

func doRun(cmd *cobra.Command, args []string) {
	dir, args := projectDir(args) // other arguments will be passed to program
	p := openProject(dir)

	ctx, cancel := signalContext()
	defer cancel()

	res, err := p.BuildAndRun(ctx, args)
	if err != nil {
		fatalBuild(err)
	}
	switch res.Status {
	case project.RunSuccess:
	case project.RunFailure:
		msg.Error("process exited with code %d", res.Code)
		cancel()
		os.Exit(max(res.Code, 1))
	default:
		msg.Warn("lost track of the process, exit status unknown")
		cancel()
		os.Exit(1)
	}
}

var runCmd = &cobra.Command{
	Use:   "run [project path] [args...]",
	Short: "Build and run the project",
	Long: `Build and run the project's executable. If no project path is given,
uses ".". Arguments after the path are passed to the program.`,
	Args: cobra.ArbitraryArgs,
	Run:  doRun,
}

func init() {
	// cbuild run subcommand
	rootCmd.AddCommand(runCmd)
	addBuildFlags(runCmd)
	// flags after the project path belong to the program
	runCmd.Flags().SetInterspersed(false)
}
