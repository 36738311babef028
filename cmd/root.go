// cbuild [path], cbuild build [path]
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/qobs-build/cbuild/internal/builder"
	"github.com/qobs-build/cbuild/internal/msg"
	"github.com/qobs-build/cbuild/internal/project"
)

var (
	flagFullRebuild bool
	flagRelease     bool
	flagVerbose     bool
	flagTarget      string
	flagJobs        int
	flagFile        string
	flagGenerator   EnumValue = NewEnumValue(project.GeneratorNative, map[string]string{
		project.GeneratorNative: "Build with cbuild's own builder (default)",
		"ninja":                 "Generate build.ninja and run ninja",
		"compdb":                "Generate compile_commands.json",
	})
	flagToolchain EnumValue = NewEnumValue("auto", map[string]string{
		"auto":  "Use the config, or detect one from PATH (default)",
		"gcc":   "GNU compiler collection",
		"clang": "LLVM clang",
		"msvc":  "Microsoft cl.exe",
		"zig":   "zig cc",
	})
)

// projectDir is the first positional argument or "."
func projectDir(args []string) (string, []string) {
	if len(args) == 0 {
		return ".", nil
	}
	return args[0], args[1:]
}

func openProject(dir string) *project.Project {
	p, err := project.Open(dir, project.Options{
		Release:     flagRelease,
		FullRebuild: flagFullRebuild,
		Toolchain:   flagToolchain.Value(),
		Generator:   flagGenerator.Value(),
		Target:      flagTarget,
		Jobs:        flagJobs,
		ConfigFile:  flagFile,
		Logger:      msg.NewLogger(msg.LogLevel(flagVerbose), nil),
	})
	if err != nil {
		msg.Fatal("%v", err)
	}
	return p
}

// signalContext is cancelled on interrupt so running compilers get killed
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func doBuild(cmd *cobra.Command, args []string) {
	dir, _ := projectDir(args)
	p := openProject(dir)

	ctx, cancel := signalContext()
	defer cancel()

	results, err := p.Build(ctx)
	if err != nil {
		fatalBuild(err)
	}
	if results != nil && allUpToDate(results) {
		msg.Info("no work to do")
	}
}

func allUpToDate(results []builder.Result) bool {
	for _, r := range results {
		if !r.UpToDate() {
			return false
		}
	}
	return true
}

// fatalBuild reports a build error with its category and exits
func fatalBuild(err error) {
	switch builder.KindOf(err) {
	case builder.KindConfiguration:
		msg.Fatal("invalid configuration: %v", err)
	case builder.KindUnknown:
		msg.Fatal("%v", err)
	default:
		msg.Fatal("%v (%s error)", err, builder.KindOf(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "cbuild [project path]",
	Short: "Incremental builder for C and C++ projects",
	Long: `Incremental builder for C and C++ projects.
Compiles every out of date source of each target in parallel and links the
result. If no project path is given, uses "."`,
	Args: cobra.MaximumNArgs(1),
	Run:  doBuild,
}

var buildCmd = &cobra.Command{
	Use:   "build [project path]",
	Short: "Build the project",
	Long:  `Build the project. If no project path is given, uses "."`,
	Args:  cobra.MaximumNArgs(1),
	Run:   doBuild,
}

func init() {
	addBuildFlags(rootCmd)

	// cbuild build subcommand
	rootCmd.AddCommand(buildCmd)
	addBuildFlags(buildCmd)
}

func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&flagFullRebuild, "full-rebuild", "B", false, "Rebuild everything regardless of timestamps")
	cmd.Flags().BoolVarP(&flagRelease, "release", "r", false, "Build with release optimizations")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log commands and decisions")
	cmd.Flags().StringVarP(&flagTarget, "target", "t", "", "Only build the named target")
	cmd.Flags().IntVarP(&flagJobs, "jobs", "j", 0, "Maximum parallel compiler processes, 0 for no limit")
	cmd.Flags().StringVarP(&flagFile, "file", "f", "", "Config file to use instead of looking one up")
	cmd.Flags().VarP(&flagGenerator, "gen", "g", "Generator to build with, one of "+flagGenerator.HelpString())
	cmd.RegisterFlagCompletionFunc("gen", flagGenerator.CompletionFunc())
	cmd.Flags().Var(&flagToolchain, "toolchain", "Toolchain for every target, one of "+flagToolchain.HelpString())
	cmd.RegisterFlagCompletionFunc("toolchain", flagToolchain.CompletionFunc())
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
