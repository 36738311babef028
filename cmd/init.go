// cbuild init [name], cbuild new [path]
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/qobs-build/cbuild/internal/builder"
	"github.com/qobs-build/cbuild/internal/config"
	"github.com/qobs-build/cbuild/internal/msg"
)

// scaffoldFile is written relative to the project directory unless it
// already exists
type scaffoldFile struct {
	path    string
	content string
}

func (f scaffoldFile) write(dir string) error {
	path := filepath.Join(dir, filepath.FromSlash(f.path))
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(f.content), 0o644); err != nil {
		return err
	}
	fmt.Printf("%s file: %s\n", color.HiGreenString("Created"), filepath.ToSlash(path))
	return nil
}

func getProgramName() string {
	if len(os.Args) == 0 {
		return "cbuild"
	}
	basename := filepath.Base(os.Args[0])
	return strings.TrimSuffix(basename, filepath.Ext(basename))
}

// configTemplate is the Cbuild.toml written for a new project
func configTemplate(name string, lib bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `[project]
name = %q
description = "This is where I make a project."

[[target]]
name = %q
`, name, name)
	if lib {
		fmt.Fprintf(&sb, "type = \"static\"\noutput = \"build/lib%s.a\"\n", name)
	} else {
		fmt.Fprintf(&sb, "output = \"build/%s\"\n", name)
	}
	sb.WriteString(`files = ["src"]
includes = ["src"]

[target.flags]
warnings = ["all", "extra"]

[target.'target_os == "linux"']
libs = ["m"]
`)
	return sb.String()
}

const (
	helloSource = `#include <stdio.h>
#include "hello_world.h"

void hello_world(void) {
    puts("Hello, World!");
}
`
	helloHeader = `#ifndef HELLO_WORLD_H
#define HELLO_WORLD_H

#ifdef __cplusplus
extern "C" {
#endif

void hello_world(void);

#ifdef __cplusplus
}
#endif

#endif
`
	mainSource = `// rename to main.cpp for C++
#include <stdio.h>

int main(void) {
    puts("Hello, World!");
    return 0;
}
`
)

func scaffold(name string, lib bool) []scaffoldFile {
	files := []scaffoldFile{{config.FileNames[0], configTemplate(name, lib)}}
	if lib {
		files = append(files,
			scaffoldFile{"src/hello_world.c", helloSource},
			scaffoldFile{"src/hello_world.h", helloHeader},
		)
	} else {
		files = append(files, scaffoldFile{"src/main.c", mainSource})
	}
	return append(files, scaffoldFile{".gitignore", "build/\n" + builder.DefaultCacheDir + "/\ncompile_commands.json\n"})
}

// initIn initializes a project in an existing directory
func initIn(dir, name string, lib bool) error {
	for _, f := range scaffold(name, lib) {
		if err := f.write(dir); err != nil {
			return fmt.Errorf("create %s: %w", f.path, err)
		}
	}

	programName := getProgramName()
	fmt.Printf("You can now do %s to build, or %s to build and run.\n", color.HiCyanString(programName+" "+dir), color.HiCyanString(programName+" run "+dir))
	return nil
}

var library bool

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Create a new project in the current directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := initIn(".", args[0], library); err != nil {
			msg.Fatal("%v", err)
		}
	},
}

var newCmd = &cobra.Command{
	Use:   "new [path]",
	Short: "Create a new project in a new directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := initIn(args[0], filepath.Base(args[0]), library); err != nil {
			msg.Fatal("%v", err)
		}
	},
}

func init() {
	// cbuild init subcommand
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&library, "lib", "l", false, "Create a library target")

	// cbuild new subcommand
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().BoolVarP(&library, "lib", "l", false, "Create a library target")
}
