package main

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/envault/cmd"
	kerrors "github.com/PolarWolf314/envault/internal/errors"
	"github.com/PolarWolf314/envault/internal/ui"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

func main() {
	cmd.RootCmd.Run = func(c *cobra.Command, args []string) {
		fmt.Println()
		figure.NewColorFigure("envault", "alligator2", "green", true).Print()
		fmt.Println()
		fmt.Println(ui.Hint("Run %s to see available commands", ui.Code.Sprint("envault --help")))
	}

	if err := cmd.RootCmd.Execute(); err != nil {
		if !cmd.Reported(err) {
			fmt.Fprintln(os.Stderr, ui.Failed("%s", err.Error()))
		}
		os.Exit(kerrors.ExitCode(err))
	}
}
