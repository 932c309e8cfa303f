/*
PURPOSE:
  `qr-bench backgrounds list|export`: inspect the built-in backgrounds and
  write them out as PNG files to use as a starting point.

ERROR HANDLING:
  - A file that fails to write is logged and skipped.
*/

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/daryltucker/qr-bench/internal/imageproc"
	"github.com/daryltucker/qr-bench/internal/output"
)

var backgroundsCmd = &cobra.Command{
	Use:   "backgrounds",
	Short: "Manage the built-in backgrounds",
}

var listBackgroundsCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in backgrounds",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range imageproc.BuiltinNames() {
			fmt.Fprintln(cmd.OutOrStdout(), imageproc.BuiltinPrefix+name)
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Write the built-in backgrounds as PNG files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		targetDir := args[0]
		output.Logger.Info("Exporting backgrounds...", "target", targetDir)

		if err := os.MkdirAll(targetDir, 0755); err != nil {
			return fmt.Errorf("failed to create target directory %s: %w", targetDir, err)
		}

		count := 0
		for _, name := range imageproc.BuiltinNames() {
			img, err := imageproc.Builtin(name)
			if err != nil {
				return err
			}

			targetPath := filepath.Join(targetDir, name+".png")
			if err := imaging.Save(img, targetPath); err != nil {
				output.Logger.Error("Failed to write background", "path", targetPath, "error", err)
				continue
			}

			output.Logger.Info("Exported background", "name", name)
			count++
		}

		output.Logger.Info("Export Complete", "total_files", count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backgroundsCmd)
	backgroundsCmd.AddCommand(listBackgroundsCmd)
	backgroundsCmd.AddCommand(exportCmd)
}
