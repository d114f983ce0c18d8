package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"quill/internal/diagfmt"
	"quill/internal/driver"
	"quill/internal/dump"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] [file.qs|project-dir]",
	Short: "Export the resolved declarations of a program",
	Long: `Check one program and write its resolved namespace-scope declarations
(types, storage indices, folded initializers) as JSON or YAML`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().String("format", "json", "output format (json|yaml)")
	dumpCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
	dumpCmd.Flags().Bool("legacy", false, "enable the legacy shadowing check of non-strict namespaces")
}

func runDump(cmd *cobra.Command, args []string) (err error) {
	formatStr, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format, err := dump.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}

	entries, manifest, err := driver.Entries(args)
	if err != nil {
		return err
	}
	if len(entries) != 1 {
		return fmt.Errorf("dump needs exactly one entry file, got %d", len(entries))
	}
	opts, err := driverOptions(cmd, manifest)
	if err != nil {
		return err
	}

	res, err := driver.NewSession(opts).Check(cmd.Context(), entries[0])
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}
	if res.HasErrors() {
		color, cerr := useColor(cmd, os.Stderr)
		if cerr != nil {
			return cerr
		}
		res.Bag.Sort()
		if perr := diagfmt.Pretty(cmd.ErrOrStderr(), res.Bag, res.FileSet, diagfmt.PrettyOpts{Color: color}); perr != nil {
			return perr
		}
		return errFailed
	}

	doc, err := dump.Build(res)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, cerr := os.Create(output)
		if cerr != nil {
			return fmt.Errorf("failed to create %s: %w", output, cerr)
		}
		defer func() {
			err = errors.Join(err, f.Close())
		}()
		w = f
	}
	return dump.Write(w, doc, format)
}
