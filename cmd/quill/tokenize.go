package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"quill/internal/diagfmt"
	"quill/internal/driver"
	"quill/internal/source"
	"quill/internal/token"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] file.qs",
	Short: "Tokenize a quill source file",
	Long:  `Tokenize breaks down a quill source file into its constituent tokens`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	result, err := driver.Tokenize(args[0], maxDiagnostics)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	// Выводим диагностику в stderr, если есть
	if result.Bag.Len() > 0 {
		color, err := useColor(cmd, os.Stderr)
		if err != nil {
			return err
		}
		if err := diagfmt.Pretty(cmd.ErrOrStderr(), result.Bag, result.FileSet, diagfmt.PrettyOpts{Color: color}); err != nil {
			return err
		}
	}

	switch format {
	case "pretty":
		err = writeTokensPretty(cmd.OutOrStdout(), result.Tokens, result.FileSet)
	case "json":
		err = writeTokensJSON(cmd.OutOrStdout(), result.Tokens, result.FileSet)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	if err != nil {
		return err
	}
	if result.Bag.HasErrors() {
		return errFailed
	}
	return nil
}

func writeTokensPretty(w io.Writer, toks []token.Token, fs *source.FileSet) error {
	for _, tok := range toks {
		pos, _ := fs.Resolve(tok.Span)
		if _, err := fmt.Fprintf(w, "%d:%d\t%-14s %q\n", pos.Line, pos.Col, tok.Kind, tok.Text); err != nil {
			return err
		}
	}
	return nil
}

type tokenJSON struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
	Line uint32 `json:"line"`
	Col  uint32 `json:"col"`
}

func writeTokensJSON(w io.Writer, toks []token.Token, fs *source.FileSet) error {
	out := make([]tokenJSON, 0, len(toks))
	for _, tok := range toks {
		pos, _ := fs.Resolve(tok.Span)
		out = append(out, tokenJSON{Kind: tok.Kind.String(), Text: tok.Text, Line: pos.Line, Col: pos.Col})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
