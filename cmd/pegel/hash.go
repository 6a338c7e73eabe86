package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/pegelboard/internal/errors"
	"github.com/vango-dev/pegelboard/pkg/hashcodec"
)

func hashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Parse and format location hashes",
		Long: `Inspect how the router reads and writes location hashes.

Examples:
  pegel hash parse '#RHEIN?sort=name&filter=%3C300+!BONN'
  pegel hash format '#RHEIN' sort=name dir=desc`,
	}
	cmd.AddCommand(hashParseCmd(), hashFormatCmd())
	return cmd
}

func hashParseCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "parse <hash>",
		Short: "Split a hash into path and parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("P180").WithDetail("parse takes exactly one hash")
			}
			return printParsed(cmd.OutOrStdout(), args[0], asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func printParsed(w io.Writer, hash string, asJSON bool) error {
	path, params := hashcodec.Parse(hash)
	if asJSON {
		pairs := make([][2]string, 0, params.Len())
		for _, p := range params {
			pairs = append(pairs, [2]string{p.Key, p.Value})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Path   string      `json:"path"`
			Params [][2]string `json:"params"`
		}{path, pairs})
	}
	fmt.Fprintf(w, "path: %s\n", path)
	for _, p := range params {
		fmt.Fprintf(w, "  %s = %q\n", p.Key, p.Value)
	}
	return nil
}

func hashFormatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "format <path> [key=value...]",
		Short: "Build a hash from a path and parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("P180").WithDetail("format needs a path")
			}
			hash, err := formatHash(args[0], args[1:])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func formatHash(path string, pairs []string) (string, error) {
	var params hashcodec.Params
	for _, kv := range pairs {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return "", errors.New("P180").WithDetail(fmt.Sprintf("expected key=value, got %q", kv))
		}
		params.Set(key, value)
	}
	return hashcodec.Format(path, params), nil
}
