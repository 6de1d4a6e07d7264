// Package main is the entry point for the margin CLI.
//
// margin reconciles per-device KOReader sidecar files for the same book into
// one consolidated file:
//
//	margin merge device1.lua device2.lua -o merged.lua
//	margin inspect device1.lua [--json]
//	margin version
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tamias/margin/luatable"
	"github.com/tamias/margin/sidecar"
)

const version = "0.1.0"

var (
	verbose bool
	log     zerolog.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "margin",
		Short: "Merge KOReader annotations from multiple devices",
		Long: `margin reconciles the sidecar metadata files KOReader keeps per device
(highlights, bookmarks, notes, reading progress) into one consolidated file.

Duplicate annotations are identified by position and the most recently
modified copy wins. Per-device display settings are deliberately dropped.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).
				With().Timestamp().Logger()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(mergeCmd())
	rootCmd.AddCommand(inspectCmd())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("margin v%s\n", version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "margin: %v\n", err)
		os.Exit(1)
	}
}

func mergeCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "merge FILE FILE...",
		Short: "Merge two or more sidecar files into one",
		Long: `Parse each input sidecar file, deduplicate annotations across them by
position, keep the most recently modified copy of each, and write one
consolidated sidecar file.

Inputs are processed in the order given; an exact modification-time tie
keeps the copy from the earlier-listed file. If any input fails to parse
the run aborts and the output file is not touched.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(args, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output sidecar file path (required)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func runMerge(paths []string, output string) error {
	docs := make([]*sidecar.Document, 0, len(paths))

	for i, path := range paths {
		root, err := parseFile(path)
		if err != nil {
			return err
		}
		doc, err := sidecar.ExtractDocument(root, path, i)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		log.Info().
			Str("file", path).
			Int("annotations", len(doc.Annotations)).
			Int("dropped_keys", len(doc.Dropped)).
			Msg("parsed input")
		log.Debug().
			Str("file", path).
			Strs("dropped", doc.Dropped).
			Msg("discarded per-device keys")
		docs = append(docs, doc)
	}

	if !sidecar.PropsAgree(docs) {
		log.Warn().Msg("doc_props differ between inputs; most recently modified input wins")
	}

	out, stats, err := sidecar.Merge(docs)
	if err != nil {
		return err
	}

	log.Info().
		Int("total", stats.Total).
		Int("highlights", stats.Highlights).
		Int("bookmarks", stats.Bookmarks).
		Int("notes", stats.Notes).
		Int("malformed", stats.Malformed).
		Msg("merged annotations")

	if err := writeFileAtomic(output, []byte(luatable.EmitDocument(out))); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	log.Info().Str("file", output).Msg("output written")
	return nil
}

func inspectCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Parse one sidecar file and pretty-print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := parseFile(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				b, err := luatable.ToJSON(root)
				if err != nil {
					return err
				}
				fmt.Println(string(b))
				return nil
			}
			fmt.Print(luatable.EmitDocument(root))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON instead of Lua")
	return cmd
}

// parseFile reads and parses one sidecar file, prefixing errors with the
// file path so a malformed literal can be located by hand.
func parseFile(path string) (*luatable.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	root, err := luatable.ParseDocument(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}

// writeFileAtomic writes via a temp file in the target directory plus
// rename, so a failed run never leaves a truncated output behind.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".margin-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
