package main

import (
	"fmt"
	"log"
	"os"

	"github.com/nullbyte-dev/csv2asv/pkg/csverr"
	"github.com/nullbyte-dev/csv2asv/pkg/pipeline"
	"github.com/spf13/cobra"
)

var (
	convertInput  string
	convertOutput string
	hasHeaderFlag string
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Run the full two-pass pipeline: sniff a dialect, then normalize to ASV",
	RunE: func(cmd *cobra.Command, args []string) error {
		if convertInput == "-" {
			return fmt.Errorf("converting stdin: %w", csverr.ErrNotSeekable)
		}

		in, err := os.Open(convertInput)
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer in.Close()

		out, err := os.Create(convertOutput)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer out.Close()

		winner, err := pipeline.Run(in, out, parseHasHeaders(hasHeaderFlag), evictLogger(verbose))
		if err != nil {
			return fmt.Errorf("converting %s: %w", convertInput, err)
		}

		log.Printf("selected dialect: %#v", winner)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVarP(&convertInput, "input", "i", "", "input file (must be seekable; pipes are not supported)")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "output ASV file")
	convertCmd.Flags().StringVar(&hasHeaderFlag, "has-headers", "", "force header presence: \"true\", \"false\", or empty to auto-detect")
	convertCmd.MarkFlagRequired("input")
	convertCmd.MarkFlagRequired("output")
}

func parseHasHeaders(s string) *bool {
	switch s {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	default:
		return nil
	}
}

func evictLogger(enabled bool) pipeline.EvictHook {
	if !enabled {
		return nil
	}
	return func(label string, err error) {
		log.Printf("evicted %s: %v", label, err)
	}
}
