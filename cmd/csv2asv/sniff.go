package main

import (
	"fmt"
	"log"
	"os"

	"github.com/nullbyte-dev/csv2asv/pkg/pipeline"
	"github.com/spf13/cobra"
)

var sniffInput string

var sniffCmd = &cobra.Command{
	Use:   "sniff",
	Short: "Detect a dialect and print it, without converting",
	RunE: func(cmd *cobra.Command, args []string) error {
		var in *os.File
		if sniffInput == "-" {
			in = os.Stdin
		} else {
			f, err := os.Open(sniffInput)
			if err != nil {
				return fmt.Errorf("opening input: %w", err)
			}
			defer f.Close()
			in = f
		}

		candidates, err := pipeline.Sniff(in, parseHasHeaders(hasHeaderFlag), evictLogger(verbose))
		if err != nil {
			return fmt.Errorf("sniffing %s: %w", sniffInput, err)
		}

		winner, err := pipeline.Select(candidates)
		if err != nil {
			fmt.Println("no valid dialects found")
			return nil
		}

		fmt.Printf("%#v\n", winner)
		if verbose {
			log.Printf("%d candidate(s) survived detection", len(candidates))
		}
		return nil
	},
}

func init() {
	sniffCmd.Flags().StringVarP(&sniffInput, "input", "i", "", "input file, or - for stdin")
	sniffCmd.Flags().StringVar(&hasHeaderFlag, "has-headers", "", "force header presence: \"true\", \"false\", or empty to auto-detect")
	sniffCmd.MarkFlagRequired("input")
}
