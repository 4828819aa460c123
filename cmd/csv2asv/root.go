// Command csv2asv sniffs a file's CSV-like dialect and converts it to
// ASV (0x1F/0x1E separated values), or reports the detected dialect
// without converting.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/klauspost/cpuid/v2"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:     "csv2asv",
	Short:   "Sniff a CSV-like dialect and normalize it to ASV",
	Version: cpuBanner(),
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"log each validator eviction as it happens")
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(sniffCmd)
}

// cpuBanner reports detected CPU SIMD feature flags, grounded on
// raceordie690/simdcsv's use of cpuid for the same purpose: informational
// only, it never changes detection or normalization behavior.
func cpuBanner() string {
	return fmt.Sprintf("csv2asv (cpu: %s, features: %s)", cpuid.CPU.BrandName, strings.Join(cpuid.CPU.FeatureSet(), ","))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
