package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"linehistory/history"
)

var randomSeed uint64

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search a history export",
}

var searchDateCmd = &cobra.Command{
	Use:   "date YYYY/MM/DD",
	Short: "Print every chat of one day",
	Args:  cobra.ExactArgs(1),
	RunE:  searchDate,
}

var searchKeywordCmd = &cobra.Command{
	Use:   "keyword KEYWORD",
	Short: "Print every chat containing a keyword",
	Args:  cobra.ExactArgs(1),
	RunE:  searchKeyword,
}

var searchRandomCmd = &cobra.Command{
	Use:   "random",
	Short: "Print a randomly chosen day",
	Args:  cobra.NoArgs,
	RunE:  searchRandom,
}

func init() {
	searchCmd.PersistentFlags().StringVarP(&historyFile, "file", "f", "", "History export or CSV (default: workload input or history.txt)")
	searchRandomCmd.Flags().Uint64Var(&randomSeed, "seed", 0, "Seed for a reproducible pick (0 picks a random seed)")

	searchCmd.AddCommand(searchDateCmd)
	searchCmd.AddCommand(searchKeywordCmd)
	searchCmd.AddCommand(searchRandomCmd)
}

func openHistory() (*history.History, error) {
	workload, err := loadWorkload()
	if err != nil {
		return nil, err
	}
	return readHistory(inputPath(workload))
}

func searchDate(cmd *cobra.Command, args []string) error {
	date, err := history.ParseDate(args[0])
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY/MM/DD: %w", args[0], err)
	}
	h, err := openHistory()
	if err != nil {
		return err
	}

	day, err := h.SearchByDate(date)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), day)
	return nil
}

func searchKeyword(cmd *cobra.Command, args []string) error {
	h, err := openHistory()
	if err != nil {
		return err
	}

	matches := h.SearchByKeyword(args[0])
	for _, m := range matches {
		fmt.Fprintln(cmd.OutOrStdout(), m)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d matches\n", len(matches))
	return nil
}

func searchRandom(cmd *cobra.Command, args []string) error {
	h, err := openHistory()
	if err != nil {
		return err
	}

	var rng *rand.Rand
	if randomSeed != 0 {
		rng = rand.New(rand.NewPCG(randomSeed, randomSeed))
	}
	day, err := h.SearchByRandom(rng)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), day)
	return nil
}
