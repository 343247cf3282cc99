package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jacentio/lexicon/api"
	"github.com/jacentio/lexicon/query"
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add VALUE",
		Short: "Analyze and store a string",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			e, err := svc.Create(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), api.NewEntry(e))
		},
	}
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get VALUE_OR_HASH",
		Short: "Fetch a stored string by exact value or SHA-256 hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			e, err := svc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), api.NewEntry(e))
		},
	}
}

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm VALUE_OR_HASH",
		Short: "Delete a stored string by exact value or SHA-256 hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := svc.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted")
			return nil
		},
	}
}

// lsFlags maps flag names to filter parameters.
var lsFlags = []struct {
	flag, param, usage string
}{
	{"palindrome", query.ParamIsPalindrome, "filter by palindrome (true or false)"},
	{"min-length", query.ParamMinLength, "minimum length in characters"},
	{"max-length", query.ParamMaxLength, "maximum length in characters"},
	{"words", query.ParamWordCount, "exact word count"},
	{"contains", query.ParamContainsCharacter, "single character the string must contain"},
	{"order", query.ParamOrdering, "created_at, -created_at, length or -length"},
}

func newLsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List stored strings matching filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := make(map[string]string)
			for _, f := range lsFlags {
				if cmd.Flags().Changed(f.flag) {
					params[f.param], _ = cmd.Flags().GetString(f.flag)
				}
			}

			svc, closeFn, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := svc.List(cmd.Context(), params)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"data":            api.NewEntries(res.Entries),
				"count":           res.Count,
				"filters_applied": res.Filters,
			})
		},
	}
	for _, f := range lsFlags {
		cmd.Flags().String(f.flag, "", f.usage)
	}
	return cmd
}

func newAskCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask SENTENCE",
		Short: "List stored strings matching an English description",
		Long: `Translate a short English sentence into filters and list the matches.

Understood phrases: "palindromic", "single word", "longer than N",
"less than N", "at most N", "N characters", "containing the letter X",
"first vowel".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := svc.Interpret(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"data":  api.NewEntries(res.Entries),
				"count": res.Count,
				"interpreted_query": map[string]interface{}{
					"original":       res.Original,
					"parsed_filters": res.Filters,
				},
			})
		},
	}
}
