package main

import (
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mrlokans/bookshelf/internal/entities"
)

var quotesCmd = &cobra.Command{
	Use:   "quotes",
	Short: "Add, edit and delete quotes",
}

var quotesAddCmd = &cobra.Command{
	Use:   "add <book>",
	Short: "Add a quote to a book",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		input := quoteInput(cmd.Flags())

		ctx, cancel := commandContext()
		defer cancel()
		s := openSession(ctx)
		defer s.Close()

		res, err := s.library.CreateQuote(ctx, args[0], input)
		if err != nil {
			fail("adding quote: %v", err)
		}
		printResult(res)
	},
}

var quotesUpdateCmd = &cobra.Command{
	Use:   "update <quote-id>",
	Short: "Replace a quote's text and details",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])
		input := quoteInput(cmd.Flags())

		ctx, cancel := commandContext()
		defer cancel()
		s := openSession(ctx)
		defer s.Close()

		res, err := s.library.UpdateQuote(ctx, id, input)
		if err != nil {
			fail("updating quote: %v", err)
		}
		printResult(res)
	},
}

var quotesDeleteCmd = &cobra.Command{
	Use:   "delete <quote-id>",
	Short: "Delete a quote",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])

		ctx, cancel := commandContext()
		defer cancel()
		s := openSession(ctx)
		defer s.Close()

		res, err := s.library.DeleteQuote(ctx, id)
		if err != nil {
			fail("deleting quote: %v", err)
		}
		printResult(res)
	},
}

func init() {
	for _, c := range []*cobra.Command{quotesAddCmd, quotesUpdateCmd} {
		f := c.Flags()
		f.String("text", "", "Quote text")
		f.Int("page", 0, "Page number")
		f.String("chapter", "", "Chapter")
		f.String("notes", "", "Notes")
		f.Bool("favorite", false, "Mark as favorite")
		c.MarkFlagRequired("text")
	}

	quotesCmd.AddCommand(quotesAddCmd, quotesUpdateCmd, quotesDeleteCmd)
	rootCmd.AddCommand(quotesCmd)
}

func quoteInput(flags *pflag.FlagSet) entities.QuoteInput {
	var in entities.QuoteInput
	in.Text, _ = flags.GetString("text")
	in.IsFavorite, _ = flags.GetBool("favorite")
	if flags.Changed("page") {
		v, _ := flags.GetInt("page")
		in.PageNumber = &v
	}
	if flags.Changed("chapter") {
		v, _ := flags.GetString("chapter")
		in.Chapter = &v
	}
	if flags.Changed("notes") {
		v, _ := flags.GetString("notes")
		in.Notes = &v
	}
	return in
}

func parseID(raw string) uint {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		fail("invalid id %q", raw)
	}
	return uint(id)
}
