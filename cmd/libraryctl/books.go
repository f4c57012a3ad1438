package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mrlokans/bookshelf/internal/bookshape"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/offline"
)

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "List and edit books",
}

var booksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List books (refreshes the cache when online)",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		s := openSession(ctx)
		defer s.Close()

		books, err := s.library.Load(ctx)
		if err != nil {
			fail("loading books: %v", err)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			printJSON(books)
			return
		}
		if !s.conn.Online() {
			fmt.Fprintln(os.Stderr, "Server unreachable, showing cached books")
		}
		printBooks(books)
	},
}

var booksAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a book",
	Run: func(cmd *cobra.Command, args []string) {
		var input entities.BookInput
		if err := applyBookFlags(cmd.Flags(), &input); err != nil {
			fail("%v", err)
		}

		ctx, cancel := commandContext()
		defer cancel()
		s := openSession(ctx)
		defer s.Close()

		res, err := s.library.CreateBook(ctx, input)
		if err != nil {
			fail("adding book: %v", err)
		}
		printResult(res)
	},
}

var booksUpdateCmd = &cobra.Command{
	Use:   "update <book>",
	Short: "Update a book; flags not given keep their cached value",
	Long: `Update a book by id (or local id for books created offline).

The server replaces every field, shelf and tag of the book. Fields not
given on the command line are taken from the local cache, so run
"libraryctl books list" first if the cache may be stale. Passing
--shelf or --tag replaces the whole set; --clear-shelves and
--clear-tags empty it.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		s := openSession(ctx)
		defer s.Close()

		cached, err := s.library.Book(ctx, args[0])
		if err != nil {
			fail("book %s: %v", args[0], err)
		}
		input := bookshape.ToInput(*cached)
		if err := applyBookFlags(cmd.Flags(), &input); err != nil {
			fail("%v", err)
		}

		res, err := s.library.UpdateBook(ctx, args[0], input)
		if err != nil {
			fail("updating book: %v", err)
		}
		printResult(res)
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review <book>",
	Short: "Set personal rating, review, status or notes of a book",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		var patch entities.ReviewPatch
		if flags.Changed("rating") {
			v, _ := flags.GetInt("rating")
			patch.PersonalRating = &v
		}
		if flags.Changed("review") {
			v, _ := flags.GetString("review")
			patch.PersonalReview = &v
		}
		if flags.Changed("status") {
			v, _ := flags.GetString("status")
			status := entities.ReadingStatus(v)
			patch.ReadingStatus = &status
		}
		if flags.Changed("notes") {
			v, _ := flags.GetString("notes")
			patch.ReadingNotes = &v
		}
		if patch == (entities.ReviewPatch{}) {
			fail("nothing to change: pass --rating, --review, --status or --notes")
		}

		ctx, cancel := commandContext()
		defer cancel()
		s := openSession(ctx)
		defer s.Close()

		res, err := s.library.UpdateReview(ctx, args[0], patch)
		if err != nil {
			fail("updating review: %v", err)
		}
		printResult(res)
	},
}

func init() {
	booksListCmd.Flags().Bool("json", false, "Print books in the local JSON shape")

	addBookFlags(booksAddCmd.Flags(), false)
	addBookFlags(booksUpdateCmd.Flags(), true)
	booksAddCmd.MarkFlagRequired("title")

	reviewCmd.Flags().Int("rating", 0, "Personal rating 1-5")
	reviewCmd.Flags().String("review", "", "Personal review")
	reviewCmd.Flags().String("status", "", "Reading status")
	reviewCmd.Flags().String("notes", "", "Reading notes")

	booksCmd.AddCommand(booksListCmd, booksAddCmd, booksUpdateCmd)
	rootCmd.AddCommand(booksCmd, reviewCmd)
}

func addBookFlags(f *pflag.FlagSet, update bool) {
	f.String("title", "", "Title")
	f.String("author", "", "Author")
	f.String("series", "", "Series")
	f.Int("volume", 0, "Volume in series")
	f.String("isbn", "", "ISBN")
	f.String("language", "", "Language")
	f.Int("pages", 0, "Page count")
	f.String("genre", "", "Genre")
	f.String("status", "", "Reading status (to_read, currently_reading, finished, abandoned)")
	f.Int("rating", 0, "Personal rating 1-5")
	f.Int("pages-read", 0, "Pages read")
	f.String("started", "", "Date started (YYYY-MM-DD)")
	f.String("finished", "", "Date finished (YYYY-MM-DD)")
	f.String("due", "", "Due date (YYYY-MM-DD)")
	f.String("lend-to", "", "Lent to")
	f.String("borrow-from", "", "Borrowed from")
	f.UintSlice("shelf", nil, "Shelf id (repeatable)")
	f.StringSlice("tag", nil, "Tag name (repeatable)")
	if update {
		f.Bool("clear-shelves", false, "Remove the book from every shelf")
		f.Bool("clear-tags", false, "Remove every tag")
	}
}

// applyBookFlags overwrites the fields of in whose flags were given.
func applyBookFlags(flags *pflag.FlagSet, in *entities.BookInput) error {
	str := func(name string, dst **string) {
		if flags.Changed(name) {
			v, _ := flags.GetString(name)
			*dst = &v
		}
	}
	num := func(name string, dst **int) {
		if flags.Changed(name) {
			v, _ := flags.GetInt(name)
			*dst = &v
		}
	}

	if flags.Changed("title") {
		in.Title, _ = flags.GetString("title")
	}
	str("author", &in.Author)
	str("series", &in.Series)
	num("volume", &in.Volume)
	str("isbn", &in.ISBN)
	str("language", &in.Language)
	num("pages", &in.Pages)
	str("genre", &in.Genre)
	num("rating", &in.PersonalRating)
	num("pages-read", &in.PagesRead)
	str("started", &in.DateStarted)
	str("finished", &in.DateFinished)
	str("due", &in.DueDate)
	str("lend-to", &in.LendTo)
	str("borrow-from", &in.BorrowFrom)

	if flags.Changed("status") {
		v, _ := flags.GetString("status")
		status := entities.ReadingStatus(v)
		if !status.Valid() {
			return fmt.Errorf("unknown reading status %q", v)
		}
		in.ReadingStatus = status
	}
	if flags.Changed("shelf") {
		in.Shelves, _ = flags.GetUintSlice("shelf")
	}
	if flags.Changed("tag") {
		in.Tags, _ = flags.GetStringSlice("tag")
	}
	if reset, _ := flags.GetBool("clear-shelves"); reset {
		in.Shelves = []uint{}
	}
	if reset, _ := flags.GetBool("clear-tags"); reset {
		in.Tags = []string{}
	}
	return nil
}

func printBooks(books []bookshape.LocalBook) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tTITLE\tAUTHOR\tSTATUS\tRATING\tSHELVES\tTAGS")
	for _, b := range books {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			b.Key(), b.Title, deref(b.Author), b.ReadingStatus, rating(b.PersonalRating),
			shelfNames(b.Meta.Shelves), strings.Join(b.Meta.Tags, " "))
	}
	w.Flush()
}

func printResult(res offline.Result) {
	switch {
	case res.Book != nil:
		fmt.Printf("%s  %s (%s)\n", res.State, res.Book.Title, res.Book.Key())
	case res.Quote != nil:
		fmt.Printf("%s  quote %d on book %d\n", res.State, res.Quote.ID, res.Quote.BookID)
	default:
		fmt.Printf("%s\n", res.State)
	}
	if res.MutationID != 0 {
		fmt.Printf("   queued as #%d\n", res.MutationID)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fail("encoding output: %v", err)
	}
}

func shelfNames(refs []entities.ShelfRef) string {
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		if r.Name == "" {
			names = append(names, fmt.Sprintf("#%d", r.ID))
			continue
		}
		names = append(names, r.Name)
	}
	return strings.Join(names, ", ")
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func rating(r *int) string {
	if r == nil {
		return "-"
	}
	return strings.Repeat("*", *r)
}
