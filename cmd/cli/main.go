package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

const defaultBaseURL = "http://localhost:8080"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		baseURL string
		timeout time.Duration
	)

	root := &cobra.Command{
		Use:           "moviefinder",
		Short:         "Ask the moviefinder API for movie suggestions",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&baseURL, "api", envOr("MOVIEFINDER_API", defaultBaseURL), "API base URL")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "request timeout")

	api := func() *apiClient { return newAPIClient(baseURL, timeout) }

	root.AddCommand(
		newSearchCmd(api),
		newRandomCmd(api),
		newMoviesCmd(api),
	)
	return root
}

func newSearchCmd(api func() *apiClient) *cobra.Command {
	var (
		language string
		model    string
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Suggest movies for a free-text request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := api().Search(cmd.Context(), args[0], language, model, limit)
			if err != nil {
				return err
			}
			printMovies(cmd, res.Movies)
			return nil
		},
	}
	cmd.Flags().StringVar(&language, "language", "es", "display language (es translates)")
	cmd.Flags().StringVar(&model, "model", "llama3", "text model")
	cmd.Flags().IntVar(&limit, "limit", 0, "max titles to look up (0 = all)")
	return cmd
}

func newRandomCmd(api func() *apiClient) *cobra.Command {
	var language, model string
	cmd := &cobra.Command{
		Use:   "random",
		Short: "Show a random movie",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := api().Random(cmd.Context(), language, model)
			if err != nil {
				return err
			}
			printMovies(cmd, res.Movies)
			return nil
		},
	}
	cmd.Flags().StringVar(&language, "language", "es", "display language (es translates)")
	cmd.Flags().StringVar(&model, "model", "llama3", "text model")
	return cmd
}

func newMoviesCmd(api func() *apiClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "movies",
		Short: "Read movies saved by previous searches",
	}

	var (
		q      string
		limit  int
		offset int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List saved movies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := api().ListMovies(cmd.Context(), q, limit, offset)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d saved movie(s)\n", res.Total)
			for _, m := range res.Items {
				fmt.Fprintf(out, "%-8d %-12s %s\n", m.TMDBID, dateOrDash(m.ReleaseDate), m.Title)
			}
			return nil
		},
	}
	list.Flags().StringVar(&q, "q", "", "title keyword")
	list.Flags().IntVar(&limit, "limit", 20, "page size")
	list.Flags().IntVar(&offset, "offset", 0, "page offset")

	get := &cobra.Command{
		Use:   "get <tmdb_id>",
		Short: "Show one saved movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid tmdb id %q", args[0])
			}
			m, err := api().GetMovie(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n%s\n", m.Title, dateOrDash(m.ReleaseDate), m.Overview)
			return nil
		},
	}

	cmd.AddCommand(list, get)
	return cmd
}

func printMovies(cmd *cobra.Command, movies []string) {
	out := cmd.OutOrStdout()
	if len(movies) == 0 {
		fmt.Fprintln(out, "No se encontraron películas.")
		return
	}
	for _, m := range movies {
		fmt.Fprintln(out, m)
	}
}

func dateOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
