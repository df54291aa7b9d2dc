package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
	searchFull  bool
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	sourceStyle = lipgloss.NewStyle().Faint(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the active index version",
	Long: `Embeds the query and returns the most similar passages from the active
index version, most relevant first. Relevance is 1 minus the L2 distance,
clamped to [0, 1].`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (0 = configured default)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVar(&searchFull, "full", false, "print full passage text instead of previews")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errNotConfigured("search")
	}

	results, err := searchService.Search(cmd.Context(), args[0], searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	outputSearchTable(cmd, results)
	return nil
}

// searchResultJSON is the --json form of a result.
type searchResultJSON struct {
	domain.Citation
	Tags       []string `json:"tags,omitempty"`
	ChunkIndex int      `json:"chunk_index"`
	Distance   float64  `json:"distance"`
	Text       string   `json:"text"`
	Degraded   bool     `json:"degraded,omitempty"`
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	out := make([]searchResultJSON, len(results))
	for i := range results {
		r := &results[i]
		out[i] = searchResultJSON{
			Citation:   r.Citation(),
			Tags:       r.Metadata.Tags,
			ChunkIndex: r.Metadata.ChunkIndex,
			Distance:   r.Distance,
			Text:       r.Text,
			Degraded:   r.Metadata.Degraded,
		}
	}
	return printJSON(cmd, out)
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	styled := isTerminal(cmd.OutOrStdout())
	render := func(style lipgloss.Style, s string) string {
		if !styled {
			return s
		}
		return style.Render(s)
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		r := &results[i]
		title := r.Metadata.Title
		if title == "" {
			title = r.Metadata.Source
		}

		cmd.Printf("  [%d] %s %s\n", i+1, render(titleStyle, title),
			render(scoreStyle, fmt.Sprintf("(%.2f)", r.RelevanceScore)))
		if r.Metadata.Source != "" {
			cmd.Printf("      %s\n", render(sourceStyle,
				fmt.Sprintf("%s #%d", r.Metadata.Source, r.Metadata.ChunkIndex)))
		}
		text := r.Preview
		if searchFull {
			text = r.Text
		}
		if text != "" {
			cmd.Printf("      %s\n", text)
		}
		if r.Metadata.Degraded {
			cmd.Printf("      %s\n", render(warnStyle, "(stored without a real embedding)"))
		}
		cmd.Println()
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
