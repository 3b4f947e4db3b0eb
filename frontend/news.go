package frontend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
)

var exitWords = map[string]bool{"exit": true, "quit": true, "bye": true}

// RunNewsTerminal reads one request per line until an exit word or EOF.
// A failed request is reported and the loop continues.
func RunNewsTerminal(ctx context.Context, runner Runner, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "--- Personalized News Curator ---")
	fmt.Fprintln(out, "Tell me what news you're interested in (e.g., 'latest tech news', 'finance highlights', 'health news summary').")
	fmt.Fprintln(out, "Type 'exit' to quit.")

	lines := newLineReader(ctx, in)
	for {
		fmt.Fprint(out, "\nYou: ")
		line, err := lines.next(ctx)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return err
		}

		query := strings.TrimSpace(line)
		if exitWords[strings.ToLower(query)] {
			fmt.Fprintln(out, "News Curator: Goodbye! Stay informed!")
			return nil
		}
		if query == "" {
			continue
		}

		fmt.Fprintln(out, "\n--- Processing your request... ---")
		res, err := runner.Run(ctx, query)
		if err != nil {
			log.Error().Err(err).Str("query", query).Msg("news pipeline failed")
			fmt.Fprintln(out, "\nNews Curator Error: An error occurred during news curation. Please try again.")
			continue
		}
		fmt.Fprintln(out, "\n--- Here is your personalized news summary ---")
		fmt.Fprintf(out, "News Curator: %s\n", res.Output)
	}
}
