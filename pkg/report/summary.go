package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/zksync-ledger/pkg/syncer"
)

// PrintSummary writes the end-of-run banner.
func PrintSummary(w io.Writer, ledgerPath string, st syncer.Stats, took time.Duration) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	fmt.Fprintln(w, "\n"+strings.Repeat("═", 60))
	bold.Fprintf(w, "  Done! Added %d new transactions to %s\n", st.Added, ledgerPath)
	fmt.Fprintln(w, strings.Repeat("═", 60))
	fmt.Fprintf(w, "  Processed:   %9d\n", st.Processed)
	green.Fprintf(w, "  New rows:    %9d\n", st.Added)
	fmt.Fprintf(w, "  In ledger:   %9d\n", st.Stored)
	fmt.Fprintf(w, "  Duplicates:  %9d\n", st.Duplicates)
	if st.Unsupported > 0 {
		yellow.Fprintf(w, "  Ignored:     %9d  (unsupported types)\n", st.Unsupported)
	}
	if st.Malformed > 0 {
		yellow.Fprintf(w, "  Incomplete:  %9d\n", st.Malformed)
	}
	fmt.Fprintf(w, "  Took:        %9s\n", took.Round(time.Millisecond))
	fmt.Fprintln(w, strings.Repeat("═", 60)+"\n")
}
