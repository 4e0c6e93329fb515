package display

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Output is where the status helpers print. Tests swap it.
var Output io.Writer = os.Stdout

// DisplayError shows formatted error messages
func DisplayError(err error, context string) {
	fmt.Fprintf(Output, "❌ Error in %s:\n", context)
	fmt.Fprintf(Output, "   %v\n", err)
	fmt.Fprintln(Output, "   💡 Check backend_url with `wealthgo config show`")
}

// DisplayWarning shows formatted warning messages
func DisplayWarning(message string) {
	fmt.Fprintf(Output, "⚠️  Warning: %s\n", message)
}

// DisplaySuccess shows formatted success messages
func DisplaySuccess(message string) {
	fmt.Fprintf(Output, "✅ %s\n", message)
}

// DisplayInfo shows formatted info messages
func DisplayInfo(message string) {
	fmt.Fprintf(Output, "ℹ️  %s\n", message)
}

// DisplayEmpty shows the placeholder for a dashboard with nothing to list.
func DisplayEmpty(message string) {
	fmt.Fprintf(Output, "📭 %s\n", message)
}

// wrapText word-wraps text to width with indent on every line. A
// non-positive width leaves the text on one line.
func wrapText(text, indent string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	if width <= 0 {
		return indent + strings.Join(words, " ")
	}

	var b strings.Builder
	line := indent + words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			b.WriteString(line)
			b.WriteByte('\n')
			line = indent + w
		} else {
			line += " " + w
		}
	}
	b.WriteString(line)
	return b.String()
}
