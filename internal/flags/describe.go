package flags

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

// Verbosity selects how much detail option rendering includes.
type Verbosity int

const (
	// VerbosityShort prints option names only.
	VerbosityShort Verbosity = iota
	// VerbosityMedium adds the type and default of each option.
	VerbosityMedium
	// VerbosityLong adds the full description and tags, wrapped.
	VerbosityLong
)

// ParseVerbosity converts a --help_verbosity value.
func ParseVerbosity(s string) (Verbosity, error) {
	switch s {
	case "short":
		return VerbosityShort, nil
	case "medium":
		return VerbosityMedium, nil
	case "long":
		return VerbosityLong, nil
	}
	return 0, fmt.Errorf("invalid help verbosity %q: expected short, medium, or long", s)
}

func (v Verbosity) String() string {
	switch v {
	case VerbosityShort:
		return "short"
	case VerbosityLong:
		return "long"
	default:
		return "medium"
	}
}

// DefaultWidth is the wrap width used when stdout is not a terminal.
const DefaultWidth = 80

// TerminalWidth returns the width of f when it is a terminal, DefaultWidth
// otherwise.
func TerminalWidth(f *os.File) int {
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return DefaultWidth
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return DefaultWidth
	}
	return w
}

// Describe writes the documented options of fs to w at the given verbosity,
// wrapping long descriptions to width columns.
func Describe(w io.Writer, fs *pflag.FlagSet, v Verbosity, width int) {
	if width <= 0 {
		width = DefaultWidth
	}
	for _, o := range DocumentedOptions(fs) {
		describeOption(w, o, v, width)
	}
}

func describeOption(w io.Writer, o Option, v Verbosity, width int) {
	f := o.Flag
	switch v {
	case VerbosityShort:
		fmt.Fprintf(w, "  --%s\n", spelledName(o))
	case VerbosityMedium:
		fmt.Fprintf(w, "  --%s (%s)\n", spelledName(o), typeAndDefault(f))
	case VerbosityLong:
		fmt.Fprintf(w, "  --%s (%s)\n", spelledName(o), typeAndDefault(f))
		if f.Usage != "" {
			fmt.Fprint(w, wrap(f.Usage, width, "    "))
		}
		if tags := tagLine(o); tags != "" {
			fmt.Fprint(w, wrap(tags, width, "      "))
		}
	}
}

// spelledName renders the flag name with its negative form for booleans and
// its one-letter abbreviation when present.
func spelledName(o Option) string {
	name := o.Flag.Name
	if o.IsBool() {
		name = "[no]" + name
	}
	if o.Flag.Shorthand != "" {
		name += " [-" + o.Flag.Shorthand + "]"
	}
	return name
}

func typeAndDefault(f *pflag.Flag) string {
	t := f.Value.Type()
	article := "a"
	switch t[0] {
	case 'a', 'e', 'i', 'o', 'u':
		article = "an"
	}
	if f.DefValue == "" {
		return fmt.Sprintf("%s %s", article, t)
	}
	return fmt.Sprintf("%s %s; default: %q", article, t, f.DefValue)
}

func tagLine(o Option) string {
	var tags []string
	for _, t := range o.Effects {
		tags = append(tags, string(t))
	}
	for _, t := range o.Metadata {
		tags = append(tags, string(t))
	}
	if len(tags) == 0 {
		return ""
	}
	return "Tags: " + strings.Join(tags, ", ")
}

// wrap greedily wraps text to width columns, prefixing every line with
// indent. The result always ends in a newline.
func wrap(text string, width int, indent string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	line := indent + words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) > width {
			b.WriteString(line)
			b.WriteByte('\n')
			line = indent + word
			continue
		}
		line += " " + word
	}
	b.WriteString(line)
	b.WriteByte('\n')
	return b.String()
}
