package main

import (
	"fmt"
	"io"
	"strings"

	pdfit "github.com/alnah/go-pdfit"
)

// commands lists the subcommands in help order.
var commands = []struct{ name, summary string }{
	{"convert", "Convert documents, images, HTML and text to PDF"},
	{"merge", "Merge PDFs into one"},
	{"split", "Split a PDF into one file per page"},
	{"text", "Extract the text of a PDF"},
	{"protect", "Encrypt a PDF with a password"},
	{"unprotect", "Remove the password of a PDF"},
	{"compress", "Reduce the size of a PDF"},
	{"rotate", "Rotate pages of a PDF"},
	{"reorder", "Reorder pages of a PDF"},
	{"doctor", "Check system configuration"},
	{"config", "Print the effective configuration"},
	{"version", "Show version information"},
	{"help", "Show help for a command"},
}

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pdfit <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'pdfit help <command>' for details on a specific command.")
}

// printCommonFlags prints the flags every command accepts.
func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug output")
	fmt.Fprintln(w, "      --no-color            Disable colored output")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pdfit convert <input>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert files to PDF. Directories are searched recursively.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    One or more files or directories")
	fmt.Fprintf(w, "           Supported: %s\n", strings.Join(pdfit.SupportedExtensions(), " "))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (single input) or directory")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Browser page load timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "      --kind <kind>         Force input kind: text, markdown, image,")
	fmt.Fprintln(w, "                            html, document, presentation")
	fmt.Fprintln(w, "      --no-browser          Render HTML and Markdown as plain text")
	printCommonFlags(w)
}

// printCommandUsage prints usage for any command but convert.
func printCommandUsage(w io.Writer, cmd string) {
	switch cmd {
	case "merge":
		fmt.Fprintln(w, "Usage: pdfit merge <a.pdf> <b.pdf>... [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Merge two or more PDFs, in argument order.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		fmt.Fprintln(w, "  -o, --output <path>       Output file (default: merged.pdf)")
		fmt.Fprintln(w, "  -p, --password <s>        Password of encrypted inputs")
	case "split":
		fmt.Fprintln(w, "Usage: pdfit split <in.pdf> [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Write each page to <name>_page_<n>.pdf.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: next to input)")
		fmt.Fprintln(w, "  -p, --password <s>        Password of an encrypted input")
	case "text":
		fmt.Fprintln(w, "Usage: pdfit text <in.pdf> [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Extract plain text, pages separated by a blank line.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		fmt.Fprintln(w, "  -o, --output <path>       Output file (default: <name>.txt)")
		fmt.Fprintln(w, "  -p, --password <s>        Password of an encrypted input")
	case "protect":
		fmt.Fprintln(w, "Usage: pdfit protect <in.pdf> --user-password <s> [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Encrypt a PDF. Without --owner-password the user password is used.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		fmt.Fprintln(w, "      --user-password <s>   Password required to open the file")
		fmt.Fprintln(w, "      --owner-password <s>  Password required to change permissions")
		fmt.Fprintln(w, "  -o, --output <path>       Output file (default: <name>_protected.pdf)")
	case "unprotect":
		fmt.Fprintln(w, "Usage: pdfit unprotect <in.pdf> --password <s> [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Remove the encryption of a PDF.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		fmt.Fprintln(w, "  -p, --password <s>        Current user or owner password")
		fmt.Fprintln(w, "  -o, --output <path>       Output file (default: <name>_decrypted.pdf)")
	case "compress":
		fmt.Fprintln(w, "Usage: pdfit compress <in.pdf> [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Compress with Ghostscript, or pdfcpu when Ghostscript is missing.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		fmt.Fprintln(w, "      --quality <q>         low, medium or high (default: medium)")
		fmt.Fprintln(w, "  -o, --output <path>       Output file (default: <name>_compressed.pdf)")
		fmt.Fprintln(w, "  -p, --password <s>        Password of an encrypted input")
	case "rotate":
		fmt.Fprintln(w, "Usage: pdfit rotate <in.pdf> [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Rotate pages clockwise.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		fmt.Fprintln(w, `      --pages <expr>        Pages, 1-based: "1,3-5,7" or "all" (default)`)
		fmt.Fprintln(w, "      --angle <n>           90, 180 or 270 (default: 90)")
		fmt.Fprintln(w, "  -o, --output <path>       Output file (default: <name>_rotated.pdf)")
		fmt.Fprintln(w, "  -p, --password <s>        Password of an encrypted input")
	case "reorder":
		fmt.Fprintln(w, "Usage: pdfit reorder <in.pdf> --order <expr> [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Rearrange pages. The order must list every page once unless")
		fmt.Fprintln(w, "--allow-partial is given.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		fmt.Fprintln(w, `      --order <expr>        New order, 1-based: "3,1,2"`)
		fmt.Fprintln(w, "      --allow-partial       Allow dropping or repeating pages")
		fmt.Fprintln(w, "  -o, --output <path>       Output file (default: <name>_reordered.pdf)")
		fmt.Fprintln(w, "  -p, --password <s>        Password of an encrypted input")
	case "doctor":
		fmt.Fprintln(w, "Usage: pdfit doctor [--json]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Check Chrome, Ghostscript, LibreOffice and the environment.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		fmt.Fprintln(w, "      --json                Print results as JSON")
	case "config":
		fmt.Fprintln(w, "Usage: pdfit config [-c <name>]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Print the configuration in effect: file, PDFIT_* variables and defaults.")
	case "version":
		fmt.Fprintln(w, "Usage: pdfit version")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Show version information.")
		return
	case "help":
		fmt.Fprintln(w, "Usage: pdfit help [command]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Show help for a command.")
		return
	}
	printCommonFlags(w)
}

// knownCommand reports whether name is a subcommand.
func knownCommand(name string) bool {
	for _, c := range commands {
		if c.name == name {
			return true
		}
	}
	return false
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch {
	case args[0] == "convert":
		printConvertUsage(env.Stdout)
	case knownCommand(args[0]):
		printCommandUsage(env.Stdout, args[0])
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
