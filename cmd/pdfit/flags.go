package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// Sentinel errors for argument handling.
var (
	ErrInvalidFlag     = errors.New("invalid flag")
	ErrMissingArgument = errors.New("missing argument")
	ErrUnknownCommand  = errors.New("unknown command")
	ErrNoInput         = errors.New("no input files found")
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
	noColor bool
}

// convertFlags holds flags for the convert command.
type convertFlags struct {
	common    commonFlags
	output    string
	workers   int
	timeout   string
	kind      string
	noBrowser bool
}

// pdfFlags holds flags for the commands that read one or more PDFs
// and write a result.
type pdfFlags struct {
	common   commonFlags
	output   string
	password string // input password for encrypted files

	// rotate
	pages string
	angle int

	// reorder
	order        string
	allowPartial bool

	// compress
	quality string

	// protect
	userPassword  string
	ownerPassword string
	ownerSet      bool
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	common commonFlags
	json   bool
}

func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug output")
	fs.BoolVar(&f.noColor, "no-color", false, "disable colored output")
}

// newFlagSet returns a ContinueOnError flag set writing its errors and
// usage to w.
func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	return fs
}

// parse runs fs over args. Help requests are returned as flag.ErrHelp;
// other parse failures wrap ErrInvalidFlag.
func parse(fs *flag.FlagSet, args []string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidFlag, err)
	}
	return fs.Args(), nil
}

func parseConvertFlags(args []string, w io.Writer) (*convertFlags, []string, error) {
	fs := newFlagSet("convert", w, printConvertUsage)
	f := &convertFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "browser page load timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.kind, "kind", "", "treat inputs as this kind instead of detecting it")
	fs.BoolVar(&f.noBrowser, "no-browser", false, "render HTML and Markdown as plain text")
	addCommonFlags(fs, &f.common)

	rest, err := parse(fs, args)
	if err != nil {
		return nil, nil, err
	}
	return f, rest, nil
}

// parsePDFFlags parses the flags of a PDF command. Only the flags that
// command documents are registered, so e.g. rotate rejects --order.
func parsePDFFlags(cmd string, args []string, w io.Writer) (*pdfFlags, []string, error) {
	fs := newFlagSet(cmd, w, func(w io.Writer) { printCommandUsage(w, cmd) })
	f := &pdfFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output path")
	addCommonFlags(fs, &f.common)

	switch cmd {
	case "merge", "split", "text", "compress", "rotate", "reorder", "unprotect":
		fs.StringVarP(&f.password, "password", "p", "", "password of encrypted inputs")
	}

	switch cmd {
	case "rotate":
		fs.StringVar(&f.pages, "pages", "all", `pages to rotate, e.g. "1,3-5" or "all"`)
		fs.IntVar(&f.angle, "angle", 0, "clockwise angle: 90, 180 or 270 (default from config)")
	case "reorder":
		fs.StringVar(&f.order, "order", "", `new page order, e.g. "3,1,2"`)
		fs.BoolVar(&f.allowPartial, "allow-partial", false, "allow orders that drop or repeat pages")
	case "compress":
		fs.StringVar(&f.quality, "quality", "", "low, medium or high (default from config)")
	case "protect":
		fs.StringVar(&f.userPassword, "user-password", "", "password required to open the file")
		fs.StringVar(&f.ownerPassword, "owner-password", "", "password required to change permissions")
	}

	rest, err := parse(fs, args)
	if err != nil {
		return nil, nil, err
	}
	f.ownerSet = fs.Changed("owner-password")
	return f, rest, nil
}

func parseDoctorFlags(args []string, w io.Writer) (*doctorFlags, error) {
	fs := newFlagSet("doctor", w, func(w io.Writer) { printCommandUsage(w, "doctor") })
	f := &doctorFlags{}
	fs.BoolVar(&f.json, "json", false, "print results as JSON")
	addCommonFlags(fs, &f.common)

	if _, err := parse(fs, args); err != nil {
		return nil, err
	}
	return f, nil
}

func parseConfigFlags(args []string, w io.Writer) (*commonFlags, error) {
	fs := newFlagSet("config", w, func(w io.Writer) { printCommandUsage(w, "config") })
	f := &commonFlags{}
	addCommonFlags(fs, f)

	if _, err := parse(fs, args); err != nil {
		return nil, err
	}
	return f, nil
}
