package cli

import (
	"errors"
	"flag"

	"github.com/eshaffer321/ledger-reconcile/internal/adapters/insight"
)

// ReconcileFlags are the flags of the reconcile command
type ReconcileFlags struct {
	BankPath   string
	BookPath   string
	ConfigPath string
	Save       bool
	Report     string // "", "discrepancies" or "executive"
	Limit      int
	Verbose    bool
}

// ParseReconcileFlags parses and validates reconcile flags
func ParseReconcileFlags(args []string) (ReconcileFlags, error) {
	var flags ReconcileFlags
	fs := flag.NewFlagSet("reconcile", flag.ContinueOnError)
	fs.StringVar(&flags.BankPath, "bank", "", "Bank statement CSV (required)")
	fs.StringVar(&flags.BookPath, "book", "", "Book ledger CSV (required)")
	fs.StringVar(&flags.ConfigPath, "config", "config.yaml", "Configuration file path")
	fs.BoolVar(&flags.Save, "save", false, "Persist the run to the database")
	fs.StringVar(&flags.Report, "report", "", "Generate a report: discrepancies or executive")
	fs.IntVar(&flags.Limit, "limit", 50, "Maximum result rows to print (0 = all)")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")

	if err := fs.Parse(args); err != nil {
		return flags, err
	}

	if flags.BankPath == "" || flags.BookPath == "" {
		return flags, errors.New("both -bank and -book are required")
	}
	if flags.Report != "" {
		if _, err := insight.ParseReportKind(flags.Report); err != nil {
			return flags, err
		}
	}
	return flags, nil
}

// ServeFlags holds the CLI flags for the serve and dashboard commands.
type ServeFlags struct {
	Port       int
	ConfigPath string
	Verbose    bool
}

// ParseServeFlags parses command line flags for the serve command.
// A zero port means the configured one.
func ParseServeFlags() *ServeFlags {
	flags := &ServeFlags{}
	flag.IntVar(&flags.Port, "port", 0, "Port to listen on (default from config)")
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "Configuration file path")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}
