package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	echoSource   bool
	traceAnalyze bool
	traceCode    bool
	debug        bool
)

var rootCmd = &cobra.Command{
	Use:   "cminus",
	Short: "cminus compiles a C− AST into TM instructions",
	Long: `cminus runs the semantic analyser and TM code generator over a
JSON-encoded AST produced by an external scanner/parser, producing a TM
instruction listing and a symbol-table listing.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&echoSource, "echo-source", false, "set log level to debug (same effect as --debug; the analyser and code generator write no trace entries)")
	rootCmd.PersistentFlags().BoolVar(&traceAnalyze, "trace-analyze", false, "set log level to debug (same effect as --debug; the analyser writes no trace entries)")
	rootCmd.PersistentFlags().BoolVar(&traceCode, "trace-code", false, "set log level to debug (same effect as --debug; the code generator writes no trace entries)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "set log level to debug, so diag.Sink trace entries are shown")

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(inspectCmd)
}

// newLogger builds the logrus.Logger backing diag.NewLogrusSink,
// honoring --debug and the individual --trace-* flags: any trace flag
// or --debug drops the level to Debug so diag.Sink.Tracef output is not
// silently discarded.
func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if debug || echoSource || traceAnalyze || traceCode {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}
