package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:           "docsage",
	Short:         "Document and audio analysis client",
	Long:          "docsage talks to the auth, files, history, and orchestration services\nand exposes the analysis workflows as commands, a local HTTP gateway,\nand an MCP server.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(
		loginCmd,
		registerCmd,
		logoutCmd,
		uploadCmd,
		fileCmd,
		analysisCmd,
		processCmd,
		askCmd,
		searchCmd,
		keywordsCmd,
		summarizeCmd,
		entitiesCmd,
		textCmd,
		transcribeCmd,
		historyCmd,
		documentsCmd,
		modelsCmd,
		mappingCmd,
		systemCmd,
		inspectCmd,
		configCmd,
		serveCmd,
		stopCmd,
		statusCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
