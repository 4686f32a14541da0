package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"docsage/internal/analyze"
	"docsage/internal/config"
	"docsage/internal/files"
	"docsage/internal/inspect"
	"docsage/internal/orchestrator"
	"docsage/internal/validate"
)

// --- auth ---

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Log in and store the access token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := args[0]
		password, _ := cmd.Flags().GetString("password")

		if !validate.Email(email) {
			return fmt.Errorf("invalid email address: %s", email)
		}
		if password == "" {
			return fmt.Errorf("--password is required")
		}

		svc, err := newServices()
		if err != nil {
			return err
		}

		resp, err := svc.auth.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}

		printSuccess("Logged in as %s", email)
		if resp.AccessToken == "" {
			printWarning("server returned no access token; subsequent calls stay unauthenticated")
		}
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <email>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := args[0]
		password, _ := cmd.Flags().GetString("password")

		if !validate.Email(email) {
			return fmt.Errorf("invalid email address: %s", email)
		}
		if !validate.Password(password) {
			return fmt.Errorf("password must be at least 8 characters with upper case, lower case, and a digit")
		}

		svc, err := newServices()
		if err != nil {
			return err
		}

		if err := svc.auth.Register(cmd.Context(), email, password); err != nil {
			return err
		}

		printSuccess("Registered %s", email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}

		// The local credential is cleared even when the remote call fails.
		if err := svc.auth.Logout(cmd.Context()); err != nil {
			printWarning("remote logout failed: %v", err)
		}
		printSuccess("Logged out")
		return nil
	},
}

func init() {
	loginCmd.Flags().String("password", "", "account password")
	registerCmd.Flags().String("password", "", "account password")
}

// --- files ---

var uploadCmd = &cobra.Command{
	Use:   "upload <path>",
	Short: "Upload a file to the files service",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		maxSizeMB, _ := cmd.Flags().GetInt64("max-size")

		report, err := inspect.File(path, maxSizeMB)
		if err != nil {
			return err
		}
		if report.Pages > 0 {
			printStep("PDF with %d pages", report.Pages)
		}

		svc, err := newServices()
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening file: %w", err)
		}
		defer f.Close()

		desc, err := svc.files.Upload(cmd.Context(), filepath.Base(path), f)
		if err != nil {
			return err
		}

		printSuccess("Uploaded %s (id %s, %d bytes)", desc.Name, desc.ID, desc.Size)
		return nil
	},
}

var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "Manage uploaded files",
}

var fileShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an uploaded file's metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}

		desc, err := svc.files.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(desc)
	},
}

var fileDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an uploaded file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}

		if err := svc.files.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		printSuccess("Deleted file %s", args[0])
		return nil
	},
}

func init() {
	uploadCmd.Flags().Int64("max-size", 50, "maximum file size in MB")
	fileCmd.AddCommand(fileShowCmd)
	fileCmd.AddCommand(fileDeleteCmd)
}

// --- analysis ---

var analysisCmd = &cobra.Command{
	Use:   "analysis",
	Short: "Create analyses and continue their conversations",
}

var analysisCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an analysis over uploaded files",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		message, _ := cmd.Flags().GetString("message")
		fileIDsStr, _ := cmd.Flags().GetString("files")

		var fileIDs []string
		for _, id := range strings.Split(fileIDsStr, ",") {
			if id = strings.TrimSpace(id); id != "" {
				fileIDs = append(fileIDs, id)
			}
		}
		if err := validate.AnalysisRequest(title, message, fileIDs); err != nil {
			return err
		}

		svc, err := newServices()
		if err != nil {
			return err
		}

		resp, err := svc.files.CreateAnalysis(cmd.Context(), files.AnalysisRequest{
			Title:   title,
			Message: message,
			FileIDs: fileIDs,
		})
		if err != nil {
			return err
		}

		printSuccess("Created analysis %s", resp.ID)
		fmt.Println(resp.Content)
		return nil
	},
}

var analysisMessageCmd = &cobra.Command{
	Use:   "message <id> <message...>",
	Short: "Send a follow-up message to an analysis",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}

		resp, err := svc.files.AddMessage(cmd.Context(), args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Println(resp.Content)
		return nil
	},
}

func init() {
	analysisCreateCmd.Flags().String("title", "", "analysis title")
	analysisCreateCmd.Flags().String("message", "", "initial message")
	analysisCreateCmd.Flags().String("files", "", "comma-separated uploaded file ids")
	analysisCmd.AddCommand(analysisCreateCmd)
	analysisCmd.AddCommand(analysisMessageCmd)
}

// --- orchestration ---

func localFiles(paths []string) ([]analyze.LocalFile, error) {
	out := make([]analyze.LocalFile, 0, len(paths))
	for _, p := range paths {
		if !analyze.IsSupportedFile(p) {
			return nil, fmt.Errorf("unsupported file type: %s", p)
		}
		out = append(out, analyze.FromPath(p))
	}
	return out, nil
}

var processCmd = &cobra.Command{
	Use:   "process <path...>",
	Short: "Process files through the analysis backend",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		username, _ := cmd.Flags().GetString("user")

		batch, err := localFiles(args)
		if err != nil {
			return err
		}

		svc, err := newServices()
		if err != nil {
			return err
		}

		printStep("Processing %d files...", len(batch))
		meta := analyze.MetadataFromChat(title, username)
		result, err := svc.facade.ProcessFiles(cmd.Context(), batch, &meta)
		if err != nil {
			return err
		}

		printSuccess("%s", result.Summary)
		for _, name := range result.FilesWithErrors {
			printError("failed: %s", name)
		}
		printStatus("Text chunks", "%d", result.TextChunks)
		return nil
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <path> <question...>",
	Short: "Ask a question about a file",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		batch, err := localFiles(args[:1])
		if err != nil {
			return err
		}

		svc, err := newServices()
		if err != nil {
			return err
		}

		answer, err := svc.facade.AskQuestion(cmd.Context(), batch[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}

		fmt.Println(answer.Answer)
		for _, src := range answer.Sources {
			fmt.Printf("\n%s\n  %s\n", colorize(colorBold, "Source"), src.Text)
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <path> <terms...>",
	Short: "Search within a file",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		batch, err := localFiles(args[:1])
		if err != nil {
			return err
		}

		terms := validate.SanitizeSearchQuery(strings.Join(args[1:], " "))
		if terms == "" {
			return fmt.Errorf("search terms are empty after sanitization")
		}

		svc, err := newServices()
		if err != nil {
			return err
		}

		result, err := svc.facade.SearchWithinFile(cmd.Context(), batch[0], terms)
		if err != nil {
			return err
		}

		if len(result.Matches) == 0 {
			fmt.Println("No matches found.")
			return nil
		}
		for i, m := range result.Matches {
			fmt.Printf("\n%s\n  %s\n", colorize(colorBold, fmt.Sprintf("Match %d", i+1)), m.Text)
		}
		return nil
	},
}

var keywordsCmd = &cobra.Command{
	Use:   "keywords <keyword...>",
	Short: "Keyword search over processed documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("query")
		model, _ := cmd.Flags().GetString("model")

		svc, err := newServices()
		if err != nil {
			return err
		}

		result, err := svc.backend.KeywordSearch(cmd.Context(), orchestrator.KeywordSearchRequest{
			Keywords: args,
			Query:    query,
			Model:    model,
			TopK:     svc.cfg.Client.TopK,
		})
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize <path>",
	Short: "Summarize a file and extract key points",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		batch, err := localFiles(args)
		if err != nil {
			return err
		}

		svc, err := newServices()
		if err != nil {
			return err
		}

		summary, err := svc.facade.Summarize(cmd.Context(), batch[0])
		if err != nil {
			return err
		}

		fmt.Println(summary.Summary)
		if len(summary.KeyPoints) > 0 {
			fmt.Printf("\n%s\n", colorize(colorBold, "Key points"))
			for _, p := range summary.KeyPoints {
				fmt.Printf("  - %s\n", p)
			}
		}
		return nil
	},
}

var entitiesCmd = &cobra.Command{
	Use:   "entities <path>",
	Short: "Extract named entities from a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		batch, err := localFiles(args)
		if err != nil {
			return err
		}

		svc, err := newServices()
		if err != nil {
			return err
		}

		entities, err := svc.facade.ExtractEntities(cmd.Context(), batch[0])
		if err != nil {
			return err
		}
		return printJSON(entities)
	},
}

var textCmd = &cobra.Command{
	Use:   "text <path>",
	Short: "Extract the full text of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		batch, err := localFiles(args)
		if err != nil {
			return err
		}

		svc, err := newServices()
		if err != nil {
			return err
		}

		extract, err := svc.facade.ExtractText(cmd.Context(), batch[0])
		if err != nil {
			return err
		}

		fmt.Println(extract.Text)
		printStatus("Paragraphs", "%d", extract.Paragraphs)
		printStatus("Characters", "%d", extract.Characters)
		return nil
	},
}

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <path>",
	Short: "Transcribe an audio file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if !analyze.IsSupportedFile(path) {
			return fmt.Errorf("unsupported file type: %s", path)
		}

		svc, err := newServices()
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening file: %w", err)
		}
		defer f.Close()

		resp, err := svc.backend.Transcribe(cmd.Context(), orchestrator.File{
			Name:   filepath.Base(path),
			Reader: f,
		}, nil)
		if err != nil {
			return err
		}

		fmt.Println(resp.Text)
		if resp.Language != "" {
			printStatus("Language", "%s", resp.Language)
		}
		return nil
	},
}

func init() {
	processCmd.Flags().String("title", "", "conversation title recorded in the metadata")
	processCmd.Flags().String("user", "", "username recorded in the metadata")
	keywordsCmd.Flags().String("query", "", "free-text query sent alongside the keywords")
	keywordsCmd.Flags().String("model", "", "model override for the search")
}

// --- history ---

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse past analyses",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List history items",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}

		items, err := svc.history.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("No history items.")
			return nil
		}
		for _, item := range items {
			fmt.Printf("%s  %s  %s\n", colorize(colorCyan, item.ID), item.Date, item.Title)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one history item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}

		item, err := svc.history.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(item)
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a history item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}

		if err := svc.history.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		printSuccess("Deleted history item %s", args[0])
		return nil
	},
}

var historySearchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Search history items",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}

		items, err := svc.history.Search(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		for _, item := range items {
			fmt.Printf("%s  %s  %s\n", colorize(colorCyan, item.ID), item.Date, item.Title)
		}
		return nil
	},
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historySearchCmd)
}

// --- backend administration ---

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Manage processed documents on the backend",
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List processed documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}

		resp, err := svc.backend.Documents(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(resp)
	},
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete <filename>",
	Short: "Delete a processed document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}

		status, err := svc.backend.DeleteDocument(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printSuccess("%s", status.Message)
		return nil
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models available on the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}

		models, err := svc.backend.Models(cmd.Context())
		if err != nil {
			return err
		}
		for _, m := range models {
			fmt.Println(m)
		}
		return nil
	},
}

var mappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "Inspect the backend's service mapping",
}

var mappingShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the service mapping",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}

		mapping, err := svc.backend.ServiceMapping(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(mapping)
	},
}

var mappingReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload the service mapping",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}

		status, err := svc.backend.ReloadMapping(cmd.Context())
		if err != nil {
			return err
		}
		printSuccess("%s", status.Message)
		return nil
	},
}

var systemCmd = &cobra.Command{
	Use:   "system",
	Short: "Backend system operations",
}

var systemResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the backend, deleting all processed data",
	RunE: func(cmd *cobra.Command, args []string) error {
		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm {
			printWarning("This deletes ALL processed data on the backend. Use --confirm to proceed.")
			return nil
		}

		svc, err := newServices()
		if err != nil {
			return err
		}

		status, err := svc.backend.ResetSystem(cmd.Context())
		if err != nil {
			return err
		}
		printSuccess("%s", status.Message)
		return nil
	},
}

func init() {
	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsDeleteCmd)
	mappingCmd.AddCommand(mappingShowCmd)
	mappingCmd.AddCommand(mappingReloadCmd)
	systemResetCmd.Flags().Bool("confirm", false, "confirm the reset")
	systemCmd.AddCommand(systemResetCmd)
}

// --- local tools ---

var inspectCmd = &cobra.Command{
	Use:   "inspect <path>",
	Short: "Run the local upload preflight on a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		maxSizeMB, _ := cmd.Flags().GetInt64("max-size")
		report, err := inspect.File(args[0], maxSizeMB)
		if err != nil {
			return err
		}
		return printJSON(report)
	},
}

func init() {
	inspectCmd.Flags().Int64("max-size", 50, "maximum file size in MB")
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetKey(args[0], args[1]); err != nil {
			return err
		}
		printSuccess("Set %s = %s", args[0], args[1])
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a configuration override",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.UnsetKey(args[0]); err != nil {
			return err
		}
		printSuccess("Unset %s", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
}
