// kai - CLI for the Kai conversational-agent backend.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/keboola/kai-go/kai"
	"github.com/keboola/kai-go/sse"
)

var (
	tokenFlag      string
	storageURLFlag string
	baseURLFlag    string
	modelFlag      string
	verboseFlag    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "kai",
	Short: "Chat with the Kai agent from the terminal",
	Long: `kai - CLI for the Kai conversational-agent backend.

Credentials resolve from flags, then environment, then ~/.kai.yaml.
A .env.local or .env file in the working directory is loaded first.

Environment:
  STORAGE_API_TOKEN  Storage API token
  STORAGE_API_URL    Storage API URL (e.g. https://connection.keboola.com)
  KAI_URL            Backend URL (default: discovered from the service index)`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&tokenFlag, "token", "t", "",
		"Storage API token (default: $STORAGE_API_TOKEN)")
	rootCmd.PersistentFlags().StringVarP(&storageURLFlag, "url", "u", "",
		"Storage API URL (default: $STORAGE_API_URL)")
	rootCmd.PersistentFlags().StringVar(&baseURLFlag, "base-url", "",
		"Backend URL, skips service discovery (default: $KAI_URL)")
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "",
		"Chat model")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"Debug logging to stderr")

	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(voteCmd)
}

// fileConfig is the optional ~/.kai.yaml.
type fileConfig struct {
	Token      string `yaml:"token"`
	StorageURL string `yaml:"storage_url"`
	KaiURL     string `yaml:"kai_url"`
	Model      string `yaml:"model"`
}

func loadFileConfig() *fileConfig {
	home, err := os.UserHomeDir()
	if err != nil {
		return &fileConfig{}
	}
	data, err := os.ReadFile(filepath.Join(home, ".kai.yaml"))
	if err != nil {
		return &fileConfig{}
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &fileConfig{}
	}
	return &cfg
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// getClient resolves credentials and builds a client. The backend URL
// comes from --base-url / KAI_URL / config when set, otherwise it is
// discovered from the Storage API service index.
func getClient(ctx context.Context) (*kai.Client, error) {
	godotenv.Load(".env.local", ".env")
	cfg := loadFileConfig()

	token := firstNonEmpty(tokenFlag, os.Getenv("STORAGE_API_TOKEN"), cfg.Token)
	storageURL := firstNonEmpty(storageURLFlag, os.Getenv("STORAGE_API_URL"), cfg.StorageURL)
	if token == "" || storageURL == "" {
		return nil, fmt.Errorf("missing credentials: set --token and --url, STORAGE_API_TOKEN and STORAGE_API_URL, or ~/.kai.yaml")
	}

	var opts []kai.Option
	if model := firstNonEmpty(modelFlag, cfg.Model); model != "" {
		opts = append(opts, kai.WithModel(model))
	}
	if verboseFlag {
		opts = append(opts, kai.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	}

	baseURL := firstNonEmpty(baseURLFlag, os.Getenv("KAI_URL"), cfg.KaiURL)
	if baseURL != "" {
		opts = append(opts, kai.WithBaseURL(baseURL))
		return kai.NewClient(token, storageURL, opts...), nil
	}
	return kai.NewFromStorageAPI(ctx, token, storageURL, opts...)
}

// pingCmd: kai ping
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check backend health",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		client, err := getClient(ctx)
		if err != nil {
			return err
		}

		resp, err := client.Ping(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("ok (server time %s)\n", resp.Timestamp.Format("2006-01-02 15:04:05 MST"))
		return nil
	},
}

// infoCmd: kai info [--json]
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show backend metadata and MCP connections",
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")
		ctx := context.Background()
		client, err := getClient(ctx)
		if err != nil {
			return err
		}

		info, err := client.Info(ctx)
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}

		fmt.Printf("%s %s (server %s)\n", info.AppName, info.AppVersion, info.ServerVersion)
		fmt.Printf("uptime: %.0fs\n", info.Uptime)
		for _, mcp := range info.ConnectedMCP {
			fmt.Printf("  mcp %-20s %s\n", mcp.Name, mcp.Status)
		}
		return nil
	},
}

func init() {
	infoCmd.Flags().BoolP("json", "j", false, "JSON output")
}

// chatCmd: kai chat <prompt> [--chat-id X] [--yes]
var chatCmd = &cobra.Command{
	Use:   "chat <prompt>",
	Short: "Send a message and stream the reply",
	Long: `Chat sends a message and streams the agent's reply to stdout.

When the agent pauses on a tool that needs approval, the call is shown
and you are asked to approve or deny it. The turn resumes after each
answer and may pause again. With --yes every tool is approved without
asking.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chatID, _ := cmd.Flags().GetString("chat-id")
		autoApprove, _ := cmd.Flags().GetBool("yes")
		prompt := strings.Join(args, " ")

		ctx := context.Background()
		client, err := getClient(ctx)
		if err != nil {
			return err
		}

		if chatID == "" {
			chatID = kai.NewChatID()
		}

		acc := sse.NewAccumulator()
		tracker := sse.NewTracker()

		events, errCh, err := client.SendMessage(ctx, chatID, prompt)
		if err != nil {
			return err
		}
		if err := renderTurn(events, errCh, acc, tracker); err != nil {
			return err
		}

		// The turn may pause for approval several times; resolve pending
		// calls until the stream finishes with none left.
		stdin := bufio.NewReader(os.Stdin)
		for len(tracker.Pending()) > 0 {
			pending := tracker.Pending()
			for _, call := range pending {
				approve := autoApprove
				if !autoApprove {
					approve = promptApproval(stdin, call)
				}

				events, errCh, err := client.ResolvePending(ctx, chatID, call, approve, "")
				if err != nil {
					return err
				}
				if err := renderTurn(events, errCh, acc, tracker); err != nil {
					return err
				}
			}
		}

		fmt.Println()
		fmt.Printf("chat: %s  tokens: %d\n", chatID, acc.TotalTokens())
		return nil
	},
}

func init() {
	chatCmd.Flags().String("chat-id", "", "Continue an existing conversation")
	chatCmd.Flags().BoolP("yes", "y", false, "Approve all tool calls without asking")
}

// renderTurn prints one stream to stdout while feeding the shared
// accumulator and tracker.
func renderTurn(events <-chan sse.Event, errCh <-chan error, acc *sse.Accumulator, tracker *sse.Tracker) error {
	for evt := range events {
		acc.ProcessEvent(evt)
		tracker.Observe(evt)

		switch e := evt.(type) {
		case sse.TextEvent:
			fmt.Print(e.Text)
		case sse.ToolCallEvent:
			switch e.Phase {
			case sse.PhaseStarted:
				fmt.Fprintf(os.Stderr, "\n[tool %s started]\n", e.ToolName)
			case sse.PhaseOutputAvailable:
				fmt.Fprintf(os.Stderr, "[tool %s done]\n", toolLabel(e, tracker))
			}
		case sse.ToolOutputErrorEvent:
			fmt.Fprintf(os.Stderr, "[tool %s failed: %s]\n", toolLabel(sse.ToolCallEvent{ToolCallID: e.ToolCallID}, tracker), e.ErrorText)
		case sse.ErrorEvent:
			fmt.Fprintf(os.Stderr, "[stream error: %s]\n", e.Message)
		}
	}
	return <-errCh
}

// toolLabel names a call for display; terminal-phase records often omit
// the name, so fall back to what the tracker saw earlier.
func toolLabel(e sse.ToolCallEvent, tracker *sse.Tracker) string {
	if e.ToolName != "" {
		return e.ToolName
	}
	if seen, ok := tracker.Get(e.ToolCallID); ok && seen.ToolName != "" {
		return seen.ToolName
	}
	return e.ToolCallID
}

func promptApproval(stdin *bufio.Reader, call sse.PendingCall) bool {
	fmt.Fprintf(os.Stderr, "\n[tool %s wants to run", call.ToolName)
	if len(call.Input) > 0 {
		input, _ := json.Marshal(call.Input)
		fmt.Fprintf(os.Stderr, " with %s", input)
	}
	fmt.Fprint(os.Stderr, "]\nApprove? [y/N] ")

	line, err := stdin.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// historyCmd: kai history [--limit N] [--after ID] [--json]
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		after, _ := cmd.Flags().GetString("after")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		ctx := context.Background()
		client, err := getClient(ctx)
		if err != nil {
			return err
		}

		history, err := client.GetHistory(ctx, limit, after)
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(history)
		}

		if len(history.Chats) == 0 {
			fmt.Println("No conversations")
			return nil
		}
		for _, chat := range history.Chats {
			fmt.Printf("%s  %s\n", chat.ID, chat.Title)
		}
		if history.HasMore {
			last := history.Chats[len(history.Chats)-1]
			fmt.Printf("(more: kai history --after %s)\n", last.ID)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Page size")
	historyCmd.Flags().String("after", "", "Start after this chat ID")
	historyCmd.Flags().BoolP("json", "j", false, "JSON output")
}

// showCmd: kai show <chat-id> [--json]
var showCmd = &cobra.Command{
	Use:   "show <chat-id>",
	Short: "Show a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		ctx := context.Background()
		client, err := getClient(ctx)
		if err != nil {
			return err
		}

		chat, err := client.GetChat(ctx, args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(chat)
		}

		if chat.Title != "" {
			fmt.Printf("%s\n\n", chat.Title)
		}
		for _, msg := range chat.Messages {
			fmt.Printf("%s:\n", msg.Role)
			for _, part := range msg.Parts {
				switch part["type"] {
				case "text":
					if text, ok := part["text"].(string); ok {
						fmt.Println(indent(text))
					}
				default:
					if partType, ok := part["type"].(string); ok && partType != "" {
						fmt.Printf("  (%s)\n", partType)
					}
				}
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	showCmd.Flags().BoolP("json", "j", false, "JSON output")
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}

// deleteCmd: kai delete <chat-id>
var deleteCmd = &cobra.Command{
	Use:   "delete <chat-id>",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		client, err := getClient(ctx)
		if err != nil {
			return err
		}

		if err := client.DeleteChat(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", args[0])
		return nil
	},
}

// voteCmd: kai vote <chat-id> <message-id> [--down]
var voteCmd = &cobra.Command{
	Use:   "vote <chat-id> <message-id>",
	Short: "Vote on a message",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		down, _ := cmd.Flags().GetBool("down")

		ctx := context.Background()
		client, err := getClient(ctx)
		if err != nil {
			return err
		}

		var vote *kai.Vote
		if down {
			vote, err = client.Downvote(ctx, args[0], args[1])
		} else {
			vote, err = client.Upvote(ctx, args[0], args[1])
		}
		if err != nil {
			return err
		}
		fmt.Printf("voted %s on %s\n", vote.Type, vote.MessageID)
		return nil
	},
}

func init() {
	voteCmd.Flags().Bool("down", false, "Downvote instead of upvote")
}
