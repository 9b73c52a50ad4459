// Package main is the entry point for the Aura CLI. Aura is a multimodal
// personal companion: sensory organs (vision, hearing, document, screen)
// wrap multimodal inference behind one perceive contract, and an
// orchestrator composes them into moment perception, dual-channel
// reading, and continuous monitoring.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/auralabs/aura/internal/agent"
	"github.com/auralabs/aura/internal/bridge"
	"github.com/auralabs/aura/internal/config"
	"github.com/auralabs/aura/internal/journal"
	"github.com/auralabs/aura/internal/logging"
	"github.com/auralabs/aura/internal/orchestrator"
	"github.com/auralabs/aura/internal/organ"
	"github.com/auralabs/aura/internal/persona"
	"github.com/auralabs/aura/internal/server"
)

var (
	version     = "0.1.0"
	cfgPath     string
	personaName string
	verbose     bool
	log         *logging.Logger
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	readyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	downStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	personaStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "aura",
		Short: "Aura - multimodal AI companion with dual personas",
		Long: `Aura perceives the world through sensory organs and interprets it
under one of two personas:

  main    analytic, fact-oriented
  inner   intuitive, affect-oriented

Perceive a photo:      aura look
Listen for 5 seconds:  aura listen -d 5
Read a document:       aura read notes.md
Everything at once:    aura moment --screen`,
		PersistentPreRunE: initLogging,
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path (default ~/.aura/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&personaName, "persona", "p", "main", "persona to perceive under (main|inner)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		serveCmd(),
		lookCmd(),
		listenCmd(),
		readCmd(),
		screenCmd(),
		momentCmd(),
		chatCmd(),
		askCmd(),
		historyCmd(),
		statusCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func initLogging(cmd *cobra.Command, args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	logDir := filepath.Join(home, ".aura", "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to create log directory: %v\n", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logFile := filepath.Join(logDir, fmt.Sprintf("aura_%s.log", timestamp))

	var cfg *logging.Config
	if verbose {
		cfg = logging.VerboseConfig()
	} else {
		cfg = logging.DefaultConfig()
	}
	cfg.FilePath = logFile

	log = logging.New(cfg)
	logging.SetGlobal(log)

	log.Debug("Aura session started - logging to %s", logFile)
	return nil
}

func loadConfig() (*config.Config, error) {
	config.LoadEnvFile()
	if cfgPath != "" {
		return config.LoadFromPath(cfgPath)
	}
	return config.Load()
}

func buildOrchestrator() (*orchestrator.Orchestrator, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, nil, fmt.Errorf("prepare data directories: %w", err)
	}

	orch, err := orchestrator.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return orch, cfg, nil
}

func currentPersona() persona.Persona {
	who, err := persona.ParseStrict(personaName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using main\n", err)
		return persona.Main
	}
	return who
}

// printPerception renders one perception for the terminal.
func printPerception(p organ.Perception) {
	header := fmt.Sprintf("%s %s", personaStyle.Render(p.Persona.Tag()), faintStyle.Render(string(p.Organ)))
	fmt.Println(header)
	if p.Success {
		fmt.Println(p.Interpretation)
		return
	}
	fmt.Println(downStyle.Render(fmt.Sprintf("failed (%s): %s", p.ErrorKind, p.Error)))
}

// ═══════════════════════════════════════════════════════════════════════════════
// PERCEPTION COMMANDS
// ═══════════════════════════════════════════════════════════════════════════════

func lookCmd() *cobra.Command {
	var question string
	var followUps []string

	cmd := &cobra.Command{
		Use:   "look [image-or-video-url]",
		Short: "Perceive an image, a video URL, or a fresh photo",
		Long: `With an argument, interprets that image file or video URL. Without
one, captures a photo with the device camera first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, _, err := buildOrchestrator()
			if err != nil {
				return err
			}
			defer orch.Close()
			who := currentPersona()
			ctx := cmd.Context()

			if len(followUps) > 0 {
				input := ""
				if len(args) == 1 {
					input = args[0]
				} else {
					return fmt.Errorf("follow-up questions need an explicit input")
				}
				results, err := orch.Deep(ctx, organ.Vision, input, followUps, who)
				if err != nil {
					return err
				}
				for _, p := range results {
					fmt.Println(faintStyle.Render("-- " + p.Stage))
					printPerception(p)
				}
				return nil
			}

			var p organ.Perception
			if len(args) == 1 {
				p = orch.PerceivePhoto(ctx, args[0], question, who)
			} else {
				p = orch.Look(ctx, question, who)
			}
			printPerception(p)
			return nil
		},
	}

	cmd.Flags().StringVarP(&question, "question", "q", "", "question to ask about the input")
	cmd.Flags().StringArrayVar(&followUps, "follow-up", nil, "follow-up questions for a deep perception")
	return cmd
}

func listenCmd() *cobra.Command {
	var question string
	var durationSec int

	cmd := &cobra.Command{
		Use:   "listen [audio-file]",
		Short: "Perceive an audio file, or record and perceive",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, _, err := buildOrchestrator()
			if err != nil {
				return err
			}
			defer orch.Close()
			who := currentPersona()

			var p organ.Perception
			if len(args) == 1 {
				p = orch.PerceiveAudio(cmd.Context(), args[0], question, who)
			} else {
				p = orch.Listen(cmd.Context(), time.Duration(durationSec)*time.Second, question, who)
			}
			printPerception(p)
			return nil
		},
	}

	cmd.Flags().StringVarP(&question, "question", "q", "", "question to ask about the audio")
	cmd.Flags().IntVarP(&durationSec, "duration", "d", 5, "recording length in seconds")
	return cmd
}

func readCmd() *cobra.Command {
	var question string
	var withScreen bool

	cmd := &cobra.Command{
		Use:   "read <file>",
		Short: "Read and interpret a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, _, err := buildOrchestrator()
			if err != nil {
				return err
			}
			defer orch.Close()
			who := currentPersona()

			if withScreen {
				res := orch.ReadAndSee(cmd.Context(), args[0], who)
				fmt.Println(titleStyle.Render("Document"))
				printPerception(res.Document)
				fmt.Println(titleStyle.Render("Screen"))
				printPerception(res.Screen)
				return nil
			}

			printPerception(orch.Read(cmd.Context(), args[0], question, who))
			return nil
		},
	}

	cmd.Flags().StringVarP(&question, "question", "q", "", "question to ask about the document")
	cmd.Flags().BoolVar(&withScreen, "with-screen", false, "also perceive the screen while reading")
	return cmd
}

func screenCmd() *cobra.Command {
	var question string
	var watch bool
	var intervalSec, maxSec int

	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Perceive the device screen",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, cfg, err := buildOrchestrator()
			if err != nil {
				return err
			}
			defer orch.Close()
			who := currentPersona()

			if !watch {
				printPerception(orch.Glance(cmd.Context(), question, who))
				return nil
			}

			if intervalSec <= 0 {
				intervalSec = cfg.Monitor.IntervalSec
			}
			m := orch.StartMonitor(cmd.Context(), who, orchestrator.MonitorOptions{
				Interval:    time.Duration(intervalSec) * time.Second,
				MaxDuration: time.Duration(maxSec) * time.Second,
				Screen:      true,
			})

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			fmt.Println(faintStyle.Render("Watching the screen; Ctrl-C to stop."))

			for {
				select {
				case p, ok := <-m.Events():
					if !ok {
						return nil
					}
					printPerception(p)
				case <-sig:
					m.Stop()
					return nil
				}
			}
		},
	}

	cmd.Flags().StringVarP(&question, "question", "q", "", "question to ask about the screen")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "watch continuously")
	cmd.Flags().IntVar(&intervalSec, "interval", 0, "seconds between watch iterations")
	cmd.Flags().IntVar(&maxSec, "max-duration", 0, "stop watching after this many seconds (0 = until Ctrl-C)")
	return cmd
}

func momentCmd() *cobra.Command {
	var includeScreen bool

	cmd := &cobra.Command{
		Use:   "moment",
		Short: "Perceive the current moment through every live sense",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, _, err := buildOrchestrator()
			if err != nil {
				return err
			}
			defer orch.Close()
			who := currentPersona()

			m := orch.PerceiveMoment(cmd.Context(), who, includeScreen)

			fmt.Println(titleStyle.Render(who.Tag() + " the moment"))
			if len(m.Organs) == 0 {
				fmt.Println(faintStyle.Render("No sense could contribute."))
			}
			for id, text := range m.Organs {
				fmt.Printf("%s %s\n", readyStyle.Render(id+":"), text)
			}
			for id, reason := range m.Skipped {
				fmt.Println(faintStyle.Render(fmt.Sprintf("%s skipped: %s", id, reason)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&includeScreen, "screen", "s", false, "include the screen in the moment")
	return cmd
}

// ═══════════════════════════════════════════════════════════════════════════════
// CHAT, DELIVERY, HISTORY
// ═══════════════════════════════════════════════════════════════════════════════

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <message...>",
		Short: "Talk with Aura",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, cfg, err := buildOrchestrator()
			if err != nil {
				return err
			}
			defer orch.Close()
			who := currentPersona()

			j, err := journal.Open(cfg.Server.JournalPath)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer j.Close()

			a := agent.New(orch.Provider(), j, cfg.Server.HistoryLimit)
			reply, err := a.Chat(cmd.Context(), strings.Join(args, " "), who)
			if err != nil {
				return err
			}

			fmt.Printf("%s %s\n", personaStyle.Render(who.Tag()), reply)
			return nil
		},
	}
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <app> <question...>",
		Short: "Hand a persona-tagged question to a sibling AI app",
		Long: `Places the tagged question on the clipboard and brings the target app
to the foreground. Targets: claude, gpt, gemini, perplexity, grok.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bridge.ParseApp(args[0])
			if err != nil {
				return err
			}
			who := currentPersona()

			d := bridge.New()
			if err := d.Deliver(cmd.Context(), app, strings.Join(args[1:], " "), who); err != nil {
				return err
			}
			fmt.Printf("Delivered to %s as %s\n", app, who.Tag())
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent conversation events",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			j, err := journal.Open(cfg.Server.JournalPath)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer j.Close()

			events, err := j.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Println(faintStyle.Render("No conversation yet."))
				return nil
			}

			for _, e := range events {
				ts := faintStyle.Render(e.Timestamp.Format("Jan 02 15:04"))
				role := e.Role
				if role == journal.RoleError {
					role = downStyle.Render(role)
				} else {
					role = personaStyle.Render(role)
				}
				fmt.Printf("%s %s  %s\n", ts, role, e.Content)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "number of events to show")
	return cmd
}

// ═══════════════════════════════════════════════════════════════════════════════
// SERVE, STATUS, VERSION
// ═══════════════════════════════════════════════════════════════════════════════

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API facade",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, cfg, err := buildOrchestrator()
			if err != nil {
				return err
			}
			defer orch.Close()

			j, err := journal.Open(cfg.Server.JournalPath)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer j.Close()

			a := agent.New(orch.Provider(), j, cfg.Server.HistoryLimit)
			srv := server.New(cfg, orch, a, bridge.New())

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Printf("Aura listening on %s:%d\n", cfg.Server.Host, cfg.Server.Port)
			return srv.ListenAndServe(ctx)
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show resolved capabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, _, err := buildOrchestrator()
			if err != nil {
				return err
			}
			defer orch.Close()

			st := orch.Status()
			fmt.Println(titleStyle.Render("Aura capabilities"))
			for _, c := range st.Capabilities {
				if c.Ready {
					fmt.Printf("  %s %s\n", readyStyle.Render("●"), c.Name)
				} else {
					fmt.Printf("  %s %s %s\n", downStyle.Render("○"), c.Name, faintStyle.Render(c.Reason))
				}
			}
			fmt.Println(faintStyle.Render(st.Summary))
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Aura v%s\n", version)
		},
	}
}
