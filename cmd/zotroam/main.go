package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"zotroam/internal/bridge"
	"zotroam/pkg/config"
	"zotroam/pkg/graph"
	"zotroam/pkg/prompt"
)

var (
	configPath string
	debug      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "zotroam",
	Short: "Bridge Zotero's citation picker to org-roam notes",
	Long: `zotroam speaks Zotero's word-processor integration protocol and turns
citation picks into org-roam actions: an item you already have a note for is
opened in the editor, anything else gets a fresh note rendered from its
bibliographic data.`,
	SilenceUsage: true,
}

// citeCmd runs one citation exchange
var citeCmd = &cobra.Command{
	Use:   "cite",
	Short: "Open Zotero's citation picker and open or create the picked note",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()
		return b.Cite()
	},
}

// openRefCmd jumps from a note back to Zotero
var openRefCmd = &cobra.Command{
	Use:   "open-ref <note.org>",
	Short: "Open a note's linked reference in Zotero",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()
		return b.OpenRef(args[0])
	},
}

// setup loads configuration and assembles the bridge and its collaborators.
func setup() (*bridge.Bridge, func(), error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.GetDefaultConfigPath()
		if err != nil {
			return nil, nil, fmt.Errorf("resolve config path: %w", err)
		}
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, nil, err
	}
	if debug {
		if cfg.Log == nil {
			cfg.Log = config.DefaultLogConfig()
		}
		cfg.Log.Level = "debug"
	}

	log, err := cfg.Log.CreateLogger()
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(log)

	g, err := graph.OpenRoam(graph.RoamOptions{
		Database:         cfg.Roam.Database,
		Directory:        cfg.Roam.Directory,
		FilenameTemplate: cfg.Roam.FilenameTemplate,
		Opener:           cfg.Roam.Opener,
	})
	if err != nil {
		return nil, nil, err
	}

	b := bridge.New(cfg, g, prompt.NewTerminal(os.Stdin, os.Stderr))
	return b, func() { g.Close() }, nil
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.zotroam/config.json)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(citeCmd, openRefCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
