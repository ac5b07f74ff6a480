// Package main runs the interactive Realmforge window.
package main

import (
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"github.com/Garsondee/realmforge/internal/game"
	"github.com/Garsondee/realmforge/internal/logging"
	"github.com/Garsondee/realmforge/internal/sim"
)

var (
	rulesPath string
	faction   string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "realmforge",
	Short: "Realmforge real-time strategy sandbox",
	Long:  `Realmforge opens a window onto a single-player RTS world: gather, build, train and fight.`,
	RunE:  runGame,
}

func init() {
	rootCmd.Flags().StringVar(&rulesPath, "rules", "", "YAML rules file overriding the built-in tables")
	rootCmd.Flags().StringVar(&faction, "faction", string(sim.FactionWestern), "local player's faction")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&logFormat, "log-format", "text", "log format (text or json)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runGame(cmd *cobra.Command, args []string) error {
	log := logging.New(logging.Config{Level: logLevel, Format: logFormat})

	rules := sim.DefaultRules()
	if rulesPath != "" {
		r, err := sim.LoadRules(rulesPath)
		if err != nil {
			return fmt.Errorf("load rules: %w", err)
		}
		rules = r
	}
	if _, ok := rules.Factions[sim.FactionID(faction)]; !ok {
		return fmt.Errorf("unknown faction %q (known: %v)", faction, rules.FactionIDs())
	}

	g, err := game.New(game.Config{
		Rules:   rules,
		Faction: sim.FactionID(faction),
		Logger:  log,
	})
	if err != nil {
		return fmt.Errorf("build world: %w", err)
	}

	ebiten.SetWindowTitle("Realmforge")
	ebiten.SetWindowSize(1600, 900)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(g)
}
