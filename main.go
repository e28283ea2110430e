// TankArena 入口：双人同步回合制坦克对战服务（HTTP + WebSocket）
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "tankarena",
	Short: "TankArena two-player turn-based tank server",
	Long: `TankArena hosts two-player simultaneous-turn tank duels over WebSocket.
Both players submit one action per turn; the turn resolves once both are in.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config (default ./configs/tankarena.yaml, then built-in)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(checkCmd)
}
