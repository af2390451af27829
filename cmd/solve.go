package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	apiroster "rosterd/api/roster"
	"rosterd/config"
	"rosterd/core/events"
	"rosterd/core/roster"
	"rosterd/infra/logger"
	"rosterd/internal/eventbus"
)

var solveCmd = &cobra.Command{
	Use:   "solve <request-file>",
	Short: "Run one solve from a request file and print the result",
	Args:  cobra.ExactArgs(1),
	RunE:  solveOnce,
}

func init() {
	rootCmd.AddCommand(solveCmd)
}

func solveOnce(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(args[0]))
	if ext == ".yaml" || ext == ".yml" {
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse request: %w", err)
		}
		if data, err = json.Marshal(doc); err != nil {
			return fmt.Errorf("parse request: %w", err)
		}
	}
	req, err := apiroster.ParseRequest(data)
	if err != nil {
		return fmt.Errorf("parse request: %w", err)
	}

	logg := logger.New("solve-command")
	store, err := cfg.Audit.NewStore()
	if err != nil {
		return fmt.Errorf("audit store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logg.Errorf("store close: %v", err)
		}
	}()
	bus := eventbus.New[events.SolveEvent]()
	defer bus.Close()

	engine, err := roster.New(cfg.Engine, bus, store, logg)
	if err != nil {
		return err
	}
	res := engine.Solve(ctx, req)

	if err := apiroster.EncodeResult(os.Stdout, res); err != nil {
		return err
	}
	if res.Outcome != roster.OutcomeScheduled {
		return fmt.Errorf("solve finished with outcome %s", res.Outcome)
	}
	return nil
}
