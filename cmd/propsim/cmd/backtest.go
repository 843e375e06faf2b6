package cmd

import (
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/propsim/backtest"
	"github.com/rustyeddy/propsim/config"
	"github.com/rustyeddy/propsim/market"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run one backtest over bar and indicator CSV data",
	Long: `Backtest replays a bar series through the entry rules and risk limits
and prints the performance report.

Data comes from one bar CSV (time,open,high,low,close,volume) plus one
CSV per indicator series (time,value): ema_fast, ema_slow, macd,
macd_signal, rsi and atr, depending on the rules in play.

Example:
  propsim backtest -c run.yaml
  propsim backtest --bars data/xauusd_h1.csv --series atr=data/atr.csv \
      --series ema_fast=data/ef.csv --series ema_slow=data/es.csv \
      --rules EMA_CROSS --equity 10000`,
	RunE: runBacktest,
}

var (
	btBars   string
	btSeries map[string]string
	btEquity float64
	btRules  []string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btBars, "bars", "b", "", "path to bar CSV")
	backtestCmd.Flags().StringToStringVar(&btSeries, "series", nil, "indicator series as name=path, repeatable")
	backtestCmd.Flags().Float64VarP(&btEquity, "equity", "e", 10_000, "starting account equity")
	backtestCmd.Flags().StringSliceVarP(&btRules, "rules", "r", nil, "entry rules (default all)")
}

// loadConfig merges the config file, if any, with command-line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.LoadFromFile(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if btBars != "" {
		cfg.Data.BarsFile = btBars
	}
	if len(btSeries) > 0 {
		if cfg.Data.Series == nil {
			cfg.Data.Series = map[string]string{}
		}
		for name, path := range btSeries {
			cfg.Data.Series[name] = path
		}
	}
	if cmd.Flags().Changed("equity") {
		cfg.Account.Equity = btEquity
	}
	if len(btRules) > 0 {
		cfg.Rules = btRules
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadData reads the configured bar and indicator files.
func loadData(cfg *config.Config) (market.Series, market.Feed, error) {
	bars, err := market.LoadBarsCSV(cfg.Data.BarsFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load bars: %w", err)
	}

	feed := market.Feed{}
	for name, path := range cfg.Data.Series {
		vals, err := market.LoadSeriesCSV(path)
		if err != nil {
			return nil, nil, fmt.Errorf("load series %s: %w", name, err)
		}
		feed[name] = vals
	}
	if err := market.Align(bars, feed); err != nil {
		return nil, nil, err
	}
	return bars, feed, nil
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	bars, feed, err := loadData(cfg)
	if err != nil {
		return err
	}
	rules, err := cfg.ParsedRules()
	if err != nil {
		return err
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	jrn, err := cfg.OpenJournal()
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer jrn.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := backtest.Runner{
		Bars:    bars,
		Feed:    feed,
		Rules:   rules,
		Params:  cfg.Params,
		Equity:  cfg.Account.Equity,
		Logger:  log,
		Journal: jrn,
	}

	fmt.Printf("Running backtest\n")
	fmt.Printf("  Bars: %s (%d bars)\n", cfg.Data.BarsFile, len(bars))
	fmt.Printf("  Equity: $%.2f\n\n", cfg.Account.Equity)

	res, err := r.Run(ctx)
	if err != nil {
		return err
	}

	printResult(res)
	return nil
}

func printResult(res backtest.Result) {
	rep := res.Report

	fmt.Printf("Backtest Complete!\n")
	fmt.Printf("  Trades: %d (%d wins, %d losses)\n", rep.Trades, rep.Wins, rep.Losses)
	fmt.Printf("  Final Equity: $%.2f\n", res.FinalEquity())
	fmt.Printf("  Total Return: %.2f%%\n", rep.TotalReturn*100)
	fmt.Printf("  Win Rate: %.1f%%\n", rep.WinRate*100)
	fmt.Printf("  Profit Factor: %s\n", ratio(rep.ProfitFactor))
	fmt.Printf("  Max Drawdown: %.2f%%\n", rep.MaxDrawdown*100)
	fmt.Printf("  Sharpe: %.2f\n", rep.Sharpe)
	fmt.Printf("  Sortino: %s\n", ratio(rep.Sortino))
	fmt.Printf("  VaR 95%%: %.4f\n", rep.VaR95)

	if len(res.Denials) > 0 {
		fmt.Printf("  Denied entries:\n")
		reasons := make([]string, 0, len(res.Denials))
		for reason := range res.Denials {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			fmt.Printf("    %s: %d\n", reason, res.Denials[reason])
		}
	}
}

func ratio(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", v)
}
