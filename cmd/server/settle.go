package main

import (
	"fmt"
	"time"

	"github.com/blues/memberadmin/internal/database"
	"github.com/blues/memberadmin/internal/logic"
	"github.com/blues/memberadmin/internal/settlement"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func settleCmd() *cobra.Command {
	var (
		shares string
		cycle  int
	)
	cmd := &cobra.Command{
		Use:   "settle [day1 day2 day3]",
		Short: "Calculate a dividend cycle, or settle a recorded one with --cycle",
		Example: `  server settle 42800 -50500 196300 --shares 10
  server settle --cycle 4`,
		Args: func(cmd *cobra.Command, args []string) error {
			if cycle > 0 {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(settlement.DaysPerCycle)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if cycle > 0 {
				return settleRecorded(cmd, cycle)
			}

			var days [settlement.DaysPerCycle]decimal.Decimal
			for i, arg := range args {
				v, err := decimal.NewFromString(arg)
				if err != nil {
					return fmt.Errorf("day %d: %w", i+1, err)
				}
				days[i] = v
			}
			if shares == "" {
				shares = cfg.Settlement.TotalShares
			}
			totalShares, err := decimal.NewFromString(shares)
			if err != nil {
				return fmt.Errorf("shares: %w", err)
			}

			result, err := settlement.CalculateCycle(days, totalShares)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "total profit     %s\n", settlement.FormatAmount(result.TotalProfit))
			fmt.Fprintf(out, "total shares     %s\n", result.TotalShares)
			fmt.Fprintf(out, "per share        %s\n", settlement.FormatAmount(result.ValuePerShare))
			fmt.Fprintf(out, "per half share   %s\n", settlement.FormatAmount(result.ValuePerHalfShare))
			return nil
		},
	}
	cmd.Flags().StringVar(&shares, "shares", "", "total shares (default: settlement.total_shares)")
	cmd.Flags().IntVar(&cycle, "cycle", 0, "settle the recorded ledgers of this cycle")
	return cmd
}

// settleRecorded 结算已录入的周期, 不发送通知
func settleRecorded(cmd *cobra.Command, cycle int) error {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	defaultShares, err := decimal.NewFromString(cfg.Settlement.TotalShares)
	if err != nil {
		return fmt.Errorf("settlement.total_shares: %w", err)
	}
	settlements := logic.NewSettlementLogic(db, logic.SettlementOptions{
		DefaultShares: defaultShares,
		PeriodTTL:     time.Duration(cfg.Redis.PeriodTTL) * time.Second,
	})

	dividend, err := settlements.Settle(cmd.Context(), logic.SettleRequest{CycleNumber: cycle, SettledBy: "cli"})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "cycle %d settled as dividend #%d\n", dividend.CycleNumber, dividend.Id)
	fmt.Fprintf(out, "total profit %s, per share %s\n",
		settlement.FormatAmount(dividend.TotalProfit), settlement.FormatAmount(dividend.ValuePerShare))
	for _, p := range dividend.Payouts {
		fmt.Fprintf(out, "  %-20s %6s shares  %s\n", p.MemberName, p.Shares, settlement.FormatAmount(p.Amount))
	}
	return nil
}
