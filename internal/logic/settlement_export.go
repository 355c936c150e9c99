package logic

import (
	"context"
	"fmt"

	"github.com/blues/memberadmin/internal/model"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "结算汇总"
	payoutSheet  = "会员分红"
)

// Export 结算记录导出为 xlsx, 包含汇总和会员明细两个工作表
func (s *SettlementLogic) Export(ctx context.Context, id int64) (*excelize.File, string, error) {
	ctx, span := tracer.Start(ctx, "settlement.Export")
	defer span.End()

	dividend, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, "", fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeSummary(f, dividend); err != nil {
		_ = f.Close()
		return nil, "", err
	}
	if err := writePayouts(f, dividend); err != nil {
		_ = f.Close()
		return nil, "", err
	}

	return f, fmt.Sprintf("dividend_cycle_%d.xlsx", dividend.CycleNumber), nil
}

func writeSummary(f *excelize.File, d *model.DividendModel) error {
	rows := [][]interface{}{
		{"周期", d.CycleNumber},
		{"开始日期", d.StartDate.Format(DateLayout)},
		{"第1天利润", d.Day1Profit.StringFixed(2)},
		{"第2天利润", d.Day2Profit.StringFixed(2)},
		{"第3天利润", d.Day3Profit.StringFixed(2)},
		{"总利润", d.TotalProfit.StringFixed(2)},
		{"总股数", d.TotalShares.String()},
		{"每股分红", d.ValuePerShare.StringFixed(2)},
		{"每半股分红", d.ValuePerHalfShare.StringFixed(2)},
		{"结算人", d.SettledBy},
		{"结算时间", d.SettledAt.Format("2006-01-02 15:04:05")},
		{"通知状态", string(d.NotifyStatus)},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}
	return nil
}

func writePayouts(f *excelize.File, d *model.DividendModel) error {
	if _, err := f.NewSheet(payoutSheet); err != nil {
		return fmt.Errorf("create payout sheet: %w", err)
	}
	header := []interface{}{"会员ID", "会员", "持股", "分红金额"}
	if err := f.SetSheetRow(payoutSheet, "A1", &header); err != nil {
		return fmt.Errorf("write payout header: %w", err)
	}
	for i, p := range d.Payouts {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{p.MemberId, p.MemberName, p.Shares.String(), p.Amount.StringFixed(2)}
		if err := f.SetSheetRow(payoutSheet, cell, &row); err != nil {
			return fmt.Errorf("write payout row %d: %w", i+2, err)
		}
	}
	return nil
}
