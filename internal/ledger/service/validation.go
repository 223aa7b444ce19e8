package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/smallbiznis/bookkeeper/internal/ledger/domain"
)

// validateInput checks the scalar fields, the split invariant for confirmed
// entries and finally that every referenced row is visible to the tenant.
func (s *Service) validateInput(ctx context.Context, orgID snowflake.ID, input ledgerdomain.EntryInput) (ledgerdomain.EntryInput, error) {
	if !input.Amount.IsPositive() || !input.Amount.Equal(input.Amount.Round(2)) {
		return input, ledgerdomain.ErrInvalidAmount
	}
	if !input.Operation.Valid() {
		return input, ledgerdomain.ErrInvalidOperation
	}
	if input.IssueDate.IsZero() {
		return input, ledgerdomain.ErrInvalidIssueDate
	}
	if input.AccountID == 0 {
		return input, ledgerdomain.ErrInvalidAccount
	}
	for _, split := range input.Splits {
		if !split.SplitAmount.IsPositive() || !split.SplitAmount.Equal(split.SplitAmount.Round(2)) {
			return input, ledgerdomain.ErrInvalidSplitAmount
		}
		if split.ChartAccountID == 0 {
			return input, ledgerdomain.ErrInvalidSplitChartAccount
		}
	}

	if input.Confirmed {
		tolerance := s.settings.Get().SplitTolerance
		if !ledgerdomain.SplitsMatch(input.Amount, input.Splits, tolerance) {
			return input, ledgerdomain.ErrSplitsTotalMustMatchAmount
		}
	}

	exists, err := s.repo.AccountExists(ctx, s.db, orgID, input.AccountID)
	if err != nil {
		return input, err
	}
	if !exists {
		return input, ledgerdomain.ErrAccountNotFound
	}

	chartIDs, costCenterIDs := referencedIDs(input.Splits)
	if len(chartIDs) > 0 {
		count, err := s.repo.CountVisibleChartAccounts(ctx, s.db, orgID, chartIDs)
		if err != nil {
			return input, err
		}
		if count != int64(len(chartIDs)) {
			return input, ledgerdomain.ErrChartAccountNotFound
		}
	}
	if len(costCenterIDs) > 0 {
		count, err := s.repo.CountCostCenters(ctx, s.db, orgID, costCenterIDs)
		if err != nil {
			return input, err
		}
		if count != int64(len(costCenterIDs)) {
			return input, ledgerdomain.ErrCostCenterNotFound
		}
	}

	input.IssueDate = ledgerdomain.NormalizeDate(input.IssueDate)
	if input.PaymentDate != nil {
		paymentDate := ledgerdomain.NormalizeDate(*input.PaymentDate)
		input.PaymentDate = &paymentDate
	}
	return input, nil
}

func applyInput(entry *ledgerdomain.LedgerEntry, input ledgerdomain.EntryInput) {
	entry.IssueDate = input.IssueDate
	entry.PaymentDate = input.PaymentDate
	entry.AccountID = input.AccountID
	entry.Amount = input.Amount
	entry.Operation = input.Operation
	entry.History = input.History
	entry.DocumentNumber = input.DocumentNumber
	entry.Confirmed = input.Confirmed
}

func (s *Service) buildSplits(orgID, entryID snowflake.ID, inputs []ledgerdomain.SplitInput, now time.Time) []ledgerdomain.LedgerEntrySplit {
	splits := make([]ledgerdomain.LedgerEntrySplit, 0, len(inputs))
	for i, input := range inputs {
		splits = append(splits, ledgerdomain.LedgerEntrySplit{
			ID:             s.genID.Generate(),
			OrgID:          orgID,
			EntryID:        entryID,
			ChartAccountID: input.ChartAccountID,
			CostCenterID:   input.CostCenterID,
			SplitAmount:    input.SplitAmount,
			// keeps input order stable when splits are read back by created_at
			CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
		})
	}
	return splits
}

func referencedIDs(splits []ledgerdomain.SplitInput) ([]snowflake.ID, []snowflake.ID) {
	seenChart := map[snowflake.ID]struct{}{}
	seenCostCenter := map[snowflake.ID]struct{}{}
	var chartIDs, costCenterIDs []snowflake.ID
	for _, split := range splits {
		if _, ok := seenChart[split.ChartAccountID]; !ok {
			seenChart[split.ChartAccountID] = struct{}{}
			chartIDs = append(chartIDs, split.ChartAccountID)
		}
		if split.CostCenterID == nil {
			continue
		}
		if _, ok := seenCostCenter[*split.CostCenterID]; !ok {
			seenCostCenter[*split.CostCenterID] = struct{}{}
			costCenterIDs = append(costCenterIDs, *split.CostCenterID)
		}
	}
	return chartIDs, costCenterIDs
}
