package meal

import (
	"context"
	"fmt"

	"kcal/internal/kv"
)

// Daily returns the stored summary for the date, or a zero summary. It never writes.
func (l *Ledger) Daily(ctx context.Context, userID, date string) (Summary, error) {
	sum, found, err := kv.GetJSON[Summary](ctx, l.Store, SummaryKey(userID, date))
	if err != nil {
		return Summary{}, err
	}
	if !found {
		return Summary{
			SummaryID:   SummaryID(userID, date),
			UserID:      userID,
			SummaryDate: date,
		}, nil
	}
	return sum, nil
}

// Monthly returns every stored daily summary of the month. Days without a
// stored summary are absent, not zero-filled.
func (l *Ledger) Monthly(ctx context.Context, userID string, year, month int) ([]Summary, error) {
	if err := validateUser(userID); err != nil {
		return nil, err
	}
	if year < 1 || year > 9999 || month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month %d-%d", ErrInvalidMeal, year, month)
	}

	prefix := fmt.Sprintf("%s%04d-%02d", summaryPrefix(userID), year, month)
	return kv.ScanJSON[Summary](ctx, l.Store, prefix)
}

// RefreshLimitFlags re-evaluates ExceedsLimit on every stored summary of the
// user against the current limit. Totals are left as recorded. It returns
// the number of summaries rewritten.
func (l *Ledger) RefreshLimitFlags(ctx context.Context, userID string) (int, error) {
	profile, err := l.Users.GetOrCreate(ctx, userID)
	if err != nil {
		return 0, err
	}

	entries, err := l.Store.Scan(ctx, summaryPrefix(userID))
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, e := range entries {
		_, err := kv.UpdateJSON(ctx, l.Store, e.Key, func(sum Summary, found bool) (Summary, bool, error) {
			if !found {
				return sum, false, nil
			}
			exceeds := sum.TotalKcal > profile.DailyLimitKcal
			if exceeds == sum.ExceedsLimit {
				return sum, false, nil
			}
			sum.ExceedsLimit = exceeds
			changed++
			return sum, true, nil
		})
		if err != nil {
			return changed, fmt.Errorf("refresh %s: %w", e.Key, err)
		}
	}
	return changed, nil
}
