package user

import (
	"context"
	"fmt"
	"log/slog"

	"kcal/internal/kv"
)

const (
	DefaultUsername       = "User"
	DefaultDailyLimitKcal = 2000
)

type Profile struct {
	UserID         string  `json:"userId"`
	Username       string  `json:"username"`
	DailyLimitKcal float64 `json:"dailyLimitKcal"`
}

// UpdateProfile names the mutable profile fields. Nil fields are left alone.
type UpdateProfile struct {
	Username       *string  `json:"username"`
	DailyLimitKcal *float64 `json:"dailyLimitKcal"`
}

// Notifier is told when a user's daily limit changes.
type Notifier interface {
	LimitChanged(ctx context.Context, userID string) error
}

type Service struct {
	Store    kv.Store
	Notifier Notifier // optional
}

func Key(userID string) string { return "user:" + userID }

func defaultProfile(userID string) Profile {
	return Profile{UserID: userID, Username: DefaultUsername, DailyLimitKcal: DefaultDailyLimitKcal}
}

func (s *Service) GetOrCreate(ctx context.Context, userID string) (Profile, error) {
	p, err := kv.UpdateJSON(ctx, s.Store, Key(userID), func(cur Profile, found bool) (Profile, bool, error) {
		if found {
			return cur, false, nil
		}
		return defaultProfile(userID), true, nil
	})
	if err != nil {
		return Profile{}, fmt.Errorf("get user %s: %w", userID, err)
	}
	return p, nil
}

// Update merges in onto the stored profile, creating the default one first if needed.
// No range checks are applied to DailyLimitKcal.
func (s *Service) Update(ctx context.Context, userID string, in UpdateProfile) (Profile, error) {
	var limitChanged bool

	p, err := kv.UpdateJSON(ctx, s.Store, Key(userID), func(cur Profile, found bool) (Profile, bool, error) {
		if !found {
			cur = defaultProfile(userID)
		}
		if in.Username != nil {
			cur.Username = *in.Username
		}
		if in.DailyLimitKcal != nil {
			limitChanged = cur.DailyLimitKcal != *in.DailyLimitKcal
			cur.DailyLimitKcal = *in.DailyLimitKcal
		}
		cur.UserID = userID
		return cur, true, nil
	})
	if err != nil {
		return Profile{}, fmt.Errorf("update user %s: %w", userID, err)
	}

	if limitChanged && s.Notifier != nil {
		if err := s.Notifier.LimitChanged(ctx, userID); err != nil {
			slog.WarnContext(ctx, "limit change notification failed",
				slog.String("user_id", userID),
				slog.Any("error", err),
			)
		}
	}
	return p, nil
}
