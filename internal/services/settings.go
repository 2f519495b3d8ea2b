package services

import (
	"context"
	"fmt"

	"walletwhisper/internal/amqp"
	"walletwhisper/internal/core"
	"walletwhisper/internal/log"
)

const (
	entitySettings = "settings"
	entityLedger   = "ledger"
)

// SettingsService owns the settings page, including the account actions
// that reach into the ledger and the balance.
type SettingsService struct {
	*base
}

func (s *SettingsService) Get(ctx context.Context) (core.Settings, error) {
	st, err := s.store.Settings(ctx)
	if err != nil {
		return core.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return st, nil
}

// update loads settings, applies fn and saves the result. fn may refuse
// the change with an error.
func (s *SettingsService) update(ctx context.Context, fn func(*core.Settings) (core.Notification, error)) (core.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.store.Settings(ctx)
	if err != nil {
		return s.fail(ctx, log.ComponentSettings, log.OpUpdate, entitySettings, fmt.Errorf("load settings: %w", err))
	}
	n, err := fn(&st)
	if err != nil {
		return s.fail(ctx, log.ComponentSettings, log.OpUpdate, entitySettings, err)
	}
	if err := s.store.SaveSettings(ctx, st); err != nil {
		return s.fail(ctx, log.ComponentSettings, log.OpUpdate, entitySettings, fmt.Errorf("save settings: %w", err))
	}
	return s.done(ctx, log.ComponentSettings, log.OpUpdate, entitySettings, 0, n), nil
}

func (s *SettingsService) UpdateProfile(ctx context.Context, p core.Profile) (core.Notification, error) {
	return s.update(ctx, func(st *core.Settings) (core.Notification, error) {
		profile, err := p.Validate()
		if err != nil {
			return core.Notification{}, err
		}
		st.Profile = profile
		return core.Notify("Profile Updated", "Your profile has been successfully updated"), nil
	})
}

func (s *SettingsService) SetCurrency(ctx context.Context, code string) (core.Notification, error) {
	return s.update(ctx, func(st *core.Settings) (core.Notification, error) {
		c, err := core.ParseCurrency(code)
		if err != nil {
			return core.Notification{}, err
		}
		st.Currency = c
		return core.Notify("Currency Updated", "Amounts now show in "+c.Label()), nil
	})
}

func (s *SettingsService) SetDarkMode(ctx context.Context, dark bool) (core.Notification, error) {
	return s.update(ctx, func(st *core.Settings) (core.Notification, error) {
		st.Theme = core.ThemeLight
		desc := "Light mode is on"
		if dark {
			st.Theme = core.ThemeDark
			desc = "Dark mode is on"
		}
		return core.Notify("Theme Updated", desc), nil
	})
}

// SetPasscode only stores the preference.
func (s *SettingsService) SetPasscode(ctx context.Context, enabled bool) (core.Notification, error) {
	return s.update(ctx, func(st *core.Settings) (core.Notification, error) {
		st.PasscodeEnabled = enabled
		if enabled {
			return core.Notify("Passcode Enabled", "A passcode will be asked when the app opens"), nil
		}
		return core.Notify("Passcode Disabled", "The app opens without a passcode"), nil
	})
}

// Export publishes the whole ledger for the worker to write to the sheet.
func (s *SettingsService) Export(ctx context.Context) (core.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.store.ListTransactions(ctx)
	if err != nil {
		return s.fail(ctx, log.ComponentSettings, log.OpExport, entityLedger, fmt.Errorf("list transactions: %w", err))
	}
	s.publish(ctx, log.ComponentSettings, amqp.NewLedgerExport(list))

	n := core.Notify("Export Started", "Your data export will be ready shortly")
	return s.done(ctx, log.ComponentSettings, log.OpExport, entityLedger, 0, n), nil
}

func (s *SettingsService) ResetBalance(ctx context.Context) (core.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SetBalance(ctx, core.Money{}); err != nil {
		return s.fail(ctx, log.ComponentSettings, log.OpUpdate, entityBalance, fmt.Errorf("reset balance: %w", err))
	}
	n := core.Notify("Balance Reset", "Your balance has been reset to "+core.FormatMoney(core.Money{}, s.currency(ctx)))
	return s.done(ctx, log.ComponentSettings, log.OpUpdate, entityBalance, 0, n), nil
}

func (s *SettingsService) ClearTransactions(ctx context.Context) (core.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.ClearTransactions(ctx); err != nil {
		return s.fail(ctx, log.ComponentSettings, log.OpClear, entityLedger, fmt.Errorf("clear transactions: %w", err))
	}
	n := core.Notify("Transactions Cleared", "All transaction history has been removed")
	return s.done(ctx, log.ComponentSettings, log.OpClear, entityLedger, 0, n), nil
}
