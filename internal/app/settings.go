package app

import (
	"context"

	"kyri56xcaesar/teamops/internal/appstate"
)

func defaultSettings() appstate.AppSettings {
	return appstate.AppSettings{
		ID:      appstate.SettingsDocID,
		AppName: "TeamOps",
		LogoURL: "",
		WorkLogTasks: []string{
			"Development", "Code Review", "Testing", "Documentation",
			"Meetings", "Support", "Deployment",
		},
		InternalTeams: []string{"Engineering", "QA", "Operations"},
		Holidays:      []string{},
		LeaveTypes: []string{
			"Annual Leave", "Sick Leave", "Casual Leave", "Unpaid Leave",
		},
		MaxTeamSize:     25,
		DefaultPriority: "Medium",
		DefaultTheme:    "light",
		DefaultColors:   memberPalette,
		WelcomeMessage:  "Welcome back",
	}
}

// fillSettingsDefaults fills every unset field from the default table and
// migrates legacy field shapes. Reports whether anything changed so the
// caller can persist the repaired document back.
func fillSettingsDefaults(s appstate.AppSettings, legacy map[string]any) (appstate.AppSettings, bool) {
	def := defaultSettings()
	changed := false

	// older documents stored the work-log taxonomy under "taskOptions"
	if len(s.WorkLogTasks) == 0 {
		if raw, ok := legacy["taskOptions"].([]any); ok {
			for _, v := range raw {
				if task, ok := v.(string); ok {
					s.WorkLogTasks = append(s.WorkLogTasks, task)
				}
			}
			changed = true
		}
	}

	if s.ID == "" {
		s.ID = def.ID
		changed = true
	}
	if s.AppName == "" {
		s.AppName = def.AppName
		changed = true
	}
	if len(s.WorkLogTasks) == 0 {
		s.WorkLogTasks = def.WorkLogTasks
		changed = true
	}
	if len(s.InternalTeams) == 0 {
		s.InternalTeams = def.InternalTeams
		changed = true
	}
	if s.Holidays == nil {
		s.Holidays = def.Holidays
		changed = true
	}
	if len(s.LeaveTypes) == 0 {
		s.LeaveTypes = def.LeaveTypes
		changed = true
	}
	if s.MaxTeamSize == 0 {
		s.MaxTeamSize = def.MaxTeamSize
		changed = true
	}
	if s.DefaultPriority == "" {
		s.DefaultPriority = def.DefaultPriority
		changed = true
	}
	if s.DefaultTheme == "" {
		s.DefaultTheme = def.DefaultTheme
		changed = true
	}
	if len(s.DefaultColors) == 0 {
		s.DefaultColors = def.DefaultColors
		changed = true
	}
	if s.WelcomeMessage == "" {
		s.WelcomeMessage = def.WelcomeMessage
		changed = true
	}

	return s, changed
}

// Settings returns the current app settings, defaulted if none were ever
// stored.
func (c *Controller) Settings() appstate.AppSettings {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.store.Settings(); ok {
		return s
	}
	return defaultSettings()
}

// UpdateSettings replaces the well-known settings document.
func (c *Controller) UpdateSettings(ctx context.Context, s appstate.AppSettings) (appstate.AppSettings, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s.ID = appstate.SettingsDocID
	s, _ = fillSettingsDefaults(s, nil)

	fields, err := appstate.DocOf(s)
	if err != nil {
		return appstate.AppSettings{}, &WriteError{Entity: "settings", Op: "update", Err: err}
	}
	if err := c.gw.SetDocument(ctx, appstate.ColSettings, appstate.SettingsDocID, fields); err != nil {
		return appstate.AppSettings{}, &WriteError{Entity: "settings", Op: "update", Err: err}
	}

	c.store.SetSettings(s)
	c.rebuild()
	return s, nil
}
