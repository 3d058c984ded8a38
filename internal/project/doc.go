// Package project implements the project controller from spec.md §4.J:
// Load, Refresh and SetStateSettingsUpdated, plus the supplemental
// collaborators recovered from original_source/Project.cpp — SourceGroup,
// Settings, SettingsWatcher and the Authorizer trial-mode hook.
package project
