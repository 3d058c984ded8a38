package types

// ProjectState classifies a Project's relationship to its persistent
// storage. It is computed once on Load and mutated only by explicit
// settings-changed notifications and a successful refresh.
type ProjectState int

const (
	ProjectNotLoaded ProjectState = iota
	ProjectEmpty
	ProjectLoaded
	ProjectOutdated
	ProjectOutversioned
	ProjectSettingsUpdated
	ProjectNeedsMigration
)

func (s ProjectState) String() string {
	switch s {
	case ProjectNotLoaded:
		return "NotLoaded"
	case ProjectEmpty:
		return "Empty"
	case ProjectLoaded:
		return "Loaded"
	case ProjectOutdated:
		return "Outdated"
	case ProjectOutversioned:
		return "Outversioned"
	case ProjectSettingsUpdated:
		return "SettingsUpdated"
	case ProjectNeedsMigration:
		return "NeedsMigration"
	default:
		return "Unknown"
	}
}

// RequiresFullRefresh reports whether this state forces a full reindex,
// and the confirmation question that should be asked before proceeding
// (empty if none is needed), per original_source/Project.cpp::refresh.
func (s ProjectState) RequiresFullRefresh() (needsFullRefresh bool, question string) {
	switch s {
	case ProjectEmpty:
		return true, ""
	case ProjectLoaded:
		return false, ""
	case ProjectOutdated:
		return true, "The project file was changed after the last indexing. " +
			"The project needs to get fully reindexed to reflect the current " +
			"project state. Do you want to reindex the project?"
	case ProjectOutversioned:
		return true, "This project was indexed with a different version of " +
			"trailindex. It needs to be fully reindexed to be used with this " +
			"version. Do you want to reindex the project?"
	case ProjectSettingsUpdated:
		return true, "Some settings were changed, the project needs to be " +
			"fully reindexed. Do you want to reindex the project?"
	case ProjectNeedsMigration:
		return true, "This project was created with a different version of " +
			"trailindex. The project file needs to get updated and the " +
			"project fully reindexed. Do you want to update the project file " +
			"and reindex the project?"
	default:
		return false, ""
	}
}
