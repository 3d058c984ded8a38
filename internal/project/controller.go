package project

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nullptr-dev/trailindex/internal/blackboard"
	"github.com/nullptr-dev/trailindex/internal/delta"
	"github.com/nullptr-dev/trailindex/internal/indexing"
	"github.com/nullptr-dev/trailindex/internal/metrics"
	"github.com/nullptr-dev/trailindex/internal/scheduling"
	"github.com/nullptr-dev/trailindex/internal/storage"
	"github.com/nullptr-dev/trailindex/pkg/events"
	"github.com/nullptr-dev/trailindex/pkg/types"
)

// ErrRefreshDeferred is returned by Refresh when an Authorizer refuses
// the request; a retry is scheduled automatically once the Authorizer
// reports authorized, so this is informational, not a failure the
// caller needs to act on.
var ErrRefreshDeferred = errors.New("trailindex: refresh deferred pending authorization")

// Config holds the tunables a Controller needs beyond its required
// collaborators, mirroring the teacher's indexer.Config shape.
type Config struct {
	ThreadCount         int // number of concurrent TaskBuildIndex workers; default 1
	CancelOnFatalErrors bool
	PreprocessorOnly    bool
	Sink                events.Sink      // default events.NopSink{}
	Authorizer          Authorizer       // default: always authorized
	Metrics             *metrics.Metrics // nil disables metric recording
}

func (c *Config) withDefaults() Config {
	out := Config{ThreadCount: 1}
	if c != nil {
		out = *c
	}
	if out.ThreadCount < 1 {
		out.ThreadCount = 1
	}
	if out.Sink == nil {
		out.Sink = events.NopSink{}
	}
	if out.Authorizer == nil {
		out.Authorizer = alwaysAuthorized{}
	}
	return out
}

// Controller is the project controller from spec.md §4.J: Load,
// Refresh, SetStateSettingsUpdated.
type Controller struct {
	mu sync.Mutex

	persistent   storage.PersistentStorage
	fs           types.FileSystem
	scheduler    *scheduling.Scheduler
	parser       indexing.Parser
	proxy        *storage.AccessProxy
	sourceGroups []*SourceGroup
	settingsPath string

	cfg Config

	state        types.ProjectState
	settingsText string
}

// NewController builds a Controller over the given collaborators.
// sourceGroups must cover every file the caller wants indexed;
// settingsPath is the on-disk project settings file Load/Refresh
// compare against the text snapshot kept in persistent storage.
func NewController(
	persistent storage.PersistentStorage,
	fs types.FileSystem,
	scheduler *scheduling.Scheduler,
	parser indexing.Parser,
	sourceGroups []*SourceGroup,
	settingsPath string,
	cfg *Config,
) *Controller {
	return &Controller{
		persistent:   persistent,
		fs:           fs,
		scheduler:    scheduler,
		parser:       parser,
		proxy:        storage.NewAccessProxy(),
		sourceGroups: sourceGroups,
		settingsPath: settingsPath,
		cfg:          cfg.withDefaults(),
		state:        types.ProjectNotLoaded,
	}
}

// State returns the controller's current ProjectState.
func (c *Controller) State() types.ProjectState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// AccessProxy returns the read-side handle onto the controller's
// PersistentStorage, safe to hand to readers that must not race an
// in-flight refresh.
func (c *Controller) AccessProxy() *storage.AccessProxy {
	return c.proxy
}

// SetStateSettingsUpdated flags the project as needing a full refresh
// because its on-disk settings changed, normally called from a
// SettingsWatcher callback (spec.md §5.J supplemental feature). It is a
// no-op before the first successful Load.
func (c *Controller) SetStateSettingsUpdated() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != types.ProjectNotLoaded {
		c.state = types.ProjectSettingsUpdated
	}
}

// Load classifies ProjectState from the database and the on-disk
// settings file: an incompatible or empty database wins outright, a
// settings file written by an older settings format is
// ProjectNeedsMigration, and otherwise a text mismatch against the
// snapshot stored in PersistentStorage is ProjectOutdated.
// ProjectSettingsUpdated is never set here — it is reserved for
// SetStateSettingsUpdated's explicit-notification path, per spec.md
// §3 and §4.J. If loadable, storage is entered ReadMode and caches are
// built.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	currentText := ""
	var parsedSettings *Settings
	if s, text, err := LoadSettings(c.settingsPath); err == nil {
		parsedSettings = s
		currentText = text
	}
	c.settingsText = currentText

	switch {
	case c.persistent.IsIncompatible():
		c.state = types.ProjectOutversioned
	case c.persistent.IsEmpty():
		c.state = types.ProjectEmpty
	case parsedSettings != nil && parsedSettings.NeedsMigration():
		c.state = types.ProjectNeedsMigration
	default:
		storedText, err := c.persistent.GetProjectSettingsText(ctx)
		if err != nil {
			return fmt.Errorf("load project settings text: %w", err)
		}
		if storedText != currentText {
			c.state = types.ProjectOutdated
		} else {
			c.state = types.ProjectLoaded
		}
	}

	if err := c.persistent.SetMode(ctx, storage.ModeRead); err != nil {
		return fmt.Errorf("set read mode: %w", err)
	}
	if err := c.persistent.BuildCaches(ctx); err != nil {
		return fmt.Errorf("build caches: %w", err)
	}
	c.proxy.SetSubject(c.persistent)
	return nil
}

// Refresh runs a delta-planned (or full, if force or the current state
// requires it) reindex, blocking until the scheduled run reaches a
// terminal state. It asks the Sink for confirmation before a
// state-forced full refresh, per spec.md §4.J and the per-state
// confirmation questions recovered in §5.J.
func (c *Controller) Refresh(ctx context.Context, force bool) error {
	c.mu.Lock()
	state := c.state
	cfg := c.cfg
	settingsText := c.settingsText
	c.mu.Unlock()

	if !cfg.Authorizer.IsAuthorized() {
		if cfg.Metrics != nil {
			cfg.Metrics.RefreshesTotal.WithLabelValues(metrics.OutcomeDeferred).Inc()
		}
		cfg.Authorizer.NotifyWhenAuthorized(func() {
			_ = c.Refresh(ctx, force)
		})
		return ErrRefreshDeferred
	}

	needsFull, question := state.RequiresFullRefresh()
	if needsFull && question != "" {
		if choice := cfg.Sink.Confirm(question, []string{"Yes", "No"}); choice != 0 {
			return nil
		}
	}
	fullRefresh := force || needsFull

	if state == types.ProjectNeedsMigration {
		parsed, _, err := LoadSettings(c.settingsPath)
		if err != nil {
			return fmt.Errorf("load settings for migration: %w", err)
		}
		_, migratedText, err := MigrateSettings(c.settingsPath, parsed)
		if err != nil {
			return fmt.Errorf("migrate settings: %w", err)
		}
		settingsText = migratedText
	}

	var sourcePaths []types.FilePath
	for _, g := range c.sourceGroups {
		paths, err := g.FetchSourceFilePaths()
		if err != nil {
			return fmt.Errorf("fetch source paths for group %q: %w", g.Name, err)
		}
		sourcePaths = append(sourcePaths, paths...)
	}

	persisted, err := c.persistent.GetInfoOnAllFiles(ctx)
	if err != nil {
		return fmt.Errorf("load persisted file info: %w", err)
	}

	deltaGroups := make([]delta.SourceGroup, len(c.sourceGroups))
	for i, g := range c.sourceGroups {
		deltaGroups[i] = g
	}

	plan, plannerErr := delta.Compute(sourcePaths, persisted, c.fs, persistentGraph{c.persistent}, deltaGroups, fullRefresh)
	if plannerErr != nil {
		cfg.Sink.Status(plannerErr.Error(), true, false)
	}

	if len(plan.FilesToClean) == 0 && len(plan.FilesToIndex) == 0 {
		return nil
	}

	if fullRefresh {
		if err := c.persistent.Clear(ctx); err != nil {
			return fmt.Errorf("clear storage for full refresh: %w", err)
		}
	}

	if err := c.persistent.SetProjectSettingsText(ctx, settingsText); err != nil {
		return fmt.Errorf("save project settings text: %w", err)
	}

	cmdList := indexing.NewCommandList()
	for _, g := range c.sourceGroups {
		groupFiles := filesUnderRoot(plan.FilesToIndex, g.Root)
		for _, cmd := range g.GetIndexerCommands(groupFiles, cfg.CancelOnFatalErrors, cfg.PreprocessorOnly) {
			cmdList.Push(cmd)
		}
	}
	if cfg.ThreadCount > 1 {
		cmdList.Shuffle()
	}

	provider := storage.NewStorageProvider()
	fileReg := indexing.NewFileRegister()

	root := c.buildIndex(plan, cmdList, provider, fileReg, cfg)

	run := c.scheduler.Dispatch(root)

	var stopMetrics chan struct{}
	if cfg.Metrics != nil {
		stopMetrics = make(chan struct{})
		go pollIndexerCount(run.Blackboard, cfg.Metrics, stopMetrics)
	}

	result := <-run.Done
	if stopMetrics != nil {
		close(stopMetrics)
	}

	c.mu.Lock()
	if result == types.StateSuccess {
		c.state = types.ProjectLoaded
		for _, g := range c.sourceGroups {
			g.LastFingerprint = g.CompilerArgsFingerprint()
		}
	}
	c.mu.Unlock()

	if cfg.Metrics != nil {
		cfg.Metrics.Observe(
			blackboard.MustGet[int](run.Blackboard, "source_file_count"),
			blackboard.MustGet[int](run.Blackboard, "indexed_source_file_count"),
			outcomeLabel(result),
		)
	}

	cfg.Sink.Refresh()
	return nil
}

// pollIndexerCount samples indexer_count off a run's live blackboard so
// Metrics.IndexerCount reflects worker concurrency while a refresh is
// in flight, not just its terminal value.
func pollIndexerCount(bb *blackboard.Blackboard, m *metrics.Metrics, stop <-chan struct{}) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.IndexerCount.Set(float64(blackboard.MustGet[int](bb, "indexer_count")))
		}
	}
}

func outcomeLabel(state types.TaskState) string {
	switch state {
	case types.StateSuccess:
		return metrics.OutcomeSuccess
	case types.StateCanceled:
		return metrics.OutcomeCanceled
	default:
		return metrics.OutcomeFailure
	}
}

// buildIndex assembles the refresh root task tree, recovered from
// original_source/Project.cpp::buildIndex. The worker, merger and
// injector branches of the Parallel are each wrapped in a TaskDrainLoop
// rather than guarded by ReturnSuccessWhile(indexer_count) barriers.
func (c *Controller) buildIndex(
	plan delta.Plan,
	cmdList *indexing.CommandList,
	provider *storage.StorageProvider,
	fileReg *indexing.FileRegister,
	cfg Config,
) scheduling.Task {
	seq := scheduling.NewSequence(
		indexing.NewTaskClearErrorCount(cfg.Sink),
		scheduling.NewSetValue("source_file_count", len(plan.FilesToIndex)),
		scheduling.NewSetValue("indexed_source_file_count", 0),
		scheduling.NewSetValue("indexer_count", 0),
	)

	if len(plan.FilesToClean) > 0 {
		seq.Add(indexing.NewTaskCleanStorage(c.persistent, plan.FilesToClean))
	}

	parallel := scheduling.NewParallel()
	for i := 0; i < cfg.ThreadCount; i++ {
		worker := indexing.NewTaskBuildIndex(cmdList, provider, fileReg, c.parser)
		parallel.Add(indexing.NewTaskDrainLoop(cmdList, worker))
	}
	parallel.Add(indexing.NewTaskDrainLoop(cmdList, indexing.NewTaskMergeStorages(provider)))
	parallel.Add(indexing.NewTaskDrainLoopUntilEmpty(cmdList, provider, indexing.NewTaskInjectStorage(provider, c.persistent)))

	seq.Add(indexing.NewTaskParseWrapper(c.persistent, parallel))
	seq.Add(indexing.NewTaskShowStatusDialog(cfg.Sink, "Finish Indexing", "Saving"))
	// The injector branch above only reports done once provider is
	// empty, so this is a defensive second pass rather than the primary
	// drain: Selector falls through to Succeed so a truly empty queue
	// (the normal case) never fails the enclosing Sequence.
	seq.Add(scheduling.NewSelector(
		scheduling.NewRepeat(scheduling.WhileSuccess, indexing.NewTaskInjectStorage(provider, c.persistent)),
		scheduling.NewSucceed(),
	))
	seq.Add(indexing.NewTaskFinishParsing(c.persistent, c.proxy, cfg.Sink))

	return seq
}

func filesUnderRoot(paths []types.FilePath, root string) []types.FilePath {
	var out []types.FilePath
	for _, p := range paths {
		if strings.HasPrefix(p.String(), root) {
			out = append(out, p)
		}
	}
	return out
}

// persistentGraph adapts storage.PersistentStorage to delta.ReferenceGraph,
// supplying a background context for the planner's pure, synchronous view
// of the reference graph.
type persistentGraph struct {
	persistent storage.PersistentStorage
}

func (g persistentGraph) GetReferencing(paths []types.FilePath) ([]types.FilePath, error) {
	return g.persistent.GetReferencing(context.Background(), paths)
}

func (g persistentGraph) GetReferenced(paths []types.FilePath) ([]types.FilePath, error) {
	return g.persistent.GetReferenced(context.Background(), paths)
}
