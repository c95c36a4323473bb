package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/config"
	"github.com/cory-johannsen/warband/internal/content"
	"github.com/cory-johannsen/warband/internal/game/battle"
	"github.com/cory-johannsen/warband/internal/game/dice"
	"github.com/cory-johannsen/warband/internal/observability"
	"github.com/cory-johannsen/warband/internal/scenario"
	"github.com/cory-johannsen/warband/internal/scripting"
	"github.com/cory-johannsen/warband/internal/storage"
	"github.com/cory-johannsen/warband/internal/storage/backend"
)

type options struct {
	configPath   string
	scenarioPath string
	seed         uint64
	rounds       int
	save         bool
	resume       string
	list         bool
}

// errNoStore is returned when an option needs snapshot storage but the
// configured driver is "none".
var errNoStore = errors.New("snapshot storage is disabled (storage.driver = none)")

func run(ctx context.Context, opts options, out io.Writer) error {
	start := time.Now()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logging, "battlesim")
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	store, err := backend.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("opening snapshot store: %w", err)
	}
	if store != nil {
		defer store.Close()
	}
	if opts.list {
		return listSnapshots(ctx, store, out)
	}

	creatures, spells, err := content.Load(cfg.Content)
	if err != nil {
		return err
	}
	logger.Info("content loaded",
		zap.Int("creatures", creatures.Len()),
		zap.Int("spells", spells.Len()),
	)

	sc, err := scenario.Load(opts.scenarioPath)
	if err != nil {
		return err
	}
	seed := cfg.Battle.Seed
	if opts.seed != 0 {
		seed = opts.seed
	}
	src := dice.NewSource(seed)
	roller := dice.NewLoggedRoller(src, logger.Named("dice"))

	participants, err := sc.Build(creatures, spells, roller)
	if err != nil {
		return fmt.Errorf("building scenario %q: %w", sc.Name, err)
	}

	hooks, err := newHooks(cfg.Scripting, roller, logger.Named("scripting"))
	if err != nil {
		return err
	}
	defer hooks.Close()

	bcfg := battle.Config{
		Attacker:             participants.Attacker,
		Defender:             participants.Defender,
		Castle:               participants.Castle,
		Creatures:            creatures,
		Spells:               spells,
		Source:               src,
		Logger:               logger.Named("battle"),
		Hooks:                hooks,
		DefaultSpellDuration: cfg.Battle.DefaultSpellDuration,
		MoatDefensePenalty:   cfg.Battle.MoatDefensePenalty,
		Debug:                cfg.Battle.Debug,
	}
	if cfg.Telemetry.MetricsEnabled {
		metrics, err := observability.NewBattleMetrics()
		if err != nil {
			return fmt.Errorf("creating metrics: %w", err)
		}
		bcfg.Metrics = metrics
	}

	arena, err := openArena(ctx, bcfg, participants, store, opts.resume, logger)
	if err != nil {
		return err
	}
	bindHooks(hooks, arena)

	rounds := cfg.Battle.MaxRounds
	if opts.rounds > 0 {
		rounds = opts.rounds
	}
	res := arena.RunAutomated(arena.Round() + rounds)
	printResult(out, sc.Name, seed, arena, res)

	if opts.save {
		if store == nil {
			return errNoStore
		}
		snap, err := store.Save(ctx, storage.NewSnapshot(sc.Name, res.Rounds, res.Winner.String(), arena.Snapshot()))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "saved snapshot %s\n", snap.ID)
	}

	logger.Info("simulation complete", zap.Duration("elapsed", time.Since(start)))
	return nil
}

// openArena starts a fresh battle and casts the opening spells, or restores
// the snapshot named by resume onto the scenario's armies.
func openArena(ctx context.Context, cfg battle.Config, participants *scenario.Battle, store storage.SnapshotStore, resume string, logger *zap.Logger) (*battle.Arena, error) {
	if resume == "" {
		arena, err := battle.NewArena(cfg)
		if err != nil {
			return nil, err
		}
		participants.CastOpeningSpells(arena, logger)
		return arena, nil
	}
	if store == nil {
		return nil, errNoStore
	}
	id, err := uuid.Parse(resume)
	if err != nil {
		return nil, fmt.Errorf("parsing snapshot id: %w", err)
	}
	snap, err := store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot %s: %w", id, err)
	}
	arena, err := battle.RestoreArena(cfg, snap.Data)
	if err != nil {
		return nil, fmt.Errorf("restoring snapshot %s: %w", id, err)
	}
	logger.Info("battle resumed", zap.String("snapshot", id.String()), zap.Int("round", arena.Round()))
	return arena, nil
}

func newHooks(cfg config.ScriptingConfig, roller *dice.Roller, logger *zap.Logger) (*scripting.Manager, error) {
	mgr := scripting.NewManager(roller, logger)
	if cfg.ScriptDir != "" {
		if err := mgr.LoadDir(cfg.ScriptDir, cfg.InstructionLimit); err != nil {
			return nil, err
		}
		return mgr, nil
	}
	scripts, err := content.Scripts()
	if err != nil {
		return nil, fmt.Errorf("opening embedded scripts: %w", err)
	}
	if err := mgr.Load(scripts, cfg.InstructionLimit); err != nil {
		return nil, err
	}
	return mgr, nil
}

// bindHooks exposes arena to the Lua engine.unit and engine.restore modules.
func bindHooks(mgr *scripting.Manager, arena *battle.Arena) {
	mgr.GetUnit = func(uid uint32) *scripting.UnitInfo {
		u := arena.UnitByUID(uid)
		if u == nil {
			return nil
		}
		return &scripting.UnitInfo{
			UID:       u.UID(),
			Creature:  u.ID(),
			Color:     u.Color().String(),
			Count:     u.Count(),
			Dead:      u.Dead(),
			HitPoints: u.HitPoints(),
			MemberHP:  u.Creature().HitPoints,
		}
	}
	mgr.Restore = func(uid uint32, points int, overflow bool) int {
		u := arena.UnitByUID(uid)
		if u == nil || !u.IsValid() {
			return 0
		}
		return u.Resurrect(points, overflow, false)
	}
}

func printResult(out io.Writer, name string, seed uint64, arena *battle.Arena, res battle.Result) {
	fmt.Fprintf(out, "scenario %s (seed %d)\n", name, seed)
	fmt.Fprintf(out, "rounds %d finished %v winner %s\n", res.Rounds, res.Finished, res.Winner)
	fmt.Fprintf(out, "losses attacker %d defender %d\n", res.AttackerLosses, res.DefenderLosses)
	for _, f := range []*battle.Force{arena.Attacker(), arena.Defender()} {
		for _, u := range f.Units() {
			fmt.Fprintf(out, "  %-6s %-18s %4d alive %4d dead\n", f.Color(), u.ID(), u.Count(), u.Dead())
		}
	}
}

func listSnapshots(ctx context.Context, store storage.SnapshotStore, out io.Writer) error {
	if store == nil {
		return errNoStore
	}
	snaps, err := store.List(ctx, 0)
	if err != nil {
		return err
	}
	for _, s := range snaps {
		fmt.Fprintf(out, "%s %s round %d winner %s %s\n",
			s.ID, s.Label, s.Round, s.Winner, s.CreatedAt.Format(time.RFC3339))
	}
	return nil
}
