// Package seed loads area configuration from a TOML file.
package seed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"condo-booking/internal/domain/area"
	"condo-booking/internal/domain/quota"
	"condo-booking/internal/domain/schedule"
	"condo-booking/internal/pkg/errs"
	"condo-booking/internal/usecase/shared"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
)

// File mirrors the TOML layout:
//
//	[condominio]
//	id = "..."
//	[condominio.limites_globais]
//	semana = 2
//
//	[[areas]]
//	id = "..."
//	nome = "Salao de Festas"
//	...
//	[[areas.horarios]]
//	inicio = "10:00"
//	fim = "14:00"
//	dias = ["sab", "dom"]
type File struct {
	Condominium Condominium `toml:"condominio"`
	Areas       []Area      `toml:"areas"`
}

type Condominium struct {
	ID           uuid.UUID          `toml:"id"`
	GlobalLimits quota.WindowLimits `toml:"limites_globais"`
}

type Area struct {
	ID       uuid.UUID        `toml:"id"`
	Name     string           `toml:"nome"`
	Active   *bool            `toml:"ativa"`
	Capacity int              `toml:"capacidade"`
	Policy   area.Policy      `toml:"politica"`
	Flags    area.Flags       `toml:"regras"`
	Limits   quota.AreaLimits `toml:"limites"`
	Slots    []Slot           `toml:"horarios"`
	Blocks   []Block          `toml:"bloqueios"`
}

type Slot struct {
	Start string   `toml:"inicio"`
	End   string   `toml:"fim"`
	Days  []string `toml:"dias"`
}

type Block struct {
	From   string `toml:"de"`
	To     string `toml:"ate"`
	Start  string `toml:"inicio"`
	End    string `toml:"fim"`
	Reason string `toml:"motivo"`
}

// Parse decodes and validates a seed file. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	var f File
	md, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return nil, errs.Wrap(err, "failed to decode seed file")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, errs.Newf("unknown keys in seed file: %s", strings.Join(keys, ", "))
	}
	if f.Condominium.ID == uuid.Nil {
		return nil, errs.New("condominio.id is required")
	}
	if err := f.Condominium.GlobalLimits.Validate(); err != nil {
		return nil, errs.Wrap(err, "condominio.limites_globais")
	}
	return &f, nil
}

// Plan is the validated domain form of a seed file.
type Plan struct {
	CondominiumID uuid.UUID
	GlobalLimits  quota.WindowLimits
	Areas         []AreaPlan
}

type AreaPlan struct {
	Area   *area.Area
	Slots  []schedule.TimeSlot
	Blocks []schedule.BlockPeriod
}

func (f *File) Plan() (*Plan, error) {
	plan := &Plan{CondominiumID: f.Condominium.ID, GlobalLimits: f.Condominium.GlobalLimits}
	for i, raw := range f.Areas {
		ap, err := raw.plan(f.Condominium.ID)
		if err != nil {
			return nil, errs.Wrapf(err, "areas[%d] (%s)", i, raw.Name)
		}
		plan.Areas = append(plan.Areas, ap)
	}
	return plan, nil
}

func (a Area) plan(condominiumID uuid.UUID) (AreaPlan, error) {
	if a.ID == uuid.Nil {
		return AreaPlan{}, errs.New("id is required")
	}
	active := a.Active == nil || *a.Active
	domainArea, err := area.New(area.Params{
		ID:            a.ID,
		CondominiumID: condominiumID,
		Name:          a.Name,
		Active:        active,
		Capacity:      a.Capacity,
		Policy:        a.Policy,
		Flags:         a.Flags,
		Limits:        a.Limits,
	})
	if err != nil {
		return AreaPlan{}, err
	}

	ap := AreaPlan{Area: domainArea}
	for _, s := range a.Slots {
		slot, err := schedule.ParseSlot(s.Start, s.End)
		if err != nil {
			return AreaPlan{}, err
		}
		days := schedule.AllWeekdays
		if len(s.Days) > 0 {
			if days, err = schedule.ParseWeekdaySet(s.Days); err != nil {
				return AreaPlan{}, err
			}
		}
		ap.Slots = append(ap.Slots, schedule.TimeSlot{ID: uuid.New(), AreaID: a.ID, Slot: slot, Weekdays: days})
	}
	for _, b := range a.Blocks {
		block, err := b.period(a.ID)
		if err != nil {
			return AreaPlan{}, err
		}
		ap.Blocks = append(ap.Blocks, block)
	}
	return ap, nil
}

func (b Block) period(areaID uuid.UUID) (schedule.BlockPeriod, error) {
	from, err := schedule.ParseDate(b.From)
	if err != nil {
		return schedule.BlockPeriod{}, err
	}
	to := from
	if b.To != "" {
		if to, err = schedule.ParseDate(b.To); err != nil {
			return schedule.BlockPeriod{}, err
		}
	}
	var window *schedule.Slot
	if b.Start != "" || b.End != "" {
		slot, err := schedule.ParseSlot(b.Start, b.End)
		if err != nil {
			return schedule.BlockPeriod{}, err
		}
		window = &slot
	}
	return schedule.NewBlockPeriod(areaID, from, to, window, b.Reason)
}

// Apply upserts the plan in one transaction. Slots and blocks of each listed area are replaced.
func Apply(ctx context.Context, uow shared.UnitOfWork, plan *Plan, logger *slog.Logger) error {
	err := uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.AreaConfig().UpsertGlobalLimits(ctx, plan.CondominiumID, plan.GlobalLimits); err != nil {
			return err
		}
		for _, ap := range plan.Areas {
			if err := tx.AreaConfig().UpsertArea(ctx, ap.Area); err != nil {
				return err
			}
			if err := tx.AreaConfig().ReplaceSlots(ctx, ap.Area.ID(), ap.Slots); err != nil {
				return err
			}
			if err := tx.AreaConfig().ReplaceBlocks(ctx, ap.Area.ID(), ap.Blocks); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to apply seed: %w", err)
	}
	logger.Info("seed applied", "condominium_id", plan.CondominiumID, "areas", len(plan.Areas))
	return nil
}
