// Package catalog loads the authored journeys and lead fragments.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/tatianab/pips-pilgrimage/internal/models"
	"github.com/tatianab/pips-pilgrimage/internal/rng"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var embedded embed.FS

// Catalog is the read-only content every session draws from.
type Catalog struct {
	Leads    []string
	Journeys []models.Journey
}

// Load reads the content compiled into the binary.
func Load() (*Catalog, error) {
	return LoadFS(embedded, "data")
}

// LoadFS reads leads.yaml and every journey_*.yaml under root, then validates.
func LoadFS(fsys fs.FS, root string) (*Catalog, error) {
	data, err := fs.ReadFile(fsys, path.Join(root, "leads.yaml"))
	if err != nil {
		return nil, fmt.Errorf("read leads: %w", err)
	}
	var leads struct {
		Leads []string `yaml:"leads"`
	}
	if err := yaml.Unmarshal(data, &leads); err != nil {
		return nil, fmt.Errorf("parse leads: %w", err)
	}

	names, err := fs.Glob(fsys, path.Join(root, "journey_*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	c := &Catalog{Leads: leads.Leads}
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		var j models.Journey
		if err := yaml.Unmarshal(raw, &j); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		c.Journeys = append(c.Journeys, j)
	}
	sort.SliceStable(c.Journeys, func(a, b int) bool { return c.Journeys[a].ID < c.Journeys[b].ID })

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate reports every content problem at once.
//
// Consecutive thresholds must be further apart than one travel step can
// carry the player, so a single move never straddles two events.
func (c *Catalog) Validate() error {
	var errs []error
	if len(c.Leads) == 0 {
		errs = append(errs, errors.New("no lead fragments"))
	}
	if len(c.Journeys) == 0 {
		errs = append(errs, errors.New("no journeys"))
	}

	ids := map[int]bool{}
	for _, j := range c.Journeys {
		if ids[j.ID] {
			errs = append(errs, fmt.Errorf("journey %d: duplicate id", j.ID))
		}
		ids[j.ID] = true

		for _, a := range models.AllActions {
			if len(j.NarrativePool.Pool(a)) == 0 {
				errs = append(errs, fmt.Errorf("journey %d: empty %s pool", j.ID, a))
			}
		}
		for _, b := range []models.Band{models.BandLowlands, models.BandHighPasses, models.BandSummit} {
			if len(j.Environment.Pool(b)) == 0 {
				errs = append(errs, fmt.Errorf("journey %d: empty %s environment pool", j.ID, b))
			}
		}
		for _, s := range []models.Situation{
			models.SituationThriving, models.SituationLowHealth, models.SituationStarving,
			models.SituationFreezing, models.SituationLowMorale, models.SituationBlizzard,
		} {
			if len(j.Situations.Pool(s)) == 0 {
				errs = append(errs, fmt.Errorf("journey %d: empty %s situation pool", j.ID, s))
			}
		}

		prev := 0
		for i, beat := range j.FixedEvents {
			if len(beat.Event.Options) < 2 {
				errs = append(errs, fmt.Errorf("journey %d: event %q has %d options", j.ID, beat.Event.Title, len(beat.Event.Options)))
			}
			if beat.Distance <= 0 || beat.Distance > models.TargetDistance {
				errs = append(errs, fmt.Errorf("journey %d: event %q at %d is off the route", j.ID, beat.Event.Title, beat.Distance))
			}
			if i > 0 && beat.Distance-prev <= models.MaxTravelGain {
				errs = append(errs, fmt.Errorf("journey %d: events at %d and %d are too close", j.ID, prev, beat.Distance))
			}
			prev = beat.Distance
		}
	}
	return errors.Join(errs...)
}

// Journey returns the journey with the given id.
func (c *Catalog) Journey(id int) (*models.Journey, bool) {
	for i := range c.Journeys {
		if c.Journeys[i].ID == id {
			return &c.Journeys[i], true
		}
	}
	return nil, false
}

// Pick draws one journey uniformly.
func (c *Catalog) Pick(src rng.Source) *models.Journey {
	return &c.Journeys[src.IntN(len(c.Journeys))]
}
