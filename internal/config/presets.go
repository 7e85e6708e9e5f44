package config

import (
	"fmt"
	"sort"
)

// Preset is a level of theory with a time step that suits it.
type Preset struct {
	Family   string
	Route    string
	TimeStep float64
	Note     string
}

var Presets = map[string]*Preset{
	"pm6": {
		Family: "semiempirical", Route: "#p PM6 force", TimeStep: 0.5,
		Note: "fast screening runs",
	},
	"am1": {
		Family: "semiempirical", Route: "#p AM1 force", TimeStep: 0.5,
	},
	"hf-sto3g": {
		Family: "hf", Route: "#p HF/STO-3G force", TimeStep: 0.5,
		Note: "minimal basis, debugging only",
	},
	"hf": {
		Family: "hf", Route: "#p HF/6-31G(d) force", TimeStep: 0.5,
	},
	"b3lyp": {
		Family: "dft", Route: "#p B3LYP/6-31G(d) force", TimeStep: 0.5,
	},
	"b3lyp-d3": {
		Family: "dft", Route: "#p B3LYP/6-31G(d) EmpiricalDispersion=GD3BJ force", TimeStep: 0.5,
		Note: "dispersion corrected",
	},
	"wb97xd": {
		Family: "dft", Route: "#p wB97XD/def2SVP force", TimeStep: 0.5,
	},
	"pbe-heavy": {
		Family: "dft", Route: "#p PBEPBE/def2SVP force", TimeStep: 1.0,
		Note: "for systems without light atoms",
	},
}

func GetPreset(name string) *Preset {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p
}

// ListPresets returns the preset names of a family, or all of them when
// family is empty, sorted.
func ListPresets(family string) []string {
	names := make([]string, 0, len(Presets))
	for name, p := range Presets {
		if family != "" && p.Family != family {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)
	return names
}

// ApplyPreset sets the route and time step of the named preset.
func (c *Config) ApplyPreset(name string) error {
	p := GetPreset(name)
	if p == nil {
		return fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, name)
	}
	c.Gaussian.Route = p.Route
	if p.TimeStep > 0 {
		c.TimeStep = p.TimeStep
	}
	return nil
}
