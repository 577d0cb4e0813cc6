package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"tixload/cli/internal/loadrun"

	"gopkg.in/yaml.v3"
)

// Profile is the load shape of a run. Files use the yaml tags below, e.g.
//
//	name: evening-rush
//	scenario: purchase
//	vus: 25
//	duration: 10m
//	think_min: 1s
//	think_max: 4s
//	max_error_rate: 0.1
type Profile struct {
	Name string `yaml:"name"`
	// Scenario selects the iteration body; empty means the built-in named Name.
	Scenario   string        `yaml:"scenario,omitempty"`
	VUs        int           `yaml:"vus"`
	Duration   time.Duration `yaml:"duration,omitempty"`
	Iterations int           `yaml:"iterations,omitempty"`
	ThinkMin   time.Duration `yaml:"think_min,omitempty"`
	ThinkMax   time.Duration `yaml:"think_max,omitempty"`
	// MaxErrorRate fails the run when the step error rate exceeds it; zero disables the check.
	MaxErrorRate float64 `yaml:"max_error_rate,omitempty"`
}

// Body returns the name of the iteration body to run.
func (p Profile) Body() string {
	if p.Scenario != "" {
		return p.Scenario
	}
	return p.Name
}

// Plan converts the profile into a runner plan.
func (p Profile) Plan() loadrun.Plan {
	return loadrun.Plan{
		VUs:        p.VUs,
		Duration:   p.Duration,
		Iterations: p.Iterations,
		ThinkMin:   p.ThinkMin,
		ThinkMax:   p.ThinkMax,
	}
}

func (p Profile) Validate() error {
	if p.Body() == "" {
		return errors.New("profile needs a name or a scenario")
	}
	if _, ok := Lookup(p.Body()); !ok {
		return fmt.Errorf("unknown scenario %q (known: %v)", p.Body(), Names())
	}
	if p.MaxErrorRate < 0 || p.MaxErrorRate > 1 {
		return fmt.Errorf("max_error_rate must be within [0,1], got %v", p.MaxErrorRate)
	}
	return p.Plan().Validate()
}

// Exceeded reports whether errorRate breaks the profile's threshold.
func (p Profile) Exceeded(errorRate float64) bool {
	return p.MaxErrorRate > 0 && errorRate > p.MaxErrorRate
}

// ParseProfile reads one YAML profile. Unknown keys are rejected.
func ParseProfile(r io.Reader) (Profile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var p Profile
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return Profile{}, errors.New("profile is empty")
		}
		return Profile{}, fmt.Errorf("parse profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// LoadProfile reads a profile file.
func LoadProfile(path string) (Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return Profile{}, err
	}
	defer f.Close()
	p, err := ParseProfile(f)
	if err != nil {
		return Profile{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
