package sbdyn

import (
	"fmt"
	"os"
	"sort"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/gonum/matrix/mat64"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// ConfigEnv is the environment variable holding the directory of conf.toml.
const ConfigEnv = "SBDYN_CONFIG"

// J2000 is the default simulation epoch.
var J2000 = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

// HubConfig is the configuration of the hub.
type HubConfig struct {
	Mass    float64
	Inertia []float64 // row major, about Bc
	RBcB    []float64
	SigmaBN []float64
	OmegaBN []float64
	RBN     []float64
	VBN     []float64
}

// SpinningBodyConfig is the configuration of one spinning body.
type SpinningBodyConfig struct {
	Name     string
	Mass     float64
	Inertia  []float64 // row major, about Sc
	RSB      []float64
	SHat     []float64
	RScS     []float64
	DCMS0B   []float64 // row major
	Theta    float64
	ThetaDot float64
	K, C, U  float64
}

// Config is a simulation configuration, immutable once the simulation starts.
type Config struct {
	OutputPath     string
	Step           time.Duration
	Duration       time.Duration
	FixedHub       bool
	Gravity        []float64
	Epoch          time.Time
	Hub            HubConfig
	SpinningBodies []SpinningBodyConfig // sorted by name
}

// ConfigFromEnv reads the conf.toml in the directory set by the SBDYN_CONFIG environment variable.
func ConfigFromEnv() (Config, error) {
	confPath := os.Getenv(ConfigEnv)
	if confPath == "" {
		return Config{}, errors.Errorf("environment variable `%s` is missing or empty", ConfigEnv)
	}
	return ReadConfig(confPath)
}

// ReadConfig reads the conf.toml in the provided directory.
func ReadConfig(dir string) (conf Config, err error) {
	v := viper.New()
	v.SetConfigName("conf")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)
	v.SetDefault("general.output_path", ".")
	v.SetDefault("simulation.step", StepSize.Seconds())
	if err = v.ReadInConfig(); err != nil {
		return conf, errors.Wrapf(err, "%s/conf.toml", dir)
	}

	conf.OutputPath = v.GetString("general.output_path")
	conf.Step = seconds(v.GetFloat64("simulation.step"))
	conf.Duration = seconds(v.GetFloat64("simulation.duration"))
	conf.FixedHub = v.GetBool("simulation.fixed_hub")
	if conf.Gravity, err = floatsOf(v, "simulation.gravity", 3, []float64{0, 0, 0}); err != nil {
		return
	}
	conf.Epoch = J2000
	if v.IsSet("simulation.epoch") {
		conf.Epoch = v.GetTime("simulation.epoch").UTC()
	}
	if conf.Step <= 0 {
		return conf, errors.Errorf("simulation.step must be positive, got %s", conf.Step)
	}

	conf.Hub.Mass = v.GetFloat64("hub.mass")
	if conf.Hub.Mass <= 0 {
		return conf, errors.Errorf("hub.mass must be positive, got %f", conf.Hub.Mass)
	}
	for _, f := range []struct {
		key  string
		dst  *[]float64
		size int
		dflt []float64
	}{
		{"hub.inertia", &conf.Hub.Inertia, 9, nil},
		{"hub.r_BcB_B", &conf.Hub.RBcB, 3, []float64{0, 0, 0}},
		{"hub.sigma_BN", &conf.Hub.SigmaBN, 3, []float64{0, 0, 0}},
		{"hub.omega_BN_B", &conf.Hub.OmegaBN, 3, []float64{0, 0, 0}},
		{"hub.r_BN_N", &conf.Hub.RBN, 3, []float64{0, 0, 0}},
		{"hub.v_BN_N", &conf.Hub.VBN, 3, []float64{0, 0, 0}},
	} {
		if *f.dst, err = floatsOf(v, f.key, f.size, f.dflt); err != nil {
			return
		}
	}

	names := make([]string, 0)
	for name := range v.GetStringMap("spinningbody") {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sb, err := spinningBodyConfig(v, name)
		if err != nil {
			return conf, err
		}
		conf.SpinningBodies = append(conf.SpinningBodies, sb)
	}
	return conf, nil
}

func spinningBodyConfig(v *viper.Viper, name string) (sb SpinningBodyConfig, err error) {
	key := func(k string) string {
		return "spinningbody." + name + "." + k
	}
	sb.Name = name
	sb.Mass = v.GetFloat64(key("mass"))
	if sb.Mass <= 0 {
		return sb, errors.Errorf("%s must be positive, got %f", key("mass"), sb.Mass)
	}
	for _, f := range []struct {
		key  string
		dst  *[]float64
		size int
		dflt []float64
	}{
		{"inertia", &sb.Inertia, 9, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}},
		{"r_SB_B", &sb.RSB, 3, []float64{0, 0, 0}},
		{"sHat_S", &sb.SHat, 3, nil},
		{"r_ScS_S", &sb.RScS, 3, []float64{0, 0, 0}},
		{"dcm_S0B", &sb.DCMS0B, 9, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}},
	} {
		if *f.dst, err = floatsOf(v, key(f.key), f.size, f.dflt); err != nil {
			return
		}
	}
	sb.Theta = v.GetFloat64(key("theta"))
	sb.ThetaDot = v.GetFloat64(key("thetaDot"))
	sb.K = v.GetFloat64(key("k"))
	sb.C = v.GetFloat64(key("c"))
	sb.U = v.GetFloat64(key("u"))
	return sb, nil
}

// floatsOf returns the array of numbers under key, or the default if unset. A nil default
// makes the key mandatory.
func floatsOf(v *viper.Viper, key string, size int, dflt []float64) ([]float64, error) {
	if !v.IsSet(key) {
		if dflt == nil {
			return nil, errors.Errorf("%s is missing", key)
		}
		return dflt, nil
	}
	raw, ok := v.Get(key).([]interface{})
	if !ok {
		return nil, errors.Errorf("%s must be an array", key)
	}
	if len(raw) != size {
		return nil, errors.Errorf("%s must have %d items, got %d", key, size, len(raw))
	}
	vals := make([]float64, size)
	for i, r := range raw {
		switch n := r.(type) {
		case float64:
			vals[i] = n
		case int64:
			vals[i] = float64(n)
		case int:
			vals[i] = float64(n)
		default:
			return nil, errors.Errorf("%s[%d] is not a number: %v", key, i, r)
		}
	}
	return vals, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Build constructs the spacecraft described by this configuration. Spinning body identifiers
// are drawn from ids.
func (c Config) Build(name string, ids *IDAllocator, logger kitlog.Logger) *Spacecraft {
	if logger == nil {
		logger = SBLogger(name)
	}
	hub := NewHub(c.Hub.Mass, mat64.NewDense(3, 3, c.Hub.Inertia))
	hub.RBcB = c.Hub.RBcB
	hub.SigmaInit = c.Hub.SigmaBN
	hub.OmegaInit = c.Hub.OmegaBN
	hub.RInit = c.Hub.RBN
	hub.VInit = c.Hub.VBN

	sc := NewSpacecraft(name, hub, ids, logger)
	sc.FixedHub = c.FixedHub
	sc.Gravity = UniformGravity{G: c.Gravity}
	for _, sbc := range c.SpinningBodies {
		sb := NewSpinningBody(sbc.Name, ids, kitlog.With(logger, "effector", sbc.Name))
		sb.Mass = sbc.Mass
		sb.IPntSc = mat64.NewDense(3, 3, sbc.Inertia)
		sb.RSB = sbc.RSB
		sb.SHat = sbc.SHat
		sb.RScS = sbc.RScS
		sb.DCMS0B = mat64.NewDense(3, 3, sbc.DCMS0B)
		sb.ThetaInit = sbc.Theta
		sb.ThetaDotInit = sbc.ThetaDot
		sb.K = sbc.K
		sb.C = sbc.C
		sb.U = sbc.U
		sb.SpinningBodyOutMsg = NewMessage[HingedRigidBodyMsg]()
		sc.AddEffector(sb)
	}
	logger.Log("level", "info", "subsys", "config", "spinningbodies", len(c.SpinningBodies), "fixed_hub", c.FixedHub)
	return sc
}

// Export returns the export configuration of the history to the configured output path.
func (c Config) Export(filename string) ExportConfig {
	return ExportConfig{Filename: filename, OutputDir: c.OutputPath, AsCSV: true}
}

func (c Config) String() string {
	return fmt.Sprintf("step=%s duration=%s fixed_hub=%v spinningbodies=%d", c.Step, c.Duration, c.FixedHub, len(c.SpinningBodies))
}
