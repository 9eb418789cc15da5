package sbdyn

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/soniakeys/meeus/v3/julian"
)

// SimState is one step of a simulation history.
type SimState struct {
	DT       time.Time
	T        float64 // seconds since the start
	Hinges   []HingedRigidBodyMsg
	SigmaBN  []float64
	OmegaBN  []float64
	Energy   float64
	HNorm    float64 // norm of the total angular momentum
	Position []float64
}

// ExportConfig configures the exporting of the simulation.
type ExportConfig struct {
	Filename     string
	OutputDir    string
	AsCSV        bool
	Timestamp    bool
	CSVAppend    func(st SimState) []string // Custom columns
	CSVAppendHdr func() []string            // Header for the custom columns
	Observer     func(st SimState)          // Called for each state, from the streaming goroutine
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return !c.AsCSV && c.Observer == nil
}

// path returns the full path of the exported file.
func (c ExportConfig) path() string {
	dir := c.OutputDir
	if dir == "" {
		dir = "."
	}
	if c.Timestamp {
		t := time.Now()
		return filepath.Join(dir, fmt.Sprintf("spinner-%s-%d-%02d-%02dT%02d.%02d.%02d.csv", c.Filename, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second()))
	}
	return filepath.Join(dir, fmt.Sprintf("spinner-%s.csv", c.Filename))
}

func csvHeader(conf ExportConfig, nHinges int) []string {
	hdr := []string{"epoch", "jd", "t"}
	for i := 0; i < nHinges; i++ {
		hdr = append(hdr, fmt.Sprintf("theta%d", i), fmt.Sprintf("thetaDot%d", i))
	}
	hdr = append(hdr, "sigma1", "sigma2", "sigma3", "omega1", "omega2", "omega3", "energy", "H")
	if conf.CSVAppendHdr != nil {
		hdr = append(hdr, conf.CSVAppendHdr()...)
	}
	return hdr
}

func csvRecord(conf ExportConfig, st SimState) []string {
	f := func(v float64) string {
		return strconv.FormatFloat(v, 'e', 12, 64)
	}
	rec := []string{st.DT.UTC().Format(time.RFC3339Nano), strconv.FormatFloat(julian.TimeToJD(st.DT), 'f', 8, 64), f(st.T)}
	for _, h := range st.Hinges {
		rec = append(rec, f(h.Theta), f(h.ThetaDot))
	}
	for _, v := range st.SigmaBN {
		rec = append(rec, f(v))
	}
	for _, v := range st.OmegaBN {
		rec = append(rec, f(v))
	}
	rec = append(rec, f(st.Energy), f(st.HNorm))
	if conf.CSVAppend != nil {
		rec = append(rec, conf.CSVAppend(st)...)
	}
	return rec
}

// StreamStates streams the output of the channel to a CSV file and to the observer until the
// channel is closed. The channel is always drained, even if the file cannot be written.
func StreamStates(conf ExportConfig, stateChan <-chan SimState) (err error) {
	defer func() {
		for range stateChan {
		}
	}()
	var w *csv.Writer
	fn := conf.path()
	if conf.AsCSV {
		f, err := os.Create(fn)
		if err != nil {
			return errors.Wrap(err, "creating history file")
		}
		defer f.Close()
		w = csv.NewWriter(f)
	}
	first := true
	for state := range stateChan {
		if conf.Observer != nil {
			conf.Observer(state)
		}
		if w == nil {
			continue
		}
		if first {
			if err = w.Write(csvHeader(conf, len(state.Hinges))); err != nil {
				return errors.Wrapf(err, "writing header of %s", fn)
			}
			first = false
		}
		if err = w.Write(csvRecord(conf, state)); err != nil {
			return errors.Wrapf(err, "writing %s", fn)
		}
	}
	if w == nil {
		return nil
	}
	w.Flush()
	return errors.Wrapf(w.Error(), "flushing %s", fn)
}
