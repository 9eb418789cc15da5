package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/ChristopherRabotin/sbdyn"
	kitlog "github.com/go-kit/kit/log"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// This code reads the configuration file, propagates the vehicle and exports its history.

var (
	confDir  string
	name     string
	withPlot bool
)

func init() {
	flag.StringVar(&confDir, "config", "", "directory of conf.toml (defaults to $SBDYN_CONFIG)")
	flag.StringVar(&name, "name", "sc", "name of the spacecraft")
	flag.BoolVar(&withPlot, "plot", false, "save PNG plots of the hinge angles and of the conserved quantities")
}

// history is filled from the export goroutine.
type history struct {
	sync.Mutex
	t, energy, h []float64
	theta        [][]float64
}

func (h *history) observe(st sbdyn.SimState) {
	h.Lock()
	defer h.Unlock()
	h.t = append(h.t, st.T)
	h.energy = append(h.energy, st.Energy)
	h.h = append(h.h, st.HNorm)
	for i, hinge := range st.Hinges {
		if i >= len(h.theta) {
			h.theta = append(h.theta, nil)
		}
		h.theta[i] = append(h.theta[i], hinge.Theta)
	}
}

func main() {
	flag.Parse()
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC)

	var conf sbdyn.Config
	var err error
	if confDir == "" {
		conf, err = sbdyn.ConfigFromEnv()
	} else {
		conf, err = sbdyn.ReadConfig(confDir)
	}
	if err != nil {
		log.Fatalf("could not read configuration: %s", err)
	}
	logger.Log("level", "info", "subsys", "config", "conf", conf)

	ids := sbdyn.NewIDAllocator()
	sc := conf.Build(name, ids, logger)
	defer sc.Teardown()

	hist := &history{}
	export := conf.Export(name)
	if withPlot {
		export.Observer = hist.observe
	}
	mission, err := sbdyn.NewPreciseMission(sc, conf.Epoch, conf.Epoch.Add(conf.Duration), conf.Step, export)
	if err != nil {
		log.Fatalf("could not start the propagation: %s", err)
	}
	if err = mission.Propagate(); err != nil {
		log.Fatalf("propagation failed: %s", err)
	}

	if !withPlot {
		return
	}
	hist.Lock()
	defer hist.Unlock()
	for i, theta := range hist.theta {
		if err := saveLinePlot(conf.OutputPath, fmt.Sprintf("%s-theta%d.png", name, i), fmt.Sprintf("Hinge %d angle", i), "time (s)", "θ (rad)", hist.t, theta); err != nil {
			log.Fatal(err)
		}
	}
	if err := saveLinePlot(conf.OutputPath, name+"-energy.png", "Total energy", "time (s)", "E (J)", hist.t, hist.energy); err != nil {
		log.Fatal(err)
	}
	if err := saveLinePlot(conf.OutputPath, name+"-momentum.png", "Total angular momentum", "time (s)", "|H| (N.m.s)", hist.t, hist.h); err != nil {
		log.Fatal(err)
	}
}

func saveLinePlot(outDir, filename, title, xlabel, ylabel string, xs, ys []float64) error {
	if len(xs) != len(ys) || len(xs) == 0 {
		return fmt.Errorf("invalid data for %s", filename)
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)
	return p.Save(8*vg.Inch, 6*vg.Inch, filepath.Join(outDir, filename))
}
