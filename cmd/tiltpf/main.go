package main

import (
	"errors"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	filter "github.com/milosgajdos/go-tilt"
	"github.com/milosgajdos/go-tilt/model"
	"github.com/milosgajdos/go-tilt/particle"
	"github.com/milosgajdos/go-tilt/particle/sir"
	"github.com/milosgajdos/go-tilt/sim"
	"github.com/milosgajdos/go-tilt/stream"
	"github.com/milosgajdos/matrix"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot/vg"
)

// source is a measurement source which knows the true state
type source interface {
	filter.Source
	Time() float64
	Truth() (theta, rate float64, ok bool)
}

var (
	data      = flag.String("data", "", "validation dataset CSV; synthetic measurements are generated if empty")
	steps     = flag.Int("steps", 1000, "number of synthetic measurements")
	count     = flag.Int("particles", 100, "number of particles")
	lo        = flag.Float64("a", -1.6, "lower bound of initial particle interval")
	hi        = flag.Float64("b", 0.8, "upper bound of initial particle interval")
	seed      = flag.Uint64("seed", 0, "master random seed; time based if 0")
	workers   = flag.Int("workers", 0, "number of particle propagation goroutines; GOMAXPROCS if 0")
	initSnap  = flag.String("init", "", "particle snapshot to start from instead of uniform particles")
	snapshots = flag.String("snapshots", "", "directory to write particle snapshots into")
	plotOut   = flag.String("plot", "tilt.png", "tilt angle plot PNG file; no plot if empty")
	listen    = flag.String("listen", "", "address to stream particle sets over websocket on, e.g. :8080")
	verbose   = flag.Bool("v", false, "log estimate in every step")
)

func main() {
	c := model.DefaultConfig()
	flag.Float64Var(&c.T, "T", c.T, "sampling interval in seconds")
	flag.Float64Var(&c.Qw, "qw", c.Qw, "angular rate process noise")
	flag.Float64Var(&c.Qb, "qb", c.Qb, "gyro bias process noise")
	flag.Float64Var(&c.RTheta, "rtheta", c.RTheta, "accelerometer tilt measurement variance")
	flag.Float64Var(&c.RW, "rw", c.RW, "gyro rate measurement variance")
	flag.Parse()

	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}
	master := rand.NewSource(*seed)
	log.Printf("Random seed: %d", *seed)

	// tilt is the model of the system we will estimate
	tilt, err := model.New(c)
	if err != nil {
		log.Fatalf("Failed to create tilt model: %v", err)
	}

	src, err := newSource(c, rand.NewSource(master.Uint64()))
	if err != nil {
		log.Fatalf("Failed to create measurement source: %v", err)
	}

	// particles are reseeded from this source whenever the filter degenerates
	initSrc := rand.NewSource(master.Uint64())
	set, err := initParticles(initSrc)
	if err != nil {
		log.Fatalf("Failed to initialize particles: %v", err)
	}

	f, err := sir.New(&sir.Config{
		Propagator: tilt,
		Likelihood: tilt,
		Workers:    *workers,
		Src:        rand.NewSource(master.Uint64()),
	})
	if err != nil {
		log.Fatalf("Failed to create particle filter: %v", err)
	}

	sinks, err := newSinks()
	if err != nil {
		log.Fatalf("Failed to create particle sinks: %v", err)
	}

	var truthOut, measOut, filterOut []float64

	for step := 0; ; step++ {
		z, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Measurement error: %v", err)
		}

		next, err := f.Step(set, z)
		if errors.Is(err, filter.ErrDegenerate) {
			log.Printf("Step %d: %v: reseeding particles", step, err)
			if set, err = particle.NewUniform(*count, model.StateDim, *lo, *hi, initSrc); err != nil {
				log.Fatalf("Failed to reseed particles: %v", err)
			}
			continue
		}
		if err != nil {
			log.Fatalf("Filter step error: %v", err)
		}
		set = next

		for _, s := range sinks {
			if err := s.Write(step, set); err != nil {
				log.Fatalf("Failed to write particles: %v", err)
			}
		}

		est, err := set.Estimate()
		if err != nil {
			log.Fatalf("Filter estimate error: %v", err)
		}

		t := src.Time()
		if theta, _, ok := src.Truth(); ok {
			truthOut = append(truthOut, t, theta)
		}
		measOut = append(measOut, t, z.AtVec(model.ZTheta))
		filterOut = append(filterOut, t, est.Val().AtVec(model.Theta))

		if *verbose {
			log.Printf("Measurement %d:\n%v", step, matrix.Format(z))
			log.Printf("Estimate %d:\n%v", step, matrix.Format(est.Val()))
		}
	}

	if len(filterOut) == 0 {
		log.Fatalf("No measurements processed")
	}

	if *plotOut == "" {
		return
	}

	var truth *mat.Dense
	if len(truthOut) > 0 {
		truth = mat.NewDense(len(truthOut)/2, 2, truthOut)
	}

	plt, err := sim.NewTrackPlot(truth, mat.NewDense(len(measOut)/2, 2, measOut), mat.NewDense(len(filterOut)/2, 2, filterOut))
	if err != nil {
		log.Fatalf("Failed to make plot: %v", err)
	}

	// Save the plot to a PNG file.
	if err := plt.Save(10*vg.Inch, 6*vg.Inch, *plotOut); err != nil {
		log.Fatalf("Failed to save plot to %s: %v", *plotOut, err)
	}
}

func newSource(c model.Config, noise rand.Source) (source, error) {
	if *data == "" {
		g, err := sim.NewGenerator(sim.GeneratorConfig{
			Model:     c,
			Steps:     *steps,
			Amplitude: 0.8,
			Freq:      0.5,
			Bias:      0.05,
			Src:       noise,
		})
		if err != nil {
			return nil, err
		}
		return g, nil
	}

	// the dataset file stays open until the program exits
	f, err := os.Open(*data)
	if err != nil {
		return nil, err
	}

	s, err := sim.NewCSVSource(f)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func initParticles(src rand.Source) (*particle.Set, error) {
	if *initSnap != "" {
		return sim.ReadSnapshot(*initSnap)
	}

	return particle.NewUniform(*count, model.StateDim, *lo, *hi, src)
}

func newSinks() ([]particle.Sink, error) {
	var sinks []particle.Sink

	if *snapshots != "" {
		w, err := sim.NewSnapshotWriter(*snapshots)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, w)
	}

	if *listen != "" {
		hub := stream.NewHub()
		mux := http.NewServeMux()
		mux.Handle("/ws", hub)

		go func() {
			log.Printf("Streaming particles on %s/ws", *listen)
			if err := http.ListenAndServe(*listen, mux); err != nil {
				log.Fatalf("HTTP server error: %v", err)
			}
		}()
		sinks = append(sinks, hub)
	}

	return sinks, nil
}
