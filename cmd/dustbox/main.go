package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/shearlab/dustbox/internal/config"
	"github.com/shearlab/dustbox/internal/metrics"
	"github.com/shearlab/dustbox/internal/scenario"
	"github.com/shearlab/dustbox/internal/sim"
	"github.com/shearlab/dustbox/internal/storage"
	"github.com/shearlab/dustbox/internal/tui"
	"github.com/shearlab/dustbox/internal/viz"
)

var (
	dataDir    string
	configFile string
	scheme     string
	dt         float64
	steps      int
	plot       bool
	verbose    bool
	stepsPerF  int
	frameRate  int
)

var log = logrus.New()

func main() {
	rootCmd := &cobra.Command{
		Use:   "dustbox",
		Short: "dust grain dynamics in a local disk patch",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "save runs under this directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "yaml config file")
	runCmd.Flags().StringVar(&scheme, "scheme", "", "override integrator: explicit|semi|full")
	runCmd.Flags().Float64Var(&dt, "dt", 0, "override timestep")
	runCmd.Flags().IntVar(&steps, "steps", 0, "override step count")
	runCmd.Flags().BoolVar(&plot, "plot", true, "plot the tracked grain history")

	watchCmd := &cobra.Command{
		Use:   "watch [preset]",
		Short: "watch a simulation live",
		Args:  cobra.MaximumNArgs(1),
		RunE:  watchSimulation,
	}
	watchCmd.Flags().StringVar(&configFile, "config", "", "yaml config file")
	watchCmd.Flags().IntVar(&stepsPerF, "steps-per-frame", 2, "integrator steps per frame")
	watchCmd.Flags().IntVar(&frameRate, "fps", 30, "frames per second")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list the canned scenarios",
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSCHEME\tSTEPS\tGRID\tFLAGS")
			for _, name := range config.PresetNames() {
				p := config.Presets[name]
				fmt.Fprintf(w, "%s\t%s\t%d\t%dx%dx%d\t%s\n",
					name, p.Scheme, p.Steps, p.Grid.N1, p.Grid.N2, p.Grid.N3, flagString(p))
			}
			w.Flush()
		},
	}

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list stored runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dataDir == "" {
				return fmt.Errorf("runs: --data required")
			}
			list, err := storage.New(dataDir).List()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSCHEME\tSTEPS\tGRAINS")
			for _, m := range list {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", m.ID, m.Scheme, m.Steps, m.Grains)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(runCmd, watchCmd, presetsCmd, runsCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(args []string) (*config.Config, string, error) {
	preset := ""
	var cfg *config.Config
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, "", err
		}
		cfg = c
	case len(args) == 1:
		c, ok := config.Preset(args[0])
		if !ok {
			return nil, "", fmt.Errorf("unknown preset %q (try: %v)", args[0], config.PresetNames())
		}
		cfg, preset = c, args[0]
	default:
		cfg = config.DefaultConfig()
	}
	if scheme != "" {
		cfg.Scheme = scheme
	}
	if dt > 0 {
		cfg.Dt = dt
	}
	if steps > 0 {
		cfg.Steps = steps
	}
	return cfg, preset, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, preset, err := loadConfig(args)
	if err != nil {
		return err
	}
	world, err := scenario.Build(cfg, log)
	if err != nil {
		return err
	}

	driver := sim.New(world)
	driver.AddMetric(metrics.NewMomentum())
	driver.AddMetric(metrics.NewRadialDispersion())
	if cfg.Feedback {
		driver.AddMetric(metrics.NewFeedbackBalance())
	}
	if cfg.ShearingBox {
		driver.AddMetric(metrics.NewEpicycleDrift(world.Stepper.Frame))
	}

	result, err := driver.Run(context.Background(), cfg.Steps)
	if err != nil {
		return err
	}

	fmt.Println(viz.TitleStyle.Render("dustbox run"))
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "scheme\t%s\n", cfg.Scheme)
	fmt.Fprintf(w, "steps\t%d\n", result.StepsTaken)
	fmt.Fprintf(w, "grains\t%d\n", world.Grains.N())
	w.Flush()
	for name, val := range result.Metrics {
		fmt.Println(viz.Stat(name, val))
	}

	if plot && len(result.V1) > 1 {
		fmt.Println()
		fmt.Print(viz.Series(result.V1, "tracked grain v1"))
		fmt.Print(viz.Series(result.X1, "tracked grain x1"))
	}

	if dataDir != "" {
		store := storage.New(dataDir)
		if err := store.Init(); err != nil {
			return err
		}
		id, err := store.Save(preset, cfg, world.Grains.N(), result)
		if err != nil {
			return err
		}
		log.Infof("saved run %s", id)
	}
	return nil
}

func watchSimulation(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(args)
	if err != nil {
		return err
	}
	world, err := scenario.Build(cfg, log)
	if err != nil {
		return err
	}
	return tui.Run(world, stepsPerF, frameRate)
}

func flagString(c *config.Config) string {
	s := ""
	if c.ShearingBox {
		s += "shear "
	}
	if c.Fargo {
		s += "fargo "
	}
	if c.VerticalGravity {
		s += "vg "
	}
	if c.Feedback {
		s += "fb "
	}
	if s == "" {
		return "-"
	}
	return s[:len(s)-1]
}
