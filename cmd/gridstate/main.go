package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/ctessum/sparse"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/gridstate/internal/config"
	"github.com/san-kum/gridstate/internal/metrics"
	"github.com/san-kum/gridstate/internal/storage"
	"github.com/san-kum/gridstate/internal/tui"
	"github.com/san-kum/gridstate/pkg/comp"
	"github.com/san-kum/gridstate/pkg/darray"
	"github.com/san-kum/gridstate/pkg/schema"
	"github.com/san-kum/gridstate/pkg/units"
)

var (
	dataDir      string
	unitsBackend string
	unitsTable   string
	// demo parameters
	dt          float64
	steps       int
	levels      int
	temperature float64
	equilibrium float64
	timescale   float64
	configFile  string
	preset      string
	live        bool
	save        bool
	jsonOut     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gridstate",
		Short: "property-driven array marshalling for composable model components",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return selectUnitsBackend()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gridstate", "data directory")
	rootCmd.PersistentFlags().StringVar(&unitsBackend, "units-backend", "registry", "units backend (registry, table)")
	rootCmd.PersistentFlags().StringVar(&unitsTable, "units-table", "", "unit definition table (yaml)")

	validateCmd := &cobra.Command{
		Use:   "validate [schema.yaml]",
		Short: "validate a property schema file",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}

	combineCmd := &cobra.Command{
		Use:   "combine [schema.yaml...]",
		Short: "merge property schemas into one combined schema",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runCombine,
	}

	convertCmd := &cobra.Command{
		Use:   "convert [value] [from] [to]",
		Short: "convert a value between units",
		Args:  cobra.ExactArgs(3),
		RunE:  runConvert,
	}

	unitsCmd := &cobra.Command{
		Use:   "units [unit] [unit?]",
		Short: "inspect a unit expression, or compare two",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runUnits,
	}

	demoCmd := &cobra.Command{
		Use:   "demo [component]",
		Short: "step a demo component through the marshalling engine",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDemo,
	}
	demoCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep in seconds")
	demoCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	demoCmd.Flags().IntVar(&levels, "levels", config.DefaultLevels, "vertical levels")
	demoCmd.Flags().Float64Var(&temperature, "temperature", config.DefaultTemperature, "initial temperature (degK)")
	demoCmd.Flags().Float64Var(&equilibrium, "equilibrium", config.DefaultEquilibrium, "equilibrium temperature (degK)")
	demoCmd.Flags().Float64Var(&timescale, "timescale", config.DefaultTimescale, "relaxation timescale (s)")
	demoCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	demoCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	demoCmd.Flags().BoolVar(&live, "live", false, "interactive live view")
	demoCmd.Flags().BoolVar(&save, "save", false, "save the run under the data directory")
	demoCmd.Flags().BoolVar(&jsonOut, "json", false, "print the run as JSON")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  runList,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [component]",
		Short: "list demo presets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets(args[0])
			if names == nil {
				return fmt.Errorf("no presets for component %s", args[0])
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}

	componentsCmd := &cobra.Command{
		Use:   "components",
		Short: "list available demo components",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range comp.NewRegistry().Names() {
				fmt.Println(name)
			}
		},
	}

	rootCmd.AddCommand(validateCmd, combineCmd, convertCmd, unitsCmd, demoCmd, listCmd, presetsCmd, componentsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func selectUnitsBackend() error {
	if unitsTable != "" {
		entries, err := units.LoadTable(unitsTable)
		if err != nil {
			return fmt.Errorf("loading units table: %w", err)
		}
		units.SetBackend(units.NewTable(entries))
		return nil
	}
	return units.SelectBackend(unitsBackend)
}

func runValidate(cmd *cobra.Command, args []string) error {
	props, err := config.LoadSchema(args[0])
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "QUANTITY\tDIMS\tUNITS\tALIAS")
	for _, name := range props.SortedNames() {
		p := props[name]
		fmt.Fprintf(w, "%s\t%v\t%s\t%s\n", name, p.Dims, p.Units, p.Alias)
	}
	return w.Flush()
}

func runCombine(cmd *cobra.Command, args []string) error {
	schemas := make([]schema.Schema, 0, len(args))
	for _, path := range args {
		props, err := config.LoadSchema(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		schemas = append(schemas, props)
	}
	combined, err := schema.CombineProperties(schemas, nil)
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(combined)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

func runConvert(cmd *cobra.Command, args []string) error {
	value, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid value %q", args[0])
	}
	converted, err := units.Convert([]float64{value}, args[1], args[2])
	if err != nil {
		return err
	}
	fmt.Printf("%g %s = %g %s\n", value, args[1], converted[0], args[2])
	return nil
}

func runUnits(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		clean, err := units.Clean(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s: valid, canonical form %s\n", args[0], clean)
		return nil
	}
	switch {
	case units.Same(args[0], args[1]):
		fmt.Printf("%s and %s are identical\n", args[0], args[1])
	case units.Compatible(args[0], args[1]):
		fmt.Printf("%s and %s are convertible\n", args[0], args[1])
	default:
		fmt.Printf("%s and %s are not convertible\n", args[0], args[1])
	}
	return nil
}

func demoConfig(args []string) (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	component := config.DefaultConfig().Component
	if len(args) == 1 {
		component = args[0]
	}
	if preset != "" {
		cfg := config.GetPreset(component, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %s for component %s", preset, component)
		}
		return cfg, nil
	}
	cfg := config.DefaultConfig()
	cfg.Component = component
	cfg.Dt = dt
	cfg.Steps = steps
	cfg.Levels = levels
	cfg.Initial = config.InitialConfig{
		Temperature: temperature,
		Equilibrium: equilibrium,
		Timescale:   timescale,
	}
	return cfg, nil
}

func demoState(cfg *config.Config) (*darray.State, error) {
	state := darray.NewState(time.Now().UTC().Truncate(time.Second))
	fields := map[string]struct {
		value float64
		units string
	}{
		"air_temperature":                      {cfg.Initial.Temperature, "degK"},
		"equilibrium_air_temperature":          {cfg.Initial.Equilibrium, "degK"},
		"air_temperature_relaxation_timescale": {cfg.Initial.Timescale, "s"},
	}
	for name, f := range fields {
		arr := sparse.ZerosDense(cfg.Levels)
		for i := range arr.Elements {
			arr.Elements[i] = f.value
		}
		a, err := darray.New(arr, []string{"mid_levels"}, map[string]string{"units": f.units})
		if err != nil {
			return nil, err
		}
		state.Fields[name] = a
	}
	return state, nil
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := demoConfig(args)
	if err != nil {
		return err
	}
	component, err := comp.NewRegistry().Get(cfg.Component)
	if err != nil {
		return err
	}
	tc, ok := component.(comp.TendencyComponent)
	if !ok {
		return fmt.Errorf("component %s is not a tendency component", cfg.Component)
	}
	state, err := demoState(cfg)
	if err != nil {
		return err
	}

	stepDt := time.Duration(cfg.Dt * float64(time.Second))
	model := tui.NewModel(tc, state, "air_temperature", stepDt, cfg.Steps)

	if live {
		model, err = tui.Run(model)
		if err != nil {
			return err
		}
	} else {
		for i := 0; i < cfg.Steps; i++ {
			next, _ := model.Update(tui.TickMsg(time.Now()))
			model = next.(tui.Model)
		}
	}

	snapshots := model.Snapshots()
	runMetrics := metrics.Compute(snapshots,
		metrics.NewDrift("air_temperature", cfg.Initial.Equilibrium),
		metrics.NewSpread("air_temperature"),
		metrics.NewChange("air_temperature"))
	if len(snapshots) > 0 {
		last := snapshots[len(snapshots)-1].Arrays["air_temperature"]
		fmt.Printf("completed %d steps, final mean air_temperature %.3f degK (drift %.3f, change %.3f)\n",
			len(snapshots), meanOf(last.Elements), runMetrics["drift"], runMetrics["change"])
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg.Component, cfg.Dt, snapshots, runMetrics)
		if err != nil {
			return err
		}
		fmt.Println("saved run", runID)
	}
	if jsonOut {
		return storage.ExportJSONStdout(cfg.Component, cfg.Dt, snapshots)
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOMPONENT\tSTEPS\tDT\tWHEN")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%g\t%s\n",
			run.ID, run.Component, run.Steps, run.Dt,
			run.Timestamp.UTC().Format(time.RFC3339))
	}
	return w.Flush()
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
