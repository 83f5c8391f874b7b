package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/napolitain/civkit/internal/config"
	"github.com/napolitain/civkit/internal/game"
	"github.com/napolitain/civkit/internal/loader"
	"github.com/napolitain/civkit/internal/ruleset"
	"github.com/napolitain/civkit/internal/save"
	"github.com/napolitain/civkit/internal/server"
)

var (
	dataDir    string
	configFile string
	quiet      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "civkit",
		Short: "Turn-resolution and city-economy engine for 4X strategy games",
		Long: `civkit simulates the economic core of a 4X strategy game: city
yields, construction, growth, and diplomacy, resolved turn by turn over a
JSON ruleset.`,
	}

	rootCmd.PersistentFlags().StringVarP(&dataDir, "data", "d", "data", "Path to ruleset data directory")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to YAML options file")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Minimal output")

	rootCmd.AddCommand(simulateCmd(), reportCmd(), validateCmd(), serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadSetup loads the ruleset and options every subcommand starts from
func loadSetup() (*ruleset.Ruleset, *config.Options) {
	rules, err := loader.LoadRuleset(dataDir)
	if err != nil {
		color.Red("Error loading ruleset: %v", err)
		os.Exit(1)
	}
	opts := config.Default()
	if configFile != "" {
		opts, err = config.Load(configFile)
		if err != nil {
			color.Red("Error loading options: %v", err)
			os.Exit(1)
		}
	}
	return rules, opts
}

func simulateCmd() *cobra.Command {
	var turns int
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the demo scenario for a number of turns",
		Run: func(cmd *cobra.Command, args []string) {
			rules, opts := loadSetup()
			g := demoGame(rules, opts)

			titleColor := color.New(color.FgCyan, color.Bold)
			if !quiet {
				titleColor.Printf("\nSimulating %d turns over %d cities\n\n", turns, len(g.Cities))
			}

			var last *game.TurnSummary
			for i := 0; i < turns; i++ {
				last = game.NextTurn(g)
			}

			printCityTable(g)
			if !quiet && last != nil {
				fmt.Println()
				printHappiness(g, last)
			}
		},
	}
	cmd.Flags().IntVarP(&turns, "turns", "t", 25, "Number of turns to simulate")
	return cmd
}

func reportCmd() *cobra.Command {
	var construction string
	cmd := &cobra.Command{
		Use:   "report [city]",
		Short: "Break down one city's yields by source",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			rules, opts := loadSetup()
			g := demoGame(rules, opts)
			game.NextTurn(g)

			city := findCity(g, args[0])
			if city == nil {
				color.Red("Unknown city %q", args[0])
				os.Exit(1)
			}

			titleColor := color.New(color.FgCyan, color.Bold)
			titleColor.Printf("\n%s (%s), population %d\n\n", city.Name, city.CivName, city.Population.Count)

			printStatBreakdown(city)
			fmt.Println()
			printHappinessBreakdown(city)

			if construction != "" {
				fmt.Println()
				printRejectionReport(g, city, construction)
			}
		},
	}
	cmd.Flags().StringVarP(&construction, "build", "b", "", "Also evaluate buildability of this construction")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check a ruleset directory against the schemas",
		Run: func(cmd *cobra.Command, args []string) {
			rules, err := loader.LoadRuleset(dataDir)
			if err != nil {
				color.Red("✗ %v", err)
				os.Exit(1)
			}
			color.Green("✓ Ruleset OK: %d buildings, %d units, %d techs, %d eras, %d nations",
				len(rules.Buildings), len(rules.Units), len(rules.Technologies),
				len(rules.Eras), len(rules.Nations))
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the observer API over HTTP",
		Run: func(cmd *cobra.Command, args []string) {
			rules, opts := loadSetup()
			g := demoGame(rules, opts)

			store, err := save.Open(opts.SavePath)
			if err != nil {
				color.Red("Error opening save database: %v", err)
				os.Exit(1)
			}
			defer store.Close()

			if !quiet {
				color.Green("✓ Serving game %s on %s (autosave every %d turn(s) to %s)",
					g.ID, opts.ListenAddr, opts.AutosaveEveryTurn, opts.SavePath)
			}
			if err := server.New(g, store).Router().Run(opts.ListenAddr); err != nil {
				color.Red("Server error: %v", err)
				os.Exit(1)
			}
		},
	}
}

func findCity(g *game.GameInfo, name string) *game.City {
	for _, city := range g.Cities {
		if city.Name == name {
			return city
		}
	}
	return nil
}

func printCityTable(g *game.GameInfo) {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"City", "Civ", "Pop", "Food", "Prod", "Gold", "Sci", "Cult", "Building"}),
	)
	for _, name := range g.CivOrder() {
		civ := g.Civs[name]
		for _, city := range g.CitiesOf(civ) {
			s := city.Stats.CurrentCityStats
			_ = table.Append([]string{
				city.Name,
				city.CivName,
				strconv.Itoa(city.Population.Count),
				fmt.Sprintf("%.1f", s.Food),
				fmt.Sprintf("%.1f", s.Production),
				fmt.Sprintf("%.1f", s.Gold),
				fmt.Sprintf("%.1f", s.Science),
				fmt.Sprintf("%.1f", s.Culture),
				city.Constructions.CurrentConstruction(),
			})
		}
	}
	_ = table.Render()
}

func printHappiness(g *game.GameInfo, summary *game.TurnSummary) {
	infoColor := color.New(color.FgYellow)
	infoColor.Println("Happiness:")
	for _, name := range g.CivOrder() {
		value, ok := summary.Happiness[name]
		if !ok {
			continue
		}
		marker := color.GreenString("%+.0f", value)
		if value < 0 {
			marker = color.RedString("%+.0f", value)
		}
		fmt.Printf("   %-12s %s\n", name, marker)
	}
}

func printStatBreakdown(city *game.City) {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Source", "Food", "Prod", "Gold", "Sci", "Cult", "Faith"}),
	)
	final := city.Stats.FinalStatList
	for _, source := range final.Names() {
		s := final.Get(source)
		_ = table.Append([]string{
			source,
			fmt.Sprintf("%.1f", s.Food),
			fmt.Sprintf("%.1f", s.Production),
			fmt.Sprintf("%.1f", s.Gold),
			fmt.Sprintf("%.1f", s.Science),
			fmt.Sprintf("%.1f", s.Culture),
			fmt.Sprintf("%.1f", s.Faith),
		})
	}
	total := city.Stats.CurrentCityStats
	_ = table.Append([]string{
		"Total",
		fmt.Sprintf("%.1f", total.Food),
		fmt.Sprintf("%.1f", total.Production),
		fmt.Sprintf("%.1f", total.Gold),
		fmt.Sprintf("%.1f", total.Science),
		fmt.Sprintf("%.1f", total.Culture),
		fmt.Sprintf("%.1f", total.Faith),
	})
	_ = table.Render()
}

func printHappinessBreakdown(city *game.City) {
	infoColor := color.New(color.FgYellow)
	infoColor.Println("Happiness breakdown:")
	happiness := city.Stats.Happiness
	for _, source := range happiness.Names() {
		fmt.Printf("   %-14s %+.1f\n", source, happiness.Get(source))
	}
	fmt.Printf("   %-14s %+.1f\n", "Total", happiness.Total())
}

func printRejectionReport(g *game.GameInfo, city *game.City, name string) {
	var reasons []game.RejectionReason
	if building, ok := g.Rules.Buildings[name]; ok {
		reasons = game.BuildingRejectionReasons(g, city, building)
	} else if unit, ok := g.Rules.Units[name]; ok {
		reasons = game.UnitRejectionReasons(g, city, unit)
	} else {
		color.Red("Unknown construction %q", name)
		return
	}

	if len(reasons) == 0 {
		color.Green("✓ %s can be built in %s", name, city.Name)
		return
	}

	color.Red("✗ %s cannot be built in %s:", name, city.Name)
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Reason", "Detail", "Shown"}),
	)
	for _, r := range reasons {
		shown := "grayed out"
		if r.Type.IsNeverVisible() {
			shown = "hidden"
		} else if !r.Type.ShouldShow() {
			shown = "omitted"
		}
		_ = table.Append([]string{string(r.Type), r.Text, shown})
	}
	_ = table.Render()

	if primary := game.PrimaryRejectionReason(reasons); primary != nil {
		fmt.Printf("   Primary: %s\n", primary.Text)
	}
}
