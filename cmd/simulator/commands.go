package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aantao/marksim/internal/adapters/notify"
	"github.com/aantao/marksim/internal/application/engine"
	"github.com/aantao/marksim/internal/domain"
)

// cli agrupa las dependencias de los comandos y el modo no interactivo.
type cli struct {
	eng       *engine.Engine
	console   *notify.Console
	assumeYes bool
}

func (c *cli) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "init":
		return c.cmdInit(ctx, args)
	case "codes":
		return c.cmdCodes(args)
	case "submit":
		return c.cmdSubmit(ctx, args)
	case "status":
		return c.cmdStatus(ctx)
	case "preview":
		return c.cmdPreview(ctx)
	case "run":
		return c.cmdRun(ctx)
	case "standings":
		return c.cmdStandings(ctx)
	case "history":
		return c.cmdHistory(ctx, args)
	case "rollback":
		return c.cmdRollback(ctx, args)
	case "recalc":
		return c.cmdRecalc(ctx)
	case "reset":
		return c.cmdReset(ctx)
	default:
		return fmt.Errorf("unknown command %q (run with -h for usage)", cmd)
	}
}

func (c *cli) cmdInit(ctx context.Context, codes []string) error {
	if len(codes) == 0 {
		return errors.New("init: at least one team code required")
	}
	if err := c.eng.Initialize(ctx, codes); err != nil {
		return err
	}
	cfg := c.eng.Config()
	fmt.Printf("initialized %d team(s); history covers periods 1-%d, play starts at period %d (%s)\n",
		len(codes), cfg.HistoricalPeriods, cfg.HistoricalPeriods+1,
		cfg.QuarterLabel(cfg.HistoricalPeriods+1))
	return nil
}

func (c *cli) cmdCodes(args []string) error {
	n := 5
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			return fmt.Errorf("codes: invalid count %q", args[0])
		}
		n = v
	}
	for _, code := range engine.GenerateTeamCodes(n) {
		fmt.Println(code)
	}
	return nil
}

// submitFile es el formato YAML que entregan los equipos cada periodo.
type submitFile struct {
	Team     string                             `yaml:"team"`
	Products map[domain.ProductID]decisionsYAML `yaml:"products"`
	Global   globalYAML                         `yaml:"global"`
}

type decisionsYAML struct {
	Price           float64                          `yaml:"price"`
	Discount        float64                          `yaml:"discount"`
	Marketing       float64                          `yaml:"marketing"`
	Quality         float64                          `yaml:"quality"`
	SalesCommission float64                          `yaml:"sales_commission"`
	AdChannels      map[domain.AdChannelID]float64   `yaml:"ad_channels"`
	DistChannels    map[domain.DistChannelID]float64 `yaml:"dist_channels"`
}

type globalYAML struct {
	Retention       float64 `yaml:"retention"`
	Brand           float64 `yaml:"brand"`
	CustomerService float64 `yaml:"customer_service"`
	CreditDays      int     `yaml:"credit_days"`
	Process         float64 `yaml:"process"`
}

func (c *cli) cmdSubmit(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("submit: expected one decisions file")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("submit: read %q: %w", args[0], err)
	}
	var file submitFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("submit: parse %q: %w", args[0], err)
	}
	if file.Team == "" {
		return errors.New("submit: missing team code")
	}

	decisions := make(map[domain.ProductID]domain.Decisions, len(file.Products))
	for id, d := range file.Products {
		decisions[id] = domain.Decisions{
			Price:               d.Price,
			Discount:            d.Discount,
			MarketingInvestment: d.Marketing,
			QualityInvestment:   d.Quality,
			SalesCommission:     d.SalesCommission,
			AdChannels:          d.AdChannels,
			DistChannels:        d.DistChannels,
		}
	}
	global := domain.GlobalDecisions{
		RetentionInvestment: file.Global.Retention,
		BrandInvestment:     file.Global.Brand,
		CustomerService:     file.Global.CustomerService,
		CreditDays:          file.Global.CreditDays,
		ProcessImprovement:  file.Global.Process,
	}

	receipt, err := c.eng.SubmitDecisions(ctx, file.Team, decisions, global)
	if err != nil {
		return err
	}
	fmt.Printf("submission %s recorded for %s, period %d\n",
		receipt.ID, receipt.TeamCode, receipt.Period)
	return nil
}

func (c *cli) cmdStatus(ctx context.Context) error {
	report, err := c.eng.SubmissionStatus(ctx)
	if err != nil {
		return err
	}
	c.console.Status(report)
	return nil
}

func (c *cli) cmdPreview(ctx context.Context) error {
	report, err := c.eng.PreviewSimulation(ctx)
	if err != nil {
		return err
	}
	c.console.RunReport(report)
	return nil
}

// cmdRun simula el periodo actual y avanza al siguiente. Si faltan
// entregas, pide confirmación antes de rellenarlas con las decisiones
// anteriores de cada equipo.
func (c *cli) cmdRun(ctx context.Context) error {
	report, err := c.eng.RunSimulation(ctx, false)

	var missing *engine.MissingSubmissionsError
	if errors.As(err, &missing) {
		fmt.Printf("%d team(s) have not submitted: %s\n",
			len(missing.Teams), strings.Join(missing.Teams, ", "))
		if !c.confirm("auto-fill them from their previous decisions and run?") {
			return errors.New("run aborted")
		}
		report, err = c.eng.RunSimulation(ctx, true)
	}
	if err != nil {
		return err
	}

	c.console.RunReport(report)

	next, err := c.eng.AdvancePeriod(ctx)
	if err != nil {
		if errors.Is(err, engine.ErrSimulationOver) {
			fmt.Println("that was the final period — the simulation is over")
			return nil
		}
		return err
	}
	fmt.Printf("advanced to period %d (%s)\n", next, c.eng.Config().QuarterLabel(next))
	return nil
}

func (c *cli) cmdStandings(ctx context.Context) error {
	standings, err := c.eng.Standings(ctx)
	if err != nil {
		return err
	}
	c.console.Standings(standings)
	return nil
}

func (c *cli) cmdHistory(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("history: expected <team> <product>")
	}
	team, err := c.eng.Team(ctx, args[0])
	if err != nil {
		return err
	}
	line := team.Product(domain.ProductID(args[1]))
	if line == nil {
		return fmt.Errorf("history: team %s has no product %q", team.Code, args[1])
	}
	c.console.History(team.Code, *line, c.eng.Config().QuarterLabel)
	return nil
}

func (c *cli) cmdRollback(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("rollback: expected a period number")
	}
	period, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("rollback: invalid period %q", args[0])
	}
	if !c.confirm(fmt.Sprintf("undo period %d? results will be discarded", period)) {
		return errors.New("rollback aborted")
	}
	if err := c.eng.RollbackPeriod(ctx, period); err != nil {
		return err
	}
	fmt.Printf("period %d rolled back; decisions kept as pending\n", period)
	return nil
}

// cmdRecalc es una operación en dos fases: primero el diff, luego la
// confirmación explícita que lo aplica.
func (c *cli) cmdRecalc(ctx context.Context) error {
	report, err := c.eng.RecalculatePreviousPeriods(ctx)
	if err != nil {
		return err
	}
	c.console.RecalcReport(report)
	if !c.confirm("apply the recalculated results?") {
		fmt.Println("recalculation discarded, stored results untouched")
		return nil
	}
	if err := c.eng.ConfirmRecalculation(ctx); err != nil {
		return err
	}
	fmt.Printf("recalculation applied to %d period(s)\n", len(report.Periods))
	return nil
}

// cmdReset borra toda la partida. Pregunta dos veces: es la única
// operación sin vuelta atrás.
func (c *cli) cmdReset(ctx context.Context) error {
	if !c.confirm("wipe ALL teams, history and submissions?") {
		return errors.New("reset aborted")
	}
	if !c.confirm("really sure? this cannot be undone") {
		return errors.New("reset aborted")
	}
	if err := c.eng.Reset(ctx); err != nil {
		return err
	}
	fmt.Println("simulation wiped")
	return nil
}

// confirm pide sí/no por stdin, salvo en modo -yes.
func (c *cli) confirm(prompt string) bool {
	if c.assumeYes {
		return true
	}
	fmt.Printf("%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		slog.Debug("confirm read failed", "err", err)
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
