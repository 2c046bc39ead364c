package viamtictactoe

import (
	"context"
	"fmt"
	"image"
	"math/rand/v2"
	"time"

	"github.com/mitchellh/mapstructure"

	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/resource"
	generic "go.viam.com/rdk/services/generic"
)

func init() {
	resource.RegisterService(generic.API, TicTacToeModel,
		resource.Registration[resource.Resource, *GameConfig]{
			Constructor: newTicTacToe,
		},
	)
}

type GameConfig struct {
	Camera string

	SerialPort   string `json:"serial-port"`
	BaudRate     int    `json:"baud-rate"`
	OpenAttempts int    `json:"open-attempts"`

	ComputerSymbol     string  `json:"computer-symbol"`
	GridSize           int     `json:"grid-size"`
	SeedArea           float64 `json:"seed-area"`
	AreaGrowth         float64 `json:"area-growth"`
	MaxAspectDeviation float64 `json:"max-aspect-deviation"`
	RandomSeed         uint64  `json:"random-seed"`
}

func (cfg *GameConfig) Validate(path string) ([]string, []string, error) {
	if cfg.Camera == "" {
		return nil, nil, fmt.Errorf("need a camera")
	}
	if cfg.ComputerSymbol != "" {
		s, err := ParseSymbol(cfg.ComputerSymbol)
		if err != nil || s == Empty {
			return nil, nil, fmt.Errorf("computer-symbol must be B or W, not %q", cfg.ComputerSymbol)
		}
	}
	if cfg.GridSize < 0 || cfg.GridSize > 10 {
		return nil, nil, fmt.Errorf("grid-size %d out of range", cfg.GridSize)
	}
	if cfg.AreaGrowth != 0 && cfg.AreaGrowth <= 1 {
		return nil, nil, fmt.Errorf("area-growth must be above 1")
	}
	return []string{cfg.Camera}, nil, nil
}

func (cfg *GameConfig) acquireParams() AcquireParams {
	p := DefaultAcquireParams()
	if cfg.GridSize > 0 {
		p.GridSize = cfg.GridSize
	}
	if cfg.SeedArea > 0 {
		p.SeedArea = cfg.SeedArea
	}
	if cfg.AreaGrowth > 0 {
		p.AreaGrowth = cfg.AreaGrowth
	}
	if cfg.MaxAspectDeviation > 0 {
		p.MaxAspectDeviation = cfg.MaxAspectDeviation
	}
	return p
}

func (cfg *GameConfig) serialConfig() SerialConfig {
	sc := DefaultSerialConfig()
	if cfg.SerialPort != "" {
		sc.Port = cfg.SerialPort
	}
	if cfg.BaudRate > 0 {
		sc.BaudRate = cfg.BaudRate
	}
	if cfg.OpenAttempts > 0 {
		sc.OpenAttempts = cfg.OpenAttempts
	}
	return sc
}

func (cfg *GameConfig) computer() Symbol {
	s, err := ParseSymbol(cfg.ComputerSymbol)
	if err != nil || s == Empty {
		return White
	}
	return s
}

type ticTacToe struct {
	resource.AlwaysRebuild

	name resource.Name

	logger logging.Logger
	conf   *GameConfig

	cam     camera.Camera
	session *Session
}

func newTicTacToe(ctx context.Context, deps resource.Dependencies, rawConf resource.Config, logger logging.Logger) (resource.Resource, error) {
	conf, err := resource.NativeConfig[*GameConfig](rawConf)
	if err != nil {
		return nil, err
	}

	return NewTicTacToe(ctx, deps, rawConf.ResourceName(), conf, logger)
}

func NewTicTacToe(ctx context.Context, deps resource.Dependencies, name resource.Name, conf *GameConfig, logger logging.Logger) (resource.Resource, error) {
	var err error

	g := &ticTacToe{
		name:   name,
		logger: logger,
		conf:   conf,
	}

	g.cam, err = camera.FromProvider(deps, conf.Camera)
	if err != nil {
		return nil, err
	}

	// a missing arm link is not fatal, turns still decide and report the move
	transport, err := OpenSerialTransport(ctx, conf.serialConfig(), logger)
	if err != nil {
		logger.Errorf("no serial transport, moves will not be sent: %v", err)
	}

	seed := conf.RandomSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	g.session, err = NewSession(
		NewAcquirer(conf.acquireParams(), logger),
		NewCameraFrameSource(g.cam),
		transport,
		conf.computer(),
		rand.New(rand.NewPCG(seed, seed)),
		logger,
	)
	if err != nil {
		return nil, err
	}

	return g, nil
}

func (g *ticTacToe) Name() resource.Name {
	return g.name
}

type gameCmd struct {
	Calibrate   bool
	Recalibrate bool
	Turn        bool
	NewGame     bool `mapstructure:"new-game"`
	Decide      string
	Send        string
}

func (g *ticTacToe) DoCommand(ctx context.Context, cmdMap map[string]interface{}) (map[string]interface{}, error) {
	var cmd gameCmd
	err := mapstructure.Decode(cmdMap, &cmd)
	if err != nil {
		return nil, err
	}

	switch {
	case cmd.Recalibrate:
		g.session.Recalibrate()
		if !cmd.Calibrate {
			return map[string]interface{}{"state": g.session.Acquirer().State().String()}, nil
		}
		fallthrough
	case cmd.Calibrate:
		region, err := g.session.Calibrate(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"region": regionMap(region)}, nil

	case cmd.NewGame:
		g.session.NewGame()
		return map[string]interface{}{"next-piece": g.session.NextPiece()}, nil

	case cmd.Turn:
		res, err := g.session.Turn(ctx)
		if err != nil && res.Outcome == "" {
			return nil, err
		}
		out := turnMap(res)
		if err != nil {
			// the move stands even if the arm never got it
			out["error"] = err.Error()
		}
		return out, nil

	case cmd.Decide != "":
		b, err := ParseBoard(cmd.Decide)
		if err != nil {
			return nil, err
		}
		m, tactic, err := g.session.Decide(b)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"move": []int{m.Row, m.Col}, "tactic": tactic.String()}, nil

	case cmd.Send != "":
		if err := g.session.Send(cmd.Send); err != nil {
			return nil, err
		}
		return map[string]interface{}{"sent": cmd.Send}, nil
	}

	return nil, fmt.Errorf("bad cmd %v", cmdMap)
}

func regionMap(r image.Rectangle) map[string]interface{} {
	return map[string]interface{}{
		"x":      r.Min.X,
		"y":      r.Min.Y,
		"width":  r.Dx(),
		"height": r.Dy(),
	}
}

func turnMap(res TurnResult) map[string]interface{} {
	out := map[string]interface{}{"outcome": string(res.Outcome)}
	if res.Board.Size() > 0 {
		out["board"] = res.Board.Compact()
	}
	if res.Outcome == OutcomePlayed {
		out["move"] = []int{res.Move.Row, res.Move.Col}
		out["tactic"] = res.Tactic.String()
		out["command"] = res.Command
	}
	return out
}

func (g *ticTacToe) Close(context.Context) error {
	return g.session.Close()
}
