package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	viamtictactoe "viamtictactoe"

	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/rimage"
)

func main() {
	defaults := viamtictactoe.DefaultAcquireParams()

	app := &cli.App{
		Name:      "boardfinder",
		Usage:     "lock onto a tic-tac-toe board in a still image and annotate it",
		ArgsUsage: "<input.jpg> [output.jpg]",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "grid", Value: defaults.GridSize, Usage: "cells per side"},
			&cli.Float64Flag{Name: "seed-area", Value: defaults.SeedArea, Usage: "first minimum board area in pixels"},
			&cli.Float64Flag{Name: "growth", Value: defaults.AreaGrowth, Usage: "area growth per pass"},
			&cli.StringFlag{Name: "computer", Value: "W", Usage: "symbol the computer plays, B or W"},
			&cli.BoolFlag{Name: "debug", Usage: "log every calibration pass"},
			&cli.BoolFlag{Name: "center-line", Usage: "draw a crosshair through the image center"},
		},
		Action: run,
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.Args().Len() < 1 {
		return fmt.Errorf("need an input image, see --help")
	}

	logger := logging.NewLogger("boardfinder")
	if c.Bool("debug") {
		logger.SetLevel(logging.DEBUG)
	}

	params := viamtictactoe.DefaultAcquireParams()
	params.GridSize = c.Int("grid")
	params.SeedArea = c.Float64("seed-area")
	params.AreaGrowth = c.Float64("growth")

	inputFile := c.Args().Get(0)

	outputFile := c.Args().Get(1)
	if outputFile == "" {
		// input.jpg -> input_output.jpg
		ext := filepath.Ext(inputFile)
		base := strings.TrimSuffix(inputFile, ext)
		outputFile = base + "_output" + ext
	}

	input, err := rimage.ReadImageFromFile(inputFile)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}

	fmt.Printf("Image size: %dx%d\n", input.Bounds().Dx(), input.Bounds().Dy())

	a := viamtictactoe.NewAcquirer(params, logger)
	region, err := a.Calibrate(c.Context, input)
	if err != nil {
		return err
	}
	fmt.Printf("Board region: %v (%dx%d)\n", region, region.Dx(), region.Dy())

	output, board, ok := viamtictactoe.BoardDebugImage(input, region, params.GridSize)
	if ok {
		fmt.Printf("Board:\n%v", board)

		me, err := viamtictactoe.ParseSymbol(c.String("computer"))
		if err != nil {
			return err
		}
		// the calibration fixture is usually still on the board, so this is mostly a smoke test
		rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
		m, tactic, err := viamtictactoe.Decide(board, me, me.Opponent(), rng)
		if err != nil {
			fmt.Printf("No move: %v\n", err)
		} else {
			wire, _, err := viamtictactoe.EncodeMove(m, 0)
			if err != nil {
				return err
			}
			fmt.Printf("Move for %v: %v (%v) -> %s\n", me, m, tactic, wire)
		}
	}

	if c.Bool("center-line") {
		viamtictactoe.DrawCenterLines(output)
	}

	err = rimage.WriteImageToFile(outputFile, output)
	if err != nil {
		return fmt.Errorf("writing output image: %w", err)
	}

	fmt.Printf("Saved output image to %s\n", outputFile)
	return nil
}
