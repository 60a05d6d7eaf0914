// Command patrol-tui plays MUPOL Patrol in the terminal.
//
// By default it runs the simulation locally: a fixed-rate loop advances the
// engine with the real elapsed time, draws the road with tcell and beeps on
// hits. With --session it attaches to a session on a running server instead,
// starts its live loop and renders the states streamed over the WebSocket.
//
// Keys: left/right (h/l, a/d) steer, Enter or Space starts a patrol, q or
// Esc quits.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mupol-patrol/game/config"
	"github.com/wricardo/mupol-patrol/game/engine"
	"github.com/wricardo/mupol-patrol/game/runner"
)

const (
	defaultFPS = 60
	maxFPS     = 240
)

func main() {
	cmd := &cli.Command{
		Name:  "patrol-tui",
		Usage: "Drive the MUPOL patrol car in your terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory containing parameter presets",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:  "config",
				Value: "classic",
				Usage: "preset to play",
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "spawn RNG seed, 0 picks one from the clock",
			},
			&cli.BoolFlag{
				Name:  "mute",
				Usage: "disable the hit sound",
			},
			&cli.StringFlag{
				Name:    "server",
				Value:   "http://localhost:8080",
				Usage:   "server URL used with --session",
				Sources: cli.EnvVars("PATROL_SERVER"),
			},
			&cli.StringFlag{
				Name:  "session",
				Usage: "attach to this server session instead of playing locally",
			},
			&cli.IntFlag{
				Name:  "fps",
				Value: defaultFPS,
				Usage: "frames per second of the host loop",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "patrol-tui: %v\n", err)
		os.Exit(1)
	}
}

// host is what the frame loop drives: the local game or a remote session
type host interface {
	handleEvent(ev tcell.Event) bool
	step(deltaMs float64) bool
}

func run(ctx context.Context, cmd *cli.Command) error {
	// Audio first: it may log, and the screen owns the terminal afterwards
	sound := newHitSound(!cmd.Bool("mute"))
	defer sound.Close()

	var newHost func(screen tcell.Screen) host
	if id := cmd.String("session"); id != "" {
		r, err := dialRemote(cmd.String("server"), id)
		if err != nil {
			return fmt.Errorf("failed to attach to session %s: %w", id, err)
		}
		defer r.Close()
		if err := r.startLive(); err != nil {
			return err
		}
		newHost = func(screen tcell.Screen) host {
			return &remoteGame{remote: r, screen: screen, sound: sound}
		}
	} else {
		eng, err := localEngine(cmd)
		if err != nil {
			return err
		}
		newHost = func(screen tcell.Screen) host {
			return newGame(eng, screen, sound)
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	// Keep log output off the terminal while the screen is active
	log.SetOutput(io.Discard)
	defer log.SetOutput(os.Stderr)

	g := newHost(screen)
	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	loop := runner.NewLoop(frameInterval(int(cmd.Int("fps"))))
	err = loop.Run(ctx, func(deltaMs float64) bool {
		for {
			select {
			case ev := <-events:
				if !g.handleEvent(ev) {
					return false
				}
			default:
				return g.step(deltaMs)
			}
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func localEngine(cmd *cli.Command) (*engine.GameEngine, error) {
	manager, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return nil, fmt.Errorf("failed to load presets: %w", err)
	}
	params, err := manager.LoadConfig(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	var opts []engine.Option
	if seed := cmd.Uint64("seed"); seed != 0 {
		opts = append(opts, engine.WithSeed(seed))
	}
	return engine.NewEngine(params, opts...)
}

// frameInterval converts a frame rate into a tick interval, falling back to
// 60 FPS for values outside 1..maxFPS
func frameInterval(fps int) time.Duration {
	if fps <= 0 || fps > maxFPS {
		fps = defaultFPS
	}
	return time.Second / time.Duration(fps)
}
