package main

import (
	"fmt"
	"log"
	"os"

	"git.lost.host/meutraa/taimuragu/internal/config"
	"git.lost.host/meutraa/taimuragu/internal/input"
	game_log "git.lost.host/meutraa/taimuragu/internal/log"
	"git.lost.host/meutraa/taimuragu/internal/render"
)

func main() {
	if err := run(os.Args[1:]); nil != err {
		log.Fatalln(err)
	}
}

func run(args []string) error {
	if err := config.LoadEnv(); nil != err {
		return fmt.Errorf("unable to read .env: %w", err)
	}
	cfg, err := config.Parse(args)
	if nil != err {
		return err
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if nil != err {
		return fmt.Errorf("unable to open log file: %w", err)
	}
	defer logFile.Close()
	logger := game_log.New(logFile, game_log.LevelFromString(cfg.LogLevel))

	keys, closeKeyboard, err := input.Open(128)
	if nil != err {
		return err
	}
	defer func() {
		if err := closeKeyboard(); nil != err {
			logger.Errorf("unable to close keyboard: %v", err)
		}
	}()

	r := render.NewRenderer(os.Stdout)
	p := &Program{}
	if err := p.Init(cfg, logger, r, keys); nil != err {
		return err
	}
	defer p.Deinit()

	// Clear the screen and hide the cursor
	if err := r.Init(); nil != err {
		return err
	}
	defer func() {
		// Restore the terminal state
		r.Deinit()
	}()

	r.RenderLoop(cfg.FramePeriod, p.Frame)
	return nil
}
