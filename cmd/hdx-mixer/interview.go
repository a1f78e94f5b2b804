/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"hdxmix/internal/config"
	"hdxmix/internal/mixerr"
)

// runMixerInterview asks for whatever the flags and environment left unset.
func runMixerInterview(cfg *config.Config) error {
	rl, err := readline.NewEx(&readline.Config{Prompt: ">> "})
	if err != nil {
		return err
	}
	defer rl.Close()

	printBanner()
	step := 1
	next := func(label string) string {
		s := fmt.Sprintf("%d. %s", step, label)
		step++
		return s
	}

	if cfg.SourceDir == "" {
		cfg.SourceDir = ask(rl, next("Source Folder (track pool)"), ".")
	}
	if cfg.DestDir == "" {
		cfg.DestDir = ask(rl, next("Destination Folder"), "mixes")
	}
	if cfg.Count == 0 && len(cfg.Tracks) == 0 {
		n, err := strconv.Atoi(ask(rl, next("Number of tracks"), "10"))
		if err != nil {
			return fmt.Errorf("%w: enter a whole number", mixerr.ErrInvalidCount)
		}
		cfg.Count = n
	}
	yn := "y"
	if !cfg.BuildTracklist {
		yn = "n"
	}
	cfg.BuildTracklist = strings.HasPrefix(strings.ToLower(ask(rl, next("Build tracklist (y/n)"), yn)), "y")
	return nil
}

func ask(rl *readline.Instance, prompt, def string) string {
	rl.SetPrompt(fmt.Sprintf("%s [%s]: ", prompt, def))
	line, _ := rl.Readline()
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}
