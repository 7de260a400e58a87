package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/reelroom/reelroom/internal/statefeed"
	"github.com/reelroom/reelroom/internal/timeline"
)

// barWidth is the terminal progress bar width in cells; /scrub treats a
// cell index as a click position on it.
const barWidth = 40

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "room gateway base URL")
	roomID := flag.String("room", "", "room to watch")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	if *roomID == "" {
		fmt.Fprintln(os.Stderr, "a room id is required (-room)")
		os.Exit(1)
	}

	reducer := timeline.NewReducer(clockwork.NewRealClock(), render)
	defer reducer.Close()

	client, err := statefeed.NewClient(statefeed.DefaultConfig(*baseURL, *roomID), clockwork.NewRealClock(), reducer.Apply)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Run(ctx)

	fmt.Printf("watching %s (chat lines are sent to the room; /scrub <cell> seeks)\n", *roomID)

	bar := timeline.BarRect{Left: 0, Width: barWidth}
	seek := timeline.SeekEncoder{Send: client.Send}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		// A scrub is a click on the rendered bar; everything else is
		// chat and goes out verbatim.
		if cell, ok := strings.CutPrefix(line, "/scrub "); ok {
			x, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				fmt.Fprintf(os.Stderr, "bad scrub position %q\n", cell)
				continue
			}
			if err := seek.Seek(x, bar, reducer.Snapshot().TotalTimeMs); err != nil {
				log.Error().Err(err).Msg("seek failed")
			}
			continue
		}

		if err := client.Send(line); err != nil {
			log.Error().Err(err).Msg("send failed")
		}
	}
}

// render redraws the status line for a new timeline state.
func render(s timeline.State) {
	if !s.Renderable() {
		if s.Caption != "" {
			fmt.Printf("\r%-80s", s.Caption)
		}
		return
	}

	filled := int(s.Progress() * barWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	caption := s.Caption
	if caption == "" && s.Playing {
		caption = "LIVE"
	}

	line := fmt.Sprintf("%s  %s [%s] %s  %s",
		s.Title, s.CurrentTimecode(), bar, s.TotalTimecode(), caption)
	fmt.Printf("\r%-100s", line)
}
