// Command bomberserver is the authoritative game server: it accepts TCP
// client connections, drives the tick engine, and broadcasts Turn
// events to every connected proxy. See pkg/server and pkg/game.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"bomberwire/pkg/game"
	"bomberwire/pkg/server"
)

func main() {
	os.Exit(run())
}

func run() int {
	bombTimer := pflag.Uint16P("bomb-timer", "b", 0, "bomb fuse length, in ticks")
	playersCount := pflag.Uint8P("players-count", "c", 0, "number of players the lobby waits for")
	turnDuration := pflag.Uint64P("turn-duration", "d", 0, "turn duration, in milliseconds")
	explosionRadius := pflag.Uint16P("explosion-radius", "e", 0, "bomb explosion radius, in cells")
	initialBlocks := pflag.Uint16P("initial-blocks", "k", 0, "number of blocks scattered at game start")
	gameLength := pflag.Uint16P("game-length", "l", 0, "number of turns per game")
	serverName := pflag.StringP("name", "n", "", "server name advertised in Hello")
	port := pflag.Uint16P("port", "p", 0, "TCP port to listen on")
	seed := pflag.Uint32P("seed", "s", 0, "PRNG seed")
	sizeX := pflag.Uint16P("size-x", "x", 0, "board width")
	sizeY := pflag.Uint16P("size-y", "y", 0, "board height")
	help := pflag.BoolP("help", "h", false, "show usage and exit")
	pflag.Parse()

	if *help {
		pflag.Usage()
		return 0
	}

	required := []string{"bomb-timer", "players-count", "turn-duration", "explosion-radius",
		"initial-blocks", "game-length", "name", "port", "size-x", "size-y"}
	for _, name := range required {
		if f := pflag.Lookup(name); f == nil || !f.Changed {
			fmt.Fprintf(os.Stderr, "bomberserver: missing required flag --%s\n", name)
			return 1
		}
	}

	log := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Str("component", "bomberserver").Logger()

	cfg := game.Config{
		ServerName:      *serverName,
		PlayersCount:    *playersCount,
		SizeX:           *sizeX,
		SizeY:           *sizeY,
		GameLength:      *gameLength,
		ExplosionRadius: *explosionRadius,
		BombTimer:       *bombTimer,
		TurnDuration:    *turnDuration,
		InitialBlocks:   *initialBlocks,
		Seed:            *seed,
	}

	srv := server.NewServer(cfg, 4096, log)
	address := fmt.Sprintf("[::]:%d", *port)
	if err := srv.Start(address); err != nil {
		log.Error().Err(err).Msg("failed to start server")
		return 1
	}

	log.Info().
		Str("server_name", cfg.ServerName).
		Uint8("players_count", cfg.PlayersCount).
		Uint16("size_x", cfg.SizeX).
		Uint16("size_y", cfg.SizeY).
		Uint32("seed", cfg.Seed).
		Msg("server started")

	select {}
}
